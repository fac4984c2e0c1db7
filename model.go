package openai

import (
	"context"
	"encoding/json"

	// Packages
	httpclient "github.com/mutablelogic/go-openai/pkg/httpclient"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Model is a model which is available through the service
type Model struct {
	Id      string `json:"id"`
	Type    string `json:"object,omitempty"`
	Created uint64 `json:"created,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

type modelList struct {
	Data []Model `json:"data"`
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (m Model) String() string {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Name returns the name of the model
func (m Model) Name() string {
	return m.Id
}

// ListModels returns the models which are available, sorted by name.
// The list is cached for an hour
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	return c.cache.ListModels(ctx, func(ctx context.Context) ([]Model, error) {
		var response modelList
		if err := c.DoWithContext(ctx, httpclient.NewRequest(), &response, httpclient.OptPath("models")); err != nil {
			return nil, err
		}
		return response.Data, nil
	})
}

// GetModel returns one model by name
func (c *Client) GetModel(ctx context.Context, name string) (*Model, error) {
	if name == "" {
		return nil, ErrBadParameter.With("missing name")
	}
	return c.cache.GetModel(ctx, name, func(ctx context.Context, name string) (*Model, error) {
		var response Model
		if err := c.DoWithContext(ctx, httpclient.NewRequest(), &response, httpclient.OptPath("models", name)); err != nil {
			return nil, err
		}
		return &response, nil
	})
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func modelName(m Model) string {
	return m.Id
}
