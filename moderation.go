package openai

import (
	"context"
	"encoding/json"

	// Packages
	httpclient "github.com/mutablelogic/go-openai/pkg/httpclient"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Moderations is the response to a moderation request
type Moderations struct {
	Id      string             `json:"id"`
	Model   string             `json:"model"`
	Results []ModerationResult `json:"results"`
}

// ModerationResult classifies one input string
type ModerationResult struct {
	Flagged    bool               `json:"flagged"`
	Categories map[string]bool    `json:"categories"`
	Scores     map[string]float64 `json:"category_scores"`
}

type reqModeration struct {
	Model string   `json:"model,omitempty"`
	Input []string `json:"input"`
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (m Moderations) String() string {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Moderation classifies the input strings for policy violations. The model
// can be set with WithModel, otherwise the service default is used
func (c *Client) Moderation(ctx context.Context, input []string, opts ...Opt) (*Moderations, error) {
	opt, err := ApplyOpts(opts...)
	if err != nil {
		return nil, err
	}
	if len(input) == 0 {
		return nil, ErrBadParameter.With("missing input")
	}
	transport, err := c.transport(opt)
	if err != nil {
		return nil, err
	}
	payload, err := httpclient.NewJSONRequest(reqModeration{
		Model: opt.GetString(keyModel),
		Input: input,
	})
	if err != nil {
		return nil, err
	}

	var response Moderations
	if err := transport.DoWithContext(ctx, payload, &response, httpclient.OptPath("moderations")); err != nil {
		return nil, err
	}
	return &response, nil
}
