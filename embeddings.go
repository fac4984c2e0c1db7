package openai

import (
	"context"
	"encoding/json"

	// Packages
	httpclient "github.com/mutablelogic/go-openai/pkg/httpclient"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Embeddings is the response to an embedding request
type Embeddings struct {
	Type    string      `json:"object"`
	Model   string      `json:"model"`
	Data    []Embedding `json:"data"`
	Metrics `json:"usage,omitempty"`
}

// Embedding is a single vector
type Embedding struct {
	Type      string    `json:"object"`
	Index     uint64    `json:"index"`
	Embedding []float64 `json:"embedding"`
}

type reqEmbedding struct {
	Model          string   `json:"model"`
	Input          []string `json:"input"`
	EncodingFormat string   `json:"encoding_format,omitempty"`
	Dimensions     uint64   `json:"dimensions,omitempty"`
	User           string   `json:"user,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (e Embeddings) String() string {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// GenerateEmbedding generates vectors for the given input strings
func (c *Client) GenerateEmbedding(ctx context.Context, model string, input []string, opts ...Opt) (*Embeddings, error) {
	opt, err := ApplyOpts(opts...)
	if err != nil {
		return nil, err
	}
	if model == "" {
		return nil, ErrBadParameter.With("missing model")
	}
	if len(input) == 0 {
		return nil, ErrBadParameter.With("missing input")
	}
	transport, err := c.transport(opt)
	if err != nil {
		return nil, err
	}
	payload, err := httpclient.NewJSONRequest(reqEmbedding{
		Model:          model,
		Input:          input,
		EncodingFormat: opt.GetString(keyEncodingFormat),
		Dimensions:     opt.GetUint64(keyDimensions),
		User:           opt.GetString(keyUser),
	})
	if err != nil {
		return nil, err
	}

	var response Embeddings
	if err := transport.DoWithContext(ctx, payload, &response, httpclient.OptPath("embeddings")); err != nil {
		return nil, err
	}
	return &response, nil
}

// Embedding generates a vector for a single input string
func (c *Client) Embedding(ctx context.Context, model, input string, opts ...Opt) ([]float64, error) {
	response, err := c.GenerateEmbedding(ctx, model, []string{input}, opts...)
	if err != nil {
		return nil, err
	}
	if len(response.Data) == 0 {
		return nil, ErrUnexpectedResponse.With("no embedding returned")
	}
	return response.Data[0].Embedding, nil
}
