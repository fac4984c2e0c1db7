package openai

import (
	"context"
	"encoding/json"

	// Packages
	httpclient "github.com/mutablelogic/go-openai/pkg/httpclient"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// CompletionResponse is a text completion, or one chunk of a streamed
// text completion
type CompletionResponse struct {
	Id      string             `json:"id"`
	Type    string             `json:"object"`
	Created uint64             `json:"created"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
	Metrics `json:"usage,omitempty"`
}

// CompletionChoice is one completion variation
type CompletionChoice struct {
	Index  uint64 `json:"index"`
	Text   string `json:"text"`
	Reason string `json:"finish_reason,omitempty"`
}

type reqCompletion struct {
	Model         string   `json:"model"`
	Prompt        string   `json:"prompt"`
	MaxTokens     uint64   `json:"max_tokens,omitempty"`
	Temperature   float64  `json:"temperature,omitempty"`
	TopP          float64  `json:"top_p,omitempty"`
	Seed          uint64   `json:"seed,omitempty"`
	StopSequences []string `json:"stop,omitempty"`
	Stream        bool     `json:"stream,omitempty"`
	User          string   `json:"user,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r CompletionResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Text returns the text of the first choice, or empty
func (r *CompletionResponse) Text() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Text
}

// Completion sends a text completion request and returns the response
func (c *Client) Completion(ctx context.Context, model, prompt string, opts ...Opt) (*CompletionResponse, error) {
	opt, err := ApplyOpts(opts...)
	if err != nil {
		return nil, err
	}
	request, err := completionRequest(model, prompt, opt)
	if err != nil {
		return nil, err
	}
	transport, err := c.transport(opt)
	if err != nil {
		return nil, err
	}
	payload, err := httpclient.NewJSONRequest(request)
	if err != nil {
		return nil, err
	}

	var response CompletionResponse
	if err := transport.DoWithContext(ctx, payload, &response, httpclient.OptPath("completions")); err != nil {
		return nil, err
	}
	return &response, nil
}

// CompletionStream sends a text completion request and returns the lazy
// sequence of response chunks
func (c *Client) CompletionStream(ctx context.Context, model, prompt string, opts ...Opt) (*Stream[CompletionResponse], error) {
	opt, err := ApplyOpts(opts...)
	if err != nil {
		return nil, err
	}
	request, err := completionRequest(model, prompt, opt)
	if err != nil {
		return nil, err
	}
	request.Stream = true

	transport, err := c.transport(opt)
	if err != nil {
		return nil, err
	}
	payload, err := httpclient.NewJSONRequest(request)
	if err != nil {
		return nil, err
	}

	stream, err := transport.DoStreamWithContext(ctx, payload, httpclient.OptPath("completions"))
	if err != nil {
		return nil, err
	}
	return newStream[CompletionResponse](stream), nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func completionRequest(model, prompt string, opt *Opts) (*reqCompletion, error) {
	if model == "" {
		return nil, ErrBadParameter.With("missing model")
	}
	if prompt == "" {
		return nil, ErrBadParameter.With("missing prompt")
	}
	return &reqCompletion{
		Model:         model,
		Prompt:        prompt,
		MaxTokens:     opt.GetUint64(keyMaxTokens),
		Temperature:   opt.GetFloat64(keyTemperature),
		TopP:          opt.GetFloat64(keyTopP),
		Seed:          opt.GetUint64(keySeed),
		StopSequences: opt.GetStringSlice(keyStop),
		User:          opt.GetString(keyUser),
	}, nil
}
