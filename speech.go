package openai

import (
	"context"

	// Packages
	httpclient "github.com/mutablelogic/go-openai/pkg/httpclient"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type reqSpeech struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed,omitempty"`
	ResponseFormat string  `json:"response_format,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Speech synthesizes audio from the input text and returns it as an
// attachment. The audio format can be set with WithAudioFormat and the
// speaking rate with WithSpeed
func (c *Client) Speech(ctx context.Context, model, voice, input string, opts ...Opt) (*Attachment, error) {
	opt, err := ApplyOpts(opts...)
	if err != nil {
		return nil, err
	}
	if model == "" {
		return nil, ErrBadParameter.With("missing model")
	}
	if voice == "" {
		return nil, ErrBadParameter.With("missing voice")
	}
	if input == "" {
		return nil, ErrBadParameter.With("missing input")
	}
	transport, err := c.transport(opt)
	if err != nil {
		return nil, err
	}
	payload, err := httpclient.NewJSONRequest(reqSpeech{
		Model:          model,
		Input:          input,
		Voice:          voice,
		Speed:          opt.GetFloat64(keySpeed),
		ResponseFormat: opt.GetString(keyAudioFormat),
	})
	if err != nil {
		return nil, err
	}

	// The response body is raw audio, stored into the attachment through
	// its Unmarshal method
	var response Attachment
	if err := transport.DoWithContext(ctx, payload, &response, httpclient.OptPath("audio", "speech")); err != nil {
		return nil, err
	}
	if opt.filename != "" {
		response.meta.Filename = opt.filename
	}
	return &response, nil
}
