package openai

import (
	"context"
	"encoding/json"
	"strings"

	// Packages
	httpclient "github.com/mutablelogic/go-openai/pkg/httpclient"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Message is one message within a chat conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// ChatResponse is a chat completion, or one chunk of a streamed chat
// completion
type ChatResponse struct {
	Id                string       `json:"id"`
	Type              string       `json:"object"`
	Created           uint64       `json:"created"`
	Model             string       `json:"model"`
	SystemFingerprint string       `json:"system_fingerprint,omitempty"`
	Choices           []ChatChoice `json:"choices"`
	Metrics           `json:"usage,omitempty"`
}

// ChatChoice is one completion variation. Message is set for regular
// responses and Delta for streamed chunks.
type ChatChoice struct {
	Index   uint64   `json:"index"`
	Message *Message `json:"message,omitempty"`
	Delta   *Message `json:"delta,omitempty"`
	Reason  string   `json:"finish_reason,omitempty"`
}

// Metrics is token accounting for a response
type Metrics struct {
	PromptTokens     uint64 `json:"prompt_tokens,omitempty"`
	CompletionTokens uint64 `json:"completion_tokens,omitempty"`
	TotalTokens      uint64 `json:"total_tokens,omitempty"`
}

type reqChat struct {
	Model         string    `json:"model"`
	Messages      []Message `json:"messages"`
	MaxTokens     uint64    `json:"max_completion_tokens,omitempty"`
	Temperature   float64   `json:"temperature,omitempty"`
	TopP          float64   `json:"top_p,omitempty"`
	Seed          uint64    `json:"seed,omitempty"`
	StopSequences []string  `json:"stop,omitempty"`
	Stream        bool      `json:"stream,omitempty"`
	User          string    `json:"user,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// SystemMessage returns a system role message
func SystemMessage(text string) Message {
	return Message{Role: "system", Content: text}
}

// UserMessage returns a user role message
func UserMessage(text string) Message {
	return Message{Role: "user", Content: text}
}

// AssistantMessage returns an assistant role message
func AssistantMessage(text string) Message {
	return Message{Role: "assistant", Content: text}
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r ChatResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Text returns the text of the first choice, or empty
func (r *ChatResponse) Text() string {
	if len(r.Choices) == 0 {
		return ""
	}
	if message := r.Choices[0].Message; message != nil {
		return message.Content
	}
	if delta := r.Choices[0].Delta; delta != nil {
		return delta.Content
	}
	return ""
}

// Chat sends a chat completion request and returns the response. With
// WithStreamCallback the response is streamed, the callback receives
// each chunk in order, and the accumulated final response is returned.
func (c *Client) Chat(ctx context.Context, model string, messages []Message, opts ...Opt) (*ChatResponse, error) {
	opt, err := ApplyOpts(opts...)
	if err != nil {
		return nil, err
	}
	request, err := chatRequest(model, messages, opt)
	if err != nil {
		return nil, err
	}
	transport, err := c.transport(opt)
	if err != nil {
		return nil, err
	}

	// Streaming path with accumulation
	if opt.callback != nil {
		request.Stream = true
		return chatStream(ctx, transport, request, opt.callback)
	}

	payload, err := httpclient.NewJSONRequest(request)
	if err != nil {
		return nil, err
	}

	var response ChatResponse
	if err := transport.DoWithContext(ctx, payload, &response, httpclient.OptPath("chat", "completions")); err != nil {
		return nil, err
	}
	return &response, nil
}

// ChatStream sends a chat completion request and returns the lazy
// sequence of response chunks. The sequence ends when the provider
// terminates the stream; the caller should drain or close it.
func (c *Client) ChatStream(ctx context.Context, model string, messages []Message, opts ...Opt) (*Stream[ChatResponse], error) {
	opt, err := ApplyOpts(opts...)
	if err != nil {
		return nil, err
	}
	request, err := chatRequest(model, messages, opt)
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

	stream, err := transport.DoStreamWithContext(ctx, payload, httpclient.OptPath("chat", "completions"))
	if err != nil {
		return nil, err
	}
	return newStream[ChatResponse](stream), nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func chatRequest(model string, messages []Message, opt *Opts) (*reqChat, error) {
	if model == "" {
		return nil, ErrBadParameter.With("missing model")
	}
	if len(messages) == 0 {
		return nil, ErrBadParameter.With("missing messages")
	}
	return &reqChat{
		Model:         model,
		Messages:      messages,
		MaxTokens:     opt.GetUint64(keyMaxTokens),
		Temperature:   opt.GetFloat64(keyTemperature),
		TopP:          opt.GetFloat64(keyTopP),
		Seed:          opt.GetUint64(keySeed),
		StopSequences: opt.GetStringSlice(keyStop),
		User:          opt.GetString(keyUser),
	}, nil
}

// chatStream consumes the SSE response, invoking the callback per chunk
// and accumulating deltas into a final response.
func chatStream(ctx context.Context, transport *httpclient.Client, request *reqChat, fn func(*ChatResponse)) (*ChatResponse, error) {
	payload, err := httpclient.NewJSONRequest(request)
	if err != nil {
		return nil, err
	}

	var (
		response ChatResponse
		role     string
		reason   string
		content  strings.Builder
	)

	callback := func(event httpclient.TextStreamEvent) error {
		var chunk ChatResponse
		if err := event.Json(&chunk); err != nil {
			return ErrUnexpectedResponse.Withf("malformed stream chunk: %v", err)
		}
		fn(&chunk)

		// Accumulate into the final response
		if chunk.Id != "" {
			response.Id = chunk.Id
		}
		if chunk.Model != "" {
			response.Model = chunk.Model
		}
		if chunk.Created != 0 {
			response.Created = chunk.Created
		}
		if chunk.TotalTokens != 0 {
			response.Metrics = chunk.Metrics
		}
		if len(chunk.Choices) == 0 {
			return nil
		}
		choice := chunk.Choices[0]
		if choice.Reason != "" {
			reason = choice.Reason
		}
		if delta := choice.Delta; delta != nil {
			if role == "" && delta.Role != "" {
				role = delta.Role
			}
			content.WriteString(delta.Content)
		}
		return nil
	}

	if err := transport.DoWithContext(ctx, payload, nil,
		httpclient.OptPath("chat", "completions"),
		httpclient.OptTextStreamCallback(callback),
	); err != nil {
		return nil, err
	}

	response.Type = "chat.completion"
	response.Choices = []ChatChoice{{
		Message: &Message{Role: role, Content: content.String()},
		Reason:  reason,
	}}
	return &response, nil
}
