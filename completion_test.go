package openai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	// Packages
	openai "github.com/mutablelogic/go-openai"
	assert "github.com/stretchr/testify/assert"
)

func Test_completion_001(t *testing.T) {
	assert := assert.New(t)

	client, _ := newMockClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/completions", r.URL.Path)
		var request map[string]any
		assert.NoError(json.NewDecoder(r.Body).Decode(&request))
		assert.Equal("gpt-3.5-turbo-instruct", request["model"])
		assert.Equal("Once upon a time", request["prompt"])
		assert.Equal(float64(50), request["max_tokens"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "text_completion",
			"model": "gpt-3.5-turbo-instruct",
			"choices": [{"index": 0, "text": " there was a fox", "finish_reason": "length"}],
			"usage": {"prompt_tokens": 4, "completion_tokens": 50, "total_tokens": 54}
		}`))
	})

	response, err := client.Completion(context.TODO(), "gpt-3.5-turbo-instruct", "Once upon a time", openai.WithMaxTokens(50))
	assert.NoError(err)
	assert.Equal(" there was a fox", response.Text())
	assert.Equal("length", response.Choices[0].Reason)
	assert.Equal(uint64(54), response.TotalTokens)
}

func Test_completion_002(t *testing.T) {
	assert := assert.New(t)

	// Missing model or prompt fail before any request is made
	var calls atomic.Int64
	client, _ := newMockClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := client.Completion(context.TODO(), "", "prompt")
	assert.ErrorIs(err, openai.ErrBadParameter)

	_, err = client.Completion(context.TODO(), "gpt-3.5-turbo-instruct", "")
	assert.ErrorIs(err, openai.ErrBadParameter)

	assert.Equal(int64(0), calls.Load())
}

func Test_completion_003(t *testing.T) {
	assert := assert.New(t)

	// Streamed completion chunks
	client, _ := newMockClient(t, func(w http.ResponseWriter, r *http.Request) {
		var request map[string]any
		assert.NoError(json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(true, request["stream"])

		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, `data: {"choices": [{"index": 0, "text": "one "}]}`+"\n\n")
		io.WriteString(w, `data: {"choices": [{"index": 0, "text": "two"}]}`+"\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
	})

	stream, err := client.CompletionStream(context.TODO(), "gpt-3.5-turbo-instruct", "count")
	assert.NoError(err)

	var text string
	for chunk, err := range stream.Iter() {
		assert.NoError(err)
		text += chunk.Text()
	}
	assert.Equal("one two", text)
}
