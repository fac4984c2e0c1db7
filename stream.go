package openai

import (
	"io"
	"iter"

	// Packages
	httpclient "github.com/mutablelogic/go-openai/pkg/httpclient"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Stream is a lazy, forward-only sequence of decoded chunks read from a
// live response stream. It is single-pass: once consumed it cannot be
// restarted, since it mirrors the underlying network stream. A chunk
// whose payload is not valid JSON is a fatal error ending the sequence.
type Stream[T any] struct {
	stream *httpclient.TextStream
	done   bool
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func newStream[T any](stream *httpclient.TextStream) *Stream[T] {
	return &Stream[T]{stream: stream}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Next returns the next chunk, or io.EOF once the stream has ended.
// Cancelling the request context ends the stream as if it had closed.
func (s *Stream[T]) Next() (*T, error) {
	if s.done {
		return nil, io.EOF
	}

	event, err := s.stream.Next()
	if err != nil {
		s.done = true
		s.stream.Close()
		return nil, err
	}

	var chunk T
	if err := event.Json(&chunk); err != nil {
		s.done = true
		s.stream.Close()
		return nil, ErrUnexpectedResponse.Withf("malformed stream chunk: %v", err)
	}
	return &chunk, nil
}

// Iter returns the remaining chunks as an iterator. The stream is
// closed when iteration stops, whether by exhaustion, error, or the
// caller breaking out of the loop.
func (s *Stream[T]) Iter() iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		defer s.Close()
		for {
			chunk, err := s.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// Close releases the underlying stream. It is safe to call more than
// once.
func (s *Stream[T]) Close() error {
	s.done = true
	return s.stream.Close()
}
