package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// TextStreamEvent is one decoded server-sent-event frame.
type TextStreamEvent struct {
	// Event is the event name, when the frame carried an "event:" line
	Event string

	// Data is the frame payload, with multiple "data:" lines joined by
	// newlines
	Data string
}

// TextStreamCallback receives decoded frames in order. Returning io.EOF
// stops decoding cleanly; any other error aborts the stream.
type TextStreamCallback func(TextStreamEvent) error

// decodeState tracks where the decoder is between reads
type decodeState int

const (
	stateAwaitingDelimiter decodeState = iota
	statePartialFrame
	stateTerminated
)

// TextStream decodes an incremental byte stream of server-sent-event
// frames. It is single-pass and forward-only: frames are consumed as they
// are produced by the network and the stream cannot be restarted. Raw
// bytes are buffered across reads, since HTTP chunks do not align with
// frame boundaries, and a trailing partial frame is held until the next
// read completes it.
type TextStream struct {
	body   io.ReadCloser
	cancel context.CancelFunc
	buf    []byte
	chunk  []byte
	state  decodeState
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Sentinel payload marking the end of a stream
const textStreamSentinel = "[DONE]"

const textStreamChunkSize = 4096

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewTextStream returns a decoder over the given byte stream. The stream
// takes ownership of the body and closes it on termination.
func NewTextStream(body io.ReadCloser) *TextStream {
	return newTextStream(body, nil)
}

func newTextStream(body io.ReadCloser, cancel context.CancelFunc) *TextStream {
	return &TextStream{
		body:   body,
		cancel: cancel,
		chunk:  make([]byte, textStreamChunkSize),
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Json unmarshals the frame payload into v.
func (e TextStreamEvent) Json(v any) error {
	return json.Unmarshal([]byte(e.Data), v)
}

// Next returns the next decoded frame. It returns io.EOF once the
// sentinel terminator has been seen or the underlying stream has closed,
// whichever comes first; a stream which closes mid-frame discards the
// incomplete remainder. Cancellation of the request context ends the
// stream as if it had closed.
func (t *TextStream) Next() (*TextStreamEvent, error) {
	for t.state != stateTerminated {
		if event := t.nextFrame(); event != nil {
			return event, nil
		}
		if t.state == stateTerminated {
			break
		}

		n, err := t.body.Read(t.chunk)
		if n > 0 {
			// Drain complete frames before honoring any error returned
			// alongside the data; the next Read reports it again with
			// no bytes.
			t.buf = append(t.buf, t.chunk[:n]...)
			t.state = statePartialFrame
			continue
		}
		if err != nil {
			// A closed or cancelled stream terminates the sequence
			// cleanly; anything else is a read failure.
			t.terminate()
			if err == io.EOF || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, io.EOF
			}
			return nil, err
		}
	}
	return nil, io.EOF
}

// Close terminates the stream and releases the underlying body. It is
// safe to call more than once.
func (t *TextStream) Close() error {
	t.terminate()
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// nextFrame extracts complete frames from the buffer until one produces
// an event, the sentinel terminates the stream, or the buffer holds only
// a partial frame. Returns nil when more bytes are needed.
func (t *TextStream) nextFrame() *TextStreamEvent {
	for {
		frame, rest, ok := splitFrame(t.buf)
		if !ok {
			if len(t.buf) == 0 {
				t.state = stateAwaitingDelimiter
			}
			return nil
		}
		t.buf = rest

		event, data := parseFrame(frame)
		if data == nil {
			// Comment-only or event-only frame
			continue
		}
		payload := strings.Join(data, "\n")
		if payload == textStreamSentinel {
			t.terminate()
			return nil
		}
		return &TextStreamEvent{Event: event, Data: payload}
	}
}

func (t *TextStream) terminate() {
	if t.state == stateTerminated {
		return
	}
	t.state = stateTerminated
	t.buf = nil
	if t.body != nil {
		t.body.Close()
	}
	if t.cancel != nil {
		t.cancel()
	}
}

// splitFrame splits buf on the first frame delimiter, accepting both LF
// and CRLF line endings.
func splitFrame(buf []byte) (frame, rest []byte, ok bool) {
	i, w := bytes.Index(buf, []byte("\n\n")), 2
	if j := bytes.Index(buf, []byte("\r\n\r\n")); j >= 0 && (i < 0 || j < i) {
		i, w = j, 4
	}
	if i < 0 {
		return nil, buf, false
	}
	return buf[:i], buf[i+w:], true
}

// parseFrame returns the event name and data lines of one frame. Comment
// lines and unknown fields (id:, retry:) are ignored. data is nil when
// the frame carried no data lines at all.
func parseFrame(frame []byte) (event string, data []string) {
	for line := range strings.Lines(string(frame)) {
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "" || strings.HasPrefix(line, ":"):
			continue
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		}
	}
	return event, data
}
