package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// ErrorDetail is the error object returned in the body of a failed API
// response, under the "error" key.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Param   string `json:"param,omitempty"`
	Code    any    `json:"code,omitempty"`
}

// APIError is the normalized form of a failed request. For HTTP failures
// StatusCode is the response status and Headers is a copy of the response
// headers; for transport failures (no response received) StatusCode is
// zero and the underlying cause is available through Unwrap.
type APIError struct {
	Method     string
	URL        string
	StatusCode int

	// Detail is the parsed error body, when the body was JSON with an
	// "error" key
	Detail *ErrorDetail

	// Message is the raw body text when the body could not be parsed,
	// or the cause message for transport failures
	Message string

	// Headers is a copy of the response headers
	Headers http.Header

	cause error
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Cap on how much of an error body is read during normalization
const maxErrBody = 1 << 20

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// normalizeResponse converts a non-2xx response into an APIError. The body
// is read once, capped at maxErrBody, and re-materialized on the response
// so later readers are unaffected. Parsing is best-effort: a body which is
// not a JSON error envelope degrades to its raw text, never to a secondary
// error.
func normalizeResponse(req *http.Request, resp *http.Response) *APIError {
	err := &APIError{
		Method:     req.Method,
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		Headers:    resp.Header.Clone(),
	}

	var raw []byte
	if resp.Body != nil {
		raw, _ = io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		resp.Body = io.NopCloser(bytes.NewReader(raw))
	}
	err.Message = strings.TrimSpace(string(raw))

	var envelope struct {
		Error *ErrorDetail `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil {
		err.Detail = envelope.Error
	}

	return err
}

// normalizeErr converts a transport-level failure (no response) into an
// APIError wrapping the cause.
func normalizeErr(req *http.Request, cause error) *APIError {
	err := &APIError{
		Message: cause.Error(),
		cause:   cause,
	}
	if req != nil {
		err.Method = req.Method
		err.URL = req.URL.String()
	}
	return err
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (e *APIError) Error() string {
	var b strings.Builder
	if e.Method != "" {
		b.WriteString(e.Method)
		b.WriteString(" ")
	}
	if e.URL != "" {
		b.WriteString(e.URL)
		b.WriteString(": ")
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, "http %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	} else {
		b.WriteString("request failed")
	}
	switch {
	case e.Detail != nil && e.Detail.Message != "":
		b.WriteString(": ")
		b.WriteString(e.Detail.Message)
	case e.Message != "":
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.cause
}
