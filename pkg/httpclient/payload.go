package httpclient

import (
	"encoding/json"
	"net/http"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Payload is a request body together with the HTTP method and content
// negotiation headers used to send it. Payload data is fully buffered so
// the transport can replay it across retry attempts.
type Payload interface {
	// Method returns the HTTP method for the request
	Method() string

	// Type returns the content type of the payload, or empty when
	// there is no body
	Type() string

	// Accept returns the accepted response content type, or empty
	// for any
	Accept() string

	// Data returns the buffered request body, or nil when there is
	// no body
	Data() []byte
}

type payload struct {
	method string
	ctype  string
	accept string
	data   []byte
}

var _ Payload = (*payload)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ContentTypeAny        = "*/*"
	ContentTypeJson       = "application/json"
	ContentTypeTextStream = "text/event-stream"
	ContentTypeBinary     = "application/octet-stream"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewRequest returns a payload for a GET request with no body.
func NewRequest() Payload {
	return &payload{
		method: http.MethodGet,
		accept: ContentTypeJson,
	}
}

// NewJSONRequest returns a payload for a POST request with a JSON body
// marshalled from v.
func NewJSONRequest(v any) (Payload, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &payload{
		method: http.MethodPost,
		ctype:  ContentTypeJson,
		accept: ContentTypeJson,
		data:   data,
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (p *payload) Method() string {
	return p.method
}

func (p *payload) Type() string {
	return p.ctype
}

func (p *payload) Accept() string {
	return p.accept
}

func (p *payload) Data() []byte {
	return p.data
}
