package httpclient

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// ClientOpt configures a client at construction or derivation time
type ClientOpt func(*Client) error

// RequestOpt configures a single request
type RequestOpt func(*requestOpts) error

// Token is a request authorization token
type Token struct {
	Scheme string
	Value  string
}

// RequestHook runs before each attempt is sent. Returning an error aborts
// the call.
type RequestHook func(*http.Request) error

// ResponseHook runs after each response is received, before decoding.
// Returning an error aborts the call.
type ResponseHook func(*http.Response) error

// ErrorHook runs once per failed call with the normalized error, before
// it is returned to the caller.
type ErrorHook func(error)

type requestOpts struct {
	path      []string
	query     url.Values
	headers   http.Header
	callback  TextStreamCallback
	noTimeout bool
	stream    bool
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// Bearer token scheme
	Bearer = "Bearer"

	// DefaultTimeout for a request, including retries and, for
	// streaming requests, the lifetime of the stream
	DefaultTimeout = 10 * time.Minute
)

///////////////////////////////////////////////////////////////////////////////
// CLIENT OPTIONS

// OptEndpoint sets the base URL for all requests
func OptEndpoint(v string) ClientOpt {
	return func(c *Client) error {
		u, err := url.Parse(v)
		if err != nil {
			return err
		}
		if u.Scheme == "" || u.Host == "" {
			return errors.New("endpoint must be an absolute URL")
		}
		c.endpoint = u
		return nil
	}
}

// OptReqToken sets the authorization token sent with each request
func OptReqToken(t Token) ClientOpt {
	return func(c *Client) error {
		c.token = t
		return nil
	}
}

// OptHeader sets a default header sent with each request
func OptHeader(key, value string) ClientOpt {
	return func(c *Client) error {
		c.headers.Set(key, value)
		return nil
	}
}

// OptUserAgent sets the User-Agent header
func OptUserAgent(v string) ClientOpt {
	return func(c *Client) error {
		c.ua = v
		return nil
	}
}

// OptTimeout sets the timeout for each call. Zero disables the timeout.
func OptTimeout(d time.Duration) ClientOpt {
	return func(c *Client) error {
		c.timeout = d
		return nil
	}
}

// OptRetryPolicy sets the retry policy
func OptRetryPolicy(p RetryPolicy) ClientOpt {
	return func(c *Client) error {
		c.retry = p
		return nil
	}
}

// OptRequestHook appends a hook run before each attempt, in registration
// order
func OptRequestHook(fn RequestHook) ClientOpt {
	return func(c *Client) error {
		if fn != nil {
			c.before = append(c.before, fn)
		}
		return nil
	}
}

// OptResponseHook appends a hook run after each response, in registration
// order
func OptResponseHook(fn ResponseHook) ClientOpt {
	return func(c *Client) error {
		if fn != nil {
			c.after = append(c.after, fn)
		}
		return nil
	}
}

// OptErrorHook appends a hook run once per failed call with the
// normalized error, in registration order
func OptErrorHook(fn ErrorHook) ClientOpt {
	return func(c *Client) error {
		if fn != nil {
			c.onError = append(c.onError, fn)
		}
		return nil
	}
}

// OptTrace writes a line per attempt to w. When verbose is set, request
// and response headers are included.
func OptTrace(w io.Writer, verbose bool) ClientOpt {
	return func(c *Client) error {
		c.trace = w
		c.verbose = verbose
		return nil
	}
}

// OptHTTPClient sets the underlying HTTP client
func OptHTTPClient(v *http.Client) ClientOpt {
	return func(c *Client) error {
		if v == nil {
			return errors.New("nil http client")
		}
		c.client = v
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// REQUEST OPTIONS

// OptPath appends path segments to the endpoint path for this request
func OptPath(segments ...string) RequestOpt {
	return func(o *requestOpts) error {
		o.path = append(o.path, segments...)
		return nil
	}
}

// OptQuery merges query parameters into the request URL
func OptQuery(v url.Values) RequestOpt {
	return func(o *requestOpts) error {
		for key, values := range v {
			for _, value := range values {
				o.query.Add(key, value)
			}
		}
		return nil
	}
}

// OptReqHeader sets a header for this request only, overriding any
// default header with the same key
func OptReqHeader(key, value string) RequestOpt {
	return func(o *requestOpts) error {
		o.headers.Set(key, value)
		return nil
	}
}

// OptTextStreamCallback decodes the response as a server-sent-event
// stream, invoking fn once per frame in order
func OptTextStreamCallback(fn TextStreamCallback) RequestOpt {
	return func(o *requestOpts) error {
		o.callback = fn
		o.stream = true
		return nil
	}
}

// OptNoTimeout disables the client timeout for this request
func OptNoTimeout() RequestOpt {
	return func(o *requestOpts) error {
		o.noTimeout = true
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func applyRequestOpts(opts ...RequestOpt) (*requestOpts, error) {
	o := &requestOpts{
		query:   make(url.Values),
		headers: make(http.Header),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}
