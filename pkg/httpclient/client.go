/*
httpclient issues HTTP requests against a JSON API, with retry and
backoff, lifecycle hooks, structured error normalization, and decoding
of server-sent-event streams. Configuration is immutable once a client
is constructed; per-call variations are made through a derived client
(Extend) or request options.
*/
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"mime"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	// Packages
	uuid "github.com/google/uuid"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Client is the transport adapter. All fields are set at construction
// and never mutated afterwards, so one client may serve any number of
// concurrent calls.
type Client struct {
	client   *http.Client
	endpoint *url.URL
	token    Token
	headers  http.Header
	ua       string
	timeout  time.Duration
	retry    RetryPolicy
	before   []RequestHook
	after    []ResponseHook
	onError  []ErrorHook
	trace    io.Writer
	verbose  bool
}

// Unmarshaler can decode a response body itself, given the response
// content type. It takes precedence over JSON decoding.
type Unmarshaler interface {
	Unmarshal(mimetype string, r io.Reader) error
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const requestIdHeader = "X-Request-Id"

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a client from the given options. An endpoint is required.
func New(opts ...ClientOpt) (*Client, error) {
	c := &Client{
		client:  &http.Client{},
		headers: make(http.Header),
		timeout: DefaultTimeout,
		retry:   DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.endpoint == nil {
		return nil, fmt.Errorf("missing endpoint")
	}
	return c, nil
}

// Extend derives a new client layering the given options over a copy of
// the current configuration. The derived client shares no mutable state
// with its parent: headers and hook lists are copied, so neither client
// can observe changes made through the other. Options win on collision.
func (c *Client) Extend(opts ...ClientOpt) (*Client, error) {
	endpoint := *c.endpoint
	derived := &Client{
		client:   c.client,
		endpoint: &endpoint,
		token:    c.token,
		headers:  maps.Clone(c.headers),
		ua:       c.ua,
		timeout:  c.timeout,
		retry:    c.retry,
		before:   slices.Clone(c.before),
		after:    slices.Clone(c.after),
		onError:  slices.Clone(c.onError),
		trace:    c.trace,
		verbose:  c.verbose,
	}
	if derived.headers == nil {
		derived.headers = make(http.Header)
	}
	for _, opt := range opts {
		if err := opt(derived); err != nil {
			return nil, err
		}
	}
	return derived, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Do issues a request and decodes the response into out. See
// DoWithContext.
func (c *Client) Do(in Payload, out any, opts ...RequestOpt) error {
	return c.DoWithContext(context.Background(), in, out, opts...)
}

// DoWithContext issues a request, retrying per the retry policy, and
// decodes the response into out. out may be nil to discard the body, a
// pointer for JSON decoding, a *string for text responses, or an
// Unmarshaler to consume the body directly. With OptTextStreamCallback
// the response is decoded as a server-sent-event stream instead and out
// is ignored.
func (c *Client) DoWithContext(ctx context.Context, in Payload, out any, opts ...RequestOpt) error {
	o, err := applyRequestOpts(opts...)
	if err != nil {
		return err
	}
	if c.timeout > 0 && !o.noTimeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.do(ctx, in, o)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if o.callback != nil {
		return decodeTextStream(resp.Body, o.callback)
	}
	return decodeResponse(resp, out)
}

// DoStreamWithContext issues a request and returns the live
// server-sent-event decoder over the response body. The caller owns the
// stream and must drain or close it; the client timeout spans the whole
// lifetime of the stream.
func (c *Client) DoStreamWithContext(ctx context.Context, in Payload, opts ...RequestOpt) (*TextStream, error) {
	o, err := applyRequestOpts(opts...)
	if err != nil {
		return nil, err
	}
	o.stream = true

	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 && !o.noTimeout {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}

	resp, err := c.do(ctx, in, o)
	if err != nil {
		cancel()
		return nil, err
	}
	return newTextStream(resp.Body, cancel), nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// do runs the attempt loop. On failure it normalizes exactly once, runs
// the error hooks, and returns the normalized error. Retries happen
// before normalization; only the final exhausted or non-retryable
// failure is normalized.
func (c *Client) do(ctx context.Context, in Payload, o *requestOpts) (*http.Response, error) {
	requestId := uuid.NewString()

	var lastResp *http.Response
	var lastErr error
	var lastReq *http.Request

	attempts := max(c.retry.MaxAttempts, 1)
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		req, err := c.request(ctx, in, o, requestId)
		if err != nil {
			return nil, err
		}
		lastReq = req

		for _, fn := range c.before {
			if err := fn(req); err != nil {
				return nil, err
			}
		}

		now := time.Now()
		resp, err := c.client.Do(req)
		c.emitTrace(req, resp, err, time.Since(now))

		if err == nil {
			for _, fn := range c.after {
				if err := fn(resp); err != nil {
					resp.Body.Close()
					return nil, err
				}
			}
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}
		}

		lastResp, lastErr = resp, err

		retry := attempt < attempts && c.retry.retryMethod(req.Method)
		if retry {
			if err != nil {
				retry = ctx.Err() == nil
			} else {
				retry = c.retry.retryStatus(resp.StatusCode)
			}
		}
		if !retry {
			break
		}

		// Drain so the connection can be reused, then back off
		if resp != nil {
			io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrBody))
			resp.Body.Close()
		}
		if err := sleep(ctx, c.retry.delay(attempt)); err != nil {
			lastResp, lastErr = nil, err
			break
		}
	}

	// Normalize the final failure and run the error hooks
	var apierr *APIError
	if lastResp != nil {
		defer lastResp.Body.Close()
		apierr = normalizeResponse(lastReq, lastResp)
	} else if lastErr != nil {
		apierr = normalizeErr(lastReq, lastErr)
	} else {
		return nil, fmt.Errorf("request failed")
	}
	for _, fn := range c.onError {
		fn(apierr)
	}
	return nil, apierr
}

// request builds one attempt. Default headers are copied onto the
// request, then per-request overrides are applied on top, so the caller
// wins on collision.
func (c *Client) request(ctx context.Context, in Payload, o *requestOpts, requestId string) (*http.Request, error) {
	endpoint := *c.endpoint
	u := endpoint.JoinPath(o.path...)
	if len(o.query) > 0 {
		query := u.Query()
		for key, values := range o.query {
			for _, value := range values {
				query.Add(key, value)
			}
		}
		u.RawQuery = query.Encode()
	}

	method := http.MethodGet
	var body io.Reader
	if in != nil {
		method = in.Method()
		if data := in.Data(); data != nil {
			body = bytes.NewReader(data)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	for key, values := range c.headers {
		req.Header[key] = slices.Clone(values)
	}
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}
	if c.token.Value != "" {
		req.Header.Set("Authorization", c.token.Scheme+" "+c.token.Value)
	}
	req.Header.Set(requestIdHeader, requestId)
	if in != nil && in.Type() != "" {
		req.Header.Set("Content-Type", in.Type())
	}
	switch {
	case o.stream:
		req.Header.Set("Accept", ContentTypeTextStream)
	case in != nil && in.Accept() != "":
		req.Header.Set("Accept", in.Accept())
	}
	for key, values := range o.headers {
		req.Header[key] = slices.Clone(values)
	}

	return req, nil
}

func (c *Client) emitTrace(req *http.Request, resp *http.Response, err error, dur time.Duration) {
	if c.trace == nil {
		return
	}
	switch {
	case err != nil:
		fmt.Fprintf(c.trace, "%v %v => %v (%v)\n", req.Method, req.URL, err, dur)
	default:
		fmt.Fprintf(c.trace, "%v %v => %v (%v)\n", req.Method, req.URL, resp.Status, dur)
	}
	if c.verbose {
		for key, values := range req.Header {
			if key == "Authorization" {
				values = []string{"****"}
			}
			fmt.Fprintf(c.trace, "  > %v: %v\n", key, values)
		}
		if resp != nil {
			for key, values := range resp.Header {
				fmt.Fprintf(c.trace, "  < %v: %v\n", key, values)
			}
		}
	}
}

// decodeTextStream drains the body through the frame decoder, invoking
// the callback per frame. io.EOF from the callback stops decoding
// without error.
func decodeTextStream(body io.ReadCloser, fn TextStreamCallback) error {
	stream := NewTextStream(body)
	defer stream.Close()
	for {
		event, err := stream.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(*event); err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
	}
}

func decodeResponse(resp *http.Response, out any) error {
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	mimetype := resp.Header.Get("Content-Type")
	if parsed, _, err := mime.ParseMediaType(mimetype); err == nil {
		mimetype = parsed
	}

	if u, ok := out.(Unmarshaler); ok {
		return u.Unmarshal(mimetype, resp.Body)
	}
	if mimetype == ContentTypeJson {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	if s, ok := out.(*string); ok && strings.HasPrefix(mimetype, "text/") {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		*s = string(data)
		return nil
	}
	return fmt.Errorf("unexpected response content type %q", mimetype)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
