/*
openai implements an API client for OpenAI
https://platform.openai.com/docs/api-reference
*/
package openai

import (
	"os"
	"time"

	// Packages
	httpclient "github.com/mutablelogic/go-openai/pkg/httpclient"
	modelcache "github.com/mutablelogic/go-openai/pkg/modelcache"
	version "github.com/mutablelogic/go-openai/pkg/version"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Client struct {
	*httpclient.Client
	cache *modelcache.ModelCache[Model]
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	endPoint    = "https://api.openai.com/v1"
	defaultName = "openai"

	envApiKey       = "OPENAI_API_KEY"
	envOrganization = "OPENAI_ORG_ID"

	modelCacheTTL = time.Hour
	modelCacheCap = 40
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a new client. When apiKey is empty it falls back to the
// OPENAI_API_KEY environment variable; a missing key is an error before
// any network activity. Options are applied after the defaults, so a
// caller can override the endpoint, timeout or retry policy.
func New(apiKey string, opts ...httpclient.ClientOpt) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv(envApiKey)
	}
	if apiKey == "" {
		return nil, ErrBadParameter.With("missing API key")
	}

	defaults := []httpclient.ClientOpt{
		httpclient.OptEndpoint(endPoint),
		httpclient.OptUserAgent("go-openai/" + version.Version()),
		httpclient.OptReqToken(httpclient.Token{
			Scheme: httpclient.Bearer,
			Value:  apiKey,
		}),
	}
	if org := os.Getenv(envOrganization); org != "" {
		defaults = append(defaults, OptOrganization(org))
	}

	client, err := httpclient.New(append(defaults, opts...)...)
	if err != nil {
		return nil, err
	}

	return &Client{
		Client: client,
		cache:  modelcache.NewModelCache(modelCacheTTL, modelCacheCap, modelName),
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// OptOrganization sets the organization header sent with each request
func OptOrganization(v string) httpclient.ClientOpt {
	return httpclient.OptHeader("OpenAI-Organization", v)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Return the name of the provider
func (*Client) Name() string {
	return defaultName
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// transport returns the client transport, derived with per-call header
// overrides when any were set. The derived transport is short-lived and
// never mutates the original.
func (c *Client) transport(opt *Opts) (*httpclient.Client, error) {
	if len(opt.headers) == 0 {
		return c.Client, nil
	}
	extend := make([]httpclient.ClientOpt, 0, len(opt.headers))
	for key, value := range opt.headers {
		extend = append(extend, httpclient.OptHeader(key, value))
	}
	return c.Client.Extend(extend...)
}
