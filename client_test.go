package openai_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	// Packages
	godotenv "github.com/joho/godotenv"
	openai "github.com/mutablelogic/go-openai"
	httpclient "github.com/mutablelogic/go-openai/pkg/httpclient"
	assert "github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// TEST SET-UP

var (
	apiKey string
)

func TestMain(m *testing.M) {
	// API KEY
	godotenv.Load()
	apiKey = os.Getenv("OPENAI_API_KEY")
	os.Exit(m.Run())
}

// newMockClient returns a client pointed at the given handler
func newMockClient(t *testing.T, handler http.HandlerFunc) (*openai.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := openai.New("test-key", httpclient.OptEndpoint(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	return client, server
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_client_001(t *testing.T) {
	// Creating a client without an API key or environment fallback fails
	// before any network activity
	assert := assert.New(t)
	t.Setenv("OPENAI_API_KEY", "")
	_, err := openai.New("")
	assert.ErrorIs(err, openai.ErrBadParameter)
}

func Test_client_002(t *testing.T) {
	// The environment variable is used when no key is given
	assert := assert.New(t)
	t.Setenv("OPENAI_API_KEY", "from-env")
	client, err := openai.New("")
	assert.NoError(err)
	assert.NotNil(client)
}

func Test_client_003(t *testing.T) {
	// Name returns the provider name
	assert := assert.New(t)
	client, err := openai.New("test-key")
	assert.NoError(err)
	assert.Equal("openai", client.Name())
}

func Test_client_004(t *testing.T) {
	// The bearer token and organization header are sent with requests
	assert := assert.New(t)

	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client, err := openai.New("test-key",
		httpclient.OptEndpoint(server.URL),
		openai.OptOrganization("org-123"),
	)
	assert.NoError(err)

	_, err = client.ListModels(context.TODO())
	assert.NoError(err)
	assert.Equal("Bearer test-key", got.Get("Authorization"))
	assert.Equal("org-123", got.Get("OpenAI-Organization"))
	assert.Contains(got.Get("User-Agent"), "go-openai")
}

func Test_client_005(t *testing.T) {
	// Live test against the real service
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set, skipping")
	}
	assert := assert.New(t)
	client, err := openai.New(apiKey, httpclient.OptTrace(os.Stderr, false))
	assert.NoError(err)

	models, err := client.ListModels(context.TODO())
	assert.NoError(err)
	assert.NotEmpty(models)
	t.Log(models)
}
