package httpclient_test

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"

	// Packages
	httpclient "github.com/mutablelogic/go-openai/pkg/httpclient"
	assert "github.com/stretchr/testify/assert"
)

// parseMultipart decodes a multipart payload into field values and file
// parts keyed by field name
func parseMultipart(t *testing.T, payload httpclient.Payload) (map[string][]string, map[string]*multipart.FileHeader) {
	t.Helper()
	_, params, err := mime.ParseMediaType(payload.Type())
	if err != nil {
		t.Fatal(err)
	}
	reader := multipart.NewReader(bytes.NewReader(payload.Data()), params["boundary"])
	form, err := reader.ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	files := make(map[string]*multipart.FileHeader)
	for name, headers := range form.File {
		files[name] = headers[0]
	}
	return form.Value, files
}

func Test_multipart_001(t *testing.T) {
	assert := assert.New(t)

	// Scalar fields, repeated fields and file parts
	payload, err := httpclient.NewMultipartRequest(struct {
		File        httpclient.File `json:"file"`
		Model       string          `json:"model"`
		Temperature float64         `json:"temperature,omitempty"`
		Languages   []string        `json:"languages[],omitempty"`
	}{
		File: httpclient.File{
			Path:        "audio.mp3",
			ContentType: "audio/mpeg",
			Body:        strings.NewReader("not really audio"),
		},
		Model:       "whisper-1",
		Temperature: 0.5,
		Languages:   []string{"en", "de"},
	}, httpclient.ContentTypeAny)
	assert.NoError(err)
	assert.Equal("POST", payload.Method())
	assert.Contains(payload.Type(), "multipart/form-data")

	values, files := parseMultipart(t, payload)
	assert.Equal([]string{"whisper-1"}, values["model"])
	assert.Equal([]string{"0.5"}, values["temperature"])
	assert.Equal([]string{"en", "de"}, values["languages[]"])

	if file := files["file"]; assert.NotNil(file) {
		assert.Equal("audio.mp3", file.Filename)
		assert.Equal("audio/mpeg", file.Header.Get("Content-Type"))
		f, err := file.Open()
		assert.NoError(err)
		defer f.Close()
		data, err := io.ReadAll(f)
		assert.NoError(err)
		assert.Equal("not really audio", string(data))
	}
}

func Test_multipart_002(t *testing.T) {
	assert := assert.New(t)

	// Zero values tagged omitempty are skipped, untagged zero values are
	// not
	payload, err := httpclient.NewMultipartRequest(struct {
		Model    string  `json:"model"`
		Language string  `json:"language,omitempty"`
		Speed    float64 `json:"speed,omitempty"`
	}{
		Model: "whisper-1",
	}, httpclient.ContentTypeJson)
	assert.NoError(err)

	values, _ := parseMultipart(t, payload)
	assert.Equal([]string{"whisper-1"}, values["model"])
	assert.NotContains(values, "language")
	assert.NotContains(values, "speed")
}

func Test_multipart_003(t *testing.T) {
	assert := assert.New(t)

	// Struct and map values serialize as JSON fields, nil interface
	// values are skipped
	payload, err := httpclient.NewMultipartRequest(struct {
		Chunking any `json:"chunking_strategy,omitempty"`
		Missing  any `json:"missing,omitempty"`
	}{
		Chunking: map[string]string{"type": "auto"},
	}, httpclient.ContentTypeAny)
	assert.NoError(err)

	values, _ := parseMultipart(t, payload)
	assert.Equal([]string{`{"type":"auto"}`}, values["chunking_strategy"])
	assert.NotContains(values, "missing")
}

func Test_multipart_004(t *testing.T) {
	assert := assert.New(t)

	// Non-struct values are rejected
	_, err := httpclient.NewMultipartRequest("not a struct", httpclient.ContentTypeAny)
	assert.Error(err)

	// A file part requires a body
	_, err = httpclient.NewMultipartRequest(struct {
		File httpclient.File `json:"file"`
	}{
		File: httpclient.File{Path: "empty.mp3"},
	}, httpclient.ContentTypeAny)
	assert.Error(err)
}

func Test_multipart_005(t *testing.T) {
	assert := assert.New(t)

	// A file part without an explicit content type detects it from the
	// filename extension
	payload, err := httpclient.NewMultipartRequest(struct {
		File httpclient.File `json:"file"`
	}{
		File: httpclient.File{
			Path: "report.pdf",
			Body: strings.NewReader("%PDF-1.4"),
		},
	}, httpclient.ContentTypeAny)
	assert.NoError(err)

	_, files := parseMultipart(t, payload)
	if file := files["file"]; assert.NotNil(file) {
		assert.Equal("application/pdf", file.Header.Get("Content-Type"))
	}
}
