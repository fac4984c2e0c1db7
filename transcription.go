package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	// Packages
	httpclient "github.com/mutablelogic/go-openai/pkg/httpclient"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Transcription is the response to a transcription request. When the
// response format is plain text or a subtitle format, only the Text field
// is populated
type Transcription struct {
	Task     string                 `json:"task,omitempty"`
	Language string                 `json:"language,omitempty"`
	Duration float64                `json:"duration,omitempty"`
	Text     string                 `json:"text"`
	Segments []TranscriptionSegment `json:"segments,omitempty"`
	Words    []TranscriptionWord    `json:"words,omitempty"`
}

// TranscriptionSegment is a timed span of the transcript
type TranscriptionSegment struct {
	Id    uint64  `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptionWord is a single timed word of the transcript
type TranscriptionWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type reqTranscription struct {
	File                   httpclient.File `json:"file"`
	Model                  string          `json:"model"`
	Language               string          `json:"language,omitempty"`
	Prompt                 string          `json:"prompt,omitempty"`
	ResponseFormat         string          `json:"response_format,omitempty"`
	Temperature            float64         `json:"temperature,omitempty"`
	TimestampGranularities []string        `json:"timestamp_granularities[],omitempty"`
	Include                []string        `json:"include[],omitempty"`
	ChunkingStrategy       any             `json:"chunking_strategy,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (t Transcription) String() string {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Transcription transcribes audio into text in the input language. The
// audio can be supplied as an *Attachment, an *os.File, an io.Reader,
// a []byte or an httpclient.File
func (c *Client) Transcription(ctx context.Context, model string, audio any, opts ...Opt) (*Transcription, error) {
	opt, err := ApplyOpts(opts...)
	if err != nil {
		return nil, err
	}
	if model == "" {
		return nil, ErrBadParameter.With("missing model")
	}
	file, err := fileFor(audio, opt.filename)
	if err != nil {
		return nil, err
	}
	transport, err := c.transport(opt)
	if err != nil {
		return nil, err
	}
	payload, err := httpclient.NewMultipartRequest(reqTranscription{
		File:                   file,
		Model:                  model,
		Language:               opt.GetString(keyLanguage),
		Prompt:                 opt.GetString(keyPrompt),
		ResponseFormat:         opt.GetString(keyResponseFormat),
		Temperature:            opt.GetFloat64(keyTemperature),
		TimestampGranularities: opt.GetStringSlice(keyGranularities),
		Include:                opt.GetStringSlice(keyInclude),
		ChunkingStrategy:       opt.Get(keyChunking),
	}, httpclient.ContentTypeAny)
	if err != nil {
		return nil, err
	}

	var response Transcription
	if err := transport.DoWithContext(ctx, payload, &response, httpclient.OptPath("audio", "transcriptions")); err != nil {
		return nil, err
	}
	return &response, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// Unmarshal decodes the response body, which is JSON or plain text
// depending on the requested response format
func (t *Transcription) Unmarshal(mimetype string, r io.Reader) error {
	if strings.HasPrefix(mimetype, httpclient.ContentTypeJson) {
		return json.NewDecoder(r).Decode(t)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	t.Text = string(data)
	return nil
}

// fileFor normalizes the supported audio argument types into a multipart
// file part
func fileFor(audio any, filename string) (httpclient.File, error) {
	if filename == "" {
		filename = "audio"
	}
	switch v := audio.(type) {
	case httpclient.File:
		return v, nil
	case *Attachment:
		if v.Filename() != "" {
			filename = filepath.Base(v.Filename())
		}
		return httpclient.File{
			Path:        filename,
			ContentType: v.Type(),
			Body:        bytes.NewReader(v.Data()),
		}, nil
	case *os.File:
		return httpclient.File{
			Path: filepath.Base(v.Name()),
			Body: v,
		}, nil
	case io.Reader:
		return httpclient.File{
			Path: filename,
			Body: v,
		}, nil
	case []byte:
		return httpclient.File{
			Path: filename,
			Body: bytes.NewReader(v),
		}, nil
	default:
		return httpclient.File{}, ErrBadParameter.Withf("unsupported audio type %T", audio)
	}
}
