package openai_test

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	// Packages
	openai "github.com/mutablelogic/go-openai"
	httpclient "github.com/mutablelogic/go-openai/pkg/httpclient"
	assert "github.com/stretchr/testify/assert"
)

func Test_transcription_001(t *testing.T) {
	assert := assert.New(t)

	// Multipart fields arrive as form values, and the audio arrives as a
	// file part
	client, _ := newMockClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/audio/transcriptions", r.URL.Path)
		assert.NoError(r.ParseMultipartForm(1 << 20))
		assert.Equal("whisper-1", r.FormValue("model"))
		assert.Equal("en", r.FormValue("language"))
		assert.Equal("verbose_json", r.FormValue("response_format"))
		assert.Equal([]string{"segment", "word"}, r.MultipartForm.Value["timestamp_granularities[]"])

		file, header, err := r.FormFile("file")
		if assert.NoError(err) {
			defer file.Close()
			assert.Equal("speech.mp3", header.Filename)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"task": "transcribe",
			"language": "en",
			"duration": 2.5,
			"text": "hello world",
			"segments": [{"id": 0, "start": 0, "end": 2.5, "text": "hello world"}],
			"words": [{"word": "hello", "start": 0, "end": 1.2}, {"word": "world", "start": 1.2, "end": 2.5}]
		}`))
	})

	audio := strings.NewReader("not really audio")
	transcription, err := client.Transcription(context.TODO(), "whisper-1", audio,
		openai.WithFilename("speech.mp3"),
		openai.WithLanguage("en"),
		openai.WithResponseFormat("verbose_json"),
		openai.WithTimestampGranularities("segment", "word"),
	)
	assert.NoError(err)
	assert.Equal("hello world", transcription.Text)
	assert.Equal("en", transcription.Language)
	assert.Len(transcription.Segments, 1)
	assert.Len(transcription.Words, 2)
}

func Test_transcription_002(t *testing.T) {
	assert := assert.New(t)

	// A plain text response populates only the text
	client, _ := newMockClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(r.ParseMultipartForm(1 << 20))
		assert.Equal("text", r.FormValue("response_format"))

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("hello from text"))
	})

	transcription, err := client.Transcription(context.TODO(), "whisper-1", []byte("audio"), openai.WithResponseFormat("text"))
	assert.NoError(err)
	assert.Equal("hello from text", transcription.Text)
	assert.Empty(transcription.Segments)
}

func Test_transcription_003(t *testing.T) {
	assert := assert.New(t)

	// Supported audio argument types
	client, _ := newMockClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(r.ParseMultipartForm(1 << 20))
		_, header, err := r.FormFile("file")
		assert.NoError(err)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "` + header.Filename + `"}`))
	})

	// An attachment carries its own filename
	attachment := openai.NewAttachment("clip.wav", "audio/wav", []byte("RIFF"))
	transcription, err := client.Transcription(context.TODO(), "whisper-1", attachment)
	assert.NoError(err)
	assert.Equal("clip.wav", transcription.Text)

	// A file part passes through unchanged
	transcription, err = client.Transcription(context.TODO(), "whisper-1", httpclient.File{
		Path: "raw.ogg",
		Body: strings.NewReader("OggS"),
	})
	assert.NoError(err)
	assert.Equal("raw.ogg", transcription.Text)

	// A bare reader uses the default name
	transcription, err = client.Transcription(context.TODO(), "whisper-1", strings.NewReader("data"))
	assert.NoError(err)
	assert.Equal("audio", transcription.Text)
}

func Test_transcription_004(t *testing.T) {
	assert := assert.New(t)

	// Unsupported audio types and missing arguments fail before any
	// request is made
	var calls atomic.Int64
	client, _ := newMockClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := client.Transcription(context.TODO(), "whisper-1", 42)
	assert.ErrorIs(err, openai.ErrBadParameter)

	_, err = client.Transcription(context.TODO(), "whisper-1", nil)
	assert.ErrorIs(err, openai.ErrBadParameter)

	_, err = client.Transcription(context.TODO(), "", []byte("audio"))
	assert.ErrorIs(err, openai.ErrBadParameter)

	assert.Equal(int64(0), calls.Load())
}

func Test_transcription_005(t *testing.T) {
	assert := assert.New(t)

	// The chunking strategy serializes as JSON when structured
	client, _ := newMockClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(r.ParseMultipartForm(1 << 20))
		assert.JSONEq(`{"type": "server_vad", "threshold": 0.5}`, r.FormValue("chunking_strategy"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "ok"}`))
	})

	_, err := client.Transcription(context.TODO(), "whisper-1", []byte("audio"),
		openai.WithChunkingStrategy(map[string]any{"type": "server_vad", "threshold": 0.5}),
	)
	assert.NoError(err)
}
