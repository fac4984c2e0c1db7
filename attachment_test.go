package openai_test

import (
	"strings"
	"testing"

	// Packages
	openai "github.com/mutablelogic/go-openai"
	assert "github.com/stretchr/testify/assert"
)

func Test_attachment_001(t *testing.T) {
	assert := assert.New(t)

	// An explicit mimetype wins over detection
	attachment := openai.NewAttachment("clip.mp3", "audio/mpeg", []byte("not audio"))
	assert.Equal("clip.mp3", attachment.Filename())
	assert.Equal("audio/mpeg", attachment.Type())
	assert.Equal([]byte("not audio"), attachment.Data())
}

func Test_attachment_002(t *testing.T) {
	assert := assert.New(t)

	// Reading from a plain reader detects the type from content
	attachment, err := openai.ReadAttachment(strings.NewReader("<html></html>"))
	assert.NoError(err)
	assert.Contains(attachment.Type(), "text/html")
	assert.Empty(attachment.Filename())
}

func Test_attachment_003(t *testing.T) {
	assert := assert.New(t)

	// The detected type falls back to the filename extension for opaque
	// content
	attachment := openai.NewAttachment("doc.pdf", "", []byte{0x00, 0x01, 0x02, 0x03})
	assert.Equal("application/pdf", attachment.Type())
}
