package openai

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Attachment is a named blob of data, returned by the speech endpoint and
// accepted as input by the transcription endpoint
type Attachment struct {
	meta attachmentMeta
}

type attachmentMeta struct {
	Filename string `json:"filename,omitempty"`
	Mimetype string `json:"mimetype,omitempty"`
	Data     []byte `json:"data"`
}

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewAttachment creates an attachment from a filename, mimetype and data
func NewAttachment(filename, mimetype string, data []byte) *Attachment {
	return &Attachment{
		meta: attachmentMeta{
			Filename: filename,
			Mimetype: mimetype,
			Data:     data,
		},
	}
}

// ReadAttachment returns an attachment from a reader object.
// It is the responsibility of the caller to close the reader.
func ReadAttachment(r io.Reader, mimetype ...string) (*Attachment, error) {
	var filename string
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if f, ok := r.(*os.File); ok {
		filename = f.Name()
	}
	attachment := &Attachment{
		meta: attachmentMeta{
			Filename: filename,
			Data:     data,
		},
	}
	if len(mimetype) > 0 {
		attachment.meta.Mimetype = mimetype[0]
	}
	return attachment, nil
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (a *Attachment) MarshalJSON() ([]byte, error) {
	var j struct {
		Filename string `json:"filename,omitempty"`
		Type     string `json:"type"`
		Bytes    uint64 `json:"bytes"`
	}
	j.Filename = a.meta.Filename
	j.Type = a.Type()
	j.Bytes = uint64(len(a.meta.Data))
	return json.Marshal(j)
}

func (a *Attachment) String() string {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (a *Attachment) Filename() string {
	return a.meta.Filename
}

func (a *Attachment) Data() []byte {
	return a.meta.Data
}

// Type returns the mimetype of the attachment, detecting it from the
// content or the filename extension when not explicitly set
func (a *Attachment) Type() string {
	if a.meta.Mimetype != "" {
		return a.meta.Mimetype
	}
	mimetype := http.DetectContentType(a.meta.Data)
	if mimetype == "application/octet-stream" && a.meta.Filename != "" {
		mimetype = mime.TypeByExtension(filepath.Ext(a.meta.Filename))
	}
	return mimetype
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// Unmarshal stores the raw response body and content type
func (a *Attachment) Unmarshal(mimetype string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	a.meta.Mimetype = mimetype
	a.meta.Data = data
	return nil
}
