package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// File is a file part within a multipart request.
type File struct {
	// Path is the filename reported in the part header
	Path string

	// ContentType is the part content type; detected from the filename
	// extension when empty
	ContentType string

	// Body is the file content
	Body io.Reader
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewMultipartRequest returns a POST payload with a multipart/form-data
// body encoded from the fields of v, which must be a struct. Field names
// are taken from json tags; File fields become file parts, string slices
// become repeated fields, and struct or map values are JSON-serialized.
// Fields tagged omitempty are skipped when they hold their zero value.
func NewMultipartRequest(v any, accept string) (Payload, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("multipart: expected struct, got %T", v)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for i := range rv.NumField() {
		field := rv.Type().Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitempty := parseFieldTag(field)
		if name == "" {
			continue
		}
		if err := writeField(w, name, omitempty, rv.Field(i)); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return &payload{
		method: http.MethodPost,
		ctype:  w.FormDataContentType(),
		accept: accept,
		data:   buf.Bytes(),
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func parseFieldTag(field reflect.StructField) (name string, omitempty bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name, strings.Contains(opts, "omitempty")
}

func writeField(w *multipart.Writer, name string, omitempty bool, rv reflect.Value) error {
	// Unwrap pointers and interfaces, skipping nil values
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	if f, ok := rv.Interface().(File); ok {
		return writeFile(w, name, f)
	}

	switch rv.Kind() {
	case reflect.String:
		if v := rv.String(); !(omitempty && v == "") {
			return w.WriteField(name, v)
		}
	case reflect.Bool:
		if v := rv.Bool(); !(omitempty && !v) {
			return w.WriteField(name, strconv.FormatBool(v))
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v := rv.Int(); !(omitempty && v == 0) {
			return w.WriteField(name, strconv.FormatInt(v, 10))
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v := rv.Uint(); !(omitempty && v == 0) {
			return w.WriteField(name, strconv.FormatUint(v, 10))
		}
	case reflect.Float32, reflect.Float64:
		if v := rv.Float(); !(omitempty && v == 0) {
			return w.WriteField(name, strconv.FormatFloat(v, 'f', -1, 64))
		}
	case reflect.Slice:
		// Repeated field: one part per element
		for i := range rv.Len() {
			if err := writeField(w, name, false, rv.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Struct, reflect.Map:
		data, err := json.Marshal(rv.Interface())
		if err != nil {
			return err
		}
		return w.WriteField(name, string(data))
	default:
		return fmt.Errorf("multipart: unsupported field %q of kind %v", name, rv.Kind())
	}
	return nil
}

func writeFile(w *multipart.Writer, name string, f File) error {
	if f.Body == nil {
		return fmt.Errorf("multipart: file field %q has no body", name)
	}
	ctype := f.ContentType
	if ctype == "" {
		ctype = mime.TypeByExtension(filepath.Ext(f.Path))
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, f.Path))
	if ctype != "" {
		header.Set("Content-Type", ctype)
	}
	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f.Body)
	return err
}
