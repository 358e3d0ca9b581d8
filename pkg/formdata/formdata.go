// Package formdata decodes multipart/form-data bodies into fully buffered
// field and file maps.
package formdata

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
)

var (
	// ErrContentType indicates the request is not multipart/form-data or lacks a boundary.
	ErrContentType = errors.New("content type must be multipart/form-data with a boundary")
	// ErrMalformed indicates the multipart stream could not be decoded.
	ErrMalformed = errors.New("malformed multipart body")
)

// File is a fully buffered file part.
type File struct {
	Content     []byte
	Filename    string
	ContentType string
}

// Request holds the decoded parts of one multipart body.
// Repeated field names keep the last value; the same holds for files.
type Request struct {
	Fields map[string]string
	Files  map[string]File
}

// Field returns the named field value, or "" when absent.
func (r *Request) Field(name string) string {
	return r.Fields[name]
}

// File returns the named file part and whether it was present.
func (r *Request) File(name string) (File, bool) {
	f, ok := r.Files[name]
	return f, ok
}

// Base64 wraps a base64-encoded body so Parse can consume it directly.
func Base64(body io.Reader) io.Reader {
	return base64.NewDecoder(base64.StdEncoding, body)
}

// Parse reads body to the end of the multipart stream and returns the
// decoded request. No partial result is returned on error.
func Parse(ctx context.Context, body io.Reader, contentType string) (*Request, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" || params["boundary"] == "" {
		return nil, ErrContentType
	}

	req := &Request{
		Fields: make(map[string]string),
		Files:  make(map[string]File),
	}

	reader := multipart.NewReader(body, params["boundary"])
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return req, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}

		if err := req.consume(part); err != nil {
			part.Close()
			return nil, err
		}
		part.Close()
	}
}

func (r *Request) consume(part *multipart.Part) error {
	name := part.FormName()
	if name == "" {
		return nil
	}

	data, err := io.ReadAll(part)
	if err != nil {
		return fmt.Errorf("%w: part %s: %w", ErrMalformed, name, err)
	}

	if part.FileName() == "" {
		r.Fields[name] = string(data)
		return nil
	}

	contentType := part.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	r.Files[name] = File{
		Content:     data,
		Filename:    part.FileName(),
		ContentType: contentType,
	}
	return nil
}
