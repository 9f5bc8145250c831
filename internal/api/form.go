package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// Form accumulates a multipart form payload for uploads such as shop
// registration and product images. The content type (with its boundary) is
// produced by the writer; the client must not override it.
type Form struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	closed bool
}

func NewForm() *Form {
	f := &Form{}
	f.writer = multipart.NewWriter(&f.buf)
	return f
}

// AddField appends a plain text field. Empty values are skipped so partial
// updates do not blank server-side fields.
func (f *Form) AddField(name, value string) error {
	if value == "" {
		return nil
	}
	return f.writer.WriteField(name, value)
}

// AddFile appends a file part read from r.
func (f *Form) AddFile(field, filename string, r io.Reader) error {
	part, err := f.writer.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("create form file %s: %w", field, err)
	}
	_, err = io.Copy(part, r)
	if err != nil {
		return fmt.Errorf("copy form file %s: %w", field, err)
	}
	return nil
}

// ContentType returns the multipart content type including the boundary.
func (f *Form) ContentType() string {
	return f.writer.FormDataContentType()
}

// Reader finalizes the form and returns the encoded payload.
func (f *Form) Reader() (io.Reader, error) {
	if !f.closed {
		if err := f.writer.Close(); err != nil {
			return nil, err
		}
		f.closed = true
	}
	return bytes.NewReader(f.buf.Bytes()), nil
}
