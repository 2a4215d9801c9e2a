package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// Upload is an optional file attached to a form post.
type Upload struct {
	Filename string
	Content  io.Reader
}

// postForm sends fields (and file under fileField, if non-nil) as
// multipart/form-data.
func (c *Client) postForm(ctx context.Context, path string, fields [][2]string, fileField string, file *Upload, dst any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("writing field %s: %w", f[0], err)
		}
	}
	if file != nil && file.Content != nil {
		part, err := w.CreateFormFile(fileField, file.Filename)
		if err != nil {
			return fmt.Errorf("creating file part: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return fmt.Errorf("copying %s: %w", file.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing form: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, &buf, w.FormDataContentType(), dst)
}
