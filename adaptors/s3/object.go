package s3

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"

	"github.com/specialistvlad/sagago/internal/capability"
	"github.com/specialistvlad/sagago/internal/ctxlog"
)

var _ capability.FileTransfer = (*Object)(nil)

// Object is a single S3 object.
type Object struct {
	url    *url.URL
	target *url.URL
	client *http.Client
}

// URL returns the URL the object was bound with.
func (o *Object) URL() *url.URL { return o.url }

// Target returns the HTTPS URL requests are sent to.
func (o *Object) Target() *url.URL { return o.target }

// Fetch downloads the object into w.
func (o *Object) Fetch(ctx context.Context, w io.Writer) (int64, error) {
	logger := ctxlog.FromContext(ctx).With("adaptor", Name, "action", "download")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.target.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create S3 download request: %w", err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute S3 download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("S3 download failed with status: %s", resp.Status)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read S3 object: %w", err)
	}
	logger.Info("Successfully downloaded object", "bytes", n)
	return n, nil
}

// Put uploads size bytes from r. The content type is derived from the key's
// extension.
func (o *Object) Put(ctx context.Context, r io.Reader, size int64) error {
	logger := ctxlog.FromContext(ctx).With("adaptor", Name, "action", "upload")

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, o.target.String(), r)
	if err != nil {
		return fmt.Errorf("failed to create S3 upload request: %w", err)
	}
	switch {
	case size == 0:
		req.Body, req.ContentLength = http.NoBody, 0
	case size > 0:
		req.ContentLength = size
	}

	contentType := ContentType(o.target.Path)
	req.Header.Set("Content-Type", contentType)

	logger.Info("Uploading file to S3", "size", size, "contentType", contentType)

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute S3 upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("S3 upload failed with status: %s", resp.Status)
	}

	logger.Info("Successfully uploaded file", "status", resp.Status)
	return nil
}

// ContentType returns the MIME type for an object key, falling back to
// application/octet-stream.
func ContentType(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
