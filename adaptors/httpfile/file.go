package httpfile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/specialistvlad/sagago/internal/capability"
	"github.com/specialistvlad/sagago/internal/ctxlog"
)

var _ capability.FileTransfer = (*File)(nil)

// File is a remote file reachable with GET and PUT.
type File struct {
	url    *url.URL
	client *http.Client

	user, pass string
	token      string
}

// URL returns the bound URL.
func (f *File) URL() *url.URL { return f.url }

func (f *File) newRequest(ctx context.Context, method string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, f.url.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	switch {
	case f.user != "":
		req.SetBasicAuth(f.user, f.pass)
	case f.token != "":
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	return req, nil
}

// Fetch downloads the file into w.
func (f *File) Fetch(ctx context.Context, w io.Writer) (int64, error) {
	logger := ctxlog.FromContext(ctx).With("adaptor", Name, "url", f.url.Redacted())
	logger.Debug("Fetching file.")

	req, err := f.newRequest(ctx, http.MethodGet, nil)
	if err != nil {
		return 0, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("fetch %s failed with status: %s", f.url.Redacted(), resp.Status)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read response body: %w", err)
	}
	logger.Debug("File fetched.", "bytes", n, "status", resp.Status)
	return n, nil
}

// Put uploads size bytes from r. A negative size sends a chunked body.
func (f *File) Put(ctx context.Context, r io.Reader, size int64) error {
	logger := ctxlog.FromContext(ctx).With("adaptor", Name, "url", f.url.Redacted())

	req, err := f.newRequest(ctx, http.MethodPut, r)
	if err != nil {
		return err
	}
	switch {
	case size == 0:
		req.Body, req.ContentLength = http.NoBody, 0
	case size > 0:
		req.ContentLength = size
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("put %s failed with status: %s", f.url.Redacted(), resp.Status)
	}
	logger.Info("File uploaded.", "status", resp.Status, "size", size)
	return nil
}
