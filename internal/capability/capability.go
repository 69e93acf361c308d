// Package capability defines the API each capability category exposes once
// an adaptor is bound. The resolution engine never looks at these types; the
// callers that bind do.
package capability

import (
	"context"
	"io"
	"net/url"
	"time"
)

// FileTransfer is the "file" category API.
type FileTransfer interface {
	URL() *url.URL
	// Fetch copies the remote content to w and returns the byte count.
	Fetch(ctx context.Context, w io.Writer) (int64, error)
	// Put uploads size bytes read from r. A negative size means unknown.
	Put(ctx context.Context, r io.Reader, size int64) error
}

// JobDescription describes a job for a JobService.
type JobDescription struct {
	Executable       string
	Arguments        []string
	Environment      map[string]string
	WorkingDirectory string
}

// JobResult is the outcome of a completed job.
type JobResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Started  time.Time
	Finished time.Time
}

// JobService is the "job" category API.
type JobService interface {
	URL() *url.URL
	Run(ctx context.Context, jd JobDescription) (*JobResult, error)
}

// StreamRequest is one emit-and-wait exchange on a Stream.
type StreamRequest struct {
	EmitEvent string
	EmitData  any
	OnEvent   string
	Timeout   time.Duration
}

// Stream is the "stream" category API.
type Stream interface {
	URL() *url.URL
	Request(ctx context.Context, req StreamRequest) (any, error)
}
