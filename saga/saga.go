// Package saga is the client entry point. It binds a capability category and
// a resource URL to the first installed adaptor that accepts them:
//
//	job, binding, err := saga.Bind[saga.JobService](ctx, saga.CategoryJob, "fork://localhost", nil)
//
// The process-wide runtime is created on first use.
package saga

import (
	"context"

	"github.com/specialistvlad/sagago/internal/adaptor"
	"github.com/specialistvlad/sagago/internal/app"
	"github.com/specialistvlad/sagago/internal/capability"
	"github.com/specialistvlad/sagago/internal/engine"
	"github.com/specialistvlad/sagago/internal/session"
)

// Adaptor contract.
type (
	Module        = adaptor.Module
	Claim         = adaptor.Claim
	Factory       = adaptor.Factory
	DeclinedError = adaptor.DeclinedError
)

// Resolution results and errors.
type (
	Binding      = engine.Binding
	Attempt      = engine.Attempt
	ResolveError = engine.ResolveError
	BindError    = engine.BindError
)

// Sessions.
type (
	Session = session.Session
	Context = session.Context
)

// Capability APIs.
type (
	FileTransfer   = capability.FileTransfer
	JobService     = capability.JobService
	JobDescription = capability.JobDescription
	JobResult      = capability.JobResult
	Stream         = capability.Stream
	StreamRequest  = capability.StreamRequest
)

// Capability categories.
const (
	CategoryJob     = adaptor.CategoryJob
	CategoryFile    = adaptor.CategoryFile
	CategoryReplica = adaptor.CategoryReplica
	CategoryStream  = adaptor.CategoryStream
)

// Errors callers can match with errors.Is.
var (
	ErrMalformedURL        = engine.ErrMalformedURL
	ErrNoBackendForScheme  = engine.ErrNoBackendForScheme
	ErrAllBackendsDeclined = engine.ErrAllBackendsDeclined
	ErrCapabilityMismatch  = engine.ErrCapabilityMismatch
	ErrAlreadyInitialized  = app.ErrAlreadyInitialized
)

// Instance returns the process-wide runtime.
func Instance() (*app.App, error) {
	return app.Instance()
}

// RegisterModule adds a compiled adaptor module. It must be called before
// the first Instance, Resolve or Bind.
func RegisterModule(m Module) error {
	return app.RegisterModule(m)
}

// Resolve binds category and rawURL using the process-wide runtime.
func Resolve(ctx context.Context, category, rawURL string, sess *Session) (*Binding, error) {
	a, err := app.Instance()
	if err != nil {
		return nil, err
	}
	return a.Resolve(ctx, category, rawURL, sess)
}

// Bind resolves and asserts the bound instance to T.
func Bind[T any](ctx context.Context, category, rawURL string, sess *Session) (T, *Binding, error) {
	var zero T
	a, err := app.Instance()
	if err != nil {
		return zero, nil, err
	}
	return engine.Bind[T](ctx, a.Engine(), category, rawURL, sess)
}

// NewSession returns a session holding the given contexts.
func NewSession(contexts ...Context) *Session {
	return session.New(contexts...)
}

// Decline builds the soft failure a Factory returns for URLs it cannot handle.
func Decline(format string, args ...any) error {
	return adaptor.Decline(format, args...)
}

// IsDecline reports whether err is a decline.
func IsDecline(err error) bool {
	return adaptor.IsDecline(err)
}
