package adaptor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/specialistvlad/sagago/internal/session"
)

// Capability categories used by the built-in adaptors.
const (
	CategoryJob     = "job"
	CategoryFile    = "file"
	CategoryReplica = "replica"
	CategoryStream  = "stream"
)

// Factory builds an instance bound to u.
type Factory func(ctx context.Context, u *url.URL, s *session.Session) (any, error)

// Claim is a backend's declaration that it implements Category for URLs
// whose scheme is Scheme.
type Claim struct {
	Category string
	Scheme   string
	Factory  Factory
}

// Module is an installable backend.
type Module interface {
	// Name identifies the module in logs, listings and manifests.
	Name() string
	// Claims returns every (category, scheme) pair the module handles.
	Claims() ([]Claim, error)
}

// Validate checks a claim for empty keys and a missing factory.
func (c Claim) Validate() error {
	switch {
	case strings.TrimSpace(c.Category) == "":
		return errors.New("claim has an empty category")
	case strings.TrimSpace(c.Scheme) == "":
		return fmt.Errorf("claim for category %q has an empty scheme", c.Category)
	case c.Factory == nil:
		return fmt.Errorf("claim %s/%s has no factory", c.Category, c.Scheme)
	}
	return nil
}

// DeclinedError is the soft failure a Factory returns when it cannot handle a
// URL.
type DeclinedError struct {
	Reason string
}

// Error implements the error interface.
func (e *DeclinedError) Error() string {
	return "declined: " + e.Reason
}

// Decline builds a DeclinedError.
func Decline(format string, args ...any) error {
	return &DeclinedError{Reason: fmt.Sprintf(format, args...)}
}

// IsDecline reports whether err, or anything it wraps, is a DeclinedError.
func IsDecline(err error) bool {
	var d *DeclinedError
	return errors.As(err, &d)
}

// DeclineReason returns the reason of a decline, or the error text otherwise.
func DeclineReason(err error) string {
	var d *DeclinedError
	if errors.As(err, &d) {
		return d.Reason
	}
	return err.Error()
}
