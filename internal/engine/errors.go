package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedURL        = errors.New("malformed URL")
	ErrNoBackendForScheme  = errors.New("no backend for scheme")
	ErrAllBackendsDeclined = errors.New("all backends declined")
	ErrCapabilityMismatch  = errors.New("capability mismatch")
)

// Attempt records one candidate that declined.
type Attempt struct {
	Adaptor string
	Order   int
	Reason  string
}

// ResolveError describes a resolution failure. It matches one of the
// package sentinels with errors.Is.
type ResolveError struct {
	Code     error
	Category string
	Scheme   string
	URL      string
	Attempts []Attempt
	Err      error
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: category=%q scheme=%q url=%q", e.Code, e.Category, e.Scheme, e.URL)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if len(e.Attempts) > 0 {
		b.WriteString(" (")
		for i, a := range e.Attempts {
			if i > 0 {
				b.WriteString("; ")
			}
			fmt.Fprintf(&b, "%s: %s", a.Adaptor, a.Reason)
		}
		b.WriteString(")")
	}
	return b.String()
}

// Is reports whether target is the sentinel this error was created with.
func (e *ResolveError) Is(target error) bool {
	return e.Code == target
}

// Unwrap returns the underlying cause, if any.
func (e *ResolveError) Unwrap() error {
	return e.Err
}

// BindError is a hard failure raised by a candidate's factory. The
// original error is available through errors.Unwrap.
type BindError struct {
	Category string
	Scheme   string
	Adaptor  string
	Order    int
	Err      error
}

// Error implements the error interface.
func (e *BindError) Error() string {
	return fmt.Sprintf("adaptor %q failed to bind %s/%s: %v", e.Adaptor, e.Category, e.Scheme, e.Err)
}

// Unwrap returns the factory's error.
func (e *BindError) Unwrap() error {
	return e.Err
}
