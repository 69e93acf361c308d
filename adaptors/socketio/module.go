// Package socketio provides the "stream" category over socket.io. A bound
// Stream holds only its options; each Request opens its own connection.
package socketio

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/specialistvlad/sagago/internal/adaptor"
	"github.com/specialistvlad/sagago/internal/session"
)

// Name is the module name used in listings and manifests.
const Name = "socketio"

// DefaultTimeout bounds a request when neither the URL nor the request sets one.
const DefaultTimeout = 10 * time.Second

// Module implements the adaptor.Module interface for this package.
type Module struct{}

// Options are read from the bound URL's query.
type Options struct {
	Namespace          string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Name implements adaptor.Module.
func (m *Module) Name() string { return Name }

// Claims implements adaptor.Module.
func (m *Module) Claims() ([]adaptor.Claim, error) {
	return []adaptor.Claim{
		{Category: adaptor.CategoryStream, Scheme: "ws", Factory: newStream},
		{Category: adaptor.CategoryStream, Scheme: "wss", Factory: newStream},
	}, nil
}

func newStream(_ context.Context, u *url.URL, _ *session.Session) (any, error) {
	if u.Host == "" {
		return nil, adaptor.Decline("url %q has no host", u.String())
	}
	opts, err := ParseOptions(u.Query())
	if err != nil {
		return nil, err
	}
	return &Stream{url: u, opts: opts}, nil
}

// ParseOptions reads the namespace, timeout and insecure query parameters.
func ParseOptions(q url.Values) (Options, error) {
	opts := Options{Namespace: "/", Timeout: DefaultTimeout}
	if ns := q.Get("namespace"); ns != "" {
		opts.Namespace = ns
	}
	if raw := q.Get("timeout"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Options{}, fmt.Errorf("invalid timeout %q: %w", raw, err)
		}
		opts.Timeout = d
	}
	if raw := q.Get("insecure"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Options{}, fmt.Errorf("invalid insecure flag %q: %w", raw, err)
		}
		opts.InsecureSkipVerify = b
	}
	return opts, nil
}
