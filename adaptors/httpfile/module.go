// Package httpfile provides the "file" category over plain HTTP and HTTPS.
package httpfile

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/specialistvlad/sagago/internal/adaptor"
	"github.com/specialistvlad/sagago/internal/session"
)

// Name is the module name used in listings and manifests.
const Name = "http"

// Module implements the adaptor.Module interface for this package.
type Module struct {
	// Client is used for every transfer. When nil a pooled client is built on
	// first use and shared by every file the module binds.
	Client *http.Client

	once   sync.Once
	client *http.Client
}

// Name implements adaptor.Module.
func (m *Module) Name() string { return Name }

// Claims implements adaptor.Module.
func (m *Module) Claims() ([]adaptor.Claim, error) {
	return []adaptor.Claim{
		{Category: adaptor.CategoryFile, Scheme: "http", Factory: m.newFile},
		{Category: adaptor.CategoryFile, Scheme: "https", Factory: m.newFile},
	}, nil
}

func (m *Module) newFile(_ context.Context, u *url.URL, s *session.Session) (any, error) {
	if u.Host == "" {
		return nil, adaptor.Decline("url %q has no host", u.String())
	}
	f := &File{url: u, client: m.httpClient()}
	if c, ok := s.ContextFor(session.ContextUserPass); ok {
		f.user, f.pass = c.UserID, c.UserPass
	} else if c, ok := s.ContextFor(session.ContextToken); ok {
		f.token = c.UserToken
	}
	return f, nil
}

func (m *Module) httpClient() *http.Client {
	m.once.Do(func() {
		m.client = m.Client
		if m.client == nil {
			m.client = NewClient(30 * time.Second)
		}
	})
	return m.client
}

// NewClient returns a client with a pooled transport.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
