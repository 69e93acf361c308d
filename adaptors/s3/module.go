// Package s3 provides the "file" category for Amazon S3 objects, addressed
// either as s3://bucket/key or as presigned HTTPS URLs.
package s3

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/specialistvlad/sagago/internal/adaptor"
	"github.com/specialistvlad/sagago/internal/session"
)

// Name is the module name used in listings and manifests.
const Name = "s3"

// signatureParam marks a presigned URL.
const signatureParam = "X-Amz-Signature"

// Module implements the adaptor.Module interface for this package.
type Module struct {
	// Client is used for every transfer. Defaults to http.DefaultClient.
	Client *http.Client
	// Endpoint replaces the virtual-hosted AWS endpoint for s3:// URLs. When
	// set, objects are addressed path-style as Endpoint/bucket/key.
	Endpoint string
}

// Name implements adaptor.Module.
func (m *Module) Name() string { return Name }

// Claims implements adaptor.Module.
func (m *Module) Claims() ([]adaptor.Claim, error) {
	return []adaptor.Claim{
		{Category: adaptor.CategoryFile, Scheme: "https", Factory: m.newPresigned},
		{Category: adaptor.CategoryFile, Scheme: "s3", Factory: m.newObject},
	}, nil
}

func (m *Module) client() *http.Client {
	if m.Client != nil {
		return m.Client
	}
	return http.DefaultClient
}

func (m *Module) newPresigned(_ context.Context, u *url.URL, _ *session.Session) (any, error) {
	if u.Query().Get(signatureParam) == "" {
		return nil, adaptor.Decline("url is not a presigned S3 url")
	}
	return &Object{url: u, target: u, client: m.client()}, nil
}

func (m *Module) newObject(_ context.Context, u *url.URL, _ *session.Session) (any, error) {
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, adaptor.Decline("s3 url needs both a bucket and a key")
	}
	target, err := m.objectURL(bucket, key)
	if err != nil {
		return nil, err
	}
	return &Object{url: u, target: target, client: m.client()}, nil
}

func (m *Module) objectURL(bucket, key string) (*url.URL, error) {
	if m.Endpoint == "" {
		return &url.URL{Scheme: "https", Host: bucket + ".s3.amazonaws.com", Path: "/" + key}, nil
	}
	base, err := url.Parse(m.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid s3 endpoint %q: %w", m.Endpoint, err)
	}
	return base.JoinPath(bucket, key), nil
}
