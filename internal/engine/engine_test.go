package engine

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/specialistvlad/sagago/internal/adaptor"
	"github.com/specialistvlad/sagago/internal/logging"
	"github.com/specialistvlad/sagago/internal/registry"
	"github.com/specialistvlad/sagago/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// candidate is a scripted factory that counts its calls.
type candidate struct {
	name  string
	calls atomic.Int32
	fn    func(u *url.URL, s *session.Session) (any, error)
}

func (c *candidate) factory(_ context.Context, u *url.URL, s *session.Session) (any, error) {
	c.calls.Add(1)
	return c.fn(u, s)
}

func declining(name, reason string) *candidate {
	return &candidate{name: name, fn: func(*url.URL, *session.Session) (any, error) {
		return nil, adaptor.Decline("%s", reason)
	}}
}

func succeeding(name string) *candidate {
	return &candidate{name: name, fn: func(u *url.URL, _ *session.Session) (any, error) {
		return name + ":" + u.String(), nil
	}}
}

func failing(name string, err error) *candidate {
	return &candidate{name: name, fn: func(*url.URL, *session.Session) (any, error) {
		return nil, err
	}}
}

func newTestEngine(t *testing.T, category, scheme string, cands ...*candidate) *Engine {
	t.Helper()
	logger := logging.New("debug", "text", &bytes.Buffer{})
	reg := registry.New(logger)
	for i, c := range cands {
		require.NoError(t, reg.Register(registry.Descriptor{
			Adaptor:  c.name,
			Category: category,
			Scheme:   scheme,
			Factory:  c.factory,
			Order:    i + 1,
		}))
	}
	reg.Freeze()
	return New(reg, logger)
}

func TestResolve_FirstSuccessAfterDecline(t *testing.T) {
	// --- Arrange ---
	first := declining("aws", "not an EC2 endpoint")
	second := succeeding("occi")
	third := succeeding("never")
	e := newTestEngine(t, "job", "http", first, second, third)

	// --- Act ---
	b, err := e.Resolve(context.Background(), "job", "http://x", nil)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "occi:http://x", b.Instance)
	assert.Equal(t, "occi", b.Adaptor)
	assert.Equal(t, 2, b.Order)
	assert.Equal(t, []Attempt{{Adaptor: "aws", Order: 1, Reason: "not an EC2 endpoint"}}, b.Declines)
	assert.EqualValues(t, 1, first.calls.Load())
	assert.EqualValues(t, 1, second.calls.Load())
	assert.EqualValues(t, 0, third.calls.Load(), "first success wins")
}

func TestResolve_NoBackendForScheme(t *testing.T) {
	e := newTestEngine(t, "job", "http", succeeding("occi"))

	_, err := e.Resolve(context.Background(), "job", "ftp://x", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoBackendForScheme)
	var rerr *ResolveError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "job", rerr.Category)
	assert.Equal(t, "ftp", rerr.Scheme)
}

func TestResolve_UnknownCategory(t *testing.T) {
	e := newTestEngine(t, "job", "http", succeeding("occi"))
	_, err := e.Resolve(context.Background(), "replica", "http://x", nil)
	assert.ErrorIs(t, err, ErrNoBackendForScheme)
}

func TestResolve_HardErrorShortCircuits(t *testing.T) {
	// --- Arrange ---
	cause := errors.New("authentication failed")
	first := failing("ssh", cause)
	second := succeeding("other")
	e := newTestEngine(t, "job", "ssh", first, second)

	// --- Act ---
	_, err := e.Resolve(context.Background(), "job", "ssh://host", nil)

	// --- Assert ---
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	var berr *BindError
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, "ssh", berr.Adaptor)
	assert.Equal(t, "job", berr.Category)
	assert.Equal(t, "ssh", berr.Scheme)
	assert.EqualValues(t, 0, second.calls.Load(), "later candidates must not be tried after a hard error")
}

func TestResolve_HardErrorAfterDecline(t *testing.T) {
	cause := errors.New("connection refused")
	e := newTestEngine(t, "file", "https", declining("s3", "not presigned"), failing("http", cause), succeeding("late"))

	_, err := e.Resolve(context.Background(), "file", "https://h/x", nil)
	assert.ErrorIs(t, err, cause)
}

func TestResolve_AllDeclined(t *testing.T) {
	e := newTestEngine(t, "file", "https", declining("s3", "not presigned"), declining("http", "no host"))

	_, err := e.Resolve(context.Background(), "file", "https://h/x", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllBackendsDeclined)
	var rerr *ResolveError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, []Attempt{
		{Adaptor: "s3", Order: 1, Reason: "not presigned"},
		{Adaptor: "http", Order: 2, Reason: "no host"},
	}, rerr.Attempts)
	assert.Contains(t, err.Error(), "s3: not presigned")
}

func TestResolve_WrappedDeclineIsSoft(t *testing.T) {
	wrapped := &candidate{name: "wrapped", fn: func(*url.URL, *session.Session) (any, error) {
		return nil, errors.Join(errors.New("context"), adaptor.Decline("unsupported query"))
	}}
	e := newTestEngine(t, "job", "fork", wrapped, succeeding("local"))

	b, err := e.Resolve(context.Background(), "job", "fork://localhost", nil)
	require.NoError(t, err)
	assert.Equal(t, "local", b.Adaptor)
}

func TestResolve_NilInstanceIsHardError(t *testing.T) {
	nilInst := &candidate{name: "nil", fn: func(*url.URL, *session.Session) (any, error) { return nil, nil }}
	e := newTestEngine(t, "job", "fork", nilInst, succeeding("local"))

	_, err := e.Resolve(context.Background(), "job", "fork://localhost", nil)
	var berr *BindError
	assert.True(t, errors.As(err, &berr))
}

func TestResolve_TypedNilInstanceIsHardError(t *testing.T) {
	typedNil := &candidate{name: "typed-nil", fn: func(*url.URL, *session.Session) (any, error) {
		var b *strings.Builder
		return b, nil
	}}
	later := succeeding("local")
	e := newTestEngine(t, "job", "fork", typedNil, later)

	_, err := e.Resolve(context.Background(), "job", "fork://localhost", nil)

	var berr *BindError
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, "typed-nil", berr.Adaptor)
	assert.EqualValues(t, 0, later.calls.Load())
}

func TestResolve_MalformedURL(t *testing.T) {
	e := newTestEngine(t, "job", "http", succeeding("occi"))

	for _, raw := range []string{"no-delimiter", "://host", "", "  ://host", "http:/x"} {
		t.Run(raw, func(t *testing.T) {
			_, err := e.Resolve(context.Background(), "job", raw, nil)
			assert.ErrorIs(t, err, ErrMalformedURL)
			var rerr *ResolveError
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, "job", rerr.Category)
		})
	}
}

func TestResolve_RemainderIsOpaqueToTheEngine(t *testing.T) {
	tests := []struct {
		name   string
		scheme string
		raw    string
		host   string
	}{
		{name: "scheme net/url rejects", scheme: "my_scheme", raw: "my_scheme://x/p", host: "x"},
		{name: "bad escape", scheme: "http", raw: "http://x/%zz"},
		{name: "non-numeric port", scheme: "ssh", raw: "ssh://host:port/p"},
		{name: "unclosed ipv6 host", scheme: "http", raw: "http://[::1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var seen *url.URL
			recorder := &candidate{name: "raw", fn: func(u *url.URL, _ *session.Session) (any, error) {
				seen = u
				return "bound", nil
			}}
			e := newTestEngine(t, "job", tc.scheme, recorder)

			b, err := e.Resolve(context.Background(), "job", tc.raw, nil)

			require.NoError(t, err)
			assert.Equal(t, "raw", b.Adaptor)
			require.NotNil(t, seen)
			assert.Equal(t, tc.scheme, seen.Scheme)
			assert.Equal(t, tc.raw, seen.String(), "the adaptor sees the URL as written")
			if tc.host != "" {
				assert.Equal(t, tc.host, seen.Host)
			}
		})
	}
}

func TestParseScheme(t *testing.T) {
	scheme, u, err := ParseScheme("SSH://User@Host:22/path?resource=x")
	require.NoError(t, err)
	assert.Equal(t, "ssh", scheme)
	assert.Equal(t, "Host:22", u.Host)
	assert.Equal(t, "resource=x", u.RawQuery)

	_, _, err = ParseScheme("host/path")
	assert.ErrorIs(t, err, ErrMalformedURL)
}

func TestResolve_SchemeIsCaseInsensitive(t *testing.T) {
	e := newTestEngine(t, "job", "http", succeeding("occi"))
	b, err := e.Resolve(context.Background(), "JOB", "HTTP://Host/path?resource=x", nil)
	require.NoError(t, err)
	assert.Equal(t, "http", b.Scheme)
	assert.Equal(t, "resource=x", b.URL.RawQuery, "query parameters pass through untouched")
}

func TestResolve_SessionPassThrough(t *testing.T) {
	sess := session.New()
	var seen *session.Session
	c := &candidate{name: "inspect", fn: func(_ *url.URL, s *session.Session) (any, error) {
		seen = s
		return "ok", nil
	}}
	e := newTestEngine(t, "job", "ssh", c)

	_, err := e.Resolve(context.Background(), "job", "ssh://h", sess)
	require.NoError(t, err)
	assert.Same(t, sess, seen)

	_, err = e.Resolve(context.Background(), "job", "ssh://h", nil)
	require.NoError(t, err)
	assert.NotNil(t, seen, "a nil session is replaced with an empty one")
}

func TestResolve_CandidatesCannotMutateSharedURL(t *testing.T) {
	mutating := &candidate{name: "mutating", fn: func(u *url.URL, _ *session.Session) (any, error) {
		u.Host = "evil"
		return nil, adaptor.Decline("nope")
	}}
	e := newTestEngine(t, "file", "http", mutating, succeeding("http"))

	b, err := e.Resolve(context.Background(), "file", "http://good/x", nil)
	require.NoError(t, err)
	assert.Equal(t, "http:http://good/x", b.Instance)
}

type greeter interface{ Greet() string }

type english struct{}

func (english) Greet() string { return "hello" }

func TestBind(t *testing.T) {
	logger := logging.New("error", "text", &bytes.Buffer{})
	reg := registry.New(logger)
	require.NoError(t, reg.Register(registry.Descriptor{
		Adaptor: "en", Category: "greet", Scheme: "en", Order: 1,
		Factory: func(context.Context, *url.URL, *session.Session) (any, error) { return english{}, nil },
	}))
	require.NoError(t, reg.Register(registry.Descriptor{
		Adaptor: "str", Category: "greet", Scheme: "str", Order: 2,
		Factory: func(context.Context, *url.URL, *session.Session) (any, error) { return "not a greeter", nil },
	}))
	e := New(reg, logger)

	g, b, err := Bind[greeter](context.Background(), e, "greet", "en://x", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", g.Greet())
	assert.Equal(t, "en", b.Adaptor)

	_, _, err = Bind[greeter](context.Background(), e, "greet", "str://x", nil)
	assert.ErrorIs(t, err, ErrCapabilityMismatch)
}
