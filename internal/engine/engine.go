package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"reflect"
	"strings"

	"github.com/specialistvlad/sagago/internal/adaptor"
	"github.com/specialistvlad/sagago/internal/registry"
	"github.com/specialistvlad/sagago/internal/session"
)

// Binding is a successful resolution.
type Binding struct {
	Instance any
	Adaptor  string
	Category string
	Scheme   string
	Order    int
	URL      *url.URL
	// Declines lists the candidates tried before the winner.
	Declines []Attempt
}

// Engine resolves capability requests against a registry.
type Engine struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// New creates an Engine.
func New(reg *registry.Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{registry: reg, logger: logger}
}

// ParseScheme splits the scheme off a raw URL and parses the URL. The scheme
// is the text before "://" and is returned lower-cased. Only a missing
// delimiter or an empty scheme is an error: the rest of the URL belongs to
// the adaptor, so a remainder net/url rejects is kept verbatim in
// URL.Opaque and String() still yields the original text.
func ParseScheme(rawURL string) (string, *url.URL, error) {
	scheme, rest, found := strings.Cut(rawURL, "://")
	scheme = strings.ToLower(strings.TrimSpace(scheme))
	if !found {
		return "", nil, &ResolveError{Code: ErrMalformedURL, URL: rawURL, Err: errors.New(`missing "://" scheme delimiter`)}
	}
	if scheme == "" {
		return "", nil, &ResolveError{Code: ErrMalformedURL, URL: rawURL, Err: errors.New("empty scheme")}
	}
	if u, err := url.Parse(scheme + "://" + rest); err == nil {
		return scheme, u, nil
	}
	// net/url is stricter about scheme characters than the registry.
	if u, err := url.Parse("x://" + rest); err == nil {
		u.Scheme = scheme
		return scheme, u, nil
	}
	return scheme, &url.URL{Scheme: scheme, Opaque: "//" + rest}, nil
}

// Resolve binds category and rawURL to the first candidate that accepts it.
// A nil session is replaced by an empty one.
func (e *Engine) Resolve(ctx context.Context, category, rawURL string, sess *session.Session) (*Binding, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	scheme, u, err := ParseScheme(rawURL)
	if err != nil {
		var rerr *ResolveError
		if errors.As(err, &rerr) {
			rerr.Category = category
		}
		return nil, err
	}
	if sess == nil {
		sess = session.New()
	}

	logger := e.logger.With("category", category, "scheme", scheme)
	candidates := e.registry.Lookup(category, scheme)
	if len(candidates) == 0 {
		logger.Debug("No adaptor registered for scheme.")
		return nil, &ResolveError{Code: ErrNoBackendForScheme, Category: category, Scheme: scheme, URL: rawURL}
	}

	var declines []Attempt
	for _, cand := range candidates {
		// Each factory gets its own copy so one candidate cannot alter the
		// URL seen by the next.
		cu := *u
		inst, err := cand.Factory(ctx, &cu, sess)
		switch {
		case err == nil && isNil(inst):
			logger.Error("Adaptor returned neither an instance nor an error.", "adaptor", cand.Adaptor)
			return nil, &BindError{Category: category, Scheme: scheme, Adaptor: cand.Adaptor, Order: cand.Order, Err: errors.New("factory returned a nil instance")}
		case err == nil:
			logger.Debug("Bound adaptor.", "adaptor", cand.Adaptor, "order", cand.Order, "declined", len(declines))
			return &Binding{
				Instance: inst,
				Adaptor:  cand.Adaptor,
				Category: category,
				Scheme:   scheme,
				Order:    cand.Order,
				URL:      u,
				Declines: declines,
			}, nil
		case adaptor.IsDecline(err):
			reason := adaptor.DeclineReason(err)
			logger.Debug("Adaptor declined URL.", "adaptor", cand.Adaptor, "order", cand.Order, "reason", reason)
			declines = append(declines, Attempt{Adaptor: cand.Adaptor, Order: cand.Order, Reason: reason})
		default:
			logger.Debug("Adaptor failed to bind.", "adaptor", cand.Adaptor, "order", cand.Order, "error", err)
			return nil, &BindError{Category: category, Scheme: scheme, Adaptor: cand.Adaptor, Order: cand.Order, Err: err}
		}
	}

	logger.Debug("Every adaptor declined.", "candidates", len(candidates))
	return nil, &ResolveError{Code: ErrAllBackendsDeclined, Category: category, Scheme: scheme, URL: rawURL, Attempts: declines}
}

// Bind resolves and asserts the bound instance to T. An instance that does
// not implement T is a hard error; later candidates are not tried.
func Bind[T any](ctx context.Context, e *Engine, category, rawURL string, sess *session.Session) (T, *Binding, error) {
	var zero T
	b, err := e.Resolve(ctx, category, rawURL, sess)
	if err != nil {
		return zero, nil, err
	}
	typed, ok := b.Instance.(T)
	if !ok {
		return zero, b, &BindError{
			Category: b.Category,
			Scheme:   b.Scheme,
			Adaptor:  b.Adaptor,
			Order:    b.Order,
			Err:      fmt.Errorf("%w: %T does not implement %T", ErrCapabilityMismatch, b.Instance, (*T)(nil)),
		}
	}
	return typed, b, nil
}

// isNil reports whether v is nil or a typed nil.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
