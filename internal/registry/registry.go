package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/specialistvlad/sagago/internal/adaptor"
)

var (
	ErrFrozen            = errors.New("registry is frozen")
	ErrDuplicateOrder    = errors.New("duplicate registration order")
	ErrInvalidDescriptor = errors.New("invalid descriptor")
)

// Descriptor is one adaptor's claim on a (category, scheme) pair.
type Descriptor struct {
	// Adaptor is the name of the module or manifest entry that made the claim.
	Adaptor  string
	Category string
	Scheme   string
	Factory  adaptor.Factory
	// Order is the global registration order; lower is tried first.
	Order int
	// Source is the search path entry the claim was loaded from.
	Source string
}

// Registry holds all descriptors for a single runtime instance.
type Registry struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]Descriptor
	frozen  bool
	logger  *slog.Logger
}

// New creates an empty, unfrozen Registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		buckets: make(map[string]map[string][]Descriptor),
		logger:  logger,
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Register files a descriptor into its (category, scheme) bucket, keeping the
// bucket sorted by Order.
func (r *Registry) Register(d Descriptor) error {
	return r.RegisterAll([]Descriptor{d})
}

// RegisterAll files every descriptor or none of them. All descriptors are
// checked under one lock before the first is inserted.
func (r *Registry) RegisterAll(ds []Descriptor) error {
	staged := make([]Descriptor, len(ds))
	for i, d := range ds {
		d.Category = normalize(d.Category)
		d.Scheme = normalize(d.Scheme)
		if d.Category == "" || d.Scheme == "" || d.Factory == nil {
			return fmt.Errorf("%w: adaptor %q category %q scheme %q", ErrInvalidDescriptor, d.Adaptor, d.Category, d.Scheme)
		}
		staged[i] = d
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen && len(staged) > 0 {
		return fmt.Errorf("%w: cannot register adaptor %q for %s/%s", ErrFrozen, staged[0].Adaptor, staged[0].Category, staged[0].Scheme)
	}

	type key struct{ category, scheme string }
	pending := make(map[key]map[int]string)
	for _, d := range staged {
		k := key{d.Category, d.Scheme}
		if owner, ok := r.orderOwner(d.Category, d.Scheme, d.Order); ok {
			return fmt.Errorf("%w: %d already used by adaptor %q in %s/%s", ErrDuplicateOrder, d.Order, owner, d.Category, d.Scheme)
		}
		if owner, ok := pending[k][d.Order]; ok {
			return fmt.Errorf("%w: %d already used by adaptor %q in %s/%s", ErrDuplicateOrder, d.Order, owner, d.Category, d.Scheme)
		}
		if pending[k] == nil {
			pending[k] = make(map[int]string)
		}
		pending[k][d.Order] = d.Adaptor
	}

	for _, d := range staged {
		r.insert(d)
	}
	return nil
}

// orderOwner returns the adaptor holding order in a bucket. Callers hold mu.
func (r *Registry) orderOwner(category, scheme string, order int) (string, bool) {
	bucket := r.buckets[category][scheme]
	idx := sort.Search(len(bucket), func(i int) bool { return bucket[i].Order >= order })
	if idx < len(bucket) && bucket[idx].Order == order {
		return bucket[idx].Adaptor, true
	}
	return "", false
}

// insert adds a checked descriptor in Order position. Callers hold mu.
func (r *Registry) insert(d Descriptor) {
	schemes, ok := r.buckets[d.Category]
	if !ok {
		schemes = make(map[string][]Descriptor)
		r.buckets[d.Category] = schemes
	}
	bucket := schemes[d.Scheme]
	idx := sort.Search(len(bucket), func(i int) bool { return bucket[i].Order >= d.Order })
	bucket = append(bucket, Descriptor{})
	copy(bucket[idx+1:], bucket[idx:])
	bucket[idx] = d
	schemes[d.Scheme] = bucket

	r.logger.Debug("Registered adaptor claim.", "adaptor", d.Adaptor, "category", d.Category, "scheme", d.Scheme, "order", d.Order)
}

// Freeze makes the registry read-only. It is idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.frozen {
		r.frozen = true
		r.logger.Debug("Registry frozen.", "categories", len(r.buckets))
	}
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Lookup returns the descriptors for a (category, scheme) pair in trial
// order. The result is a copy and is empty, not an error, when nothing is
// registered.
func (r *Registry) Lookup(category, scheme string) []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bucket := r.buckets[normalize(category)][normalize(scheme)]
	out := make([]Descriptor, len(bucket))
	copy(out, bucket)
	return out
}

// Categories returns the registered category names, sorted.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.buckets))
	for c := range r.buckets {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Schemes returns the schemes registered under category, sorted.
func (r *Registry) Schemes(category string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemes := r.buckets[normalize(category)]
	out := make([]string, 0, len(schemes))
	for s := range schemes {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Descriptors returns every descriptor sorted by Order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Descriptor
	for _, schemes := range r.buckets {
		for _, bucket := range schemes {
			out = append(out, bucket...)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
