package config

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// LookupEnvFunc matches os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// entry holds every layer of a single option.
type entry struct {
	opt      Option
	file     *cty.Value
	env      *cty.Value
	override *cty.Value
}

// current returns the effective value and where it came from.
func (e *entry) current() (cty.Value, string) {
	switch {
	case e.override != nil:
		return *e.override, SourceOverride
	case e.env != nil:
		return *e.env, SourceEnvironment
	case e.file != nil:
		return *e.file, SourceFile
	default:
		return e.opt.Default, SourceDefault
	}
}

// Store is the process-wide option registry.
type Store struct {
	mu         sync.RWMutex
	categories map[string]map[string]*entry
	lookupEnv  LookupEnvFunc
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithLookupEnv replaces os.LookupEnv as the environment source.
func WithLookupEnv(fn LookupEnvFunc) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.lookupEnv = fn
		}
	}
}

// NewStore creates an empty Store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		categories: make(map[string]map[string]*entry),
		lookupEnv:  os.LookupEnv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterCategory installs a schema under category. Options with an empty
// Category inherit it; options naming a different category are rejected.
// Environment overrides are read here and nowhere else.
func (s *Store) RegisterCategory(category string, schema []Option) (*Section, error) {
	if category == "" {
		return nil, invalidValue(category, "", "category name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.categories[category]; exists {
		return nil, &Error{Code: ErrDuplicateCategory, Category: category}
	}

	entries := make(map[string]*entry, len(schema))
	for _, opt := range schema {
		if opt.Category == "" {
			opt.Category = category
		}
		if opt.Category != category {
			return nil, invalidValue(category, opt.Name, "option declares category %q", opt.Category)
		}
		if opt.Name == "" {
			return nil, invalidValue(category, "", "option name must not be empty")
		}
		if _, dup := entries[opt.Name]; dup {
			return nil, &Error{Code: ErrDuplicateOption, Category: category, Name: opt.Name}
		}
		if err := checkValue(&opt, opt.Default); err != nil {
			return nil, fmt.Errorf("default: %w", err)
		}
		for _, valid := range opt.ValidValues {
			if !valid.Type().Equals(opt.Type.CtyType()) {
				return nil, invalidValue(category, opt.Name, "valid value %s does not match type %s", render(valid), opt.Type)
			}
		}

		e := &entry{opt: opt}
		if opt.EnvVariable != "" {
			if raw, ok := s.lookupEnv(opt.EnvVariable); ok {
				v, err := parseEnv(&opt, raw)
				if err != nil {
					return nil, err
				}
				if err := checkValue(&opt, v); err != nil {
					return nil, fmt.Errorf("environment variable %s: %w", opt.EnvVariable, err)
				}
				e.env = &v
			}
		}
		entries[opt.Name] = e
	}

	s.categories[category] = entries
	return &Section{store: s, category: category}, nil
}

// HasCategory reports whether category has been registered.
func (s *Store) HasCategory(category string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.categories[category]
	return ok
}

func (s *Store) lookup(category, name string) (*entry, error) {
	cat, ok := s.categories[category]
	if !ok {
		return nil, unknownOption(category, name)
	}
	e, ok := cat[name]
	if !ok {
		return nil, unknownOption(category, name)
	}
	return e, nil
}

// Get returns the current value of an option.
func (s *Store) Get(category, name string) (cty.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := s.lookup(category, name)
	if err != nil {
		return cty.NilVal, err
	}
	v, _ := e.current()
	return v, nil
}

// Set overrides the value of an option. The value may be a cty.Value or a
// Go string, bool, integer or []string matching the declared type.
func (s *Store) Set(category, name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(category, name)
	if err != nil {
		return err
	}
	v, err := toCty(&e.opt, value)
	if err != nil {
		return err
	}
	if err := checkValue(&e.opt, v); err != nil {
		return err
	}
	e.override = &v
	return nil
}

// String returns a string option.
func (s *Store) String(category, name string) (string, error) {
	var out string
	err := s.decode(category, name, TypeString, &out)
	return out, err
}

// Bool returns a bool option.
func (s *Store) Bool(category, name string) (bool, error) {
	var out bool
	err := s.decode(category, name, TypeBool, &out)
	return out, err
}

// Int returns an integer option.
func (s *Store) Int(category, name string) (int, error) {
	var out int
	err := s.decode(category, name, TypeInt, &out)
	return out, err
}

// Strings returns a list(string) option. An empty list yields a non-nil,
// empty slice.
func (s *Store) Strings(category, name string) ([]string, error) {
	out := []string{}
	if err := s.decode(category, name, TypeStringList, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) decode(category, name string, want Type, target any) error {
	s.mu.RLock()
	e, err := s.lookup(category, name)
	if err != nil {
		s.mu.RUnlock()
		return err
	}
	v, _ := e.current()
	typ := e.opt.Type
	s.mu.RUnlock()

	if typ != want {
		return invalidValue(category, name, "option is %s, not %s", typ, want)
	}
	if want == TypeStringList && v.LengthInt() == 0 {
		return nil
	}
	if err := gocty.FromCtyValue(v, target); err != nil {
		return &Error{Code: ErrInvalidConfigValue, Category: category, Name: name, Err: err}
	}
	return nil
}

// Options lists every registered option with its current value, sorted by
// category and name.
func (s *Store) Options() []OptionValue {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []OptionValue
	for _, cat := range s.categories {
		for _, e := range cat {
			v, src := e.current()
			out = append(out, OptionValue{Option: e.opt, Value: v, Source: src})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}
