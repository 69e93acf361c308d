package config

import "github.com/zclconf/go-cty/cty"

// Section is a handle on one registered category. Components keep the
// Section returned by RegisterCategory instead of repeating the category name.
type Section struct {
	store    *Store
	category string
}

// Category returns the category name.
func (s *Section) Category() string { return s.category }

func (s *Section) Get(name string) (cty.Value, error) { return s.store.Get(s.category, name) }

func (s *Section) Set(name string, value any) error { return s.store.Set(s.category, name, value) }

func (s *Section) String(name string) (string, error) { return s.store.String(s.category, name) }

func (s *Section) Bool(name string) (bool, error) { return s.store.Bool(s.category, name) }

func (s *Section) Int(name string) (int, error) { return s.store.Int(s.category, name) }

func (s *Section) Strings(name string) ([]string, error) { return s.store.Strings(s.category, name) }
