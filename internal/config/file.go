package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// fileRoot is the top-level shape of a config file:
//
//	category "sagago.engine" {
//	  adaptor_paths = ["/opt/sagago/adaptors"]
//	}
type fileRoot struct {
	Categories []*fileCategory `hcl:"category,block"`
}

type fileCategory struct {
	Name   string   `hcl:"name,label"`
	Remain hcl.Body `hcl:",remain"`
}

// LoadFile reads an HCL config file into the file layer. Every attribute must
// name a registered option and convert to its declared type. Nothing is
// applied unless the whole file is valid.
func (s *Store) LoadFile(path string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}
	return s.loadBody(path, file.Body)
}

// LoadBytes is LoadFile for in-memory content; filename is used in
// diagnostics only.
func (s *Store) LoadBytes(src []byte, filename string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config file %s: %w", filename, diags)
	}
	return s.loadBody(filename, file.Body)
}

type pendingValue struct {
	attr *hcl.Attribute
	cat  string
}

func (s *Store) loadBody(filename string, body hcl.Body) error {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return fmt.Errorf("failed to decode config file %s: %w", filename, diags)
	}

	var pending []pendingValue
	for _, cat := range root.Categories {
		attrs, diags := cat.Remain.JustAttributes()
		if diags.HasErrors() {
			return fmt.Errorf("category %q in %s: %w", cat.Name, filename, diags)
		}
		for _, attr := range attrs {
			pending = append(pending, pendingValue{attr: attr, cat: cat.Name})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type staged struct {
		e   *entry
		val cty.Value
	}
	var batch []staged
	for _, p := range pending {
		e, err := s.lookup(p.cat, p.attr.Name)
		if err != nil {
			return fmt.Errorf("%s: %w", p.attr.NameRange, err)
		}
		raw, diags := p.attr.Expr.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("%s: %w", p.attr.NameRange, diags)
		}
		v, err := convert.Convert(raw, e.opt.Type.CtyType())
		if err != nil {
			return fmt.Errorf("%s: %w", p.attr.NameRange, &Error{Code: ErrInvalidConfigValue, Category: p.cat, Name: p.attr.Name, Err: err})
		}
		if err := checkValue(&e.opt, v); err != nil {
			return fmt.Errorf("%s: %w", p.attr.NameRange, err)
		}
		batch = append(batch, staged{e: e, val: v})
	}
	for _, st := range batch {
		v := st.val
		st.e.file = &v
	}
	return nil
}
