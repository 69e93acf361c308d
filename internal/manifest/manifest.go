package manifest

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// FilePattern is the naming convention for manifest files on a search path.
const FilePattern = "adaptor_*.hcl"

// fileRoot is used to decode all top-level blocks of a manifest file.
type fileRoot struct {
	Adaptors []*adaptorBlock `hcl:"adaptor,block"`
}

type adaptorBlock struct {
	Name        string        `hcl:"name,label"`
	Module      string        `hcl:"module"`
	Description string        `hcl:"description,optional"`
	Claims      []*claimBlock `hcl:"claim,block"`
}

type claimBlock struct {
	Category string `hcl:"category,label"`
	Scheme   string `hcl:"scheme,label"`
	Target   string `hcl:"target,optional"`
	Accept   string `hcl:"accept,optional"`
}

// Adaptor is one adaptor block.
type Adaptor struct {
	Name        string
	Module      string
	Description string
	Claims      []Claim
}

// Claim is one claim block. Target defaults to Scheme.
type Claim struct {
	Category string
	Scheme   string
	Target   string
	Accept   *Predicate
}

// Manifest is the parsed content of one file.
type Manifest struct {
	Path     string
	Adaptors []Adaptor
}

// ParseFile reads and validates a manifest file.
func ParseFile(path string) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, diags)
	}
	return decode(path, file.Body)
}

// Parse is ParseFile for in-memory content.
func Parse(src []byte, filename string) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", filename, diags)
	}
	return decode(filename, file.Body)
}

func decode(path string, body hcl.Body) (*Manifest, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, diags)
	}
	if len(root.Adaptors) == 0 {
		return nil, fmt.Errorf("manifest %s declares no adaptor blocks", path)
	}

	m := &Manifest{Path: path}
	seen := make(map[string]struct{})
	for _, blk := range root.Adaptors {
		a, err := translateAdaptor(blk)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %w", path, err)
		}
		if _, dup := seen[a.Name]; dup {
			return nil, fmt.Errorf("manifest %s: adaptor %q declared twice", path, a.Name)
		}
		seen[a.Name] = struct{}{}
		m.Adaptors = append(m.Adaptors, a)
	}
	return m, nil
}

func translateAdaptor(blk *adaptorBlock) (Adaptor, error) {
	a := Adaptor{
		Name:        strings.TrimSpace(blk.Name),
		Module:      strings.TrimSpace(blk.Module),
		Description: blk.Description,
	}
	if a.Name == "" {
		return Adaptor{}, fmt.Errorf("adaptor block has an empty name")
	}
	if a.Module == "" {
		return Adaptor{}, fmt.Errorf("adaptor %q has an empty module", a.Name)
	}
	if len(blk.Claims) == 0 {
		return Adaptor{}, fmt.Errorf("adaptor %q declares no claims", a.Name)
	}

	for _, cb := range blk.Claims {
		c := Claim{
			Category: strings.ToLower(strings.TrimSpace(cb.Category)),
			Scheme:   strings.ToLower(strings.TrimSpace(cb.Scheme)),
			Target:   strings.ToLower(strings.TrimSpace(cb.Target)),
		}
		if c.Category == "" || c.Scheme == "" {
			return Adaptor{}, fmt.Errorf("adaptor %q has a claim with an empty category or scheme", a.Name)
		}
		if c.Target == "" {
			c.Target = c.Scheme
		}
		if strings.TrimSpace(cb.Accept) != "" {
			p, err := CompilePredicate(cb.Accept)
			if err != nil {
				return Adaptor{}, fmt.Errorf("adaptor %q claim %s/%s: %w", a.Name, c.Category, c.Scheme, err)
			}
			c.Accept = p
		}
		a.Claims = append(a.Claims, c)
	}
	return a, nil
}
