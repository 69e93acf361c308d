package config

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Type is the declared type of an option.
type Type int

const (
	TypeString Type = iota
	TypeBool
	TypeInt
	TypeStringList
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeStringList:
		return "list(string)"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// CtyType returns the cty type values of this Type are stored as.
func (t Type) CtyType() cty.Type {
	switch t {
	case TypeBool:
		return cty.Bool
	case TypeInt:
		return cty.Number
	case TypeStringList:
		return cty.List(cty.String)
	default:
		return cty.String
	}
}

// Option declares a single configuration option.
type Option struct {
	Category      string
	Name          string
	Type          Type
	Default       cty.Value
	ValidValues   []cty.Value
	EnvVariable   string
	Documentation string
}

// OptionValue is an option together with its current value, as returned by
// Store.Options.
type OptionValue struct {
	Option
	Value  cty.Value
	Source string
}

// Value sources reported by Store.Options.
const (
	SourceDefault     = "default"
	SourceFile        = "file"
	SourceEnvironment = "env"
	SourceOverride    = "override"
)
