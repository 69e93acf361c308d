package config

import (
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// checkValue validates a cty value against an option's declared type and
// valid values.
func checkValue(opt *Option, v cty.Value) error {
	if v.IsNull() || !v.IsKnown() {
		return invalidValue(opt.Category, opt.Name, "value must be a known, non-null %s", opt.Type)
	}
	want := opt.Type.CtyType()
	if !v.Type().Equals(want) {
		return invalidValue(opt.Category, opt.Name, "expected %s, got %s", opt.Type, v.Type().FriendlyName())
	}
	if opt.Type == TypeInt && !v.AsBigFloat().IsInt() {
		return invalidValue(opt.Category, opt.Name, "expected a whole number")
	}
	if opt.Type == TypeStringList {
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			if elem.IsNull() {
				return invalidValue(opt.Category, opt.Name, "list elements must not be null")
			}
		}
	}
	if len(opt.ValidValues) == 0 {
		return nil
	}
	for _, valid := range opt.ValidValues {
		if valid.RawEquals(v) {
			return nil
		}
	}
	return invalidValue(opt.Category, opt.Name, "value %s is not one of the valid values", render(v))
}

// toCty converts a Go value handed to Set into the option's cty type.
// Conversion is strict: a string is never turned into a number or bool.
func toCty(opt *Option, value any) (cty.Value, error) {
	if v, ok := value.(cty.Value); ok {
		return v, nil
	}
	switch value.(type) {
	case string:
		if opt.Type != TypeString {
			return cty.NilVal, invalidValue(opt.Category, opt.Name, "expected %s, got string", opt.Type)
		}
	case bool:
		if opt.Type != TypeBool {
			return cty.NilVal, invalidValue(opt.Category, opt.Name, "expected %s, got bool", opt.Type)
		}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		if opt.Type != TypeInt {
			return cty.NilVal, invalidValue(opt.Category, opt.Name, "expected %s, got %T", opt.Type, value)
		}
	case []string:
		if opt.Type != TypeStringList {
			return cty.NilVal, invalidValue(opt.Category, opt.Name, "expected %s, got []string", opt.Type)
		}
		return StringList(value.([]string)...), nil
	default:
		return cty.NilVal, invalidValue(opt.Category, opt.Name, "unsupported Go type %T", value)
	}

	v, err := gocty.ToCtyValue(value, opt.Type.CtyType())
	if err != nil {
		return cty.NilVal, &Error{Code: ErrInvalidConfigValue, Category: opt.Category, Name: opt.Name, Err: err}
	}
	return v, nil
}

// parseEnv parses the raw string of an environment variable under the
// option's declared type.
func parseEnv(opt *Option, raw string) (cty.Value, error) {
	switch opt.Type {
	case TypeString:
		return cty.StringVal(raw), nil
	case TypeBool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return cty.NilVal, &Error{Code: ErrInvalidConfigValue, Category: opt.Category, Name: opt.Name, Message: "environment variable " + opt.EnvVariable, Err: err}
		}
		return cty.BoolVal(b), nil
	case TypeInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return cty.NilVal, &Error{Code: ErrInvalidConfigValue, Category: opt.Category, Name: opt.Name, Message: "environment variable " + opt.EnvVariable, Err: err}
		}
		return cty.NumberIntVal(n), nil
	case TypeStringList:
		return StringList(SplitList(raw)...), nil
	default:
		return cty.NilVal, invalidValue(opt.Category, opt.Name, "unsupported type %s", opt.Type)
	}
}

// SplitList splits a comma separated list, trimming blanks and dropping
// empty elements.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// StringList builds a list(string) value. An empty call yields an empty list
// rather than a null.
func StringList(items ...string) cty.Value {
	if len(items) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(items))
	for i, item := range items {
		vals[i] = cty.StringVal(item)
	}
	return cty.ListVal(vals)
}

// render formats a value for messages and listings.
func render(v cty.Value) string {
	if v.IsNull() {
		return "null"
	}
	switch {
	case v.Type().Equals(cty.String):
		return strconv.Quote(v.AsString())
	case v.Type().Equals(cty.Bool):
		return strconv.FormatBool(v.True())
	case v.Type().Equals(cty.Number):
		return v.AsBigFloat().Text('f', -1)
	case v.Type().IsListType():
		parts := make([]string, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			parts = append(parts, render(elem))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return v.GoString()
	}
}

// Render formats an option value the way the CLI prints it.
func Render(v cty.Value) string {
	return render(v)
}
