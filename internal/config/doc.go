// Package config is the typed option store shared by the engine and the
// adaptors.
//
// Components register a category together with a schema of Options. Each
// option has a declared type, a default, an optional set of valid values and
// an optional environment variable. A value is read back with the precedence
//
//	explicit override (Set) > environment variable > config file > default
//
// The environment is consulted once, when the category is registered. Option
// values are held as cty.Value so that the same type system validates
// defaults, environment strings and HCL config files.
package config
