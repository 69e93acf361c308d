package config

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateCategory  = errors.New("duplicate category")
	ErrDuplicateOption    = errors.New("duplicate option")
	ErrUnknownOption      = errors.New("unknown option")
	ErrInvalidConfigValue = errors.New("invalid config value")
)

// Error describes a configuration failure. It matches one of the package
// sentinels with errors.Is.
type Error struct {
	Code     error
	Category string
	Name     string
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	key := e.Category
	if e.Name != "" {
		key = e.Category + "." + e.Name
	}
	msg := fmt.Sprintf("%s: %s", e.Code, key)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the sentinel this error was created with.
func (e *Error) Is(target error) bool {
	return e.Code == target
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

func invalidValue(category, name, format string, args ...any) *Error {
	return &Error{Code: ErrInvalidConfigValue, Category: category, Name: name, Message: fmt.Sprintf(format, args...)}
}

func unknownOption(category, name string) *Error {
	return &Error{Code: ErrUnknownOption, Category: category, Name: name}
}
