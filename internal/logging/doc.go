// Package logging builds the slog loggers used across the runtime.
//
// There is one lazily created process logger, returned by Default, whose
// level and format come from the environment. Components that need an isolated
// logger (tests, the CLI) build their own with New and pass it down through a
// context with the ctxlog package.
package logging
