package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/sagago/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestRun_Help(t *testing.T) {
	// --- Arrange ---
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, []string{"--help"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error for --help")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
	require.Equal(t, cli.ExitUsage, cli.ExitCode(err))
}

func TestRun_StartupErrorFromConfigFile(t *testing.T) {
	// --- Arrange ---
	// A config file with a syntax error fails runtime initialisation.
	path := filepath.Join(t.TempDir(), "sagago.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`category "sagago.engine" {`), 0o600))

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--config", path, "adaptors"})

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to initialize runtime")
	require.Equal(t, cli.ExitFailure, cli.ExitCode(err))
}

func TestRun_Resolve(t *testing.T) {
	out := &bytes.Buffer{}
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"--log-level", "error", "resolve", "job", "fork://localhost"})
	require.NoError(t, err)
	require.Contains(t, out.String(), "-> local")
}
