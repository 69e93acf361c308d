package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByPattern(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"adaptor_b.hcl", "adaptor_a.hcl", "other.hcl", "adaptor_c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "adaptor_dir.hcl"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "adaptor_dir.hcl", "adaptor_nested.hcl"), nil, 0o600))

	files, err := FindFilesByPattern(dir, "adaptor_*.hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "adaptor_a.hcl"),
		filepath.Join(dir, "adaptor_b.hcl"),
	}, files)
}

func TestFindFilesByPattern_Errors(t *testing.T) {
	_, err := FindFilesByPattern(filepath.Join(t.TempDir(), "missing"), "*.hcl")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = FindFilesByPattern(t.TempDir(), "[")
	assert.Error(t, err)

	assert.Panics(t, func() { _, _ = FindFilesByPattern(t.TempDir(), "") })
}
