package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	// --- Arrange ---
	store := NewStore(WithLookupEnv(envMap(map[string]string{"TEST_WORKERS": "3"})))
	section, err := store.RegisterCategory("test", testSchema())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sagago.hcl")
	content := `
category "test" {
  foo     = "from-file"
  workers = 9
  paths   = ["/opt/a", "/opt/b"]
}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// --- Act ---
	require.NoError(t, store.LoadFile(path))

	// --- Assert ---
	foo, err := section.String("foo")
	require.NoError(t, err)
	assert.Equal(t, "from-file", foo)

	workers, err := section.Int("workers")
	require.NoError(t, err)
	assert.Equal(t, 3, workers, "environment must win over the config file")

	paths, err := section.Strings("paths")
	require.NoError(t, err)
	assert.Equal(t, []string{"/opt/a", "/opt/b"}, paths)

	require.NoError(t, section.Set("foo", "explicit"))
	foo, err = section.String("foo")
	require.NoError(t, err)
	assert.Equal(t, "explicit", foo)
}

func TestLoadBytes_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "unknown category", content: `category "nope" { foo = "x" }`, want: ErrUnknownOption},
		{name: "unknown option", content: `category "test" { nope = "x" }`, want: ErrUnknownOption},
		{name: "wrong type", content: `category "test" { enabled = "not a bool" }`, want: ErrInvalidConfigValue},
		{name: "invalid value", content: `category "test" { mode = "reckless" }`, want: ErrInvalidConfigValue},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := NewStore(WithLookupEnv(envMap(nil)))
			_, err := store.RegisterCategory("test", testSchema())
			require.NoError(t, err)

			err = store.LoadBytes([]byte(tc.content), "test.hcl")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoadBytes_IsAllOrNothing(t *testing.T) {
	store := NewStore(WithLookupEnv(envMap(nil)))
	section, err := store.RegisterCategory("test", testSchema())
	require.NoError(t, err)

	err = store.LoadBytes([]byte(`category "test" {
  foo  = "changed"
  mode = "reckless"
}`), "test.hcl")
	require.Error(t, err)

	foo, err := section.String("foo")
	require.NoError(t, err)
	assert.Equal(t, "bar", foo)
}

func TestLoadBytes_SyntaxError(t *testing.T) {
	store := NewStore(WithLookupEnv(envMap(nil)))
	err := store.LoadBytes([]byte(`category "test" {`), "broken.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}
