package app

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/sagago/internal/adaptor"
	"github.com/specialistvlad/sagago/internal/config"
	"github.com/specialistvlad/sagago/internal/engine"
	"github.com/specialistvlad/sagago/internal/logging"
	"github.com/specialistvlad/sagago/internal/session"
	"github.com/specialistvlad/sagago/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testModule struct {
	name   string
	claims []adaptor.Claim
}

func (m *testModule) Name() string                     { return m.name }
func (m *testModule) Claims() ([]adaptor.Claim, error) { return m.claims, nil }

func constFactory(v any, err error) adaptor.Factory {
	return func(context.Context, *url.URL, *session.Session) (any, error) { return v, err }
}

func noEnv(string) (string, bool) { return "", false }

func newTestApp(t *testing.T, opts ...Option) (*App, *testutil.SafeBuffer) {
	t.Helper()
	logger, logs := testutil.NewLogger()
	opts = append([]Option{WithLogger(logger), WithLookupEnv(noEnv)}, opts...)
	a, err := New(context.Background(), opts...)
	require.NoError(t, err)
	return a, logs
}

func TestNew_Defaults(t *testing.T) {
	a, _ := newTestApp(t)

	paths, err := a.Config().Strings(EngineCategory, OptionAdaptorPaths)
	require.NoError(t, err)
	assert.Empty(t, paths)

	builtins, err := a.Config().Bool(EngineCategory, OptionBuiltinAdaptors)
	require.NoError(t, err)
	assert.True(t, builtins)

	foo, err := a.Config().String(EngineCategory, OptionFoo)
	require.NoError(t, err)
	assert.Equal(t, "bar", foo)

	assert.True(t, a.Registry().Frozen())
	assert.Empty(t, a.Report().Failed)

	var names []string
	for _, e := range a.Report().Loaded {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"s3", "http", "socketio", "local"}, names)
}

func TestNew_PresignedURLsPreferS3(t *testing.T) {
	a, _ := newTestApp(t)

	b, err := a.Resolve(context.Background(), adaptor.CategoryFile, "https://b.s3.amazonaws.com/k?X-Amz-Signature=x", nil)
	require.NoError(t, err)
	assert.Equal(t, "s3", b.Adaptor)

	b, err = a.Resolve(context.Background(), adaptor.CategoryFile, "https://example.org/k", nil)
	require.NoError(t, err)
	assert.Equal(t, "http", b.Adaptor)
	require.Len(t, b.Declines, 1)
	assert.Equal(t, "s3", b.Declines[0].Adaptor)
}

func TestNew_NoBackendForScheme(t *testing.T) {
	a, _ := newTestApp(t)
	_, err := a.Resolve(context.Background(), adaptor.CategoryJob, "ftp://x", nil)
	assert.ErrorIs(t, err, engine.ErrNoBackendForScheme)
}

func TestNew_WithModulesReplacesBuiltins(t *testing.T) {
	a, _ := newTestApp(t, WithModules(&testModule{
		name:   "only",
		claims: []adaptor.Claim{{Category: "job", Scheme: "x", Factory: constFactory("ok", nil)}},
	}))

	assert.Equal(t, []string{"job"}, a.Registry().Categories())
	b, err := a.Resolve(context.Background(), "job", "x://h", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", b.Instance)
}

func TestNew_EnvironmentDisablesBuiltins(t *testing.T) {
	env := map[string]string{"SAGAGO_BUILTIN_ADAPTORS": "false"}
	a, err := New(context.Background(),
		WithLogger(logging.New("error", "text", &bytes.Buffer{})),
		WithLookupEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok }),
	)
	require.NoError(t, err)
	assert.Empty(t, a.Registry().Descriptors())
}

func TestNew_InvalidEnvironmentFails(t *testing.T) {
	env := map[string]string{"SAGAGO_BUILTIN_ADAPTORS": "perhaps"}
	_, err := New(context.Background(),
		WithLogger(logging.New("error", "text", &bytes.Buffer{})),
		WithLookupEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok }),
	)
	assert.ErrorIs(t, err, config.ErrInvalidConfigValue)
}

func TestNew_ConfigFileAndManifestPath(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	manifests := filepath.Join(dir, "adaptors")
	require.NoError(t, os.MkdirAll(manifests, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(manifests, "adaptor_mirror.hcl"), []byte(`
adaptor "mirror" {
  module = "local"
  claim "job" "mirror" {
    target = "fork"
  }
}
`), 0o600))

	cfg := filepath.Join(dir, "sagago.hcl")
	require.NoError(t, os.WriteFile(cfg, []byte(`
category "sagago.engine" {
  adaptor_paths = ["`+filepath.ToSlash(manifests)+`"]
}
`), 0o600))

	// --- Act ---
	a, _ := newTestApp(t, WithConfigFile(cfg))

	// --- Assert ---
	assert.Empty(t, a.Report().Failed)
	b, err := a.Resolve(context.Background(), "job", "mirror://localhost", nil)
	require.NoError(t, err)
	assert.Equal(t, "mirror", b.Adaptor)
}

func TestNew_BadConfigFile(t *testing.T) {
	_, err := New(context.Background(),
		WithLogger(logging.New("error", "text", &bytes.Buffer{})),
		WithLookupEnv(noEnv),
		WithConfigFile(filepath.Join(t.TempDir(), "missing.hcl")),
	)
	assert.Error(t, err)
}

func TestNew_LoadFailureIsReportedNotReturned(t *testing.T) {
	a, logs := newTestApp(t, WithModules(
		&testModule{name: "broken"},
		&testModule{name: "fine", claims: []adaptor.Claim{{Category: "job", Scheme: "x", Factory: constFactory("ok", nil)}}},
	))

	require.Len(t, a.Report().Failed, 1)
	assert.Equal(t, "broken", a.Report().Failed[0].Name)
	assert.Contains(t, logs.String(), "level=ERROR")

	_, err := a.Resolve(context.Background(), "job", "x://h", nil)
	assert.NoError(t, err)
}
