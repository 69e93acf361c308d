package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/specialistvlad/sagago/internal/adaptor"
	"github.com/specialistvlad/sagago/internal/fsutil"
	"github.com/specialistvlad/sagago/internal/manifest"
	"github.com/specialistvlad/sagago/internal/registry"
	"github.com/specialistvlad/sagago/internal/session"
)

// BuiltinPath is the first search path; it stands for the compiled modules.
const BuiltinPath = "builtin:"

// Entry is a successfully loaded module or manifest.
type Entry struct {
	Source string
	Name   string
	Claims int
}

// Failure is an entry that could not be loaded.
type Failure struct {
	Source string
	Name   string
	Err    error
}

// Report summarises a discovery run.
type Report struct {
	Paths  []string
	Loaded []Entry
	Failed []Failure
}

// Loader populates a registry from compiled modules and manifests.
type Loader struct {
	registry *registry.Registry
	logger   *slog.Logger
	modules  []adaptor.Module
	catalog  map[string]adaptor.Module
	builtins bool
	order    int
}

// New creates a Loader. The given modules make up the built-in search path,
// in the order given. They also form the catalog manifests can refer to.
func New(reg *registry.Registry, logger *slog.Logger, modules ...adaptor.Module) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		registry: reg,
		logger:   logger,
		modules:  modules,
		catalog:  make(map[string]adaptor.Module),
		builtins: true,
	}
	for _, m := range modules {
		if m == nil {
			continue
		}
		if name := moduleName(m); name != "" {
			if _, dup := l.catalog[name]; !dup {
				l.catalog[name] = m
			}
		}
	}
	return l
}

// DisableBuiltins stops the built-in path from registering the compiled
// modules. They stay available to manifests.
func (l *Loader) DisableBuiltins() {
	l.builtins = false
}

// SearchPaths returns the search path list for the given extra paths.
func SearchPaths(extra []string) []string {
	paths := make([]string, 0, len(extra)+1)
	paths = append(paths, BuiltinPath)
	for _, p := range extra {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// Discover loads every entry on the search path and freezes the registry.
// It never returns an error: failures are logged and listed in the report.
// Calling Discover on a frozen registry does nothing.
func (l *Loader) Discover(ctx context.Context, extraPaths []string) Report {
	if l.registry.Frozen() {
		l.logger.Debug("Registry already frozen, skipping discovery.")
		return Report{}
	}

	report := Report{Paths: SearchPaths(extraPaths)}
	l.logger.Debug("Adaptor discovery started.", "paths", report.Paths)

	for _, path := range report.Paths {
		if err := ctx.Err(); err != nil {
			l.logger.Error("Adaptor discovery interrupted.", "error", err)
			break
		}
		if path == BuiltinPath {
			l.loadBuiltins(&report)
			continue
		}
		l.loadPath(path, &report)
	}

	l.registry.Freeze()
	l.logger.Info("Adaptor discovery complete.", "loaded", len(report.Loaded), "failed", len(report.Failed), "claims", len(l.registry.Descriptors()))
	return report
}

func (l *Loader) loadBuiltins(report *Report) {
	if !l.builtins {
		l.logger.Debug("Built-in adaptors disabled.")
		return
	}
	seen := make(map[string]struct{})
	for i, m := range l.modules {
		name := fmt.Sprintf("#%d", i)
		if m != nil {
			if n := moduleName(m); n != "" {
				name = n
			}
		}
		descs, err := l.moduleDescriptors(m, seen)
		l.commit(BuiltinPath, name, descs, err, report)
	}
}

func (l *Loader) loadPath(path string, report *Report) {
	files, err := fsutil.FindFilesByPattern(path, manifest.FilePattern)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("Adaptor path does not exist, skipping.", "path", path)
		} else {
			l.logger.Error("Failed to read adaptor path.", "path", path, "error", err)
			report.Failed = append(report.Failed, Failure{Source: path, Name: path, Err: err})
		}
		return
	}
	if len(files) == 0 {
		l.logger.Debug("No adaptor manifests found in path.", "path", path, "pattern", manifest.FilePattern)
		return
	}
	for _, file := range files {
		descs, err := l.manifestDescriptors(file)
		l.commit(path, file, descs, err, report)
	}
}

// commit registers an entry's descriptors, or records its failure.
func (l *Loader) commit(source, name string, descs []registry.Descriptor, err error, report *Report) {
	if err == nil {
		first := l.order
		for i := range descs {
			descs[i].Source = source
			descs[i].Order = l.nextOrder()
		}
		if err = l.registry.RegisterAll(descs); err != nil {
			l.order = first
		}
	}
	if err != nil {
		l.logger.Error("Failed to load adaptor, skipping.", "source", source, "entry", name, "error", err)
		report.Failed = append(report.Failed, Failure{Source: source, Name: name, Err: err})
		return
	}
	l.logger.Debug("Loaded adaptor.", "source", source, "entry", name, "claims", len(descs))
	report.Loaded = append(report.Loaded, Entry{Source: source, Name: name, Claims: len(descs)})
}

func (l *Loader) nextOrder() int {
	l.order++
	return l.order
}

// moduleName calls m.Name, turning a panic into an empty name.
func moduleName(m adaptor.Module) (name string) {
	defer func() {
		if r := recover(); r != nil {
			name = ""
		}
	}()
	return m.Name()
}

// moduleDescriptors collects and validates a module's claims. A panic in the
// module is converted into an error.
func (l *Loader) moduleDescriptors(m adaptor.Module, seen map[string]struct{}) (descs []registry.Descriptor, err error) {
	if m == nil {
		return nil, errors.New("nil module")
	}
	defer func() {
		if r := recover(); r != nil {
			descs, err = nil, fmt.Errorf("module panicked while declaring claims: %v", r)
		}
	}()

	name := m.Name()
	if name == "" {
		return nil, errors.New("module has an empty name")
	}
	if _, dup := seen[name]; dup {
		return nil, fmt.Errorf("module %q is already loaded", name)
	}

	claims, err := m.Claims()
	if err != nil {
		return nil, fmt.Errorf("module %q: %w", name, err)
	}
	if len(claims) == 0 {
		return nil, fmt.Errorf("module %q declares no claims", name)
	}
	for _, c := range claims {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("module %q: %w", name, err)
		}
		descs = append(descs, registry.Descriptor{
			Adaptor:  name,
			Category: c.Category,
			Scheme:   c.Scheme,
			Factory:  c.Factory,
		})
	}
	seen[name] = struct{}{}
	return descs, nil
}

// manifestDescriptors parses a manifest and binds its claims to catalog
// modules.
func (l *Loader) manifestDescriptors(path string) ([]registry.Descriptor, error) {
	m, err := manifest.ParseFile(path)
	if err != nil {
		return nil, err
	}

	var descs []registry.Descriptor
	for _, a := range m.Adaptors {
		mod, ok := l.catalog[a.Module]
		if !ok {
			return nil, fmt.Errorf("adaptor %q refers to unknown module %q", a.Name, a.Module)
		}
		claims, err := safeClaims(mod)
		if err != nil {
			return nil, fmt.Errorf("adaptor %q: module %q: %w", a.Name, a.Module, err)
		}
		for _, c := range a.Claims {
			base, ok := findFactory(claims, c.Category, c.Target)
			if !ok {
				return nil, fmt.Errorf("adaptor %q: module %q has no claim for %s/%s", a.Name, a.Module, c.Category, c.Target)
			}
			descs = append(descs, registry.Descriptor{
				Adaptor:  a.Name,
				Category: c.Category,
				Scheme:   c.Scheme,
				Factory:  delegate(a.Name, c, base),
			})
		}
	}
	return descs, nil
}

func safeClaims(m adaptor.Module) (claims []adaptor.Claim, err error) {
	defer func() {
		if r := recover(); r != nil {
			claims, err = nil, fmt.Errorf("module panicked while declaring claims: %v", r)
		}
	}()
	return m.Claims()
}

func findFactory(claims []adaptor.Claim, category, scheme string) (adaptor.Factory, bool) {
	for _, c := range claims {
		if strings.EqualFold(c.Category, category) && strings.EqualFold(c.Scheme, scheme) && c.Factory != nil {
			return c.Factory, true
		}
	}
	return nil, false
}

// delegate wraps a module factory for a manifest claim: it applies the accept
// predicate and rewrites the URL scheme to the target.
func delegate(name string, c manifest.Claim, base adaptor.Factory) adaptor.Factory {
	return func(ctx context.Context, u *url.URL, s *session.Session) (any, error) {
		if c.Accept != nil {
			ok, err := c.Accept.Match(u)
			if err != nil {
				return nil, fmt.Errorf("adaptor %q: %w", name, err)
			}
			if !ok {
				return nil, adaptor.Decline("adaptor %q: accept condition %q not met", name, c.Accept.String())
			}
		}
		if c.Target != "" && !strings.EqualFold(u.Scheme, c.Target) {
			rewritten := *u
			rewritten.Scheme = c.Target
			u = &rewritten
		}
		return base(ctx, u, s)
	}
}
