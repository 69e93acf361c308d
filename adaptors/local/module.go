// Package local provides the "job" category on the local host.
package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/specialistvlad/sagago/internal/adaptor"
	"github.com/specialistvlad/sagago/internal/capability"
	"github.com/specialistvlad/sagago/internal/ctxlog"
	"github.com/specialistvlad/sagago/internal/session"
)

// Name is the module name used in listings and manifests.
const Name = "local"

// Module implements the adaptor.Module interface for this package.
type Module struct{}

// Name implements adaptor.Module.
func (m *Module) Name() string { return Name }

// Claims implements adaptor.Module.
func (m *Module) Claims() ([]adaptor.Claim, error) {
	return []adaptor.Claim{
		{Category: adaptor.CategoryJob, Scheme: "fork", Factory: newService},
		{Category: adaptor.CategoryJob, Scheme: "local", Factory: newService},
	}, nil
}

func newService(_ context.Context, u *url.URL, _ *session.Session) (any, error) {
	switch strings.ToLower(u.Hostname()) {
	case "", "localhost":
		return &Service{url: u}, nil
	default:
		return nil, adaptor.Decline("host %q is not the local host", u.Hostname())
	}
}

var _ capability.JobService = (*Service)(nil)

// Service runs jobs as child processes.
type Service struct {
	url *url.URL
}

// URL returns the bound URL.
func (s *Service) URL() *url.URL { return s.url }

// Run starts the job and waits for it. A non-zero exit is reported in the
// result, not as an error.
func (s *Service) Run(ctx context.Context, jd capability.JobDescription) (*capability.JobResult, error) {
	if jd.Executable == "" {
		return nil, errors.New("job description has no executable")
	}
	logger := ctxlog.FromContext(ctx).With("adaptor", Name, "executable", jd.Executable)

	cmd := exec.CommandContext(ctx, jd.Executable, jd.Arguments...)
	cmd.Dir = jd.WorkingDirectory
	if len(jd.Environment) > 0 {
		cmd.Env = append(os.Environ(), environ(jd.Environment)...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	res := &capability.JobResult{Started: time.Now()}
	logger.Debug("Starting job.", "args", jd.Arguments)
	err := cmd.Run()
	res.Finished = time.Now()
	res.Stdout, res.Stderr = stdout.String(), stderr.String()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr) && ctx.Err() == nil:
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, fmt.Errorf("failed to run %q: %w", jd.Executable, err)
	}
	logger.Info("Job finished.", "exit_code", res.ExitCode, "duration", res.Finished.Sub(res.Started))
	return res, nil
}

// environ renders env as KEY=VALUE pairs in key order.
func environ(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
