package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/sagago/internal/app"
	"github.com/specialistvlad/sagago/internal/logging"
	"github.com/specialistvlad/sagago/internal/session"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel     string
	LogFormat    string
	AdaptorPaths []string
	ConfigFile   string
	Format       string

	User     string
	Password string
	Token    string

	// AppOptions are appended when the runtime is built.
	AppOptions []app.Option
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// NewRootCommand creates the root command for the sagago CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sagago",
		Short: "sagago - bind resource URLs to installed adaptors",
		Long: `sagago resolves a capability category (job, file, stream, ...) and a
resource URL to the first installed adaptor that accepts them.

Adaptors come from the binary itself and from adaptor_*.hcl manifests
found on the adaptor paths.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return usageError("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.LogFormat != "" && opts.LogFormat != "text" && opts.LogFormat != "json" {
				return usageError("invalid log-format: must be 'text' or 'json'")
			}
			if opts.LogLevel != "" && !slices.Contains(validLogLevels, strings.ToLower(opts.LogLevel)) {
				return usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
			}
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	})

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.LogLevel, "log-level", "", "logging level: debug, info, warn, error (default from SAGAGO_LOG_LEVEL, else info)")
	flags.StringVar(&opts.LogFormat, "log-format", "", "log output format: text or json (default from SAGAGO_LOG_FORMAT, else text)")
	flags.StringArrayVar(&opts.AdaptorPaths, "adaptor-path", nil, "directory with adaptor_*.hcl manifests (repeatable)")
	flags.StringVar(&opts.ConfigFile, "config", "", "HCL configuration file")
	flags.StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	flags.StringVar(&opts.User, "user", "", "user name for a UserPass session context")
	flags.StringVar(&opts.Password, "password", "", "password for a UserPass session context")
	flags.StringVar(&opts.Token, "token", "", "bearer token for a Token session context")

	cmd.AddCommand(newAdaptorsCommand(opts))
	cmd.AddCommand(newResolveCommand(opts))
	cmd.AddCommand(newConfigCommand(opts))
	cmd.AddCommand(newFetchCommand(opts))
	cmd.AddCommand(newRunCommand(opts))

	return cmd
}

// logger builds the CLI logger. Flags win over the environment.
func (o *RootOptions) logger(w io.Writer) (*slog.Logger, error) {
	s, err := logging.ParseSettings()
	if err != nil {
		return nil, usageError("%v", err)
	}
	level, format := s.EffectiveLevel(), s.Format
	if o.LogLevel != "" {
		level = o.LogLevel
	}
	if o.LogFormat != "" {
		format = o.LogFormat
	}
	return logging.New(level, format, w), nil
}

// newApp builds an isolated runtime from the global flags. Logs go to the
// command's error stream so structured output stays parseable.
func (o *RootOptions) newApp(ctx context.Context, cmd *cobra.Command) (*app.App, error) {
	logger, err := o.logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	appOpts := []app.Option{app.WithLogger(logger)}
	if len(o.AdaptorPaths) > 0 {
		appOpts = append(appOpts, app.WithAdaptorPaths(o.AdaptorPaths...))
	}
	if o.ConfigFile != "" {
		appOpts = append(appOpts, app.WithConfigFile(o.ConfigFile))
	}
	appOpts = append(appOpts, o.AppOptions...)

	a, err := app.New(ctx, appOpts...)
	if err != nil {
		return nil, failure("failed to initialize runtime", err)
	}
	return a, nil
}

// session builds a session from the credential flags.
func (o *RootOptions) session() *session.Session {
	s := session.New()
	if o.User != "" {
		s.AddContext(session.Context{Type: session.ContextUserPass, UserID: o.User, UserPass: o.Password})
	}
	if o.Token != "" {
		s.AddContext(session.Context{Type: session.ContextToken, UserToken: o.Token})
	}
	return s
}

// exactArgs is cobra.ExactArgs with a usage exit code.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError("%s: accepts %d arg(s), received %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usageError("%s: requires at least %d arg(s), only received %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
