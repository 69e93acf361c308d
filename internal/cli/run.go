package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/sagago/internal/adaptor"
	"github.com/specialistvlad/sagago/internal/capability"
	"github.com/specialistvlad/sagago/internal/engine"
)

type runResult struct {
	URL      string `json:"url" yaml:"url"`
	Adaptor  string `json:"adaptor" yaml:"adaptor"`
	ExitCode int    `json:"exit_code" yaml:"exit_code"`
	Stdout   string `json:"stdout" yaml:"stdout"`
	Stderr   string `json:"stderr" yaml:"stderr"`
	Duration string `json:"duration" yaml:"duration"`
}

func newRunCommand(opts *RootOptions) *cobra.Command {
	var (
		env     map[string]string
		workdir string
	)
	cmd := &cobra.Command{
		Use:   "run URL -- COMMAND [ARGS...]",
		Short: "Run a job through the adaptor its URL binds to",
		Long: `Run binds URL in the job category and runs COMMAND there. The command's
exit code becomes the exit code of sagago.`,
		Args: minArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			svc, b, err := engine.Bind[capability.JobService](cmd.Context(), a.Engine(), adaptor.CategoryJob, args[0], opts.session())
			if err != nil {
				return resolveFailure(cmd.ErrOrStderr(), err)
			}

			jr, err := svc.Run(cmd.Context(), capability.JobDescription{
				Executable:       args[1],
				Arguments:        args[2:],
				Environment:      env,
				WorkingDirectory: workdir,
			})
			if err != nil {
				return failure("job failed", err)
			}

			res := runResult{
				URL:      b.URL.Redacted(),
				Adaptor:  b.Adaptor,
				ExitCode: jr.ExitCode,
				Stdout:   jr.Stdout,
				Stderr:   jr.Stderr,
				Duration: jr.Finished.Sub(jr.Started).String(),
			}
			err = render(cmd.OutOrStdout(), opts.Format, res, func(w io.Writer) error {
				fmt.Fprint(w, res.Stdout)
				fmt.Fprint(cmd.ErrOrStderr(), res.Stderr)
				return nil
			})
			if err != nil {
				return err
			}
			if jr.ExitCode != 0 {
				return &ExitError{Code: jr.ExitCode, Message: fmt.Sprintf("job exited with code %d", jr.ExitCode)}
			}
			return nil
		},
	}
	cmd.Flags().StringToStringVarP(&env, "env", "e", nil, "environment variable for the job, KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&workdir, "workdir", "", "working directory for the job")
	return cmd
}
