package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/sagago/internal/engine"
)

type attemptView struct {
	Adaptor string `json:"adaptor" yaml:"adaptor"`
	Order   int    `json:"order" yaml:"order"`
	Reason  string `json:"reason" yaml:"reason"`
}

type resolveResult struct {
	Category string        `json:"category" yaml:"category"`
	Scheme   string        `json:"scheme" yaml:"scheme"`
	URL      string        `json:"url" yaml:"url"`
	Adaptor  string        `json:"adaptor" yaml:"adaptor"`
	Order    int           `json:"order" yaml:"order"`
	Instance string        `json:"instance" yaml:"instance"`
	Declines []attemptView `json:"declines,omitempty" yaml:"declines,omitempty"`
}

func attemptViews(attempts []engine.Attempt) []attemptView {
	var out []attemptView
	for _, a := range attempts {
		out = append(out, attemptView{Adaptor: a.Adaptor, Order: a.Order, Reason: a.Reason})
	}
	return out
}

func newResolveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve CATEGORY URL",
		Short: "Show which adaptor a URL binds to",
		Long: `Resolve binds CATEGORY and URL exactly as a client would and reports the
adaptor that accepted, together with every candidate that declined first.`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			b, err := a.Resolve(cmd.Context(), args[0], args[1], opts.session())
			if err != nil {
				return resolveFailure(cmd.ErrOrStderr(), err)
			}

			res := resolveResult{
				Category: b.Category,
				Scheme:   b.Scheme,
				URL:      b.URL.Redacted(),
				Adaptor:  b.Adaptor,
				Order:    b.Order,
				Instance: fmt.Sprintf("%T", b.Instance),
				Declines: attemptViews(b.Declines),
			}
			return render(cmd.OutOrStdout(), opts.Format, res, func(w io.Writer) error {
				fmt.Fprintf(w, "%s %s -> %s (order %d, %s)\n", res.Category, res.URL, res.Adaptor, res.Order, res.Instance)
				for _, d := range res.Declines {
					fmt.Fprintf(w, "  declined by %s (order %d): %s\n", d.Adaptor, d.Order, d.Reason)
				}
				return nil
			})
		},
	}
}

// resolveFailure prints the declines of a failed resolution to w and wraps
// err with an exit code.
func resolveFailure(w io.Writer, err error) error {
	var rerr *engine.ResolveError
	if errors.As(err, &rerr) {
		for _, d := range rerr.Attempts {
			fmt.Fprintf(w, "declined by %s (order %d): %s\n", d.Adaptor, d.Order, d.Reason)
		}
		if errors.Is(err, engine.ErrMalformedURL) {
			return &ExitError{Code: ExitUsage, Message: "resolution failed", Err: err}
		}
	}
	return failure("resolution failed", err)
}
