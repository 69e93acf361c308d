package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/sagago/internal/adaptor"
	"github.com/specialistvlad/sagago/internal/capability"
	"github.com/specialistvlad/sagago/internal/engine"
)

type fetchResult struct {
	URL     string `json:"url" yaml:"url"`
	Adaptor string `json:"adaptor" yaml:"adaptor"`
	Output  string `json:"output" yaml:"output"`
	Bytes   int64  `json:"bytes" yaml:"bytes"`
}

func newFetchCommand(opts *RootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "fetch URL",
		Short: "Download a file through the adaptor its URL binds to",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			file, b, err := engine.Bind[capability.FileTransfer](cmd.Context(), a.Engine(), adaptor.CategoryFile, args[0], opts.session())
			if err != nil {
				return resolveFailure(cmd.ErrOrStderr(), err)
			}

			if output == "" || output == "-" {
				if _, err := file.Fetch(cmd.Context(), cmd.OutOrStdout()); err != nil {
					return failure("fetch failed", err)
				}
				return nil
			}

			f, err := os.Create(output)
			if err != nil {
				return failure("cannot create output file", err)
			}
			n, err := file.Fetch(cmd.Context(), f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return failure("fetch failed", err)
			}

			res := fetchResult{URL: b.URL.Redacted(), Adaptor: b.Adaptor, Output: output, Bytes: n}
			return render(cmd.OutOrStdout(), opts.Format, res, func(w io.Writer) error {
				fmt.Fprintf(w, "%s -> %s (%d bytes via %s)\n", res.URL, res.Output, res.Bytes, res.Adaptor)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to FILE instead of stdout")
	return cmd
}
