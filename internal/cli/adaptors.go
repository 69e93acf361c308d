package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

type adaptorView struct {
	Order    int    `json:"order" yaml:"order"`
	Adaptor  string `json:"adaptor" yaml:"adaptor"`
	Category string `json:"category" yaml:"category"`
	Scheme   string `json:"scheme" yaml:"scheme"`
	Source   string `json:"source" yaml:"source"`
}

type failureView struct {
	Source string `json:"source" yaml:"source"`
	Name   string `json:"name" yaml:"name"`
	Error  string `json:"error" yaml:"error"`
}

type adaptorsResult struct {
	Paths    []string      `json:"paths" yaml:"paths"`
	Adaptors []adaptorView `json:"adaptors" yaml:"adaptors"`
	Failed   []failureView `json:"failed,omitempty" yaml:"failed,omitempty"`
}

func newAdaptorsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "adaptors",
		Short: "List installed adaptors in resolution order",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			report := a.Report()
			res := adaptorsResult{Paths: report.Paths, Adaptors: []adaptorView{}}
			for _, d := range a.Registry().Descriptors() {
				res.Adaptors = append(res.Adaptors, adaptorView{
					Order: d.Order, Adaptor: d.Adaptor, Category: d.Category, Scheme: d.Scheme, Source: d.Source,
				})
			}
			for _, f := range report.Failed {
				res.Failed = append(res.Failed, failureView{Source: f.Source, Name: f.Name, Error: f.Err.Error()})
			}

			return render(cmd.OutOrStdout(), opts.Format, res, func(w io.Writer) error {
				rows := make([][]string, 0, len(res.Adaptors))
				for _, v := range res.Adaptors {
					rows = append(rows, []string{strconv.Itoa(v.Order), v.Adaptor, v.Category, v.Scheme, v.Source})
				}
				if err := table(w, []string{"ORDER", "ADAPTOR", "CATEGORY", "SCHEME", "SOURCE"}, rows); err != nil {
					return err
				}
				if len(res.Failed) > 0 {
					fmt.Fprintf(w, "\n%s failed to load:\n", plural(len(res.Failed), "entry"))
					for _, f := range res.Failed {
						fmt.Fprintf(w, "  %s (%s): %s\n", f.Name, f.Source, f.Error)
					}
				}
				return nil
			})
		},
	}
}
