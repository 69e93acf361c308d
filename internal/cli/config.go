package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/sagago/internal/config"
)

type optionView struct {
	Category      string `json:"category" yaml:"category"`
	Name          string `json:"name" yaml:"name"`
	Type          string `json:"type" yaml:"type"`
	Value         string `json:"value" yaml:"value"`
	Source        string `json:"source" yaml:"source"`
	EnvVariable   string `json:"env,omitempty" yaml:"env,omitempty"`
	Documentation string `json:"doc,omitempty" yaml:"doc,omitempty"`
}

func newConfigCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "List configuration options with their effective values",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			views := []optionView{}
			for _, ov := range a.Config().Options() {
				views = append(views, optionView{
					Category:      ov.Category,
					Name:          ov.Name,
					Type:          ov.Type.String(),
					Value:         config.Render(ov.Value),
					Source:        ov.Source,
					EnvVariable:   ov.EnvVariable,
					Documentation: ov.Documentation,
				})
			}

			return render(cmd.OutOrStdout(), opts.Format, views, func(w io.Writer) error {
				rows := make([][]string, 0, len(views))
				for _, v := range views {
					rows = append(rows, []string{v.Category, v.Name, v.Type, v.Value, v.Source, v.EnvVariable})
				}
				return table(w, []string{"CATEGORY", "NAME", "TYPE", "VALUE", "SOURCE", "ENV"}, rows)
			})
		},
	}
}
