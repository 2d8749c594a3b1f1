package cli

import (
	"github.com/spf13/cobra"

	"github.com/askiada/go-jobopts/pkg/pipeline"
	"github.com/askiada/go-jobopts/pkg/pipeline/drawer"
)

func newDrawCommand(a *app) *cobra.Command {
	var (
		in  input
		out string
	)

	cmd := &cobra.Command{
		Use:     "draw [job.yaml]",
		Short:   "Draw the data flow of a pipeline as Graphviz DOT",
		Example: `  jobopts draw --scenario particleGun | dot -Tsvg > particleGun.svg`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, closeOut, err := output(cmd.OutOrStdout(), out)
			if err != nil {
				return err
			}

			_, err = in.load(a, args, pipeline.WithHook(drawer.PipelineDrawer(drawer.NewDOTDrawer(w))))
			if cerr := closeOut(); err == nil {
				err = cerr
			}

			return err
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file, stdout by default")

	return cmd
}
