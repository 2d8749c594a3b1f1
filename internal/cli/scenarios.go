package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/askiada/go-jobopts/pkg/scenarios"
)

func newScenariosCommand(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the built-in scenarios and pile-up configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			fmt.Fprintln(tw, "SCENARIO\tDESCRIPTION")

			for _, s := range scenarios.List() {
				fmt.Fprintf(tw, "%s\t%s\n", s.Name, s.Doc)
			}

			fmt.Fprintln(tw, "\nPILE-UP\tEVENTS\tSIGMA X/Y/Z/T")

			for _, c := range scenarios.PileUpConfigs() {
				fmt.Fprintf(tw, "%s\t%d\t%s / %s / %s / %s\n", c.Name, c.NumPileUpEvents,
					c.Gauss.XVertexSigma, c.Gauss.YVertexSigma, c.Gauss.ZVertexSigma, c.Gauss.TVertexSigma)
			}

			return tw.Flush()
		},
	}
}
