package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/askiada/go-jobopts/pkg/components"
	"github.com/askiada/go-jobopts/pkg/pipeline"
)

func newComponentsCommand(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "components [TYPE]",
		Short: "List component types, or the properties and handles of one type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			if len(args) == 0 {
				fmt.Fprintln(tw, "TYPE\tKIND\tDESCRIPTION")

				for _, schema := range components.Schemas() {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", schema.Type, schema.Kind, schema.Doc)
				}

				return tw.Flush()
			}

			factory, err := components.Lookup(args[0])
			if err != nil {
				return err
			}

			describeSchema(tw, factory().Schema())

			return tw.Flush()
		},
	}
}

func describeSchema(tw *tabwriter.Writer, schema pipeline.Schema) {
	fmt.Fprintf(tw, "%s (%s)\n", schema.Type, schema.Kind)

	if schema.Doc != "" {
		fmt.Fprintf(tw, "%s\n", schema.Doc)
	}

	fmt.Fprintln(tw, "\nPROPERTY\tTYPE\tDEFAULT\tDESCRIPTION")

	for _, p := range schema.Properties {
		def := fmt.Sprintf("%v", p.Default)
		if p.Default == nil {
			def = "-"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, p.Type, def, p.Doc)
	}

	if len(schema.Handles) > 0 {
		fmt.Fprintln(tw, "\nHANDLE\tDIRECTION\tDEFAULT PATH\t")

		for _, h := range schema.Handles {
			fmt.Fprintf(tw, "%s\t%s\t%s\t\n", h.Name, h.Direction, h.Default)
		}
	}

	for _, req := range schema.Requires {
		fmt.Fprintf(tw, "\nrequires %s\n", req)
	}
}
