package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/findash-backend/internal/mapping"
)

func newFlattenCmd(opts *rootOptions) *cobra.Command {
	var (
		search     string
		arraysOnly bool
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "flatten <url|file|->",
		Short: "List the selectable fields of a JSON payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readSource(cmd.Context(), opts, cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			fields := mapping.FilterFields(mapping.Flatten(raw), search, arraysOnly)
			if asJSON {
				if fields == nil {
					fields = []mapping.FlattenedField{}
				}
				return writeJSON(cmd.OutOrStdout(), fields)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tTYPE\tVALUE")
			for _, f := range fields {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Path, f.Type, f.Value)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive filter on path or value")
	cmd.Flags().BoolVar(&arraysOnly, "arrays-only", false, "Only list array fields")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print fields as JSON")
	return cmd
}
