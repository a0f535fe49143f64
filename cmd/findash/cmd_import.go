package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/findash-backend/internal/services"
)

func newValidateImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-import <file>",
		Short: "Check that a dashboard export file can be imported",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			widgets, err := services.ParseImport(raw)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCOMPONENT\tTITLE")
			for _, w := range widgets {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", w.ID, w.ComponentName, w.Title)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d widgets OK\n", len(widgets))
			return nil
		},
	}
}

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the built-in dashboard templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			templates, err := services.LoadTemplates()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tWIDGETS\tDESCRIPTION")
			for _, t := range templates {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", t.Name, len(t.Widgets), t.Description)
			}
			return tw.Flush()
		},
	}
}
