package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/findash-backend/internal/mapping"
	"github.com/GregMSThompson/findash-backend/internal/models"
)

func newMapCmd(opts *rootOptions) *cobra.Command {
	var (
		component  string
		configPath string
	)
	cmd := &cobra.Command{
		Use:   "map --component <name> --config <file> <url|file|->",
		Short: "Project a JSON payload through a widget config",
		Long: `Runs the same mapping a widget's data request does: the payload is checked
for provider error markers, then projected to table rows, chart points or
card data depending on the component.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgRaw, err := os.ReadFile(configPath)
			if err != nil {
				return err
			}
			var wc models.WidgetConfig
			if err := json.Unmarshal(cfgRaw, &wc); err != nil {
				return fmt.Errorf("parse config %s: %w", configPath, err)
			}
			cfg, err := mapping.ResolveConfig(component, &wc)
			if err != nil {
				return err
			}

			raw, err := readSource(cmd.Context(), opts, cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if err := mapping.CheckProviderError(raw); err != nil {
				return err
			}
			out, err := mapping.Project(raw, cfg)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&component, "component", "", "Widget component (DataTableWidget, StockChartWidget, KeyMetricsWidget)")
	cmd.Flags().StringVar(&configPath, "config", "", "Widget config JSON file")
	_ = cmd.MarkFlagRequired("component")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
