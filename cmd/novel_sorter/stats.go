package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/novel-sorter/internal/observability"
	"github.com/jonathan/novel-sorter/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show pending counts, category distribution and recent runs",
	RunE:  runStats,
}

var (
	statsLibrary libraryFlags
	statsJSON    bool
)

func init() {
	statsLibrary.register(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print statistics as JSON")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	cfg, err := statsLibrary.load(cmd)
	if err != nil {
		return err
	}

	stats, err := report.CollectStatistics(cfg)
	if err != nil {
		return err
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal statistics: %w", err)
		}
		_, _ = fmt.Fprintln(out, string(data))
		return nil
	}

	observability.NewPrinter(out).PrintStatistics(stats)
	return nil
}
