package commands

import (
	"log/slog"
	"os"

	"collegenet-backend/internal/report"

	"github.com/spf13/cobra"
)

var (
	batchDays   *int
	batchStep   *int
	batchFormat *string
)

func init() {
	batchDays = batchCmd.Flags().Int("days", 14, "How many days ahead of today to scrape.")
	batchStep = batchCmd.Flags().Int("step", 7, "How many days each window covers.")
	batchFormat = batchCmd.Flags().StringP("format", "f", "table", "Output format: table prints a summary per window, csv and json print the reservations.")
	rootCmd.AddCommand(batchCmd)
}

var batchCmd = &cobra.Command{
	Use:   "batch [--days 14] [--step 7]",
	Short: "Scrapes the coming days window by window.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, scraper := mustLoad()

		result, err := scraper.Batch(cmd.Context(), *batchDays, *batchStep)
		if err != nil {
			slog.Error("some windows failed", "err", err.Error())
		}
		slog.Info(
			"batch finished",
			"windows", len(result.Windows),
			"reservations", len(result.Reservations),
			"seconds", result.Duration.Seconds(),
		)

		if *batchFormat == "table" {
			report.WriteWindows(os.Stdout, result)
		} else {
			writeErr := report.Write(os.Stdout, *batchFormat, result.Reservations)
			if writeErr != nil {
				return writeErr
			}
		}
		return err
	},
}
