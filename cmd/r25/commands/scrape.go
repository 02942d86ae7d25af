package commands

import (
	"log/slog"
	"os"

	"collegenet-backend/internal/report"
	"collegenet-backend/internal/scrapers/r25"

	"github.com/spf13/cobra"
)

var (
	scrapeLookback  *string
	scrapeLookahead *string
	scrapeFormat    *string
	scrapeAll       *bool
)

func init() {
	scrapeLookback = scrapeCmd.Flags().String("lookback", "", "Start of the window as a day offset from today, ex. -3 or +0.")
	scrapeLookahead = scrapeCmd.Flags().String("lookahead", "", "End of the window as a day offset from today, ex. +7.")
	scrapeFormat = scrapeCmd.Flags().StringP("format", "f", "table", "Output format: table, csv or json.")
	scrapeAll = scrapeCmd.Flags().Bool("all", false, "Disable the event type filter.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--lookback +0] [--lookahead +7] [--format table|csv|json] [--all]",
	Short: "Scrapes the reservations of a date window and prints them.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, scraper := mustLoad()

		window, err := scraper.Window(
			orDefault(*scrapeLookback, cfg.Scrape.Lookback),
			orDefault(*scrapeLookahead, cfg.Scrape.Lookahead),
		)
		if err != nil {
			return err
		}
		slog.Info("scraping reservations", "window", window.String(), "all", *scrapeAll)

		var reservations []r25.Reservation
		if *scrapeAll {
			reservations, err = scraper.ScrapeAll(cmd.Context(), window)
		} else {
			reservations, err = scraper.ScrapeWindow(cmd.Context(), window)
		}
		if err != nil {
			return err
		}
		return report.Write(os.Stdout, *scrapeFormat, reservations)
	},
}
