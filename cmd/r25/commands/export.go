package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"collegenet-backend/internal/components/chrono"
	"collegenet-backend/internal/components/telemetry"
	"collegenet-backend/internal/report"
	"collegenet-backend/internal/scrapers/r25"
	"collegenet-backend/internal/store"

	"github.com/spf13/cobra"
)

var (
	exportDb        *string
	exportLookahead *string
	exportList      *bool
	exportCron      *string
)

func init() {
	exportDb = exportCmd.Flags().String("db", "", "The sqlite database to write to, defaults to export.database in the config.")
	exportLookahead = exportCmd.Flags().String("lookahead", "+30", "End of the window as a day offset from today.")
	exportList = exportCmd.Flags().Bool("list", false, "List the runs already in the database instead of scraping.")
	exportCron = exportCmd.Flags().String("cron", "", "Keep running and export on this cron schedule, ex. \"0 6 * * *\".")
	rootCmd.AddCommand(exportCmd)
}

func exportOnce(ctx context.Context, scraper *r25.Scraper, db *store.Store) error {
	window, err := scraper.Window("+0", *exportLookahead)
	if err != nil {
		return err
	}
	reservations, err := scraper.ScrapeWindow(ctx, window)
	if err != nil {
		return err
	}
	runId, err := db.SaveRun(ctx, window, reservations)
	if err != nil {
		return err
	}
	slog.Info("exported reservations", "run", runId, "window", window.String(), "count", len(reservations))
	fmt.Println(runId)
	return nil
}

var exportCmd = &cobra.Command{
	Use:   "export [--db <path/to/reservations.db>] [--lookahead +30] [--cron <spec>]",
	Short: "Scrapes upcoming reservations into a sqlite database as a new export run.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, scraper := mustLoad()

		db, err := store.Open(orDefault(*exportDb, cfg.Export.Database), nil)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		if *exportList {
			runs, err := db.Runs(cmd.Context())
			if err != nil {
				return err
			}
			report.WriteRuns(os.Stdout, runs)
			return nil
		}

		if *exportCron == "" {
			return exportOnce(cmd.Context(), scraper, db)
		}

		opts, err := cfg.Options()
		if err != nil {
			return err
		}
		cron := chrono.NewStandardCron(telemetry.SlogAPI{}, opts.Location)
		defer cron.Stop()

		err = cron.Cron(*exportCron, func() {
			err := exportOnce(cmd.Context(), scraper, db)
			if err != nil {
				slog.Error("scheduled export failed", "err", err.Error())
			}
		})
		if err != nil {
			return err
		}
		slog.Info("waiting for scheduled exports, press Ctrl+C to stop", "cron", *exportCron)
		<-cmd.Context().Done()
		return nil
	},
}
