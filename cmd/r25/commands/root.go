package commands

import (
	"context"
	"fmt"
	"os"

	"collegenet-backend/internal/components/telemetry"
	"collegenet-backend/internal/config"
	"collegenet-backend/internal/scrapers/r25"
	"collegenet-backend/lib/restyutil"
	"collegenet-backend/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
	dumpHttp   *string
)

var rootCmd = &cobra.Command{
	Use:   "r25",
	Short: "r25 is a CLI for scraping reservations out of 25Live.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file to read, <name>.local.json5 overrides it.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging.")
	dumpHttp = rootCmd.PersistentFlags().String("dump-http", "", "Write every raw 25Live request and response to this directory.")
}

func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}

// mustLoad reads the config and builds a scraper from it, exiting on failure.
func mustLoad() (config.Config, *r25.Scraper) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	opts, err := cfg.Options()
	if err != nil {
		serviceutil.Fatal("invalid config", err)
	}
	if *dumpHttp != "" {
		output, err := restyutil.NewFilesystemOutput(*dumpHttp)
		if err != nil {
			serviceutil.Fatal("failed to create dump directory", err)
		}
		opts.Dump = output
	}
	scraper, err := r25.NewScraper(opts, telemetry.SlogAPI{}, nil)
	if err != nil {
		serviceutil.Fatal("invalid config", err)
	}
	return cfg, scraper
}

// orDefault returns flag unless it is empty.
func orDefault(flag, fallback string) string {
	if flag == "" {
		return fallback
	}
	return flag
}
