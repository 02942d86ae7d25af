package commands

import (
	"os"
	"strings"

	"collegenet-backend/internal/report"

	"github.com/spf13/cobra"
)

var (
	searchLookahead     *string
	searchMinAttendance *int
	searchBuilding      *string
)

func init() {
	searchLookahead = searchCmd.Flags().String("lookahead", "+30", "End of the window as a day offset from today.")
	searchMinAttendance = searchCmd.Flags().Int("min-attendance", 0, "Only keep reservations expecting at least this many people.")
	searchBuilding = searchCmd.Flags().String("building", "", "Only keep reservations whose location abbreviation contains this, ex. SH.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query] [--min-attendance 50] [--building SH]",
	Short: "Searches upcoming reservations by name.",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, scraper := mustLoad()

		window, err := scraper.Window("+0", *searchLookahead)
		if err != nil {
			return err
		}
		reservations, err := scraper.ScrapeWindow(cmd.Context(), window)
		if err != nil {
			return err
		}

		matches := report.Search(reservations, report.Query{
			Text:          strings.Join(args, " "),
			MinAttendance: *searchMinAttendance,
			Building:      *searchBuilding,
		})
		report.WriteMatches(os.Stdout, matches)
		return nil
	},
}
