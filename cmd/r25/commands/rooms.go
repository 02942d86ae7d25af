package commands

import (
	"fmt"
	"log/slog"
	"os"

	"collegenet-backend/internal/report"

	"github.com/spf13/cobra"
)

var (
	roomsLookahead *string
	roomsTop       *int
	roomsChart     *string
)

func init() {
	roomsLookahead = roomsCmd.Flags().String("lookahead", "+14", "End of the window as a day offset from today.")
	roomsTop = roomsCmd.Flags().Int("top", 10, "How many rooms to show, 0 shows all of them.")
	roomsChart = roomsCmd.Flags().String("chart", "", "Also write an HTML bar chart of the rooms to this file.")
	rootCmd.AddCommand(roomsCmd)
}

var roomsCmd = &cobra.Command{
	Use:   "rooms [--lookahead +14] [--top 10]",
	Short: "Ranks rooms by how often they are booked.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, scraper := mustLoad()

		window, err := scraper.Window("+0", *roomsLookahead)
		if err != nil {
			return err
		}
		reservations, err := scraper.ScrapeWindow(cmd.Context(), window)
		if err != nil {
			return err
		}
		if len(reservations) == 0 {
			fmt.Println("No reservations found for analysis.")
			return nil
		}

		usage := report.RoomUtilization(reservations)
		title := fmt.Sprintf("Room utilization %s", window.String())
		fmt.Println(title)
		report.WriteRooms(os.Stdout, usage, *roomsTop)

		if *roomsChart == "" {
			return nil
		}
		f, err := os.Create(*roomsChart)
		if err != nil {
			return err
		}
		defer f.Close()
		err = report.RenderRoomChart(f, title, usage, *roomsTop)
		if err != nil {
			return err
		}
		slog.Info("wrote room chart", "path", *roomsChart)
		return nil
	},
}
