package commands

import (
	"fmt"

	"collegenet-backend/internal/components/telemetry"
	"collegenet-backend/internal/server"
	"collegenet-backend/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var servePort *int

func init() {
	servePort = serveCmd.Flags().Int("port", 8000, "The port to listen on.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--port 8000]",
	Short: "Serves scrapes and reports as JSON over HTTP.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, scraper := mustLoad()

		srv := server.NewServer(scraper, telemetry.SlogAPI{})
		err := serviceutil.StartHttpServer(cmd.Context(), *servePort, srv.Router())
		if err != nil {
			return fmt.Errorf("listen on port %d: %w", *servePort, err)
		}
		return nil
	},
}
