package commands

import (
	"fmt"
	"log/slog"
	"os"

	"collegenet-backend/internal/notify"
	"collegenet-backend/internal/report"

	"github.com/spf13/cobra"
)

var (
	reportLookahead *string
	reportMailTo    *[]string
)

func init() {
	reportLookahead = reportCmd.Flags().String("lookahead", "+7", "End of the report as a day offset from today.")
	reportMailTo = reportCmd.Flags().StringSlice("mail-to", nil, "Also email the report with a CSV attachment to these addresses.")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report [--lookahead +7] [--mail-to <address>]",
	Short: "Prints a per-organization summary of upcoming reservations.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, scraper := mustLoad()
		if len(*reportMailTo) > 0 && !cfg.MailEnabled() {
			return fmt.Errorf("--mail-to needs mail.host and mail.from in the config")
		}

		window, err := scraper.Window("+0", *reportLookahead)
		if err != nil {
			return err
		}
		reservations, err := scraper.ScrapeWindow(cmd.Context(), window)
		if err != nil {
			return err
		}

		fmt.Printf("Reservations %s\n", window.String())
		report.WriteOrganizations(os.Stdout, report.ByOrganization(reservations))

		if len(*reportMailTo) == 0 {
			return nil
		}
		mailer := notify.NewMailer(notify.SmtpConfig{
			Server:   cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			To:       cfg.Mail.To,
		})
		err = mailer.Send(cmd.Context(), notify.Report{
			Window:       window,
			Reservations: reservations,
		}, *reportMailTo...)
		if err != nil {
			return err
		}
		slog.Info("report sent", "to", *reportMailTo)
		return nil
	},
}
