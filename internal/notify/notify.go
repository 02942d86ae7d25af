package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"collegenet-backend/internal/report"
	"collegenet-backend/internal/scrapers/r25"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("collegenet-backend/internal/notify")

type SmtpConfig struct {
	Server   string
	Port     int
	Username string
	Password string
	// From is the address the report is sent from.
	From string
	To   []string
}

// sendFunc is email.Email.Send, swapped out in tests.
type sendFunc = func(mail *email.Email, addr string, auth smtp.Auth) error

func send(mail *email.Email, addr string, auth smtp.Auth) error {
	return mail.Send(addr, auth)
}

// Mailer sends reservation reports over SMTP.
type Mailer struct {
	config SmtpConfig
	send   sendFunc
}

func NewMailer(config SmtpConfig) Mailer {
	return Mailer{config: config, send: send}
}

// Report is the content of one report email.
type Report struct {
	Window       r25.DateWindow
	Reservations []r25.Reservation
}

func (r Report) subject() string {
	return fmt.Sprintf(
		"Reservations %s to %s",
		r.Window.Start.Format("01/02/2006"),
		r.Window.End.Format("01/02/2006"),
	)
}

func (r Report) body() []byte {
	out := &bytes.Buffer{}
	fmt.Fprintf(out, "%s\n\n", r.subject())
	report.WriteOrganizations(out, report.ByOrganization(r.Reservations))
	fmt.Fprintf(out, "\nThe full list of %d reservations is attached.\n", len(r.Reservations))
	return out.Bytes()
}

func (r Report) attachmentName() string {
	return fmt.Sprintf("reservations_%s.csv", r.Window.Start.Format("20060102"))
}

// Build creates the email for a report: a per-organization summary in the body and
// every reservation as a CSV attachment. `to` overrides the configured recipients.
func (m Mailer) Build(r Report, to ...string) (*email.Email, error) {
	if len(to) == 0 {
		to = m.config.To
	}
	if len(to) == 0 {
		return nil, fmt.Errorf("no recipients")
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("25Live Reports <%s>", m.config.From)
	mail.To = to
	mail.Subject = r.subject()
	mail.Text = r.body()

	csv := &bytes.Buffer{}
	err := report.WriteCSV(csv, r.Reservations)
	if err != nil {
		return nil, err
	}
	_, err = mail.Attach(csv, r.attachmentName(), "text/csv")
	if err != nil {
		return nil, err
	}
	return mail, nil
}

// Send builds and sends a report. When the server does not support AUTH the report is
// sent again without credentials.
func (m Mailer) Send(ctx context.Context, r Report, to ...string) error {
	ctx, span := tracer.Start(ctx, "Send")
	defer span.End()

	mail, err := m.Build(r, to...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build email")
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.config.Server, m.config.Port)
	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Server)
	}

	err = m.send(mail, addr, auth)
	if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = m.send(mail, addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}
