package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"collegenet-backend/internal/scrapers/r25"
	"collegenet-backend/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
)

// CsvColumns are the columns of a reservation export, in order.
var CsvColumns = []string{
	"name",
	"organization",
	"location_full",
	"location_abbr",
	"start_date_friendly",
	"end_date_friendly",
	"expected_attendance",
	"event_type",
	"reservation_state",
}

func attendance(r r25.Reservation) string {
	if r.ExpectedAttendance == nil {
		return ""
	}
	return strconv.Itoa(*r.ExpectedAttendance)
}

func csvRow(r r25.Reservation) []string {
	return []string{
		r.Name,
		r.Organization,
		r.LocationFull,
		r.LocationAbbr,
		r.StartDateFriendly,
		r.EndDateFriendly,
		attendance(r),
		r.EventType,
		r.ReservationState,
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// WriteTable renders reservations as a human readable table.
func WriteTable(w io.Writer, reservations []r25.Reservation) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Name", "Organization", "Location", "Start", "End", "Attendance", "Type"})
	for _, r := range reservations {
		t.AppendRow(table.Row{
			r.Name,
			r.Organization,
			r.LocationAbbr,
			r.StartDateFriendly,
			r.EndDateFriendly,
			attendance(r),
			r.EventType,
		})
	}
	t.AppendFooter(table.Row{"Total", len(reservations)})
	t.Render()
}

// WriteCSV writes a header row of CsvColumns followed by one row per reservation.
func WriteCSV(w io.Writer, reservations []r25.Reservation) error {
	writer := csv.NewWriter(w)
	err := writer.Write(CsvColumns)
	if err != nil {
		return err
	}
	for _, r := range reservations {
		err = writer.Write(csvRow(r))
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteJSON writes reservations as an indented JSON array, never null.
func WriteJSON(w io.Writer, reservations []r25.Reservation) error {
	if reservations == nil {
		reservations = []r25.Reservation{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(reservations)
}

// Write dispatches on format, one of "table", "csv" or "json".
func Write(w io.Writer, format string, reservations []r25.Reservation) error {
	switch format {
	case "", "table":
		WriteTable(w, reservations)
		return nil
	case "csv":
		return WriteCSV(w, reservations)
	case "json":
		return WriteJSON(w, reservations)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func WriteOrganizations(w io.Writer, summaries []OrganizationSummary) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Organization", "Reservations", "Most used location"})
	total := 0
	for _, s := range summaries {
		t.AppendRow(table.Row{
			s.Organization,
			s.Count,
			fmt.Sprintf("%s (%d times)", s.TopLocation, s.TopCount),
		})
		total += s.Count
	}
	t.AppendFooter(table.Row{"Total", total})
	t.Render()
}

// WriteRooms renders the `top` busiest rooms, 0 renders all of them.
func WriteRooms(w io.Writer, usage []RoomUsage, top int) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Location", "Bookings", "Hours"})
	shown := usage
	if top > 0 && len(shown) > top {
		shown = shown[:top]
	}
	for i, u := range shown {
		t.AppendRow(table.Row{i + 1, u.Location, u.Bookings, fmt.Sprintf("%.1f", u.Hours)})
	}
	if len(usage) > len(shown) {
		t.AppendFooter(table.Row{"", fmt.Sprintf("... and %d more rooms", len(usage)-len(shown))})
	}
	t.Render()
}

func WriteMatches(w io.Writer, matches []Match) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Score", "Name", "Location", "Start", "Attendance"})
	for _, m := range matches {
		t.AppendRow(table.Row{
			fmt.Sprintf("%.2f", m.Score),
			m.Reservation.Name,
			m.Reservation.LocationAbbr,
			m.Reservation.StartDateFriendly,
			attendance(m.Reservation),
		})
	}
	t.Render()
}

// WriteWindows renders a batch run, one row per window.
func WriteWindows(w io.Writer, result r25.BatchResult) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Window", "Dates", "Reservations", "Status"})
	for _, window := range result.Windows {
		status := "ok"
		if window.Err != nil {
			status = window.Err.Error()
		}
		dates := ""
		if !window.Window.Start.IsZero() {
			dates = window.Window.String()
		}
		t.AppendRow(table.Row{
			fmt.Sprintf("%s..%s", window.Lookback, window.Lookahead),
			dates,
			len(window.Reservations),
			status,
		})
	}
	t.AppendFooter(table.Row{"Total", result.Duration.Round(time.Millisecond).String(), len(result.Reservations)})
	t.Render()
}

func WriteRuns(w io.Writer, runs []store.Run) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Run", "From", "To", "Created", "Reservations"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID,
			run.WindowStart,
			run.WindowEnd,
			run.CreatedAt.Format("2006-01-02 15:04"),
			run.ReservationCount,
		})
	}
	t.Render()
}
