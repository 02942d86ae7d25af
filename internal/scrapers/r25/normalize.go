package r25

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"collegenet-backend/internal/components/telemetry"
)

const (
	report_normalizer_attendance = "normalizer.attendance"
	report_normalizer_date       = "normalizer.date"
	report_normalizer_range      = "normalizer.range"
)

const (
	// FriendlyLayout is the display format of the *_friendly fields.
	FriendlyLayout = "01/02/2006 03:04 PM"
	// LocalLayout is the timezone-less ISO-8601 format of Start and End.
	LocalLayout = "2006-01-02T15:04:05"

	LocationNotSpecified = "Not Specified"
)

// the reservations endpoint emits RFC3339, the rest are accepted for hand-edited feeds
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalizer turns raw reservation nodes into Reservations.
type Normalizer struct {
	location *time.Location
	tel      telemetry.API
}

func NewNormalizer(location *time.Location, tel telemetry.API) Normalizer {
	if location == nil {
		location = time.Local
	}
	return Normalizer{location: location, tel: tel}
}

// Normalize extracts a Reservation from a raw node. The only error it returns is
// a *SkipError, for records without a reservation id; every other missing or
// malformed field is left empty.
func (n Normalizer) Normalize(raw *Node) (Reservation, error) {
	id, ok := raw.Lookup("r25:reservation_id")
	if !ok {
		return Reservation{}, &SkipError{Reason: "missing reservation_id"}
	}

	out := Reservation{
		ReservationID:         id,
		EventID:               raw.String("r25:event_id"),
		ReservationIDFriendly: raw.String("r25:event_locator"),
		Name:                  eventName(raw),
		EventType:             raw.String("r25:event_type_name"),
		ReservationState:      raw.String("r25:reservation_state_name"),
		Organization:          raw.String("r25:organization_name"),
		ExpectedAttendance:    n.attendance(id, raw),
	}
	out.LocationFull, out.LocationAbbr = locations(raw)

	start, hasStart := n.timestamp(id, "reservation_start_dt", raw)
	if hasStart {
		out.Start = start.Format(LocalLayout)
		out.StartTimestamp = unix(start)
		out.StartDateFriendly = start.Format(FriendlyLayout)
	}

	end, hasEnd := n.timestamp(id, "reservation_end_dt", raw)
	if hasEnd && hasStart && end.Before(start) {
		n.tel.ReportWarning(
			report_normalizer_range,
			fmt.Errorf("end %s is before start %s", end, start),
			id,
		)
		hasEnd = false
	}
	if hasEnd {
		out.End = end.Format(LocalLayout)
		out.EndTimestamp = unix(end)
		out.EndDateFriendly = end.Format(FriendlyLayout)
	}

	lastMod, ok := n.timestamp(id, "last_mod_dt", raw)
	if ok {
		out.LastUpdatedFriendly = lastMod.Format(FriendlyLayout)
		out.LastUpdatedTimestamp = unix(lastMod)
	}

	return out, nil
}

func unix(t time.Time) *int64 {
	seconds := t.Unix()
	return &seconds
}

// eventName joins the event name and title as "name - title" when both exist.
func eventName(raw *Node) string {
	name := raw.String("r25:event_name")
	title := raw.String("r25:event_title")
	if name != "" && title != "" {
		return fmt.Sprintf("%s - %s", name, title)
	}
	if name != "" {
		return name
	}
	return title
}

func (n Normalizer) attendance(id string, raw *Node) *int {
	text, ok := raw.Lookup("r25:expected_count")
	if !ok {
		return nil
	}
	count, err := strconv.Atoi(text)
	if err != nil {
		n.tel.ReportWarning(report_normalizer_attendance, err, id)
		return nil
	}
	if count < 0 {
		n.tel.ReportWarning(
			report_normalizer_attendance,
			fmt.Errorf("negative expected count %d", count),
			id,
		)
		return nil
	}
	return &count
}

// timestamp parses a date field, the wall clock is kept as written and values
// without an offset are placed in the normalizer's location.
func (n Normalizer) timestamp(id, field string, raw *Node) (time.Time, bool) {
	text, ok := raw.Lookup(field)
	if !ok {
		return time.Time{}, false
	}
	t, err := ParseTimestamp(text, n.location)
	if err != nil {
		n.tel.ReportWarning(report_normalizer_date, err, id, field)
		return time.Time{}, false
	}
	return t, true
}

// ParseTimestamp parses the date formats a reservation feed may contain.
func ParseTimestamp(text string, location *time.Location) (time.Time, error) {
	text = strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, text, location)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", text)
}

// spaceNames returns the formal and short name of one space reservation. The
// names are either on the space reservation itself or on its nested space.
func spaceNames(spaceReservation *Node) (string, string) {
	formal := spaceReservation.String("r25:formal_name")
	if formal == "" {
		formal = spaceReservation.String("r25:space", "r25:formal_name")
	}
	abbr := spaceReservation.String("r25:space_name")
	if abbr == "" {
		abbr = spaceReservation.String("r25:space", "r25:space_name")
	}
	return formal, abbr
}

// locations joins the names of every reserved space. Commas are stripped from the
// individual names so the joined value can be split again.
func locations(raw *Node) (string, string) {
	var fullNames []string
	var abbrNames []string
	for _, space := range raw.All("r25:space_reservation") {
		formal, abbr := spaceNames(space)
		formal = strings.TrimSpace(strings.ReplaceAll(formal, ",", ""))
		abbr = strings.TrimSpace(strings.ReplaceAll(abbr, ",", ""))
		if formal != "" {
			fullNames = append(fullNames, formal)
		}
		if abbr != "" {
			abbrNames = append(abbrNames, abbr)
		}
	}

	full := strings.Join(fullNames, ", ")
	if full == "" {
		full = LocationNotSpecified
	}
	abbr := strings.Join(abbrNames, ", ")
	if abbr == "" {
		abbr = LocationNotSpecified
	}
	return full, abbr
}
