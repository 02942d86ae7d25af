package r25

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"collegenet-backend/internal/components/chrono"
)

// Offset is a signed number of days relative to today, written as "+7", "-3" or "0".
type Offset struct {
	Negative bool
	Days     int
}

// ParseOffset validates a day offset once, at the boundary.
func ParseOffset(text string) (Offset, error) {
	invalid := func(reason string) error {
		return &ConfigurationError{
			Field:  "offset",
			Reason: fmt.Sprintf("%q: %s", text, reason),
		}
	}

	s := strings.TrimSpace(text)
	if s == "" {
		return Offset{}, invalid("empty")
	}

	var out Offset
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		out.Negative = true
		s = s[1:]
	}
	if s == "" {
		return Offset{}, invalid("missing day count")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return Offset{}, invalid("expected a sign followed by digits")
		}
	}
	days, err := strconv.Atoi(s)
	if err != nil {
		return Offset{}, invalid(err.Error())
	}
	out.Days = days
	if days == 0 {
		out.Negative = false
	}
	return out, nil
}

// Int returns the offset as a signed day count.
func (o Offset) Int() int {
	if o.Negative {
		return -o.Days
	}
	return o.Days
}

func (o Offset) String() string {
	if o.Negative {
		return fmt.Sprintf("-%d", o.Days)
	}
	return fmt.Sprintf("+%d", o.Days)
}

// OffsetOf builds an Offset from a signed day count.
func OffsetOf(days int) Offset {
	if days < 0 {
		return Offset{Negative: true, Days: -days}
	}
	return Offset{Days: days}
}

// DateWindow is an inclusive range of calendar days, both bounds are midnight.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// ResolveWindow anchors two offsets on the calendar day of `now`.
func ResolveWindow(now time.Time, lookback, lookahead Offset) (DateWindow, error) {
	today := chrono.StartOfDay(now)
	window := DateWindow{
		Start: today.AddDate(0, 0, lookback.Int()),
		End:   today.AddDate(0, 0, lookahead.Int()),
	}
	if window.Start.After(window.End) {
		return DateWindow{}, &ConfigurationError{
			Field:  "window",
			Reason: fmt.Sprintf("lookback %s is after lookahead %s", lookback, lookahead),
		}
	}
	return window, nil
}

func (w DateWindow) String() string {
	return fmt.Sprintf("%s..%s", w.Start.Format(time.DateOnly), w.End.Format(time.DateOnly))
}

// daysBetween counts calendar days from one date to another, ignoring the clock.
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}

// Offsets expresses the window relative to the calendar day of `now`.
func (w DateWindow) Offsets(now time.Time) (Offset, Offset) {
	return OffsetOf(daysBetween(now, w.Start)), OffsetOf(daysBetween(now, w.End))
}

// Days returns the number of calendar days covered by the window.
func (w DateWindow) Days() int {
	days := 1
	for d := w.Start; d.Before(w.End); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days
}
