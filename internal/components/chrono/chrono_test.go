package chrono

import (
	"errors"
	"testing"
	"time"

	"collegenet-backend/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestStartOfDay(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		now      time.Time
		expected time.Time
	}{
		{
			now:      time.Date(2024, time.August, 26, 13, 45, 10, 99, loc),
			expected: time.Date(2024, time.August, 26, 0, 0, 0, 0, loc),
		},
		{
			now:      time.Date(2024, time.March, 10, 3, 30, 0, 0, loc),
			expected: time.Date(2024, time.March, 10, 0, 0, 0, 0, loc),
		},
		{
			now:      time.Date(2024, time.December, 31, 23, 59, 59, 0, loc),
			expected: time.Date(2024, time.December, 31, 0, 0, 0, 0, loc),
		},
	}

	for _, test := range cases {
		require.Equal(t, test.expected, StartOfDay(test.now))
	}
}

func TestStandardTimeLocation(t *testing.T) {
	require.Equal(t, time.Local, NewStandardTime(nil).Location())

	loc := time.FixedZone("test", -7*60*60)
	clock := NewStandardTime(loc)
	require.Equal(t, loc, clock.Now().Location())
}

func TestStandardCron(t *testing.T) {
	tel := &telemetry.MemoryAPI{}
	cron := NewStandardCron(tel, time.UTC)
	defer cron.Stop()

	require.Error(t, cron.Cron("every tuesday", func() {}))
	require.NoError(t, cron.Cron("0 6 * * *", func() {}))
	require.NoError(t, cron.Cron("@every 1h", func() {}))
}

func TestCronLogger(t *testing.T) {
	tel := &telemetry.MemoryAPI{}
	logger := cronLogger{tel: tel}

	logger.Info("schedule", "entry", 1, "next", "06:00")
	logger.Error(errors.New("boom"), "panic", "entry", 1)

	debug := tel.Reports("debug", "cron: schedule")
	require.Len(t, debug, 1)
	require.Equal(t, []any{"entry: 1", "next: 06:00"}, debug[0].Params)

	broken := tel.Reports("broken", report_cron)
	require.Len(t, broken, 1)
	require.ErrorContains(t, broken[0].Params[0].(error), "panic: boom")
}
