package r25

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseOffset(t *testing.T) {
	table := []struct {
		input    string
		expected Offset
		days     int
	}{
		{input: "+7", expected: Offset{Days: 7}, days: 7},
		{input: "-3", expected: Offset{Negative: true, Days: 3}, days: -3},
		{input: "0", expected: Offset{}, days: 0},
		{input: "-0", expected: Offset{}, days: 0},
		{input: " +14 ", expected: Offset{Days: 14}, days: 14},
		{input: "30", expected: Offset{Days: 30}, days: 30},
	}

	for _, row := range table {
		offset, err := ParseOffset(row.input)
		require.NoError(t, err, row.input)
		require.Equal(t, row.expected, offset, row.input)
		require.Equal(t, row.days, offset.Int(), row.input)
	}
}

func TestParseOffsetInvalid(t *testing.T) {
	for _, input := range []string{"", "+", "-", "seven", "+7d", "++1", "1.5", "+ 3"} {
		_, err := ParseOffset(input)
		require.Error(t, err, input)

		var configErr *ConfigurationError
		require.True(t, errors.As(err, &configErr), input)
	}
}

func TestOffsetString(t *testing.T) {
	require.Equal(t, "+0", OffsetOf(0).String())
	require.Equal(t, "+6", OffsetOf(6).String())
	require.Equal(t, "-2", OffsetOf(-2).String())
}

func TestResolveWindow(t *testing.T) {
	now := time.Date(2024, time.March, 5, 23, 59, 0, 0, testLocation)

	window, err := ResolveWindow(now, OffsetOf(-3), OffsetOf(7))
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, time.March, 2, 0, 0, 0, 0, testLocation), window.Start)
	require.Equal(t, time.Date(2024, time.March, 12, 0, 0, 0, 0, testLocation), window.End)
	require.Equal(t, "2024-03-02..2024-03-12", window.String())
	require.Equal(t, 11, window.Days())

	window, err = ResolveWindow(now, OffsetOf(0), OffsetOf(0))
	require.NoError(t, err)
	require.Equal(t, window.Start, window.End)
	require.Equal(t, 1, window.Days())
}

func TestResolveWindowOrdering(t *testing.T) {
	for back := -10; back <= 10; back++ {
		for ahead := back; ahead <= 10; ahead++ {
			window, err := ResolveWindow(testNow, OffsetOf(back), OffsetOf(ahead))
			require.NoError(t, err)
			require.False(t, window.Start.After(window.End), "%d..%d", back, ahead)
		}
	}

	_, err := ResolveWindow(testNow, OffsetOf(2), OffsetOf(1))
	var configErr *ConfigurationError
	require.True(t, errors.As(err, &configErr))
}

func TestWindowOffsets(t *testing.T) {
	for back := -10; back <= 10; back++ {
		for ahead := back; ahead <= 10; ahead++ {
			window, err := ResolveWindow(testNow, OffsetOf(back), OffsetOf(ahead))
			require.NoError(t, err)
			lookback, lookahead := window.Offsets(testNow)
			require.Equal(t, back, lookback.Int())
			require.Equal(t, ahead, lookahead.Int())
		}
	}

	// across the spring daylight saving change
	pacific, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	now := time.Date(2024, time.March, 9, 23, 30, 0, 0, pacific)
	window, err := ResolveWindow(now, OffsetOf(0), OffsetOf(7))
	require.NoError(t, err)
	lookback, lookahead := window.Offsets(now)
	require.Equal(t, "+0", lookback.String())
	require.Equal(t, "+7", lookahead.String())
}
