package r25

import (
	"errors"
	"strings"
	"testing"
	"time"

	"collegenet-backend/internal/components/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func parseRecord(t testing.TB, record fakeRecord) *Node {
	root, err := ParseXML(strings.NewReader(reservationsXml("", []fakeRecord{record})))
	if err != nil {
		t.Fatal(err)
	}
	return root.Child("r25:reservation")
}

func intPtr(n int) *int {
	return &n
}

func int64Ptr(n int64) *int64 {
	return &n
}

func TestNormalizeFullRecord(t *testing.T) {
	tel := &telemetry.MemoryAPI{}
	normalizer := NewNormalizer(testLocation, tel)

	raw := parseRecord(t, fakeRecord{
		ID:        "1001",
		EventID:   "5001",
		Locator:   "2024-ABCDEF",
		Name:      "Intro to Biology",
		Title:     "Lecture",
		EventType: "BL Lecture",
		State:     "Standard",
		Org:       "Biology",
		Count:     "120",
		Start:     "2024-03-05T09:00:00-08:00",
		End:       "2024-03-05T10:15:00-08:00",
		LastMod:   "2024-02-01T13:05:00-08:00",
		Spaces: [][2]string{
			{"SH 101", "Smith Hall, Room 101"},
			{"SH 102", "Smith Hall, Room 102"},
		},
	})

	reservation, err := normalizer.Normalize(raw)
	require.NoError(t, err)

	expected := Reservation{
		ReservationID:         "1001",
		EventID:               "5001",
		ReservationIDFriendly: "2024-ABCDEF",
		Name:                  "Intro to Biology - Lecture",
		EventType:             "BL Lecture",
		ReservationState:      "Standard",
		Organization:          "Biology",
		ExpectedAttendance:    intPtr(120),
		LocationFull:          "Smith Hall Room 101, Smith Hall Room 102",
		LocationAbbr:          "SH 101, SH 102",
		Start:                 "2024-03-05T09:00:00",
		End:                   "2024-03-05T10:15:00",
		StartTimestamp:        int64Ptr(time.Date(2024, 3, 5, 17, 0, 0, 0, time.UTC).Unix()),
		EndTimestamp:          int64Ptr(time.Date(2024, 3, 5, 18, 15, 0, 0, time.UTC).Unix()),
		StartDateFriendly:     "03/05/2024 09:00 AM",
		EndDateFriendly:       "03/05/2024 10:15 AM",
		LastUpdatedFriendly:   "02/01/2024 01:05 PM",
		LastUpdatedTimestamp:  int64Ptr(time.Date(2024, 2, 1, 21, 5, 0, 0, time.UTC).Unix()),
	}
	if diff := cmp.Diff(expected, reservation); diff != "" {
		t.Fatalf("unexpected reservation (-want +got):\n%s", diff)
	}
	require.Empty(t, tel.Reports("warning", ""))

	duration, ok := reservation.Duration()
	require.True(t, ok)
	require.Equal(t, 75*time.Minute, duration)
}

func TestNormalizeNaiveTimestamps(t *testing.T) {
	normalizer := NewNormalizer(testLocation, &telemetry.MemoryAPI{})

	reservation, err := normalizer.Normalize(parseRecord(t, fakeRecord{
		ID:    "1",
		Start: "2024-03-05T18:30:00",
		End:   "2024-03-05T20:00",
	}))
	require.NoError(t, err)
	require.Equal(t, "2024-03-05T18:30:00", reservation.Start)
	require.Equal(t, "2024-03-05T20:00:00", reservation.End)
	require.Equal(t, time.Date(2024, 3, 6, 2, 30, 0, 0, time.UTC).Unix(), *reservation.StartTimestamp)
	require.Equal(t, "03/05/2024 06:30 PM", reservation.StartDateFriendly)
	require.Equal(t, "03/05/2024 08:00 PM", reservation.EndDateFriendly)
}

func TestNormalizeUnparseableStart(t *testing.T) {
	tel := &telemetry.MemoryAPI{}
	normalizer := NewNormalizer(testLocation, tel)

	reservation, err := normalizer.Normalize(parseRecord(t, fakeRecord{
		ID:        "77",
		Name:      "Board Meeting",
		EventType: "IN Meeting",
		Org:       "Trustees",
		Count:     "12",
		Start:     "next tuesday",
		End:       "2024-03-05T10:00:00-08:00",
		Spaces:    [][2]string{{"AH 1", "Admin Hall 1"}},
	}))
	require.NoError(t, err)

	require.Equal(t, "", reservation.Start)
	require.Nil(t, reservation.StartTimestamp)
	require.Equal(t, "", reservation.StartDateFriendly)

	require.Equal(t, "77", reservation.ReservationID)
	require.Equal(t, "Board Meeting", reservation.Name)
	require.Equal(t, "IN Meeting", reservation.EventType)
	require.Equal(t, "Trustees", reservation.Organization)
	require.Equal(t, intPtr(12), reservation.ExpectedAttendance)
	require.Equal(t, "Admin Hall 1", reservation.LocationFull)
	require.Equal(t, "2024-03-05T10:00:00", reservation.End)
	require.NotNil(t, reservation.EndTimestamp)

	_, ok := reservation.Duration()
	require.False(t, ok)
	require.Len(t, tel.Reports("warning", report_normalizer_date), 1)
}

func TestNormalizeMissingReservationID(t *testing.T) {
	normalizer := NewNormalizer(testLocation, &telemetry.MemoryAPI{})

	for _, record := range []fakeRecord{
		{Name: "No id", EventType: "BL Lecture"},
		{ID: "   ", Name: "Blank id", EventType: "BL Lecture"},
	} {
		_, err := normalizer.Normalize(parseRecord(t, record))
		var skip *SkipError
		require.True(t, errors.As(err, &skip))
	}

	_, err := normalizer.Normalize(nil)
	var skip *SkipError
	require.True(t, errors.As(err, &skip))
}

func TestNormalizeAttendance(t *testing.T) {
	table := []struct {
		count    string
		expected *int
		warnings int
	}{
		{count: "", expected: nil},
		{count: "0", expected: intPtr(0)},
		{count: " 35 ", expected: intPtr(35)},
		{count: "about fifty", expected: nil, warnings: 1},
		{count: "-4", expected: nil, warnings: 1},
		{count: "12.5", expected: nil, warnings: 1},
	}

	for _, row := range table {
		tel := &telemetry.MemoryAPI{}
		normalizer := NewNormalizer(testLocation, tel)
		reservation, err := normalizer.Normalize(parseRecord(t, fakeRecord{ID: "1", Count: row.count}))
		require.NoError(t, err)
		require.Equal(t, row.expected, reservation.ExpectedAttendance, row.count)
		require.Len(t, tel.Reports("warning", report_normalizer_attendance), row.warnings, row.count)
	}
}

func TestNormalizeNameAndLocationDefaults(t *testing.T) {
	normalizer := NewNormalizer(testLocation, &telemetry.MemoryAPI{})

	table := []struct {
		record       fakeRecord
		name         string
		locationFull string
		locationAbbr string
	}{
		{
			record:       fakeRecord{ID: "1", Name: "Only name"},
			name:         "Only name",
			locationFull: LocationNotSpecified,
			locationAbbr: LocationNotSpecified,
		},
		{
			record:       fakeRecord{ID: "2", Title: "Only title", Spaces: [][2]string{{"GYM", ""}}},
			name:         "Only title",
			locationFull: LocationNotSpecified,
			locationAbbr: "GYM",
		},
		{
			record:       fakeRecord{ID: "3", Spaces: [][2]string{{"", "Main Gym"}, {"FLD", "Field, North"}}},
			name:         "",
			locationFull: "Main Gym, Field North",
			locationAbbr: "FLD",
		},
	}

	for _, row := range table {
		reservation, err := normalizer.Normalize(parseRecord(t, row.record))
		require.NoError(t, err)
		require.Equal(t, row.name, reservation.Name)
		require.Equal(t, row.locationFull, reservation.LocationFull)
		require.Equal(t, row.locationAbbr, reservation.LocationAbbr)
	}
}

func TestNormalizeFlatSpaceReservation(t *testing.T) {
	raw, err := ParseXML(strings.NewReader(`<r25:reservations xmlns:r25="http://www.collegenet.com/r25">
<r25:reservation>
  <r25:reservation_id>9</r25:reservation_id>
  <r25:space_reservation>
    <r25:space_name>LIB 2</r25:space_name>
    <r25:formal_name>Library Room 2</r25:formal_name>
  </r25:space_reservation>
</r25:reservation>
</r25:reservations>`))
	require.NoError(t, err)

	reservation, err := NewNormalizer(testLocation, &telemetry.MemoryAPI{}).Normalize(raw.Child("reservation"))
	require.NoError(t, err)
	require.Equal(t, "Library Room 2", reservation.LocationFull)
	require.Equal(t, "LIB 2", reservation.LocationAbbr)
}

func TestNormalizeEndBeforeStart(t *testing.T) {
	tel := &telemetry.MemoryAPI{}
	normalizer := NewNormalizer(testLocation, tel)

	reservation, err := normalizer.Normalize(parseRecord(t, fakeRecord{
		ID:    "5",
		Start: "2024-03-05T11:00:00-08:00",
		End:   "2024-03-05T10:00:00-08:00",
	}))
	require.NoError(t, err)
	require.NotNil(t, reservation.StartTimestamp)
	require.Nil(t, reservation.EndTimestamp)
	require.Equal(t, "", reservation.End)
	require.Equal(t, "", reservation.EndDateFriendly)
	require.Len(t, tel.Reports("warning", report_normalizer_range), 1)
}

func TestParseTimestamp(t *testing.T) {
	table := []struct {
		input    string
		expected time.Time
	}{
		{input: "2024-03-05T09:00:00-08:00", expected: time.Date(2024, 3, 5, 9, 0, 0, 0, testLocation)},
		{input: "2024-03-05T09:00:00Z", expected: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)},
		{input: "2024-03-05T09:00:00", expected: time.Date(2024, 3, 5, 9, 0, 0, 0, testLocation)},
		{input: "2024-03-05 09:00:00", expected: time.Date(2024, 3, 5, 9, 0, 0, 0, testLocation)},
		{input: "2024-03-05", expected: time.Date(2024, 3, 5, 0, 0, 0, 0, testLocation)},
	}

	for _, row := range table {
		parsed, err := ParseTimestamp(row.input, testLocation)
		require.NoError(t, err, row.input)
		require.True(t, row.expected.Equal(parsed), row.input)
	}

	_, err := ParseTimestamp("03/05/2024", testLocation)
	require.Error(t, err)
}
