package report

import (
	"cmp"
	"slices"
	"strings"

	"collegenet-backend/internal/scrapers/r25"
	"collegenet-backend/lib/textutil"

	"github.com/antzucaro/matchr"
)

const UnknownOrganization = "Unknown Organization"

// OrganizationSummary is the number of reservations an organization holds and the
// location it books the most.
type OrganizationSummary struct {
	Organization string
	Count        int
	TopLocation  string
	TopCount     int
}

// ByOrganization groups reservations by organization, sorted by organization name.
// Reservations without an organization are grouped under UnknownOrganization.
func ByOrganization(reservations []r25.Reservation) []OrganizationSummary {
	type group struct {
		count     int
		locations map[string]int
	}
	groups := map[string]*group{}
	for _, r := range reservations {
		org := r.Organization
		if org == "" {
			org = UnknownOrganization
		}
		g, ok := groups[org]
		if !ok {
			g = &group{locations: map[string]int{}}
			groups[org] = g
		}
		g.count++
		g.locations[r.LocationAbbr]++
	}

	out := make([]OrganizationSummary, 0, len(groups))
	for org, g := range groups {
		summary := OrganizationSummary{Organization: org, Count: g.count}
		for location, count := range g.locations {
			// ties go to the alphabetically first location so the output is stable
			if count > summary.TopCount || (count == summary.TopCount && location < summary.TopLocation) {
				summary.TopLocation = location
				summary.TopCount = count
			}
		}
		out = append(out, summary)
	}
	slices.SortFunc(out, func(a, b OrganizationSummary) int {
		return cmp.Compare(a.Organization, b.Organization)
	})
	return out
}

// RoomUsage is how often a location is booked and for how many hours in total.
// Reservations with an unknown start or end count as bookings but add no hours.
type RoomUsage struct {
	Location string
	Bookings int
	Hours    float64
}

// RoomUtilization groups reservations by location abbreviation, busiest first.
func RoomUtilization(reservations []r25.Reservation) []RoomUsage {
	index := map[string]int{}
	var out []RoomUsage
	for _, r := range reservations {
		i, ok := index[r.LocationAbbr]
		if !ok {
			i = len(out)
			index[r.LocationAbbr] = i
			out = append(out, RoomUsage{Location: r.LocationAbbr})
		}
		out[i].Bookings++
		if duration, ok := r.Duration(); ok {
			out[i].Hours += duration.Hours()
		}
	}
	slices.SortStableFunc(out, func(a, b RoomUsage) int {
		if a.Bookings != b.Bookings {
			return cmp.Compare(b.Bookings, a.Bookings)
		}
		if a.Hours != b.Hours {
			return cmp.Compare(b.Hours, a.Hours)
		}
		return cmp.Compare(a.Location, b.Location)
	})
	return out
}

// DefaultSearchThreshold is the minimum Jaro-Winkler similarity between the query and
// a word of the reservation name for a fuzzy match.
const DefaultSearchThreshold = 0.88

type Query struct {
	// Text is matched against the reservation name, empty matches everything.
	Text string
	// MinAttendance drops reservations expecting fewer people, or with no estimate at all.
	MinAttendance int
	// Building must be contained in the location abbreviation, ex. "SH" for Smith Hall.
	Building  string
	Threshold float64
}

type Match struct {
	Reservation r25.Reservation
	// Score is 1 for a substring match and the best word similarity otherwise.
	Score float64
}

func nameScore(name, text string, threshold float64) float64 {
	if strings.TrimSpace(text) == "" || textutil.MatchName(name, text) {
		return 1
	}
	text = strings.ToLower(strings.TrimSpace(text))
	var best float64
	for _, word := range textutil.Words(name) {
		similarity := matchr.JaroWinkler(word, text, false)
		if similarity > best {
			best = similarity
		}
	}
	if best < threshold {
		return 0
	}
	return best
}

// Search returns the reservations matching every part of the query, best matches first.
func Search(reservations []r25.Reservation, query Query) []Match {
	threshold := query.Threshold
	if threshold == 0 {
		threshold = DefaultSearchThreshold
	}

	var out []Match
	for _, r := range reservations {
		if query.MinAttendance > 0 &&
			(r.ExpectedAttendance == nil || *r.ExpectedAttendance < query.MinAttendance) {
			continue
		}
		if query.Building != "" && !strings.Contains(r.LocationAbbr, query.Building) {
			continue
		}
		score := nameScore(r.Name, query.Text, threshold)
		if score == 0 {
			continue
		}
		out = append(out, Match{Reservation: r, Score: score})
	}
	slices.SortStableFunc(out, func(a, b Match) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}
