package r25

import (
	"context"
	"net/url"
	"time"

	"collegenet-backend/lib/restyutil"
)

// Reservation is one normalized reservation record. Empty strings and nil pointers mean
// the source did not carry a usable value.
type Reservation struct {
	ReservationID         string `json:"reservation_id"`
	EventID               string `json:"event_id"`
	ReservationIDFriendly string `json:"reservation_id_friendly"`
	Name                  string `json:"name"`
	EventType             string `json:"event_type"`
	ReservationState      string `json:"reservation_state"`
	Organization          string `json:"organization"`
	ExpectedAttendance    *int   `json:"expected_attendance"`
	LocationFull          string `json:"location_full"`
	LocationAbbr          string `json:"location_abbr"`

	Start             string `json:"start"`
	End               string `json:"end"`
	StartTimestamp    *int64 `json:"start_timestamp"`
	EndTimestamp      *int64 `json:"end_timestamp"`
	StartDateFriendly string `json:"start_date_friendly"`
	EndDateFriendly   string `json:"end_date_friendly"`

	LastUpdatedFriendly  string `json:"last_updated_friendly"`
	LastUpdatedTimestamp *int64 `json:"last_updated_timestamp"`
}

// Duration returns the length of the reservation, or false if either bound is unknown.
func (r Reservation) Duration() (time.Duration, bool) {
	if r.StartTimestamp == nil || r.EndTimestamp == nil {
		return 0, false
	}
	return time.Duration(*r.EndTimestamp-*r.StartTimestamp) * time.Second, true
}

// PageRequest describes a single page of a window. Lookback and Lookahead are the
// window as day offsets, which is what the endpoint is queried with so "today" is
// the instance's own. PaginateKey is the key the previous page of the same window
// reported, empty for the first page.
type PageRequest struct {
	Window      DateWindow
	Lookback    Offset
	Lookahead   Offset
	PageSize    int
	Index       int
	PaginateKey string
}

// Page is the result of one page fetch.
//
// HasMore is a heuristic: a full page means there may be more. When the total is an exact
// multiple of the page size this costs one extra request that comes back empty.
type Page struct {
	Records     []*Node
	HasMore     bool
	PaginateKey string
}

// PageFetcher fetches a single page of raw reservation records.
type PageFetcher interface {
	FetchPage(ctx context.Context, req PageRequest) (Page, error)
}

const (
	DefaultPageSize = 500
	DefaultMaxPages = 50
	DefaultTimeout  = 30 * time.Second
)

// DefaultCategoryFilter keeps event types containing "BL" or "IN".
var DefaultCategoryFilter = []string{"BL", "IN"}

// Options is the full configuration of a Scraper. It is copied on construction.
type Options struct {
	BaseUrl  string
	Username string
	Password string

	// PageSize defaults to DefaultPageSize.
	PageSize int
	// MaxPages caps the number of pages requested per window, defaults to DefaultMaxPages.
	MaxPages int
	// CategoryFilter is the set of substrings an event type must contain one of,
	// nil means DefaultCategoryFilter and an empty non-nil slice disables filtering.
	CategoryFilter []string
	// Location is used for timestamps without an offset and for "today", defaults to time.Local.
	Location *time.Location
	// Timeout of a single request, defaults to DefaultTimeout.
	Timeout time.Duration
	// RequestsPerSecond limits the request rate, 0 means unlimited.
	RequestsPerSecond float64
	// Dump receives every raw request/response pair when set.
	Dump restyutil.InstrumentOutput
}

func (o Options) withDefaults() Options {
	if o.PageSize == 0 {
		o.PageSize = DefaultPageSize
	}
	if o.MaxPages == 0 {
		o.MaxPages = DefaultMaxPages
	}
	if o.CategoryFilter == nil {
		o.CategoryFilter = DefaultCategoryFilter
	}
	o.CategoryFilter = append([]string{}, o.CategoryFilter...)
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Validate reports the first missing or invalid option as a *ConfigurationError.
func (o Options) Validate() error {
	if o.BaseUrl == "" {
		return &ConfigurationError{Field: "base_url", Reason: "required"}
	}
	parsed, err := url.Parse(o.BaseUrl)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return &ConfigurationError{Field: "base_url", Reason: "must be an absolute http(s) url"}
	}
	if o.Username == "" {
		return &ConfigurationError{Field: "username", Reason: "required"}
	}
	if o.Password == "" {
		return &ConfigurationError{Field: "password", Reason: "required"}
	}
	if o.PageSize < 0 {
		return &ConfigurationError{Field: "page_size", Reason: "must be positive"}
	}
	if o.MaxPages < 0 {
		return &ConfigurationError{Field: "max_pages", Reason: "must be positive"}
	}
	if o.RequestsPerSecond < 0 {
		return &ConfigurationError{Field: "requests_per_second", Reason: "must not be negative"}
	}
	return nil
}
