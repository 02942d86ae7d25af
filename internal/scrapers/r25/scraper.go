package r25

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"collegenet-backend/internal/components/assert"
	"collegenet-backend/internal/components/chrono"
	"collegenet-backend/internal/components/telemetry"
)

const (
	report_scraper_fetch    = "scraper.fetch"
	report_scraper_page_cap = "scraper.page-cap"
	report_scraper_skipped  = "scraper.skipped"
	report_scraper_records  = "scraper.records"
	report_scraper_filtered = "scraper.filtered"
	report_scraper_batch    = "scraper.batch"
)

// Scraper fetches every page of a date window, normalizes the records and keeps
// the ones matching the category filter. Pages are fetched one at a time, in order.
type Scraper struct {
	opts       Options
	fetcher    PageFetcher
	normalizer Normalizer
	time       chrono.TimeAPI
	tel        telemetry.API
}

// NewScraper validates the options and returns a Scraper talking to the 25Live
// reservations endpoint. A nil clock uses the wall clock in opts.Location.
func NewScraper(opts Options, tel telemetry.API, clock chrono.TimeAPI) (*Scraper, error) {
	assert.NotNil(tel)

	err := opts.Validate()
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	tel = telemetry.NewScopedAPI("r25_scraper", tel)

	return newScraper(opts, newClient(opts, tel), tel, clock), nil
}

func newScraper(opts Options, fetcher PageFetcher, tel telemetry.API, clock chrono.TimeAPI) *Scraper {
	if clock == nil {
		clock = chrono.NewStandardTime(opts.Location)
	}
	return &Scraper{
		opts:       opts,
		fetcher:    fetcher,
		normalizer: NewNormalizer(opts.Location, tel),
		time:       clock,
		tel:        tel,
	}
}

// Window resolves two offsets like "+0" and "+7" against today.
func (s *Scraper) Window(lookback, lookahead string) (DateWindow, error) {
	back, err := ParseOffset(lookback)
	if err != nil {
		return DateWindow{}, err
	}
	ahead, err := ParseOffset(lookahead)
	if err != nil {
		return DateWindow{}, err
	}
	return ResolveWindow(s.time.Now().In(s.opts.Location), back, ahead)
}

// Scrape returns the filtered reservations between two day offsets, ex. ("+0", "+7").
func (s *Scraper) Scrape(ctx context.Context, lookback, lookahead string) ([]Reservation, error) {
	window, err := s.Window(lookback, lookahead)
	if err != nil {
		return nil, err
	}
	return s.ScrapeWindow(ctx, window)
}

// ScrapeWindow returns the filtered reservations of an absolute window. A failed page
// aborts the whole window with a *WindowError, partial windows are never returned.
func (s *Scraper) ScrapeWindow(ctx context.Context, window DateWindow) ([]Reservation, error) {
	raw, err := s.fetchAll(ctx, window)
	if err != nil {
		return nil, err
	}
	normalized := s.normalizeAll(raw)
	filtered := FilterByCategory(normalized, s.opts.CategoryFilter)

	s.tel.ReportCount(report_scraper_records, int64(len(normalized)))
	s.tel.ReportCount(report_scraper_filtered, int64(len(filtered)))
	return filtered, nil
}

// ScrapeAll is ScrapeWindow without the category filter.
func (s *Scraper) ScrapeAll(ctx context.Context, window DateWindow) ([]Reservation, error) {
	raw, err := s.fetchAll(ctx, window)
	if err != nil {
		return nil, err
	}
	return s.normalizeAll(raw), nil
}

func (s *Scraper) fetchAll(ctx context.Context, window DateWindow) ([]*Node, error) {
	var records []*Node
	paginateKey := ""
	lookback, lookahead := window.Offsets(s.time.Now().In(s.opts.Location))

	for index := 0; ; index++ {
		if index >= s.opts.MaxPages {
			s.tel.ReportWarning(
				report_scraper_page_cap,
				fmt.Errorf("stopped after %d pages", index),
				window.String(),
			)
			break
		}
		// checked between pages only, a page in flight is never interrupted here
		err := ctx.Err()
		if err != nil {
			return nil, &WindowError{Window: window, Page: index, Err: err}
		}

		page, err := s.fetcher.FetchPage(ctx, PageRequest{
			Window:      window,
			Lookback:    lookback,
			Lookahead:   lookahead,
			PageSize:    s.opts.PageSize,
			Index:       index,
			PaginateKey: paginateKey,
		})
		if err != nil {
			// the fetcher already reported the failure itself
			s.tel.ReportDebug(report_scraper_fetch, "window aborted", window.String(), index, err.Error())
			return nil, &WindowError{Window: window, Page: index, Err: err}
		}

		records = append(records, page.Records...)
		if page.PaginateKey != "" {
			paginateKey = page.PaginateKey
		}
		if !page.HasMore {
			break
		}
	}

	return records, nil
}

func (s *Scraper) normalizeAll(raw []*Node) []Reservation {
	out := make([]Reservation, 0, len(raw))
	var skipped int64
	for _, node := range raw {
		reservation, err := s.normalizer.Normalize(node)
		if err != nil {
			skipped++
			s.tel.ReportDebug(report_scraper_skipped, err.Error())
			continue
		}
		out = append(out, reservation)
	}
	if skipped > 0 {
		s.tel.ReportCount(report_scraper_skipped, skipped)
	}
	return out
}

// FilterByCategory keeps the reservations whose event type contains at least one of the
// substrings. Matching is case sensitive, an empty filter keeps everything.
func FilterByCategory(reservations []Reservation, filter []string) []Reservation {
	if len(filter) == 0 {
		return reservations
	}
	out := make([]Reservation, 0, len(reservations))
	for _, r := range reservations {
		for _, category := range filter {
			if category != "" && strings.Contains(r.EventType, category) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// WindowResult is the outcome of one window of a batch run.
type WindowResult struct {
	Lookback     Offset
	Lookahead    Offset
	Window       DateWindow
	Reservations []Reservation
	Err          error
}

// BatchResult holds every window of a batch run in order and their concatenated reservations.
type BatchResult struct {
	Windows      []WindowResult
	Reservations []Reservation
	Duration     time.Duration
}

// Batch splits the next `daysAhead` days into windows of `stepSize` days
// (+0..+6, +7..+13, ...) and scrapes each one in turn. A failed window does not
// stop the batch, the returned error joins the errors of every failed window.
func (s *Scraper) Batch(ctx context.Context, daysAhead, stepSize int) (BatchResult, error) {
	if stepSize <= 0 {
		return BatchResult{}, &ConfigurationError{Field: "step_size", Reason: "must be positive"}
	}
	if daysAhead < 0 {
		return BatchResult{}, &ConfigurationError{Field: "days_ahead", Reason: "must not be negative"}
	}

	started := time.Now()
	now := s.time.Now().In(s.opts.Location)

	var result BatchResult
	var errList []error
	for offset := 0; offset < daysAhead; offset += stepSize {
		lookback := OffsetOf(offset)
		lookahead := OffsetOf(offset + stepSize - 1)
		windowResult := WindowResult{Lookback: lookback, Lookahead: lookahead}

		window, err := ResolveWindow(now, lookback, lookahead)
		if err == nil {
			windowResult.Window = window
			windowResult.Reservations, err = s.ScrapeWindow(ctx, window)
		}
		if err != nil {
			windowResult.Err = err
			errList = append(errList, err)
			s.tel.ReportWarning(report_scraper_batch, fmt.Errorf("window skipped: %w", err), lookback.String(), lookahead.String())
		}

		result.Windows = append(result.Windows, windowResult)
		result.Reservations = append(result.Reservations, windowResult.Reservations...)
	}
	result.Duration = time.Since(started)

	return result, errors.Join(errList...)
}
