package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"collegenet-backend/internal/components/assert"
	"collegenet-backend/internal/components/telemetry"
	"collegenet-backend/internal/report"
	"collegenet-backend/internal/scrapers/r25"

	"github.com/gorilla/mux"
)

const (
	report_server_request = "server.request"
)

// Source is the part of *r25.Scraper the server needs.
type Source interface {
	Window(lookback, lookahead string) (r25.DateWindow, error)
	ScrapeWindow(ctx context.Context, window r25.DateWindow) ([]r25.Reservation, error)
	ScrapeAll(ctx context.Context, window r25.DateWindow) ([]r25.Reservation, error)
}

// Server exposes scrapes over HTTP as JSON. Every request scrapes 25Live directly,
// nothing is cached between requests.
type Server struct {
	source Source
	tel    telemetry.API
}

func NewServer(source Source, tel telemetry.API) Server {
	assert.NotNil(source)
	assert.NotNil(tel)
	return Server{source: source, tel: telemetry.NewScopedAPI("r25_server", tel)}
}

// Router registers the routes on a new router.
//
//	GET /ping
//	GET /v1/reservations?lookback=+0&lookahead=+7[&all=true]
//	GET /v1/reports/organizations?lookahead=+7
//	GET /v1/reports/rooms?lookahead=+14
func (s Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/ping", s.ping).Methods(http.MethodGet)
	router.HandleFunc("/v1/reservations", s.reservations).Methods(http.MethodGet)
	router.HandleFunc("/v1/reports/organizations", s.organizations).Methods(http.MethodGet)
	router.HandleFunc("/v1/reports/rooms", s.rooms).Methods(http.MethodGet)
	return router
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s Server) writeJson(w http.ResponseWriter, status int, value any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		s.tel.ReportBroken(report_server_request, err)
	}
}

// statusOf maps scrape errors to HTTP statuses: bad offsets are the caller's fault,
// upstream failures are a bad gateway.
func statusOf(err error) int {
	var configErr *r25.ConfigurationError
	if errors.As(err, &configErr) {
		return http.StatusBadRequest
	}
	var requestErr *r25.RequestFailedError
	var parseErr *r25.ParseFailedError
	if errors.As(err, &requestErr) || errors.As(err, &parseErr) {
		return http.StatusBadGateway
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= 500 {
		s.tel.ReportBroken(report_server_request, err, r.URL.String())
	} else {
		s.tel.ReportDebug(report_server_request, "bad request", r.URL.String(), err.Error())
	}
	s.writeJson(w, status, errorResponse{Error: err.Error()})
}

func queryOr(r *http.Request, name, fallback string) string {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback
	}
	return value
}

func (s Server) scrape(r *http.Request, lookback, lookahead string) (r25.DateWindow, []r25.Reservation, error) {
	window, err := s.source.Window(lookback, lookahead)
	if err != nil {
		return r25.DateWindow{}, nil, err
	}
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	var reservations []r25.Reservation
	if all {
		reservations, err = s.source.ScrapeAll(r.Context(), window)
	} else {
		reservations, err = s.source.ScrapeWindow(r.Context(), window)
	}
	if reservations == nil {
		reservations = []r25.Reservation{}
	}
	return window, reservations, err
}

func (s Server) ping(w http.ResponseWriter, r *http.Request) {
	s.writeJson(w, http.StatusOK, map[string]string{"status": "pong"})
}

type reservationsResponse struct {
	Start        string            `json:"start"`
	End          string            `json:"end"`
	Count        int               `json:"count"`
	Reservations []r25.Reservation `json:"reservations"`
}

func windowDates(window r25.DateWindow) (string, string) {
	return window.Start.Format("2006-01-02"), window.End.Format("2006-01-02")
}

func (s Server) reservations(w http.ResponseWriter, r *http.Request) {
	window, reservations, err := s.scrape(r, queryOr(r, "lookback", "+0"), queryOr(r, "lookahead", "+7"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	start, end := windowDates(window)
	s.writeJson(w, http.StatusOK, reservationsResponse{
		Start:        start,
		End:          end,
		Count:        len(reservations),
		Reservations: reservations,
	})
}

type organizationJson struct {
	Organization string `json:"organization"`
	Count        int    `json:"count"`
	TopLocation  string `json:"top_location"`
	TopCount     int    `json:"top_location_count"`
}

func (s Server) organizations(w http.ResponseWriter, r *http.Request) {
	_, reservations, err := s.scrape(r, "+0", queryOr(r, "lookahead", "+7"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summaries := report.ByOrganization(reservations)
	out := make([]organizationJson, len(summaries))
	for i, summary := range summaries {
		out[i] = organizationJson(summary)
	}
	s.writeJson(w, http.StatusOK, out)
}

type roomJson struct {
	Location string  `json:"location"`
	Bookings int     `json:"bookings"`
	Hours    float64 `json:"hours"`
}

func (s Server) rooms(w http.ResponseWriter, r *http.Request) {
	_, reservations, err := s.scrape(r, "+0", queryOr(r, "lookahead", "+14"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	usage := report.RoomUtilization(reservations)
	out := make([]roomJson, len(usage))
	for i, u := range usage {
		out[i] = roomJson(u)
	}
	s.writeJson(w, http.StatusOK, out)
}
