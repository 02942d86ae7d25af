package r25

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"collegenet-backend/internal/components/chrono"
	"collegenet-backend/internal/components/telemetry"
)

const (
	testUsername = "scraper"
	testPassword = "hunter2"
)

// fakeRecord is the source of one <r25:reservation> element, empty fields are left out.
type fakeRecord struct {
	ID        string
	EventID   string
	Locator   string
	Name      string
	Title     string
	EventType string
	State     string
	Org       string
	Count     string
	Start     string
	End       string
	LastMod   string
	Spaces    [][2]string
}

func element(out *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(out, "<r25:%s>%s</r25:%s>\n", name, value, name)
}

func (r fakeRecord) xml() string {
	out := &strings.Builder{}
	out.WriteString("<r25:reservation>\n")
	element(out, "reservation_id", r.ID)
	element(out, "reservation_state_name", r.State)
	element(out, "reservation_start_dt", r.Start)
	element(out, "reservation_end_dt", r.End)
	if r.EventID != "" {
		fmt.Fprintf(out, "<r25:event_id crc=\"00000022\" status=\"est\">%s</r25:event_id>\n", r.EventID)
	}
	element(out, "event_locator", r.Locator)
	element(out, "event_name", r.Name)
	element(out, "event_title", r.Title)
	element(out, "event_type_name", r.EventType)
	element(out, "organization_name", r.Org)
	element(out, "expected_count", r.Count)
	element(out, "last_mod_dt", r.LastMod)
	for _, space := range r.Spaces {
		out.WriteString("<r25:space_reservation>\n<r25:space>\n")
		element(out, "space_name", space[0])
		element(out, "formal_name", space[1])
		out.WriteString("</r25:space>\n</r25:space_reservation>\n")
	}
	out.WriteString("</r25:reservation>\n")
	return out.String()
}

func reservationsXml(paginateKey string, records []fakeRecord) string {
	out := &strings.Builder{}
	out.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(
		out,
		`<r25:reservations xmlns:r25="http://www.collegenet.com/r25" xmlns:xl="http://www.w3.org/1999/xlink" pubdate="2024-03-01T08:00:00-08:00" paginate_key="%s">`+"\n",
		paginateKey,
	)
	for _, r := range records {
		out.WriteString(r.xml())
	}
	out.WriteString("</r25:reservations>\n")
	return out.String()
}

// fakeServer serves a fixed list of pages, page i is served for `page=i+1`
// (or no page parameter for the first one). Requests past the last page get an empty document.
type fakeServer struct {
	*httptest.Server

	mutex    sync.Mutex
	pages    []string
	requests []*http.Request
	// when set, every request is answered with this status and body
	failStatus int
	failBody   string
	// when set, every page index >= failFrom is answered with failStatus
	failFrom int
}

func newFakeServer(t testing.TB, pages ...string) *fakeServer {
	f := &fakeServer{pages: pages, failFrom: -1}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	f.mutex.Lock()
	f.requests = append(f.requests, r)
	f.mutex.Unlock()

	username, password, ok := r.BasicAuth()
	if !ok || username != testUsername || password != testPassword {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("<html><body>login required</body></html>"))
		return
	}
	if r.URL.Path != "/reservations.xml" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	index := 0
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		index = n - 1
	}

	if f.failStatus != 0 && (f.failFrom < 0 || index >= f.failFrom) {
		w.WriteHeader(f.failStatus)
		w.Write([]byte(f.failBody))
		return
	}

	w.Header().Set("content-type", "text/xml")
	if index < len(f.pages) {
		w.Write([]byte(f.pages[index]))
		return
	}
	w.Write([]byte(reservationsXml("", nil)))
}

func (f *fakeServer) requestCount() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.requests)
}

func (f *fakeServer) request(i int) *http.Request {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.requests[i]
}

var testLocation = time.FixedZone("PST", -8*60*60)

var testNow = time.Date(2024, time.March, 5, 10, 30, 0, 0, testLocation)

func testOptions(baseUrl string) Options {
	return Options{
		BaseUrl:  baseUrl,
		Username: testUsername,
		Password: testPassword,
		Location: testLocation,
		Timeout:  5 * time.Second,
	}
}

func newTestScraper(t testing.TB, opts Options) (*Scraper, *telemetry.MemoryAPI) {
	tel := &telemetry.MemoryAPI{}
	scraper, err := NewScraper(opts, tel, chrono.FixedTime{At: testNow})
	if err != nil {
		t.Fatal(err)
	}
	return scraper, tel
}

// numberedRecords makes n valid "BL" records with ids starting at `from`.
func numberedRecords(from, n int) []fakeRecord {
	records := make([]fakeRecord, n)
	for i := range records {
		records[i] = fakeRecord{
			ID:        strconv.Itoa(from + i),
			Name:      fmt.Sprintf("Event %d", from+i),
			EventType: "BL Lecture",
			Start:     "2024-03-05T09:00:00-08:00",
			End:       "2024-03-05T10:00:00-08:00",
		}
	}
	return records
}
