package r25

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"collegenet-backend/internal/components/assert"
	"collegenet-backend/internal/components/telemetry"
	"collegenet-backend/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_fetch_page = "client.fetch-page"
)

const bodySnippetLimit = 256

type client struct {
	http *resty.Client
	tel  telemetry.API
}

func newClient(opts Options, tel telemetry.API) *client {
	assert.NotNil(tel)

	httpClient := resty.New()
	httpClient.SetBaseURL(strings.TrimSuffix(opts.BaseUrl, "/"))
	httpClient.SetBasicAuth(opts.Username, opts.Password)
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("accept", "text/xml, application/xml")

	if opts.RequestsPerSecond > 0 {
		// max burst of 1 keeps pages strictly spaced out
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel, "collegenet.r25.http")
	restyutil.DumpMessages(httpClient, opts.Dump)

	return &client{http: httpClient, tel: tel}
}

func pageQuery(req PageRequest) url.Values {
	query := url.Values{}
	query.Set("start_dt", req.Lookback.String())
	query.Set("end_dt", req.Lookahead.String())
	query.Set("paginate", req.PaginateKey)
	query.Set("page_size", strconv.Itoa(req.PageSize))
	if req.Index > 0 {
		query.Set("page", strconv.Itoa(req.Index+1))
	}
	return query
}

// snippet keeps at most bodySnippetLimit bytes of a body, cut on a rune boundary.
func snippet(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) <= bodySnippetLimit {
		return string(body)
	}
	end := bodySnippetLimit
	for end > 0 && !utf8.RuneStart(body[end]) {
		end--
	}
	return string(body[:end])
}

// FetchPage requests one page of reservations and returns its raw record nodes.
func (c *client) FetchPage(ctx context.Context, req PageRequest) (Page, error) {
	assert.Positive(req.PageSize)

	query := pageQuery(req)
	c.tel.ReportDebug(report_client_fetch_page, req.Window.String(), req.Index, query.Encode())

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		Get("/reservations.xml")
	if err != nil {
		c.tel.ReportBroken(
			report_client_fetch_page,
			fmt.Errorf("fetch: %w", err),
			req.Index,
		)
		return Page{}, &RequestFailedError{Err: err}
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		failed := &RequestFailedError{
			Status:      res.StatusCode(),
			BodySnippet: snippet(res.Body()),
		}
		c.tel.ReportBroken(report_client_fetch_page, failed, req.Index)
		return Page{}, failed
	}

	page, err := parsePage(res.Body(), req.PageSize)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_page, err, req.Index)
		return Page{}, err
	}
	c.tel.ReportDebug(
		report_client_fetch_page,
		"records", len(page.Records),
		"has_more", page.HasMore,
	)
	return page, nil
}

// parsePage turns a reservations document into a Page. An empty body or a root
// element without reservations is a valid, empty, final page.
func parsePage(body []byte, pageSize int) (Page, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Page{}, nil
	}

	root, err := ParseXML(bytes.NewReader(body))
	if err != nil {
		return Page{}, &ParseFailedError{Reason: "invalid xml", Err: err}
	}
	if root == nil {
		return Page{}, nil
	}
	if root.Name != "reservations" {
		return Page{}, &ParseFailedError{
			Reason: fmt.Sprintf("unexpected root element %q", root.Name),
		}
	}

	records := root.All("r25:reservation")
	return Page{
		Records:     records,
		HasMore:     len(records) >= pageSize,
		PaginateKey: root.Attr("paginate_key"),
	}, nil
}
