// Package rest reads participation records and report summaries from the
// records HTTP API.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"example.com/sahakari/internal/domain"
	"example.com/sahakari/internal/observability"
	"example.com/sahakari/internal/source"
)

// Client talks to the records API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token forwarded on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger overrides the client's logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  log.New(log.Writer(), "[source] ", log.LstdFlags|log.Lshortfile),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ source.RecordFetcher  = (*Client)(nil)
	_ source.SummaryFetcher = (*Client)(nil)
)

// FetchRecords implements source.RecordFetcher. The year window is passed as
// date_gte/date_lt; branch and activity narrow the query when set. Bare
// activity ids are resolved through the master activity list, and name-only
// references that name the filtered master activity get its id attached.
func (c *Client) FetchRecords(ctx context.Context, filter domain.ReportFilter) ([]domain.ParticipationRecord, error) {
	from, to := filter.Window()
	q := url.Values{}
	q.Set("date_gte", from.Format("2006-01-02"))
	q.Set("date_lt", to.Format("2006-01-02"))
	addNarrowing(q, filter)

	var wire []wireRecord
	if err := c.get(ctx, "/api/activities", q, &wire); err != nil {
		return nil, err
	}

	records := make([]domain.ParticipationRecord, 0, len(wire))
	unnamed, nameOnly := false, false
	for _, w := range wire {
		rec, convErr := w.toDomain()
		if convErr != nil {
			c.logger.Printf("skipping record %q: %v", w.ID, convErr)
			observability.RecordRejected("rest", 1)
			continue
		}
		switch ref := rec.Activity; {
		case ref.Kind == domain.ActivityRefByID && ref.Name == "" && ref.ID != "":
			unnamed = true
		case ref.Kind == domain.ActivityRefByName && filter.Activity != "":
			nameOnly = true
		}
		records = append(records, rec)
	}

	if unnamed || nameOnly {
		names, err := c.masterActivities(ctx)
		if err != nil {
			return nil, err
		}
		keyName := names[filter.Activity]
		for i := range records {
			ref := records[i].Activity
			switch {
			case ref.Kind == domain.ActivityRefByID && ref.Name == "":
				records[i].Activity = domain.ActivityByID(ref.ID, names[ref.ID])
			case ref.Kind == domain.ActivityRefByName && keyName != "" && ref.Name == keyName:
				records[i].Activity = ref.WithMasterID(filter.Activity)
			}
		}
	}

	return source.Sanitize("rest", c.logger, records), nil
}

// FetchSummary implements source.SummaryFetcher.
func (c *Client) FetchSummary(ctx context.Context, filter domain.ReportFilter) (domain.ReportSummary, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(filter.Year))
	addNarrowing(q, filter)

	var wire wireSummary
	if err := c.get(ctx, "/api/activities/report-summary", q, &wire); err != nil {
		return domain.ReportSummary{}, err
	}
	return domain.NormalizeSummary(wire.toDomain(), filter), nil
}

func (c *Client) masterActivities(ctx context.Context) (map[string]string, error) {
	var wire []wireMasterActivity
	if err := c.get(ctx, "/api/master-activities", nil, &wire); err != nil {
		return nil, err
	}
	names := make(map[string]string, len(wire))
	for _, m := range wire {
		names[m.ID] = m.ActivityName
	}
	return names, nil
}

func addNarrowing(q url.Values, filter domain.ReportFilter) {
	if filter.Branch != "" {
		q.Set("branch", filter.Branch)
	}
	if filter.Activity != "" {
		q.Set("activity", filter.Activity)
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}
