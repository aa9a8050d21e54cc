package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// PathStat is one date's aggregated totals for a single content path, with
// numeric fields already parsed from the provider's string representation.
type PathStat struct {
	Date      string
	Visits    int
	Pageviews int
}

// Provider fetches an aggregated time series for one content path.
type Provider interface {
	Aggregate(ctx context.Context, path string, from time.Time, grouping string) ([]PathStat, error)
}

// providerRow mirrors the provider's wire format. Visits and pageviews arrive
// as strings and must be parsed at this boundary.
type providerRow struct {
	Date      string `json:"date"`
	Visits    string `json:"visits"`
	Pageviews string `json:"pageviews"`
}

// Client talks to the external analytics provider's aggregation API.
// Construct it once at startup and inject it; it is never rebuilt from
// environment state mid-request.
type Client struct {
	baseURL string
	siteID  string
	token   string
	http    *http.Client
}

// NewClient creates a provider client. If httpClient is nil a client with a
// 10s timeout is used.
func NewClient(baseURL, siteID, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, siteID: siteID, token: token, http: httpClient}
}

// Aggregate requests visit/pageview totals for one path, grouped by date,
// from the requested start date onward.
func (c *Client) Aggregate(ctx context.Context, path string, from time.Time, grouping string) ([]PathStat, error) {
	q := url.Values{}
	q.Set("entity", "pageview")
	q.Set("entity_id", c.siteID)
	q.Set("aggregates", "visits,pageviews")
	q.Set("date_grouping", grouping)
	q.Set("date_from", from.Format("2006-01-02"))
	q.Set("filters", fmt.Sprintf(`[{"property":"pathname","operator":"is","value":%q}]`, path))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/aggregations?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build aggregation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch aggregation for %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aggregation for %s: provider returned %d", path, resp.StatusCode)
	}

	var rows []providerRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode aggregation for %s: %w", path, err)
	}

	stats := make([]PathStat, 0, len(rows))
	for _, r := range rows {
		visits, err := strconv.Atoi(r.Visits)
		if err != nil {
			return nil, fmt.Errorf("parse visits %q for %s: %w", r.Visits, path, err)
		}
		pageviews, err := strconv.Atoi(r.Pageviews)
		if err != nil {
			return nil, fmt.Errorf("parse pageviews %q for %s: %w", r.Pageviews, path, err)
		}
		stats = append(stats, PathStat{Date: r.Date, Visits: visits, Pageviews: pageviews})
	}
	return stats, nil
}
