// Package analytics aggregates per-path traffic statistics from an external
// analytics provider into gap-free daily time series.
package analytics

import (
	"fmt"
	"time"
)

// Grouping values accepted by the historical endpoint.
const (
	GroupingDay   = "day"
	GroupingMonth = "month"
)

// DateBucket holds one calendar day's aggregated totals.
type DateBucket struct {
	Date      string `json:"date"`
	Visits    int    `json:"visits"`
	Pageviews int    `json:"pageviews"`
}

// StatsQuery is a validated historical-stats request.
type StatsQuery struct {
	DateFrom time.Time
	Grouping string
}

// ValidationError is a client input error. Its message is safe to return
// to the caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateQuery checks the raw dateFrom and dateGrouping query parameters.
// Checks run in order and stop at the first failure.
func ValidateQuery(dateFrom, dateGrouping string) (StatsQuery, error) {
	if dateFrom == "" {
		return StatsQuery{}, &ValidationError{Message: "dateFrom is required"}
	}
	from, err := time.Parse("2006-01-02", dateFrom)
	if err != nil {
		return StatsQuery{}, &ValidationError{Message: "dateFrom is invalid"}
	}
	if dateGrouping == "" {
		return StatsQuery{}, &ValidationError{Message: "dateGrouping is required"}
	}
	if dateGrouping != GroupingDay && dateGrouping != GroupingMonth {
		return StatsQuery{}, &ValidationError{Message: "dateGrouping must be day or month"}
	}
	return StatsQuery{DateFrom: from, Grouping: dateGrouping}, nil
}

// BuildDailyBuckets returns one zeroed bucket per calendar day in [from, now),
// ascending. Days advance with AddDate rather than a fixed 24h increment so
// the series stays aligned across daylight-saving transitions. The scaffold is
// always at day resolution regardless of the requested grouping.
func BuildDailyBuckets(from, now time.Time) []DateBucket {
	// Non-nil so an empty range serializes as [] rather than null.
	buckets := []DateBucket{}
	for d := from; d.Before(now); d = d.AddDate(0, 0, 1) {
		buckets = append(buckets, DateBucket{Date: d.Format("2006-01-02")})
	}
	return buckets
}

// totals is the date-keyed running sum built while merging per-path results.
type totals struct {
	visits    int
	pageviews int
}

// accumulate folds per-path provider results into a date-keyed sum.
func accumulate(acc map[string]totals, stats []PathStat) {
	for _, s := range stats {
		t := acc[s.Date]
		t.visits += s.Visits
		t.pageviews += s.Pageviews
		acc[s.Date] = t
	}
}

// applyTotals writes accumulated sums back into the scaffolded series by exact
// date match. A date the provider returned that is missing from the scaffold
// indicates a logic fault and is reported as an error, never dropped.
func applyTotals(buckets []DateBucket, acc map[string]totals) error {
	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		index[b.Date] = i
	}
	for date, t := range acc {
		i, ok := index[date]
		if !ok {
			return fmt.Errorf("provider date %s not present in scaffold", date)
		}
		buckets[i].Visits = t.visits
		buckets[i].Pageviews = t.pageviews
	}
	return nil
}
