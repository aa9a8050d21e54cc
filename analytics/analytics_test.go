package analytics

import (
	"testing"
	"time"
)

func TestValidateQueryErrors(t *testing.T) {
	cases := []struct {
		name         string
		dateFrom     string
		dateGrouping string
		wantErr      string
	}{
		{"missing dateFrom", "", "day", "dateFrom is required"},
		{"invalid dateFrom", "not-a-date", "day", "dateFrom is invalid"},
		{"missing dateGrouping", "2024-01-01", "", "dateGrouping is required"},
		{"bad dateGrouping", "2024-01-01", "week", "dateGrouping must be day or month"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateQuery(tc.dateFrom, tc.dateGrouping)
			if err == nil {
				t.Fatalf("expected error %q, got none", tc.wantErr)
			}
			if err.Error() != tc.wantErr {
				t.Fatalf("error = %q, want %q", err.Error(), tc.wantErr)
			}
		})
	}
}

func TestValidateQueryOK(t *testing.T) {
	q, err := ValidateQuery("2024-01-15", "month")
	if err != nil {
		t.Fatalf("ValidateQuery failed: %v", err)
	}
	if got := q.DateFrom.Format("2006-01-02"); got != "2024-01-15" {
		t.Errorf("DateFrom = %s, want 2024-01-15", got)
	}
	if q.Grouping != GroupingMonth {
		t.Errorf("Grouping = %q, want month", q.Grouping)
	}
}

func TestBuildDailyBucketsCoversRange(t *testing.T) {
	from := time.Date(2024, 1, 28, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC)

	buckets := BuildDailyBuckets(from, now)

	// Jan 28..Mar 2 of a leap year: 4 (Jan) + 29 (Feb) + 2 (Mar) days.
	if len(buckets) != 35 {
		t.Fatalf("got %d buckets, want 35", len(buckets))
	}
	if buckets[0].Date != "2024-01-28" {
		t.Errorf("first bucket = %s, want 2024-01-28", buckets[0].Date)
	}
	if buckets[len(buckets)-1].Date != "2024-03-02" {
		t.Errorf("last bucket = %s, want 2024-03-02", buckets[len(buckets)-1].Date)
	}
	seen := make(map[string]bool)
	prev := ""
	for _, b := range buckets {
		if b.Visits != 0 || b.Pageviews != 0 {
			t.Errorf("bucket %s not zero-initialized", b.Date)
		}
		if seen[b.Date] {
			t.Errorf("duplicate bucket %s", b.Date)
		}
		seen[b.Date] = true
		if b.Date <= prev {
			t.Errorf("bucket %s not strictly after %s", b.Date, prev)
		}
		prev = b.Date
	}
}

func TestBuildDailyBucketsIdempotent(t *testing.T) {
	from := time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 3, 0, 0, 0, 1, time.UTC)

	first := BuildDailyBuckets(from, now)
	second := BuildDailyBuckets(from, now)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("bucket %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestBuildDailyBucketsFutureStart(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	from := now.AddDate(0, 0, 7)

	buckets := BuildDailyBuckets(from, now)
	if buckets == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(buckets) != 0 {
		t.Fatalf("got %d buckets for a future start, want 0", len(buckets))
	}
}

func TestAccumulateSumsByDate(t *testing.T) {
	acc := make(map[string]totals)
	accumulate(acc, []PathStat{{Date: "2024-01-01", Visits: 3, Pageviews: 5}})
	accumulate(acc, []PathStat{{Date: "2024-01-01", Visits: 2, Pageviews: 1}})

	got := acc["2024-01-01"]
	if got.visits != 5 || got.pageviews != 6 {
		t.Fatalf("merged totals = (%d, %d), want (5, 6)", got.visits, got.pageviews)
	}
}

func TestApplyTotals(t *testing.T) {
	buckets := BuildDailyBuckets(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
	)
	acc := map[string]totals{
		"2024-01-02": {visits: 4, pageviews: 7},
	}
	if err := applyTotals(buckets, acc); err != nil {
		t.Fatalf("applyTotals failed: %v", err)
	}
	for _, b := range buckets {
		if b.Date == "2024-01-02" {
			if b.Visits != 4 || b.Pageviews != 7 {
				t.Errorf("bucket %s = (%d, %d), want (4, 7)", b.Date, b.Visits, b.Pageviews)
			}
			continue
		}
		if b.Visits != 0 || b.Pageviews != 0 {
			t.Errorf("bucket %s = (%d, %d), want zeros", b.Date, b.Visits, b.Pageviews)
		}
	}
}

func TestApplyTotalsRejectsUnknownDate(t *testing.T) {
	buckets := BuildDailyBuckets(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	)
	acc := map[string]totals{"2023-06-15": {visits: 1}}
	if err := applyTotals(buckets, acc); err == nil {
		t.Fatal("expected error for date outside the scaffold")
	}
}
