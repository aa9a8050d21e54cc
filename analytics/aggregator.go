package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// defaultFetchLimit caps concurrent provider fetches. The path list grows
// with a user's published-story count, so the fan-out is bounded.
const defaultFetchLimit = 8

// AggregationError is a server-side failure carrying the correlation
// identifier already handed out by the Reporter.
type AggregationError struct {
	CorrelationID string
	message       string
}

func (e *AggregationError) Error() string {
	return e.message
}

// Aggregator builds gap-free historical series by fanning out per-path
// provider queries and merging the results.
type Aggregator struct {
	resolver   ProfileResolver
	lister     StoryLister
	provider   Provider
	reporter   Reporter
	fetchLimit int
}

// NewAggregator wires an aggregator from its collaborators. fetchLimit <= 0
// selects the default concurrency cap.
func NewAggregator(resolver ProfileResolver, lister StoryLister, provider Provider, reporter Reporter, fetchLimit int) *Aggregator {
	if fetchLimit <= 0 {
		fetchLimit = defaultFetchLimit
	}
	return &Aggregator{
		resolver:   resolver,
		lister:     lister,
		provider:   provider,
		reporter:   reporter,
		fetchLimit: fetchLimit,
	}
}

// fail reports msg and returns the matching AggregationError.
func (a *Aggregator) fail(msg string) error {
	id := a.reporter.Report(msg)
	return &AggregationError{CorrelationID: id, message: msg}
}

// Historical returns one bucket per calendar day in [q.DateFrom, now), with
// visits and pageviews summed across the user's root page and every published
// story. now must be captured once by the caller at request entry; it anchors
// both the scaffold and the merge. Days the provider omits stay at zero.
func (a *Aggregator) Historical(ctx context.Context, username string, q StatsQuery, now time.Time) ([]DateBucket, error) {
	buckets := BuildDailyBuckets(q.DateFrom, now)

	profile, err := a.resolver.Resolve(ctx, username)
	if err != nil {
		return nil, a.fail(fmt.Sprintf("resolve %s: %v", username, err))
	}
	stories, err := a.lister.ListPublic(ctx, profile.BucketURL)
	if err != nil {
		return nil, a.fail(fmt.Sprintf("list stories for %s: %v", username, err))
	}

	// One path per published story plus the user's root page.
	paths := make([]string, 0, len(stories)+1)
	for _, s := range stories {
		paths = append(paths, "/"+username+"/"+s.ID)
	}
	paths = append(paths, "/"+username)

	// Fan out one provider query per path. The join is all-or-nothing: a
	// single failed fetch fails the whole request, never a partial merge.
	results := make([][]PathStat, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.fetchLimit)
	for i, path := range paths {
		g.Go(func() error {
			stats, err := a.provider.Aggregate(gctx, path, q.DateFrom, q.Grouping)
			if err != nil {
				return err
			}
			results[i] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, a.fail(fmt.Sprintf("aggregate %s: %v", username, err))
	}

	// Merge sequentially after the join; the accumulator is request-scoped
	// and single-owner.
	acc := make(map[string]totals)
	for _, stats := range results {
		accumulate(acc, stats)
	}
	if err := applyTotals(buckets, acc); err != nil {
		return nil, a.fail(fmt.Sprintf("merge %s: %v", username, err))
	}
	return buckets, nil
}
