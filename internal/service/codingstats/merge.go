package codingstats

import (
	"slices"
	"time"

	"github.com/janisto/codestats/internal/service/platforms"
)

// Merge folds fetch results into p in platform order and refreshes the
// aggregates.
//
// A successful result replaces the slot. A failed result records the reason and
// keeps the previous stats when the handle is unchanged; after a handle change
// stale stats from the old account are dropped. Platforms without a result keep
// their slot as is.
func Merge(p *Profile, results []platforms.Result, now time.Time) {
	if p.Platforms == nil {
		p.Platforms = make(map[platforms.Platform]PlatformRecord)
	}

	ordered := slices.Clone(results)
	slices.SortStableFunc(ordered, func(a, b platforms.Result) int {
		return a.Platform.Order() - b.Platform.Order()
	})

	for _, r := range ordered {
		rec := PlatformRecord{Username: r.Handle, LastFetchedAt: now}
		if r.OK() {
			rec.Stats = r.Stats
		} else {
			rec.FetchError = failureReason(r)
			if prev, ok := p.Platforms[r.Platform]; ok && prev.Username == r.Handle {
				rec.Stats = prev.Stats
			}
		}
		p.Platforms[r.Platform] = rec
	}

	RecomputeAggregates(p)
	p.LastFullSyncAt = &now
	p.UpdatedAt = now
}

// RecomputeAggregates derives the aggregate block from the platform slots.
// Only platforms whose stats count solved problems contribute to the total.
func RecomputeAggregates(p *Profile) {
	total := 0
	for platform, rec := range p.Platforms {
		if !platform.CountsSolved() || rec.Stats == nil || rec.Stats.TotalSolved == nil {
			continue
		}
		total += *rec.Stats.TotalSolved
	}
	p.Aggregated.TotalProblemsSolved = total
	if p.Aggregated.StrongestTopics == nil {
		p.Aggregated.StrongestTopics = []string{}
	}
	if p.Aggregated.WeakestTopics == nil {
		p.Aggregated.WeakestTopics = []string{}
	}
}

func failureReason(r platforms.Result) string {
	if r.Failure != nil && r.Failure.Reason != "" {
		return r.Failure.Reason
	}
	return "unknown error"
}
