package codingstats

import (
	"slices"
	"time"
)

// Streak is a run of consecutive active days. Max mirrors Current; no
// history of longer past runs is kept.
type Streak struct {
	Current int
	Max     int
}

// ComputeStreak counts consecutive UTC days with activity ending today.
//
// Dates are walked newest first against an anchor starting at today's date. A
// date equal to the anchor, or one day before it, extends the run and moves the
// anchor to the day before that date. Any other gap ends the walk, so a run that
// ended yesterday still counts. Dates after today are ignored.
func ComputeStreak(timestamps []time.Time, now time.Time) Streak {
	today := utcDate(now)

	days := make([]time.Time, 0, len(timestamps))
	for _, ts := range timestamps {
		if d := utcDate(ts); !d.After(today) {
			days = append(days, d)
		}
	}
	slices.SortFunc(days, func(a, b time.Time) int { return b.Compare(a) })
	days = slices.CompactFunc(days, time.Time.Equal)

	anchor := today
	run := 0
	for _, d := range days {
		if !d.Equal(anchor) && !d.Equal(anchor.AddDate(0, 0, -1)) {
			break
		}
		run++
		anchor = d.AddDate(0, 0, -1)
	}
	return Streak{Current: run, Max: run}
}

func utcDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
