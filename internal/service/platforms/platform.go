// Package platforms fetches problem-solving statistics from third-party coding
// sites and normalizes them into Stats.
//
// Adapters never return errors. A fetch produces a Result holding either Stats
// or a Failure, so one broken source cannot abort a synchronization run.
package platforms

import (
	"fmt"
	"strings"
)

// Platform identifies a third-party source.
type Platform string

const (
	LeetCode      Platform = "leetcode"
	Codeforces    Platform = "codeforces"
	CodeChef      Platform = "codechef"
	AtCoder       Platform = "atcoder"
	GeeksforGeeks Platform = "geeksforgeeks"
	HackerRank    Platform = "hackerrank"
)

// All lists every supported platform in evaluation order.
var All = []Platform{LeetCode, Codeforces, CodeChef, AtCoder, GeeksforGeeks, HackerRank}

// Parse maps a case-insensitive key to a Platform.
func Parse(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	for _, known := range All {
		if p == known {
			return true
		}
	}
	return false
}

// CountsSolved reports whether the platform's TotalSolved is a count of solved
// problems comparable across sites. Rating-centred platforms are excluded from
// aggregate totals even when their pages mention a solved count.
func (p Platform) CountsSolved() bool {
	return p == LeetCode || p == GeeksforGeeks
}

// Order returns the position of p in All, or len(All) for unknown values.
func (p Platform) Order() int {
	for i, known := range All {
		if p == known {
			return i
		}
	}
	return len(All)
}

// Stats is the normalized per-platform payload. Nil fields were not reported
// by the source and are never defaulted to zero.
type Stats struct {
	TotalSolved   *int
	EasySolved    *int
	MediumSolved  *int
	HardSolved    *int
	Ranking       *int
	Rating        *int
	MaxRating     *int
	Rank          *string
	GlobalRank    *int
	CountryRank   *int
	Stars         *string
	CodingScore   *int
	InstituteRank *int
}

// FailureKind classifies why a fetch produced no stats.
type FailureKind string

const (
	// SourceUnavailable covers network errors, unexpected status codes,
	// malformed payloads and pages from which nothing could be extracted.
	SourceUnavailable FailureKind = "source_unavailable"
	// NotImplemented marks platforms without a working adapter.
	NotImplemented FailureKind = "not_implemented"
)

// Failure describes a fetch that produced no stats. Reason is human readable
// and is what ends up in the stored fetchError.
type Failure struct {
	Kind   FailureKind
	Reason string
	// Status is the upstream HTTP status when one was received.
	Status int
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	return f.Reason
}

func unavailable(format string, args ...any) *Failure {
	return &Failure{Kind: SourceUnavailable, Reason: fmt.Sprintf(format, args...)}
}

// Result is the outcome of one adapter call. Exactly one of Stats and Failure is set.
type Result struct {
	Platform Platform
	Handle   string
	Stats    *Stats
	Failure  *Failure
}

// OK reports whether the fetch succeeded.
func (r Result) OK() bool {
	return r.Failure == nil && r.Stats != nil
}

func succeeded(p Platform, handle string, s *Stats) Result {
	return Result{Platform: p, Handle: handle, Stats: s}
}

func failed(p Platform, handle string, f *Failure) Result {
	return Result{Platform: p, Handle: handle, Failure: f}
}

func intPtr(n int) *int { return &n }
