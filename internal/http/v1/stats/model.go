package stats

import (
	"github.com/janisto/codestats/internal/platform/timeutil"
)

// PlatformStats holds the values a platform reported. Absent fields were not
// reported and are not zero.
type PlatformStats struct {
	TotalSolved   *int    `json:"totalSolved,omitempty"   doc:"Problems solved"                    example:"120"`
	EasySolved    *int    `json:"easySolved,omitempty"    doc:"Easy problems solved"               example:"60"`
	MediumSolved  *int    `json:"mediumSolved,omitempty"  doc:"Medium problems solved"             example:"50"`
	HardSolved    *int    `json:"hardSolved,omitempty"    doc:"Hard problems solved"               example:"10"`
	Ranking       *int    `json:"ranking,omitempty"       doc:"Site-wide ranking"                  example:"84211"`
	Rating        *int    `json:"rating,omitempty"        doc:"Current contest rating"             example:"1847"`
	MaxRating     *int    `json:"maxRating,omitempty"     doc:"Highest contest rating"             example:"1902"`
	Rank          *string `json:"rank,omitempty"          doc:"Rank title"                         example:"expert"`
	GlobalRank    *int    `json:"globalRank,omitempty"    doc:"Global rank"                        example:"5120"`
	CountryRank   *int    `json:"countryRank,omitempty"   doc:"Country rank"                       example:"312"`
	Stars         *string `json:"stars,omitempty"         doc:"Star rating"                        example:"4★"`
	CodingScore   *int    `json:"codingScore,omitempty"   doc:"Coding score"                       example:"640"`
	InstituteRank *int    `json:"instituteRank,omitempty" doc:"Rank within the user's institution" example:"3"`
}

// PlatformRecord is the stored state of one platform.
type PlatformRecord struct {
	Username      string         `json:"username"             doc:"Handle on the platform"               example:"alice"`
	Stats         *PlatformStats `json:"stats,omitempty"      doc:"Last successfully fetched statistics"`
	LastFetchedAt timeutil.Time  `json:"lastFetchedAt"        doc:"Time of the last fetch attempt"       example:"2024-01-15T10:30:00.000Z"`
	FetchError    *string        `json:"fetchError,omitempty" doc:"Reason the last fetch failed"         example:"request timed out after 10s"`
}

// AggregatedStats holds values derived across platforms.
type AggregatedStats struct {
	TotalProblemsSolved int      `json:"totalProblemsSolved" doc:"Sum of solved counts on platforms that report them" example:"150"`
	StrongestTopics     []string `json:"strongestTopics"     doc:"Reserved"`
	WeakestTopics       []string `json:"weakestTopics"       doc:"Reserved"`
	ConsistencyScore    int      `json:"consistencyScore"    doc:"Reserved"                                            example:"0"`
}

// CodingProfile is the aggregated external profile of a user.
type CodingProfile struct {
	UserID         string                    `json:"userId"                   doc:"Owner"                    example:"user-123"`
	Platforms      map[string]PlatformRecord `json:"platforms"                doc:"Per-platform records keyed by platform"`
	Aggregated     AggregatedStats           `json:"aggregatedStats"`
	LastFullSyncAt *timeutil.Time            `json:"lastFullSyncAt,omitempty" doc:"Completion time of the last sync" example:"2024-01-15T10:30:00.000Z"`
	CreatedAt      timeutil.Time             `json:"createdAt"                doc:"Creation timestamp"       example:"2024-01-15T10:30:00.000Z"`
	UpdatedAt      timeutil.Time             `json:"updatedAt"                doc:"Last update timestamp"    example:"2024-01-15T10:30:00.000Z"`
}

// SolvedCounts counts problems solved on this site.
type SolvedCounts struct {
	Total  int `json:"total"  doc:"All solved problems" example:"42"`
	Easy   int `json:"easy"   doc:"Easy problems"       example:"30"`
	Medium int `json:"medium" doc:"Medium problems"     example:"10"`
	Hard   int `json:"hard"   doc:"Hard problems"       example:"2"`
}

// Streak describes consecutive active days.
type Streak struct {
	CurrentStreak int `json:"currentStreak" doc:"Consecutive days with submissions up to today or yesterday" example:"5"`
	MaxStreak     int `json:"maxStreak"     doc:"Equal to currentStreak"                                     example:"5"`
}

// StatsView combines the external profile with site activity.
type StatsView struct {
	Profile CodingProfile `json:"profile"`
	Solved  SolvedCounts  `json:"solved"`
	Streak  Streak        `json:"streak"`
}

// Achievement is one evaluated catalog entry.
type Achievement struct {
	ID          string `json:"id"                 doc:"Stable identifier"  example:"easy-master"`
	Title       string `json:"title"              doc:"Display title"      example:"Easy Master"`
	Description string `json:"description"        doc:"What unlocks it"    example:"Solve 50 easy problems"`
	Icon        string `json:"icon"               doc:"Icon name"          example:"leaf"`
	Unlocked    bool   `json:"unlocked"           doc:"Whether it is unlocked" example:"true"`
	Progress    *int   `json:"progress,omitempty" doc:"Current count, may exceed target" example:"37"`
	Target      *int   `json:"target,omitempty"   doc:"Count needed"       example:"50"`
}

// AchievementReport lists every achievement with the snapshot it was evaluated against.
type AchievementReport struct {
	Achievements []Achievement `json:"achievements"`
	Solved       SolvedCounts  `json:"solved"`
	Streak       Streak        `json:"streak"`
}

// Submission is one submission on this site.
type Submission struct {
	ID          string        `json:"id"          doc:"Submission id"  example:"sub-1"`
	ProblemID   string        `json:"problemId"   doc:"Problem id"     example:"two-sum"`
	Status      string        `json:"status"      doc:"Judge verdict"  example:"accepted"`
	SubmittedAt timeutil.Time `json:"submittedAt" doc:"Submission time" example:"2024-01-15T10:30:00.000Z"`
}
