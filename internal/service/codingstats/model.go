package codingstats

import (
	"context"
	"errors"
	"time"

	"github.com/janisto/codestats/internal/service/platforms"
)

// Service errors
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProfileNotFound = errors.New("coding profile not found")
	ErrStorage         = errors.New("storage failure")
	ErrSyncInProgress  = errors.New("sync already in progress")
)

// PlatformRecord is the stored slot for one platform.
//
// Stats is nil until a fetch for the current handle has succeeded. FetchError
// is empty after a successful fetch and holds the failure reason otherwise.
type PlatformRecord struct {
	Username      string
	Stats         *platforms.Stats
	LastFetchedAt time.Time
	FetchError    string
}

// AggregatedStats holds values derived from the platform slots.
// Topic lists and ConsistencyScore are reserved and stay at their zero values.
type AggregatedStats struct {
	TotalProblemsSolved int
	StrongestTopics     []string
	WeakestTopics       []string
	ConsistencyScore    int
}

// Profile is the per-user aggregate of external platform stats.
type Profile struct {
	UserID         string
	Platforms      map[platforms.Platform]PlatformRecord
	Aggregated     AggregatedStats
	LastFullSyncAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewProfile returns an empty profile for userID.
func NewProfile(userID string, now time.Time) *Profile {
	return &Profile{
		UserID:     userID,
		Platforms:  make(map[platforms.Platform]PlatformRecord),
		Aggregated: AggregatedStats{StrongestTopics: []string{}, WeakestTopics: []string{}},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Submission is one submission on the home site.
type Submission struct {
	ID          string
	ProblemID   string
	Status      string
	SubmittedAt time.Time
}

// Difficulty of a home site problem.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// SolvedCounts counts solved home site problems. Total includes problems of
// unknown difficulty.
type SolvedCounts struct {
	Total  int
	Easy   int
	Medium int
	Hard   int
}

// StatsView is the read-only answer of GetStats.
type StatsView struct {
	Profile *Profile
	Solved  SolvedCounts
	Streak  Streak
}

// AchievementReport is the answer of GetAchievements.
type AchievementReport struct {
	Achievements []Achievement
	Solved       SolvedCounts
	Streak       Streak
}

// ProfileStore persists coding profiles.
//
// Apply loads the profile for userID, or a fresh one when none exists, runs fn
// against it and writes the result back as one atomic unit. fn may run more than
// once when the store retries a conflicting write.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Apply(ctx context.Context, userID string, fn func(*Profile) error) (*Profile, error)
}

// SubmissionReader lists a user's submissions, newest first.
type SubmissionReader interface {
	ListSubmissions(ctx context.Context, userID string) ([]Submission, error)
}

// ProblemReader resolves problem difficulties. Unknown ids are absent from the result.
type ProblemReader interface {
	Difficulties(ctx context.Context, problemIDs []string) (map[string]Difficulty, error)
}

// Store bundles the persistence collaborators of the service.
type Store interface {
	ProfileStore
	SubmissionReader
	ProblemReader
}

// Service defines the coding stats operations.
type Service interface {
	SyncUserStats(ctx context.Context, userID string) (*Profile, error)
	GetStats(ctx context.Context, userID string) (*StatsView, error)
	GetAchievements(ctx context.Context, userID string) (*AchievementReport, error)
	ListSubmissions(ctx context.Context, userID string) ([]Submission, error)
}
