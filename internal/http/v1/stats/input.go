package stats

import "github.com/janisto/codestats/internal/platform/pagination"

// SyncInput for POST /stats/sync (no body needed)
type SyncInput struct{}

// StatsGetInput for GET /stats (no body needed)
type StatsGetInput struct{}

// AchievementsInput for GET /stats/achievements (no body needed)
type AchievementsInput struct{}

// SubmissionsListInput for GET /stats/submissions
type SubmissionsListInput struct {
	pagination.Params
}
