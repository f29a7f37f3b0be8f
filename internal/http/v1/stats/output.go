package stats

// SyncOutput for POST /stats/sync
type SyncOutput struct {
	Body CodingProfile
}

// StatsGetOutput for GET /stats
type StatsGetOutput struct {
	Body StatsView
}

// AchievementsOutput for GET /stats/achievements
type AchievementsOutput struct {
	Body AchievementReport
}

// SubmissionsData is the paginated submissions body.
type SubmissionsData struct {
	Submissions []Submission `json:"submissions" doc:"Submissions, newest first"`
	Total       int          `json:"total"       doc:"Total number of submissions" example:"87"`
}

// SubmissionsListOutput carries the pagination Link header.
type SubmissionsListOutput struct {
	Link string `header:"Link" doc:"RFC 8288 pagination links"`
	Body SubmissionsData
}
