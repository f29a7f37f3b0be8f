package handles

import "github.com/janisto/codestats/internal/platform/timeutil"

// HandleSet is the user's configured platform handles.
type HandleSet struct {
	Handles   map[string]string `json:"handles"   doc:"Handle per platform"           example:"{\"leetcode\":\"alice\"}"`
	Platforms []string          `json:"platforms" doc:"Supported platforms in evaluation order"`
	UpdatedAt *timeutil.Time    `json:"updatedAt,omitempty" doc:"Last update timestamp" example:"2024-01-15T10:30:00.000Z"`
}
