package stats

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/codestats/internal/platform/auth"
	applog "github.com/janisto/codestats/internal/platform/logging"
	"github.com/janisto/codestats/internal/platform/pagination"
	"github.com/janisto/codestats/internal/platform/timeutil"
	"github.com/janisto/codestats/internal/service/codingstats"
	"github.com/janisto/codestats/internal/service/platforms"
)

const cursorType = "submission"

// Register registers coding stats endpoints.
func Register(api huma.API, svc codingstats.Service, prefix string) {
	huma.Register(api, huma.Operation{
		OperationID: "sync-stats",
		Method:      http.MethodPost,
		Path:        "/stats/sync",
		Summary:     "Synchronize external coding profiles",
		Description: "Fetches statistics from every platform the user has a handle for and stores the merged profile. " +
			"Failures of individual platforms are reported in the platform's fetchError and do not fail the request.",
		Tags: []string{"Stats"},
		Security: []map[string][]string{
			{"bearerAuth": {}},
		},
	}, func(ctx context.Context, _ *SyncInput) (*SyncOutput, error) {
		user := auth.UserFromContext(ctx)

		profile, err := svc.SyncUserStats(ctx, user.UID)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &SyncOutput{Body: ProfileBody(profile)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-stats",
		Method:      http.MethodGet,
		Path:        "/stats",
		Summary:     "Get coding stats",
		Description: "Returns the stored external profile with solved counts and the current streak.",
		Tags:        []string{"Stats"},
		Security: []map[string][]string{
			{"bearerAuth": {}},
		},
	}, func(ctx context.Context, _ *StatsGetInput) (*StatsGetOutput, error) {
		user := auth.UserFromContext(ctx)

		view, err := svc.GetStats(ctx, user.UID)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &StatsGetOutput{Body: StatsView{
			Profile: ProfileBody(view.Profile),
			Solved:  toHTTPSolved(view.Solved),
			Streak:  toHTTPStreak(view.Streak),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-achievements",
		Method:      http.MethodGet,
		Path:        "/stats/achievements",
		Summary:     "Get achievements",
		Description: "Evaluates the achievement catalog against current solved counts and streak.",
		Tags:        []string{"Stats"},
		Security: []map[string][]string{
			{"bearerAuth": {}},
		},
	}, func(ctx context.Context, _ *AchievementsInput) (*AchievementsOutput, error) {
		user := auth.UserFromContext(ctx)

		report, err := svc.GetAchievements(ctx, user.UID)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		list := make([]Achievement, 0, len(report.Achievements))
		for _, a := range report.Achievements {
			list = append(list, Achievement{
				ID:          a.ID,
				Title:       a.Title,
				Description: a.Description,
				Icon:        a.Icon,
				Unlocked:    a.Unlocked,
				Progress:    a.Progress,
				Target:      a.Target,
			})
		}
		return &AchievementsOutput{Body: AchievementReport{
			Achievements: list,
			Solved:       toHTTPSolved(report.Solved),
			Streak:       toHTTPStreak(report.Streak),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-submissions",
		Method:      http.MethodGet,
		Path:        "/stats/submissions",
		Summary:     "List submissions with cursor-based pagination",
		Description: "Returns the user's submissions, newest first. Use the cursor from the Link header to navigate.",
		Tags:        []string{"Stats"},
		Security: []map[string][]string{
			{"bearerAuth": {}},
		},
	}, func(ctx context.Context, input *SubmissionsListInput) (*SubmissionsListOutput, error) {
		user := auth.UserFromContext(ctx)

		cursor, err := pagination.DecodeCursor(input.Cursor)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid cursor format")
		}
		if cursor.Type != "" && cursor.Type != cursorType {
			return nil, huma.Error400BadRequest("cursor type mismatch")
		}

		subs, err := svc.ListSubmissions(ctx, user.UID)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		items := make([]Submission, 0, len(subs))
		for _, s := range subs {
			items = append(items, Submission{
				ID:          s.ID,
				ProblemID:   s.ProblemID,
				Status:      s.Status,
				SubmittedAt: timeutil.NewTime(s.SubmittedAt),
			})
		}

		page := pagination.Paginate(
			items,
			cursor,
			input.DefaultLimit(),
			cursorType,
			func(s Submission) string { return s.ID },
			prefix+"/stats/submissions",
			nil,
		)
		return &SubmissionsListOutput{
			Link: page.LinkHeader,
			Body: SubmissionsData{Submissions: page.Items, Total: page.Total},
		}, nil
	})
}

func mapServiceError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, codingstats.ErrUserNotFound):
		return huma.Error404NotFound("user not found")
	case errors.Is(err, codingstats.ErrProfileNotFound):
		return huma.Error404NotFound("coding profile not found, run a sync first")
	case errors.Is(err, codingstats.ErrSyncInProgress):
		return huma.Error409Conflict("a sync for this user is already running")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return huma.Error503ServiceUnavailable("request cancelled")
	default:
		applog.LogError(ctx, "coding stats request failed", err)
		return huma.Error500InternalServerError("internal error")
	}
}

// ProfileBody converts a stored profile to its response shape.
func ProfileBody(p *codingstats.Profile) CodingProfile {
	out := CodingProfile{
		UserID:    p.UserID,
		Platforms: make(map[string]PlatformRecord, len(p.Platforms)),
		Aggregated: AggregatedStats{
			TotalProblemsSolved: p.Aggregated.TotalProblemsSolved,
			StrongestTopics:     nonNil(p.Aggregated.StrongestTopics),
			WeakestTopics:       nonNil(p.Aggregated.WeakestTopics),
			ConsistencyScore:    p.Aggregated.ConsistencyScore,
		},
		CreatedAt: timeutil.NewTime(p.CreatedAt),
		UpdatedAt: timeutil.NewTime(p.UpdatedAt),
	}
	if p.LastFullSyncAt != nil {
		t := timeutil.NewTime(*p.LastFullSyncAt)
		out.LastFullSyncAt = &t
	}
	for platform, rec := range p.Platforms {
		r := PlatformRecord{
			Username:      rec.Username,
			Stats:         toHTTPStats(rec.Stats),
			LastFetchedAt: timeutil.NewTime(rec.LastFetchedAt),
		}
		if rec.FetchError != "" {
			msg := rec.FetchError
			r.FetchError = &msg
		}
		out.Platforms[string(platform)] = r
	}
	return out
}

func toHTTPStats(s *platforms.Stats) *PlatformStats {
	if s == nil {
		return nil
	}
	ps := PlatformStats(*s)
	return &ps
}

func toHTTPSolved(c codingstats.SolvedCounts) SolvedCounts {
	return SolvedCounts{Total: c.Total, Easy: c.Easy, Medium: c.Medium, Hard: c.Hard}
}

func toHTTPStreak(s codingstats.Streak) Streak {
	return Streak{CurrentStreak: s.Current, MaxStreak: s.Max}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
