package codingstats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/janisto/codestats/internal/platform/lock"
	applog "github.com/janisto/codestats/internal/platform/logging"
	"github.com/janisto/codestats/internal/service/platforms"
	"github.com/janisto/codestats/internal/service/users"
)

var defaultConcurrency = len(platforms.All)

// UserReader provides user records.
type UserReader interface {
	Get(ctx context.Context, userID string) (*users.User, error)
}

// Syncer implements Service.
type Syncer struct {
	users       UserReader
	store       Store
	registry    *platforms.Registry
	locker      lock.Locker
	concurrency int
	now         func() time.Time
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLocker sets the lock used to serialize syncs of one user.
func WithLocker(l lock.Locker) Option {
	return func(s *Syncer) {
		if l != nil {
			s.locker = l
		}
	}
}

// WithConcurrency bounds the number of adapters fetching at the same time.
func WithConcurrency(n int) Option {
	return func(s *Syncer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSyncer creates a Syncer. Without WithLocker an in-process lock that fails
// fast on contention is used.
func NewSyncer(userReader UserReader, store Store, registry *platforms.Registry, opts ...Option) *Syncer {
	s := &Syncer{
		users:       userReader,
		store:       store,
		registry:    registry,
		locker:      lock.NewLocal(0),
		concurrency: defaultConcurrency,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncUserStats fetches every platform the user has a handle for and merges the
// outcome into the stored profile.
//
// Fetch failures never fail the call; they are recorded on the platform slot.
// Errors are ErrUserNotFound, ErrStorage, ErrSyncInProgress or a context error.
func (s *Syncer) SyncUserStats(ctx context.Context, userID string) (*Profile, error) {
	ctx = applog.WithFields(ctx, zap.String("user_id", userID))

	release, err := s.locker.Lock(ctx, "sync:"+userID)
	switch {
	case errors.Is(err, lock.ErrLocked):
		return nil, ErrSyncInProgress
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		// The profile write is transactional, so a sync without the lock is
		// still consistent.
		applog.LogWarn(ctx, "sync lock unavailable, continuing without it", zap.Error(err))
	default:
		defer release()
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: load user: %w", ErrStorage, err)
	}

	results := s.fetchAll(ctx, user)
	now := s.now()

	profile, err := s.store.Apply(ctx, userID, func(p *Profile) error {
		Merge(p, results, now)
		return nil
	})
	if err != nil {
		applog.LogAuditEvent(ctx, "sync", userID, "coding_profile", userID, applog.AuditFailure,
			map[string]any{"error": "storage_failure"})
		return nil, fmt.Errorf("%w: save profile: %w", ErrStorage, err)
	}

	s.audit(ctx, userID, results)
	return profile, nil
}

// fetchAll runs the adapters for the user's configured handles. Results keep
// platform order regardless of completion order.
func (s *Syncer) fetchAll(ctx context.Context, user *users.User) []platforms.Result {
	configured := user.ConfiguredHandles()
	results := make([]platforms.Result, len(configured))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, p := range configured {
		handle := user.Handles[p]
		adapter, ok := s.registry.Lookup(p)
		if !ok {
			results[i] = platforms.Result{
				Platform: p,
				Handle:   handle,
				Failure:  &platforms.Failure{Kind: platforms.NotImplemented, Reason: "not implemented"},
			}
			continue
		}
		g.Go(func() error {
			r := adapter.Fetch(ctx, handle)
			r.Platform, r.Handle = p, handle
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if !r.OK() {
			applog.LogWarn(ctx, "platform fetch failed",
				zap.String("platform", string(r.Platform)),
				zap.String("handle", r.Handle),
				zap.String("reason", failureReason(r)),
			)
		}
	}
	return results
}

func (s *Syncer) audit(ctx context.Context, userID string, results []platforms.Result) {
	var failed []string
	for _, r := range results {
		if !r.OK() {
			failed = append(failed, string(r.Platform))
		}
	}
	outcome := applog.AuditSuccess
	switch {
	case len(failed) > 0 && len(failed) == len(results):
		outcome = applog.AuditFailure
	case len(failed) > 0:
		outcome = applog.AuditPartial
	}
	details := map[string]any{"platforms": len(results)}
	if len(failed) > 0 {
		details["failed"] = failed
	}
	applog.LogAuditEvent(ctx, "sync", userID, "coding_profile", userID, outcome, details)
}

// GetStats returns the stored profile together with home site solved counts
// and the current streak.
func (s *Syncer) GetStats(ctx context.Context, userID string) (*StatsView, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: load profile: %w", ErrStorage, err)
	}
	return &StatsView{Profile: profile, Solved: snap.Solved, Streak: snap.Streak}, nil
}

// GetAchievements evaluates the catalog against live counts. Nothing is persisted.
func (s *Syncer) GetAchievements(ctx context.Context, userID string) (*AchievementReport, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &AchievementReport{
		Achievements: EvaluateAchievements(snap),
		Solved:       snap.Solved,
		Streak:       snap.Streak,
	}, nil
}

// ListSubmissions returns the user's submissions, newest first.
func (s *Syncer) ListSubmissions(ctx context.Context, userID string) ([]Submission, error) {
	subs, err := s.store.ListSubmissions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list submissions: %w", ErrStorage, err)
	}
	return subs, nil
}

func (s *Syncer) snapshot(ctx context.Context, userID string) (Snapshot, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return Snapshot{}, ErrUserNotFound
		}
		return Snapshot{}, fmt.Errorf("%w: load user: %w", ErrStorage, err)
	}

	difficulties, err := s.store.Difficulties(ctx, user.SolvedProblems)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: load problems: %w", ErrStorage, err)
	}
	subs, err := s.store.ListSubmissions(ctx, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: list submissions: %w", ErrStorage, err)
	}
	timestamps := make([]time.Time, len(subs))
	for i, sub := range subs {
		timestamps[i] = sub.SubmittedAt
	}

	return Snapshot{
		Solved: CountSolved(user.SolvedProblems, difficulties),
		Streak: ComputeStreak(timestamps, s.now()),
	}, nil
}

// Compile-time interface check
var _ Service = (*Syncer)(nil)
