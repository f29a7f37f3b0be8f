package codingstats

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/janisto/codestats/internal/service/platforms"
	"github.com/janisto/codestats/internal/testutil"
)

func setupFirestoreTest(t *testing.T) (*FirestoreStore, *firestore.Client) {
	t.Helper()

	testutil.SkipIfFirestoreUnavailable(t)
	testutil.SetupEmulator(t)
	testutil.ClearFirestore(t)

	client, err := firestore.NewClient(context.Background(), testutil.ProjectID)
	if err != nil {
		t.Fatalf("failed to create Firestore client: %v", err)
	}
	t.Cleanup(func() {
		testutil.ClearFirestore(t)
		_ = client.Close()
	})
	return NewFirestoreStore(client), client
}

func TestFirestoreGetMissingProfile(t *testing.T) {
	store, _ := setupFirestoreTest(t)
	if _, err := store.Get(context.Background(), "u1"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestFirestoreApplyRoundTrip(t *testing.T) {
	store, _ := setupFirestoreTest(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	_, err := store.Apply(ctx, "u1", func(p *Profile) error {
		Merge(p, []platforms.Result{
			{Platform: platforms.LeetCode, Handle: "alice", Stats: &platforms.Stats{TotalSolved: ptr(12), Ranking: ptr(4000)}},
			{Platform: platforms.AtCoder, Handle: "alice", Stats: &platforms.Stats{Rank: ptr("1 Dan")}},
			{Platform: platforms.HackerRank, Handle: "alice", Failure: &platforms.Failure{Reason: "not implemented"}},
		}, now)
		return nil
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	lc := got.Platforms[platforms.LeetCode]
	if lc.Stats == nil || *lc.Stats.TotalSolved != 12 || lc.Stats.Rating != nil {
		t.Fatalf("unexpected leetcode slot %+v", lc)
	}
	if *got.Platforms[platforms.AtCoder].Stats.Rank != "1 Dan" {
		t.Fatal("expected atcoder rank")
	}
	hr := got.Platforms[platforms.HackerRank]
	if hr.Stats != nil || hr.FetchError != "not implemented" {
		t.Fatalf("unexpected hackerrank slot %+v", hr)
	}
	if got.Aggregated.TotalProblemsSolved != 12 {
		t.Fatalf("unexpected total %d", got.Aggregated.TotalProblemsSolved)
	}
	if got.LastFullSyncAt == nil || !got.LastFullSyncAt.Equal(now) {
		t.Fatalf("unexpected lastFullSyncAt %v", got.LastFullSyncAt)
	}
}

func TestFirestoreApplyErrorWritesNothing(t *testing.T) {
	store, _ := setupFirestoreTest(t)
	boom := errors.New("boom")
	if _, err := store.Apply(context.Background(), "u1", func(*Profile) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := store.Get(context.Background(), "u1"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected no profile, got %v", err)
	}
}

func TestFirestoreApplyConcurrentWritersKeepBothPlatforms(t *testing.T) {
	store, _ := setupFirestoreTest(t)
	ctx := context.Background()
	now := time.Now().UTC()

	var wg sync.WaitGroup
	for _, p := range []platforms.Platform{platforms.LeetCode, platforms.GeeksforGeeks} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Apply(ctx, "u1", func(prof *Profile) error {
				Merge(prof, []platforms.Result{{Platform: p, Handle: "x", Stats: &platforms.Stats{TotalSolved: ptr(5)}}}, now)
				return nil
			})
			if err != nil {
				t.Errorf("apply %s: %v", p, err)
			}
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Platforms) != 2 || got.Aggregated.TotalProblemsSolved != 10 {
		t.Fatalf("lost update: %+v", got)
	}
}

func TestFirestoreSubmissionsAndDifficulties(t *testing.T) {
	store, client := setupFirestoreTest(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	subs := client.Collection(submissionsCollection)
	for i, uid := range []string{"u1", "u1", "u2"} {
		_, _, err := subs.Add(ctx, map[string]any{
			"user_id":      uid,
			"problem_id":   "p1",
			"status":       "accepted",
			"submitted_at": base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	problems := client.Collection(problemsCollection)
	for id, d := range map[string]string{"p1": "Easy", "p2": "HARD", "p3": "legendary"} {
		if _, err := problems.Doc(id).Set(ctx, map[string]any{"difficulty": d}); err != nil {
			t.Fatal(err)
		}
	}

	list, err := store.ListSubmissions(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || !list[0].SubmittedAt.After(list[1].SubmittedAt) {
		t.Fatalf("unexpected submissions %+v", list)
	}

	diff, err := store.Difficulties(ctx, []string{"p1", "p2", "p3", "missing"})
	if err != nil {
		t.Fatalf("difficulties: %v", err)
	}
	if len(diff) != 2 || diff["p1"] != Easy || diff["p2"] != Hard {
		t.Fatalf("unexpected difficulties %v", diff)
	}
}

func TestFirestoreApplyLeavesUntouchedSlotsAlone(t *testing.T) {
	store, client := setupFirestoreTest(t)
	ctx := context.Background()
	docRef := client.Collection(profilesCollection).Doc("u1")

	_, err := docRef.Set(ctx, map[string]any{
		"platforms": map[string]any{
			"legacy_site": map[string]any{"username": "old", "score": 7},
			"codechef": map[string]any{
				"username": "chef",
				"stats":    map[string]any{"rating": 1500},
				"badge":    "gold",
			},
		},
		"owner_note": "keep me",
		"created_at": time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	_, err = store.Apply(ctx, "u1", func(p *Profile) error {
		Merge(p, []platforms.Result{
			{Platform: platforms.LeetCode, Handle: "alice", Stats: &platforms.Stats{TotalSolved: ptr(3)}},
		}, now)
		return nil
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	snap, err := docRef.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, path := range [][]string{
		{"platforms", "legacy_site", "score"},
		{"platforms", "codechef", "badge"},
		{"owner_note"},
	} {
		if _, err := snap.DataAtPath(path); err != nil {
			t.Errorf("field %v was lost: %v", path, err)
		}
	}
	if _, err := snap.DataAtPath([]string{"platforms", "codechef", "last_fetched_at"}); err == nil {
		t.Error("codechef slot must not be rewritten")
	}
	created, err := snap.DataAt("created_at")
	if err != nil || !created.(time.Time).Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("created_at changed: %v %v", created, err)
	}
	if total, _ := snap.DataAtPath([]string{"aggregated_stats", "total_problems_solved"}); total != int64(3) {
		t.Errorf("unexpected total %v", total)
	}
}

func TestProfileUpdateWritesChangedSlotsOnly(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p := NewProfile("u1", created)
	p.Platforms[platforms.CodeChef] = PlatformRecord{Username: "chef", Stats: &platforms.Stats{Rating: ptr(1500)}}
	p.Platforms[platforms.AtCoder] = PlatformRecord{Username: "ac", FetchError: "boom"}
	before := maps.Clone(p.Platforms)

	Merge(p, []platforms.Result{
		{Platform: platforms.AtCoder, Handle: "ac", Stats: &platforms.Stats{Rating: ptr(1200)}},
		{Platform: platforms.LeetCode, Handle: "alice", Stats: &platforms.Stats{TotalSolved: ptr(3)}},
	}, created.Add(time.Hour))

	data, paths := profileUpdate(p, before, false)
	got := make([]string, 0, len(paths))
	for _, fp := range paths {
		got = append(got, strings.Join(fp, "."))
	}
	want := []string{"aggregated_stats", "last_full_sync_at", "updated_at", "platforms.leetcode", "platforms.atcoder"}
	if !slices.Equal(got, want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	if _, ok := data["created_at"]; ok {
		t.Fatal("created_at must only be written for new profiles")
	}
	if _, ok := data["platforms"].(map[string]any)["codechef"]; ok {
		t.Fatal("unchanged slot must not be written")
	}

	if _, paths := profileUpdate(NewProfile("u2", created), nil, true); len(paths) != 4 {
		t.Fatalf("new profile paths = %v", paths)
	}
}
