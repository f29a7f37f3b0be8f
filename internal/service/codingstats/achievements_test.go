package codingstats

import "testing"

func findAchievement(t *testing.T, list []Achievement, id string) Achievement {
	t.Helper()
	for _, a := range list {
		if a.ID == id {
			return a
		}
	}
	t.Fatalf("achievement %q missing", id)
	return Achievement{}
}

func TestEvaluateAchievementsEmptySnapshot(t *testing.T) {
	list := EvaluateAchievements(Snapshot{})
	if len(list) != len(catalog) {
		t.Fatalf("expected %d entries, got %d", len(catalog), len(list))
	}
	for _, a := range list {
		if a.Unlocked {
			t.Errorf("%s should be locked", a.ID)
		}
	}
	if first := findAchievement(t, list, "first-solve"); first.Progress != nil || first.Target != nil {
		t.Fatal("first-solve should not expose progress")
	}
}

func TestEasyMasterThreshold(t *testing.T) {
	tests := []struct {
		easy     int
		unlocked bool
	}{
		{49, false},
		{50, true},
		{73, true},
	}
	for _, tt := range tests {
		a := findAchievement(t, EvaluateAchievements(Snapshot{Solved: SolvedCounts{Total: tt.easy, Easy: tt.easy}}), "easy-master")
		if a.Unlocked != tt.unlocked {
			t.Errorf("easy=%d: unlocked=%v, want %v", tt.easy, a.Unlocked, tt.unlocked)
		}
		if *a.Progress != tt.easy || *a.Target != 50 {
			t.Errorf("easy=%d: progress %d/%d", tt.easy, *a.Progress, *a.Target)
		}
	}
}

func TestStreakAchievements(t *testing.T) {
	list := EvaluateAchievements(Snapshot{Streak: Streak{Current: 8, Max: 8}, Solved: SolvedCounts{Total: 1}})

	if !findAchievement(t, list, "first-solve").Unlocked {
		t.Error("first-solve should unlock with one solve")
	}
	if !findAchievement(t, list, "streak-7").Unlocked {
		t.Error("streak-7 should unlock at 8 days")
	}
	month := findAchievement(t, list, "streak-30")
	if month.Unlocked || *month.Progress != 8 {
		t.Errorf("unexpected streak-30 %+v", month)
	}
}

func TestCountSolved(t *testing.T) {
	diff := map[string]Difficulty{"p1": Easy, "p2": Medium, "p3": Hard, "p4": Easy}
	got := CountSolved([]string{"p1", "p2", "p3", "p4", "p1", "unknown", ""}, diff)
	want := SolvedCounts{Total: 5, Easy: 2, Medium: 1, Hard: 1}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestParseDifficulty(t *testing.T) {
	if d, ok := ParseDifficulty(" Medium "); !ok || d != Medium {
		t.Fatalf("got %q %v", d, ok)
	}
	if _, ok := ParseDifficulty("insane"); ok {
		t.Fatal("expected unknown difficulty rejected")
	}
}
