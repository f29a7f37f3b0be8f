package platforms

import (
	"context"
	"net/http"
	"slices"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	if p, ok := Parse(" LeetCode "); !ok || p != LeetCode {
		t.Fatalf("expected leetcode, got %q %v", p, ok)
	}
	if _, ok := Parse("topcoder"); ok {
		t.Fatal("topcoder is not supported")
	}
}

func TestCountsSolved(t *testing.T) {
	var counted []Platform
	for _, p := range All {
		if p.CountsSolved() {
			counted = append(counted, p)
		}
	}
	if !slices.Equal(counted, []Platform{LeetCode, GeeksforGeeks}) {
		t.Fatalf("unexpected solved-count platforms %v", counted)
	}
}

func TestRegistryOrdersAndReplaces(t *testing.T) {
	first := &MockAdapter{Name: CodeChef}
	replacement := &MockAdapter{Name: CodeChef}
	r := NewRegistry(
		NewHackerRank(),
		first,
		&MockAdapter{Name: LeetCode},
		replacement,
	)

	var got []Platform
	for _, a := range r.Adapters() {
		got = append(got, a.Platform())
	}
	if !slices.Equal(got, []Platform{LeetCode, CodeChef, HackerRank}) {
		t.Fatalf("unexpected order %v", got)
	}
	if a, _ := r.Lookup(CodeChef); a != replacement {
		t.Fatal("later adapter should win")
	}
	if _, ok := r.Lookup(AtCoder); ok {
		t.Fatal("atcoder was not registered")
	}
}

func TestDefaultRegistryCoversAllPlatforms(t *testing.T) {
	r := NewDefaultRegistry(http.DefaultClient, Config{
		Timeout:           time.Second,
		RequestsPerSecond: 1,
		Burst:             1,
		CodeforcesURL:     "http://codeforces.test/",
	})

	var got []Platform
	for _, a := range r.Adapters() {
		got = append(got, a.Platform())
	}
	if !slices.Equal(got, All) {
		t.Fatalf("expected %v, got %v", All, got)
	}
	a, _ := r.Lookup(Codeforces)
	if base := a.(*CodeforcesAdapter).req.baseURL; base != "http://codeforces.test" {
		t.Fatalf("expected trimmed override, got %q", base)
	}
	a, _ = r.Lookup(LeetCode)
	if a.(*LeetCodeAdapter).req.limiter == nil {
		t.Fatal("expected limiter to be configured")
	}
}

func TestMockAdapterScripts(t *testing.T) {
	def := Fail("down")
	m := &MockAdapter{
		Name:    AtCoder,
		Results: map[string]Result{"ok": OK(Stats{Rating: intPtr(10)})},
		Default: &def,
	}

	if r := m.Fetch(context.Background(), "ok"); !r.OK() || r.Handle != "ok" || r.Platform != AtCoder {
		t.Fatalf("unexpected scripted result %+v", r)
	}
	if r := m.Fetch(context.Background(), "other"); r.OK() || r.Failure.Reason != "down" {
		t.Fatalf("expected default failure, got %+v", r)
	}
	if !slices.Equal(m.Calls(), []string{"ok", "other"}) {
		t.Fatalf("unexpected calls %v", m.Calls())
	}
}
