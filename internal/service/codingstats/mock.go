package codingstats

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"
)

// MockStore implements Store in memory for unit tests.
type MockStore struct {
	mu          sync.Mutex
	profiles    map[string]*Profile
	submissions map[string][]Submission
	problems    map[string]Difficulty
	applies     int

	// ApplyErr, when set, fails Apply without touching the stored profile.
	ApplyErr error
	// ReadErr, when set, fails every read.
	ReadErr error
}

// NewMockStore creates an empty store.
func NewMockStore() *MockStore {
	return &MockStore{
		profiles:    make(map[string]*Profile),
		submissions: make(map[string][]Submission),
		problems:    make(map[string]Difficulty),
	}
}

// PutProfile stores a copy of p.
func (m *MockStore) PutProfile(p *Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = cloneProfile(p)
}

// AddSubmissions appends submissions for userID.
func (m *MockStore) AddSubmissions(userID string, subs ...Submission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[userID] = append(m.submissions[userID], subs...)
}

// SetDifficulty records the difficulty of a problem.
func (m *MockStore) SetDifficulty(problemID string, d Difficulty) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.problems[problemID] = d
}

// Applies reports how many times Apply committed.
func (m *MockStore) Applies() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applies
}

func (m *MockStore) Get(_ context.Context, userID string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (m *MockStore) Apply(_ context.Context, userID string, fn func(*Profile) error) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ApplyErr != nil {
		return nil, m.ApplyErr
	}
	p, ok := m.profiles[userID]
	if ok {
		p = cloneProfile(p)
	} else {
		p = NewProfile(userID, time.Now().UTC())
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	m.profiles[userID] = p
	m.applies++
	return cloneProfile(p), nil
}

func (m *MockStore) ListSubmissions(_ context.Context, userID string) ([]Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	subs := slices.Clone(m.submissions[userID])
	slices.SortStableFunc(subs, func(a, b Submission) int { return b.SubmittedAt.Compare(a.SubmittedAt) })
	return subs, nil
}

func (m *MockStore) Difficulties(_ context.Context, problemIDs []string) (map[string]Difficulty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	out := make(map[string]Difficulty, len(problemIDs))
	for _, id := range problemIDs {
		if d, ok := m.problems[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func cloneProfile(p *Profile) *Profile {
	c := *p
	c.Platforms = maps.Clone(p.Platforms)
	c.Aggregated.StrongestTopics = slices.Clone(p.Aggregated.StrongestTopics)
	c.Aggregated.WeakestTopics = slices.Clone(p.Aggregated.WeakestTopics)
	if p.LastFullSyncAt != nil {
		t := *p.LastFullSyncAt
		c.LastFullSyncAt = &t
	}
	return &c
}

// Compile-time interface check
var _ Store = (*MockStore)(nil)
