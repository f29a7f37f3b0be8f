package platforms

import (
	"context"
	"sync"
)

// MockAdapter is a scripted Adapter for tests. Results are looked up by handle;
// unknown handles get Default, or a generic failure when Default is nil.
type MockAdapter struct {
	Name    Platform
	Results map[string]Result
	Default *Result
	// Block, when non-nil, is received from before answering.
	Block chan struct{}

	mu    sync.Mutex
	calls []string
}

func (m *MockAdapter) Platform() Platform { return m.Name }

func (m *MockAdapter) Fetch(ctx context.Context, handle string) Result {
	m.mu.Lock()
	m.calls = append(m.calls, handle)
	m.mu.Unlock()

	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return failed(m.Name, handle, unavailable("request failed: %v", ctx.Err()))
		}
	}
	if r, ok := m.Results[handle]; ok {
		r.Platform, r.Handle = m.Name, handle
		return r
	}
	if m.Default != nil {
		r := *m.Default
		r.Platform, r.Handle = m.Name, handle
		return r
	}
	return failed(m.Name, handle, unavailable("no scripted result"))
}

// Calls returns the handles fetched so far.
func (m *MockAdapter) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// OK builds a successful Result for scripting mocks.
func OK(s Stats) Result {
	return Result{Stats: &s}
}

// Fail builds a SourceUnavailable Result for scripting mocks.
func Fail(reason string) Result {
	return Result{Failure: &Failure{Kind: SourceUnavailable, Reason: reason}}
}

var _ Adapter = (*MockAdapter)(nil)
