package platforms

import (
	"context"
	"net/http"
	"slices"
	"time"

	"golang.org/x/time/rate"
)

// Adapter fetches one platform's statistics for a handle. Implementations
// report every problem through Result.Failure and must honor ctx.
type Adapter interface {
	Platform() Platform
	Fetch(ctx context.Context, handle string) Result
}

// Registry is an ordered set of adapters, at most one per platform.
type Registry struct {
	adapters []Adapter
}

// NewRegistry orders adapters by platform evaluation order. A later adapter
// for the same platform replaces an earlier one.
func NewRegistry(adapters ...Adapter) *Registry {
	byPlatform := make(map[Platform]Adapter, len(adapters))
	for _, a := range adapters {
		byPlatform[a.Platform()] = a
	}
	ordered := make([]Adapter, 0, len(byPlatform))
	for _, a := range byPlatform {
		ordered = append(ordered, a)
	}
	slices.SortFunc(ordered, func(a, b Adapter) int {
		return a.Platform().Order() - b.Platform().Order()
	})
	return &Registry{adapters: ordered}
}

// Adapters returns the adapters in evaluation order.
func (r *Registry) Adapters() []Adapter {
	return slices.Clone(r.adapters)
}

// Lookup returns the adapter for p.
func (r *Registry) Lookup(p Platform) (Adapter, bool) {
	for _, a := range r.adapters {
		if a.Platform() == p {
			return a, true
		}
	}
	return nil, false
}

// Config holds the outbound settings for the production registry.
type Config struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
	LeetCodeURL       string
	CodeforcesURL     string
	CodeChefURL       string
	AtCoderURL        string
	GeeksforGeeksURL  string
}

// NewDefaultRegistry builds all six adapters. Each networked platform gets its
// own token bucket so a slow source cannot starve the others.
func NewDefaultRegistry(client *http.Client, cfg Config) *Registry {
	opts := func(baseURL string) []Option {
		o := []Option{WithTimeout(cfg.Timeout), WithUserAgent(cfg.UserAgent)}
		if baseURL != "" {
			o = append(o, WithBaseURL(baseURL))
		}
		if cfg.RequestsPerSecond > 0 {
			o = append(o, WithLimiter(rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.Burst, 1))))
		}
		return o
	}
	return NewRegistry(
		NewLeetCode(client, opts(cfg.LeetCodeURL)...),
		NewCodeforces(client, opts(cfg.CodeforcesURL)...),
		NewCodeChef(client, opts(cfg.CodeChefURL)...),
		NewAtCoder(client, opts(cfg.AtCoderURL)...),
		NewGeeksforGeeks(client, opts(cfg.GeeksforGeeksURL)...),
		NewHackerRank(),
	)
}
