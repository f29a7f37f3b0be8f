// Package lock serializes work per key, either inside one process or across
// instances through Redis.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLocked is returned when the key stays held for longer than the caller's
// wait budget.
var ErrLocked = errors.New("lock is held")

// Locker acquires an exclusive lock on key. The returned release function is
// safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// Local is an in-process Locker. Waiting callers queue on a per-key channel.
type Local struct {
	wait time.Duration

	mu   sync.Mutex
	held map[string]chan struct{}
}

// NewLocal returns a Local that waits up to wait for a held key. A zero wait
// fails immediately with ErrLocked; a negative wait blocks until ctx is done.
func NewLocal(wait time.Duration) *Local {
	return &Local{wait: wait, held: make(map[string]chan struct{})}
}

func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	var deadline <-chan time.Time
	if l.wait > 0 {
		timer := time.NewTimer(l.wait)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		l.mu.Lock()
		ch, busy := l.held[key]
		if !busy {
			done := make(chan struct{})
			l.held[key] = done
			l.mu.Unlock()
			return l.releaser(key, done), nil
		}
		l.mu.Unlock()

		if l.wait == 0 {
			return nil, ErrLocked
		}
		select {
		case <-ch:
		case <-deadline:
			return nil, ErrLocked
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (l *Local) releaser(key string, done chan struct{}) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			if l.held[key] == done {
				delete(l.held, key)
			}
			l.mu.Unlock()
			close(done)
		})
	}
}

var _ Locker = (*Local)(nil)
