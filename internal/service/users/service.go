package users

import (
	"context"
	"errors"
	"maps"
	"strings"
	"time"

	"github.com/janisto/codestats/internal/service/platforms"
)

// Service errors
var (
	ErrNotFound      = errors.New("user not found")
	ErrInvalidHandle = errors.New("invalid platform handle")
)

const maxHandleLength = 64

// User is the part of a user record this service reads and edits: the
// per-platform handles and the ids of problems solved on the home site.
type User struct {
	ID             string
	Handles        map[platforms.Platform]string
	SolvedProblems []string
	UpdatedAt      time.Time
}

// ConfiguredHandles returns the non-empty handles in platform evaluation order.
func (u *User) ConfiguredHandles() []platforms.Platform {
	var out []platforms.Platform
	for _, p := range platforms.All {
		if strings.TrimSpace(u.Handles[p]) != "" {
			out = append(out, p)
		}
	}
	return out
}

// Service defines user record operations.
//
// UpdateHandles merges changes into the stored handle set. An empty value
// removes the platform's handle. Other fields of the record are never written.
type Service interface {
	Get(ctx context.Context, userID string) (*User, error)
	UpdateHandles(ctx context.Context, userID string, changes map[platforms.Platform]string) (*User, error)
}

// normalizeHandles trims values and rejects unknown platforms and malformed handles.
func normalizeHandles(changes map[platforms.Platform]string) (map[platforms.Platform]string, error) {
	out := make(map[platforms.Platform]string, len(changes))
	for p, h := range changes {
		if !p.Valid() {
			return nil, errors.Join(ErrInvalidHandle, errors.New("unknown platform "+string(p)))
		}
		h = strings.TrimSpace(h)
		if len(h) > maxHandleLength || strings.ContainsAny(h, " \t\r\n/?#") {
			return nil, errors.Join(ErrInvalidHandle, errors.New("malformed handle for "+string(p)))
		}
		out[p] = h
	}
	return out, nil
}

func applyHandles(current, changes map[platforms.Platform]string) map[platforms.Platform]string {
	next := maps.Clone(current)
	if next == nil {
		next = make(map[platforms.Platform]string, len(changes))
	}
	for p, h := range changes {
		if h == "" {
			delete(next, p)
			continue
		}
		next[p] = h
	}
	return next
}

// categorizeError converts errors to audit-safe categories.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidHandle):
		return "invalid_handle"
	default:
		return "internal_error"
	}
}
