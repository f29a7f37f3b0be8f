package handles

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/codestats/internal/platform/auth"
	applog "github.com/janisto/codestats/internal/platform/logging"
	"github.com/janisto/codestats/internal/platform/timeutil"
	"github.com/janisto/codestats/internal/service/platforms"
	"github.com/janisto/codestats/internal/service/users"
)

// Register registers handle endpoints.
func Register(api huma.API, svc users.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "get-handles",
		Method:      http.MethodGet,
		Path:        "/handles",
		Summary:     "Get platform handles",
		Description: "Returns the handles used when synchronizing external coding profiles.",
		Tags:        []string{"Handles"},
		Security: []map[string][]string{
			{"bearerAuth": {}},
		},
	}, func(ctx context.Context, _ *HandlesGetInput) (*HandlesGetOutput, error) {
		user := auth.UserFromContext(ctx)

		u, err := svc.Get(ctx, user.UID)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &HandlesGetOutput{Body: toHTTPHandleSet(u)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-handles",
		Method:      http.MethodPatch,
		Path:        "/handles",
		Summary:     "Update platform handles",
		Description: "Sets or removes handles. Platforms not mentioned keep their handle.",
		Tags:        []string{"Handles"},
		Security: []map[string][]string{
			{"bearerAuth": {}},
		},
	}, func(ctx context.Context, input *HandlesUpdateInput) (*HandlesUpdateOutput, error) {
		user := auth.UserFromContext(ctx)
		if len(input.Body.Handles) == 0 {
			return nil, huma.Error422UnprocessableEntity("at least one handle must be provided")
		}

		changes := make(map[platforms.Platform]string, len(input.Body.Handles))
		for key, handle := range input.Body.Handles {
			p, ok := platforms.Parse(key)
			if !ok {
				return nil, huma.Error422UnprocessableEntity("unknown platform " + key)
			}
			changes[p] = handle
		}

		u, err := svc.UpdateHandles(ctx, user.UID, changes)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &HandlesUpdateOutput{Body: toHTTPHandleSet(u)}, nil
	})
}

func mapServiceError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, users.ErrNotFound):
		return huma.Error404NotFound("user not found")
	case errors.Is(err, users.ErrInvalidHandle):
		return huma.Error422UnprocessableEntity(err.Error())
	default:
		applog.LogError(ctx, "handle request failed", err)
		return huma.Error500InternalServerError("internal error")
	}
}

func toHTTPHandleSet(u *users.User) HandleSet {
	set := HandleSet{
		Handles:   make(map[string]string, len(u.Handles)),
		Platforms: make([]string, 0, len(platforms.All)),
	}
	for p, h := range u.Handles {
		set.Handles[string(p)] = h
	}
	for _, p := range platforms.All {
		set.Platforms = append(set.Platforms, string(p))
	}
	if !u.UpdatedAt.IsZero() {
		t := timeutil.NewTime(u.UpdatedAt)
		set.UpdatedAt = &t
	}
	return set
}
