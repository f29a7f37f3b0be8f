package routes

import (
	"net/url"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/codestats/internal/http/v1/handles"
	"github.com/janisto/codestats/internal/http/v1/stats"
	"github.com/janisto/codestats/internal/platform/auth"
	"github.com/janisto/codestats/internal/service/codingstats"
	"github.com/janisto/codestats/internal/service/users"
)

// Register wires all HTTP routes into the provided API router.
func Register(
	api huma.API,
	verifier auth.Verifier,
	statsService codingstats.Service,
	userService users.Service,
) {
	prefix := apiPrefix(api)

	// Apply auth middleware for protected endpoints
	api.UseMiddleware(auth.NewAuthMiddleware(api, verifier))

	stats.Register(api, statsService, prefix)
	handles.Register(api, userService)
}

func apiPrefix(api huma.API) string {
	for _, s := range api.OpenAPI().Servers {
		if u, err := url.Parse(s.URL); err == nil && u.Path != "" {
			return u.Path
		}
	}
	return ""
}
