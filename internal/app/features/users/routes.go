// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"
	"github.com/kinnected/kinnected/internal/app/system/ratelimit"
)

// Limits are the per-client-IP limiters for the unauthenticated endpoints.
// A nil limiter disables that limit.
type Limits struct {
	Signup      *ratelimit.Limiter
	Credentials *ratelimit.Limiter
}

// Routes mounts the user API. Mounted under /api/users.
func Routes(h *Handler, limits Limits) chi.Router {
	r := chi.NewRouter()

	r.With(limits.Signup.Middleware).Post("/", h.HandleSignup)
	r.With(limits.Credentials.Middleware).Post("/credentials", h.HandleCredentials)

	// Lookups by external identity
	r.Get("/workspaces/{email}", h.ServeWorkspaces)
	r.Get("/email/{email}", h.ServeByEmail)
	r.Put("/email/{email}", h.HandleUpdateByEmail)
	r.Get("/wallet/{address}", h.ServeByWallet)
	r.Put("/wallet/{address}", h.HandleUpdateByWallet)

	r.Get("/{id}", h.ServeUser)
	r.Put("/{id}", h.HandleUpdateByID)
	r.Post("/{id}/milestones", h.HandleAddMilestone)
	r.Put("/{id}/settings", h.HandleSettings)
	r.Get("/{id}/activity", h.ServeActivity)

	return r
}
