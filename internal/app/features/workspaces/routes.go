// internal/app/features/workspaces/routes.go
package workspaces

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the workspace API under /api/workspaces. relationships is
// mounted at /{id}/relationships and reads the workspace id from the route.
func Routes(h *Handler, relationships http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeWorkspace)

	// MEMBERS - list and join
	r.Get("/{id}/members", h.ServeMembers)
	r.Post("/{id}/members", h.HandleJoin)

	// ACTIVITY - family audit trail
	r.Get("/{id}/activity", h.ServeActivity)

	if relationships != nil {
		r.Mount("/{id}/relationships", relationships)
	}

	return r
}
