// internal/app/features/relationships/routes.go
package relationships

import "github.com/go-chi/chi/v5"

// WorkspaceRoutes serves edges scoped to one workspace. It is mounted under
// /api/workspaces/{id}/relationships and reads {id} from the parent route.
func WorkspaceRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeFamilyMembers)
	r.Post("/", h.HandleCreate)

	r.Get("/between", h.ServeBetween)
	r.Get("/from", h.ServeRelationFrom)
	r.Get("/missing-inverses", h.ServeMissingInverses)

	return r
}

// Routes serves edge operations by edge id. Mounted under /api/relationships.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/labels", h.ServeLabels)
	r.Delete("/{relID}", h.HandleDeactivate)
	return r
}
