// internal/app/features/relationships/queries.go
package relationships

import (
	"context"
	"net/http"

	relationshipstore "github.com/kinnected/kinnected/internal/app/store/relationships"
	"github.com/kinnected/kinnected/internal/app/system/jsonutil"
	"github.com/kinnected/kinnected/internal/app/system/timeouts"
)

// ServeFamilyMembers lists the active edges touching user_id in the workspace,
// with both endpoint users populated.
func (h *Handler) ServeFamilyMembers(w http.ResponseWriter, r *http.Request) {
	wsID, ok := h.objectID(w, r, "id", true)
	if !ok {
		return
	}
	userID, ok := h.objectID(w, r, "user_id", false)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	edges, err := relationshipstore.New(h.DB).GetFamilyMembers(ctx, userID, wsID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "get family members failed", err, "failed to load family members")
		return
	}
	jsonutil.OK(w, http.StatusOK, edges)
}

// ServeBetween returns the active edge between user1 and user2 in either
// direction.
func (h *Handler) ServeBetween(w http.ResponseWriter, r *http.Request) {
	wsID, ok := h.objectID(w, r, "id", true)
	if !ok {
		return
	}
	u1, ok := h.objectID(w, r, "user1", false)
	if !ok {
		return
	}
	u2, ok := h.objectID(w, r, "user2", false)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rel, err := relationshipstore.New(h.DB).GetRelationship(ctx, u1, u2, wsID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "get relationship failed", err, "failed to load relationship")
		return
	}
	if rel == nil {
		h.ErrLog.LogNotFound(w, r, "no relationship between users", nil, "Relationship not found")
		return
	}
	jsonutil.OK(w, http.StatusOK, rel)
}

// ServeRelationFrom answers what other is to viewer.
func (h *Handler) ServeRelationFrom(w http.ResponseWriter, r *http.Request) {
	wsID, ok := h.objectID(w, r, "id", true)
	if !ok {
		return
	}
	viewer, ok := h.objectID(w, r, "viewer", false)
	if !ok {
		return
	}
	other, ok := h.objectID(w, r, "other", false)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rel, err := relationshipstore.New(h.DB).RelationFrom(ctx, viewer, other, wsID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "relation from failed", err, "failed to load relationship")
		return
	}
	if rel == nil {
		h.ErrLog.LogNotFound(w, r, "no relationship between users", nil, "Relationship not found")
		return
	}
	jsonutil.OK(w, http.StatusOK, rel)
}

// ServeMissingInverses lists edges whose reverse direction is not stored.
func (h *Handler) ServeMissingInverses(w http.ResponseWriter, r *http.Request) {
	wsID, ok := h.objectID(w, r, "id", true)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "missing inverses")
	defer cancel()

	gaps, err := relationshipstore.New(h.DB).MissingInverses(ctx, wsID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "missing inverses failed", err, "failed to load relationships")
		return
	}
	jsonutil.OK(w, http.StatusOK, gaps)
}
