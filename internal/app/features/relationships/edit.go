// internal/app/features/relationships/edit.go
package relationships

import (
	"context"
	"errors"
	"net/http"

	relationshipstore "github.com/kinnected/kinnected/internal/app/store/relationships"
	workspacestore "github.com/kinnected/kinnected/internal/app/store/workspaces"
	"github.com/kinnected/kinnected/internal/app/system/jsonutil"
	"github.com/kinnected/kinnected/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var errNotMembers = errors.New("both users must be members of the workspace")

// HandleCreate records a directed edge: from_user_id is the relation_type of
// to_user_id. Both users must belong to the workspace.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	wsID, ok := h.objectID(w, r, "id", true)
	if !ok {
		return
	}

	var req createRequest
	if err := jsonutil.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad relationship body", err, err.Error())
		return
	}
	from, err := primitive.ObjectIDFromHex(req.FromUserID)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad from user id", err, "invalid from_user_id")
		return
	}
	to, err := primitive.ObjectIDFromHex(req.ToUserID)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad to user id", err, "invalid to_user_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ws, err := workspacestore.New(h.DB).GetByID(ctx, wsID)
	if errors.Is(err, workspacestore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "relationship workspace not found", err, "Workspace not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load workspace failed", err, "failed to create relationship")
		return
	}
	if !ws.HasMember(from) || !ws.HasMember(to) {
		h.ErrLog.LogBadRequest(w, r, "relationship between non-members", errNotMembers, errNotMembers.Error())
		return
	}

	rel, err := relationshipstore.New(h.DB).Create(ctx, wsID, from, to, req.RelationType)
	switch {
	case errors.Is(err, relationshipstore.ErrBadRelationType), errors.Is(err, relationshipstore.ErrSelfRelationship):
		h.ErrLog.LogBadRequest(w, r, "invalid relationship", err, err.Error())
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "create relationship failed", err, "failed to create relationship")
		return
	}

	h.AuditLog.RelationshipCreated(ctx, r, wsID, rel.ID, from, to, rel.RelationType, sourceManual)
	h.Log.Info("relationship created",
		zap.String("workspace_id", wsID.Hex()),
		zap.String("relationship_id", rel.ID.Hex()))

	jsonutil.OK(w, http.StatusCreated, rel)
}

// HandleDeactivate soft-deletes an edge.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	relID, ok := h.objectID(w, r, "relID", true)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := relationshipstore.New(h.DB)
	rel, err := store.GetByID(ctx, relID)
	if errors.Is(err, relationshipstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "relationship not found", err, "Relationship not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load relationship failed", err, "failed to delete relationship")
		return
	}

	if err := store.Deactivate(ctx, relID); err != nil {
		if errors.Is(err, relationshipstore.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "relationship not found", err, "Relationship not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "deactivate relationship failed", err, "failed to delete relationship")
		return
	}

	h.AuditLog.RelationshipDeactivated(ctx, r, rel.WorkspaceID, rel.ID)
	h.Log.Info("relationship deactivated",
		zap.String("workspace_id", rel.WorkspaceID.Hex()),
		zap.String("relationship_id", rel.ID.Hex()))

	jsonutil.OK(w, http.StatusOK, map[string]string{"id": relID.Hex()})
}
