// internal/app/features/workspaces/create.go
package workspaces

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	workspacestore "github.com/kinnected/kinnected/internal/app/store/workspaces"
	"github.com/kinnected/kinnected/internal/app/system/jsonutil"
	"github.com/kinnected/kinnected/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleCreate creates a workspace with the owner as its first admin.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := jsonutil.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad workspace body", err, err.Error())
		return
	}
	ownerID, err := primitive.ObjectIDFromHex(req.OwnerID)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad owner id", err, "invalid owner_id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create workspace")
	defer cancel()

	ws, err := workspacestore.New(h.DB).Create(ctx, req.Name, ownerID)
	switch {
	case errors.Is(err, workspacestore.ErrNameRequired):
		h.ErrLog.LogBadRequest(w, r, "workspace without name", err, err.Error())
		return
	case errors.Is(err, workspacestore.ErrOwnerNotFound):
		h.ErrLog.LogNotFound(w, r, "workspace owner not found", err, "Owner not found")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "create workspace failed", err, "failed to create workspace")
		return
	}

	h.AuditLog.WorkspaceCreated(ctx, r, ownerID, ws.ID, ws.Name)
	h.Log.Info("workspace created",
		zap.String("workspace_id", ws.ID.Hex()),
		zap.String("owner_id", ownerID.Hex()))

	jsonutil.OK(w, http.StatusCreated, ws)
}

// ServeWorkspace returns one workspace by id.
func (h *Handler) ServeWorkspace(w http.ResponseWriter, r *http.Request) {
	id, ok := h.workspaceID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ws, err := workspacestore.New(h.DB).GetByID(ctx, id)
	if errors.Is(err, workspacestore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "workspace not found", err, "Workspace not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load workspace failed", err, "failed to load workspace")
		return
	}
	jsonutil.OK(w, http.StatusOK, ws)
}

// workspaceID parses the {id} route parameter, writing a 400 on failure.
func (h *Handler) workspaceID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad workspace id", err, "invalid workspace id")
		return primitive.NilObjectID, false
	}
	return id, true
}
