// internal/app/features/users/milestones.go
package users

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	userstore "github.com/kinnected/kinnected/internal/app/store/users"
	"github.com/kinnected/kinnected/internal/app/system/jsonutil"
	"github.com/kinnected/kinnected/internal/app/system/pinning"
	"github.com/kinnected/kinnected/internal/app/system/timeouts"
	"github.com/kinnected/kinnected/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleAddMilestone appends a milestone and mirrors it to IPFS when pinning
// is configured. A pin failure is logged and audited; the milestone is kept.
func (h *Handler) HandleAddMilestone(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad user id", err, "invalid user id")
		return
	}

	var req milestoneInput
	if err := jsonutil.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad milestone body", err, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := userstore.New(h.DB)
	m, err := store.AddMilestone(ctx, id, req.model())
	switch {
	case errors.Is(err, userstore.ErrMilestoneTitle):
		h.ErrLog.LogBadRequest(w, r, "milestone without title", err, err.Error())
		return
	case errors.Is(err, userstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "milestone user not found", err, "User not found")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "add milestone failed", err, "failed to add milestone")
		return
	}

	m.PinCID = h.pinMilestone(r, store, id, m)
	h.AuditLog.MilestoneAdded(r.Context(), r, id, m.ID, m.PinCID)

	jsonutil.OK(w, http.StatusCreated, m)
}

// pinMilestone returns the content id, or "" when pinning is off or failed.
func (h *Handler) pinMilestone(r *http.Request, store *userstore.Store, userID primitive.ObjectID, m models.Milestone) string {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Pin())
	defer cancel()

	doc := models.MilestoneRecord{UserID: userID.Hex(), Milestone: m, PinnedAt: time.Now().UTC()}
	cid, err := h.Pinner.PinJSON(ctx, m.PinName(), doc)
	if errors.Is(err, pinning.ErrDisabled) {
		return ""
	}
	if err != nil {
		h.Log.Warn("milestone pin failed",
			zap.String("user_id", userID.Hex()),
			zap.String("milestone_id", m.ID),
			zap.Error(err))
		h.AuditLog.MilestonePinFailed(r.Context(), r, userID, m.ID, err.Error())
		return ""
	}

	if err := store.SetMilestonePin(ctx, userID, m.ID, cid); err != nil {
		h.Log.Warn("record milestone pin failed",
			zap.String("user_id", userID.Hex()),
			zap.String("milestone_id", m.ID),
			zap.String("cid", cid),
			zap.Error(err))
		return ""
	}
	return cid
}
