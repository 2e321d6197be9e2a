// internal/app/features/users/settings.go
package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	userstore "github.com/kinnected/kinnected/internal/app/store/users"
	"github.com/kinnected/kinnected/internal/app/system/jsonutil"
	"github.com/kinnected/kinnected/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleSettings merges the request into the user's current settings.
func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad user id", err, "invalid user id")
		return
	}

	var req settingsRequest
	if err := jsonutil.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad settings body", err, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := userstore.New(h.DB)
	u, err := store.GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "settings user not found", err, "User not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user failed", err, "failed to load user")
		return
	}

	settings, err := store.UpdateSettings(ctx, id, req.apply(u.Settings.Normalized()))
	switch {
	case errors.Is(err, userstore.ErrBadSettings):
		h.ErrLog.LogBadRequest(w, r, "invalid settings", err, err.Error())
		return
	case errors.Is(err, userstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "settings user not found", err, "User not found")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "update settings failed", err, "failed to update settings")
		return
	}

	h.AuditLog.SettingsUpdated(ctx, r, id)
	jsonutil.OK(w, http.StatusOK, settings)
}
