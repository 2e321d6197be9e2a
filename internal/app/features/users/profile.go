// internal/app/features/users/profile.go
package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	userstore "github.com/kinnected/kinnected/internal/app/store/users"
	"github.com/kinnected/kinnected/internal/app/system/jsonutil"
	"github.com/kinnected/kinnected/internal/app/system/timeouts"
	"github.com/kinnected/kinnected/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeUser returns one user by id.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad user id", err, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := userstore.New(h.DB).GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "user not found", err, "User not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user failed", err, "failed to load user")
		return
	}
	jsonutil.OK(w, http.StatusOK, u)
}

// HandleUpdateByID edits the profile of the user with the given id.
func (h *Handler) HandleUpdateByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad user id", err, "invalid user id")
		return
	}
	h.updateProfile(w, r, "id", func(ctx context.Context, s *userstore.Store, upd userstore.ProfileUpdate) (*models.User, error) {
		return s.UpdateProfileByID(ctx, id, upd)
	})
}

// HandleUpdateByEmail edits the profile of the user with the given email.
func (h *Handler) HandleUpdateByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(chi.URLParam(r, "email"))
	if email == "" {
		h.ErrLog.LogBadRequest(w, r, "empty email", nil, "email is required")
		return
	}
	h.updateProfile(w, r, "email", func(ctx context.Context, s *userstore.Store, upd userstore.ProfileUpdate) (*models.User, error) {
		return s.UpdateProfileByEmail(ctx, email, upd)
	})
}

// HandleUpdateByWallet edits the profile of the user with the given wallet address.
func (h *Handler) HandleUpdateByWallet(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(chi.URLParam(r, "address"))
	if address == "" {
		h.ErrLog.LogBadRequest(w, r, "empty wallet address", nil, "wallet address is required")
		return
	}
	h.updateProfile(w, r, "wallet", func(ctx context.Context, s *userstore.Store, upd userstore.ProfileUpdate) (*models.User, error) {
		return s.UpdateProfileByWallet(ctx, address, upd)
	})
}

type profileUpdater func(ctx context.Context, s *userstore.Store, upd userstore.ProfileUpdate) (*models.User, error)

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request, lookup string, apply profileUpdater) {
	var req profileRequest
	if err := jsonutil.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad profile body", err, err.Error())
		return
	}
	upd, fields := req.update()
	if len(fields) == 0 {
		h.ErrLog.LogBadRequest(w, r, "empty profile update", nil, "no profile fields to update")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := apply(ctx, userstore.New(h.DB), upd)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "profile target not found", err, "User not found")
		return
	case errors.Is(err, userstore.ErrNameRequired), errors.Is(err, userstore.ErrMilestoneTitle):
		h.ErrLog.LogBadRequest(w, r, "invalid profile update", err, err.Error())
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "update profile failed", err, "failed to update profile")
		return
	}

	changed := strings.Join(fields, ",")
	h.AuditLog.UserUpdated(ctx, r, u.ID, lookup, changed)
	h.Log.Info("profile updated",
		zap.String("user_id", u.ID.Hex()),
		zap.String("lookup", lookup),
		zap.String("fields", changed))

	jsonutil.OK(w, http.StatusOK, u)
}
