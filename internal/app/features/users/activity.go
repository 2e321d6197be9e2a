package users

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kinnected/kinnected/internal/app/store/audit"
	userstore "github.com/kinnected/kinnected/internal/app/store/users"
	"github.com/kinnected/kinnected/internal/app/system/jsonutil"
	"github.com/kinnected/kinnected/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeActivity returns the most recent audit events about one user.
func (h *Handler) ServeActivity(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad user id", err, "invalid user id")
		return
	}

	limit := int64(DefaultActivityLimit)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			h.ErrLog.LogBadRequest(w, r, "bad activity limit", err, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxActivityLimit)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := userstore.New(h.DB).GetByID(ctx, id); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "user not found", err, "User not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "load user failed", err, "failed to load activity")
		return
	}

	events, err := audit.New(h.DB).GetByUser(ctx, id, limit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query user activity failed", err, "failed to load activity")
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	jsonutil.OK(w, http.StatusOK, events)
}
