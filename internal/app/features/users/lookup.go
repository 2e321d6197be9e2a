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
)

// ServeByEmail returns the user with the given email.
func (h *Handler) ServeByEmail(w http.ResponseWriter, r *http.Request) {
	h.serveLookup(w, r, "email", func(ctx context.Context, s *userstore.Store, v string) (*models.User, error) {
		return s.GetByEmail(ctx, v)
	})
}

// ServeByWallet returns the user with the given wallet address.
func (h *Handler) ServeByWallet(w http.ResponseWriter, r *http.Request) {
	h.serveLookup(w, r, "address", func(ctx context.Context, s *userstore.Store, v string) (*models.User, error) {
		return s.GetByWallet(ctx, v)
	})
}

func (h *Handler) serveLookup(w http.ResponseWriter, r *http.Request, param string,
	find func(context.Context, *userstore.Store, string) (*models.User, error)) {
	v := strings.TrimSpace(chi.URLParam(r, param))
	if v == "" {
		h.ErrLog.LogBadRequest(w, r, "empty user lookup", nil, param+" is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := find(ctx, userstore.New(h.DB), v)
	if errors.Is(err, userstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "user lookup miss", err, "User not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "user lookup failed", err, "failed to load user")
		return
	}
	jsonutil.OK(w, http.StatusOK, u)
}
