// internal/app/features/users/workspaces.go
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
)

// ServeWorkspaces lists the workspaces of the user with the given email.
func (h *Handler) ServeWorkspaces(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(chi.URLParam(r, "email"))
	if email == "" {
		h.ErrLog.LogBadRequest(w, r, "empty email", nil, "email is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := userstore.New(h.DB).ListWorkspaces(ctx, email)
	if errors.Is(err, userstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "workspaces user not found", err, "User not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list workspaces failed", err, "failed to list workspaces")
		return
	}
	jsonutil.OK(w, http.StatusOK, list)
}
