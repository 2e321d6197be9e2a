package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/kinnected/kinnected/internal/app/store/users"
	"github.com/kinnected/kinnected/internal/app/system/jsonutil"
	"github.com/kinnected/kinnected/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const badCredentials = "invalid email or password"

// HandleCredentials checks an email and password for the external sign-in
// flow and returns the user on success. Unknown emails and wrong passwords
// get the same 401 response.
func (h *Handler) HandleCredentials(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := jsonutil.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad credentials body", err, err.Error())
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		h.ErrLog.LogBadRequest(w, r, "credentials incomplete", nil, "email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := userstore.New(h.DB).GetByEmail(ctx, email)
	if errors.Is(err, userstore.ErrNotFound) {
		h.AuditLog.CredentialsRejected(ctx, r, nil, email, "user not found")
		h.ErrLog.LogUnauthorized(w, r, "credentials for unknown email", err, badCredentials)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "credentials lookup failed", err, "failed to verify credentials")
		return
	}

	if err := userstore.VerifyPassword(*u, req.Password); err != nil {
		h.AuditLog.CredentialsRejected(ctx, r, &u.ID, email, "wrong password")
		h.ErrLog.LogUnauthorized(w, r, "credentials rejected", err, badCredentials)
		return
	}

	h.AuditLog.CredentialsVerified(ctx, r, u.ID)
	h.Log.Debug("credentials verified", zap.String("user_id", u.ID.Hex()))
	jsonutil.OK(w, http.StatusOK, u)
}
