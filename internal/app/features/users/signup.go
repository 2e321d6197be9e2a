// internal/app/features/users/signup.go
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

// HandleSignup creates a user identified by an email, a wallet address, or both.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := jsonutil.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad signup body", err, err.Error())
		return
	}

	email := strings.TrimSpace(req.Email)
	wallet := strings.TrimSpace(req.WalletAddress)
	if email == "" && wallet == "" {
		h.ErrLog.LogBadRequest(w, r, "signup without identity", nil, "email or wallet_address is required")
		return
	}
	if req.Password != "" && len(req.Password) < MinPasswordLen {
		h.ErrLog.LogBadRequest(w, r, "signup password too short", nil, "password must be at least 8 characters")
		return
	}
	if len(req.Password) > MaxPasswordLen {
		h.ErrLog.LogBadRequest(w, r, "signup password too long", nil, "password must be at most 72 bytes")
		return
	}
	if email != "" && wallet == "" && req.Password == "" && req.AuthMethod == "" {
		h.ErrLog.LogBadRequest(w, r, "email signup without password", nil, "password is required for email signup")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := userstore.New(h.DB).Create(ctx, userstore.NewUser{
		Email:         email,
		WalletAddress: wallet,
		Password:      req.Password,
		AuthMethod:    req.AuthMethod,
		Name:          req.Name,
		Gender:        req.Gender,
		ProfileImage:  req.ProfileImage,
	})
	switch {
	case errors.Is(err, userstore.ErrNameRequired), errors.Is(err, userstore.ErrBadAuthMethod),
		errors.Is(err, userstore.ErrPasswordTooLong):
		h.ErrLog.LogBadRequest(w, r, "invalid signup", err, err.Error())
		return
	case errors.Is(err, userstore.ErrDuplicateEmail), errors.Is(err, userstore.ErrDuplicateWallet):
		h.ErrLog.LogConflict(w, r, "signup duplicate identity", err, err.Error())
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "create user failed", err, "failed to create user")
		return
	}

	h.AuditLog.UserCreated(ctx, r, u.ID, u.AuthMethod)
	h.Log.Info("user created", zap.String("user_id", u.ID.Hex()), zap.String("auth_method", u.AuthMethod))

	jsonutil.OK(w, http.StatusCreated, u)
}
