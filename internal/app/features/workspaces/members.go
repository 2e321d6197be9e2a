// internal/app/features/workspaces/members.go
package workspaces

import (
	"context"
	"errors"
	"net/http"

	membershipstore "github.com/kinnected/kinnected/internal/app/store/memberships"
	workspacestore "github.com/kinnected/kinnected/internal/app/store/workspaces"
	"github.com/kinnected/kinnected/internal/app/system/jsonutil"
	"github.com/kinnected/kinnected/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeMembers lists the workspace's members with their user documents.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := h.workspaceID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	members, err := workspacestore.New(h.DB).ListMembers(ctx, id)
	if errors.Is(err, workspacestore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "workspace not found", err, "Workspace not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list members failed", err, "failed to list members")
		return
	}
	jsonutil.OK(w, http.StatusOK, members)
}

// HandleJoin adds a user to the workspace. When the request names the
// inviter and the relationship to them, the join also records a family edge
// from the new member to the inviter.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	wsID, ok := h.workspaceID(w, r)
	if !ok {
		return
	}

	var req joinRequest
	if err := jsonutil.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad join body", err, err.Error())
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad join user id", err, "invalid user_id")
		return
	}
	in := membershipstore.JoinInput{
		WorkspaceID:           wsID,
		UserID:                userID,
		Role:                  req.Role,
		RelationshipToInviter: req.RelationshipToInviter,
	}
	if req.InvitedBy != "" {
		inviter, err := primitive.ObjectIDFromHex(req.InvitedBy)
		if err != nil {
			h.ErrLog.LogBadRequest(w, r, "bad inviter id", err, "invalid invited_by")
			return
		}
		in.InvitedBy = &inviter
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "join workspace")
	defer cancel()

	res, err := membershipstore.New(h.DB).Join(ctx, in)
	switch {
	case errors.Is(err, membershipstore.ErrBadRole),
		errors.Is(err, membershipstore.ErrBadRelationType),
		errors.Is(err, membershipstore.ErrSelfRelationship),
		errors.Is(err, membershipstore.ErrRelationNoInviter):
		h.ErrLog.LogBadRequest(w, r, "invalid join", err, err.Error())
		return
	case errors.Is(err, membershipstore.ErrWorkspaceNotFound):
		h.ErrLog.LogNotFound(w, r, "join workspace not found", err, "Workspace not found")
		return
	case errors.Is(err, membershipstore.ErrUserNotFound):
		h.ErrLog.LogNotFound(w, r, "join user not found", err, "User not found")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "join workspace failed", err, "failed to join workspace")
		return
	}

	h.AuditLog.MemberJoined(ctx, r, wsID, userID, in.InvitedBy, res.Membership.Role)
	fields := []zap.Field{
		zap.String("workspace_id", wsID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.String("role", res.Membership.Role),
	}
	if rel := res.Relationship; rel != nil {
		h.AuditLog.RelationshipCreated(ctx, r, wsID, rel.ID, rel.FromUserID, rel.ToUserID, rel.RelationType, "invitation")
		fields = append(fields, zap.String("relationship_id", rel.ID.Hex()))
	}
	h.Log.Info("member joined", fields...)

	jsonutil.OK(w, http.StatusCreated, res)
}
