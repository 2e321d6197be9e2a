// internal/app/features/workspaces/activity.go
package workspaces

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/kinnected/kinnected/internal/app/store/audit"
	workspacestore "github.com/kinnected/kinnected/internal/app/store/workspaces"
	"github.com/kinnected/kinnected/internal/app/system/jsonutil"
	"github.com/kinnected/kinnected/internal/app/system/timeouts"
)

type activityPage struct {
	Events []audit.Event `json:"events"`
	Total  int64         `json:"total"`
	Limit  int64         `json:"limit"`
	Offset int64         `json:"offset"`
}

// ServeActivity returns the workspace's audit events, newest first.
func (h *Handler) ServeActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.workspaceID(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit", DefaultActivityLimit)
	if err != nil || limit <= 0 {
		h.ErrLog.LogBadRequest(w, r, "bad activity limit", err, "limit must be a positive integer")
		return
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		h.ErrLog.LogBadRequest(w, r, "bad activity offset", err, "offset must be a non-negative integer")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := workspacestore.New(h.DB).GetByID(ctx, id); err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "workspace not found", err, "Workspace not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "load workspace failed", err, "failed to load activity")
		return
	}

	store := audit.New(h.DB)
	events, err := store.GetByWorkspace(ctx, id, limit, offset)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query activity failed", err, "failed to load activity")
		return
	}
	total, err := store.CountByFilter(ctx, audit.QueryFilter{WorkspaceID: &id})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count activity failed", err, "failed to load activity")
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	jsonutil.OK(w, http.StatusOK, activityPage{Events: events, Total: total, Limit: limit, Offset: offset})
}

func queryInt(r *http.Request, key string, def int64) (int64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.ParseInt(v, 10, 64)
}
