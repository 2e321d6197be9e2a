package health

import (
	"context"
	"net/http"

	"github.com/kinnected/kinnected/internal/app/system/jsonutil"
	"github.com/kinnected/kinnected/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client  *mongo.Client
	Pinning bool
	Log     *zap.Logger
}

// NewHandler constructs a health Handler. pinning reports whether a pinning
// service is configured and is echoed in the response.
func NewHandler(client *mongo.Client, pinning bool, logger *zap.Logger) *Handler {
	return &Handler{
		Client:  client,
		Pinning: pinning,
		Log:     logger,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Pinning  string `json:"pinning"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "success":true, "data":{"status":"ok","database":"connected","pinning":"enabled"} }
//
// On DB failure: 503 and
//
//	{ "success":false, "error":"database unavailable" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		jsonutil.Error(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	resp := healthResponse{Status: "ok", Database: "connected", Pinning: "disabled"}
	if h.Pinning {
		resp.Pinning = "enabled"
	}
	jsonutil.OK(w, http.StatusOK, resp)
}
