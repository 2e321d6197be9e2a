// internal/app/features/relationships/handler.go
package relationships

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/kinnected/kinnected/internal/app/features/errors"
	"github.com/kinnected/kinnected/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves family relationship queries and edits.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *apierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

// NewHandler creates a new relationships Handler.
func NewHandler(db *mongo.Database, errLog *apierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}

// objectID parses an id from the route (when fromRoute) or the query string.
// On failure it writes a 400 naming the parameter and returns false.
func (h *Handler) objectID(w http.ResponseWriter, r *http.Request, name string, fromRoute bool) (primitive.ObjectID, bool) {
	var raw string
	if fromRoute {
		raw = chi.URLParam(r, name)
	} else {
		raw = r.URL.Query().Get(name)
	}
	if raw == "" {
		h.ErrLog.LogBadRequest(w, r, "missing id parameter", nil, name+" is required")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad id parameter", err, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}
