// internal/app/features/workspaces/handler.go
package workspaces

import (
	apierrors "github.com/kinnected/kinnected/internal/app/features/errors"
	"github.com/kinnected/kinnected/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves workspace creation, membership and activity endpoints.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *apierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

// NewHandler creates a new workspaces Handler.
func NewHandler(db *mongo.Database, errLog *apierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}
