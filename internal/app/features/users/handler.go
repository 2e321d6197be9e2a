// internal/app/features/users/handler.go
package users

import (
	apierrors "github.com/kinnected/kinnected/internal/app/features/errors"
	"github.com/kinnected/kinnected/internal/app/system/auditlog"
	"github.com/kinnected/kinnected/internal/app/system/pinning"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves signup, profile, milestone and settings endpoints.
type Handler struct {
	DB       *mongo.Database
	Pinner   pinning.Pinner
	Log      *zap.Logger
	ErrLog   *apierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

// NewHandler creates a users Handler. A nil pinner disables milestone pinning.
func NewHandler(db *mongo.Database, pinner pinning.Pinner, errLog *apierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	if pinner == nil {
		pinner = pinning.Noop{}
	}
	return &Handler{
		DB:       db,
		Pinner:   pinner,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}
