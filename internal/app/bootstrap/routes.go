// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	errorsfeature "github.com/kinnected/kinnected/internal/app/features/errors"
	healthfeature "github.com/kinnected/kinnected/internal/app/features/health"
	relationshipsfeature "github.com/kinnected/kinnected/internal/app/features/relationships"
	usersfeature "github.com/kinnected/kinnected/internal/app/features/users"
	workspacesfeature "github.com/kinnected/kinnected/internal/app/features/workspaces"
	"github.com/kinnected/kinnected/internal/app/store/audit"
	"github.com/kinnected/kinnected/internal/app/system/auditlog"
	"github.com/kinnected/kinnected/internal/app/system/pinning"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. Shared collaborators (error logger, audit
// logger, pinning client) are built once here and handed to each feature.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	errLog := errorsfeature.NewErrorLogger(logger)
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Account:        appCfg.AuditLogAccount,
		Family:         appCfg.AuditLogFamily,
		TrustedProxies: trustedProxies(appCfg),
	})
	pinner := sharedPinner(appCfg)
	_, pinningOff := pinner.(pinning.Noop)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, !pinningOff, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Users: signup, credential checks, profiles, milestones, settings
	usersHandler := usersfeature.NewHandler(db, pinner, errLog, auditLog, logger)
	r.Mount("/api/users", usersfeature.Routes(usersHandler, newUserLimits(appCfg)))

	// Relationships are served both under their workspace and by edge id.
	relHandler := relationshipsfeature.NewHandler(db, errLog, auditLog, logger)
	r.Mount("/api/relationships", relationshipsfeature.Routes(relHandler))

	// Workspaces: creation, membership, activity
	wsHandler := workspacesfeature.NewHandler(db, errLog, auditLog, logger)
	r.Mount("/api/workspaces", workspacesfeature.Routes(wsHandler, relationshipsfeature.WorkspaceRoutes(relHandler)))

	return r, nil
}
