// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/kinnected/kinnected/internal/app/system/pinning"
	"github.com/kinnected/kinnected/internal/app/system/timeouts"
	"github.com/kinnected/kinnected/internal/app/system/workers"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeoutConfig(appCfg))

	cur := timeouts.Current()
	logger.Info("handler timeouts configured",
		zap.Duration("short", cur.Short),
		zap.Duration("medium", cur.Medium),
		zap.Duration("long", cur.Long),
		zap.Duration("pin", cur.Pin))

	pinner := sharedPinner(appCfg)
	if _, off := pinner.(pinning.Noop); off || appCfg.PinBackfillInterval <= 0 {
		return nil
	}

	workersMu.Lock()
	defer workersMu.Unlock()
	if pinBackfill == nil {
		pinBackfill = workers.NewPinBackfill(deps.MongoDatabase, pinner, logger, appCfg.PinBackfillInterval, cur.Pin)
		pinBackfill.Start()
	}
	return nil
}

func timeoutConfig(appCfg AppConfig) timeouts.Config {
	return timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
		Pin:    appCfg.TimeoutPin,
	}
}
