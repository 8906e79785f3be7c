// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down DB connections and other resources.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Workers != nil {
		deps.Workers.Stop()
	}
	if err := deps.Audit.Wait(ctx); err != nil {
		logger.Warn("audit writes still pending at shutdown", zap.Error(err))
	}
	if deps.PlacementHubMongoClient != nil {
		logger.Info("disconnecting placementhub MongoDB client")
		if err := deps.PlacementHubMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
