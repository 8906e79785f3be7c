// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	auditstore "github.com/dalemusser/placementhub/internal/app/store/audit"
	cyclestore "github.com/dalemusser/placementhub/internal/app/store/cycles"
	notificationstore "github.com/dalemusser/placementhub/internal/app/store/notifications"
	"github.com/dalemusser/placementhub/internal/app/system/auditlog"
	"github.com/dalemusser/placementhub/internal/app/system/indexes"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/app/system/validators"
	"github.com/dalemusser/placementhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client and verifies it with a ping.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize),
		zap.Uint64("min_pool", appCfg.MongoMinPoolSize))

	db := client.Database(appCfg.MongoDatabase)
	return DBDeps{
		PlacementHubMongoClient:   client,
		PlacementHubMongoDatabase: db,
		Workers:                   buildWorkers(db, appCfg, logger),
		Audit:                     auditlog.New(auditstore.New(db), logger, appCfg.AuditLogMode),
	}, nil
}

// buildWorkers assembles the background jobs enabled by appCfg.
func buildWorkers(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) *workers.Runner {
	var jobs []workers.Job
	if appCfg.FollowUpCheckInterval > 0 {
		jobs = append(jobs, workers.FollowUpReminders(
			cyclestore.New(db), notificationstore.New(db), time.Now, logger, appCfg.FollowUpCheckInterval))
	}
	if len(jobs) == 0 {
		return nil
	}
	return workers.NewRunner(logger, jobs...)
}

// EnsureSchema creates collections with their enum validators, then the
// unique and lookup indexes every store relies on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsureAll(ctx, deps.PlacementHubMongoDatabase); err != nil {
		logger.Error("ensure collection validators failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.PlacementHubMongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	if err := auditstore.New(deps.PlacementHubMongoDatabase).EnsureIndexes(ctx); err != nil {
		logger.Error("ensure audit indexes failed", zap.Error(err))
		return err
	}
	return nil
}
