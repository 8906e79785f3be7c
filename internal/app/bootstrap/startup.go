// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/placementhub/internal/app/store/users"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	admin, err := ensureBootstrapAdmin(ctx, deps, appCfg.BootstrapAdminEmail, appCfg.BootstrapAdminName, logger)
	if err != nil {
		return err
	}

	if admin != nil && coreCfg.Env == "dev" {
		token, err := auth.IssueToken(appCfg.JWTSecret, appCfg.JWTIssuer, admin.ID, appCfg.DevTokenTTL)
		if err != nil {
			return fmt.Errorf("issue dev token: %w", err)
		}
		logger.Info("dev bearer token for bootstrap admin",
			zap.String("email", admin.Email),
			zap.Duration("ttl", appCfg.DevTokenTTL),
			zap.String("token", token))
	}

	if deps.Workers != nil {
		deps.Workers.Start()
	}
	return nil
}

// ensureBootstrapAdmin makes sure email belongs to an active TPO admin,
// creating the user or promoting and reactivating an existing one. An empty
// email skips the step and returns nil.
func ensureBootstrapAdmin(ctx context.Context, deps DBDeps, email, name string, logger *zap.Logger) (*models.User, error) {
	if email == "" {
		return nil, nil
	}
	users := userstore.New(deps.PlacementHubMongoDatabase)

	u, err := users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		if name == "" {
			name = email
		}
		created, err := users.Create(ctx, models.User{
			Email:        email,
			Name:         name,
			Role:         models.RoleAdmin,
			AuthProvider: "bootstrap",
			IsActive:     true,
		})
		if err != nil {
			return nil, fmt.Errorf("create bootstrap admin: %w", err)
		}
		logger.Info("created bootstrap admin", zap.String("email", created.Email))
		return &created, nil
	case err != nil:
		return nil, fmt.Errorf("load bootstrap admin: %w", err)
	}

	if u.Role == models.RoleAdmin && u.IsActive {
		return &u, nil
	}
	// SetRole also reactivates.
	if err := users.SetRole(ctx, u.ID, models.RoleAdmin, nil); err != nil {
		return nil, fmt.Errorf("promote bootstrap admin: %w", err)
	}
	logger.Info("promoted bootstrap admin",
		zap.String("email", u.Email),
		zap.String("previous_role", string(u.Role)),
		zap.Bool("was_active", u.IsActive))

	u, err = users.GetByID(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("reload bootstrap admin: %w", err)
	}
	return &u, nil
}
