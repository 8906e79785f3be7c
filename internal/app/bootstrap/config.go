// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/placementhub/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for placementhub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: PLACEMENTHUB_MONGO_URI, PLACEMENTHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "placement_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer tokens
	{Name: "jwt_secret", Default: "", Desc: "HS256 secret for bearer tokens (required in prod)"},
	{Name: "jwt_issuer", Default: "placementhub", Desc: "Issuer claim expected on bearer tokens"},
	{Name: "jwt_dev_token_ttl", Default: "12h", Desc: "Lifetime of the admin token logged at startup in dev"},

	// Audit logging
	{Name: "audit_log_mode", Default: "all", Desc: "Audit logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Admin bootstrap
	{Name: "bootstrap_admin_email", Default: "", Desc: "Email of the TPO admin to create or promote on startup"},
	{Name: "bootstrap_admin_name", Default: "TPO Admin", Desc: "Display name used when the bootstrap admin is created"},

	// Throttling and background work
	{Name: "rate_limit_per_minute", Default: 300, Desc: "Requests per minute allowed per caller on /api/v1 (0 disables)"},
	{Name: "follow_up_check_interval", Default: "5m", Desc: "How often follow-up reminders are generated (0 disables)"},

	// Handler deadlines
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for list queries and transitions"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for cascades, bulk operations and exports"},
}

// devSecret signs tokens when no secret is configured outside prod.
const devSecret = "dev-only-change-me-please-0123456789ABCDEF"

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, PLACEMENTHUB_* for app) and
// flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "PLACEMENTHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret:    appValues.String("jwt_secret"),
		JWTIssuer:    appValues.String("jwt_issuer"),
		DevTokenTTL:  appValues.Duration("jwt_dev_token_ttl", 12*time.Hour),
		AuditLogMode: strings.ToLower(strings.TrimSpace(appValues.String("audit_log_mode"))),

		BootstrapAdminEmail: strings.TrimSpace(appValues.String("bootstrap_admin_email")),
		BootstrapAdminName:  strings.TrimSpace(appValues.String("bootstrap_admin_name")),

		RateLimitPerMinute:    appValues.Int("rate_limit_per_minute"),
		FollowUpCheckInterval: appValues.Duration("follow_up_check_interval", 5*time.Minute),

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}

	if appCfg.JWTSecret == "" && coreCfg.Env != "prod" {
		logger.Warn("jwt_secret not set; using the development secret")
		appCfg.JWTSecret = devSecret
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
// Returning an error aborts startup before any backends are touched.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid mongo_uri", zap.Error(err))
		return fmt.Errorf("invalid mongo_uri: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)", appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}
	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if coreCfg.Env == "prod" && appCfg.JWTSecret == devSecret {
		return fmt.Errorf("jwt_secret must be changed from the development default in prod")
	}
	if strings.TrimSpace(appCfg.JWTIssuer) == "" {
		return fmt.Errorf("jwt_issuer must not be empty")
	}
	if appCfg.RateLimitPerMinute < 0 {
		return fmt.Errorf("rate_limit_per_minute must not be negative")
	}
	if appCfg.FollowUpCheckInterval < 0 {
		return fmt.Errorf("follow_up_check_interval must not be negative")
	}
	if !auditlog.ValidMode(appCfg.AuditLogMode) {
		return fmt.Errorf("audit_log_mode %q must be one of all, db, log, off", appCfg.AuditLogMode)
	}
	return nil
}
