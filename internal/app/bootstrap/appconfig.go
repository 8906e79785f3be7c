// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, log level, CORS, body limits);
// everything placementhub itself needs lives here and is passed to most
// lifecycle hooks.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer token configuration
	JWTSecret    string        // HS256 signing secret
	JWTIssuer    string        // expected "iss" claim
	DevTokenTTL  time.Duration // lifetime of the admin token logged in dev
	AuditLogMode string        // all, db, log or off

	// Bootstrap admin (created or promoted on startup when set)
	BootstrapAdminEmail string
	BootstrapAdminName  string

	// Per-caller request allowance on /api/v1 (zero disables)
	RateLimitPerMinute int

	// How often owners are reminded of due follow-ups (zero disables)
	FollowUpCheckInterval time.Duration

	// Handler deadlines (zero keeps the built-in default)
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
