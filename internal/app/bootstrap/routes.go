// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	assignmentsfeature "github.com/dalemusser/placementhub/internal/app/features/assignments"
	auditlogfeature "github.com/dalemusser/placementhub/internal/app/features/auditlog"
	blogsfeature "github.com/dalemusser/placementhub/internal/app/features/blogs"
	companiesfeature "github.com/dalemusser/placementhub/internal/app/features/companies"
	cyclesfeature "github.com/dalemusser/placementhub/internal/app/features/cycles"
	drivesfeature "github.com/dalemusser/placementhub/internal/app/features/drives"
	healthfeature "github.com/dalemusser/placementhub/internal/app/features/health"
	mailfeature "github.com/dalemusser/placementhub/internal/app/features/mail"
	notificationsfeature "github.com/dalemusser/placementhub/internal/app/features/notifications"
	usersfeature "github.com/dalemusser/placementhub/internal/app/features/users"
	userstore "github.com/dalemusser/placementhub/internal/app/store/users"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/ratelimit"
	"github.com/dalemusser/placementhub/internal/app/system/reqinfo"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. Operational endpoints (/health, /metrics) sit at
// the root; every API route is mounted under /api/v1 behind the bearer
// token resolver.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.PlacementHubMongoDatabase
	eng := buildEngines(db, deps.Audit, logger)

	resolver := auth.NewResolver(appCfg.JWTSecret, appCfg.JWTIssuer, userstore.NewFetcher(db), logger)

	r := chi.NewRouter()
	r.Use(reqinfo.Middleware)

	healthHandler := healthfeature.NewHandler(deps.PlacementHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", promhttp.Handler())

	var limiter *ratelimit.Limiter
	if appCfg.RateLimitPerMinute > 0 {
		limiter = ratelimit.New(appCfg.RateLimitPerMinute, time.Minute)
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(resolver.LoadUser)
		api.Use(ratelimit.Middleware(limiter, logger))

		companiesHandler := companiesfeature.NewHandler(eng.outreach, logger)
		api.Mount("/companies", companiesfeature.Routes(companiesHandler))
		api.Mount("/contacts", companiesfeature.ContactRoutes(companiesHandler))
		api.Mount("/exports", companiesfeature.ExportRoutes(companiesHandler))

		cyclesHandler := cyclesfeature.NewHandler(eng.cycles, logger)
		api.Mount("/company-season-cycles", cyclesfeature.Routes(cyclesHandler))

		assignmentsHandler := assignmentsfeature.NewHandler(eng.ownership, logger)
		api.Mount("/assignments", assignmentsfeature.Routes(assignmentsHandler))

		mailHandler := mailfeature.NewHandler(eng.mail, logger)
		api.Mount("/mail/templates", mailfeature.TemplateRoutes(mailHandler))
		api.Mount("/mail/requests", mailfeature.RequestRoutes(mailHandler))

		drivesHandler := drivesfeature.NewHandler(eng.scheduling, logger)
		api.Mount("/seasons", drivesfeature.SeasonRoutes(drivesHandler))
		api.Mount("/drives", drivesfeature.DriveRoutes(drivesHandler))

		usersHandler := usersfeature.NewHandler(eng.accounts, logger)
		api.Mount("/auth", usersfeature.AuthRoutes(usersHandler))
		api.Mount("/admin/users", usersfeature.AdminRoutes(usersHandler))

		notificationsHandler := notificationsfeature.NewHandler(eng.accounts, logger)
		api.Mount("/notifications", notificationsfeature.Routes(notificationsHandler))
		api.Mount("/wishlist", notificationsfeature.WishlistRoutes(notificationsHandler))

		auditHandler := auditlogfeature.NewHandler(eng.accounts, logger)
		api.Mount("/audit", auditlogfeature.Routes(auditHandler))

		blogsHandler := blogsfeature.NewHandler(eng.blogs, logger)
		api.Mount("/blogs", blogsfeature.Routes(blogsHandler))
		api.Mount("/admin/blogs", blogsfeature.ModerationRoutes(blogsHandler))
	})

	logger.Info("routes mounted", zap.String("env", coreCfg.Env), zap.String("api", "/api/v1"))
	return r, nil
}
