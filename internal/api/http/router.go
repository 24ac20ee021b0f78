package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/repair-sla-service/internal/api/http/handlers"
	"github.com/spec-kit/repair-sla-service/internal/auth"
	"github.com/spec-kit/repair-sla-service/internal/domain"
	"github.com/spec-kit/repair-sla-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Alerts         *handlers.AlertsHandler
	CaseSLA        *handlers.CaseSLAHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
	JobKeyHash     string
	Metrics        *observability.Metrics
	MetricsPath    string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		app.Get(cfg.MetricsPath, adaptor.HTTPHandler(
			promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{}),
		))
	}

	jobs := app.Group("/internal/jobs", auth.RequireJobKey(cfg.JobKeyHash))
	jobs.Post("/sla-alerts", cfg.Alerts.Run)

	admin := app.Group("/admin/jobs")
	admin.Post("/sla-alerts", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Alerts.Run)

	shopAccess := auth.RequireShopAccess()
	shops := app.Group("/shops/:shopID")
	shops.Get("/cases/sla", cfg.AuthMiddleware.Handle, shopAccess, cfg.CaseSLA.ListAssessments)
	shops.Get("/cases/:caseID/timeline", cfg.AuthMiddleware.Handle, shopAccess, cfg.CaseSLA.Timeline)
	shops.Get("/notifications", cfg.AuthMiddleware.Handle, shopAccess, cfg.Notifications.List)
	shops.Post("/notifications/:id/read", cfg.AuthMiddleware.Handle, shopAccess, cfg.Notifications.MarkRead)
}
