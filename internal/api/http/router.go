package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/volunteer-hub/internal/api/http/handlers"
	"github.com/spec-kit/volunteer-hub/internal/auth"
	"github.com/spec-kit/volunteer-hub/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Opportunities  *handlers.OpportunitiesHandler
	SignUps        *handlers.SignUpsHandler
	Organizations  *handlers.OrganizationsHandler
	Dashboards     *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Get("/verify-email", cfg.Auth.VerifyEmail)
	authGroup.Post("/login", cfg.Auth.Login)

	authenticated := cfg.AuthMiddleware.Handle
	volunteer := auth.RequireRole(domain.RoleVolunteer)
	orgAdmin := auth.RequireRole(domain.RoleOrgAdmin)
	superAdmin := auth.RequireRole(domain.RoleSuperAdmin)

	app.Get("/opportunities", cfg.Opportunities.List)
	app.Get("/opportunities/:id", cfg.AuthMiddleware.Optional, cfg.Opportunities.Get)
	app.Post("/opportunities", authenticated, orgAdmin, cfg.Opportunities.Create)

	app.Post("/signups", authenticated, volunteer, cfg.SignUps.Create)
	app.Get("/me/signups", authenticated, volunteer, cfg.SignUps.ListMine)

	orgs := app.Group("/organizations", authenticated, superAdmin)
	orgs.Get("/", cfg.Organizations.List)
	orgs.Post("/", cfg.Organizations.Create)
	orgs.Patch("/:id/approval", cfg.Organizations.Decide)

	dash := app.Group("/dashboard", authenticated)
	dash.Get("/volunteer", volunteer, cfg.Dashboards.Volunteer)
	dash.Get("/org-admin", orgAdmin, cfg.Dashboards.OrgAdmin)
	dash.Get("/super-admin", superAdmin, cfg.Dashboards.SuperAdmin)
}
