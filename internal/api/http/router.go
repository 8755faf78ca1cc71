package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/http/handlers"
	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Inventory      *handlers.InventoryHandler
	Assets         *handlers.AssetsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Users.Login)

	api := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/transition", cfg.Tickets.Transition)
	tickets.Post("/:id/verify-site", cfg.Tickets.VerifySite)
	tickets.Get("/:id/suggestion", cfg.Tickets.SuggestDiagnosis)

	parts := api.Group("/inventory/parts")
	parts.Get("", cfg.Inventory.ListParts)
	parts.Post("", cfg.Inventory.CreatePart)
	parts.Get("/:id", cfg.Inventory.GetPart)
	parts.Post("/:id/restock", cfg.Inventory.Restock)
	parts.Post("/:id/adjust", cfg.Inventory.Adjust)
	parts.Get("/:id/transactions", cfg.Inventory.ListTransactions)
	parts.Get("/:id/reconciliation", cfg.Inventory.Reconcile)

	assets := api.Group("/assets")
	assets.Get("", cfg.Assets.ListAssets)
	assets.Get("/:id", cfg.Assets.GetAsset)
	assets.Post("", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Assets.CreateAsset)
	assets.Put("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Assets.UpdateAsset)
	assets.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Assets.DeleteAsset)

	api.Get("/users/technicians", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Users.ListTechnicians)

	admin := api.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Post("/users", cfg.Users.CreateUser)
	admin.Get("/schemas", cfg.Admin.ListSchemas)
	admin.Get("/schemas/:key", cfg.Admin.GetSchema)
	admin.Put("/schemas/:key", cfg.Admin.SaveSchema)
	admin.Get("/permissions", cfg.Admin.ListPermissions)
	admin.Put("/permissions", cfg.Admin.UpdatePermissions)
	admin.Get("/config", cfg.Admin.GetConfig)
	admin.Put("/config", cfg.Admin.SaveConfig)
}
