package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/service"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// AdminHandler exposes the administrative surface: form schemas, the
// permission matrix, and the runtime configuration singleton.
type AdminHandler struct {
	schemas     *service.SchemaService
	permissions *service.PermissionService
	configs     *service.ConfigService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(schemas *service.SchemaService, permissions *service.PermissionService, configs *service.ConfigService) *AdminHandler {
	return &AdminHandler{schemas: schemas, permissions: permissions, configs: configs}
}

// ListSchemas GET /admin/schemas.
func (h *AdminHandler) ListSchemas(c *fiber.Ctx) error {
	schemas, err := h.schemas.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.SchemaResponse, 0, len(schemas))
	for i := range schemas {
		items = append(items, schemaResponse(&schemas[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetSchema GET /admin/schemas/:key.
func (h *AdminHandler) GetSchema(c *fiber.Ctx) error {
	schema, err := h.schemas.GetByKey(c.UserContext(), c.Params("key"))
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("form schema", map[string]any{"form_key": c.Params("key")})
		}
		return err
	}
	return c.JSON(fiber.Map{"data": schemaResponse(schema)})
}

// SaveSchema PUT /admin/schemas/:key.
func (h *AdminHandler) SaveSchema(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.SaveSchemaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}

	schema := &domain.FormSchema{FormKey: c.Params("key")}
	for _, field := range req.Fields {
		schema.Fields = append(schema.Fields, domain.FormField{
			Key:         field.Key,
			Label:       field.Label,
			Type:        field.Type,
			Required:    field.Required,
			Options:     field.Options,
			Placeholder: field.Placeholder,
			Description: field.Description,
		})
	}
	if err := h.schemas.Save(c.UserContext(), actor.Role, actor.ID, schema); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": schemaResponse(schema)})
}

// ListPermissions GET /admin/permissions.
func (h *AdminHandler) ListPermissions(c *fiber.Ctx) error {
	entries, err := h.permissions.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.PermissionEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.PermissionEntryDTO{
			Role:    entry.Role,
			Key:     entry.Key,
			Allowed: entry.Allowed,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdatePermissions PUT /admin/permissions.
func (h *AdminHandler) UpdatePermissions(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}
	entries := make([]domain.PermissionEntry, 0, len(req.Entries))
	for _, entry := range req.Entries {
		entries = append(entries, domain.PermissionEntry{
			Role:    entry.Role,
			Key:     entry.Key,
			Allowed: entry.Allowed,
		})
	}
	if err := h.permissions.Update(c.UserContext(), actor.Role, actor.ID, entries); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"entry_count": len(entries)}})
}

// GetConfig GET /admin/config.
func (h *AdminHandler) GetConfig(c *fiber.Ctx) error {
	cfg, err := h.configs.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": configDTO(cfg)})
}

// SaveConfig PUT /admin/config.
func (h *AdminHandler) SaveConfig(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.SystemConfigDTO
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}
	cfg := domain.SystemConfig{
		GeofenceRadiusMeters:   req.GeofenceRadiusMeters,
		TechnicianRangeKm:      req.TechnicianRangeKm,
		SLAHighPriorityHours:   req.SLAHighPriorityHours,
		SLAMediumPriorityHours: req.SLAMediumPriorityHours,
		SLALowPriorityHours:    req.SLALowPriorityHours,
		MaxImageCount:          req.MaxImageCount,
		EnableAIAnalysis:       req.EnableAIAnalysis,
		MaintenanceMode:        req.MaintenanceMode,
	}
	if err := h.configs.Save(c.UserContext(), actor.Role, actor.ID, cfg); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": configDTO(cfg)})
}

func schemaResponse(schema *domain.FormSchema) dto.SchemaResponse {
	resp := dto.SchemaResponse{ID: schema.ID, FormKey: schema.FormKey}
	for _, field := range schema.Fields {
		resp.Fields = append(resp.Fields, dto.FormFieldDTO{
			Key:         field.Key,
			Label:       field.Label,
			Type:        field.Type,
			Required:    field.Required,
			Options:     field.Options,
			Placeholder: field.Placeholder,
			Description: field.Description,
		})
	}
	return resp
}

func configDTO(cfg domain.SystemConfig) dto.SystemConfigDTO {
	return dto.SystemConfigDTO{
		GeofenceRadiusMeters:   cfg.GeofenceRadiusMeters,
		TechnicianRangeKm:      cfg.TechnicianRangeKm,
		SLAHighPriorityHours:   cfg.SLAHighPriorityHours,
		SLAMediumPriorityHours: cfg.SLAMediumPriorityHours,
		SLALowPriorityHours:    cfg.SLALowPriorityHours,
		MaxImageCount:          cfg.MaxImageCount,
		EnableAIAnalysis:       cfg.EnableAIAnalysis,
		MaintenanceMode:        cfg.MaintenanceMode,
	}
}
