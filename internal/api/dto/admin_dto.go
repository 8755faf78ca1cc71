package dto

import (
	"github.com/spec-kit/maintenance-service/internal/domain"
)

// FormFieldDTO mirrors a schema field on the wire.
type FormFieldDTO struct {
	Key         string           `json:"key"`
	Label       string           `json:"label"`
	Type        domain.FieldType `json:"type"`
	Required    bool             `json:"required"`
	Options     []string         `json:"options,omitempty"`
	Placeholder string           `json:"placeholder,omitempty"`
	Description string           `json:"description,omitempty"`
}

// SaveSchemaRequest payload for PUT /admin/schemas/:key.
type SaveSchemaRequest struct {
	Fields []FormFieldDTO `json:"fields"`
}

// SchemaResponse response.
type SchemaResponse struct {
	ID      string         `json:"id"`
	FormKey string         `json:"form_key"`
	Fields  []FormFieldDTO `json:"fields"`
}

// PermissionEntryDTO is one matrix cell.
type PermissionEntryDTO struct {
	Role    domain.Role `json:"role"`
	Key     string      `json:"key"`
	Allowed bool        `json:"allowed"`
}

// UpdatePermissionsRequest replaces the full matrix.
type UpdatePermissionsRequest struct {
	Entries []PermissionEntryDTO `json:"entries"`
}

// SystemConfigDTO is the admin-owned runtime configuration document.
type SystemConfigDTO struct {
	GeofenceRadiusMeters   float64 `json:"geofence_radius_meters"`
	TechnicianRangeKm      float64 `json:"technician_range_km"`
	SLAHighPriorityHours   int     `json:"sla_high_priority_hours"`
	SLAMediumPriorityHours int     `json:"sla_medium_priority_hours"`
	SLALowPriorityHours    int     `json:"sla_low_priority_hours"`
	MaxImageCount          int     `json:"max_image_count"`
	EnableAIAnalysis       bool    `json:"enable_ai_analysis"`
	MaintenanceMode        bool    `json:"maintenance_mode"`
}
