package dto

import (
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	AssetID     string                `json:"asset_id"`
	Priority    domain.TicketPriority `json:"priority"`
	FaultType   string                `json:"fault_type"`
	Lat         float64               `json:"lat"`
	Lng         float64               `json:"lng"`
	FormData    map[string]any        `json:"form_data"`
	ImageURL    *string               `json:"image_url"`
}

// PartUsageRequest is one consumed-part line on a resolution.
type PartUsageRequest struct {
	PartID   string `json:"part_id"`
	Quantity int    `json:"quantity"`
}

// TransitionRequest payload for POST /tickets/:id/transition.
type TransitionRequest struct {
	Status    domain.TicketStatus `json:"status"`
	FormKey   string              `json:"form_key"`
	FormData  map[string]any      `json:"form_data"`
	Diagnosis *string             `json:"diagnosis"`
	PartsUsed []PartUsageRequest  `json:"parts_used"`
	Rating    *int                `json:"rating"`
	Feedback  *string             `json:"feedback"`
}

// VerifySiteRequest carries the technician's reported position.
type VerifySiteRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// VerifySiteResponse reports the geofence outcome.
type VerifySiteResponse struct {
	InRange        bool    `json:"in_range"`
	DistanceMeters float64 `json:"distance_meters"`
}

// TicketSummary response.
type TicketSummary struct {
	ID          string                `json:"id"`
	ExternalKey string                `json:"external_key"`
	Title       string                `json:"title"`
	AssetID     string                `json:"asset_id"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	Overdue     bool                  `json:"overdue"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID           string                `json:"id"`
	ExternalKey  string                `json:"external_key"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	AssetID      string                `json:"asset_id"`
	TechnicianID *string               `json:"technician_id"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	FaultType    string                `json:"fault_type"`
	Lat          float64               `json:"lat"`
	Lng          float64               `json:"lng"`
	FormData     map[string]any        `json:"form_data"`
	Diagnosis    *string               `json:"diagnosis"`
	ImageURL     *string               `json:"image_url"`
	Rating       *int                  `json:"rating"`
	Feedback     *string               `json:"feedback"`
	Overdue      bool                  `json:"overdue"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	ClosedAt     *time.Time            `json:"closed_at"`
}

// SuggestionResponse is advisory diagnosis output.
type SuggestionResponse struct {
	Diagnosis string                `json:"diagnosis"`
	Severity  domain.TicketPriority `json:"severity"`
}
