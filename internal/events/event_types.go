package events

import (
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketClosed        EventType = "ticket_closed"
	EventInventoryAdjusted   EventType = "inventory_adjusted"
	EventPartLowStock        EventType = "part_low_stock"
	EventConfigUpdated       EventType = "config_updated"
	EventSchemaUpdated       EventType = "schema_updated"
	EventPermissionsUpdated  EventType = "permissions_updated"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	AssetID  string                `json:"asset_id"`
	Priority domain.TicketPriority `json:"priority"`
	Title    string                `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	Rating   int     `json:"rating"`
	Feedback *string `json:"feedback,omitempty"`
}

// InventoryAdjustedPayload payload.
type InventoryAdjustedPayload struct {
	PartID         string                 `json:"part_id"`
	QuantityChange int                    `json:"quantity_change"`
	Type           domain.TransactionType `json:"type"`
	NewStock       int                    `json:"new_stock"`
}

// PartLowStockPayload payload.
type PartLowStockPayload struct {
	PartID   string `json:"part_id"`
	Name     string `json:"name"`
	Stock    int    `json:"stock"`
	MinStock int    `json:"min_stock"`
}

// SchemaUpdatedPayload payload.
type SchemaUpdatedPayload struct {
	FormKey    string `json:"form_key"`
	FieldCount int    `json:"field_count"`
}
