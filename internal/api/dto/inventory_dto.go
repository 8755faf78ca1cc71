package dto

import (
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// CreatePartRequest payload.
type CreatePartRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Stock    int     `json:"stock"`
	MinStock int     `json:"min_stock"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
}

// RestockRequest payload.
type RestockRequest struct {
	Quantity int `json:"quantity"`
}

// AdjustStockRequest payload for signed corrections.
type AdjustStockRequest struct {
	Delta int `json:"delta"`
}

// PartResponse response.
type PartResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Stock    int     `json:"stock"`
	MinStock int     `json:"min_stock"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url,omitempty"`
	LowStock bool    `json:"low_stock"`
}

// TransactionResponse is one ledger entry.
type TransactionResponse struct {
	ID             string                 `json:"id"`
	PartID         string                 `json:"part_id"`
	QuantityChange int                    `json:"quantity_change"`
	Type           domain.TransactionType `json:"type"`
	TicketID       *string                `json:"ticket_id,omitempty"`
	PerformedBy    string                 `json:"performed_by"`
	CreatedAt      time.Time              `json:"created_at"`
}

// ReconciliationResponse reports ledger-vs-stock drift.
type ReconciliationResponse struct {
	PartID      string `json:"part_id"`
	Stock       int    `json:"stock"`
	LedgerTotal int    `json:"ledger_total"`
	Drift       int    `json:"drift"`
	Consistent  bool   `json:"consistent"`
}
