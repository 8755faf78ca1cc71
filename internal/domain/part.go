package domain

import "time"

// Part is a spare part tracked by the inventory ledger. Stock is mutated
// exclusively through ledger deltas and never drops below zero.
type Part struct {
	ID       string
	Name     string
	Category string
	Stock    int
	MinStock int
	Price    float64
	ImageURL string
}

// LowStock reports whether stock is at or below the reorder threshold.
func (p *Part) LowStock() bool {
	return p.Stock <= p.MinStock
}

// TransactionType classifies inventory movements.
type TransactionType string

const (
	TransactionTypeIn  TransactionType = "IN"
	TransactionTypeOut TransactionType = "OUT"
)

// InventoryTransaction is an immutable ledger entry. QuantityChange records
// the requested signed delta, not the clamped effective change.
type InventoryTransaction struct {
	ID             string
	PartID         string
	QuantityChange int
	Type           TransactionType
	TicketID       *string
	PerformedBy    string
	CreatedAt      time.Time
}
