package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/inventory"
	"github.com/spec-kit/maintenance-service/internal/permission"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// InventoryService fronts the stock ledger. It implements the workflow
// engine's parts consumer, so ticket-driven consumption and manual admin
// adjustments emit the same events.
type InventoryService struct {
	ledger       *inventory.Ledger
	parts        repository.PartRepository
	transactions repository.InventoryTransactionRepository
	gate         permissionChecker
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// NewInventoryService constructs the service.
func NewInventoryService(parts repository.PartRepository, transactions repository.InventoryTransactionRepository, gate permissionChecker, dispatcher events.Dispatcher, logger *zap.Logger) *InventoryService {
	return &InventoryService{
		ledger:       inventory.NewLedger(parts, transactions),
		parts:        parts,
		transactions: transactions,
		gate:         gate,
		dispatcher:   dispatcher,
		logger:       logger,
	}
}

// Consume records parts leaving stock for a ticket. Called by the workflow
// engine during resolution; not permission-gated here because the transition
// itself already was.
func (s *InventoryService) Consume(ctx context.Context, partID string, quantity int, ticketID, actorID string) (*domain.Part, error) {
	if quantity <= 0 {
		return nil, apperrors.NewValidationFailed("consumed quantity must be positive", map[string]any{
			"quantity": "must be greater than zero",
		})
	}
	part, err := s.ledger.Consume(ctx, partID, quantity, ticketID, actorID)
	if err != nil {
		return nil, mapPartError(err, partID)
	}
	s.publishAdjusted(ctx, actorID, part, -quantity, domain.TransactionTypeOut)
	s.checkLowStock(ctx, actorID, part)
	return part, nil
}

// Return puts consumed parts back into stock after a failed ticket commit.
// Not permission-gated: it only ever reverses a consume the workflow engine
// already authorized.
func (s *InventoryService) Return(ctx context.Context, partID string, quantity int, ticketID, actorID string) (*domain.Part, error) {
	if quantity <= 0 {
		return nil, apperrors.NewValidationFailed("returned quantity must be positive", map[string]any{
			"quantity": "must be greater than zero",
		})
	}
	part, err := s.ledger.Return(ctx, partID, quantity, ticketID, actorID)
	if err != nil {
		return nil, mapPartError(err, partID)
	}
	s.publishAdjusted(ctx, actorID, part, quantity, domain.TransactionTypeIn)
	return part, nil
}

// Restock records parts entering stock.
func (s *InventoryService) Restock(ctx context.Context, actor domain.Role, actorID, partID string, quantity int) (*domain.Part, error) {
	if !s.gate.IsAllowed(actor, permission.KeyInventoryAdjust) {
		return nil, apperrors.NewForbidden("stock adjustment requires the inventory.adjust permission")
	}
	if quantity <= 0 {
		return nil, apperrors.NewValidationFailed("restocked quantity must be positive", map[string]any{
			"quantity": "must be greater than zero",
		})
	}
	part, err := s.ledger.Restock(ctx, partID, quantity, actorID)
	if err != nil {
		return nil, mapPartError(err, partID)
	}
	s.publishAdjusted(ctx, actorID, part, quantity, domain.TransactionTypeIn)
	return part, nil
}

// Adjust applies an arbitrary signed correction, e.g. after a physical count.
func (s *InventoryService) Adjust(ctx context.Context, actor domain.Role, actorID, partID string, delta int) (*domain.Part, error) {
	if !s.gate.IsAllowed(actor, permission.KeyInventoryAdjust) {
		return nil, apperrors.NewForbidden("stock adjustment requires the inventory.adjust permission")
	}
	if delta == 0 {
		return nil, apperrors.NewValidationFailed("adjustment delta must be non-zero", map[string]any{
			"delta": "must not be zero",
		})
	}
	txType := domain.TransactionTypeIn
	if delta < 0 {
		txType = domain.TransactionTypeOut
	}
	part, err := s.ledger.AdjustBy(ctx, partID, delta, actorID)
	if err != nil {
		return nil, mapPartError(err, partID)
	}
	s.publishAdjusted(ctx, actorID, part, delta, txType)
	s.checkLowStock(ctx, actorID, part)
	return part, nil
}

// CreatePart registers a new spare part.
func (s *InventoryService) CreatePart(ctx context.Context, actor domain.Role, part *domain.Part) error {
	if !s.gate.IsAllowed(actor, permission.KeyInventoryAdjust) {
		return apperrors.NewForbidden("part creation requires the inventory.adjust permission")
	}
	fieldErrors := map[string]any{}
	if part.Name == "" {
		fieldErrors["name"] = "value is required"
	}
	if part.Stock < 0 {
		fieldErrors["current_stock"] = "must not be negative"
	}
	if part.MinStock < 0 {
		fieldErrors["min_stock"] = "must not be negative"
	}
	if len(fieldErrors) > 0 {
		return apperrors.NewValidationFailed("part payload invalid", fieldErrors)
	}
	return s.parts.Create(ctx, part)
}

// ListParts returns all spare parts.
func (s *InventoryService) ListParts(ctx context.Context) ([]domain.Part, error) {
	return s.parts.List(ctx)
}

// GetPart returns one spare part.
func (s *InventoryService) GetPart(ctx context.Context, partID string) (*domain.Part, error) {
	part, err := s.parts.GetByID(ctx, partID)
	if err != nil {
		return nil, mapPartError(err, partID)
	}
	return part, nil
}

// ListTransactions returns the ledger history for a part, newest first.
func (s *InventoryService) ListTransactions(ctx context.Context, partID string, limit, offset int) ([]domain.InventoryTransaction, error) {
	return s.transactions.ListByPart(ctx, partID, limit, offset)
}

// Reconcile compares stored stock against the ledger sum for a part.
func (s *InventoryService) Reconcile(ctx context.Context, partID string) (inventory.Reconciliation, error) {
	return s.ledger.Reconcile(ctx, partID)
}

func mapPartError(err error, partID string) error {
	if err == pgx.ErrNoRows {
		return apperrors.NewNotFound("part", map[string]any{"part_id": partID})
	}
	return err
}

func (s *InventoryService) publishAdjusted(ctx context.Context, actorID string, part *domain.Part, delta int, txType domain.TransactionType) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:      events.EventInventoryAdjusted,
		Actor:     events.Actor{ID: actorID},
		Timestamp: time.Now(),
		Payload: events.InventoryAdjustedPayload{
			PartID:         part.ID,
			QuantityChange: delta,
			Type:           txType,
			NewStock:       part.Stock,
		},
	})
}

func (s *InventoryService) checkLowStock(ctx context.Context, actorID string, part *domain.Part) {
	if !part.LowStock() {
		return
	}
	if s.logger != nil {
		s.logger.Warn("part at or below reorder threshold",
			zap.String("part_id", part.ID),
			zap.Int("stock", part.Stock),
			zap.Int("min_stock", part.MinStock))
	}
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:      events.EventPartLowStock,
		Actor:     events.Actor{ID: actorID},
		Timestamp: time.Now(),
		Payload: events.PartLowStockPayload{
			PartID:   part.ID,
			Name:     part.Name,
			Stock:    part.Stock,
			MinStock: part.MinStock,
		},
	})
}
