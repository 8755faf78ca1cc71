package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// PartStore reads and writes current stock levels.
type PartStore interface {
	GetByID(ctx context.Context, id string) (*domain.Part, error)
	UpdateStock(ctx context.Context, id string, stock int) error
}

// TransactionLog appends immutable ledger entries.
type TransactionLog interface {
	Append(ctx context.Context, tx *domain.InventoryTransaction) error
	SumByPart(ctx context.Context, partID string) (int, error)
}

// Ledger applies signed stock deltas. Deltas on the same part serialize
// through a per-part mutex; different parts proceed independently.
type Ledger struct {
	parts PartStore
	log   TransactionLog
	clock func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLedger constructs a ledger over the given stores.
func NewLedger(parts PartStore, log TransactionLog) *Ledger {
	return &Ledger{
		parts: parts,
		log:   log,
		clock: time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// Consume records quantity units leaving stock for a ticket. A consume of
// more than available clamps the stock at zero rather than failing: job
// completion is never blocked on stock. The ledger entry still records the
// full requested delta.
func (l *Ledger) Consume(ctx context.Context, partID string, quantity int, ticketID, actorID string) (*domain.Part, error) {
	return l.applyDelta(ctx, partID, -quantity, domain.TransactionTypeOut, &ticketID, actorID)
}

// Return records quantity units going back into stock for a ticket,
// reversing an earlier Consume whose surrounding commit failed. Unlike
// Restock, the entry stays linked to the ticket so the ledger reads as a
// consume/return pair.
func (l *Ledger) Return(ctx context.Context, partID string, quantity int, ticketID, actorID string) (*domain.Part, error) {
	return l.applyDelta(ctx, partID, quantity, domain.TransactionTypeIn, &ticketID, actorID)
}

// Restock records quantity units entering stock.
func (l *Ledger) Restock(ctx context.Context, partID string, quantity int, actorID string) (*domain.Part, error) {
	return l.applyDelta(ctx, partID, quantity, domain.TransactionTypeIn, nil, actorID)
}

// AdjustBy applies an arbitrary signed delta, inferring the direction.
func (l *Ledger) AdjustBy(ctx context.Context, partID string, delta int, actorID string) (*domain.Part, error) {
	txType := domain.TransactionTypeIn
	if delta < 0 {
		txType = domain.TransactionTypeOut
	}
	return l.applyDelta(ctx, partID, delta, txType, nil, actorID)
}

func (l *Ledger) applyDelta(ctx context.Context, partID string, delta int, txType domain.TransactionType, ticketID *string, actorID string) (*domain.Part, error) {
	lock := l.partLock(partID)
	lock.Lock()
	defer lock.Unlock()

	part, err := l.parts.GetByID(ctx, partID)
	if err != nil {
		return nil, err
	}

	newStock := part.Stock + delta
	if newStock < 0 {
		newStock = 0
	}

	entry := &domain.InventoryTransaction{
		ID:             uuid.NewString(),
		PartID:         partID,
		QuantityChange: delta,
		Type:           txType,
		TicketID:       ticketID,
		PerformedBy:    actorID,
		CreatedAt:      l.clock(),
	}
	if err := l.log.Append(ctx, entry); err != nil {
		return nil, err
	}
	if err := l.parts.UpdateStock(ctx, partID, newStock); err != nil {
		return nil, err
	}

	part.Stock = newStock
	return part, nil
}

// Reconciliation compares the ledger sum against stored stock for one part.
// The two drift whenever a consume was clamped at zero; Drift surfaces that
// loss instead of hiding it.
type Reconciliation struct {
	PartID      string
	Stock       int
	LedgerTotal int
	Drift       int
}

// Consistent reports whether stored stock matches the ledger sum.
func (r Reconciliation) Consistent() bool {
	return r.Drift == 0
}

// Reconcile computes the ledger-vs-stock drift for a part.
func (l *Ledger) Reconcile(ctx context.Context, partID string) (Reconciliation, error) {
	lock := l.partLock(partID)
	lock.Lock()
	defer lock.Unlock()

	part, err := l.parts.GetByID(ctx, partID)
	if err != nil {
		return Reconciliation{}, err
	}
	total, err := l.log.SumByPart(ctx, partID)
	if err != nil {
		return Reconciliation{}, err
	}
	return Reconciliation{
		PartID:      partID,
		Stock:       part.Stock,
		LedgerTotal: total,
		Drift:       part.Stock - total,
	}, nil
}

func (l *Ledger) partLock(partID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[partID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[partID] = lock
	}
	return lock
}
