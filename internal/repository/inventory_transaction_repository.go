package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// InventoryTransactionRepository is the append-only ledger log. Entries are
// never updated or deleted.
type InventoryTransactionRepository interface {
	Append(ctx context.Context, tx *domain.InventoryTransaction) error
	ListByPart(ctx context.Context, partID string, limit, offset int) ([]domain.InventoryTransaction, error)
	SumByPart(ctx context.Context, partID string) (int, error)
}

type inventoryTransactionRepository struct {
	pool *pgxpool.Pool
}

// NewInventoryTransactionRepository instantiates repository.
func NewInventoryTransactionRepository(pool *pgxpool.Pool) InventoryTransactionRepository {
	return &inventoryTransactionRepository{pool: pool}
}

func (r *inventoryTransactionRepository) Append(ctx context.Context, tx *domain.InventoryTransaction) error {
	const query = `
        INSERT INTO inventory_transactions (id, part_id, quantity_change, transaction_type, ticket_id, performed_by, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.pool.Exec(ctx, query,
		tx.ID,
		tx.PartID,
		tx.QuantityChange,
		tx.Type,
		tx.TicketID,
		tx.PerformedBy,
		tx.CreatedAt,
	)
	return err
}

func (r *inventoryTransactionRepository) ListByPart(ctx context.Context, partID string, limit, offset int) ([]domain.InventoryTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, part_id, quantity_change, transaction_type, ticket_id, performed_by, created_at
        FROM inventory_transactions WHERE part_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, partID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.InventoryTransaction
	for rows.Next() {
		var tx domain.InventoryTransaction
		if err := rows.Scan(
			&tx.ID,
			&tx.PartID,
			&tx.QuantityChange,
			&tx.Type,
			&tx.TicketID,
			&tx.PerformedBy,
			&tx.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

func (r *inventoryTransactionRepository) SumByPart(ctx context.Context, partID string) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity_change), 0) FROM inventory_transactions WHERE part_id=$1`,
		partID,
	).Scan(&total)
	return total, err
}
