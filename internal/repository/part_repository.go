package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// PartRepository encapsulates spare-part persistence. Stock updates flow
// through the inventory ledger, never directly from handlers.
type PartRepository interface {
	Create(ctx context.Context, part *domain.Part) error
	GetByID(ctx context.Context, id string) (*domain.Part, error)
	List(ctx context.Context) ([]domain.Part, error)
	UpdateStock(ctx context.Context, id string, stock int) error
}

type partRepository struct {
	pool *pgxpool.Pool
}

// NewPartRepository instantiates repository.
func NewPartRepository(pool *pgxpool.Pool) PartRepository {
	return &partRepository{pool: pool}
}

const partColumns = `id, name, category, current_stock, min_stock, price, image_url`

func (r *partRepository) Create(ctx context.Context, part *domain.Part) error {
	const query = `
        INSERT INTO spare_parts (name, category, current_stock, min_stock, price, image_url)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		part.Name,
		part.Category,
		part.Stock,
		part.MinStock,
		part.Price,
		part.ImageURL,
	).Scan(&part.ID)
}

func (r *partRepository) GetByID(ctx context.Context, id string) (*domain.Part, error) {
	query := `SELECT ` + partColumns + ` FROM spare_parts WHERE id=$1`
	var part domain.Part
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&part.ID,
		&part.Name,
		&part.Category,
		&part.Stock,
		&part.MinStock,
		&part.Price,
		&part.ImageURL,
	); err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *partRepository) List(ctx context.Context) ([]domain.Part, error) {
	query := `SELECT ` + partColumns + ` FROM spare_parts ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Part
	for rows.Next() {
		var part domain.Part
		if err := rows.Scan(
			&part.ID,
			&part.Name,
			&part.Category,
			&part.Stock,
			&part.MinStock,
			&part.Price,
			&part.ImageURL,
		); err != nil {
			return nil, err
		}
		result = append(result, part)
	}
	return result, rows.Err()
}

func (r *partRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE spare_parts SET current_stock=$1 WHERE id=$2`, stock, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
