package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// PermissionRepository stores the role-permission matrix.
type PermissionRepository interface {
	List(ctx context.Context) ([]domain.PermissionEntry, error)
	ReplaceAll(ctx context.Context, entries []domain.PermissionEntry) error
}

type permissionRepository struct {
	pool *pgxpool.Pool
}

// NewPermissionRepository instantiates repository.
func NewPermissionRepository(pool *pgxpool.Pool) PermissionRepository {
	return &permissionRepository{pool: pool}
}

func (r *permissionRepository) List(ctx context.Context) ([]domain.PermissionEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role, permission_key, is_allowed FROM permissions ORDER BY role, permission_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PermissionEntry
	for rows.Next() {
		var entry domain.PermissionEntry
		if err := rows.Scan(&entry.Role, &entry.Key, &entry.Allowed); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// ReplaceAll swaps the full matrix in one transaction so readers never see a
// half-applied update.
func (r *permissionRepository) ReplaceAll(ctx context.Context, entries []domain.PermissionEntry) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM permissions`); err != nil {
			return err
		}
		for _, entry := range entries {
			_, err := tx.Exec(ctx,
				`INSERT INTO permissions (role, permission_key, is_allowed) VALUES ($1,$2,$3)`,
				entry.Role, entry.Key, entry.Allowed)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
