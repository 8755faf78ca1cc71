package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// AssetRepository encapsulates asset persistence. Assets are read-only to the
// workflow engine; writes come from the admin surface.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) error
	Update(ctx context.Context, asset *domain.Asset) error
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	List(ctx context.Context, branchID *string) ([]domain.Asset, error)
	Delete(ctx context.Context, id string) error
}

type assetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository instantiates repository.
func NewAssetRepository(pool *pgxpool.Pool) AssetRepository {
	return &assetRepository{pool: pool}
}

const assetColumns = `id, name, serial_number, category, status, branch_id, location, health_score,
       purchase_date, warranty_expiry, supplier, supplier_contact, initial_value, image_url`

func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	const query = `
        INSERT INTO maintenance_assets (name, serial_number, category, status, branch_id, location,
            health_score, purchase_date, warranty_expiry, supplier, supplier_contact, initial_value, image_url)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		asset.Name,
		asset.SerialNumber,
		asset.Category,
		asset.Status,
		asset.BranchID,
		asset.Location,
		asset.HealthScore,
		asset.PurchaseDate,
		asset.WarrantyExpiry,
		asset.Supplier,
		asset.SupplierContact,
		asset.InitialValue,
		asset.ImageURL,
	).Scan(&asset.ID)
}

func (r *assetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	const query = `
        UPDATE maintenance_assets
        SET name=$2, serial_number=$3, category=$4, status=$5, branch_id=$6, location=$7,
            health_score=$8, purchase_date=$9, warranty_expiry=$10, supplier=$11,
            supplier_contact=$12, initial_value=$13, image_url=$14
        WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query,
		asset.ID,
		asset.Name,
		asset.SerialNumber,
		asset.Category,
		asset.Status,
		asset.BranchID,
		asset.Location,
		asset.HealthScore,
		asset.PurchaseDate,
		asset.WarrantyExpiry,
		asset.Supplier,
		asset.SupplierContact,
		asset.InitialValue,
		asset.ImageURL,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM maintenance_assets WHERE id=$1`
	var asset domain.Asset
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&asset.ID,
		&asset.Name,
		&asset.SerialNumber,
		&asset.Category,
		&asset.Status,
		&asset.BranchID,
		&asset.Location,
		&asset.HealthScore,
		&asset.PurchaseDate,
		&asset.WarrantyExpiry,
		&asset.Supplier,
		&asset.SupplierContact,
		&asset.InitialValue,
		&asset.ImageURL,
	); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) List(ctx context.Context, branchID *string) ([]domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM maintenance_assets ORDER BY name`
	args := []any{}
	if branchID != nil {
		query = `SELECT ` + assetColumns + ` FROM maintenance_assets WHERE branch_id=$1 ORDER BY name`
		args = append(args, *branchID)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Asset
	for rows.Next() {
		var asset domain.Asset
		if err := rows.Scan(
			&asset.ID,
			&asset.Name,
			&asset.SerialNumber,
			&asset.Category,
			&asset.Status,
			&asset.BranchID,
			&asset.Location,
			&asset.HealthScore,
			&asset.PurchaseDate,
			&asset.WarrantyExpiry,
			&asset.Supplier,
			&asset.SupplierContact,
			&asset.InitialValue,
			&asset.ImageURL,
		); err != nil {
			return nil, err
		}
		result = append(result, asset)
	}
	return result, rows.Err()
}

func (r *assetRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM maintenance_assets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
