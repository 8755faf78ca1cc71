package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// AssetService manages the equipment registry.
type AssetService struct {
	assets  repository.AssetRepository
	tickets repository.TicketRepository
}

// NewAssetService constructs the service.
func NewAssetService(assets repository.AssetRepository, tickets repository.TicketRepository) *AssetService {
	return &AssetService{assets: assets, tickets: tickets}
}

// Create registers a new asset.
func (s *AssetService) Create(ctx context.Context, asset *domain.Asset) error {
	fieldErrors := map[string]any{}
	if asset.Name == "" {
		fieldErrors["name"] = "value is required"
	}
	if asset.SerialNumber == "" {
		fieldErrors["serial_number"] = "value is required"
	}
	if asset.BranchID == "" {
		fieldErrors["branch_id"] = "value is required"
	}
	if len(fieldErrors) > 0 {
		return apperrors.NewValidationFailed("asset payload invalid", fieldErrors)
	}
	if asset.Status == "" {
		asset.Status = domain.AssetStatusActive
	}
	return s.assets.Create(ctx, asset)
}

// Update replaces an asset's editable fields.
func (s *AssetService) Update(ctx context.Context, asset *domain.Asset) error {
	fieldErrors := map[string]any{}
	if asset.Name == "" {
		fieldErrors["name"] = "value is required"
	}
	if asset.SerialNumber == "" {
		fieldErrors["serial_number"] = "value is required"
	}
	if asset.BranchID == "" {
		fieldErrors["branch_id"] = "value is required"
	}
	if len(fieldErrors) > 0 {
		return apperrors.NewValidationFailed("asset payload invalid", fieldErrors)
	}
	if asset.Status == "" {
		asset.Status = domain.AssetStatusActive
	}
	if err := s.assets.Update(ctx, asset); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("asset", map[string]any{"asset_id": asset.ID})
		}
		return err
	}
	return nil
}

// Get returns one asset.
func (s *AssetService) Get(ctx context.Context, id string) (*domain.Asset, error) {
	asset, err := s.assets.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("asset", map[string]any{"asset_id": id})
		}
		return nil, err
	}
	return asset, nil
}

// List returns assets, optionally scoped to a branch.
func (s *AssetService) List(ctx context.Context, branchID *string) ([]domain.Asset, error) {
	return s.assets.List(ctx, branchID)
}

// Delete removes an asset. Assets referenced by any ticket cannot be removed;
// ticket history must stay resolvable.
func (s *AssetService) Delete(ctx context.Context, id string) error {
	count, err := s.tickets.CountByAsset(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflict("asset has ticket history and cannot be deleted", map[string]any{
			"asset_id":     id,
			"ticket_count": count,
		})
	}
	if err := s.assets.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("asset", map[string]any{"asset_id": id})
		}
		return err
	}
	return nil
}
