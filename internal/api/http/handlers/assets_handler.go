package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/service"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// AssetsHandler manages the equipment registry endpoints.
type AssetsHandler struct {
	service *service.AssetService
}

// NewAssetsHandler constructs handler.
func NewAssetsHandler(assetService *service.AssetService) *AssetsHandler {
	return &AssetsHandler{service: assetService}
}

// ListAssets GET /assets.
func (h *AssetsHandler) ListAssets(c *fiber.Ctx) error {
	var branchID *string
	if id := c.Query("branch_id"); id != "" {
		branchID = &id
	}
	assets, err := h.service.List(c.UserContext(), branchID)
	if err != nil {
		return err
	}
	items := make([]dto.AssetResponse, 0, len(assets))
	for i := range assets {
		items = append(items, assetResponse(&assets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetAsset GET /assets/:id.
func (h *AssetsHandler) GetAsset(c *fiber.Ctx) error {
	asset, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assetResponse(asset)})
}

// CreateAsset POST /assets.
func (h *AssetsHandler) CreateAsset(c *fiber.Ctx) error {
	var req dto.CreateAssetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}
	asset := &domain.Asset{
		Name:            req.Name,
		SerialNumber:    req.SerialNumber,
		Category:        req.Category,
		Status:          domain.AssetStatus(req.Status),
		BranchID:        req.BranchID,
		Location:        req.Location,
		HealthScore:     req.HealthScore,
		Supplier:        req.Supplier,
		SupplierContact: req.SupplierContact,
		InitialValue:    req.InitialValue,
		ImageURL:        req.ImageURL,
	}
	if req.PurchaseDate != nil {
		asset.PurchaseDate = *req.PurchaseDate
	}
	if req.WarrantyExpiry != nil {
		asset.WarrantyExpiry = *req.WarrantyExpiry
	}
	if err := h.service.Create(c.UserContext(), asset); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": assetResponse(asset)})
}

// UpdateAsset PUT /assets/:id.
func (h *AssetsHandler) UpdateAsset(c *fiber.Ctx) error {
	var req dto.CreateAssetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}
	asset := &domain.Asset{
		ID:              c.Params("id"),
		Name:            req.Name,
		SerialNumber:    req.SerialNumber,
		Category:        req.Category,
		Status:          domain.AssetStatus(req.Status),
		BranchID:        req.BranchID,
		Location:        req.Location,
		HealthScore:     req.HealthScore,
		Supplier:        req.Supplier,
		SupplierContact: req.SupplierContact,
		InitialValue:    req.InitialValue,
		ImageURL:        req.ImageURL,
	}
	if req.PurchaseDate != nil {
		asset.PurchaseDate = *req.PurchaseDate
	}
	if req.WarrantyExpiry != nil {
		asset.WarrantyExpiry = *req.WarrantyExpiry
	}
	if err := h.service.Update(c.UserContext(), asset); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assetResponse(asset)})
}

// DeleteAsset DELETE /assets/:id.
func (h *AssetsHandler) DeleteAsset(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func assetResponse(asset *domain.Asset) dto.AssetResponse {
	return dto.AssetResponse{
		ID:            asset.ID,
		Name:          asset.Name,
		SerialNumber:  asset.SerialNumber,
		Category:      asset.Category,
		Status:        asset.Status,
		BranchID:      asset.BranchID,
		Location:      asset.Location,
		HealthScore:   asset.HealthScore,
		UnderWarranty: asset.UnderWarranty(time.Now()),
		Supplier:      asset.Supplier,
		InitialValue:  asset.InitialValue,
		ImageURL:      asset.ImageURL,
	}
}
