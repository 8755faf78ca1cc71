package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/service"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// InventoryHandler manages spare-part and ledger endpoints.
type InventoryHandler struct {
	service *service.InventoryService
}

// NewInventoryHandler constructs handler.
func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: inventoryService}
}

// ListParts GET /inventory/parts.
func (h *InventoryHandler) ListParts(c *fiber.Ctx) error {
	parts, err := h.service.ListParts(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.PartResponse, 0, len(parts))
	for i := range parts {
		items = append(items, partResponse(&parts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreatePart POST /inventory/parts.
func (h *InventoryHandler) CreatePart(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreatePartRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}
	part := &domain.Part{
		Name:     req.Name,
		Category: req.Category,
		Stock:    req.Stock,
		MinStock: req.MinStock,
		Price:    req.Price,
		ImageURL: req.ImageURL,
	}
	if err := h.service.CreatePart(c.UserContext(), actor.Role, part); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": partResponse(part)})
}

// GetPart GET /inventory/parts/:id.
func (h *InventoryHandler) GetPart(c *fiber.Ctx) error {
	part, err := h.service.GetPart(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": partResponse(part)})
}

// Restock POST /inventory/parts/:id/restock.
func (h *InventoryHandler) Restock(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.RestockRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}
	part, err := h.service.Restock(c.UserContext(), actor.Role, actor.ID, c.Params("id"), req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": partResponse(part)})
}

// Adjust POST /inventory/parts/:id/adjust.
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.AdjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}
	part, err := h.service.Adjust(c.UserContext(), actor.Role, actor.ID, c.Params("id"), req.Delta)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": partResponse(part)})
}

// ListTransactions GET /inventory/parts/:id/transactions.
func (h *InventoryHandler) ListTransactions(c *fiber.Ctx) error {
	limit := queryInt(c, "page_size", 50)
	offset := 0
	if page := queryInt(c, "page", 1); page > 1 {
		offset = (page - 1) * limit
	}
	txs, err := h.service.ListTransactions(c.UserContext(), c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		items = append(items, dto.TransactionResponse{
			ID:             txs[i].ID,
			PartID:         txs[i].PartID,
			QuantityChange: txs[i].QuantityChange,
			Type:           txs[i].Type,
			TicketID:       txs[i].TicketID,
			PerformedBy:    txs[i].PerformedBy,
			CreatedAt:      txs[i].CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Reconcile GET /inventory/parts/:id/reconciliation.
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	recon, err := h.service.Reconcile(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ReconciliationResponse{
		PartID:      recon.PartID,
		Stock:       recon.Stock,
		LedgerTotal: recon.LedgerTotal,
		Drift:       recon.Drift,
		Consistent:  recon.Consistent(),
	}})
}

func partResponse(part *domain.Part) dto.PartResponse {
	return dto.PartResponse{
		ID:       part.ID,
		Name:     part.Name,
		Category: part.Category,
		Stock:    part.Stock,
		MinStock: part.MinStock,
		Price:    part.Price,
		ImageURL: part.ImageURL,
		LowStock: part.LowStock(),
	}
}
