package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/repository"
	"github.com/spec-kit/maintenance-service/internal/service"
	"github.com/spec-kit/maintenance-service/internal/workflow"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}

	input := service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		AssetID:     req.AssetID,
		Priority:    req.Priority,
		FaultType:   req.FaultType,
		Location:    domain.Coordinates{Lat: req.Lat, Lng: req.Lng},
		FormData:    req.FormData,
		ImageURL:    req.ImageURL,
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), actor, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketDetail(&service.TicketView{Ticket: *ticket})})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	filter := parseTicketQuery(c)
	// Technicians see their own queue.
	if actor.Role == domain.RoleTechnician {
		id := actor.ID
		filter.TechnicianID = &id
	}
	views, err := h.service.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(views))
	for i := range views {
		items = append(items, ticketSummary(&views[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	if _, err := actorFromContext(c); err != nil {
		return err
	}
	view, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(view)})
}

// Transition POST /tickets/:id/transition.
func (h *TicketsHandler) Transition(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationFailed("status is required", map[string]any{"status": "value is required"})
	}

	payload := workflow.TransitionPayload{
		FormKey:   req.FormKey,
		FormData:  req.FormData,
		Diagnosis: req.Diagnosis,
		Rating:    req.Rating,
		Feedback:  req.Feedback,
	}
	for _, usage := range req.PartsUsed {
		payload.PartsUsed = append(payload.PartsUsed, workflow.PartUsage{
			PartID:   usage.PartID,
			Quantity: usage.Quantity,
		})
	}

	ticket, err := h.service.Transition(c.UserContext(), actor, c.Params("id"), req.Status, payload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(&service.TicketView{Ticket: *ticket})})
}

// VerifySite POST /tickets/:id/verify-site.
func (h *TicketsHandler) VerifySite(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.VerifySiteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}

	result, err := h.service.VerifySite(c.UserContext(), actor, c.Params("id"), domain.Coordinates{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.VerifySiteResponse{
		InRange:        result.InRange,
		DistanceMeters: result.DistanceMeters,
	}})
}

// SuggestDiagnosis GET /tickets/:id/suggestion.
func (h *TicketsHandler) SuggestDiagnosis(c *fiber.Ctx) error {
	if _, err := actorFromContext(c); err != nil {
		return err
	}
	suggestion, err := h.service.SuggestDiagnosis(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if suggestion == nil {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": dto.SuggestionResponse{
		Diagnosis: suggestion.Diagnosis,
		Severity:  suggestion.Severity,
	}})
}

func actorFromContext(c *fiber.Ctx) (workflow.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return workflow.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return workflow.Actor{ID: principal.User.ID, Role: principal.Role}, nil
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{
		Limit:  queryInt(c, "page_size", 20),
		Offset: 0,
	}
	if page := queryInt(c, "page", 1); page > 1 {
		filter.Offset = (page - 1) * filter.Limit
	}
	for _, raw := range strings.Split(c.Query("status"), ",") {
		status := domain.TicketStatus(strings.ToUpper(strings.TrimSpace(raw)))
		if status.Valid() {
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	for _, raw := range strings.Split(c.Query("priority"), ",") {
		priority := domain.TicketPriority(strings.ToUpper(strings.TrimSpace(raw)))
		if priority.Valid() {
			filter.Priorities = append(filter.Priorities, priority)
		}
	}
	if assetID := c.Query("asset_id"); assetID != "" {
		filter.AssetID = &assetID
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	return filter
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func ticketSummary(view *service.TicketView) dto.TicketSummary {
	return dto.TicketSummary{
		ID:          view.ID,
		ExternalKey: view.ExternalKey,
		Title:       view.Title,
		AssetID:     view.AssetID,
		Status:      view.Status,
		Priority:    view.Priority,
		Overdue:     view.Overdue,
		CreatedAt:   view.CreatedAt,
		UpdatedAt:   view.UpdatedAt,
	}
}

func ticketDetail(view *service.TicketView) dto.TicketDetailResponse {
	return dto.TicketDetailResponse{
		ID:           view.ID,
		ExternalKey:  view.ExternalKey,
		Title:        view.Title,
		Description:  view.Description,
		AssetID:      view.AssetID,
		TechnicianID: view.TechnicianID,
		Status:       view.Status,
		Priority:     view.Priority,
		FaultType:    view.FaultType,
		Lat:          view.Location.Lat,
		Lng:          view.Location.Lng,
		FormData:     view.FormData,
		Diagnosis:    view.Diagnosis,
		ImageURL:     view.ImageURL,
		Rating:       view.Rating,
		Feedback:     view.Feedback,
		Overdue:      view.Overdue,
		CreatedAt:    view.CreatedAt,
		UpdatedAt:    view.UpdatedAt,
		ClosedAt:     view.ClosedAt,
	}
}
