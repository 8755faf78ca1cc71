package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/advisor"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/forms"
	"github.com/spec-kit/maintenance-service/internal/geo"
	"github.com/spec-kit/maintenance-service/internal/observability"
	"github.com/spec-kit/maintenance-service/internal/permission"
	"github.com/spec-kit/maintenance-service/internal/persistence"
	"github.com/spec-kit/maintenance-service/internal/repository"
	"github.com/spec-kit/maintenance-service/internal/sla"
	"github.com/spec-kit/maintenance-service/internal/workflow"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// FormKeyNewTicket is the well-known schema for creation-time form data.
const FormKeyNewTicket = "new_ticket"

// TicketService coordinates the maintenance job lifecycle: creation,
// transitions through the workflow engine, geofence verification, and reads
// annotated with the derived SLA flag.
type TicketService struct {
	tickets    repository.TicketRepository
	assets     repository.AssetRepository
	schemas    *SchemaService
	configs    *ConfigService
	engine     *workflow.Engine
	sites      *persistence.SiteSessionStore
	parts      partsReturner
	gate       permissionChecker
	suggester  advisor.Advisor
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	AssetRepo  repository.AssetRepository
	Schemas    *SchemaService
	Configs    *ConfigService
	Engine     *workflow.Engine
	Sites      *persistence.SiteSessionStore
	Parts      partsReturner
	Gate       permissionChecker
	Suggester  advisor.Advisor
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	suggester := deps.Suggester
	if suggester == nil {
		suggester = advisor.Noop{}
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		assets:     deps.AssetRepo,
		schemas:    deps.Schemas,
		configs:    deps.Configs,
		engine:     deps.Engine,
		sites:      deps.Sites,
		parts:      deps.Parts,
		gate:       deps.Gate,
		suggester:  suggester,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		locks:      make(map[string]*sync.Mutex),
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	AssetID     string
	Priority    domain.TicketPriority
	FaultType   string
	Location    domain.Coordinates
	FormData    map[string]any
	ImageURL    *string
}

// TicketView is a ticket annotated with derived read-time fields.
type TicketView struct {
	domain.Ticket
	Overdue bool
}

// CreateTicket validates and stores a new OPEN ticket.
func (s *TicketService) CreateTicket(ctx context.Context, actor workflow.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	cfg, err := s.configs.Get(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.MaintenanceMode {
		return nil, apperrors.NewMaintenanceMode()
	}
	if !s.gate.IsAllowed(actor.Role, permission.KeyTicketsCreate) {
		return nil, apperrors.NewForbidden("ticket creation requires the tickets.create permission")
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	}
	if err := workflow.ValidateCreation(input.Title, input.Description, input.AssetID, input.Priority); err != nil {
		return nil, err
	}

	if _, err := s.assets.GetByID(ctx, input.AssetID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("asset", map[string]any{"asset_id": input.AssetID})
		}
		return nil, err
	}

	if input.FormData != nil {
		if err := s.validateAgainstSchema(ctx, FormKeyNewTicket, input.FormData); err != nil {
			return nil, err
		}
	}

	ticket := &domain.Ticket{
		ExternalKey: generateTicketKey(),
		Title:       input.Title,
		Description: input.Description,
		AssetID:     input.AssetID,
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
		FaultType:   input.FaultType,
		Location:    input.Location,
		FormData:    input.FormData,
		ImageURL:    input.ImageURL,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{ID: actor.ID, Role: actor.Role},
		Payload: events.TicketCreatedPayload{
			AssetID:  ticket.AssetID,
			Priority: ticket.Priority,
			Title:    ticket.Title,
		},
	})
	return ticket, nil
}

// Transition runs the workflow engine for one ticket and persists the result.
// Transitions on the same ticket serialize through a per-ticket lock, so a
// status read inside the engine cannot race a concurrent commit.
func (s *TicketService) Transition(ctx context.Context, actor workflow.Actor, ticketID string, target domain.TicketStatus, payload workflow.TransitionPayload) (*domain.Ticket, error) {
	lock := s.ticketLock(ticketID)
	lock.Lock()
	defer lock.Unlock()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	cfg, err := s.configs.Get(ctx)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	updated, err := s.engine.RequestTransition(ctx, ticket, target, actor, payload, cfg)
	if err != nil {
		s.recordTransitionFailure(err, payload.FormKey)
		return nil, err
	}

	// A technician taking an open job becomes its assignee.
	if target == domain.TicketStatusInProgress && actor.Role == domain.RoleTechnician && updated.TechnicianID == nil {
		actorID := actor.ID
		updated.TechnicianID = &actorID
	}

	if err := s.tickets.Update(ctx, updated); err != nil {
		// The engine already decremented stock for a resolution; put the
		// parts back so the ledger does not record a completion that never
		// committed.
		if target == domain.TicketStatusResolved {
			s.returnConsumedParts(ctx, actor, ticket.ID, payload.PartsUsed)
		}
		return nil, err
	}

	// Leaving IN_PROGRESS ends the on-site session; the next start attempt
	// must re-verify.
	if oldStatus == domain.TicketStatusInProgress && updated.TechnicianID != nil && s.sites != nil {
		if err := s.sites.Clear(ctx, ticket.ID, *updated.TechnicianID); err != nil && s.logger != nil {
			s.logger.Warn("site session clear failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		}
	}

	s.metrics.RecordTransition(string(oldStatus), string(target))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.Actor{ID: actor.ID, Role: actor.Role},
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: target,
		},
	})
	if target == domain.TicketStatusClosed && updated.Rating != nil {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketClosed,
			TicketID: ticket.ID,
			Actor:    events.Actor{ID: actor.ID, Role: actor.Role},
			Payload: events.TicketClosedPayload{
				Rating:   *updated.Rating,
				Feedback: updated.Feedback,
			},
		})
	}
	return updated, nil
}

// VerifySite checks the technician's reported position against the ticket's
// geofence. A pass is recorded as a short-lived session marker; a fail
// returns OUT_OF_RANGE with the measured distance.
func (s *TicketService) VerifySite(ctx context.Context, actor workflow.Actor, ticketID string, position domain.Coordinates) (geo.Result, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return geo.Result{}, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return geo.Result{}, err
	}
	cfg, err := s.configs.Get(ctx)
	if err != nil {
		return geo.Result{}, err
	}

	result := geo.Verify(position, ticket.Location, cfg.GeofenceRadiusMeters)
	if !result.InRange {
		s.metrics.RecordGeofenceRejection()
		if s.logger != nil {
			s.logger.Info("geofence check failed",
				zap.String("ticket_id", ticketID),
				zap.String("actor_id", actor.ID),
				zap.Float64("distance_meters", result.DistanceMeters))
		}
		return result, apperrors.NewOutOfRange(result.DistanceMeters, cfg.GeofenceRadiusMeters)
	}

	if s.sites != nil {
		if err := s.sites.MarkVerified(ctx, ticketID, actor.ID); err != nil {
			return result, err
		}
	}
	return result, nil
}

// GetTicket returns one ticket with its derived SLA flag.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*TicketView, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	cfg, err := s.configs.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &TicketView{Ticket: *ticket, Overdue: sla.IsOverdue(ticket, cfg, time.Now())}, nil
}

// ListTickets returns tickets matching the filter, each with its SLA flag.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]TicketView, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	cfg, err := s.configs.Get(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	views := make([]TicketView, 0, len(tickets))
	for i := range tickets {
		views = append(views, TicketView{
			Ticket:  tickets[i],
			Overdue: sla.IsOverdue(&tickets[i], cfg, now),
		})
	}
	return views, nil
}

// SuggestDiagnosis runs the advisor for a ticket. Disabled via system config;
// suggestions are advisory text only and never feed back into transitions.
func (s *TicketService) SuggestDiagnosis(ctx context.Context, ticketID string) (*advisor.Suggestion, error) {
	cfg, err := s.configs.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.EnableAIAnalysis {
		return nil, nil
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	asset, err := s.assets.GetByID(ctx, ticket.AssetID)
	if err != nil && err != pgx.ErrNoRows {
		return nil, err
	}
	return s.suggester.Suggest(ctx, ticket.Description, asset)
}

func (s *TicketService) validateAgainstSchema(ctx context.Context, formKey string, values map[string]any) error {
	schema, err := s.schemas.GetByKey(ctx, formKey)
	if err != nil {
		if err == pgx.ErrNoRows {
			// No schema saved for this key means no constraints.
			return nil
		}
		return err
	}
	result, err := forms.Validate(schema, values)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !result.Valid {
		s.metrics.RecordValidationFailure(formKey)
		details := make(map[string]any, len(result.Errors))
		for field, reason := range result.Errors {
			details[field] = reason
		}
		return apperrors.NewValidationFailed("form data failed schema validation", details)
	}
	return nil
}

func (s *TicketService) returnConsumedParts(ctx context.Context, actor workflow.Actor, ticketID string, used []workflow.PartUsage) {
	if s.parts == nil {
		return
	}
	for _, usage := range used {
		if _, err := s.parts.Return(ctx, usage.PartID, usage.Quantity, ticketID, actor.ID); err != nil && s.logger != nil {
			s.logger.Error("failed to return consumed part after commit failure",
				zap.String("ticket_id", ticketID),
				zap.String("part_id", usage.PartID),
				zap.Int("quantity", usage.Quantity),
				zap.Error(err))
		}
	}
}

func (s *TicketService) recordTransitionFailure(err error, formKey string) {
	switch {
	case apperrors.HasCode(err, apperrors.CodeOutOfRange):
		s.metrics.RecordGeofenceRejection()
	case apperrors.HasCode(err, apperrors.CodeValidationFailed) && formKey != "":
		s.metrics.RecordValidationFailure(formKey)
	}
}

func (s *TicketService) ticketLock(ticketID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[ticketID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[ticketID] = lock
	}
	return lock
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketKey() string {
	return "JOB-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
