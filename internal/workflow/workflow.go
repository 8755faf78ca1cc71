package workflow

import (
	"context"
	"net/http"
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/forms"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// allowedTransitions defines state machine adjacency. CLOSED is terminal;
// OPEN and IN_PROGRESS reach each other for reassignment.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:         {domain.TicketStatusInProgress},
	domain.TicketStatusInProgress:   {domain.TicketStatusOpen, domain.TicketStatusPendingParts, domain.TicketStatusResolved},
	domain.TicketStatusPendingParts: {domain.TicketStatusInProgress},
	domain.TicketStatusResolved:     {domain.TicketStatusClosed},
	domain.TicketStatusClosed:       {},
}

func isAdjacent(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Actor identifies who requests a transition. The engine re-enforces the
// permission gate for every request; a caller's claim that the UI permitted
// an action is never trusted.
type Actor struct {
	ID   string
	Role domain.Role
}

// PartUsage is one consumed-part line attached to a completion.
type PartUsage struct {
	PartID   string
	Quantity int
}

// TransitionPayload carries the optional data riding on a transition.
type TransitionPayload struct {
	// FormKey names the schema the form data must satisfy; required when
	// FormData is present.
	FormKey   string
	FormData  map[string]any
	Diagnosis *string
	PartsUsed []PartUsage
	Rating    *int
	Feedback  *string
}

// PermissionChecker answers role-permission queries.
type PermissionChecker interface {
	IsAllowed(role domain.Role, key string) bool
}

// SchemaSource loads form schemas by form key.
type SchemaSource interface {
	GetByKey(ctx context.Context, formKey string) (*domain.FormSchema, error)
}

// PartsConsumer applies completion-time stock consumption.
type PartsConsumer interface {
	Consume(ctx context.Context, partID string, quantity int, ticketID, actorID string) (*domain.Part, error)
}

// SiteVerifier reports whether the technician passed a geofence check for
// this ticket in the current work session.
type SiteVerifier interface {
	Verified(ctx context.Context, ticketID, technicianID string) (bool, error)
}

// Dependencies bundles engine collaborators.
type Dependencies struct {
	Gate    PermissionChecker
	Schemas SchemaSource
	Parts   PartsConsumer
	Sites   SiteVerifier
	KeyFor  PermissionKeyFunc
	Clock   func() time.Time
}

// Engine is the ticket lifecycle state machine. It validates a requested
// transition against the permission gate, the geofence precondition, and the
// form schema, then returns the committed ticket value. Persisting that value
// is the caller's responsibility: engine calls are the prepare step, storage
// is the commit.
type Engine struct {
	gate    PermissionChecker
	schemas SchemaSource
	parts   PartsConsumer
	sites   SiteVerifier
	keyFor  PermissionKeyFunc
	clock   func() time.Time
}

// NewEngine constructs the workflow engine.
func NewEngine(deps Dependencies) *Engine {
	engine := &Engine{
		gate:    deps.Gate,
		schemas: deps.Schemas,
		parts:   deps.Parts,
		sites:   deps.Sites,
		keyFor:  deps.KeyFor,
		clock:   deps.Clock,
	}
	if engine.keyFor == nil {
		engine.keyFor = DefaultPermissionKey
	}
	if engine.clock == nil {
		engine.clock = time.Now
	}
	return engine
}

// RequestTransition validates and applies a status change, returning the
// updated ticket. The input ticket is not mutated. Callers must serialize
// transitions per ticket.
func (e *Engine) RequestTransition(ctx context.Context, ticket *domain.Ticket, target domain.TicketStatus, actor Actor, payload TransitionPayload, cfg domain.SystemConfig) (*domain.Ticket, error) {
	if cfg.MaintenanceMode && !ticket.Status.Terminal() {
		return nil, apperrors.NewMaintenanceMode()
	}
	if !target.Valid() {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(target))
	}
	if !isAdjacent(ticket.Status, target) {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(target))
	}

	// Closing is confirmation of the repair: managers and admins only,
	// regardless of matrix content.
	if target == domain.TicketStatusClosed && actor.Role == domain.RoleTechnician {
		return nil, apperrors.NewForbidden("technicians cannot close tickets")
	}
	if !e.gate.IsAllowed(actor.Role, e.keyFor(ticket.Status, target)) {
		return nil, apperrors.NewForbidden("role " + string(actor.Role) + " may not perform this transition")
	}

	if e.beginsOnSiteWork(ticket, target, actor) {
		verified, err := e.sites.Verified(ctx, ticket.ID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !verified {
			return nil, apperrors.NewDomainError(apperrors.CodeOutOfRange,
				"on-site work requires a passing location check", http.StatusUnprocessableEntity,
				map[string]any{"radius_meters": cfg.GeofenceRadiusMeters})
		}
	}

	if payload.FormData != nil {
		if err := e.validateFormData(ctx, payload); err != nil {
			return nil, err
		}
	}

	if target == domain.TicketStatusClosed {
		if err := validateClosure(payload); err != nil {
			return nil, err
		}
	}

	// All gates passed: consume parts, then commit onto a copy.
	if target == domain.TicketStatusResolved {
		for _, usage := range payload.PartsUsed {
			if _, err := e.parts.Consume(ctx, usage.PartID, usage.Quantity, ticket.ID, actor.ID); err != nil {
				return nil, err
			}
		}
	}

	now := e.clock()
	updated := ticket.Clone()
	updated.Status = target
	updated.UpdatedAt = now
	if payload.FormData != nil {
		if updated.FormData == nil {
			updated.FormData = map[string]any{}
		}
		for key, value := range payload.FormData {
			updated.FormData[key] = value
		}
	}
	if payload.Diagnosis != nil {
		updated.Diagnosis = payload.Diagnosis
	}
	if target == domain.TicketStatusClosed {
		updated.Rating = payload.Rating
		updated.Feedback = payload.Feedback
		updated.ClosedAt = &now
	}
	return updated, nil
}

// beginsOnSiteWork reports whether the transition unlocks hands-on work and
// therefore requires a fresh geofence verification. Only technicians are
// site-bound; managers reassigning a job are not.
func (e *Engine) beginsOnSiteWork(ticket *domain.Ticket, target domain.TicketStatus, actor Actor) bool {
	return target == domain.TicketStatusInProgress && actor.Role == domain.RoleTechnician
}

func (e *Engine) validateFormData(ctx context.Context, payload TransitionPayload) error {
	if payload.FormKey == "" {
		return apperrors.NewValidationFailed("form data requires a form key", nil)
	}
	schema, err := e.schemas.GetByKey(ctx, payload.FormKey)
	if err != nil {
		return err
	}
	result, err := forms.Validate(schema, payload.FormData)
	if err != nil {
		// Malformed schema definition is a programmer/configuration error,
		// not a caller mistake.
		return apperrors.NewInternalError(err)
	}
	if !result.Valid {
		details := make(map[string]any, len(result.Errors))
		for field, reason := range result.Errors {
			details[field] = reason
		}
		return apperrors.NewValidationFailed("form data failed schema validation", details)
	}
	return nil
}

func validateClosure(payload TransitionPayload) error {
	if payload.Rating == nil {
		return apperrors.NewValidationFailed("closing a ticket requires a rating", map[string]any{
			"rating": "value is required",
		})
	}
	if *payload.Rating < 1 || *payload.Rating > 5 {
		return apperrors.NewValidationFailed("rating must be between 1 and 5", map[string]any{
			"rating": "must be an integer from 1 to 5",
		})
	}
	return nil
}

// ValidateCreation checks the fixed-at-creation ticket fields. These are not
// schema fields; they are plain enum and non-empty checks.
func ValidateCreation(title, description, assetID string, priority domain.TicketPriority) error {
	fieldErrors := map[string]any{}
	if title == "" {
		fieldErrors["title"] = "value is required"
	}
	if description == "" {
		fieldErrors["description"] = "value is required"
	}
	if assetID == "" {
		fieldErrors["asset_id"] = "value is required"
	}
	if !priority.Valid() {
		fieldErrors["priority"] = "unknown priority"
	}
	if len(fieldErrors) > 0 {
		return apperrors.NewValidationFailed("ticket creation payload invalid", fieldErrors)
	}
	return nil
}
