package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/permission"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

type fakeSchemas struct {
	schemas map[string]*domain.FormSchema
}

func (f *fakeSchemas) GetByKey(_ context.Context, formKey string) (*domain.FormSchema, error) {
	schema, ok := f.schemas[formKey]
	if !ok {
		return nil, apperrors.NewNotFound("form schema", map[string]any{"form_key": formKey})
	}
	return schema, nil
}

type consumedLine struct {
	partID   string
	quantity int
	ticketID string
}

type fakeParts struct {
	consumed []consumedLine
}

func (f *fakeParts) Consume(_ context.Context, partID string, quantity int, ticketID, _ string) (*domain.Part, error) {
	f.consumed = append(f.consumed, consumedLine{partID: partID, quantity: quantity, ticketID: ticketID})
	return &domain.Part{ID: partID}, nil
}

type fakeSites struct {
	verified map[string]bool
}

func (f *fakeSites) Verified(_ context.Context, ticketID, technicianID string) (bool, error) {
	return f.verified[ticketID+":"+technicianID], nil
}

type fixture struct {
	engine *Engine
	parts  *fakeParts
	sites  *fakeSites
	cfg    domain.SystemConfig
}

func newFixture() *fixture {
	parts := &fakeParts{}
	sites := &fakeSites{verified: map[string]bool{}}
	schemas := &fakeSchemas{schemas: map[string]*domain.FormSchema{
		"ticket_diagnosis": {
			ID:      "s1",
			FormKey: "ticket_diagnosis",
			Fields: []domain.FormField{
				{Key: "noise_level", Type: domain.FieldTypeSelect, Required: true, Options: []string{"Normal", "Loud"}},
				{Key: "temperature", Type: domain.FieldTypeNumber},
			},
		},
	}}
	engine := NewEngine(Dependencies{
		Gate:    permission.NewGate(DefaultPermissionEntries()),
		Schemas: schemas,
		Parts:   parts,
		Sites:   sites,
		Clock:   func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) },
	})
	return &fixture{engine: engine, parts: parts, sites: sites, cfg: domain.DefaultSystemConfig()}
}

func openTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:       "t1",
		Title:    "Cooling Unit Leakage",
		AssetID:  "a2",
		Status:   domain.TicketStatusOpen,
		Priority: domain.TicketPriorityHigh,
	}
}

var (
	technician = Actor{ID: "u2", Role: domain.RoleTechnician}
	manager    = Actor{ID: "u3", Role: domain.RoleManager}
	admin      = Actor{ID: "u1", Role: domain.RoleAdmin}
)

func TestTransition_TechnicianStartsWorkOnSite(t *testing.T) {
	f := newFixture()
	f.sites.verified["t1:u2"] = true

	updated, err := f.engine.RequestTransition(context.Background(), openTicket(), domain.TicketStatusInProgress, technician, TransitionPayload{}, f.cfg)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	assert.Nil(t, updated.ClosedAt)
}

func TestTransition_StartWithoutSiteCheckFails(t *testing.T) {
	f := newFixture()

	_, err := f.engine.RequestTransition(context.Background(), openTicket(), domain.TicketStatusInProgress, technician, TransitionPayload{}, f.cfg)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeOutOfRange))
}

func TestTransition_AdminStartNeedsNoSiteCheck(t *testing.T) {
	f := newFixture()

	updated, err := f.engine.RequestTransition(context.Background(), openTicket(), domain.TicketStatusInProgress, admin, TransitionPayload{}, f.cfg)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
}

func TestTransition_NonAdjacentRejected(t *testing.T) {
	f := newFixture()

	_, err := f.engine.RequestTransition(context.Background(), openTicket(), domain.TicketStatusResolved, technician, TransitionPayload{}, f.cfg)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func TestTransition_ClosedIsTerminal(t *testing.T) {
	f := newFixture()
	ticket := openTicket()
	ticket.Status = domain.TicketStatusClosed

	for _, target := range []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusResolved} {
		_, err := f.engine.RequestTransition(context.Background(), ticket, target, admin, TransitionPayload{}, f.cfg)
		assert.Error(t, err, "to %s", target)
	}
}

func TestTransition_MaintenanceModeBlocksWork(t *testing.T) {
	f := newFixture()
	f.cfg.MaintenanceMode = true
	f.sites.verified["t1:u2"] = true

	_, err := f.engine.RequestTransition(context.Background(), openTicket(), domain.TicketStatusInProgress, technician, TransitionPayload{}, f.cfg)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeMaintenanceMode))
}

func TestTransition_PermissionDenied(t *testing.T) {
	f := newFixture()
	ticket := openTicket()
	ticket.Status = domain.TicketStatusInProgress

	// Technicians have no grant for IN_PROGRESS -> OPEN reassignment.
	_, err := f.engine.RequestTransition(context.Background(), ticket, domain.TicketStatusOpen, technician, TransitionPayload{}, f.cfg)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestTransition_DiagnosisPayloadValidated(t *testing.T) {
	f := newFixture()
	ticket := openTicket()
	ticket.Status = domain.TicketStatusInProgress

	_, err := f.engine.RequestTransition(context.Background(), ticket, domain.TicketStatusResolved, technician, TransitionPayload{
		FormKey:  "ticket_diagnosis",
		FormData: map[string]any{"noise_level": "Rattling"},
	}, f.cfg)
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	domainErr := apperrors.ToDomainError(err)
	assert.Contains(t, domainErr.Details, "noise_level")
}

func TestTransition_ValidDiagnosisMergedIntoFormData(t *testing.T) {
	f := newFixture()
	ticket := openTicket()
	ticket.Status = domain.TicketStatusInProgress
	ticket.FormData = map[string]any{"error_code": "E-404"}
	notes := "Seal failure on primary valve."

	updated, err := f.engine.RequestTransition(context.Background(), ticket, domain.TicketStatusResolved, technician, TransitionPayload{
		FormKey:   "ticket_diagnosis",
		FormData:  map[string]any{"noise_level": "Loud", "temperature": 82.5},
		Diagnosis: &notes,
	}, f.cfg)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
	assert.Equal(t, "Loud", updated.FormData["noise_level"])
	assert.Equal(t, "E-404", updated.FormData["error_code"])
	require.NotNil(t, updated.Diagnosis)
	assert.Equal(t, notes, *updated.Diagnosis)
	// Prepare/commit: the input ticket is untouched.
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	assert.NotContains(t, ticket.FormData, "noise_level")
}

func TestTransition_ResolutionConsumesParts(t *testing.T) {
	f := newFixture()
	ticket := openTicket()
	ticket.Status = domain.TicketStatusInProgress

	_, err := f.engine.RequestTransition(context.Background(), ticket, domain.TicketStatusResolved, technician, TransitionPayload{
		PartsUsed: []PartUsage{{PartID: "p1", Quantity: 2}, {PartID: "p3", Quantity: 1}},
	}, f.cfg)
	require.NoError(t, err)

	require.Len(t, f.parts.consumed, 2)
	assert.Equal(t, consumedLine{partID: "p1", quantity: 2, ticketID: "t1"}, f.parts.consumed[0])
	assert.Equal(t, consumedLine{partID: "p3", quantity: 1, ticketID: "t1"}, f.parts.consumed[1])
}

func TestTransition_FailedValidationConsumesNothing(t *testing.T) {
	f := newFixture()
	ticket := openTicket()
	ticket.Status = domain.TicketStatusInProgress

	_, err := f.engine.RequestTransition(context.Background(), ticket, domain.TicketStatusResolved, technician, TransitionPayload{
		FormKey:   "ticket_diagnosis",
		FormData:  map[string]any{},
		PartsUsed: []PartUsage{{PartID: "p1", Quantity: 2}},
	}, f.cfg)
	require.Error(t, err)
	assert.Empty(t, f.parts.consumed)
}

func TestTransition_TechnicianCanNeverClose(t *testing.T) {
	f := newFixture()
	ticket := openTicket()
	ticket.Status = domain.TicketStatusResolved
	rating := 5

	_, err := f.engine.RequestTransition(context.Background(), ticket, domain.TicketStatusClosed, technician, TransitionPayload{Rating: &rating}, f.cfg)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestTransition_ManagerClosesWithRating(t *testing.T) {
	f := newFixture()
	ticket := openTicket()
	ticket.Status = domain.TicketStatusResolved
	rating := 4
	feedback := "Quick and clean repair."

	updated, err := f.engine.RequestTransition(context.Background(), ticket, domain.TicketStatusClosed, manager, TransitionPayload{
		Rating:   &rating,
		Feedback: &feedback,
	}, f.cfg)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusClosed, updated.Status)
	require.NotNil(t, updated.ClosedAt)
	assert.Equal(t, updated.UpdatedAt, *updated.ClosedAt)
	require.NotNil(t, updated.Rating)
	assert.Equal(t, 4, *updated.Rating)
	require.NotNil(t, updated.Feedback)
	assert.Equal(t, feedback, *updated.Feedback)
}

func TestTransition_CloseRequiresRating(t *testing.T) {
	f := newFixture()
	ticket := openTicket()
	ticket.Status = domain.TicketStatusResolved

	_, err := f.engine.RequestTransition(context.Background(), ticket, domain.TicketStatusClosed, manager, TransitionPayload{}, f.cfg)
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	bad := 7
	_, err = f.engine.RequestTransition(context.Background(), ticket, domain.TicketStatusClosed, manager, TransitionPayload{Rating: &bad}, f.cfg)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestTransition_CloseOnlyFromResolved(t *testing.T) {
	f := newFixture()
	rating := 5
	for _, from := range []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusPendingParts} {
		ticket := openTicket()
		ticket.Status = from
		_, err := f.engine.RequestTransition(context.Background(), ticket, domain.TicketStatusClosed, manager, TransitionPayload{Rating: &rating}, f.cfg)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition), "from %s", from)
	}
}

func TestTransition_PendingPartsRoundTrip(t *testing.T) {
	f := newFixture()
	f.sites.verified["t1:u2"] = true
	ticket := openTicket()
	ticket.Status = domain.TicketStatusInProgress

	waiting, err := f.engine.RequestTransition(context.Background(), ticket, domain.TicketStatusPendingParts, technician, TransitionPayload{}, f.cfg)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPendingParts, waiting.Status)

	resumed, err := f.engine.RequestTransition(context.Background(), waiting, domain.TicketStatusInProgress, technician, TransitionPayload{}, f.cfg)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, resumed.Status)
}

func TestTransition_FormDataWithoutKeyRejected(t *testing.T) {
	f := newFixture()
	ticket := openTicket()
	ticket.Status = domain.TicketStatusInProgress

	_, err := f.engine.RequestTransition(context.Background(), ticket, domain.TicketStatusResolved, technician, TransitionPayload{
		FormData: map[string]any{"noise_level": "Loud"},
	}, f.cfg)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestDefaultPermissionKey(t *testing.T) {
	assert.Equal(t, "ticket.transition.open.in_progress",
		DefaultPermissionKey(domain.TicketStatusOpen, domain.TicketStatusInProgress))
	assert.Equal(t, "ticket.transition.resolved.closed",
		DefaultPermissionKey(domain.TicketStatusResolved, domain.TicketStatusClosed))
}

func TestValidateCreation(t *testing.T) {
	assert.NoError(t, ValidateCreation("Mixer Vibration", "Unusual vibration at speed.", "a1", domain.TicketPriorityMedium))

	err := ValidateCreation("", "", "", domain.TicketPriority("SOMEDAY"))
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
	details := apperrors.ToDomainError(err).Details
	assert.Len(t, details, 4)
}
