package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/observability"
	"github.com/spec-kit/maintenance-service/internal/permission"
	"github.com/spec-kit/maintenance-service/internal/repository"
	"github.com/spec-kit/maintenance-service/internal/workflow"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

type fakeTicketRepo struct {
	mu         sync.Mutex
	seq        int
	tickets    map[string]domain.Ticket
	failUpdate error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]domain.Ticket)}
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = "t" + strconv.Itoa(r.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = *ticket.Clone()
	return nil
}

func (r *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate != nil {
		return r.failUpdate
	}
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.tickets[ticket.ID] = *ticket.Clone()
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return ticket.Clone(), nil
}

func (r *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.TechnicianID != nil {
			if ticket.TechnicianID == nil || *ticket.TechnicianID != *filter.TechnicianID {
				continue
			}
		}
		result = append(result, *ticket.Clone())
	}
	return result, nil
}

func (r *fakeTicketRepo) CountByAsset(ctx context.Context, assetID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, ticket := range r.tickets {
		if ticket.AssetID == assetID {
			count++
		}
	}
	return count, nil
}

type fakeAssetRepo struct {
	assets map[string]domain.Asset
}

func (r *fakeAssetRepo) Create(ctx context.Context, asset *domain.Asset) error {
	r.assets[asset.ID] = *asset
	return nil
}

func (r *fakeAssetRepo) Update(ctx context.Context, asset *domain.Asset) error {
	if _, ok := r.assets[asset.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.assets[asset.ID] = *asset
	return nil
}

func (r *fakeAssetRepo) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	asset, ok := r.assets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &asset, nil
}

func (r *fakeAssetRepo) List(ctx context.Context, branchID *string) ([]domain.Asset, error) {
	var result []domain.Asset
	for _, asset := range r.assets {
		result = append(result, asset)
	}
	return result, nil
}

func (r *fakeAssetRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.assets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.assets, id)
	return nil
}

type fakeConfigRepo struct {
	cfg domain.SystemConfig
}

func (r *fakeConfigRepo) Get(ctx context.Context) (*domain.SystemConfig, error) {
	cfg := r.cfg
	return &cfg, nil
}

func (r *fakeConfigRepo) Save(ctx context.Context, cfg *domain.SystemConfig) error {
	r.cfg = *cfg
	return nil
}

type fakeSchemaRepo struct {
	schemas map[string]domain.FormSchema
}

func (r *fakeSchemaRepo) GetByKey(ctx context.Context, formKey string) (*domain.FormSchema, error) {
	schema, ok := r.schemas[formKey]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &schema, nil
}

func (r *fakeSchemaRepo) Upsert(ctx context.Context, schema *domain.FormSchema) error {
	r.schemas[schema.FormKey] = *schema
	return nil
}

func (r *fakeSchemaRepo) List(ctx context.Context) ([]domain.FormSchema, error) {
	var result []domain.FormSchema
	for _, schema := range r.schemas {
		result = append(result, schema)
	}
	return result, nil
}

type fakePartRepo struct {
	mu    sync.Mutex
	parts map[string]domain.Part
}

func (r *fakePartRepo) Create(ctx context.Context, part *domain.Part) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if part.ID == "" {
		part.ID = "p" + strconv.Itoa(len(r.parts)+1)
	}
	r.parts[part.ID] = *part
	return nil
}

func (r *fakePartRepo) GetByID(ctx context.Context, id string) (*domain.Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	part, ok := r.parts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &part, nil
}

func (r *fakePartRepo) List(ctx context.Context) ([]domain.Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Part
	for _, part := range r.parts {
		result = append(result, part)
	}
	return result, nil
}

func (r *fakePartRepo) UpdateStock(ctx context.Context, id string, stock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	part, ok := r.parts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	part.Stock = stock
	r.parts[id] = part
	return nil
}

type fakeTxRepo struct {
	mu      sync.Mutex
	entries []domain.InventoryTransaction
}

func (r *fakeTxRepo) Append(ctx context.Context, tx *domain.InventoryTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *tx)
	return nil
}

func (r *fakeTxRepo) ListByPart(ctx context.Context, partID string, limit, offset int) ([]domain.InventoryTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.InventoryTransaction
	for _, entry := range r.entries {
		if entry.PartID == partID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (r *fakeTxRepo) SumByPart(ctx context.Context, partID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, entry := range r.entries {
		if entry.PartID == partID {
			total += entry.QuantityChange
		}
	}
	return total, nil
}

type fakeSites struct {
	verified map[string]bool
}

func (f *fakeSites) Verified(ctx context.Context, ticketID, technicianID string) (bool, error) {
	return f.verified[ticketID+":"+technicianID], nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) ofType(eventType events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []events.Event
	for _, event := range r.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

type fixture struct {
	tickets   *fakeTicketRepo
	parts     *fakePartRepo
	txs       *fakeTxRepo
	configs   *fakeConfigRepo
	sites     *fakeSites
	recorder  *eventRecorder
	service   *TicketService
	inventory *InventoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	entries := workflow.DefaultPermissionEntries()
	entries = append(entries,
		domain.PermissionEntry{Role: domain.RoleManager, Key: permission.KeyTicketsCreate, Allowed: true},
		domain.PermissionEntry{Role: domain.RoleTechnician, Key: permission.KeyTicketsCreate, Allowed: true},
		domain.PermissionEntry{Role: domain.RoleManager, Key: permission.KeyInventoryAdjust, Allowed: true},
	)
	gate := permission.NewGate(entries)

	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketClosed,
		events.EventInventoryAdjusted,
		events.EventPartLowStock,
	} {
		dispatcher.Subscribe(eventType, recorder.record)
	}

	ticketRepo := newFakeTicketRepo()
	assetRepo := &fakeAssetRepo{assets: map[string]domain.Asset{
		"a1": {ID: "a1", Name: "Walk-in freezer", SerialNumber: "WF-100", BranchID: "b1"},
	}}
	partRepo := &fakePartRepo{parts: map[string]domain.Part{
		"p1": {ID: "p1", Name: "Compressor relay", Stock: 5, MinStock: 2},
	}}
	txRepo := &fakeTxRepo{}
	configRepo := &fakeConfigRepo{cfg: domain.DefaultSystemConfig()}
	schemaRepo := &fakeSchemaRepo{schemas: make(map[string]domain.FormSchema)}
	sites := &fakeSites{verified: make(map[string]bool)}

	configService := NewConfigService(configRepo, nil, time.Minute, gate, dispatcher, nil)
	schemaService := NewSchemaService(schemaRepo, gate, dispatcher)
	inventoryService := NewInventoryService(partRepo, txRepo, gate, dispatcher, nil)

	engine := workflow.NewEngine(workflow.Dependencies{
		Gate:    gate,
		Schemas: schemaService,
		Parts:   inventoryService,
		Sites:   sites,
	})

	ticketService := NewTicketService(TicketDependencies{
		TicketRepo: ticketRepo,
		AssetRepo:  assetRepo,
		Schemas:    schemaService,
		Configs:    configService,
		Engine:     engine,
		Parts:      inventoryService,
		Gate:       gate,
		Dispatcher: dispatcher,
		Metrics:    observability.NewMetrics(),
	})

	return &fixture{
		tickets:   ticketRepo,
		parts:     partRepo,
		txs:       txRepo,
		configs:   configRepo,
		sites:     sites,
		recorder:  recorder,
		service:   ticketService,
		inventory: inventoryService,
	}
}

func (f *fixture) createTicket(t *testing.T, actor workflow.Actor) *domain.Ticket {
	t.Helper()
	ticket, err := f.service.CreateTicket(context.Background(), actor, TicketCreateInput{
		Title:       "Freezer not cooling",
		Description: "Temperature rising past safe threshold",
		AssetID:     "a1",
		Priority:    domain.TicketPriorityHigh,
		Location:    domain.Coordinates{Lat: 24.7136, Lng: 46.6753},
	})
	require.NoError(t, err)
	return ticket
}

var (
	manager    = workflow.Actor{ID: "u-mgr", Role: domain.RoleManager}
	technician = workflow.Actor{ID: "u-tech", Role: domain.RoleTechnician}
)

func TestCreateTicket(t *testing.T) {
	f := newFixture(t)

	ticket := f.createTicket(t, manager)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Regexp(t, `^JOB-[0-9A-F]{8}$`, ticket.ExternalKey)
	assert.Len(t, f.recorder.ofType(events.EventTicketCreated), 1)
}

func TestCreateTicketUnknownAsset(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateTicket(context.Background(), manager, TicketCreateInput{
		Title:       "x",
		Description: "y",
		AssetID:     "missing",
		Priority:    domain.TicketPriorityLow,
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestCreateTicketBlockedInMaintenanceMode(t *testing.T) {
	f := newFixture(t)
	f.configs.cfg.MaintenanceMode = true

	_, err := f.service.CreateTicket(context.Background(), manager, TicketCreateInput{
		Title:       "x",
		Description: "y",
		AssetID:     "a1",
		Priority:    domain.TicketPriorityLow,
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeMaintenanceMode))
}

func TestTransitionAssignsTechnicianOnTake(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t, manager)
	f.sites.verified[ticket.ID+":"+technician.ID] = true

	updated, err := f.service.Transition(context.Background(), technician, ticket.ID, domain.TicketStatusInProgress, workflow.TransitionPayload{})
	require.NoError(t, err)
	require.NotNil(t, updated.TechnicianID)
	assert.Equal(t, technician.ID, *updated.TechnicianID)

	stored, err := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, stored.Status)
	assert.Len(t, f.recorder.ofType(events.EventTicketStatusChanged), 1)
}

func TestTransitionRejectsUnverifiedTechnician(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t, manager)

	_, err := f.service.Transition(context.Background(), technician, ticket.ID, domain.TicketStatusInProgress, workflow.TransitionPayload{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeOutOfRange))

	stored, getErr := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status, "failed transition must not persist")
}

func TestResolveConsumesParts(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t, manager)
	f.sites.verified[ticket.ID+":"+technician.ID] = true

	_, err := f.service.Transition(context.Background(), technician, ticket.ID, domain.TicketStatusInProgress, workflow.TransitionPayload{})
	require.NoError(t, err)

	_, err = f.service.Transition(context.Background(), technician, ticket.ID, domain.TicketStatusResolved, workflow.TransitionPayload{
		PartsUsed: []workflow.PartUsage{{PartID: "p1", Quantity: 4}},
	})
	require.NoError(t, err)

	part, err := f.parts.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, part.Stock)

	txs, err := f.txs.ListByPart(context.Background(), "p1", 10, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, -4, txs[0].QuantityChange)
	require.NotNil(t, txs[0].TicketID)
	assert.Equal(t, ticket.ID, *txs[0].TicketID)

	// 1 <= MinStock 2, so the reorder signal fires.
	assert.Len(t, f.recorder.ofType(events.EventPartLowStock), 1)
}

func TestResolveCommitFailureReturnsParts(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t, manager)
	f.sites.verified[ticket.ID+":"+technician.ID] = true

	_, err := f.service.Transition(context.Background(), technician, ticket.ID, domain.TicketStatusInProgress, workflow.TransitionPayload{})
	require.NoError(t, err)

	f.tickets.failUpdate = errors.New("connection reset")
	_, err = f.service.Transition(context.Background(), technician, ticket.ID, domain.TicketStatusResolved, workflow.TransitionPayload{
		PartsUsed: []workflow.PartUsage{{PartID: "p1", Quantity: 4}},
	})
	require.Error(t, err)
	f.tickets.failUpdate = nil

	part, err := f.parts.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, part.Stock, "stock must be restored when the ticket write fails")

	// The ledger keeps both sides: the consume and its ticket-linked reversal.
	txs, err := f.txs.ListByPart(context.Background(), "p1", 10, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, -4, txs[0].QuantityChange)
	assert.Equal(t, 4, txs[1].QuantityChange)
	assert.Equal(t, domain.TransactionTypeIn, txs[1].Type)
	require.NotNil(t, txs[1].TicketID)
	assert.Equal(t, ticket.ID, *txs[1].TicketID)

	stored, err := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, stored.Status)
}

func TestManagerClosesResolvedTicket(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t, manager)
	f.sites.verified[ticket.ID+":"+technician.ID] = true

	_, err := f.service.Transition(context.Background(), technician, ticket.ID, domain.TicketStatusInProgress, workflow.TransitionPayload{})
	require.NoError(t, err)
	_, err = f.service.Transition(context.Background(), technician, ticket.ID, domain.TicketStatusResolved, workflow.TransitionPayload{})
	require.NoError(t, err)

	rating := 4
	closed, err := f.service.Transition(context.Background(), manager, ticket.ID, domain.TicketStatusClosed, workflow.TransitionPayload{Rating: &rating})
	require.NoError(t, err)
	require.NotNil(t, closed.Rating)
	assert.Equal(t, 4, *closed.Rating)
	require.NotNil(t, closed.ClosedAt)
	assert.Equal(t, closed.UpdatedAt, *closed.ClosedAt)
	assert.Len(t, f.recorder.ofType(events.EventTicketClosed), 1)
}

func TestVerifySite(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t, manager)

	// At the ticket location.
	result, err := f.service.VerifySite(context.Background(), technician, ticket.ID, domain.Coordinates{Lat: 24.7136, Lng: 46.6753})
	require.NoError(t, err)
	assert.True(t, result.InRange)

	// Roughly 850 km away.
	result, err = f.service.VerifySite(context.Background(), technician, ticket.ID, domain.Coordinates{Lat: 21.4858, Lng: 39.1925})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeOutOfRange))
	assert.False(t, result.InRange)
	assert.Greater(t, result.DistanceMeters, 100000.0)
}

func TestListTicketsMarksOverdue(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t, manager)

	// Age the ticket past the high-priority window.
	f.tickets.mu.Lock()
	aged := f.tickets.tickets[ticket.ID]
	aged.CreatedAt = time.Now().Add(-10 * time.Hour)
	f.tickets.tickets[ticket.ID] = aged
	f.tickets.mu.Unlock()

	views, err := f.service.ListTickets(context.Background(), repository.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Overdue)
}

func TestInventoryAdjustRequiresPermission(t *testing.T) {
	f := newFixture(t)

	_, err := f.inventory.Adjust(context.Background(), domain.RoleTechnician, technician.ID, "p1", -1)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	part, err := f.inventory.Adjust(context.Background(), domain.RoleManager, manager.ID, "p1", -1)
	require.NoError(t, err)
	assert.Equal(t, 4, part.Stock)
	assert.Len(t, f.recorder.ofType(events.EventInventoryAdjusted), 1)
}
