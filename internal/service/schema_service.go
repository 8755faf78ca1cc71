package service

import (
	"context"
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/forms"
	"github.com/spec-kit/maintenance-service/internal/permission"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// SchemaService manages administrator-defined form schemas. Definitions are
// validated before they are saved so a broken schema can never reach the
// validator at submission time.
type SchemaService struct {
	repo       repository.FormSchemaRepository
	gate       permissionChecker
	dispatcher events.Dispatcher
}

// NewSchemaService constructs the service.
func NewSchemaService(repo repository.FormSchemaRepository, gate permissionChecker, dispatcher events.Dispatcher) *SchemaService {
	return &SchemaService{repo: repo, gate: gate, dispatcher: dispatcher}
}

// GetByKey satisfies workflow.SchemaSource.
func (s *SchemaService) GetByKey(ctx context.Context, formKey string) (*domain.FormSchema, error) {
	return s.repo.GetByKey(ctx, formKey)
}

// List returns all schemas.
func (s *SchemaService) List(ctx context.Context) ([]domain.FormSchema, error) {
	return s.repo.List(ctx)
}

// Save validates and upserts a schema definition.
func (s *SchemaService) Save(ctx context.Context, actor domain.Role, actorID string, schema *domain.FormSchema) error {
	if !s.gate.IsAllowed(actor, permission.KeySettingsManage) {
		return apperrors.NewForbidden("schema management requires the settings.manage permission")
	}
	if schema.FormKey == "" {
		return apperrors.NewValidationFailed("schema requires a form key", map[string]any{
			"form_key": "value is required",
		})
	}
	if err := forms.ValidateDefinition(schema); err != nil {
		return apperrors.NewValidationFailed(err.Error(), nil)
	}
	if err := s.repo.Upsert(ctx, schema); err != nil {
		return err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventSchemaUpdated,
			Actor:     events.Actor{ID: actorID, Role: actor},
			Timestamp: time.Now(),
			Payload: events.SchemaUpdatedPayload{
				FormKey:    schema.FormKey,
				FieldCount: len(schema.Fields),
			},
		})
	}
	return nil
}
