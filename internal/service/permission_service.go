package service

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/permission"
	"github.com/spec-kit/maintenance-service/internal/repository"
	"github.com/spec-kit/maintenance-service/internal/workflow"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// PermissionService owns the in-memory permission gate and keeps it in sync
// with the persisted matrix. It implements workflow.PermissionChecker, so the
// engine always consults the freshest gate.
type PermissionService struct {
	repo       repository.PermissionRepository
	dispatcher events.Dispatcher

	mu   sync.RWMutex
	gate *permission.Gate
}

// NewPermissionService constructs the service with an empty (default-deny)
// gate. Call Reload before serving traffic.
func NewPermissionService(repo repository.PermissionRepository, dispatcher events.Dispatcher) *PermissionService {
	return &PermissionService{
		repo:       repo,
		dispatcher: dispatcher,
		gate:       permission.NewGate(nil),
	}
}

// Reload rebuilds the gate from storage. An empty matrix falls back to the
// seed grants so a fresh installation is usable out of the box.
func (s *PermissionService) Reload(ctx context.Context) error {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		entries = workflow.DefaultPermissionEntries()
	}
	s.mu.Lock()
	s.gate = permission.NewGate(entries)
	s.mu.Unlock()
	return nil
}

// IsAllowed satisfies workflow.PermissionChecker.
func (s *PermissionService) IsAllowed(role domain.Role, key string) bool {
	s.mu.RLock()
	gate := s.gate
	s.mu.RUnlock()
	return gate.IsAllowed(role, key)
}

// List returns the persisted matrix.
func (s *PermissionService) List(ctx context.Context) ([]domain.PermissionEntry, error) {
	return s.repo.List(ctx)
}

// Update replaces the matrix and swaps in a rebuilt gate. Writes that would
// deny a locked pair are rejected before anything is persisted.
func (s *PermissionService) Update(ctx context.Context, actor domain.Role, actorID string, entries []domain.PermissionEntry) error {
	if !s.IsAllowed(actor, permission.KeyUsersManage) {
		return apperrors.NewForbidden("permission management requires the users.manage permission")
	}
	if err := permission.ValidateUpdate(entries); err != nil {
		return apperrors.NewValidationFailed(err.Error(), nil)
	}
	if err := s.repo.ReplaceAll(ctx, entries); err != nil {
		return err
	}
	s.mu.Lock()
	s.gate = permission.NewGate(entries)
	s.mu.Unlock()

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventPermissionsUpdated,
			Actor:     events.Actor{ID: actorID, Role: actor},
			Timestamp: time.Now(),
			Payload:   map[string]any{"entry_count": len(entries)},
		})
	}
	return nil
}
