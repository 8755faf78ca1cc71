package service

import (
	"context"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// permissionChecker is the slice of the permission gate the services need.
// PermissionService satisfies it.
type permissionChecker interface {
	IsAllowed(role domain.Role, key string) bool
}

// partsReturner reverses a completion-time consume when the surrounding
// ticket commit fails. InventoryService satisfies it.
type partsReturner interface {
	Return(ctx context.Context, partID string, quantity int, ticketID, actorID string) (*domain.Part, error)
}
