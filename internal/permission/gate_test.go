package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

func TestGate_DefaultDeny(t *testing.T) {
	gate := NewGate(nil)
	for _, role := range []domain.Role{domain.RoleManager, domain.RoleTechnician} {
		assert.False(t, gate.IsAllowed(role, "tickets.create"))
		assert.False(t, gate.IsAllowed(role, "never.granted"))
	}
}

func TestGate_MatrixEntryGrants(t *testing.T) {
	gate := NewGate([]domain.PermissionEntry{
		{Role: domain.RoleTechnician, Key: "ticket.transition.open.in_progress", Allowed: true},
	})
	assert.True(t, gate.IsAllowed(domain.RoleTechnician, "ticket.transition.open.in_progress"))
	assert.False(t, gate.IsAllowed(domain.RoleManager, "ticket.transition.open.in_progress"))
}

func TestGate_ExplicitDenyHolds(t *testing.T) {
	gate := NewGate([]domain.PermissionEntry{
		{Role: domain.RoleManager, Key: "inventory.adjust", Allowed: false},
	})
	assert.False(t, gate.IsAllowed(domain.RoleManager, "inventory.adjust"))
}

func TestGate_PinnedAdminPermissionsAlwaysAllowed(t *testing.T) {
	// Even when the persisted matrix claims otherwise.
	gate := NewGate([]domain.PermissionEntry{
		{Role: domain.RoleAdmin, Key: KeyUsersManage, Allowed: false},
		{Role: domain.RoleAdmin, Key: KeySettingsManage, Allowed: false},
	})
	assert.True(t, gate.IsAllowed(domain.RoleAdmin, KeyUsersManage))
	assert.True(t, gate.IsAllowed(domain.RoleAdmin, KeySettingsManage))
}

func TestGate_PinningIsRoleSpecific(t *testing.T) {
	gate := NewGate(nil)
	assert.False(t, gate.IsAllowed(domain.RoleManager, KeyUsersManage))
	assert.False(t, gate.IsAllowed(domain.RoleTechnician, KeySettingsManage))
}

func TestValidateUpdate_RejectsPinnedFalseWrite(t *testing.T) {
	err := ValidateUpdate([]domain.PermissionEntry{
		{Role: domain.RoleAdmin, Key: KeyUsersManage, Allowed: false},
	})
	assert.Error(t, err)
}

func TestValidateUpdate_AllowsPinnedTrueWrite(t *testing.T) {
	err := ValidateUpdate([]domain.PermissionEntry{
		{Role: domain.RoleAdmin, Key: KeySettingsManage, Allowed: true},
		{Role: domain.RoleTechnician, Key: "tickets.create", Allowed: true},
	})
	assert.NoError(t, err)
}

func TestValidateUpdate_RejectsUnknownRole(t *testing.T) {
	err := ValidateUpdate([]domain.PermissionEntry{
		{Role: domain.Role("SUPERVISOR"), Key: "tickets.create", Allowed: true},
	})
	assert.Error(t, err)
}
