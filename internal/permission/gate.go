package permission

import (
	"fmt"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// Well-known permission keys.
const (
	KeyUsersManage     = "users.manage"
	KeySettingsManage  = "settings.manage"
	KeyTicketsCreate   = "tickets.create"
	KeyInventoryAdjust = "inventory.adjust"
)

// pinned lists the (role, key) pairs hard-wired to allowed regardless of the
// persisted matrix. They keep an administrator from locking everyone out.
var pinned = map[domain.Role]map[string]bool{
	domain.RoleAdmin: {
		KeyUsersManage:    true,
		KeySettingsManage: true,
	},
}

// Gate answers "can role R perform action A" from a role-permission matrix.
// Absent entries deny.
type Gate struct {
	entries map[string]bool
}

// NewGate builds a gate from persisted matrix entries.
func NewGate(entries []domain.PermissionEntry) *Gate {
	g := &Gate{entries: make(map[string]bool, len(entries))}
	for _, entry := range entries {
		g.entries[matrixKey(entry.Role, entry.Key)] = entry.Allowed
	}
	return g
}

// IsAllowed reports whether the role may perform the action. Pinned pairs win
// over matrix content; everything else is default-deny.
func (g *Gate) IsAllowed(role domain.Role, key string) bool {
	if Pinned(role, key) {
		return true
	}
	return g.entries[matrixKey(role, key)]
}

// Pinned reports whether the (role, key) pair is hard-wired to allowed.
func Pinned(role domain.Role, key string) bool {
	return pinned[role][key]
}

// ValidateUpdate rejects attempts to persist a pinned pair as denied. The
// rejection is explicit so administrators get feedback instead of a silent
// drop.
func ValidateUpdate(entries []domain.PermissionEntry) error {
	for _, entry := range entries {
		if !entry.Allowed && Pinned(entry.Role, entry.Key) {
			return fmt.Errorf("permission %s for role %s is locked and cannot be revoked", entry.Key, entry.Role)
		}
		if !entry.Role.Valid() {
			return fmt.Errorf("unknown role %q", entry.Role)
		}
	}
	return nil
}

func matrixKey(role domain.Role, key string) string {
	return string(role) + ":" + key
}
