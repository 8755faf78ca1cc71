package workflow

import (
	"strings"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// PermissionKeyFunc resolves the permission key guarding a transition. The
// mapping is injectable so the key taxonomy stays an administrative concern
// rather than hard-coded transition logic.
type PermissionKeyFunc func(from, to domain.TicketStatus) string

// DefaultPermissionKey is the standard resolver:
// ticket.transition.<from>.<to> with lower-cased status names.
func DefaultPermissionKey(from, to domain.TicketStatus) string {
	return "ticket.transition." + strings.ToLower(string(from)) + "." + strings.ToLower(string(to))
}

// DefaultPermissionEntries returns the seed matrix for a fresh installation:
// technicians work tickets, managers confirm and close, admins can do both.
func DefaultPermissionEntries() []domain.PermissionEntry {
	type grant struct {
		from, to domain.TicketStatus
		roles    []domain.Role
	}
	adminTech := []domain.Role{domain.RoleAdmin, domain.RoleTechnician}
	adminMgr := []domain.Role{domain.RoleAdmin, domain.RoleManager}
	grants := []grant{
		{domain.TicketStatusOpen, domain.TicketStatusInProgress, adminTech},
		{domain.TicketStatusInProgress, domain.TicketStatusOpen, adminMgr},
		{domain.TicketStatusInProgress, domain.TicketStatusPendingParts, adminTech},
		{domain.TicketStatusPendingParts, domain.TicketStatusInProgress, adminTech},
		{domain.TicketStatusInProgress, domain.TicketStatusResolved, adminTech},
		{domain.TicketStatusResolved, domain.TicketStatusClosed, adminMgr},
	}

	var entries []domain.PermissionEntry
	for _, g := range grants {
		for _, role := range g.roles {
			entries = append(entries, domain.PermissionEntry{
				Role:    role,
				Key:     DefaultPermissionKey(g.from, g.to),
				Allowed: true,
			})
		}
	}
	return entries
}
