package domain

import "time"

// Role enumerates actor roles in the maintenance workflow.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleTechnician Role = "TECHNICIAN"
)

// Valid reports whether the role is known.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleTechnician:
		return true
	}
	return false
}

// User models an operator: administrator, branch manager, or field technician.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	BranchID     *string
	AvatarURL    string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PermissionEntry is one cell of the role-permission matrix.
type PermissionEntry struct {
	Role    Role
	Key     string
	Allowed bool
}
