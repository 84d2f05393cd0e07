package domain

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// Roles
// =============================================================================

// Role is a user's access level on the control plane.
type Role string

const (
	// RoleSuperUser can do everything, including user management.
	RoleSuperUser Role = "super-user"

	// RoleFullAccess can plan, deploy, roll back and manage secrets.
	RoleFullAccess Role = "full-access"

	// RoleUpdateOnly can plan, deploy and roll back, but not touch secrets.
	RoleUpdateOnly Role = "update-only"

	// RoleReadOnly can plan and list, nothing else.
	RoleReadOnly Role = "read-only"
)

// ErrUnknownRole is returned when a role string is not recognized.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole validates and converts a role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperUser, RoleFullAccess, RoleUpdateOnly, RoleReadOnly:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownRole)
	}
}

// =============================================================================
// User
// =============================================================================

// User is one operator account on the control plane. PasswordHash is a
// bcrypt hash; Token is the opaque bearer token the CLI authenticates with.
type User struct {
	ID           int       `db:"id"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	Token        string    `db:"token"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}
