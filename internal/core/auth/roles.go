// Package auth provides authorization checks and the request authentication
// context. All functions are pure; the HTTP middleware in the shell resolves
// tokens to users and stores them in the request context.
package auth

import "github.com/marofny/deckhand/internal/core/domain"

// =============================================================================
// Authorization Checks
// =============================================================================

// CanPlan checks if the role may request a deployment plan.
// Every authenticated role can plan - planning changes nothing.
func CanPlan(r domain.Role) bool {
	switch r {
	case domain.RoleSuperUser, domain.RoleFullAccess, domain.RoleUpdateOnly, domain.RoleReadOnly:
		return true
	default:
		return false
	}
}

// CanDeploy checks if the role may apply plans and roll back.
func CanDeploy(r domain.Role) bool {
	switch r {
	case domain.RoleSuperUser, domain.RoleFullAccess, domain.RoleUpdateOnly:
		return true
	default:
		return false
	}
}

// CanManageSecrets checks if the role may create, update, delete or reveal
// secret values.
func CanManageSecrets(r domain.Role) bool {
	switch r {
	case domain.RoleSuperUser, domain.RoleFullAccess:
		return true
	default:
		return false
	}
}

// CanListSecrets checks if the role may list secret keys. Listing exposes
// keys and timestamps only, never values.
func CanListSecrets(r domain.Role) bool {
	return CanPlan(r)
}

// CanManageUsers checks if the role may create or remove users.
func CanManageUsers(r domain.Role) bool {
	return r == domain.RoleSuperUser
}
