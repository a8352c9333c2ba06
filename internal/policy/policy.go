// Package policy centralizes role-based access decisions so the same
// rules gate every route instead of being duplicated per handler.
package policy

import "github.com/gescourrier/mail-registry-api/internal/models"

// Action names a capability a role may hold.
type Action string

const (
	// ManageUsers covers listing, updating, activating and deleting accounts.
	ManageUsers Action = "users.manage"
	// ListUsers covers reading the user directory (needed to pick assignees).
	ListUsers Action = "users.list"
	// WriteMail covers creating, updating and deleting registry records.
	WriteMail Action = "mail.write"
	// ManageAssignments covers creating and reassigning assignments.
	ManageAssignments Action = "assignments.manage"
)

var rules = map[Action][]models.UserRole{
	ManageUsers: {models.RoleAdmin},
	ListUsers: {
		models.RoleAdmin, models.RoleSecretariat, models.RoleDN, models.RoleDNA,
	},
	WriteMail: {models.RoleAdmin, models.RoleSecretariat},
	ManageAssignments: {
		models.RoleAdmin, models.RoleSecretariat, models.RoleDN, models.RoleDNA,
	},
}

// Can reports whether role is allowed to perform action.
func Can(role models.UserRole, action Action) bool {
	for _, allowed := range rules[action] {
		if allowed == role {
			return true
		}
	}
	return false
}
