package policy

import (
	"testing"

	"github.com/gescourrier/mail-registry-api/internal/models"
	"github.com/stretchr/testify/require"
)

func TestCan(t *testing.T) {
	tests := []struct {
		name    string
		role    models.UserRole
		action  Action
		allowed bool
	}{
		{"admin manages users", models.RoleAdmin, ManageUsers, true},
		{"secretariat cannot manage users", models.RoleSecretariat, ManageUsers, false},
		{"secretariat writes mail", models.RoleSecretariat, WriteMail, true},
		{"dfs cannot write mail", models.RoleDFS, WriteMail, false},
		{"dn manages assignments", models.RoleDN, ManageAssignments, true},
		{"comptabilite cannot manage assignments", models.RoleComptabilite, ManageAssignments, false},
		{"dna lists users", models.RoleDNA, ListUsers, true},
		{"unknown role denied everywhere", models.UserRole("GUEST"), WriteMail, false},
		{"unknown action denied", models.RoleAdmin, Action("mail.export"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.allowed, Can(tt.role, tt.action))
		})
	}
}
