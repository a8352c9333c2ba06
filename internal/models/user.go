package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin        UserRole = "ADMIN"
	RoleDN           UserRole = "DN"
	RoleDNA          UserRole = "DNA"
	RoleBAOC         UserRole = "BAOC"
	RoleCPDI         UserRole = "CPDI"
	RoleDFS          UserRole = "DFS"
	RoleDMS          UserRole = "DMS"
	RoleDPES         UserRole = "DPES"
	RoleDSS          UserRole = "DSS"
	RoleComptabilite UserRole = "COMPTABILITE"
	RoleSecretariat  UserRole = "SECRETARIAT"
)

// ValidRoles lists every role an account can carry.
var ValidRoles = []UserRole{
	RoleAdmin, RoleDN, RoleDNA, RoleBAOC, RoleCPDI, RoleDFS,
	RoleDMS, RoleDPES, RoleDSS, RoleComptabilite, RoleSecretariat,
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role UserRole) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	FirstName    string         `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName     string         `gorm:"type:varchar(100);not null" json:"lastName"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Role         UserRole       `gorm:"type:varchar(20);not null" json:"role"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	IsActive     bool           `gorm:"not null;default:false" json:"isActive"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Assignments []AssignmentAssignee `gorm:"foreignKey:UserID" json:"-"`
}
