package models

import "time"

// AssignmentAssignee is one row of the assignment's assignee set.
type AssignmentAssignee struct {
	AssignmentID uint64    `gorm:"primarykey" json:"assignment_id"`
	UserID       uint64    `gorm:"primarykey" json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	Assignment Assignment `gorm:"foreignKey:AssignmentID" json:"-"`
	User       User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
