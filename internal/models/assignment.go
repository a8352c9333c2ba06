package models

import "time"

type AssignmentStatus string

const (
	StatusPending   AssignmentStatus = "pending"
	StatusProcessed AssignmentStatus = "processed"
	StatusArchived  AssignmentStatus = "archived"
)

// Assignment links an incoming mail item to the set of users
// responsible for acting on it, and records the processing outcome.
// A mail item has at most one assignment; a mail item without one is
// implicitly unassigned.
type Assignment struct {
	ID                uint64           `gorm:"primarykey" json:"id"`
	MailID            uint64           `gorm:"not null;uniqueIndex" json:"mailId"`
	AssignedBy        uint64           `gorm:"not null" json:"assignedBy"`
	Comment           string           `gorm:"type:text" json:"comment"`
	AssignedAt        time.Time        `gorm:"not null" json:"assignedAt"`
	Status            AssignmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ProcessedAt       *time.Time       `json:"processedAt"`
	ProcessedBy       *uint64          `json:"processedBy"`
	ProcessingComment string           `gorm:"type:text" json:"processingComment"`
	ResponseFile      []byte           `json:"-"`
	ResponseFileName  string           `gorm:"type:varchar(255)" json:"responseFileName"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`

	// Relations
	Mail      IncomingMail         `gorm:"foreignKey:MailID" json:"mail,omitempty"`
	Assignees []AssignmentAssignee `gorm:"foreignKey:AssignmentID" json:"assignees,omitempty"`
}

// AssigneeIDs returns the user ids of the current assignee set.
func (a *Assignment) AssigneeIDs() []uint64 {
	ids := make([]uint64, 0, len(a.Assignees))
	for _, assignee := range a.Assignees {
		ids = append(ids, assignee.UserID)
	}
	return ids
}

// HasAssignee reports whether userID belongs to the assignee set.
func (a *Assignment) HasAssignee(userID uint64) bool {
	for _, assignee := range a.Assignees {
		if assignee.UserID == userID {
			return true
		}
	}
	return false
}
