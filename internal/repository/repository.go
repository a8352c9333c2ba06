package repository

import (
	"github.com/gescourrier/mail-registry-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List returns all users
	List() ([]models.User, error)

	// Update updates a user
	Update(user *models.User) error

	// Delete removes a user
	Delete(id uint64) error

	// CountByIDs counts how many of the given user IDs exist
	CountByIDs(ids []uint64) (int64, error)
}

// IncomingMailRepository defines the interface for the arrival register
type IncomingMailRepository interface {
	// CreateUnique inserts a record after re-checking the per-year
	// number uniqueness inside the same transaction
	CreateUnique(mail *models.IncomingMail) error

	// UpdateUnique saves a record after re-checking uniqueness,
	// excluding the record's own id
	UpdateUnique(mail *models.IncomingMail) error

	// FindByID finds a record by ID
	FindByID(id uint64) (*models.IncomingMail, error)

	// List returns records ordered by arrival date descending
	List(page, pageSize int) ([]models.IncomingMail, int64, error)

	// Delete removes a record
	Delete(id uint64) error

	// CountByYearNumber counts records sharing (year, number),
	// excluding excludeID when non-zero
	CountByYearNumber(year int, number string, excludeID uint64) (int64, error)
}

// OutgoingMailRepository defines the interface for the departure register
type OutgoingMailRepository interface {
	CreateUnique(mail *models.OutgoingMail) error
	UpdateUnique(mail *models.OutgoingMail) error
	FindByID(id uint64) (*models.OutgoingMail, error)

	// List returns records ordered by signature date descending
	List(page, pageSize int) ([]models.OutgoingMail, int64, error)

	Delete(id uint64) error
	CountByYearNumber(year int, number string, excludeID uint64) (int64, error)
}

// AssignmentFilter holds filtering options for listing assignments
type AssignmentFilter struct {
	// Status restricts to a single workflow status
	Status *models.AssignmentStatus

	// AssigneeID restricts to assignments whose assignee set contains the user
	AssigneeID *uint64

	// Archive selects processed and archived assignments, ordered by
	// the mail's arrival date descending
	Archive bool
}

// AssignmentRepository defines the interface for assignment data access
type AssignmentRepository interface {
	// Create inserts an assignment and its assignee rows atomically
	Create(assignment *models.Assignment, userIDs []uint64) error

	// FindByID finds an assignment with mail and assignee relations
	FindByID(id uint64) (*models.Assignment, error)

	// List retrieves assignments matching the filter
	List(filter AssignmentFilter) ([]models.Assignment, error)

	// ListUnassignedMail returns incoming mail with no assignment row,
	// ordered by arrival date descending
	ListUnassignedMail() ([]models.IncomingMail, error)

	// ExistsForMail reports whether the mail already has an assignment
	ExistsForMail(mailID uint64) (bool, error)

	// MarkProcessed performs the guarded pending-to-processed transition;
	// returns ErrNotPending if the assignment is no longer pending
	MarkProcessed(id uint64, processedBy uint64, comment string, responseFile []byte, responseFileName string) error

	// Reassign replaces the assignee set, resets the status to pending
	// and clears the processing fields atomically
	Reassign(id uint64, userIDs []uint64, assignedBy uint64, comment string) error
}
