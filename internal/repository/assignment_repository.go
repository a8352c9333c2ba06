package repository

import (
	"errors"
	"time"

	"github.com/gescourrier/mail-registry-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrMailAlreadyAssigned is returned when a second assignment is
	// created for the same mail item.
	ErrMailAlreadyAssigned = errors.New("assignment repository: mail already assigned")
	// ErrNotPending is returned when the pending-to-processed transition
	// finds the assignment in another status.
	ErrNotPending = errors.New("assignment repository: assignment is not pending")
)

// GormAssignmentRepository is a GORM implementation of AssignmentRepository
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// Create inserts an assignment and its assignee rows atomically.
// The unique index on mail_id guards against a concurrent assign on
// the same mail item.
func (r *GormAssignmentRepository) Create(assignment *models.Assignment, userIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(assignment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrMailAlreadyAssigned
			}
			return err
		}

		assignees := make([]models.AssignmentAssignee, len(userIDs))
		for i, userID := range userIDs {
			assignees[i] = models.AssignmentAssignee{
				AssignmentID: assignment.ID,
				UserID:       userID,
			}
		}

		return tx.Create(&assignees).Error
	})
}

// FindByID finds an assignment with its mail and assignee relations
func (r *GormAssignmentRepository) FindByID(id uint64) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.
		Preload("Mail").
		Preload("Assignees").
		Preload("Assignees.User").
		First(&assignment, id).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// List retrieves assignments matching the filter
func (r *GormAssignmentRepository) List(filter AssignmentFilter) ([]models.Assignment, error) {
	query := r.db.Model(&models.Assignment{})

	if filter.Archive {
		query = query.
			Where("assignments.status IN ?", []models.AssignmentStatus{
				models.StatusProcessed, models.StatusArchived,
			}).
			Joins("JOIN incoming_mails ON incoming_mails.id = assignments.mail_id").
			Order("incoming_mails.arrival_date DESC, assignments.id DESC")
	} else {
		if filter.Status != nil {
			query = query.Where("assignments.status = ?", *filter.Status)
		}
		query = query.Order("assignments.assigned_at DESC")
	}

	if filter.AssigneeID != nil {
		memberSubQuery := r.db.Model(&models.AssignmentAssignee{}).
			Select("1").
			Where("assignment_assignees.assignment_id = assignments.id").
			Where("assignment_assignees.user_id = ?", *filter.AssigneeID)
		query = query.Where("EXISTS (?)", memberSubQuery)
	}

	var assignments []models.Assignment
	err := query.
		Preload("Mail").
		Preload("Assignees").
		Preload("Assignees.User").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}

	return assignments, nil
}

// ListUnassignedMail returns incoming mail with no assignment row,
// ordered by arrival date descending. The unassigned state is derived,
// never stored.
func (r *GormAssignmentRepository) ListUnassignedMail() ([]models.IncomingMail, error) {
	var mails []models.IncomingMail
	err := r.db.
		Joins("LEFT JOIN assignments ON assignments.mail_id = incoming_mails.id").
		Where("assignments.id IS NULL").
		Order("incoming_mails.arrival_date DESC, incoming_mails.id DESC").
		Find(&mails).Error
	if err != nil {
		return nil, err
	}
	return mails, nil
}

// ExistsForMail reports whether the mail already has an assignment
func (r *GormAssignmentRepository) ExistsForMail(mailID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.Assignment{}).Where("mail_id = ?", mailID).Count(&count).Error
	return count > 0, err
}

// MarkProcessed performs the guarded pending-to-processed transition.
// The WHERE status = pending clause makes concurrent process calls
// lose cleanly instead of overwriting each other's processedBy.
func (r *GormAssignmentRepository) MarkProcessed(id uint64, processedBy uint64, comment string, responseFile []byte, responseFileName string) error {
	now := time.Now()
	result := r.db.Model(&models.Assignment{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":             models.StatusProcessed,
			"processed_at":       now,
			"processed_by":       processedBy,
			"processing_comment": comment,
			"response_file":      responseFile,
			"response_file_name": responseFileName,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

// Reassign replaces the assignee set, resets the status to pending and
// clears the processing fields of the superseded cycle.
func (r *GormAssignmentRepository) Reassign(id uint64, userIDs []uint64, assignedBy uint64, comment string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Assignment{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"assigned_by":        assignedBy,
				"comment":            comment,
				"assigned_at":        time.Now(),
				"status":             models.StatusPending,
				"processed_at":       nil,
				"processed_by":       nil,
				"processing_comment": "",
				"response_file":      nil,
				"response_file_name": "",
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("assignment_id = ?", id).Delete(&models.AssignmentAssignee{}).Error; err != nil {
			return err
		}

		assignees := make([]models.AssignmentAssignee, len(userIDs))
		for i, userID := range userIDs {
			assignees[i] = models.AssignmentAssignee{
				AssignmentID: id,
				UserID:       userID,
			}
		}

		return tx.Create(&assignees).Error
	})
}
