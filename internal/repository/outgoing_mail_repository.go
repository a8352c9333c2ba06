package repository

import (
	"errors"
	"fmt"

	"github.com/gescourrier/mail-registry-api/internal/database"
	"github.com/gescourrier/mail-registry-api/internal/models"
	"github.com/gescourrier/mail-registry-api/internal/utils"
	"gorm.io/gorm"
)

// GormOutgoingMailRepository is a GORM implementation of OutgoingMailRepository
type GormOutgoingMailRepository struct {
	db *gorm.DB
}

// NewOutgoingMailRepository creates a new OutgoingMailRepository
func NewOutgoingMailRepository(db *gorm.DB) OutgoingMailRepository {
	return &GormOutgoingMailRepository{db: db}
}

// CreateUnique inserts a record, re-checking the per-year signature
// number uniqueness inside the write transaction.
func (r *GormOutgoingMailRepository) CreateUnique(mail *models.OutgoingMail) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		count, err := countOutgoingByYearNumber(tx, mail.SignatureYear, mail.SignatureNumber, 0)
		if err != nil {
			return fmt.Errorf("failed to check signature number uniqueness: %w", err)
		}
		if count > 0 {
			return ErrDuplicateNumber
		}

		if err := tx.Create(mail).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateNumber
			}
			return err
		}
		return nil
	})
}

// UpdateUnique saves a record, re-checking uniqueness against every
// other record in the register.
func (r *GormOutgoingMailRepository) UpdateUnique(mail *models.OutgoingMail) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		count, err := countOutgoingByYearNumber(tx, mail.SignatureYear, mail.SignatureNumber, mail.ID)
		if err != nil {
			return fmt.Errorf("failed to check signature number uniqueness: %w", err)
		}
		if count > 0 {
			return ErrDuplicateNumber
		}

		if err := tx.Save(mail).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateNumber
			}
			return err
		}
		return nil
	})
}

// FindByID finds a record by ID
func (r *GormOutgoingMailRepository) FindByID(id uint64) (*models.OutgoingMail, error) {
	var mail models.OutgoingMail
	if err := r.db.First(&mail, id).Error; err != nil {
		return nil, err
	}
	return &mail, nil
}

// outgoingListColumns mirrors incomingListColumns: no attachment blob
// in list pages, a has_attachment flag in its place.
const outgoingListColumns = "id, signature_date, signature_number, signature_year, destination, " +
	"subject, (attachment IS NOT NULL) AS has_attachment, attachment_name, receptionist, " +
	"transmission_date, transmission_time, transmission_number, observations, " +
	"created_at, updated_at"

// List returns records ordered by signature date descending
func (r *GormOutgoingMailRepository) List(page, pageSize int) ([]models.OutgoingMail, int64, error) {
	var mails []models.OutgoingMail

	var total int64
	if err := r.db.Model(&models.OutgoingMail{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.Model(&models.OutgoingMail{}).
		Select(outgoingListColumns).
		Order("signature_date DESC, id DESC")
	if page > 0 && pageSize > 0 {
		query = query.Scopes(database.Paginate(utils.PaginationParams{
			Page:   page,
			Limit:  pageSize,
			Offset: (page - 1) * pageSize,
		}))
	}

	if err := query.Find(&mails).Error; err != nil {
		return nil, 0, err
	}

	return mails, total, nil
}

// Delete removes a record
func (r *GormOutgoingMailRepository) Delete(id uint64) error {
	return r.db.Delete(&models.OutgoingMail{}, id).Error
}

// CountByYearNumber counts records sharing (year, number), excluding
// excludeID when non-zero.
func (r *GormOutgoingMailRepository) CountByYearNumber(year int, number string, excludeID uint64) (int64, error) {
	return countOutgoingByYearNumber(r.db, year, number, excludeID)
}

func countOutgoingByYearNumber(db *gorm.DB, year int, number string, excludeID uint64) (int64, error) {
	query := db.Model(&models.OutgoingMail{}).
		Where("signature_year = ? AND signature_number = ?", year, number)
	if excludeID != 0 {
		query = query.Where("id != ?", excludeID)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}
