package repository

import (
	"errors"
	"fmt"

	"github.com/gescourrier/mail-registry-api/internal/database"
	"github.com/gescourrier/mail-registry-api/internal/models"
	"github.com/gescourrier/mail-registry-api/internal/utils"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateNumber is returned when a (year, number) pair is
	// already taken in a register. The composite unique index is the
	// authoritative guard; the in-transaction count is the friendly one.
	ErrDuplicateNumber = errors.New("mail repository: duplicate number for year")
)

// GormIncomingMailRepository is a GORM implementation of IncomingMailRepository
type GormIncomingMailRepository struct {
	db *gorm.DB
}

// NewIncomingMailRepository creates a new IncomingMailRepository
func NewIncomingMailRepository(db *gorm.DB) IncomingMailRepository {
	return &GormIncomingMailRepository{db: db}
}

// CreateUnique inserts a record, re-checking the per-year number
// uniqueness inside the write transaction.
func (r *GormIncomingMailRepository) CreateUnique(mail *models.IncomingMail) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		count, err := countIncomingByYearNumber(tx, mail.ArrivalYear, mail.ArrivalNumber, 0)
		if err != nil {
			return fmt.Errorf("failed to check arrival number uniqueness: %w", err)
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
func (r *GormIncomingMailRepository) UpdateUnique(mail *models.IncomingMail) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		count, err := countIncomingByYearNumber(tx, mail.ArrivalYear, mail.ArrivalNumber, mail.ID)
		if err != nil {
			return fmt.Errorf("failed to check arrival number uniqueness: %w", err)
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
func (r *GormIncomingMailRepository) FindByID(id uint64) (*models.IncomingMail, error) {
	var mail models.IncomingMail
	if err := r.db.First(&mail, id).Error; err != nil {
		return nil, err
	}
	return &mail, nil
}

// incomingListColumns is the list projection: every column except the
// attachment blob, which is replaced by a has_attachment flag so list
// pages never drag file contents out of the database.
const incomingListColumns = "id, arrival_date, arrival_time, arrival_number, arrival_year, " +
	"signature_date, signature_number, source, type, subject, " +
	"(attachment IS NOT NULL) AS has_attachment, attachment_name, receptionist, observations, " +
	"created_at, updated_at"

// List returns records ordered by arrival date descending
func (r *GormIncomingMailRepository) List(page, pageSize int) ([]models.IncomingMail, int64, error) {
	var mails []models.IncomingMail

	var total int64
	if err := r.db.Model(&models.IncomingMail{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.Model(&models.IncomingMail{}).
		Select(incomingListColumns).
		Order("arrival_date DESC, id DESC")
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
func (r *GormIncomingMailRepository) Delete(id uint64) error {
	return r.db.Delete(&models.IncomingMail{}, id).Error
}

// CountByYearNumber counts records sharing (year, number), excluding
// excludeID when non-zero.
func (r *GormIncomingMailRepository) CountByYearNumber(year int, number string, excludeID uint64) (int64, error) {
	return countIncomingByYearNumber(r.db, year, number, excludeID)
}

func countIncomingByYearNumber(db *gorm.DB, year int, number string, excludeID uint64) (int64, error) {
	query := db.Model(&models.IncomingMail{}).
		Where("arrival_year = ? AND arrival_number = ?", year, number)
	if excludeID != 0 {
		query = query.Where("id != ?", excludeID)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}
