package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gescourrier/mail-registry-api/internal/models"
	"github.com/gescourrier/mail-registry-api/internal/repository"
	"github.com/gescourrier/mail-registry-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrMissingRequiredField  = errors.New("missing required field")
	ErrMissingDate           = errors.New("missing date, number cannot be validated for uniqueness")
	ErrInvalidDate           = errors.New("invalid date")
	ErrInvalidSource         = errors.New("unknown source")
	ErrInvalidType           = errors.New("unknown mail type")
	ErrInvalidDestination    = errors.New("unknown destination")
	ErrSignatureAfterArrival = errors.New("signature date is after arrival date")
	ErrInvalidAttachment     = errors.New("attachment is not a valid data URI")
	ErrDuplicateNumber       = errors.New("number already used for this year")
	ErrMailNotFound          = errors.New("mail not found")
	ErrAttachmentNotFound    = errors.New("attachment not found")
	ErrMailHasAssignment     = errors.New("mail has an active assignment")
)

// MailService handles both mail registers: validation, per-year number
// uniqueness and attachment handling.
type MailService struct {
	incomingRepo   repository.IncomingMailRepository
	outgoingRepo   repository.OutgoingMailRepository
	assignmentRepo repository.AssignmentRepository
}

// NewMailService creates a new MailService.
func NewMailService(incomingRepo repository.IncomingMailRepository, outgoingRepo repository.OutgoingMailRepository, assignmentRepo repository.AssignmentRepository) *MailService {
	return &MailService{
		incomingRepo:   incomingRepo,
		outgoingRepo:   outgoingRepo,
		assignmentRepo: assignmentRepo,
	}
}

// IncomingMailInput defines the fields of an arrival register entry.
// Dates travel as YYYY-MM-DD strings, the attachment as a data URI.
type IncomingMailInput struct {
	ArrivalDate     string
	ArrivalTime     string
	ArrivalNumber   string
	SignatureDate   string
	SignatureNumber string
	Source          string
	Type            string
	Subject         string
	Attachment      string
	AttachmentName  string
	Receptionist    string
	Observations    string
}

// CreateIncoming registers an arrival-side mail record.
func (s *MailService) CreateIncoming(input IncomingMailInput) (*models.IncomingMail, error) {
	mail, err := s.buildIncoming(0, input)
	if err != nil {
		return nil, err
	}

	if err := s.incomingRepo.CreateUnique(mail); err != nil {
		if errors.Is(err, repository.ErrDuplicateNumber) {
			return nil, ErrDuplicateNumber
		}
		return nil, fmt.Errorf("failed to create incoming mail: %w", err)
	}

	return mail, nil
}

// UpdateIncoming rewrites an arrival register entry, re-running the
// uniqueness check without counting the record itself.
func (s *MailService) UpdateIncoming(id uint64, input IncomingMailInput) (*models.IncomingMail, error) {
	existing, err := s.incomingRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMailNotFound
		}
		return nil, fmt.Errorf("failed to find incoming mail: %w", err)
	}

	mail, err := s.buildIncoming(id, input)
	if err != nil {
		return nil, err
	}
	mail.CreatedAt = existing.CreatedAt
	if mail.Attachment == nil {
		// No new upload keeps the stored attachment
		mail.Attachment = existing.Attachment
		if mail.AttachmentName == "" {
			mail.AttachmentName = existing.AttachmentName
		}
	}

	if err := s.incomingRepo.UpdateUnique(mail); err != nil {
		if errors.Is(err, repository.ErrDuplicateNumber) {
			return nil, ErrDuplicateNumber
		}
		return nil, fmt.Errorf("failed to update incoming mail: %w", err)
	}

	return mail, nil
}

// GetIncoming returns one arrival register entry.
func (s *MailService) GetIncoming(id uint64) (*models.IncomingMail, error) {
	mail, err := s.incomingRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMailNotFound
		}
		return nil, fmt.Errorf("failed to find incoming mail: %w", err)
	}
	return mail, nil
}

// ListIncoming returns the arrival register, newest arrival first.
func (s *MailService) ListIncoming(page, pageSize int) ([]models.IncomingMail, int64, error) {
	return s.incomingRepo.List(page, pageSize)
}

// DeleteIncoming removes a record. Deletion is blocked while an
// assignment references the record, so the workflow never orphans.
func (s *MailService) DeleteIncoming(id uint64) error {
	if _, err := s.incomingRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMailNotFound
		}
		return fmt.Errorf("failed to find incoming mail: %w", err)
	}

	assigned, err := s.assignmentRepo.ExistsForMail(id)
	if err != nil {
		return fmt.Errorf("failed to check assignments: %w", err)
	}
	if assigned {
		return ErrMailHasAssignment
	}

	if err := s.incomingRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete incoming mail: %w", err)
	}
	return nil
}

// GetIncomingAttachment returns the stored attachment bytes and filename.
func (s *MailService) GetIncomingAttachment(id uint64) ([]byte, string, error) {
	mail, err := s.incomingRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrMailNotFound
		}
		return nil, "", fmt.Errorf("failed to find incoming mail: %w", err)
	}
	if len(mail.Attachment) == 0 {
		return nil, "", ErrAttachmentNotFound
	}

	name := mail.AttachmentName
	if name == "" {
		name = "piece-jointe"
	}
	return mail.Attachment, name, nil
}

// CheckIncomingUnique reports whether (year, number) is free in the
// arrival register, ignoring excludeID during edits.
func (s *MailService) CheckIncomingUnique(year int, number string, excludeID uint64) (bool, error) {
	count, err := s.incomingRepo.CountByYearNumber(year, number, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to check uniqueness: %w", err)
	}
	return count == 0, nil
}

func (s *MailService) buildIncoming(id uint64, input IncomingMailInput) (*models.IncomingMail, error) {
	if strings.TrimSpace(input.ArrivalDate) == "" {
		return nil, ErrMissingDate
	}
	if strings.TrimSpace(input.ArrivalNumber) == "" {
		return nil, fmt.Errorf("%w: arrivalNumber", ErrMissingRequiredField)
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, fmt.Errorf("%w: subject", ErrMissingRequiredField)
	}
	if strings.TrimSpace(input.Source) == "" {
		return nil, fmt.Errorf("%w: source", ErrMissingRequiredField)
	}
	if strings.TrimSpace(input.Type) == "" {
		return nil, fmt.Errorf("%w: type", ErrMissingRequiredField)
	}
	if !models.IsValidMailSource(input.Source) {
		return nil, ErrInvalidSource
	}
	if !models.IsValidMailType(input.Type) {
		return nil, ErrInvalidType
	}

	arrivalDate, err := utils.ParseDate(input.ArrivalDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	signatureDate, err := utils.ParseOptionalDate(input.SignatureDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if signatureDate != nil && signatureDate.After(arrivalDate) {
		return nil, ErrSignatureAfterArrival
	}

	attachment, err := utils.DecodeDataURI(input.Attachment)
	if err != nil {
		return nil, ErrInvalidAttachment
	}

	return &models.IncomingMail{
		ID:              id,
		ArrivalDate:     arrivalDate,
		ArrivalTime:     input.ArrivalTime,
		ArrivalNumber:   strings.TrimSpace(input.ArrivalNumber),
		ArrivalYear:     arrivalDate.Year(),
		SignatureDate:   signatureDate,
		SignatureNumber: input.SignatureNumber,
		Source:          input.Source,
		Type:            input.Type,
		Subject:         input.Subject,
		Attachment:      attachment,
		AttachmentName:  input.AttachmentName,
		Receptionist:    input.Receptionist,
		Observations:    input.Observations,
	}, nil
}

// OutgoingMailInput defines the fields of a departure register entry.
type OutgoingMailInput struct {
	SignatureDate      string
	SignatureNumber    string
	Destination        string
	Subject            string
	Attachment         string
	AttachmentName     string
	Receptionist       string
	TransmissionDate   string
	TransmissionTime   string
	TransmissionNumber string
	Observations       string
}

// CreateOutgoing registers a departure-side mail record.
func (s *MailService) CreateOutgoing(input OutgoingMailInput) (*models.OutgoingMail, error) {
	mail, err := s.buildOutgoing(0, input)
	if err != nil {
		return nil, err
	}

	if err := s.outgoingRepo.CreateUnique(mail); err != nil {
		if errors.Is(err, repository.ErrDuplicateNumber) {
			return nil, ErrDuplicateNumber
		}
		return nil, fmt.Errorf("failed to create outgoing mail: %w", err)
	}

	return mail, nil
}

// UpdateOutgoing rewrites a departure register entry.
func (s *MailService) UpdateOutgoing(id uint64, input OutgoingMailInput) (*models.OutgoingMail, error) {
	existing, err := s.outgoingRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMailNotFound
		}
		return nil, fmt.Errorf("failed to find outgoing mail: %w", err)
	}

	mail, err := s.buildOutgoing(id, input)
	if err != nil {
		return nil, err
	}
	mail.CreatedAt = existing.CreatedAt
	if mail.Attachment == nil {
		mail.Attachment = existing.Attachment
		if mail.AttachmentName == "" {
			mail.AttachmentName = existing.AttachmentName
		}
	}

	if err := s.outgoingRepo.UpdateUnique(mail); err != nil {
		if errors.Is(err, repository.ErrDuplicateNumber) {
			return nil, ErrDuplicateNumber
		}
		return nil, fmt.Errorf("failed to update outgoing mail: %w", err)
	}

	return mail, nil
}

// GetOutgoing returns one departure register entry.
func (s *MailService) GetOutgoing(id uint64) (*models.OutgoingMail, error) {
	mail, err := s.outgoingRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMailNotFound
		}
		return nil, fmt.Errorf("failed to find outgoing mail: %w", err)
	}
	return mail, nil
}

// ListOutgoing returns the departure register, newest signature first.
func (s *MailService) ListOutgoing(page, pageSize int) ([]models.OutgoingMail, int64, error) {
	return s.outgoingRepo.List(page, pageSize)
}

// DeleteOutgoing removes a departure register entry.
func (s *MailService) DeleteOutgoing(id uint64) error {
	if _, err := s.outgoingRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMailNotFound
		}
		return fmt.Errorf("failed to find outgoing mail: %w", err)
	}

	if err := s.outgoingRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete outgoing mail: %w", err)
	}
	return nil
}

// GetOutgoingAttachment returns the stored attachment bytes and filename.
func (s *MailService) GetOutgoingAttachment(id uint64) ([]byte, string, error) {
	mail, err := s.outgoingRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrMailNotFound
		}
		return nil, "", fmt.Errorf("failed to find outgoing mail: %w", err)
	}
	if len(mail.Attachment) == 0 {
		return nil, "", ErrAttachmentNotFound
	}

	name := mail.AttachmentName
	if name == "" {
		name = "piece-jointe"
	}
	return mail.Attachment, name, nil
}

// CheckOutgoingUnique reports whether (year, number) is free in the
// departure register.
func (s *MailService) CheckOutgoingUnique(year int, number string, excludeID uint64) (bool, error) {
	count, err := s.outgoingRepo.CountByYearNumber(year, number, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to check uniqueness: %w", err)
	}
	return count == 0, nil
}

func (s *MailService) buildOutgoing(id uint64, input OutgoingMailInput) (*models.OutgoingMail, error) {
	if strings.TrimSpace(input.SignatureDate) == "" {
		return nil, ErrMissingDate
	}
	if strings.TrimSpace(input.SignatureNumber) == "" {
		return nil, fmt.Errorf("%w: signatureNumber", ErrMissingRequiredField)
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, fmt.Errorf("%w: subject", ErrMissingRequiredField)
	}
	if strings.TrimSpace(input.Destination) == "" {
		return nil, fmt.Errorf("%w: destination", ErrMissingRequiredField)
	}
	if !models.IsValidMailSource(input.Destination) {
		return nil, ErrInvalidDestination
	}

	signatureDate, err := utils.ParseDate(input.SignatureDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	transmissionDate, err := utils.ParseOptionalDate(input.TransmissionDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	attachment, err := utils.DecodeDataURI(input.Attachment)
	if err != nil {
		return nil, ErrInvalidAttachment
	}

	return &models.OutgoingMail{
		ID:                 id,
		SignatureDate:      signatureDate,
		SignatureNumber:    strings.TrimSpace(input.SignatureNumber),
		SignatureYear:      signatureDate.Year(),
		Destination:        input.Destination,
		Subject:            input.Subject,
		Attachment:         attachment,
		AttachmentName:     input.AttachmentName,
		Receptionist:       input.Receptionist,
		TransmissionDate:   transmissionDate,
		TransmissionTime:   input.TransmissionTime,
		TransmissionNumber: input.TransmissionNumber,
		Observations:       input.Observations,
	}, nil
}
