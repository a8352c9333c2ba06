package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gescourrier/mail-registry-api/internal/models"
	"github.com/gescourrier/mail-registry-api/internal/repository"
	"github.com/gescourrier/mail-registry-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrNoAssigneeSelected     = errors.New("at least one assignee is required")
	ErrUnknownAssignee        = errors.New("one or more assignees do not exist")
	ErrMailAlreadyAssigned    = errors.New("mail already has an assignment")
	ErrAssignmentNotFound     = errors.New("assignment not found")
	ErrNotAssignee            = errors.New("user is not an assignee of this assignment")
	ErrAlreadyProcessed       = errors.New("assignment has already been processed")
	ErrEmptyProcessingComment = errors.New("processing comment cannot be empty")
)

// AssignmentService drives the assignment lifecycle:
// pending, processed or archived, and back to pending through reassign.
type AssignmentService struct {
	assignmentRepo repository.AssignmentRepository
	incomingRepo   repository.IncomingMailRepository
	userRepo       repository.UserRepository
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(assignmentRepo repository.AssignmentRepository, incomingRepo repository.IncomingMailRepository, userRepo repository.UserRepository) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		incomingRepo:   incomingRepo,
		userRepo:       userRepo,
	}
}

// AssignInput represents input for creating an assignment.
type AssignInput struct {
	MailID     uint64
	UserIDs    []uint64
	AssignedBy uint64
	Comment    string
}

// Assign creates the assignment for a mail item. Assign is create-only:
// once a mail has an assignment, reassign is the only mutation path.
func (s *AssignmentService) Assign(input AssignInput) (*models.Assignment, error) {
	userIDs := uniqueUint64(input.UserIDs)
	if len(userIDs) == 0 {
		return nil, ErrNoAssigneeSelected
	}

	if _, err := s.incomingRepo.FindByID(input.MailID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMailNotFound
		}
		return nil, fmt.Errorf("failed to find mail: %w", err)
	}

	exists, err := s.assignmentRepo.ExistsForMail(input.MailID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing assignment: %w", err)
	}
	if exists {
		return nil, ErrMailAlreadyAssigned
	}

	if err := s.verifyAssignees(userIDs); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		MailID:     input.MailID,
		AssignedBy: input.AssignedBy,
		Comment:    input.Comment,
		AssignedAt: time.Now(),
		Status:     models.StatusPending,
	}

	if err := s.assignmentRepo.Create(assignment, userIDs); err != nil {
		if errors.Is(err, repository.ErrMailAlreadyAssigned) {
			return nil, ErrMailAlreadyAssigned
		}
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	return s.assignmentRepo.FindByID(assignment.ID)
}

// ProcessInput represents input for the pending-to-processed transition.
type ProcessInput struct {
	AssignmentID uint64
	ActorID      uint64
	Comment      string
	ResponseFile string
	ResponseName string
}

// Process marks an assignment as processed by one of its assignees.
func (s *AssignmentService) Process(input ProcessInput) (*models.Assignment, error) {
	if strings.TrimSpace(input.Comment) == "" {
		return nil, ErrEmptyProcessingComment
	}

	assignment, err := s.assignmentRepo.FindByID(input.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}

	if !assignment.HasAssignee(input.ActorID) {
		return nil, ErrNotAssignee
	}

	responseFile, err := utils.DecodeDataURI(input.ResponseFile)
	if err != nil {
		return nil, ErrInvalidAttachment
	}

	err = s.assignmentRepo.MarkProcessed(input.AssignmentID, input.ActorID, input.Comment, responseFile, input.ResponseName)
	if err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return nil, ErrAlreadyProcessed
		}
		return nil, fmt.Errorf("failed to process assignment: %w", err)
	}

	return s.assignmentRepo.FindByID(input.AssignmentID)
}

// ReassignInput represents input for restarting a work cycle.
type ReassignInput struct {
	AssignmentID uint64
	UserIDs      []uint64
	AssignedBy   uint64
	Comment      string
}

// Reassign hands the mail to a new assignee set and discards the
// processing outcome of the superseded cycle.
func (s *AssignmentService) Reassign(input ReassignInput) (*models.Assignment, error) {
	userIDs := uniqueUint64(input.UserIDs)
	if len(userIDs) == 0 {
		return nil, ErrNoAssigneeSelected
	}

	if _, err := s.assignmentRepo.FindByID(input.AssignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}

	if err := s.verifyAssignees(userIDs); err != nil {
		return nil, err
	}

	if err := s.assignmentRepo.Reassign(input.AssignmentID, userIDs, input.AssignedBy, input.Comment); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to reassign: %w", err)
	}

	return s.assignmentRepo.FindByID(input.AssignmentID)
}

// GetAssignment returns one assignment with its relations preloaded.
func (s *AssignmentService) GetAssignment(id uint64) (*models.Assignment, error) {
	assignment, err := s.assignmentRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}
	return assignment, nil
}

// ListAssignments returns assignments, optionally filtered by status
// and by membership of a user in the assignee set.
func (s *AssignmentService) ListAssignments(status *models.AssignmentStatus, assigneeID *uint64) ([]models.Assignment, error) {
	return s.assignmentRepo.List(repository.AssignmentFilter{
		Status:     status,
		AssigneeID: assigneeID,
	})
}

// ListArchive returns processed and archived assignments ordered by
// the mail's arrival date descending.
func (s *AssignmentService) ListArchive() ([]models.Assignment, error) {
	return s.assignmentRepo.List(repository.AssignmentFilter{Archive: true})
}

// ListUnassignedMail returns incoming mail that has no assignment yet.
func (s *AssignmentService) ListUnassignedMail() ([]models.IncomingMail, error) {
	return s.assignmentRepo.ListUnassignedMail()
}

// GetResponseFile returns the processing response attachment.
func (s *AssignmentService) GetResponseFile(id uint64) ([]byte, string, error) {
	assignment, err := s.assignmentRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrAssignmentNotFound
		}
		return nil, "", fmt.Errorf("failed to find assignment: %w", err)
	}
	if len(assignment.ResponseFile) == 0 {
		return nil, "", ErrAttachmentNotFound
	}

	name := assignment.ResponseFileName
	if name == "" {
		name = "reponse"
	}
	return assignment.ResponseFile, name, nil
}

func (s *AssignmentService) verifyAssignees(userIDs []uint64) error {
	count, err := s.userRepo.CountByIDs(userIDs)
	if err != nil {
		return fmt.Errorf("failed to verify assignees: %w", err)
	}
	if int(count) != len(userIDs) {
		return ErrUnknownAssignee
	}
	return nil
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
