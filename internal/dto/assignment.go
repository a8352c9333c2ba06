package dto

import (
	"time"

	"github.com/gescourrier/mail-registry-api/internal/models"
)

// AssigneeDTO represents one member of the assignee set
type AssigneeDTO struct {
	User UserDTO `json:"user"`
}

// AssignmentDTO represents an assignment in API responses
type AssignmentDTO struct {
	ID                uint64                  `json:"id"`
	MailID            uint64                  `json:"mailId"`
	AssignedBy        uint64                  `json:"assignedBy"`
	Comment           string                  `json:"comment"`
	AssignedAt        time.Time               `json:"assignedAt"`
	Status            models.AssignmentStatus `json:"status"`
	ProcessedAt       *time.Time              `json:"processedAt"`
	ProcessedBy       *uint64                 `json:"processedBy"`
	ProcessingComment string                  `json:"processingComment"`
	HasResponseFile   bool                    `json:"hasResponseFile"`
	ResponseFileName  string                  `json:"responseFileName"`
	Mail              *IncomingMailDTO        `json:"mail,omitempty"`
	Assignees         []AssigneeDTO           `json:"assignees,omitempty"`
}

// ToAssignmentDTO converts an Assignment model to AssignmentDTO
func ToAssignmentDTO(assignment models.Assignment) AssignmentDTO {
	dto := AssignmentDTO{
		ID:                assignment.ID,
		MailID:            assignment.MailID,
		AssignedBy:        assignment.AssignedBy,
		Comment:           assignment.Comment,
		AssignedAt:        assignment.AssignedAt,
		Status:            assignment.Status,
		ProcessedAt:       assignment.ProcessedAt,
		ProcessedBy:       assignment.ProcessedBy,
		ProcessingComment: assignment.ProcessingComment,
		HasResponseFile:   len(assignment.ResponseFile) > 0,
		ResponseFileName:  assignment.ResponseFileName,
	}

	// Include mail if preloaded
	if assignment.Mail.ID != 0 {
		mail := ToIncomingMailDTO(assignment.Mail)
		dto.Mail = &mail
	}

	// Include assignees if preloaded
	if len(assignment.Assignees) > 0 {
		dto.Assignees = make([]AssigneeDTO, len(assignment.Assignees))
		for i, assignee := range assignment.Assignees {
			dto.Assignees[i] = AssigneeDTO{
				User: ToUserDTO(assignee.User),
			}
		}
	}

	return dto
}

// ToAssignmentDTOs converts a slice of assignments
func ToAssignmentDTOs(assignments []models.Assignment) []AssignmentDTO {
	items := make([]AssignmentDTO, len(assignments))
	for i, assignment := range assignments {
		items[i] = ToAssignmentDTO(assignment)
	}
	return items
}
