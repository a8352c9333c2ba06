package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gescourrier/mail-registry-api/internal/dto"
	apierrors "github.com/gescourrier/mail-registry-api/internal/errors"
	"github.com/gescourrier/mail-registry-api/internal/middleware"
	"github.com/gescourrier/mail-registry-api/internal/models"
	"github.com/gescourrier/mail-registry-api/internal/services"
)

// AssignmentHandler coordinates assignment-workflow HTTP handlers.
type AssignmentHandler struct {
	assignmentService *services.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
	}
}

// CreateAssignment assigns an incoming mail item to a set of users.
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	type CreateAssignmentRequest struct {
		MailID  uint64   `json:"mailId" binding:"required"`
		UserIDs []uint64 `json:"userIds" binding:"required"`
		Comment string   `json:"comment"`
	}

	var req CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	assignment, err := h.assignmentService.Assign(services.AssignInput{
		MailID:     req.MailID,
		UserIDs:    req.UserIDs,
		AssignedBy: userID,
		Comment:    req.Comment,
	})
	if err != nil {
		respondAssignmentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAssignmentDTO(*assignment))
}

// GetAssignment returns one assignment with its mail and assignees.
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid assignment ID")
		return
	}

	assignment, err := h.assignmentService.GetAssignment(id)
	if err != nil {
		respondAssignmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentDTO(*assignment))
}

// ListAssignments returns assignments. Supports ?status=, a ?userId=
// membership filter, ?mine=true for the caller's own workload, and
// ?view=archive for the processed/archived registry ordered by the
// mail's arrival date.
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	if c.Query("view") == "archive" {
		assignments, err := h.assignmentService.ListArchive()
		if err != nil {
			apierrors.InternalError(c, "Failed to list archive")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"assignments": dto.ToAssignmentDTOs(assignments),
		})
		return
	}

	var status *models.AssignmentStatus
	if raw := c.Query("status"); raw != "" {
		s := models.AssignmentStatus(raw)
		if s != models.StatusPending && s != models.StatusProcessed && s != models.StatusArchived {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		status = &s
	}

	var assigneeID *uint64
	if raw := c.Query("userId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid userId")
			return
		}
		assigneeID = &id
	} else if c.Query("mine") == "true" {
		userID, exists := middleware.GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			return
		}
		assigneeID = &userID
	}

	assignments, err := h.assignmentService.ListAssignments(status, assigneeID)
	if err != nil {
		apierrors.InternalError(c, "Failed to list assignments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assignments": dto.ToAssignmentDTOs(assignments),
	})
}

// ListUnassignedMail returns incoming mail without an assignment.
func (h *AssignmentHandler) ListUnassignedMail(c *gin.Context) {
	mails, err := h.assignmentService.ListUnassignedMail()
	if err != nil {
		apierrors.InternalError(c, "Failed to list unassigned mail")
		return
	}

	items := make([]dto.IncomingMailDTO, len(mails))
	for i, mail := range mails {
		items[i] = dto.ToIncomingMailDTO(mail)
	}

	c.JSON(http.StatusOK, gin.H{
		"mails": items,
	})
}

// ProcessAssignment marks an assignment as processed by the caller.
func (h *AssignmentHandler) ProcessAssignment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid assignment ID")
		return
	}

	type ProcessRequest struct {
		Comment          string `json:"comment" binding:"required"`
		ResponseFile     string `json:"responseFile"`
		ResponseFileName string `json:"responseFileName"`
	}

	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	assignment, err := h.assignmentService.Process(services.ProcessInput{
		AssignmentID: id,
		ActorID:      userID,
		Comment:      req.Comment,
		ResponseFile: req.ResponseFile,
		ResponseName: req.ResponseFileName,
	})
	if err != nil {
		respondAssignmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentDTO(*assignment))
}

// ReassignAssignment hands the mail to a new assignee set.
func (h *AssignmentHandler) ReassignAssignment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid assignment ID")
		return
	}

	type ReassignRequest struct {
		UserIDs []uint64 `json:"userIds" binding:"required"`
		Comment string   `json:"comment"`
	}

	var req ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	assignment, err := h.assignmentService.Reassign(services.ReassignInput{
		AssignmentID: id,
		UserIDs:      req.UserIDs,
		AssignedBy:   userID,
		Comment:      req.Comment,
	})
	if err != nil {
		respondAssignmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentDTO(*assignment))
}

// GetResponseFile streams the processing response attachment.
func (h *AssignmentHandler) GetResponseFile(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid assignment ID")
		return
	}

	data, name, err := h.assignmentService.GetResponseFile(id)
	if err != nil {
		respondAssignmentError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/octet-stream", data)
}

func respondAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNoAssigneeSelected),
		errors.Is(err, services.ErrEmptyProcessingComment),
		errors.Is(err, services.ErrUnknownAssignee),
		errors.Is(err, services.ErrInvalidAttachment):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrMailAlreadyAssigned):
		apierrors.ConflictWithCode(c, apierrors.ErrCodeAlreadyAssigned, err.Error())
	case errors.Is(err, services.ErrAlreadyProcessed):
		apierrors.ConflictWithCode(c, apierrors.ErrCodeAlreadyProcessed, err.Error())
	case errors.Is(err, services.ErrNotAssignee):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAssignmentNotFound),
		errors.Is(err, services.ErrMailNotFound),
		errors.Is(err, services.ErrAttachmentNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
