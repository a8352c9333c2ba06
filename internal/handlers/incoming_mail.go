package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gescourrier/mail-registry-api/internal/dto"
	apierrors "github.com/gescourrier/mail-registry-api/internal/errors"
	"github.com/gescourrier/mail-registry-api/internal/services"
	"github.com/gescourrier/mail-registry-api/internal/utils"
)

// IncomingMailRequest is the request body for both create and update.
// Dates travel as YYYY-MM-DD strings, the attachment as a data URI.
type IncomingMailRequest struct {
	ArrivalDate     string `json:"arrivalDate" binding:"required"`
	ArrivalTime     string `json:"arrivalTime"`
	ArrivalNumber   string `json:"arrivalNumber" binding:"required"`
	SignatureDate   string `json:"signatureDate"`
	SignatureNumber string `json:"signatureNumber"`
	Source          string `json:"source" binding:"required"`
	Type            string `json:"type" binding:"required"`
	Subject         string `json:"subject" binding:"required,max=500"`
	Attachment      string `json:"attachment"`
	AttachmentName  string `json:"attachmentName"`
	Receptionist    string `json:"receptionist"`
	Observations    string `json:"observations"`
}

func (r IncomingMailRequest) toInput() services.IncomingMailInput {
	return services.IncomingMailInput{
		ArrivalDate:     r.ArrivalDate,
		ArrivalTime:     r.ArrivalTime,
		ArrivalNumber:   r.ArrivalNumber,
		SignatureDate:   r.SignatureDate,
		SignatureNumber: r.SignatureNumber,
		Source:          r.Source,
		Type:            r.Type,
		Subject:         r.Subject,
		Attachment:      r.Attachment,
		AttachmentName:  r.AttachmentName,
		Receptionist:    r.Receptionist,
		Observations:    r.Observations,
	}
}

// IncomingMailHandler coordinates arrival-register HTTP handlers.
type IncomingMailHandler struct {
	mailService *services.MailService
}

// NewIncomingMailHandler creates a new IncomingMailHandler.
func NewIncomingMailHandler(mailService *services.MailService) *IncomingMailHandler {
	return &IncomingMailHandler{
		mailService: mailService,
	}
}

// CreateMail registers a new arrival record.
func (h *IncomingMailHandler) CreateMail(c *gin.Context) {
	var req IncomingMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	mail, err := h.mailService.CreateIncoming(req.toInput())
	if err != nil {
		respondMailError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToIncomingMailDTO(*mail))
}

// GetMail returns one arrival record.
func (h *IncomingMailHandler) GetMail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid mail ID")
		return
	}

	mail, err := h.mailService.GetIncoming(id)
	if err != nil {
		respondMailError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToIncomingMailDTO(*mail))
}

// ListMail returns a page of the arrival register, newest arrival first.
func (h *IncomingMailHandler) ListMail(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	mails, total, err := h.mailService.ListIncoming(params.Page, params.Limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to list incoming mail")
		return
	}

	c.JSON(http.StatusOK, dto.ToIncomingMailListResponse(mails, params.Page, params.Limit, total))
}

// UpdateMail rewrites an arrival record.
func (h *IncomingMailHandler) UpdateMail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid mail ID")
		return
	}

	var req IncomingMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	mail, err := h.mailService.UpdateIncoming(id, req.toInput())
	if err != nil {
		respondMailError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToIncomingMailDTO(*mail))
}

// DeleteMail removes an arrival record unless an assignment holds it.
func (h *IncomingMailHandler) DeleteMail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid mail ID")
		return
	}

	if err := h.mailService.DeleteIncoming(id); err != nil {
		respondMailError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Mail deleted successfully",
	})
}

// GetAttachment streams the stored attachment for download.
func (h *IncomingMailHandler) GetAttachment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid mail ID")
		return
	}

	data, name, err := h.mailService.GetIncomingAttachment(id)
	if err != nil {
		respondMailError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// CheckUnique reports whether an arrival number is free for a year.
func (h *IncomingMailHandler) CheckUnique(c *gin.Context) {
	year, number, excludeID, ok := parseUniqueQuery(c)
	if !ok {
		return
	}

	unique, err := h.mailService.CheckIncomingUnique(year, number, excludeID)
	if err != nil {
		apierrors.InternalError(c, "Failed to check uniqueness")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unique": unique,
	})
}

// parseUniqueQuery reads the year/number/excludeId query parameters
// shared by both check-unique endpoints.
func parseUniqueQuery(c *gin.Context) (int, string, uint64, bool) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid year")
		return 0, "", 0, false
	}

	number := c.Query("number")
	if number == "" {
		apierrors.BadRequest(c, "Number is required")
		return 0, "", 0, false
	}

	var excludeID uint64
	if raw := c.Query("excludeId"); raw != "" {
		excludeID, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid excludeId")
			return 0, "", 0, false
		}
	}

	return year, number, excludeID, true
}

func respondMailError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMissingDate):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeMissingDate, err.Error())
	case errors.Is(err, services.ErrMissingRequiredField):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeMissingField, err.Error())
	case errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrInvalidSource),
		errors.Is(err, services.ErrInvalidType),
		errors.Is(err, services.ErrInvalidDestination),
		errors.Is(err, services.ErrSignatureAfterArrival),
		errors.Is(err, services.ErrInvalidAttachment):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrDuplicateNumber):
		apierrors.ConflictWithCode(c, apierrors.ErrCodeDuplicateNumber, err.Error())
	case errors.Is(err, services.ErrMailHasAssignment):
		apierrors.ConflictWithCode(c, apierrors.ErrCodeHasAssignment, err.Error())
	case errors.Is(err, services.ErrMailNotFound),
		errors.Is(err, services.ErrAttachmentNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
