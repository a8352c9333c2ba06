package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gescourrier/mail-registry-api/internal/dto"
	apierrors "github.com/gescourrier/mail-registry-api/internal/errors"
	"github.com/gescourrier/mail-registry-api/internal/services"
	"github.com/gescourrier/mail-registry-api/internal/utils"
)

// OutgoingMailRequest is the request body for both create and update.
type OutgoingMailRequest struct {
	SignatureDate      string `json:"signatureDate" binding:"required"`
	SignatureNumber    string `json:"signatureNumber" binding:"required"`
	Destination        string `json:"destination" binding:"required"`
	Subject            string `json:"subject" binding:"required,max=500"`
	Attachment         string `json:"attachment"`
	AttachmentName     string `json:"attachmentName"`
	Receptionist       string `json:"receptionist"`
	TransmissionDate   string `json:"transmissionDate"`
	TransmissionTime   string `json:"transmissionTime"`
	TransmissionNumber string `json:"transmissionNumber"`
	Observations       string `json:"observations"`
}

func (r OutgoingMailRequest) toInput() services.OutgoingMailInput {
	return services.OutgoingMailInput{
		SignatureDate:      r.SignatureDate,
		SignatureNumber:    r.SignatureNumber,
		Destination:        r.Destination,
		Subject:            r.Subject,
		Attachment:         r.Attachment,
		AttachmentName:     r.AttachmentName,
		Receptionist:       r.Receptionist,
		TransmissionDate:   r.TransmissionDate,
		TransmissionTime:   r.TransmissionTime,
		TransmissionNumber: r.TransmissionNumber,
		Observations:       r.Observations,
	}
}

// OutgoingMailHandler coordinates departure-register HTTP handlers.
type OutgoingMailHandler struct {
	mailService *services.MailService
}

// NewOutgoingMailHandler creates a new OutgoingMailHandler.
func NewOutgoingMailHandler(mailService *services.MailService) *OutgoingMailHandler {
	return &OutgoingMailHandler{
		mailService: mailService,
	}
}

// CreateMail registers a new departure record.
func (h *OutgoingMailHandler) CreateMail(c *gin.Context) {
	var req OutgoingMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	mail, err := h.mailService.CreateOutgoing(req.toInput())
	if err != nil {
		respondMailError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOutgoingMailDTO(*mail))
}

// GetMail returns one departure record.
func (h *OutgoingMailHandler) GetMail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid mail ID")
		return
	}

	mail, err := h.mailService.GetOutgoing(id)
	if err != nil {
		respondMailError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOutgoingMailDTO(*mail))
}

// ListMail returns a page of the departure register, newest signature first.
func (h *OutgoingMailHandler) ListMail(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	mails, total, err := h.mailService.ListOutgoing(params.Page, params.Limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to list outgoing mail")
		return
	}

	c.JSON(http.StatusOK, dto.ToOutgoingMailListResponse(mails, params.Page, params.Limit, total))
}

// UpdateMail rewrites a departure record.
func (h *OutgoingMailHandler) UpdateMail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid mail ID")
		return
	}

	var req OutgoingMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	mail, err := h.mailService.UpdateOutgoing(id, req.toInput())
	if err != nil {
		respondMailError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOutgoingMailDTO(*mail))
}

// DeleteMail removes a departure record.
func (h *OutgoingMailHandler) DeleteMail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid mail ID")
		return
	}

	if err := h.mailService.DeleteOutgoing(id); err != nil {
		respondMailError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Mail deleted successfully",
	})
}

// GetAttachment streams the stored attachment for download.
func (h *OutgoingMailHandler) GetAttachment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid mail ID")
		return
	}

	data, name, err := h.mailService.GetOutgoingAttachment(id)
	if err != nil {
		respondMailError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// CheckUnique reports whether a signature number is free for a year.
func (h *OutgoingMailHandler) CheckUnique(c *gin.Context) {
	year, number, excludeID, ok := parseUniqueQuery(c)
	if !ok {
		return
	}

	unique, err := h.mailService.CheckOutgoingUnique(year, number, excludeID)
	if err != nil {
		apierrors.InternalError(c, "Failed to check uniqueness")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unique": unique,
	})
}
