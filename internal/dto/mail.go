package dto

import (
	"time"

	"github.com/gescourrier/mail-registry-api/internal/models"
)

// IncomingMailDTO represents an incoming mail record in API responses.
// The attachment blob itself is never embedded; clients fetch it from
// the attachment endpoint.
type IncomingMailDTO struct {
	ID              uint64     `json:"id"`
	ArrivalDate     time.Time  `json:"arrivalDate"`
	ArrivalTime     string     `json:"arrivalTime"`
	ArrivalNumber   string     `json:"arrivalNumber"`
	SignatureDate   *time.Time `json:"signatureDate"`
	SignatureNumber string     `json:"signatureNumber"`
	Source          string     `json:"source"`
	Type            string     `json:"type"`
	Subject         string     `json:"subject"`
	HasAttachment   bool       `json:"hasAttachment"`
	AttachmentName  string     `json:"attachmentName"`
	Receptionist    string     `json:"receptionist"`
	Observations    string     `json:"observations"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// OutgoingMailDTO represents an outgoing mail record in API responses
type OutgoingMailDTO struct {
	ID                 uint64     `json:"id"`
	SignatureDate      time.Time  `json:"signatureDate"`
	SignatureNumber    string     `json:"signatureNumber"`
	Destination        string     `json:"destination"`
	Subject            string     `json:"subject"`
	HasAttachment      bool       `json:"hasAttachment"`
	AttachmentName     string     `json:"attachmentName"`
	Receptionist       string     `json:"receptionist"`
	TransmissionDate   *time.Time `json:"transmissionDate"`
	TransmissionTime   string     `json:"transmissionTime"`
	TransmissionNumber string     `json:"transmissionNumber"`
	Observations       string     `json:"observations"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// MailListResponse represents a paginated list of mail records
type MailListResponse[T any] struct {
	Mails      []T   `json:"mails"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// ToIncomingMailDTO converts an IncomingMail model to IncomingMailDTO
func ToIncomingMailDTO(mail models.IncomingMail) IncomingMailDTO {
	return IncomingMailDTO{
		ID:              mail.ID,
		ArrivalDate:     mail.ArrivalDate,
		ArrivalTime:     mail.ArrivalTime,
		ArrivalNumber:   mail.ArrivalNumber,
		SignatureDate:   mail.SignatureDate,
		SignatureNumber: mail.SignatureNumber,
		Source:          mail.Source,
		Type:            mail.Type,
		Subject:         mail.Subject,
		HasAttachment:   mail.HasAttachment || len(mail.Attachment) > 0,
		AttachmentName:  mail.AttachmentName,
		Receptionist:    mail.Receptionist,
		Observations:    mail.Observations,
		CreatedAt:       mail.CreatedAt,
		UpdatedAt:       mail.UpdatedAt,
	}
}

// ToOutgoingMailDTO converts an OutgoingMail model to OutgoingMailDTO
func ToOutgoingMailDTO(mail models.OutgoingMail) OutgoingMailDTO {
	return OutgoingMailDTO{
		ID:                 mail.ID,
		SignatureDate:      mail.SignatureDate,
		SignatureNumber:    mail.SignatureNumber,
		Destination:        mail.Destination,
		Subject:            mail.Subject,
		HasAttachment:      mail.HasAttachment || len(mail.Attachment) > 0,
		AttachmentName:     mail.AttachmentName,
		Receptionist:       mail.Receptionist,
		TransmissionDate:   mail.TransmissionDate,
		TransmissionTime:   mail.TransmissionTime,
		TransmissionNumber: mail.TransmissionNumber,
		Observations:       mail.Observations,
		CreatedAt:          mail.CreatedAt,
		UpdatedAt:          mail.UpdatedAt,
	}
}

// ToIncomingMailListResponse converts a page of incoming mail
func ToIncomingMailListResponse(mails []models.IncomingMail, page, pageSize int, totalCount int64) MailListResponse[IncomingMailDTO] {
	items := make([]IncomingMailDTO, len(mails))
	for i, mail := range mails {
		items[i] = ToIncomingMailDTO(mail)
	}

	return MailListResponse[IncomingMailDTO]{
		Mails:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages(totalCount, pageSize),
	}
}

// ToOutgoingMailListResponse converts a page of outgoing mail
func ToOutgoingMailListResponse(mails []models.OutgoingMail, page, pageSize int, totalCount int64) MailListResponse[OutgoingMailDTO] {
	items := make([]OutgoingMailDTO, len(mails))
	for i, mail := range mails {
		items[i] = ToOutgoingMailDTO(mail)
	}

	return MailListResponse[OutgoingMailDTO]{
		Mails:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages(totalCount, pageSize),
	}
}

func totalPages(totalCount int64, pageSize int) int {
	pages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		pages++
	}
	return pages
}
