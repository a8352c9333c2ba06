package models

import "time"

// OutgoingMail is a logged departure-side correspondence record.
// SignatureYear mirrors IncomingMail.ArrivalYear: it backs the
// per-year signature number uniqueness index.
type OutgoingMail struct {
	ID                 uint64     `gorm:"primarykey" json:"id"`
	SignatureDate      time.Time  `gorm:"not null" json:"signatureDate"`
	SignatureNumber    string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_outgoing_year_number" json:"signatureNumber"`
	SignatureYear      int        `gorm:"not null;uniqueIndex:idx_outgoing_year_number" json:"signatureYear"`
	Destination        string     `gorm:"type:varchar(50);not null" json:"destination"`
	Subject            string     `gorm:"type:varchar(500);not null" json:"subject"`
	Attachment         []byte     `json:"-"`
	HasAttachment      bool       `gorm:"->;-:migration" json:"-"`
	AttachmentName     string     `gorm:"type:varchar(255)" json:"attachmentName"`
	Receptionist       string     `gorm:"type:varchar(255)" json:"receptionist"`
	TransmissionDate   *time.Time `json:"transmissionDate"`
	TransmissionTime   string     `gorm:"type:varchar(10)" json:"transmissionTime"`
	TransmissionNumber string     `gorm:"type:varchar(50)" json:"transmissionNumber"`
	Observations       string     `gorm:"type:text" json:"observations"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}
