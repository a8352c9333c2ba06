package models

import "time"

// MailTypes are the document categories accepted by the registry.
var MailTypes = []string{
	"Lettre", "Avis", "BE", "ST", "FC", "OM",
	"Décisions", "Arrêtés", "Décret", "Lois", "Autres",
}

// MailSources are the organizational units mail can originate from
// (also used as destinations for outgoing mail).
var MailSources = []string{
	"Cabinet", "DRH", "CPS", "CADD", "DNDS", "CNAPESS",
	"INPS", "CMSS", "CANAM", "ANAM", "AMAMUS", "UTM", "ODHD", "Autres",
}

// IsValidMailType reports whether t is a known document category.
func IsValidMailType(t string) bool {
	for _, v := range MailTypes {
		if v == t {
			return true
		}
	}
	return false
}

// IsValidMailSource reports whether s is a known organizational unit.
func IsValidMailSource(s string) bool {
	for _, v := range MailSources {
		if v == s {
			return true
		}
	}
	return false
}

// IncomingMail is a logged arrival-side correspondence record.
// ArrivalYear is materialized from ArrivalDate so the per-year number
// uniqueness can be guarded by a composite unique index regardless of
// the SQL dialect.
type IncomingMail struct {
	ID              uint64     `gorm:"primarykey" json:"id"`
	ArrivalDate     time.Time  `gorm:"not null" json:"arrivalDate"`
	ArrivalTime     string     `gorm:"type:varchar(10)" json:"arrivalTime"`
	ArrivalNumber   string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_incoming_year_number" json:"arrivalNumber"`
	ArrivalYear     int        `gorm:"not null;uniqueIndex:idx_incoming_year_number" json:"arrivalYear"`
	SignatureDate   *time.Time `json:"signatureDate"`
	SignatureNumber string     `gorm:"type:varchar(50)" json:"signatureNumber"`
	Source          string     `gorm:"type:varchar(50);not null" json:"source"`
	Type            string     `gorm:"type:varchar(50);not null" json:"type"`
	Subject         string     `gorm:"type:varchar(500);not null" json:"subject"`
	Attachment      []byte     `json:"-"`
	HasAttachment   bool       `gorm:"->;-:migration" json:"-"`
	AttachmentName  string     `gorm:"type:varchar(255)" json:"attachmentName"`
	Receptionist    string     `gorm:"type:varchar(255)" json:"receptionist"`
	Observations    string     `gorm:"type:text" json:"observations"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
