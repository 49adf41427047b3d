package model

import "time"

// Consultation statuses that allow an update to go through. Anything else
// makes the update a reported no-op.
const (
	ConsultationStatusReceipt  = "receipt"
	ConsultationStatusComplete = "complete"
)

// Consultation links a user to a pharmacy with a status and a serialized
// chat history payload.
type Consultation struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	PharmacyID uint      `json:"pharmacy_id" gorm:"not null"`
	Status     string    `json:"status" gorm:"size:255;not null"`
	History    string    `json:"history" gorm:"size:2048;not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User     User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Pharmacy Pharmacy `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// ConsultationRequest is the payload accepted by the consultation endpoints.
// Insert resolves PharmacyID from the pharmacy_* fields; Request assumes
// PharmacyID is already set.
type ConsultationRequest struct {
	UserID          uint   `json:"user_id" example:"1"`
	PharmacyID      uint   `json:"pharmacy_id,omitempty" example:"1"`
	PharmacyName    string `json:"pharmacy_name,omitempty" example:"Main Street Pharmacy"`
	PharmacyAddress string `json:"pharmacy_address,omitempty" example:"123 Main St"`
	PharmacyPhone   string `json:"pharmacy_phone,omitempty" example:"02-123-4567"`
	Status          string `json:"status" example:"receipt"`
	History         string `json:"history" example:"[]"`
}

// ConsultationHistoryEntry is one row of the history listing, a consultation
// joined with its pharmacy fields.
type ConsultationHistoryEntry struct {
	Consultation
	PharmacyName    string `json:"pharmacy_name" gorm:"column:pharmacy_name"`
	PharmacyAddress string `json:"pharmacy_address" gorm:"column:pharmacy_address"`
	PharmacyPhone   string `json:"pharmacy_phone" gorm:"column:pharmacy_phone"`
}
