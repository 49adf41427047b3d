package model

import "time"

// Record is one uploaded pill photo. Deleting a record cascades to its
// details; deleting a user cascades to their records.
type Record struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	UserID            uint      `json:"user_id" gorm:"not null;index"`
	OriginalImagePath string    `json:"original_image_path" gorm:"size:2048;not null"`
	CreatedAt         time.Time `json:"created_at"`

	Details []RecordDetail `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// RecordDetail is one detected pill instance inside a record's photo. Each
// detected bounding box gets its own row with PillCount fixed at 1; boxes of
// the same pill are not merged.
type RecordDetail struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	RecordID  uint    `json:"record_id" gorm:"not null;index"`
	PillID    uint    `json:"pill_id" gorm:"not null"`
	PillCount int     `json:"pill_count" gorm:"not null"`
	BoxX1     float64 `json:"box_x1" gorm:"not null"`
	BoxY1     float64 `json:"box_y1" gorm:"not null"`
	BoxX2     float64 `json:"box_x2" gorm:"not null"`
	BoxY2     float64 `json:"box_y2" gorm:"not null"`

	Pill Pill `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// RecordPillDetail is one detail row of the record listing, joined with the
// pill reference fields.
type RecordPillDetail struct {
	PillID    uint   `json:"pill_id" gorm:"column:pill_id"`
	PillCount int    `json:"pill_count" gorm:"column:pill_count"`
	PillName  string `json:"pill_name" gorm:"column:pill_name"`
	Dosage    string `json:"dosage" gorm:"column:dosage"`
	Effect    string `json:"effect" gorm:"column:effect"`
}

// RecordRead is one record of the listing endpoint. CreatedAt is preformatted
// in the app's home timezone.
type RecordRead struct {
	ID                uint               `json:"id"`
	UserID            uint               `json:"user_id"`
	OriginalImagePath string             `json:"original_image_path"`
	CreatedAt         string             `json:"created_at"`
	Details           []RecordPillDetail `json:"details"`
}
