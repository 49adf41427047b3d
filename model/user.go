package model

import "time"

// User is a Kakao-authenticated account. KakaoID is the stable subject
// issued by the identity provider and is the natural key; rows are created
// on first login and never hard-deleted by the documented flows.
type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	KakaoID         string    `json:"kakao_id" gorm:"column:kakao_id;size:255;uniqueIndex;not null"`
	Nickname        string    `json:"nickname" gorm:"column:nickname;size:255"`
	ProfileImageURL string    `json:"profile_image_url" gorm:"column:profile_image_url;size:2048"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Consultations []Consultation `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Records       []Record       `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
