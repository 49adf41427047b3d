package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is a persisted application event (logins, token refreshes,
// endpoint calls, dropped detections). Written best-effort; a failed audit
// write never fails the operation being audited.
type AuditLog struct {
	gorm.Model
	EventType string `json:"event_type" gorm:"column:event_type;type:varchar(64)"`
	Subject   string `json:"subject" gorm:"column:subject;type:varchar(191);index"`
	IP        string `json:"ip" gorm:"column:ip;type:varchar(45)"`
	// Location stores "City/Country" when GeoIP resolution is available.
	Location  string         `json:"location" gorm:"column:location;type:varchar(255)"`
	UserAgent string         `json:"user_agent" gorm:"column:user_agent;type:varchar(512)"`
	Message   string         `json:"message" gorm:"column:message;type:text"`
	Details   datatypes.JSON `json:"details" gorm:"column:details;type:json"`
}
