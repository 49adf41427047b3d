package util

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/pillcare/pillcare-backend/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditEventType represents different types of audited application events
type AuditEventType string

const (
	EventLoginSuccess     AuditEventType = "LOGIN_SUCCESS"
	EventLoginFailure     AuditEventType = "LOGIN_FAILURE"
	EventTokenRefresh     AuditEventType = "TOKEN_REFRESH"
	EventTokenRejected    AuditEventType = "TOKEN_REJECTED"
	EventOrphanedToken    AuditEventType = "ORPHANED_TOKEN"
	EventDetectionDropped AuditEventType = "DETECTION_DROPPED"
	EventRateLimited      AuditEventType = "RATE_LIMIT_EXCEEDED"
	EventRateLimitError   AuditEventType = "RATE_LIMIT_CHECK_FAILED"
	EventEndpointCall     AuditEventType = "ENDPOINT_CALL"
)

// AuditEvent is one event to log and, when a DB is attached, persist.
type AuditEvent struct {
	EventType AuditEventType
	Subject   string
	IP        string
	UserAgent string
	Message   string
	Details   map[string]interface{}
}

var auditLogger *log.Logger
var auditDB *gorm.DB

func init() {
	auditLogger = log.New(os.Stdout, "[AUDIT] ", log.LstdFlags|log.Lmsgprefix)
}

// SetAuditLoggerDB attaches a gorm DB for event persistence. Call during
// startup after DB initialization; without it events only go to stdout.
func SetAuditLoggerDB(db *gorm.DB) {
	auditDB = db
}

// sanitizeLogValue removes newlines and other characters that could break log parsing
func sanitizeLogValue(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\t", " ")
	if len(value) > 200 {
		value = value[:200] + "..."
	}
	return value
}

// LogAuditEvent logs an event to stdout and best-effort persists it.
func LogAuditEvent(event AuditEvent) {
	msg := fmt.Sprintf("Event=%s Subject=%s IP=%s UserAgent=%s Message=%s",
		sanitizeLogValue(string(event.EventType)),
		sanitizeLogValue(event.Subject),
		sanitizeLogValue(event.IP),
		sanitizeLogValue(event.UserAgent),
		sanitizeLogValue(event.Message),
	)
	auditLogger.Println(msg)

	if auditDB == nil {
		return
	}

	var details datatypes.JSON
	if event.Details != nil {
		if b, err := json.Marshal(event.Details); err == nil {
			details = datatypes.JSON(b)
		}
	}

	city, country := IPLocation(event.IP)
	var location string
	switch {
	case city != "" && country != "":
		location = city + "/" + country
	case country != "":
		location = country
	case city != "":
		location = city
	}

	entry := model.AuditLog{
		EventType: string(event.EventType),
		Subject:   sanitizeLogValue(event.Subject),
		IP:        sanitizeLogValue(event.IP),
		Location:  sanitizeLogValue(location),
		UserAgent: sanitizeLogValue(event.UserAgent),
		Message:   sanitizeLogValue(event.Message),
		Details:   details,
	}
	if err := auditDB.Create(&entry).Error; err != nil {
		auditLogger.Printf("Failed to persist audit event: %v", err)
	}
}

// LogLoginSuccess records a completed Kakao login.
func LogLoginSuccess(kakaoID, ip, userAgent string) {
	LogAuditEvent(AuditEvent{
		EventType: EventLoginSuccess,
		Subject:   kakaoID,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "User logged in via Kakao",
	})
}

// LogLoginFailure records a rejected login with the reason.
func LogLoginFailure(ip, userAgent, reason string) {
	LogAuditEvent(AuditEvent{
		EventType: EventLoginFailure,
		IP:        ip,
		UserAgent: userAgent,
		Message:   fmt.Sprintf("Login failed: %s", reason),
	})
}

// LogOrphanedToken records a valid token whose user no longer exists. This
// is an anomalous state worth surfacing, not a routine auth failure.
func LogOrphanedToken(kakaoID, ip string) {
	LogAuditEvent(AuditEvent{
		EventType: EventOrphanedToken,
		Subject:   kakaoID,
		IP:        ip,
		Message:   "Valid token presented for a user missing from the database",
	})
}

// LogDetectionDropped records a detection label with no pill-table match.
// The detection is dropped from persistence but stays in the response counts.
func LogDetectionDropped(kakaoID, label string, recordID uint) {
	LogAuditEvent(AuditEvent{
		EventType: EventDetectionDropped,
		Subject:   kakaoID,
		Message:   fmt.Sprintf("No pill reference for detected label %q", label),
		Details:   map[string]interface{}{"label": label, "record_id": recordID},
	})
}

// LogRateLimitExceeded records a rate-limited request.
func LogRateLimitExceeded(ip, endpoint string) {
	LogAuditEvent(AuditEvent{
		EventType: EventRateLimited,
		IP:        ip,
		Message:   fmt.Sprintf("Rate limit exceeded on %s", endpoint),
	})
}
