package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationLogEntry is an append-only audit row covering both inbound
// email processing and outbound notification attempts. Never updated or
// deleted by this service.
type NotificationLogEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventType string    `gorm:"index"`
	SessionID *uuid.UUID
	PaymentID *uuid.UUID
	Recipient string
	Channel   string
	Success   bool
	ErrorText string
	CreatedAt time.Time
}

// Audit event types.
const (
	EventEmailIngested    = "email_ingested"
	EventEmailUnparseable = "email_unparseable"
	EventEmailDuplicate   = "email_duplicate"
	EventTokenMatch       = "token_match"
	EventHeuristicMatch   = "heuristic_match"
	EventNoMatch          = "no_match"
	EventRequestSent      = "payment_request_sent"
)
