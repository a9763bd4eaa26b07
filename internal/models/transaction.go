package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TransactionRecord is one parsed provider notification email. Exactly one
// row exists per ingested email; DedupKey enforces that under relay retries.
type TransactionRecord struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	DedupKey            string    `gorm:"uniqueIndex"`
	Type                string    `gorm:"index"`
	Amount              float64   `gorm:"index"`
	SenderName          string
	RecipientName       string
	Note                string
	Token               string
	Subject             string
	FromAddress         string
	ReceivedAt          time.Time
	MatchedObligationID *uuid.UUID
	MatchMethod         string `gorm:"index"`
	NeedsReview         bool   `gorm:"index"`
	Processed           bool
	MatchDetails        datatypes.JSON
	CreatedAt           time.Time
}

// Transaction types, as classified from the provider email subject.
const (
	TxPaymentSent     = "payment_sent"
	TxPaymentReceived = "payment_received"
	TxRequestSent     = "request_sent"
	TxRequestReceived = "request_received"
)

// Match methods.
const (
	MatchNone      = "none"
	MatchToken     = "auto_token"
	MatchHeuristic = "auto_heuristic"
)
