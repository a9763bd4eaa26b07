package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentObligation is one guest's fixed charge for one session, created
// when the roster is locked. The ID doubles as the reconciliation token
// embedded in outbound payment-link notes. Amount is a frozen snapshot:
// it is never recomputed, even if the roster changes afterwards.
type PaymentObligation struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionID     uuid.UUID `gorm:"index"`
	ParticipantID uuid.UUID `gorm:"index"`
	Amount        float64   `gorm:"index"`
	Method        string
	Status        string `gorm:"index"`
	RequestSentAt *time.Time
	PaidAt        *time.Time
	RefundedAt    *time.Time
	Notes         string
	CreatedAt     time.Time
}

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
	PaymentForgiven = "forgiven"
)

const MethodVenmo = "venmo"
