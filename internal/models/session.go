package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the slice of the session store the ledger needs: enough to
// compute the guest charge and to know who owes it. Full session CRUD
// lives elsewhere.
type Session struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	PoolName          string
	SessionDate       time.Time
	StartTime         string // "18:00"
	CourtsNeeded      int
	GuestPoolPerCourt float64
	AdminCostPerCourt float64 // display only, never billed
	AdminHandle       string
	RosterLocked      bool
	CreatedAt         time.Time
}

type Participant struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionID     uuid.UUID `gorm:"index"`
	DisplayName   string
	PaymentHandle string
	Status        string `gorm:"index"`
	IsAdmin       bool
	CreatedAt     time.Time
}

const (
	ParticipantCommitted  = "committed"
	ParticipantPaidInFull = "paid_in_full"
	ParticipantWaitlist   = "waitlist"
	ParticipantDeclined   = "declined"
)
