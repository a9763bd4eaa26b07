package ledger

import (
	"errors"
	"fmt"
	"time"

	"dinkup-backend/internal/models"
	"dinkup-backend/internal/repository"
	"dinkup-backend/internal/services/costs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrObligationsExist means the session was already locked once; the caller
// should not be asking for a second batch.
var ErrObligationsExist = errors.New("obligations already exist for session")

// InvalidTransitionError names both sides of a rejected status change so the
// caller can show exactly what was attempted.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid payment transition: %s -> %s", e.From, e.To)
}

// validTransitions is the whole state machine. pending is initial; forgiven
// and refunded are terminal; refunded is only reachable from paid.
var validTransitions = map[string][]string{
	models.PaymentPending: {models.PaymentPaid, models.PaymentForgiven},
	models.PaymentPaid:    {models.PaymentRefunded},
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Service struct {
	obligationRepo *repository.ObligationRepository
	sessionRepo    *repository.SessionRepository
	db             *gorm.DB
}

func NewService(obligationRepo *repository.ObligationRepository, sessionRepo *repository.SessionRepository) *Service {
	return &Service{
		obligationRepo: obligationRepo,
		sessionRepo:    sessionRepo,
		db:             obligationRepo.DB(),
	}
}

func (s *Service) ObligationRepo() *repository.ObligationRepository {
	return s.obligationRepo
}

// CreateObligationsForSession creates one pending obligation per billable
// guest at the session's computed per-guest charge. The amount is frozen
// here; later roster changes never touch it. Calling this twice for the
// same session is a caller error.
func (s *Service) CreateObligationsForSession(sessionID uuid.UUID) ([]models.PaymentObligation, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}

	existing, err := s.obligationRepo.CountBySession(sessionID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrObligationsExist
	}

	guests, err := s.sessionRepo.BillableGuests(sessionID)
	if err != nil {
		return nil, err
	}
	if len(guests) == 0 {
		// No guests, no obligations. Not an error.
		return nil, nil
	}

	charge := costs.GuestCharge(session.CourtsNeeded, session.GuestPoolPerCourt, len(guests))

	obligations := make([]models.PaymentObligation, 0, len(guests))
	now := time.Now()
	for _, guest := range guests {
		obligations = append(obligations, models.PaymentObligation{
			ID:            uuid.New(),
			SessionID:     sessionID,
			ParticipantID: guest.ID,
			Amount:        charge,
			Method:        models.MethodVenmo,
			Status:        models.PaymentPending,
			CreatedAt:     now,
		})
	}

	if err := s.db.Create(&obligations).Error; err != nil {
		return nil, err
	}
	return obligations, nil
}

// Transition moves an obligation through the state machine. Same-status
// requests are a no-op success. The update is compare-and-set on the status
// read here, so two racing transitions out of pending resolve to exactly one
// write; the loser's call returns as a no-op.
func (s *Service) Transition(obligationID uuid.UUID, newStatus, notes string) (*models.PaymentObligation, error) {
	ob, err := s.obligationRepo.GetByID(obligationID)
	if err != nil {
		return nil, err
	}

	if ob.Status == newStatus {
		return ob, nil
	}
	if !transitionAllowed(ob.Status, newStatus) {
		return nil, &InvalidTransitionError{From: ob.Status, To: newStatus}
	}

	updates := map[string]interface{}{"status": newStatus}
	now := time.Now()
	switch newStatus {
	case models.PaymentPaid:
		updates["paid_at"] = now
	case models.PaymentRefunded:
		updates["refunded_at"] = now
	}
	if notes != "" {
		updates["notes"] = notes
	}

	res := s.db.Model(&models.PaymentObligation{}).
		Where("id = ? AND status = ?", obligationID, ob.Status).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	// RowsAffected == 0 means someone else transitioned first; surface the
	// current row rather than an error.
	return s.obligationRepo.GetByID(obligationID)
}

// MarkRequestSent stamps the request-sent time once; repeat calls keep the
// original timestamp.
func (s *Service) MarkRequestSent(obligationID uuid.UUID) error {
	return s.db.Model(&models.PaymentObligation{}).
		Where("id = ? AND request_sent_at IS NULL", obligationID).
		Update("request_sent_at", time.Now()).
		Error
}
