package repository

import (
	"dinkup-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) DB() *gorm.DB {
	return r.db
}

func (r *SessionRepository) GetByID(id uuid.UUID) (*models.Session, error) {
	var session models.Session
	if err := r.db.First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) GetParticipant(id uuid.UUID) (*models.Participant, error) {
	var p models.Participant
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// BillableGuests returns the non-admin participants who owe a share of the
// session cost: those committed or already paid in full.
func (r *SessionRepository) BillableGuests(sessionID uuid.UUID) ([]models.Participant, error) {
	var guests []models.Participant
	err := r.db.
		Where("session_id = ? AND is_admin = ? AND status IN ?",
			sessionID, false,
			[]string{models.ParticipantCommitted, models.ParticipantPaidInFull}).
		Order("created_at ASC").
		Find(&guests).Error
	return guests, err
}
