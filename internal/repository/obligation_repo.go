package repository

import (
	"dinkup-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ObligationRepository struct {
	db *gorm.DB
}

func NewObligationRepository(db *gorm.DB) *ObligationRepository {
	return &ObligationRepository{db: db}
}

// Expose DB if needed
func (r *ObligationRepository) DB() *gorm.DB {
	return r.db
}

func (r *ObligationRepository) GetByID(id uuid.UUID) (*models.PaymentObligation, error) {
	var ob models.PaymentObligation
	if err := r.db.First(&ob, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ob, nil
}

// FindPendingByAmount returns pending obligations with exactly the given
// amount, oldest first, capped so a popular price point can't blow up the
// heuristic pass.
func (r *ObligationRepository) FindPendingByAmount(amount float64, limit int) ([]models.PaymentObligation, error) {
	var obs []models.PaymentObligation
	err := r.db.
		Where("amount = ? AND status = ?", amount, models.PaymentPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&obs).Error
	return obs, err
}

func (r *ObligationRepository) ListBySession(sessionID uuid.UUID) ([]models.PaymentObligation, error) {
	var obs []models.PaymentObligation
	err := r.db.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&obs).Error
	return obs, err
}

func (r *ObligationRepository) CountBySession(sessionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.PaymentObligation{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}
