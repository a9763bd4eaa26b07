package repository

import (
	"time"

	"dinkup-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationLogRepository struct {
	db *gorm.DB
}

func NewNotificationLogRepository(db *gorm.DB) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

// Append writes one audit row. Audit failures are reported but callers are
// expected to log-and-continue; the ledger write always wins.
func (r *NotificationLogRepository) Append(entry *models.NotificationLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.db.Create(entry).Error
}

func (r *NotificationLogRepository) ListBySession(sessionID uuid.UUID) ([]models.NotificationLogEntry, error) {
	var entries []models.NotificationLogEntry
	err := r.db.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&entries).Error
	return entries, err
}
