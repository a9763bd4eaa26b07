package repository

import (
	"dinkup-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) DB() *gorm.DB {
	return r.db
}

// Insert creates the record unless one with the same dedup key already
// exists. Returns false when the insert was a duplicate no-op.
func (r *TransactionRepository) Insert(tx *models.TransactionRecord) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoNothing: true,
	}).Create(tx)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *TransactionRepository) GetByDedupKey(key string) (*models.TransactionRecord, error) {
	var tx models.TransactionRecord
	if err := r.db.First(&tx, "dedup_key = ?", key).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) Save(tx *models.TransactionRecord) error {
	return r.db.Save(tx).Error
}

// ListForReview returns heuristic-linked and unlinked records, the manual
// triage queue.
func (r *TransactionRepository) ListForReview() ([]models.TransactionRecord, error) {
	var txs []models.TransactionRecord
	err := r.db.
		Where("needs_review = ? OR matched_obligation_id IS NULL", true).
		Order("created_at DESC").
		Find(&txs).Error
	return txs, err
}
