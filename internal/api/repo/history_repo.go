package repo

import (
	"analytics/internal/api/models"

	"gorm.io/gorm"
)

type HistoryRepository struct {
	Db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{Db: db}
}

func (slf *HistoryRepository) Create(entry *models.QueryHistory) error {
	return slf.Db.Create(entry).Error
}

// Latest returns the user's most recent entries, newest first.
func (slf *HistoryRepository) Latest(username string, limit int) ([]models.QueryHistory, error) {
	entries := []models.QueryHistory{}
	err := slf.Db.
		Where("username = ?", username).
		Order("timestamp DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
