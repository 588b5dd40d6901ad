package repo

import (
	"analytics/internal/api/models"

	"gorm.io/gorm"
)

type ChartRepository struct {
	Db     *gorm.DB
	shares *ShareRepository
}

func NewChartRepository(db *gorm.DB) *ChartRepository {
	return &ChartRepository{Db: db, shares: NewShareRepository(db)}
}

// FindByID loads the chart with its access list.
func (slf *ChartRepository) FindByID(id uint) (models.Chart, error) {
	var chart models.Chart
	if err := slf.Db.First(&chart, id).Error; err != nil {
		return chart, err
	}
	users, err := slf.shares.UsersFor(models.ResourceChart, id)
	chart.SharedWith = users
	return chart, err
}

// FindVisibleTo lists the charts username owns or that were shared with them.
func (slf *ChartRepository) FindVisibleTo(username string) ([]models.Chart, error) {
	sharedIDs, err := slf.shares.ResourceIDsFor(models.ResourceChart, username)
	if err != nil {
		return nil, err
	}
	query := slf.Db.Where("owner = ?", username)
	if len(sharedIDs) > 0 {
		query = query.Or("id IN ?", sharedIDs)
	}
	var charts []models.Chart
	if err := query.Order("created_at DESC").Find(&charts).Error; err != nil {
		return nil, err
	}
	for i := range charts {
		if charts[i].SharedWith, err = slf.shares.UsersFor(models.ResourceChart, charts[i].ID); err != nil {
			return nil, err
		}
	}
	return charts, nil
}

// ExistingIDs returns the subset of ids that exist as charts.
func (slf *ChartRepository) ExistingIDs(ids []uint) ([]uint, error) {
	found := []uint{}
	if len(ids) == 0 {
		return found, nil
	}
	err := slf.Db.Model(&models.Chart{}).Where("id IN ?", ids).Pluck("id", &found).Error
	return found, err
}

func (slf *ChartRepository) Create(chart *models.Chart) error {
	return slf.Db.Omit("Dataset").Create(chart).Error
}

func (slf *ChartRepository) Update(chart *models.Chart) error {
	return slf.Db.Omit("Dataset").Save(chart).Error
}

// Delete removes the chart and its shares in one transaction.
func (slf *ChartRepository) Delete(id uint) error {
	return slf.Db.Transaction(func(tx *gorm.DB) error {
		if err := slf.shares.deleteFor(tx, models.ResourceChart, id); err != nil {
			return err
		}
		return tx.Delete(&models.Chart{}, id).Error
	})
}
