package repo

import (
	"analytics/internal/api/models"

	"gorm.io/gorm"
)

type DashboardRepository struct {
	Db     *gorm.DB
	shares *ShareRepository
}

func NewDashboardRepository(db *gorm.DB) *DashboardRepository {
	return &DashboardRepository{Db: db, shares: NewShareRepository(db)}
}

func (slf *DashboardRepository) FindByID(id uint) (models.Dashboard, error) {
	var dashboard models.Dashboard
	if err := slf.Db.First(&dashboard, id).Error; err != nil {
		return dashboard, err
	}
	users, err := slf.shares.UsersFor(models.ResourceDashboard, id)
	dashboard.SharedWith = users
	return dashboard, err
}

func (slf *DashboardRepository) FindVisibleTo(username string) ([]models.Dashboard, error) {
	sharedIDs, err := slf.shares.ResourceIDsFor(models.ResourceDashboard, username)
	if err != nil {
		return nil, err
	}
	query := slf.Db.Where("owner = ?", username)
	if len(sharedIDs) > 0 {
		query = query.Or("id IN ?", sharedIDs)
	}
	var dashboards []models.Dashboard
	if err := query.Order("created_at DESC").Find(&dashboards).Error; err != nil {
		return nil, err
	}
	for i := range dashboards {
		if dashboards[i].SharedWith, err = slf.shares.UsersFor(models.ResourceDashboard, dashboards[i].ID); err != nil {
			return nil, err
		}
	}
	return dashboards, nil
}

func (slf *DashboardRepository) Create(dashboard *models.Dashboard) error {
	return slf.Db.Create(dashboard).Error
}

func (slf *DashboardRepository) Update(dashboard *models.Dashboard) error {
	return slf.Db.Save(dashboard).Error
}

// Delete removes the dashboard together with its shares and comments.
func (slf *DashboardRepository) Delete(id uint) error {
	return slf.Db.Transaction(func(tx *gorm.DB) error {
		if err := slf.shares.deleteFor(tx, models.ResourceDashboard, id); err != nil {
			return err
		}
		if err := tx.Where("resource_type = ? AND resource_id = ?", models.ResourceDashboard, id).
			Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Dashboard{}, id).Error
	})
}
