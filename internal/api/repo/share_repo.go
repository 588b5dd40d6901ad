package repo

import (
	"analytics/internal/api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShareRepository struct {
	Db *gorm.DB
}

func NewShareRepository(db *gorm.DB) *ShareRepository {
	return &ShareRepository{Db: db}
}

// Add grants username access to the resource. Granting twice is a no-op.
func (slf *ShareRepository) Add(resourceType models.ResourceType, resourceID uint, username string) error {
	share := models.Share{ResourceType: resourceType, ResourceID: resourceID, SharedWith: username}
	return slf.Db.Clauses(clause.OnConflict{DoNothing: true}).Create(&share).Error
}

func (slf *ShareRepository) UsersFor(resourceType models.ResourceType, resourceID uint) ([]string, error) {
	users := []string{}
	err := slf.Db.Model(&models.Share{}).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("shared_with ASC").
		Pluck("shared_with", &users).Error
	return users, err
}

// ResourceIDsFor lists the ids of resources of the given type shared with username.
func (slf *ShareRepository) ResourceIDsFor(resourceType models.ResourceType, username string) ([]uint, error) {
	var ids []uint
	err := slf.Db.Model(&models.Share{}).
		Where("resource_type = ? AND shared_with = ?", resourceType, username).
		Pluck("resource_id", &ids).Error
	return ids, err
}

func (slf *ShareRepository) deleteFor(tx *gorm.DB, resourceType models.ResourceType, resourceID uint) error {
	return tx.Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Delete(&models.Share{}).Error
}
