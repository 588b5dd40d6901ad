package repo

import (
	"analytics/internal/api/models"

	"gorm.io/gorm"
)

type DatasetRepository struct {
	Db *gorm.DB
}

func NewDatasetRepository(db *gorm.DB) *DatasetRepository {
	return &DatasetRepository{Db: db}
}

func (slf *DatasetRepository) FindByID(id uint) (models.Dataset, error) {
	var dataset models.Dataset
	err := slf.Db.First(&dataset, id).Error
	return dataset, err
}

func (slf *DatasetRepository) FindAll() ([]models.Dataset, error) {
	var datasets []models.Dataset
	err := slf.Db.Order("id ASC").Find(&datasets).Error
	return datasets, err
}

func (slf *DatasetRepository) ExistsByID(id uint) (bool, error) {
	var count int64
	err := slf.Db.Model(&models.Dataset{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// CountCharts reports how many charts still reference the dataset.
func (slf *DatasetRepository) CountCharts(id uint) (int64, error) {
	var count int64
	err := slf.Db.Model(&models.Chart{}).Where("dataset_id = ?", id).Count(&count).Error
	return count, err
}

func (slf *DatasetRepository) Create(dataset *models.Dataset) error {
	return slf.Db.Create(dataset).Error
}

// Delete removes the dataset and reports whether a row was deleted.
func (slf *DatasetRepository) Delete(id uint) (bool, error) {
	result := slf.Db.Delete(&models.Dataset{}, id)
	return result.RowsAffected > 0, result.Error
}
