package repo

import (
	"analytics/internal/api/models"

	"gorm.io/gorm"
)

type CommentRepository struct {
	Db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{Db: db}
}

func (slf *CommentRepository) FindByID(id uint) (models.Comment, error) {
	var comment models.Comment
	err := slf.Db.First(&comment, id).Error
	return comment, err
}

// FindFor lists a resource's comments, newest first.
func (slf *CommentRepository) FindFor(resourceType models.ResourceType, resourceID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := slf.Db.
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").Order("id DESC").
		Find(&comments).Error
	return comments, err
}

func (slf *CommentRepository) Create(comment *models.Comment) error {
	return slf.Db.Create(comment).Error
}

func (slf *CommentRepository) Delete(id uint) error {
	return slf.Db.Delete(&models.Comment{}, id).Error
}
