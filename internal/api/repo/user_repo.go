package repo

import (
	"analytics/internal/api/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	Db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{Db: db}
}

func (slf *UserRepository) FindByUsername(username string) (models.User, error) {
	var user models.User
	err := slf.Db.Where("username = ?", username).First(&user).Error
	return user, err
}

func (slf *UserRepository) Create(user *models.User) error {
	return slf.Db.Create(user).Error
}

func (slf *UserRepository) ExistsByUsernameOrEmail(username, email string) (bool, error) {
	var count int64
	err := slf.Db.Model(&models.User{}).Where("username = ? OR email = ?", username, email).Count(&count).Error
	return count > 0, err
}

func (slf *UserRepository) GetAll() ([]models.User, error) {
	var users []models.User
	err := slf.Db.Order("username ASC").Find(&users).Error
	return users, err
}
