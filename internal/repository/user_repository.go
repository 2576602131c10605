package repository

import (
	"strings"

	"github.com/courseboard/api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id int64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email address
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Update persists all fields of the user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// ListAdmins lists every site-wide admin
func (r *GormUserRepository) ListAdmins() ([]models.User, error) {
	var admins []models.User
	if err := r.db.Where("is_admin = ?", true).Order("id").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}
