package repository

import (
	"github.com/courseboard/api/internal/models"
	"gorm.io/gorm"
)

// GormAttachmentRepository is a GORM implementation of AttachmentRepository
type GormAttachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new AttachmentRepository
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &GormAttachmentRepository{db: db}
}

// Create creates a new attachment record
func (r *GormAttachmentRepository) Create(a *models.Attachment) error {
	return r.db.Create(a).Error
}

// FindByID finds an attachment by ID
func (r *GormAttachmentRepository) FindByID(id int64) (*models.Attachment, error) {
	var a models.Attachment
	if err := r.db.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// Delete removes the attachment record and any entry links
func (r *GormAttachmentRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attachment_id = ?", id).Delete(&models.EntryAttachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Attachment{}, id).Error
	})
}
