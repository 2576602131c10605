package repository

import (
	"github.com/courseboard/api/internal/models"
	"gorm.io/gorm"
)

// GormEntryRepository is a GORM implementation of EntryRepository
type GormEntryRepository struct {
	db *gorm.DB
}

// NewEntryRepository creates a new EntryRepository
func NewEntryRepository(db *gorm.DB) EntryRepository {
	return &GormEntryRepository{db: db}
}

// Create creates a new entry
func (r *GormEntryRepository) Create(entry *models.Entry) error {
	return r.db.Create(entry).Error
}

// FindByID finds an entry by ID
func (r *GormEntryRepository) FindByID(id int64) (*models.Entry, error) {
	var entry models.Entry
	if err := r.db.First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByCourse lists a course's entries ordered by display time
func (r *GormEntryRepository) ListByCourse(courseID int64) ([]models.Entry, error) {
	var entries []models.Entry
	err := r.db.Where("course_id = ?", courseID).
		Order("display_at").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Update persists all fields of the entry
func (r *GormEntryRepository) Update(entry *models.Entry) error {
	return r.db.Save(entry).Error
}

// Delete removes the entry row and its attachment links
func (r *GormEntryRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entry_id = ?", id).Delete(&models.EntryAttachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Entry{}, id).Error
	})
}

// Attach links an attachment to an entry
func (r *GormEntryRepository) Attach(link *models.EntryAttachment) error {
	return r.db.Create(link).Error
}

// Detach unlinks an attachment from an entry
func (r *GormEntryRepository) Detach(entryID, attachmentID int64) error {
	return r.db.Where("entry_id = ? AND attachment_id = ?", entryID, attachmentID).
		Delete(&models.EntryAttachment{}).Error
}

// ListAttachments lists the attachments linked to an entry
func (r *GormEntryRepository) ListAttachments(entryID int64) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := r.db.
		Joins("JOIN entry_attachments ON entry_attachments.attachment_id = attachments.id").
		Where("entry_attachments.entry_id = ?", entryID).
		Order("attachments.id").
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}
