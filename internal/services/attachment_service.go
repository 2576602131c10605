package services

import (
	"errors"
	"fmt"
	"strings"

	apierrors "github.com/courseboard/api/internal/errors"
	"github.com/courseboard/api/internal/models"
	"github.com/courseboard/api/internal/repository"
	"github.com/courseboard/api/internal/uow"
	"gorm.io/gorm"
)

// AttachmentService owns attachment metadata. File bytes live in
// external storage keyed by the storage key; this service only tracks
// the rows.
type AttachmentService struct {
	attachments repository.AttachmentRepository
	users       repository.UserRepository
}

// NewAttachmentService creates a new AttachmentService.
func NewAttachmentService(attachments repository.AttachmentRepository, users repository.UserRepository) *AttachmentService {
	return &AttachmentService{
		attachments: attachments,
		users:       users,
	}
}

// FromID resolves an attachment through the scope's identity map.
func (s *AttachmentService) FromID(scope *uow.Scope, id int64) (*models.Attachment, error) {
	if cached, ok := scope.Cache.Get(uow.KindAttachment, id); ok {
		return cached.(*models.Attachment), nil
	}

	att, err := s.attachments.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundError("attachment does not exist")
		}
		return nil, fmt.Errorf("failed to find attachment: %w", err)
	}

	scope.Cache.Set(uow.KindAttachment, id, att)
	return att, nil
}

// Create records a new attachment owned by the uploader.
func (s *AttachmentService) Create(scope *uow.Scope, uploader models.User, name, path string, size int64) (*models.Attachment, error) {
	if uploader.IsGuest() {
		return nil, apierrors.PermissionError("guests cannot upload attachments")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierrors.ValidationError("attachment name cannot be empty")
	}
	if size < 0 {
		return nil, apierrors.ValidationError("attachment size cannot be negative")
	}

	att := &models.Attachment{
		OwnerID: uploader.ID,
		Name:    name,
		Path:    path,
		Size:    size,
	}
	if err := s.attachments.Create(att); err != nil {
		return nil, apierrors.PersistenceError("failed to create attachment", err)
	}

	scope.Cache.Set(uow.KindAttachment, att.ID, att)
	return att, nil
}

// Delete removes the attachment row and any entry links to it.
func (s *AttachmentService) Delete(scope *uow.Scope, att *models.Attachment) error {
	if err := s.attachments.Delete(att.ID); err != nil {
		return apierrors.PersistenceError("failed to delete attachment", err)
	}
	scope.Cache.Invalidate(uow.KindAttachment, att.ID)
	return nil
}

// SetUserAvatar points the user's avatar at the attachment; 0 clears it.
func (s *AttachmentService) SetUserAvatar(scope *uow.Scope, user *models.User, attachmentID int64) error {
	if user.AvatarAttachmentID == attachmentID {
		return nil
	}
	if attachmentID != 0 {
		if _, err := s.FromID(scope, attachmentID); err != nil {
			return err
		}
	}

	updated := *user
	updated.AvatarAttachmentID = attachmentID
	if err := s.users.Update(&updated); err != nil {
		return apierrors.PersistenceError("failed to set avatar", err)
	}

	user.AvatarAttachmentID = attachmentID
	return nil
}
