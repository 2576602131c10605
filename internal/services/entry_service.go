package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/courseboard/api/internal/constants"
	apierrors "github.com/courseboard/api/internal/errors"
	"github.com/courseboard/api/internal/models"
	"github.com/courseboard/api/internal/repository"
	"github.com/courseboard/api/internal/uow"
	"gorm.io/gorm"
)

// EntryService owns entries: schedule ordering, the visibility window
// rule, the importance flag and entry attachments.
type EntryService struct {
	entries repository.EntryRepository
	courses *CourseService

	now func() time.Time
}

// NewEntryService creates a new EntryService.
func NewEntryService(entries repository.EntryRepository, courses *CourseService) *EntryService {
	return &EntryService{
		entries: entries,
		courses: courses,
		now:     time.Now,
	}
}

// FromID resolves an entry through the scope's identity map.
func (s *EntryService) FromID(scope *uow.Scope, id int64) (*models.Entry, error) {
	if cached, ok := scope.Cache.Get(uow.KindEntry, id); ok {
		return cached.(*models.Entry), nil
	}

	entry, err := s.entries.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundError("entry does not exist")
		}
		return nil, fmt.Errorf("failed to find entry: %w", err)
	}

	scope.Cache.Set(uow.KindEntry, id, entry)
	return entry, nil
}

// ForCourse lists the course's entries ordered by display time. Each
// row is deduplicated against the identity map so repeated loads hand
// back the same instances.
func (s *EntryService) ForCourse(scope *uow.Scope, course *models.Course) ([]*models.Entry, error) {
	rows, err := s.entries.ListByCourse(course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	entries := make([]*models.Entry, 0, len(rows))
	for i := range rows {
		if cached, ok := scope.Cache.Get(uow.KindEntry, rows[i].ID); ok {
			entries = append(entries, cached.(*models.Entry))
			continue
		}
		entry := rows[i]
		scope.Cache.Set(uow.KindEntry, entry.ID, &entry)
		entries = append(entries, &entry)
	}
	return entries, nil
}

// CreateEntryInput represents parameters to create a new entry.
type CreateEntryInput struct {
	Title       string
	Description string
	// DisplayAt defaults to now when 0.
	DisplayAt int64
	// DueAt of 0 means no due date.
	DueAt   int64
	Visible bool
}

// Create inserts an entry into a course. Only course editors may post
// entries.
func (s *EntryService) Create(scope *uow.Scope, creator models.User, course *models.Course, input CreateEntryInput) (*models.Entry, error) {
	canEdit, err := s.courses.CanEdit(scope, course, creator)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, apierrors.PermissionError("you are not allowed to post entries in this course")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apierrors.ValidationError("entry title cannot be empty")
	}
	displayAt := input.DisplayAt
	if displayAt == 0 {
		displayAt = s.now().Unix()
	}

	entry := &models.Entry{
		CourseID:    course.ID,
		CreatedBy:   creator.ID,
		Title:       title,
		Description: input.Description,
		DisplayAt:   displayAt,
		DueAt:       input.DueAt,
		Visible:     input.Visible,
	}
	if err := s.entries.Create(entry); err != nil {
		return nil, apierrors.PersistenceError("failed to create entry", err)
	}

	scope.Cache.Invalidate(uow.KindEntry, entry.ID)
	created, err := s.FromID(scope, entry.ID)
	if err != nil {
		return nil, err
	}

	scope.Dirty.Mark(course.ID)
	return created, nil
}

// Delete removes the entry and marks the course dirty.
func (s *EntryService) Delete(scope *uow.Scope, entry *models.Entry) error {
	if err := s.entries.Delete(entry.ID); err != nil {
		return apierrors.PersistenceError("failed to delete entry", err)
	}
	scope.Cache.Invalidate(uow.KindEntry, entry.ID)
	scope.Dirty.Mark(entry.CourseID)
	return nil
}

// CanView reports whether the user can see the entry: course editors
// and the creator always, enrolled members once the entry is visible
// and its display time has passed.
func (s *EntryService) CanView(scope *uow.Scope, entry *models.Entry, user models.User) (bool, error) {
	course, err := s.courses.FromID(scope, entry.CourseID)
	if err != nil {
		return false, err
	}

	canEditCourse, err := s.courses.CanEdit(scope, course, user)
	if err != nil {
		return false, err
	}
	if canEditCourse {
		return true, nil
	}
	if !user.IsGuest() && user.ID == entry.CreatedBy {
		return true, nil
	}

	canViewCourse, err := s.courses.CanView(scope, course, user)
	if err != nil {
		return false, err
	}
	return canViewCourse && entry.Visible && entry.DisplayAt <= s.now().Unix(), nil
}

// CanEdit reports whether the user can modify the entry: course editors
// and the creator.
func (s *EntryService) CanEdit(scope *uow.Scope, entry *models.Entry, user models.User) (bool, error) {
	course, err := s.courses.FromID(scope, entry.CourseID)
	if err != nil {
		return false, err
	}
	canEditCourse, err := s.courses.CanEdit(scope, course, user)
	if err != nil {
		return false, err
	}
	if canEditCourse {
		return true, nil
	}
	return !user.IsGuest() && user.ID == entry.CreatedBy, nil
}

// IsImportantNow reports whether the entry should be highlighted: it is
// visible and is either due within the next two weeks or displayed
// today. Pure; no side effects.
func (s *EntryService) IsImportantNow(entry *models.Entry, now time.Time) bool {
	if !entry.Visible {
		return false
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if entry.HasDueTime() {
		due := time.Unix(entry.DueAt, 0).In(now.Location())
		horizon := today.AddDate(0, 0, constants.ImportantDueWindowDays+1)
		if !due.Before(today) && due.Before(horizon) {
			return true
		}
	}

	display := time.Unix(entry.DisplayAt, 0).In(now.Location())
	return display.Year() == now.Year() && display.YearDay() == now.YearDay()
}

// SetTitle updates the entry title. No-op if unchanged.
func (s *EntryService) SetTitle(scope *uow.Scope, entry *models.Entry, title string) error {
	title = strings.TrimSpace(title)
	if title == entry.Title {
		return nil
	}
	if title == "" {
		return apierrors.ValidationError("entry title cannot be empty")
	}

	updated := *entry
	updated.Title = title
	if err := s.entries.Update(&updated); err != nil {
		return apierrors.PersistenceError("failed to update entry title", err)
	}

	entry.Title = title
	scope.Dirty.Mark(entry.CourseID)
	return nil
}

// SetDescription updates the entry description. No-op if unchanged.
func (s *EntryService) SetDescription(scope *uow.Scope, entry *models.Entry, description string) error {
	if description == entry.Description {
		return nil
	}

	updated := *entry
	updated.Description = description
	if err := s.entries.Update(&updated); err != nil {
		return apierrors.PersistenceError("failed to update entry description", err)
	}

	entry.Description = description
	scope.Dirty.Mark(entry.CourseID)
	return nil
}

// SetVisible updates the entry visibility flag. No-op if unchanged.
func (s *EntryService) SetVisible(scope *uow.Scope, entry *models.Entry, visible bool) error {
	if visible == entry.Visible {
		return nil
	}

	updated := *entry
	updated.Visible = visible
	if err := s.entries.Update(&updated); err != nil {
		return apierrors.PersistenceError("failed to update entry visibility", err)
	}

	entry.Visible = visible
	scope.Dirty.Mark(entry.CourseID)
	return nil
}

// SetDisplayTime updates the schedule time. No-op if unchanged.
func (s *EntryService) SetDisplayTime(scope *uow.Scope, entry *models.Entry, displayAt int64) error {
	if displayAt == entry.DisplayAt {
		return nil
	}

	updated := *entry
	updated.DisplayAt = displayAt
	if err := s.entries.Update(&updated); err != nil {
		return apierrors.PersistenceError("failed to update entry display time", err)
	}

	entry.DisplayAt = displayAt
	scope.Dirty.Mark(entry.CourseID)
	return nil
}

// SetDueTime updates the due time; 0 clears it. No-op if unchanged.
func (s *EntryService) SetDueTime(scope *uow.Scope, entry *models.Entry, dueAt int64) error {
	if dueAt == entry.DueAt {
		return nil
	}

	updated := *entry
	updated.DueAt = dueAt
	if err := s.entries.Update(&updated); err != nil {
		return apierrors.PersistenceError("failed to update entry due time", err)
	}

	entry.DueAt = dueAt
	scope.Dirty.Mark(entry.CourseID)
	return nil
}

// Attachments lists the attachments linked to the entry.
func (s *EntryService) Attachments(entry *models.Entry) ([]models.Attachment, error) {
	attachments, err := s.entries.ListAttachments(entry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entry attachments: %w", err)
	}
	return attachments, nil
}

// Attach links an attachment to the entry.
func (s *EntryService) Attach(scope *uow.Scope, entry *models.Entry, attachment *models.Attachment) error {
	link := &models.EntryAttachment{
		EntryID:      entry.ID,
		AttachmentID: attachment.ID,
	}
	if err := s.entries.Attach(link); err != nil {
		return apierrors.PersistenceError("failed to attach file to entry", err)
	}
	scope.Dirty.Mark(entry.CourseID)
	return nil
}

// Detach unlinks an attachment from the entry.
func (s *EntryService) Detach(scope *uow.Scope, entry *models.Entry, attachmentID int64) error {
	if err := s.entries.Detach(entry.ID, attachmentID); err != nil {
		return apierrors.PersistenceError("failed to detach file from entry", err)
	}
	scope.Dirty.Mark(entry.CourseID)
	return nil
}
