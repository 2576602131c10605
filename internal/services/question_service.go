package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	apierrors "github.com/courseboard/api/internal/errors"
	"github.com/courseboard/api/internal/models"
	"github.com/courseboard/api/internal/repository"
	"github.com/courseboard/api/internal/uow"
	"gorm.io/gorm"
)

// QuestionService owns questions: the atomic create-with-first-answer
// sequence, asker resolution, the private/closed permission rules and
// the first-answer delete cascade.
type QuestionService struct {
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
	entries   *EntryService
	courses   *CourseService

	now func() time.Time
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(
	questions repository.QuestionRepository,
	answers repository.AnswerRepository,
	entries *EntryService,
	courses *CourseService,
) *QuestionService {
	return &QuestionService{
		questions: questions,
		answers:   answers,
		entries:   entries,
		courses:   courses,
		now:       time.Now,
	}
}

// FromID resolves a question through the scope's identity map.
func (s *QuestionService) FromID(scope *uow.Scope, id int64) (*models.Question, error) {
	if cached, ok := scope.Cache.Get(uow.KindQuestion, id); ok {
		return cached.(*models.Question), nil
	}

	q, err := s.questions.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundError("question does not exist")
		}
		return nil, fmt.Errorf("failed to find question: %w", err)
	}

	scope.Cache.Set(uow.KindQuestion, id, q)
	return q, nil
}

// ForEntry lists the entry's questions, newest first, deduplicated
// against the identity map.
func (s *QuestionService) ForEntry(scope *uow.Scope, entry *models.Entry) ([]*models.Question, error) {
	rows, err := s.questions.ListByEntry(entry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	questions := make([]*models.Question, 0, len(rows))
	for i := range rows {
		if cached, ok := scope.Cache.Get(uow.KindQuestion, rows[i].ID); ok {
			questions = append(questions, cached.(*models.Question))
			continue
		}
		q := rows[i]
		scope.Cache.Set(uow.KindQuestion, q.ID, &q)
		questions = append(questions, &q)
	}
	return questions, nil
}

// Create asks a new question under an entry. The question row, its
// first answer and the first-answer backfill are one transaction: a
// question with no first answer has no asker and must never exist.
func (s *QuestionService) Create(scope *uow.Scope, creator models.User, entry *models.Entry, title, text string, private bool) (*models.Question, error) {
	canView, err := s.entries.CanView(scope, entry, creator)
	if err != nil {
		return nil, err
	}
	if !canView {
		return nil, apierrors.PermissionError("you are not allowed to ask a question in this entry")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apierrors.ValidationError("question title cannot be empty")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apierrors.ValidationError("question text cannot be empty")
	}

	now := s.now().Unix()
	q := &models.Question{
		EntryID:   entry.ID,
		Title:     title,
		IsPrivate: private,
		CreatedAt: now,
	}
	a := &models.Answer{
		CreatedBy: creator.ID,
		CreatedAt: now,
		EditedAt:  now,
		EditedBy:  creator.ID,
		Text:      text,
	}

	if err := s.questions.CreateWithFirstAnswer(q, a); err != nil {
		return nil, apierrors.PersistenceError("failed to create question", err)
	}

	scope.Cache.Set(uow.KindQuestion, q.ID, q)
	scope.Cache.Set(uow.KindAnswer, a.ID, a)
	scope.Dirty.Mark(entry.CourseID)
	return q, nil
}

// AskerID returns the user id of the question's asker: the author of
// its first answer. 0 when the first answer is unresolvable.
func (s *QuestionService) AskerID(scope *uow.Scope, q *models.Question) (int64, error) {
	if q.FirstAnswerID == 0 {
		return 0, nil
	}
	if cached, ok := scope.Cache.Get(uow.KindAnswer, q.FirstAnswerID); ok {
		return cached.(*models.Answer).CreatedBy, nil
	}

	first, err := s.answers.FindByID(q.FirstAnswerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to resolve question asker: %w", err)
	}

	scope.Cache.Set(uow.KindAnswer, first.ID, first)
	return first.CreatedBy, nil
}

// CourseOf resolves the course the question transitively belongs to.
func (s *QuestionService) CourseOf(scope *uow.Scope, q *models.Question) (*models.Course, error) {
	entry, err := s.entries.FromID(scope, q.EntryID)
	if err != nil {
		return nil, err
	}
	return s.courses.FromID(scope, entry.CourseID)
}

// CanView reports whether the user can see the question. The asker can
// always see their own question, even once the entry is hidden again.
// Everyone else needs entry view, and private questions additionally
// restrict to entry editors.
func (s *QuestionService) CanView(scope *uow.Scope, q *models.Question, user models.User) (bool, error) {
	asker, err := s.AskerID(scope, q)
	if err != nil {
		return false, err
	}
	if !user.IsGuest() && asker == user.ID {
		return true, nil
	}

	entry, err := s.entries.FromID(scope, q.EntryID)
	if err != nil {
		return false, err
	}
	canViewEntry, err := s.entries.CanView(scope, entry, user)
	if err != nil {
		return false, err
	}
	if !canViewEntry {
		return false, nil
	}

	if !q.IsPrivate {
		return true, nil
	}
	return s.entries.CanEdit(scope, entry, user)
}

// CanEdit reports whether the user can modify the question: course
// editors and the asker.
func (s *QuestionService) CanEdit(scope *uow.Scope, q *models.Question, user models.User) (bool, error) {
	course, err := s.CourseOf(scope, q)
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
	asker, err := s.AskerID(scope, q)
	if err != nil {
		return false, err
	}
	return !user.IsGuest() && asker == user.ID, nil
}

// CanAnswer reports whether the user may post an answer: anyone who can
// view while the question is open, only course editors once closed.
func (s *QuestionService) CanAnswer(scope *uow.Scope, q *models.Question, user models.User) (bool, error) {
	canView, err := s.CanView(scope, q, user)
	if err != nil {
		return false, err
	}
	if !canView {
		return false, nil
	}
	if !q.IsClosed {
		return true, nil
	}
	course, err := s.CourseOf(scope, q)
	if err != nil {
		return false, err
	}
	return s.courses.CanEdit(scope, course, user)
}

// SetTitle updates the question title. No-op if unchanged.
func (s *QuestionService) SetTitle(scope *uow.Scope, q *models.Question, title string) error {
	title = strings.TrimSpace(title)
	if title == q.Title {
		return nil
	}
	if title == "" {
		return apierrors.ValidationError("question title cannot be empty")
	}

	updated := *q
	updated.Title = title
	if err := s.questions.Update(&updated); err != nil {
		return apierrors.PersistenceError("failed to update question title", err)
	}

	q.Title = title
	return s.markDirty(scope, q)
}

// SetPrivate updates the privacy flag. No-op if unchanged.
func (s *QuestionService) SetPrivate(scope *uow.Scope, q *models.Question, private bool) error {
	if private == q.IsPrivate {
		return nil
	}

	updated := *q
	updated.IsPrivate = private
	if err := s.questions.Update(&updated); err != nil {
		return apierrors.PersistenceError("failed to update question privacy", err)
	}

	q.IsPrivate = private
	return s.markDirty(scope, q)
}

// SetClosed updates the closed flag. No-op if unchanged.
func (s *QuestionService) SetClosed(scope *uow.Scope, q *models.Question, closed bool) error {
	if closed == q.IsClosed {
		return nil
	}

	updated := *q
	updated.IsClosed = closed
	if err := s.questions.Update(&updated); err != nil {
		return apierrors.PersistenceError("failed to update question closed flag", err)
	}

	q.IsClosed = closed
	return s.markDirty(scope, q)
}

// Delete removes the question with all of its answers and likes,
// invalidating every deleted row in the identity map.
func (s *QuestionService) Delete(scope *uow.Scope, q *models.Question) error {
	course, err := s.CourseOf(scope, q)
	if err != nil {
		return err
	}

	answerIDs, err := s.questions.DeleteCascade(q.ID)
	if err != nil {
		return apierrors.PersistenceError("failed to delete question", err)
	}

	for _, id := range answerIDs {
		scope.Cache.Invalidate(uow.KindAnswer, id)
	}
	scope.Cache.Invalidate(uow.KindQuestion, q.ID)
	scope.Dirty.Mark(course.ID)
	return nil
}

func (s *QuestionService) markDirty(scope *uow.Scope, q *models.Question) error {
	course, err := s.CourseOf(scope, q)
	if err != nil {
		return err
	}
	scope.Dirty.Mark(course.ID)
	return nil
}
