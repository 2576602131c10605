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

// AnswerService owns answers and their likes. Deleting a question's
// first answer cascades to the whole question: without the first answer
// there is no asker left to attribute the thread to.
type AnswerService struct {
	answers   repository.AnswerRepository
	questions *QuestionService
	courses   *CourseService

	now func() time.Time
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(answers repository.AnswerRepository, questions *QuestionService, courses *CourseService) *AnswerService {
	return &AnswerService{
		answers:   answers,
		questions: questions,
		courses:   courses,
		now:       time.Now,
	}
}

// FromID resolves an answer through the scope's identity map.
func (s *AnswerService) FromID(scope *uow.Scope, id int64) (*models.Answer, error) {
	if cached, ok := scope.Cache.Get(uow.KindAnswer, id); ok {
		return cached.(*models.Answer), nil
	}

	a, err := s.answers.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundError("answer does not exist")
		}
		return nil, fmt.Errorf("failed to find answer: %w", err)
	}

	scope.Cache.Set(uow.KindAnswer, id, a)
	return a, nil
}

// ForQuestion lists the question's answers, oldest first, deduplicated
// against the identity map.
func (s *AnswerService) ForQuestion(scope *uow.Scope, q *models.Question) ([]*models.Answer, error) {
	rows, err := s.answers.ListByQuestion(q.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}

	answers := make([]*models.Answer, 0, len(rows))
	for i := range rows {
		if cached, ok := scope.Cache.Get(uow.KindAnswer, rows[i].ID); ok {
			answers = append(answers, cached.(*models.Answer))
			continue
		}
		a := rows[i]
		scope.Cache.Set(uow.KindAnswer, a.ID, &a)
		answers = append(answers, &a)
	}
	return answers, nil
}

// Create posts an answer to a question.
func (s *AnswerService) Create(scope *uow.Scope, creator models.User, q *models.Question, text string) (*models.Answer, error) {
	canAnswer, err := s.questions.CanAnswer(scope, q, creator)
	if err != nil {
		return nil, err
	}
	if !canAnswer {
		return nil, apierrors.PermissionError("you are not allowed to answer this question")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apierrors.ValidationError("answer text cannot be empty")
	}

	now := s.now().Unix()
	a := &models.Answer{
		QuestionID: q.ID,
		CreatedBy:  creator.ID,
		CreatedAt:  now,
		EditedAt:   now,
		EditedBy:   creator.ID,
		Text:       text,
	}
	if err := s.answers.Create(a); err != nil {
		return nil, apierrors.PersistenceError("failed to create answer", err)
	}

	scope.Cache.Set(uow.KindAnswer, a.ID, a)
	if err := s.markDirty(scope, a); err != nil {
		return nil, err
	}
	return a, nil
}

// CanView reports whether the user can see the answer: anyone who can
// view the question, plus the author.
func (s *AnswerService) CanView(scope *uow.Scope, a *models.Answer, user models.User) (bool, error) {
	if !user.IsGuest() && user.ID == a.CreatedBy {
		return true, nil
	}
	q, err := s.questions.FromID(scope, a.QuestionID)
	if err != nil {
		return false, err
	}
	return s.questions.CanView(scope, q, user)
}

// CanEdit reports whether the user can modify the answer: course
// editors and the author.
func (s *AnswerService) CanEdit(scope *uow.Scope, a *models.Answer, user models.User) (bool, error) {
	if !user.IsGuest() && user.ID == a.CreatedBy {
		return true, nil
	}
	q, err := s.questions.FromID(scope, a.QuestionID)
	if err != nil {
		return false, err
	}
	course, err := s.questions.CourseOf(scope, q)
	if err != nil {
		return false, err
	}
	return s.courses.CanEdit(scope, course, user)
}

// Edit replaces the answer text, stamping the editor and edit time.
// No-op if the text is unchanged.
func (s *AnswerService) Edit(scope *uow.Scope, editor models.User, a *models.Answer, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return apierrors.ValidationError("answer text cannot be empty")
	}
	if text == a.Text {
		return nil
	}

	updated := *a
	updated.Text = text
	updated.EditedAt = s.now().Unix()
	updated.EditedBy = editor.ID
	if err := s.answers.Update(&updated); err != nil {
		return apierrors.PersistenceError("failed to edit answer", err)
	}

	a.Text = updated.Text
	a.EditedAt = updated.EditedAt
	a.EditedBy = updated.EditedBy
	return s.markDirty(scope, a)
}

// Delete removes the answer. Deleting a question's first answer deletes
// the question and every other answer with it.
func (s *AnswerService) Delete(scope *uow.Scope, a *models.Answer) error {
	q, err := s.questions.FromID(scope, a.QuestionID)
	if err != nil {
		return err
	}
	if q.FirstAnswerID == a.ID {
		return s.questions.Delete(scope, q)
	}

	if err := s.answers.Delete(a.ID); err != nil {
		return apierrors.PersistenceError("failed to delete answer", err)
	}
	scope.Cache.Invalidate(uow.KindAnswer, a.ID)
	return s.markDirty(scope, a)
}

// ToggleLike flips the user's like on the answer.
func (s *AnswerService) ToggleLike(scope *uow.Scope, user models.User, a *models.Answer) error {
	canView, err := s.CanView(scope, a, user)
	if err != nil {
		return err
	}
	if !canView {
		return apierrors.PermissionError("you are not allowed to like this answer")
	}

	liked, err := s.answers.HasLiked(a.ID, user.ID)
	if err != nil {
		return fmt.Errorf("failed to check like: %w", err)
	}

	if liked {
		if err := s.answers.Unlike(a.ID, user.ID); err != nil {
			return apierrors.PersistenceError("failed to unlike answer", err)
		}
	} else {
		like := &models.AnswerLike{AnswerID: a.ID, UserID: user.ID}
		if err := s.answers.Like(like); err != nil {
			return apierrors.PersistenceError("failed to like answer", err)
		}
	}

	return s.markDirty(scope, a)
}

// Likes lists the answer's likes with users preloaded.
func (s *AnswerService) Likes(a *models.Answer) ([]models.AnswerLike, error) {
	likes, err := s.answers.ListLikes(a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	return likes, nil
}

// HasLiked reports whether the user has liked the answer.
func (s *AnswerService) HasLiked(a *models.Answer, user models.User) (bool, error) {
	if user.IsGuest() {
		return false, nil
	}
	return s.answers.HasLiked(a.ID, user.ID)
}

func (s *AnswerService) markDirty(scope *uow.Scope, a *models.Answer) error {
	q, err := s.questions.FromID(scope, a.QuestionID)
	if err != nil {
		return err
	}
	course, err := s.questions.CourseOf(scope, q)
	if err != nil {
		return err
	}
	scope.Dirty.Mark(course.ID)
	return nil
}
