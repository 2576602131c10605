package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/courseboard/api/internal/dto"
	"github.com/courseboard/api/internal/models"
	"github.com/courseboard/api/internal/repository"
	"github.com/courseboard/api/internal/uow"
	"gorm.io/gorm"
)

// ContextService assembles the permission-filtered payloads served to
// one specific viewer. Child builders return nil when the viewer cannot
// see the object and parents silently skip nils; the course builder is
// the exception and always produces a payload so a viewer who just lost
// access still learns that fact.
type ContextService struct {
	users     repository.UserRepository
	courses   *CourseService
	entries   *EntryService
	questions *QuestionService
	answers   *AnswerService

	now func() time.Time
}

// NewContextService creates a new ContextService.
func NewContextService(
	users repository.UserRepository,
	courses *CourseService,
	entries *EntryService,
	questions *QuestionService,
	answers *AnswerService,
) *ContextService {
	return &ContextService{
		users:     users,
		courses:   courses,
		entries:   entries,
		questions: questions,
		answers:   answers,
		now:       time.Now,
	}
}

// User builds the identity snapshot for a user value.
func (s *ContextService) User(user models.User) dto.UserContext {
	return dto.UserContext{
		IsGuest:            user.IsGuest(),
		IsAdmin:            user.IsAdmin(),
		UserID:             user.ID,
		Email:              user.Email,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		FullName:           user.FullName(),
		EmailVerified:      user.EmailVerified,
		AvatarAttachmentID: user.AvatarAttachmentID,
	}
}

// userByID resolves a user through the scope's identity map, degrading
// to the guest snapshot when the row is gone.
func (s *ContextService) userByID(scope *uow.Scope, id int64) (dto.UserContext, error) {
	if id == 0 {
		return s.User(models.Guest), nil
	}
	if cached, ok := scope.Cache.Get(uow.KindUser, id); ok {
		return s.User(*cached.(*models.User)), nil
	}

	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.User(models.Guest), nil
		}
		return dto.UserContext{}, fmt.Errorf("failed to resolve user: %w", err)
	}

	scope.Cache.Set(uow.KindUser, id, user)
	return s.User(*user), nil
}

// Course builds the course payload for the viewer. Always returns a
// payload; the member lists and entry tree are present only when the
// viewer can see the course.
func (s *ContextService) Course(scope *uow.Scope, course *models.Course, viewer models.User) (*dto.CourseContext, error) {
	canView, err := s.courses.CanView(scope, course, viewer)
	if err != nil {
		return nil, err
	}
	canEdit, err := s.courses.CanEdit(scope, course, viewer)
	if err != nil {
		return nil, err
	}

	ctx := &dto.CourseContext{
		CourseID: course.ID,
		CanView:  canView,
		CanEdit:  canEdit,
		Title:    course.Title,
		Code:     course.Code,
	}
	if !canView {
		return ctx, nil
	}

	m, err := s.courses.Membership(scope, course)
	if err != nil {
		return nil, err
	}
	ctx.Professors = s.roleContexts(m.Professors)
	ctx.Students = s.roleContexts(m.Students)

	entries, err := s.entries.ForCourse(scope, course)
	if err != nil {
		return nil, err
	}
	ctx.Entries = make([]dto.EntryContext, 0, len(entries))
	for _, entry := range entries {
		entryCtx, err := s.Entry(scope, entry, viewer)
		if err != nil {
			return nil, err
		}
		if entryCtx == nil {
			continue
		}
		ctx.Entries = append(ctx.Entries, *entryCtx)
	}
	return ctx, nil
}

// roleContexts flattens one role set into user snapshots ordered by id.
func (s *ContextService) roleContexts(role map[int64]models.User) []dto.UserContext {
	ids := make([]int64, 0, len(role))
	for id := range role {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	contexts := make([]dto.UserContext, 0, len(ids))
	for _, id := range ids {
		contexts = append(contexts, s.User(role[id]))
	}
	return contexts
}

// Entry builds the entry payload for the viewer, nil when invisible.
func (s *ContextService) Entry(scope *uow.Scope, entry *models.Entry, viewer models.User) (*dto.EntryContext, error) {
	canView, err := s.entries.CanView(scope, entry, viewer)
	if err != nil {
		return nil, err
	}
	if !canView {
		return nil, nil
	}
	canEdit, err := s.entries.CanEdit(scope, entry, viewer)
	if err != nil {
		return nil, err
	}
	createdBy, err := s.userByID(scope, entry.CreatedBy)
	if err != nil {
		return nil, err
	}

	ctx := &dto.EntryContext{
		EntryID:     entry.ID,
		CourseID:    entry.CourseID,
		CreatedBy:   createdBy,
		CanEdit:     canEdit,
		IsDue:       entry.HasDueTime(),
		DueAt:       entry.DueAt,
		DisplayAt:   entry.DisplayAt,
		Title:       entry.Title,
		Description: entry.Description,
		IsVisible:   entry.Visible,
		IsImportant: s.entries.IsImportantNow(entry, s.now()),
	}

	attachments, err := s.entries.Attachments(entry)
	if err != nil {
		return nil, err
	}
	ctx.Attachments = make([]dto.AttachmentContext, 0, len(attachments))
	for _, att := range attachments {
		ctx.Attachments = append(ctx.Attachments, dto.AttachmentContext{
			AttachmentID: att.ID,
			Name:         att.Name,
			Size:         att.Size,
			CreatedAt:    att.CreatedAt,
		})
	}

	questions, err := s.questions.ForEntry(scope, entry)
	if err != nil {
		return nil, err
	}
	ctx.Questions = make([]dto.QuestionContext, 0, len(questions))
	for _, q := range questions {
		questionCtx, err := s.Question(scope, q, viewer)
		if err != nil {
			return nil, err
		}
		if questionCtx == nil {
			continue
		}
		ctx.Questions = append(ctx.Questions, *questionCtx)
	}
	return ctx, nil
}

// Question builds the question payload for the viewer, nil when
// invisible.
func (s *ContextService) Question(scope *uow.Scope, q *models.Question, viewer models.User) (*dto.QuestionContext, error) {
	canView, err := s.questions.CanView(scope, q, viewer)
	if err != nil {
		return nil, err
	}
	if !canView {
		return nil, nil
	}
	canEdit, err := s.questions.CanEdit(scope, q, viewer)
	if err != nil {
		return nil, err
	}
	canAnswer, err := s.questions.CanAnswer(scope, q, viewer)
	if err != nil {
		return nil, err
	}

	entry, err := s.entries.FromID(scope, q.EntryID)
	if err != nil {
		return nil, err
	}

	ctx := &dto.QuestionContext{
		QuestionID: q.ID,
		EntryID:    q.EntryID,
		CourseID:   entry.CourseID,
		Title:      q.Title,
		IsPrivate:  q.IsPrivate,
		IsClosed:   q.IsClosed,
		CanAnswer:  canAnswer,
		CanEdit:    canEdit,
	}

	answers, err := s.answers.ForQuestion(scope, q)
	if err != nil {
		return nil, err
	}
	ctx.Answers = make([]dto.AnswerContext, 0, len(answers))
	for _, a := range answers {
		answerCtx, err := s.Answer(scope, a, viewer)
		if err != nil {
			return nil, err
		}
		if answerCtx == nil {
			continue
		}
		ctx.Answers = append(ctx.Answers, *answerCtx)
	}
	return ctx, nil
}

// Answer builds the answer payload for the viewer, nil when invisible.
func (s *ContextService) Answer(scope *uow.Scope, a *models.Answer, viewer models.User) (*dto.AnswerContext, error) {
	canView, err := s.answers.CanView(scope, a, viewer)
	if err != nil {
		return nil, err
	}
	if !canView {
		return nil, nil
	}
	canEdit, err := s.answers.CanEdit(scope, a, viewer)
	if err != nil {
		return nil, err
	}

	createdBy, err := s.userByID(scope, a.CreatedBy)
	if err != nil {
		return nil, err
	}
	editedBy, err := s.userByID(scope, a.EditedBy)
	if err != nil {
		return nil, err
	}

	ctx := &dto.AnswerContext{
		AnswerID:   a.ID,
		QuestionID: a.QuestionID,
		CreatedAt:  a.CreatedAt,
		CreatedBy:  createdBy,
		Edited:     a.IsEdited(),
		EditedAt:   a.EditedAt,
		EditedBy:   editedBy,
		Text:       a.Text,
		CanEdit:    canEdit,
	}

	likes, err := s.answers.Likes(a)
	if err != nil {
		return nil, err
	}

	q, err := s.questions.FromID(scope, a.QuestionID)
	if err != nil {
		return nil, err
	}
	course, err := s.questions.CourseOf(scope, q)
	if err != nil {
		return nil, err
	}
	m, err := s.courses.Membership(scope, course)
	if err != nil {
		return nil, err
	}

	ctx.LikeCount = len(likes)
	ctx.Likes = make([]dto.UserContext, 0, len(likes))
	for _, like := range likes {
		ctx.Likes = append(ctx.Likes, s.User(like.User))
		if !viewer.IsGuest() && like.UserID == viewer.ID {
			ctx.HasLiked = true
		}
		if m.IsProfessor(like.UserID) {
			ctx.ProfessorLiked = true
		}
	}
	return ctx, nil
}
