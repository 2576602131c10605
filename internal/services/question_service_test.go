package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	apierrors "github.com/courseboard/api/internal/errors"
	"github.com/courseboard/api/internal/models"
	"github.com/courseboard/api/internal/uow"
)

// askQuestion creates a question with its first answer from the given user.
func askQuestion(t *testing.T, env *testEnv, scope *uow.Scope, asker models.User, entry *models.Entry, private bool) *models.Question {
	t.Helper()

	q, err := env.questions.Create(scope, asker, entry, "How does this work?", "I am stuck on part two.", private)
	require.NoError(t, err)
	return q
}

func TestQuestionService_CreateWithFirstAnswer(t *testing.T) {
	env := setupTestEnv(t)
	scope := uow.NewScope()
	prof := env.createUser(t, "prof", false)
	student := env.createUser(t, "student", false)
	course := env.createCourse(t, scope, prof)
	require.NoError(t, env.courses.AddStudent(scope, course, student))
	entry := env.createVisibleEntry(t, scope, prof, course)

	q := askQuestion(t, env, scope, student, entry, false)
	require.NotZero(t, q.ID)
	require.NotZero(t, q.FirstAnswerID)

	// The asker is the author of the first answer.
	asker, err := env.questions.AskerID(scope, q)
	require.NoError(t, err)
	require.Equal(t, student.ID, asker)

	answers, err := env.answers.ForQuestion(scope, q)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	require.Equal(t, q.FirstAnswerID, answers[0].ID)
	require.Equal(t, "I am stuck on part two.", answers[0].Text)
	require.False(t, answers[0].IsEdited())
}

func TestQuestionService_CreateRequiresEntryView(t *testing.T) {
	env := setupTestEnv(t)
	scope := uow.NewScope()
	prof := env.createUser(t, "prof", false)
	outsider := env.createUser(t, "outsider", false)
	course := env.createCourse(t, scope, prof)
	entry := env.createVisibleEntry(t, scope, prof, course)

	_, err := env.questions.Create(scope, outsider, entry, "t", "x", false)
	require.Equal(t, apierrors.KindPermissionDenied, apierrors.KindOf(err))
}

func TestQuestionService_PrivateVisibility(t *testing.T) {
	env := setupTestEnv(t)
	scope := uow.NewScope()
	prof := env.createUser(t, "prof", false)
	asker := env.createUser(t, "asker", false)
	other := env.createUser(t, "other", false)
	course := env.createCourse(t, scope, prof)
	require.NoError(t, env.courses.AddStudent(scope, course, asker))
	require.NoError(t, env.courses.AddStudent(scope, course, other))
	entry := env.createVisibleEntry(t, scope, prof, course)

	q := askQuestion(t, env, scope, asker, entry, true)

	for _, tc := range []struct {
		name string
		user models.User
		want bool
	}{
		{"asker sees own private question", asker, true},
		{"professor sees private question", prof, true},
		{"classmate does not see private question", other, false},
		{"guest does not see private question", guest(), false},
	} {
		got, err := env.questions.CanView(scope, q, tc.user)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, tc.name)
	}

	// Making it public opens it to the classmate.
	require.NoError(t, env.questions.SetPrivate(scope, q, false))
	got, err := env.questions.CanView(scope, q, other)
	require.NoError(t, err)
	require.True(t, got)
}

func TestQuestionService_ClosedQuestionAnswering(t *testing.T) {
	env := setupTestEnv(t)
	scope := uow.NewScope()
	prof := env.createUser(t, "prof", false)
	asker := env.createUser(t, "asker", false)
	other := env.createUser(t, "other", false)
	course := env.createCourse(t, scope, prof)
	require.NoError(t, env.courses.AddStudent(scope, course, asker))
	require.NoError(t, env.courses.AddStudent(scope, course, other))
	entry := env.createVisibleEntry(t, scope, prof, course)

	q := askQuestion(t, env, scope, asker, entry, false)

	canAnswer, err := env.questions.CanAnswer(scope, q, other)
	require.NoError(t, err)
	require.True(t, canAnswer)

	require.NoError(t, env.questions.SetClosed(scope, q, true))

	// Closing restricts answering to course editors; even the asker is
	// locked out.
	for _, tc := range []struct {
		name string
		user models.User
		want bool
	}{
		{"classmate", other, false},
		{"asker", asker, false},
		{"professor", prof, true},
	} {
		got, err := env.questions.CanAnswer(scope, q, tc.user)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, tc.name)
	}
}

func TestQuestionService_AskerCanEdit(t *testing.T) {
	env := setupTestEnv(t)
	scope := uow.NewScope()
	prof := env.createUser(t, "prof", false)
	asker := env.createUser(t, "asker", false)
	other := env.createUser(t, "other", false)
	course := env.createCourse(t, scope, prof)
	require.NoError(t, env.courses.AddStudent(scope, course, asker))
	require.NoError(t, env.courses.AddStudent(scope, course, other))
	entry := env.createVisibleEntry(t, scope, prof, course)

	q := askQuestion(t, env, scope, asker, entry, false)

	canEdit, err := env.questions.CanEdit(scope, q, asker)
	require.NoError(t, err)
	require.True(t, canEdit)

	canEdit, err = env.questions.CanEdit(scope, q, other)
	require.NoError(t, err)
	require.False(t, canEdit)

	canEdit, err = env.questions.CanEdit(scope, q, prof)
	require.NoError(t, err)
	require.True(t, canEdit)
}

func TestQuestionService_AskerKeepsAccessWhenEntryHidden(t *testing.T) {
	env := setupTestEnv(t)
	scope := uow.NewScope()
	prof := env.createUser(t, "prof", false)
	asker := env.createUser(t, "asker", false)
	other := env.createUser(t, "other", false)
	course := env.createCourse(t, scope, prof)
	require.NoError(t, env.courses.AddStudent(scope, course, asker))
	require.NoError(t, env.courses.AddStudent(scope, course, other))
	entry := env.createVisibleEntry(t, scope, prof, course)

	q := askQuestion(t, env, scope, asker, entry, false)
	require.NoError(t, env.entries.SetVisible(scope, entry, false))

	// Hiding the entry takes the question away from classmates, but the
	// asker keeps their own question. Edit never outruns view.
	for _, tc := range []struct {
		name     string
		user     models.User
		wantView bool
		wantEdit bool
	}{
		{"asker", asker, true, true},
		{"classmate", other, false, false},
		{"professor", prof, true, true},
		{"guest", guest(), false, false},
	} {
		canView, err := env.questions.CanView(scope, q, tc.user)
		require.NoError(t, err)
		require.Equal(t, tc.wantView, canView, tc.name)

		canEdit, err := env.questions.CanEdit(scope, q, tc.user)
		require.NoError(t, err)
		require.Equal(t, tc.wantEdit, canEdit, tc.name)
		require.False(t, canEdit && !canView, tc.name)
	}
}

func TestQuestionService_DeleteCascades(t *testing.T) {
	env := setupTestEnv(t)
	scope := uow.NewScope()
	prof := env.createUser(t, "prof", false)
	asker := env.createUser(t, "asker", false)
	course := env.createCourse(t, scope, prof)
	require.NoError(t, env.courses.AddStudent(scope, course, asker))
	entry := env.createVisibleEntry(t, scope, prof, course)

	q := askQuestion(t, env, scope, asker, entry, false)
	reply, err := env.answers.Create(scope, prof, q, "Try part one first.")
	require.NoError(t, err)
	require.NoError(t, env.answers.ToggleLike(scope, asker, reply))

	require.NoError(t, env.questions.Delete(scope, q))

	_, err = env.questions.FromID(scope, q.ID)
	require.Equal(t, apierrors.KindNotFound, apierrors.KindOf(err))
	_, err = env.answers.FromID(scope, reply.ID)
	require.Equal(t, apierrors.KindNotFound, apierrors.KindOf(err))
	_, err = env.answers.FromID(scope, q.FirstAnswerID)
	require.Equal(t, apierrors.KindNotFound, apierrors.KindOf(err))

	var likeCount int64
	require.NoError(t, env.db.Model(&models.AnswerLike{}).Count(&likeCount).Error)
	require.Zero(t, likeCount)
}

func TestQuestionService_TrimsAndValidates(t *testing.T) {
	env := setupTestEnv(t)
	scope := uow.NewScope()
	prof := env.createUser(t, "prof", false)
	course := env.createCourse(t, scope, prof)
	entry := env.createVisibleEntry(t, scope, prof, course)

	_, err := env.questions.Create(scope, prof, entry, "  ", "text", false)
	require.Equal(t, apierrors.KindValidation, apierrors.KindOf(err))

	_, err = env.questions.Create(scope, prof, entry, "title", "   ", false)
	require.Equal(t, apierrors.KindValidation, apierrors.KindOf(err))

	q, err := env.questions.Create(scope, prof, entry, "  padded  ", "  body  ", false)
	require.NoError(t, err)
	require.Equal(t, "padded", q.Title)
}
