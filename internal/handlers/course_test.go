package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/courseboard/api/internal/dto"
)

func TestCourseHandler_CreateAndGet(t *testing.T) {
	env := setupHandlerTestEnv(t)
	cookies := env.signup(t, "prof@example.com")

	w := env.do(t, http.MethodPost, "/api/courses", map[string]any{
		"title": "Compilers",
		"code":  "CS-401",
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[dto.CourseContext](t, w)
	require.True(t, created.CanView)
	require.True(t, created.CanEdit)
	require.Len(t, created.Professors, 1)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/courses/%d", created.CourseID), nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[dto.CourseContext](t, w)
	require.Equal(t, created.CourseID, got.CourseID)
	require.Equal(t, "Compilers", got.Title)
}

func TestCourseHandler_GetAsOutsider(t *testing.T) {
	env := setupHandlerTestEnv(t)
	profCookies := env.signup(t, "prof@example.com")
	outsiderCookies := env.signup(t, "outsider@example.com")

	w := env.do(t, http.MethodPost, "/api/courses", map[string]any{
		"title": "Compilers",
		"code":  "CS-401",
	}, profCookies)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[dto.CourseContext](t, w)

	// Outsiders still get a payload, but only flags and headline fields.
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/courses/%d", created.CourseID), nil, outsiderCookies)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[dto.CourseContext](t, w)
	require.False(t, got.CanView)
	require.False(t, got.CanEdit)
	require.Empty(t, got.Professors)
	require.Empty(t, got.Entries)
}

func TestCourseHandler_UpdateRequiresEditor(t *testing.T) {
	env := setupHandlerTestEnv(t)
	profCookies := env.signup(t, "prof@example.com")
	outsiderCookies := env.signup(t, "outsider@example.com")

	w := env.do(t, http.MethodPost, "/api/courses", map[string]any{
		"title": "Networks",
		"code":  "CS-305",
	}, profCookies)
	created := decode[dto.CourseContext](t, w)

	w = env.do(t, http.MethodPatch, fmt.Sprintf("/api/courses/%d", created.CourseID), map[string]any{
		"title": "Hijacked",
	}, outsiderCookies)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPatch, fmt.Sprintf("/api/courses/%d", created.CourseID), map[string]any{
		"title": "Advanced Networks",
	}, profCookies)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[dto.CourseContext](t, w)
	require.Equal(t, "Advanced Networks", updated.Title)
}

func TestCourseHandler_FullThread(t *testing.T) {
	env := setupHandlerTestEnv(t)
	profCookies := env.signup(t, "prof@example.com")
	studentCookies := env.signup(t, "student@example.com")

	w := env.do(t, http.MethodPost, "/api/courses", map[string]any{
		"title": "Databases",
		"code":  "CS-340",
	}, profCookies)
	course := decode[dto.CourseContext](t, w)

	// Enroll the student.
	w = env.do(t, http.MethodGet, "/api/auth/me", nil, studentCookies)
	student := decode[dto.UserContext](t, w)
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/courses/%d/students", course.CourseID), map[string]any{
		"user_id": student.UserID,
	}, profCookies)
	require.Equal(t, http.StatusOK, w.Code)

	// Professor posts a visible entry.
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/courses/%d/entries", course.CourseID), map[string]any{
		"title":      "Normalization",
		"is_visible": true,
	}, profCookies)
	require.Equal(t, http.StatusCreated, w.Code)
	entry := decode[dto.EntryContext](t, w)

	// Student asks a question; the first answer is created with it.
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/entries/%d/questions", entry.EntryID), map[string]any{
		"title": "Why BCNF?",
		"text":  "Is 3NF not enough?",
	}, studentCookies)
	require.Equal(t, http.StatusCreated, w.Code)
	question := decode[dto.QuestionContext](t, w)
	require.Len(t, question.Answers, 1)
	require.True(t, question.CanEdit, "asker edits own question")

	// Professor replies and the student likes the reply.
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/questions/%d/answers", question.QuestionID), map[string]any{
		"text": "3NF can lose dependencies.",
	}, profCookies)
	require.Equal(t, http.StatusCreated, w.Code)
	reply := decode[dto.AnswerContext](t, w)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/answers/%d/like", reply.AnswerID), nil, studentCookies)
	require.Equal(t, http.StatusOK, w.Code)
	liked := decode[dto.AnswerContext](t, w)
	require.Equal(t, 1, liked.LikeCount)
	require.True(t, liked.HasLiked)

	// The student's view of the course now carries the whole thread.
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/courses/%d", course.CourseID), nil, studentCookies)
	require.Equal(t, http.StatusOK, w.Code)
	full := decode[dto.CourseContext](t, w)
	require.Len(t, full.Entries, 1)
	require.Len(t, full.Entries[0].Questions, 1)
	require.Len(t, full.Entries[0].Questions[0].Answers, 2)
}

func TestCourseHandler_ListRequiresAuth(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/courses", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
