package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	apierrors "github.com/courseboard/api/internal/errors"
	"github.com/courseboard/api/internal/uow"
)

func TestCourseService_FromIDReturnsSameInstance(t *testing.T) {
	env := setupTestEnv(t)
	scope := uow.NewScope()
	prof := env.createUser(t, "prof", false)
	course := env.createCourse(t, scope, prof)

	again, err := env.courses.FromID(scope, course.ID)
	require.NoError(t, err)
	require.Same(t, course, again)

	// A fresh scope resolves a fresh instance.
	other, err := env.courses.FromID(uow.NewScope(), course.ID)
	require.NoError(t, err)
	require.NotSame(t, course, other)
	require.Equal(t, course.ID, other.ID)
}

func TestCourseService_FromIDUnknown(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.courses.FromID(uow.NewScope(), 999)
	require.Error(t, err)
	require.Equal(t, apierrors.KindNotFound, apierrors.KindOf(err))
}

func TestCourseService_CreateEnrollsCreatorAsProfessor(t *testing.T) {
	env := setupTestEnv(t)
	scope := uow.NewScope()
	prof := env.createUser(t, "prof", false)

	course := env.createCourse(t, scope, prof)

	m, err := env.courses.Membership(scope, course)
	require.NoError(t, err)
	require.True(t, m.IsProfessor(prof.ID))

	canEdit, err := env.courses.CanEdit(scope, course, prof)
	require.NoError(t, err)
	require.True(t, canEdit)
}

func TestCourseService_GuestCannotCreate(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.courses.Create(uow.NewScope(), guest(), "T", "C")
	require.Equal(t, apierrors.KindPermissionDenied, apierrors.KindOf(err))
}

func TestCourseService_PermissionMatrix(t *testing.T) {
	env := setupTestEnv(t)
	scope := uow.NewScope()
	prof := env.createUser(t, "prof", false)
	student := env.createUser(t, "student", false)
	admin := env.createUser(t, "admin", true)
	outsider := env.createUser(t, "outsider", false)
	course := env.createCourse(t, scope, prof)
	require.NoError(t, env.courses.AddStudent(scope, course, student))

	cases := []struct {
		name    string
		user    int64
		canView bool
		canEdit bool
	}{
		{"professor", prof.ID, true, true},
		{"student", student.ID, true, false},
		{"admin", admin.ID, true, true},
		{"outsider", outsider.ID, false, false},
		{"guest", 0, false, false},
	}

	for _, tc := range cases {
		user := guest()
		switch tc.user {
		case prof.ID:
			user = prof
		case student.ID:
			user = student
		case admin.ID:
			user = admin
		case outsider.ID:
			user = outsider
		}

		canView, err := env.courses.CanView(scope, course, user)
		require.NoError(t, err)
		require.Equal(t, tc.canView, canView, tc.name)

		canEdit, err := env.courses.CanEdit(scope, course, user)
		require.NoError(t, err)
		require.Equal(t, tc.canEdit, canEdit, tc.name)
	}
}

func TestCourseService_RolesAreExclusive(t *testing.T) {
	env := setupTestEnv(t)
	scope := uow.NewScope()
	prof := env.createUser(t, "prof", false)
	user := env.createUser(t, "member", false)
	course := env.createCourse(t, scope, prof)

	require.NoError(t, env.courses.AddStudent(scope, course, user))
	require.NoError(t, env.courses.AddProfessor(scope, course, user))

	m, err := env.courses.Membership(scope, course)
	require.NoError(t, err)
	require.True(t, m.IsProfessor(user.ID))
	require.False(t, m.IsStudent(user.ID))

	// And back down again.
	require.NoError(t, env.courses.AddStudent(scope, course, user))
	require.True(t, m.IsStudent(user.ID))
	require.False(t, m.IsProfessor(user.ID))

	// The database agrees with the in-scope view.
	fresh := uow.NewScope()
	reloaded, err := env.courses.FromID(fresh, course.ID)
	require.NoError(t, err)
	m2, err := env.courses.Membership(fresh, reloaded)
	require.NoError(t, err)
	require.True(t, m2.IsStudent(user.ID))
	require.False(t, m2.IsProfessor(user.ID))
}

func TestCourseService_AddExistingRoleIsNoop(t *testing.T) {
	env := setupTestEnv(t)
	scope := uow.NewScope()
	prof := env.createUser(t, "prof", false)
	course := env.createCourse(t, scope, prof)
	scope.Dirty.Drain()

	require.NoError(t, env.courses.AddProfessor(scope, course, prof))
	require.Equal(t, 0, scope.Dirty.Len())
}

func TestCourseService_CreatorCannotBeRemoved(t *testing.T) {
	env := setupTestEnv(t)
	scope := uow.NewScope()
	prof := env.createUser(t, "prof", false)
	course := env.createCourse(t, scope, prof)

	err := env.courses.RemoveUser(scope, course, prof)
	require.Equal(t, apierrors.KindPermissionDenied, apierrors.KindOf(err))

	m, err := env.courses.Membership(scope, course)
	require.NoError(t, err)
	require.True(t, m.IsProfessor(prof.ID))
}

func TestCourseService_RemoveNonMemberIsNoop(t *testing.T) {
	env := setupTestEnv(t)
	scope := uow.NewScope()
	prof := env.createUser(t, "prof", false)
	outsider := env.createUser(t, "outsider", false)
	course := env.createCourse(t, scope, prof)
	scope.Dirty.Drain()

	require.NoError(t, env.courses.RemoveUser(scope, course, outsider))
	require.Equal(t, 0, scope.Dirty.Len())
}

func TestCourseService_SettersMutateCachedInstance(t *testing.T) {
	env := setupTestEnv(t)
	scope := uow.NewScope()
	prof := env.createUser(t, "prof", false)
	course := env.createCourse(t, scope, prof)
	scope.Dirty.Drain()

	require.NoError(t, env.courses.SetTitle(scope, course, "Operating Systems"))
	require.Equal(t, "Operating Systems", course.Title)
	require.Equal(t, []int64{course.ID}, scope.Dirty.Drain())

	// Unchanged value writes nothing and marks nothing.
	require.NoError(t, env.courses.SetTitle(scope, course, "Operating Systems"))
	require.Equal(t, 0, scope.Dirty.Len())

	require.NoError(t, env.courses.SetCode(scope, course, "OS-201"))
	require.Equal(t, "OS-201", course.Code)

	reloaded, err := env.courses.FromID(uow.NewScope(), course.ID)
	require.NoError(t, err)
	require.Equal(t, "Operating Systems", reloaded.Title)
	require.Equal(t, "OS-201", reloaded.Code)
}

func TestCourseService_SetTitleEmptyRejected(t *testing.T) {
	env := setupTestEnv(t)
	scope := uow.NewScope()
	prof := env.createUser(t, "prof", false)
	course := env.createCourse(t, scope, prof)

	err := env.courses.SetTitle(scope, course, "   ")
	require.Equal(t, apierrors.KindValidation, apierrors.KindOf(err))
}
