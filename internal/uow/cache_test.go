package uow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/courseboard/api/internal/models"
)

func TestIdentityMap_SetGet(t *testing.T) {
	m := NewIdentityMap()

	_, ok := m.Get(KindCourse, 1)
	require.False(t, ok)

	course := &models.Course{ID: 1, Title: "Algorithms"}
	m.Set(KindCourse, 1, course)

	got, ok := m.Get(KindCourse, 1)
	require.True(t, ok)
	require.Same(t, course, got)
}

func TestIdentityMap_KindsAreIndependent(t *testing.T) {
	m := NewIdentityMap()

	m.Set(KindCourse, 7, &models.Course{ID: 7})

	_, ok := m.Get(KindEntry, 7)
	require.False(t, ok)
}

func TestIdentityMap_InvalidateIsAMiss(t *testing.T) {
	m := NewIdentityMap()

	m.Set(KindAnswer, 3, &models.Answer{ID: 3})
	m.Invalidate(KindAnswer, 3)

	_, ok := m.Get(KindAnswer, 3)
	require.False(t, ok)

	// A fresh instance can be stored again after invalidation.
	replacement := &models.Answer{ID: 3}
	m.Set(KindAnswer, 3, replacement)
	got, ok := m.Get(KindAnswer, 3)
	require.True(t, ok)
	require.Same(t, replacement, got)
}

func TestDirtySet_MarkIsIdempotent(t *testing.T) {
	d := NewDirtySet()

	d.Mark(5)
	d.Mark(5)
	d.Mark(2)

	require.Equal(t, 2, d.Len())
}

func TestDirtySet_DrainSortsAndClears(t *testing.T) {
	d := NewDirtySet()

	d.Mark(9)
	d.Mark(1)
	d.Mark(4)

	require.Equal(t, []int64{1, 4, 9}, d.Drain())
	require.Equal(t, 0, d.Len())
	require.Empty(t, d.Drain())
}

func TestMembership_Roles(t *testing.T) {
	m := NewMembership()
	m.Professors[1] = models.User{ID: 1}
	m.Students[2] = models.User{ID: 2}

	require.True(t, m.IsProfessor(1))
	require.False(t, m.IsStudent(1))
	require.True(t, m.IsStudent(2))
	require.True(t, m.IsMember(1))
	require.True(t, m.IsMember(2))
	require.False(t, m.IsMember(3))

	m.Remove(1)
	require.False(t, m.IsMember(1))
}

func TestScope_MembershipLifecycle(t *testing.T) {
	s := NewScope()

	_, ok := s.Membership(1)
	require.False(t, ok)

	m := NewMembership()
	s.SetMembership(1, m)

	got, ok := s.Membership(1)
	require.True(t, ok)
	require.Same(t, m, got)

	s.InvalidateMembership(1)
	_, ok = s.Membership(1)
	require.False(t, ok)
}
