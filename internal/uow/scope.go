package uow

import "github.com/courseboard/api/internal/models"

// Membership holds the lazily loaded role sets of one course. Once
// loaded it is the source of truth for permission checks until a
// role-changing write updates it in place.
type Membership struct {
	Professors map[int64]models.User
	Students   map[int64]models.User
}

func NewMembership() *Membership {
	return &Membership{
		Professors: make(map[int64]models.User),
		Students:   make(map[int64]models.User),
	}
}

func (m *Membership) IsProfessor(userID int64) bool {
	_, ok := m.Professors[userID]
	return ok
}

func (m *Membership) IsStudent(userID int64) bool {
	_, ok := m.Students[userID]
	return ok
}

func (m *Membership) IsMember(userID int64) bool {
	return m.IsProfessor(userID) || m.IsStudent(userID)
}

// Remove drops the user from both role sets.
func (m *Membership) Remove(userID int64) {
	delete(m.Professors, userID)
	delete(m.Students, userID)
}

// Scope is the per-request unit of work. It owns the identity map, the
// dirty course set and the loaded membership sets; it is created by the
// unit-of-work middleware and never shared across requests.
type Scope struct {
	Cache *IdentityMap
	Dirty *DirtySet

	memberships map[int64]*Membership
}

func NewScope() *Scope {
	return &Scope{
		Cache:       NewIdentityMap(),
		Dirty:       NewDirtySet(),
		memberships: make(map[int64]*Membership),
	}
}

// Membership returns the loaded role sets for a course, if present.
func (s *Scope) Membership(courseID int64) (*Membership, bool) {
	m, ok := s.memberships[courseID]
	return m, ok
}

func (s *Scope) SetMembership(courseID int64, m *Membership) {
	s.memberships[courseID] = m
}

// InvalidateMembership forces a reload on next access.
func (s *Scope) InvalidateMembership(courseID int64) {
	delete(s.memberships, courseID)
}
