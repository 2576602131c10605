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

// CourseService owns the course entity: lookup through the identity
// map, the membership state machine and the course-level permission
// predicates every deeper predicate builds on.
type CourseService struct {
	courses repository.CourseRepository
}

// NewCourseService creates a new CourseService.
func NewCourseService(courses repository.CourseRepository) *CourseService {
	return &CourseService{courses: courses}
}

// FromID resolves a course through the scope's identity map, falling
// back to a primary-key fetch on a miss.
func (s *CourseService) FromID(scope *uow.Scope, id int64) (*models.Course, error) {
	if cached, ok := scope.Cache.Get(uow.KindCourse, id); ok {
		return cached.(*models.Course), nil
	}

	course, err := s.courses.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundError("course does not exist")
		}
		return nil, fmt.Errorf("failed to find course: %w", err)
	}

	scope.Cache.Set(uow.KindCourse, id, course)
	return course, nil
}

// ListForUser returns the courses the user is enrolled in, ordered by title.
func (s *CourseService) ListForUser(userID int64) ([]models.Course, error) {
	courses, err := s.courses.ListForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// Create inserts a new course and enrolls the creator as a professor.
func (s *CourseService) Create(scope *uow.Scope, creator models.User, title, code string) (*models.Course, error) {
	if creator.IsGuest() {
		return nil, apierrors.PermissionError("guests cannot create courses")
	}
	title = strings.TrimSpace(title)
	code = strings.TrimSpace(code)
	if title == "" {
		return nil, apierrors.ValidationError("course title cannot be empty")
	}
	if code == "" {
		return nil, apierrors.ValidationError("course code cannot be empty")
	}

	course := &models.Course{
		CreatedBy: creator.ID,
		Title:     title,
		Code:      code,
	}
	if err := s.courses.Create(course); err != nil {
		return nil, apierrors.PersistenceError("failed to create course", err)
	}

	// Re-resolve through FromID so the identity map owns the instance.
	scope.Cache.Invalidate(uow.KindCourse, course.ID)
	created, err := s.FromID(scope, course.ID)
	if err != nil {
		return nil, err
	}

	if err := s.AddProfessor(scope, created, creator); err != nil {
		return nil, err
	}

	scope.Dirty.Mark(created.ID)
	return created, nil
}

// Membership returns the course's role sets, loading them on first
// access and caching them in the scope for the rest of the unit of work.
func (s *CourseService) Membership(scope *uow.Scope, course *models.Course) (*uow.Membership, error) {
	if m, ok := scope.Membership(course.ID); ok {
		return m, nil
	}

	rows, err := s.courses.ListMembers(course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course members: %w", err)
	}

	m := uow.NewMembership()
	for _, row := range rows {
		if row.IsProfessor {
			m.Professors[row.UserID] = row.User
		} else {
			m.Students[row.UserID] = row.User
		}
	}

	scope.SetMembership(course.ID, m)
	return m, nil
}

// CanView reports whether the user can see the course: admins,
// professors and enrolled students.
func (s *CourseService) CanView(scope *uow.Scope, course *models.Course, user models.User) (bool, error) {
	if user.IsGuest() {
		return false, nil
	}
	canEdit, err := s.CanEdit(scope, course, user)
	if err != nil {
		return false, err
	}
	if canEdit {
		return true, nil
	}
	m, err := s.Membership(scope, course)
	if err != nil {
		return false, err
	}
	return m.IsStudent(user.ID), nil
}

// CanEdit reports whether the user can modify the course: admins and
// professors.
func (s *CourseService) CanEdit(scope *uow.Scope, course *models.Course, user models.User) (bool, error) {
	if user.IsGuest() {
		return false, nil
	}
	if user.IsAdmin() {
		return true, nil
	}
	m, err := s.Membership(scope, course)
	if err != nil {
		return false, err
	}
	return m.IsProfessor(user.ID), nil
}

// AddStudent enrolls the user as a student, demoting a professor first.
// No-op for guests and for users who are already students.
func (s *CourseService) AddStudent(scope *uow.Scope, course *models.Course, user models.User) error {
	if user.IsGuest() {
		return nil
	}
	m, err := s.Membership(scope, course)
	if err != nil {
		return err
	}
	if m.IsStudent(user.ID) {
		return nil
	}
	if m.IsProfessor(user.ID) {
		if err := s.RemoveUser(scope, course, user); err != nil {
			return err
		}
	}
	return s.addMember(scope, course, user, false)
}

// AddProfessor enrolls the user as a professor, withdrawing a student
// enrollment first. No-op for guests and existing professors.
func (s *CourseService) AddProfessor(scope *uow.Scope, course *models.Course, user models.User) error {
	if user.IsGuest() {
		return nil
	}
	m, err := s.Membership(scope, course)
	if err != nil {
		return err
	}
	if m.IsProfessor(user.ID) {
		return nil
	}
	if m.IsStudent(user.ID) {
		if err := s.RemoveUser(scope, course, user); err != nil {
			return err
		}
	}
	return s.addMember(scope, course, user, true)
}

func (s *CourseService) addMember(scope *uow.Scope, course *models.Course, user models.User, isProfessor bool) error {
	member := &models.CourseMember{
		CourseID:    course.ID,
		UserID:      user.ID,
		IsProfessor: isProfessor,
	}
	if err := s.courses.AddMember(member); err != nil {
		return apierrors.PersistenceError("failed to add user to course", err)
	}

	if m, ok := scope.Membership(course.ID); ok {
		if isProfessor {
			m.Professors[user.ID] = user
		} else {
			m.Students[user.ID] = user
		}
	}

	scope.Dirty.Mark(course.ID)
	return nil
}

// RemoveUser withdraws the user from the course. The creator can never
// be removed. No-op for non-members.
func (s *CourseService) RemoveUser(scope *uow.Scope, course *models.Course, user models.User) error {
	if user.ID == course.CreatedBy {
		return apierrors.PermissionError("the creator of the course cannot be removed")
	}
	m, err := s.Membership(scope, course)
	if err != nil {
		return err
	}
	if !m.IsMember(user.ID) {
		return nil
	}

	if err := s.courses.RemoveMember(course.ID, user.ID); err != nil {
		return apierrors.PersistenceError("failed to remove user from course", err)
	}

	m.Remove(user.ID)
	scope.Dirty.Mark(course.ID)
	return nil
}

// SetTitle updates the course title. No-op if unchanged.
func (s *CourseService) SetTitle(scope *uow.Scope, course *models.Course, title string) error {
	title = strings.TrimSpace(title)
	if title == course.Title {
		return nil
	}
	if title == "" {
		return apierrors.ValidationError("course title cannot be empty")
	}

	updated := *course
	updated.Title = title
	if err := s.courses.Update(&updated); err != nil {
		return apierrors.PersistenceError("failed to update course title", err)
	}

	course.Title = title
	scope.Dirty.Mark(course.ID)
	return nil
}

// SetCode updates the course code. No-op if unchanged.
func (s *CourseService) SetCode(scope *uow.Scope, course *models.Course, code string) error {
	code = strings.TrimSpace(code)
	if code == course.Code {
		return nil
	}
	if code == "" {
		return apierrors.ValidationError("course code cannot be empty")
	}

	updated := *course
	updated.Code = code
	if err := s.courses.Update(&updated); err != nil {
		return apierrors.PersistenceError("failed to update course code", err)
	}

	course.Code = code
	scope.Dirty.Mark(course.ID)
	return nil
}
