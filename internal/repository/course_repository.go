package repository

import (
	"github.com/courseboard/api/internal/models"
	"gorm.io/gorm"
)

// GormCourseRepository is a GORM implementation of CourseRepository
type GormCourseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &GormCourseRepository{db: db}
}

// Create creates a new course
func (r *GormCourseRepository) Create(course *models.Course) error {
	return r.db.Create(course).Error
}

// FindByID finds a course by ID
func (r *GormCourseRepository) FindByID(id int64) (*models.Course, error) {
	var course models.Course
	if err := r.db.First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// ListForUser lists the courses a user is enrolled in, ordered by title
func (r *GormCourseRepository) ListForUser(userID int64) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.
		Joins("JOIN course_members ON course_members.course_id = courses.id").
		Where("course_members.user_id = ?", userID).
		Order("courses.title").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// Update persists all fields of the course
func (r *GormCourseRepository) Update(course *models.Course) error {
	return r.db.Save(course).Error
}

// AddMember enrolls a user in a course
func (r *GormCourseRepository) AddMember(member *models.CourseMember) error {
	return r.db.Create(member).Error
}

// RemoveMember removes a user's enrollment
func (r *GormCourseRepository) RemoveMember(courseID, userID int64) error {
	return r.db.Where("course_id = ? AND user_id = ?", courseID, userID).
		Delete(&models.CourseMember{}).Error
}

// ListMembers lists all enrollments of a course with users preloaded
func (r *GormCourseRepository) ListMembers(courseID int64) ([]models.CourseMember, error) {
	var members []models.CourseMember
	err := r.db.Preload("User").
		Where("course_id = ?", courseID).
		Order("user_id").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
