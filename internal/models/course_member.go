package models

// CourseMember enrolls a user in a course as either a student or a
// professor. A user holds at most one role per course.
type CourseMember struct {
	CourseID    int64 `gorm:"primarykey" json:"course_id"`
	UserID      int64 `gorm:"primarykey" json:"user_id"`
	IsProfessor bool  `gorm:"not null;default:false" json:"is_professor"`
	CreatedAt   int64 `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
