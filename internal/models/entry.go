package models

// Entry is an assignment or announcement inside a course. Entries are
// ordered within a course by DisplayAt.
type Entry struct {
	ID          int64  `gorm:"primarykey" json:"id"`
	CourseID    int64  `gorm:"not null;index" json:"course_id"`
	CreatedBy   int64  `gorm:"not null" json:"created_by"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	// DisplayAt is the unix time the entry appears in the schedule.
	DisplayAt int64 `gorm:"not null" json:"display_at"`
	// DueAt is the unix due time, 0 when the entry has no due date.
	DueAt     int64 `json:"due_at"`
	Visible   bool  `gorm:"not null;default:false" json:"visible"`
	CreatedAt int64 `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Course    Course     `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Questions []Question `gorm:"foreignKey:EntryID" json:"questions,omitempty"`
}

// HasDueTime reports whether a due date is set.
func (e Entry) HasDueTime() bool {
	return e.DueAt > 0
}
