package models

// Course is the root of the content tree. Membership lives in
// CourseMember rows; the creator is always enrolled as a professor at
// creation time.
type Course struct {
	ID        int64  `gorm:"primarykey" json:"id"`
	CreatedBy int64  `gorm:"not null" json:"created_by"`
	Title     string `gorm:"type:varchar(255);not null" json:"title"`
	Code      string `gorm:"type:varchar(100);not null" json:"code"`
	CreatedAt int64  `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Members []CourseMember `gorm:"foreignKey:CourseID" json:"members,omitempty"`
	Entries []Entry        `gorm:"foreignKey:CourseID" json:"entries,omitempty"`
}
