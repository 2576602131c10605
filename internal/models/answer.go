package models

// Answer is a reply in a question thread.
type Answer struct {
	ID         int64 `gorm:"primarykey" json:"id"`
	QuestionID int64 `gorm:"not null;index" json:"question_id"`
	CreatedBy  int64 `gorm:"not null" json:"created_by"`
	CreatedAt  int64 `gorm:"not null" json:"created_at"`
	// EditedAt equals CreatedAt until the answer is edited.
	EditedAt int64  `gorm:"not null" json:"edited_at"`
	EditedBy int64  `gorm:"not null" json:"edited_by"`
	Text     string `gorm:"type:text;not null" json:"text"`

	// Relations
	Question Question     `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	Likes    []AnswerLike `gorm:"foreignKey:AnswerID" json:"likes,omitempty"`
}

// IsEdited reports whether the answer was changed after creation.
func (a Answer) IsEdited() bool {
	return a.EditedAt != a.CreatedAt
}
