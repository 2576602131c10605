package models

// Question is a threaded discussion under an entry. The author of the
// first answer is the asker; deleting that answer deletes the whole
// question.
type Question struct {
	ID        int64  `gorm:"primarykey" json:"id"`
	EntryID   int64  `gorm:"not null;index" json:"entry_id"`
	Title     string `gorm:"type:varchar(255);not null" json:"title"`
	IsPrivate bool   `gorm:"not null;default:false" json:"is_private"`
	IsClosed  bool   `gorm:"not null;default:false" json:"is_closed"`
	CreatedAt int64  `gorm:"not null" json:"created_at"`
	// FirstAnswerID identifies the answer whose author is the asker.
	// It is backfilled in the same transaction that creates the question.
	FirstAnswerID int64 `json:"first_answer_id"`

	// Relations
	Entry   Entry    `gorm:"foreignKey:EntryID" json:"entry,omitempty"`
	Answers []Answer `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`
}
