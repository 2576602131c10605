package models

// AnswerLike records one user liking one answer.
type AnswerLike struct {
	AnswerID  int64 `gorm:"primarykey" json:"answer_id"`
	UserID    int64 `gorm:"primarykey" json:"user_id"`
	CreatedAt int64 `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Answer Answer `gorm:"foreignKey:AnswerID" json:"answer,omitempty"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
