package repository

import (
	"errors"

	"github.com/courseboard/api/internal/models"
	"gorm.io/gorm"
)

// GormAnswerRepository is a GORM implementation of AnswerRepository
type GormAnswerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository creates a new AnswerRepository
func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &GormAnswerRepository{db: db}
}

// Create creates a new answer
func (r *GormAnswerRepository) Create(a *models.Answer) error {
	return r.db.Create(a).Error
}

// FindByID finds an answer by ID
func (r *GormAnswerRepository) FindByID(id int64) (*models.Answer, error) {
	var a models.Answer
	if err := r.db.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByQuestion lists a question's answers, oldest first
func (r *GormAnswerRepository) ListByQuestion(questionID int64) ([]models.Answer, error) {
	var answers []models.Answer
	err := r.db.Where("question_id = ?", questionID).
		Order("created_at").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

// Update persists all fields of the answer
func (r *GormAnswerRepository) Update(a *models.Answer) error {
	return r.db.Save(a).Error
}

// Delete removes the answer row and its likes
func (r *GormAnswerRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("answer_id = ?", id).Delete(&models.AnswerLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Answer{}, id).Error
	})
}

// Like records a user liking an answer
func (r *GormAnswerRepository) Like(like *models.AnswerLike) error {
	return r.db.Create(like).Error
}

// Unlike removes a user's like
func (r *GormAnswerRepository) Unlike(answerID, userID int64) error {
	return r.db.Where("answer_id = ? AND user_id = ?", answerID, userID).
		Delete(&models.AnswerLike{}).Error
}

// HasLiked reports whether the user has liked the answer
func (r *GormAnswerRepository) HasLiked(answerID, userID int64) (bool, error) {
	var like models.AnswerLike
	err := r.db.Where("answer_id = ? AND user_id = ?", answerID, userID).
		First(&like).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListLikes lists an answer's likes with users preloaded
func (r *GormAnswerRepository) ListLikes(answerID int64) ([]models.AnswerLike, error) {
	var likes []models.AnswerLike
	err := r.db.Preload("User").
		Where("answer_id = ?", answerID).
		Order("user_id").
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	return likes, nil
}
