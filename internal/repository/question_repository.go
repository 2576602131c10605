package repository

import (
	"errors"
	"fmt"

	"github.com/courseboard/api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrCreateQuestion is returned when the question insert fails inside the creation transaction.
	ErrCreateQuestion = errors.New("question repository: create question failed")
	// ErrCreateFirstAnswer is returned when the first-answer insert fails inside the creation transaction.
	ErrCreateFirstAnswer = errors.New("question repository: create first answer failed")
	// ErrSetFirstAnswer is returned when the first-answer backfill fails inside the creation transaction.
	ErrSetFirstAnswer = errors.New("question repository: set first answer failed")
)

// GormQuestionRepository is a GORM implementation of QuestionRepository
type GormQuestionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository creates a new QuestionRepository
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &GormQuestionRepository{db: db}
}

// CreateWithFirstAnswer inserts the question, its first answer and the
// first-answer backfill atomically. A question without a first answer
// has no derivable asker, so the three steps succeed or fail together.
func (r *GormQuestionRepository) CreateWithFirstAnswer(q *models.Question, a *models.Answer) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(q).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateQuestion, err)
		}

		a.QuestionID = q.ID
		if err := tx.Create(a).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateFirstAnswer, err)
		}

		if err := tx.Model(&models.Question{}).Where("id = ?", q.ID).
			Update("first_answer_id", a.ID).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrSetFirstAnswer, err)
		}
		return nil
	})
	if err != nil {
		// The ids assigned by the rolled-back inserts are garbage.
		q.ID = 0
		a.ID = 0
		a.QuestionID = 0
		return err
	}

	q.FirstAnswerID = a.ID
	return nil
}

// FindByID finds a question by ID
func (r *GormQuestionRepository) FindByID(id int64) (*models.Question, error) {
	var q models.Question
	if err := r.db.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// ListByEntry lists an entry's questions, newest first
func (r *GormQuestionRepository) ListByEntry(entryID int64) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.Where("entry_id = ?", entryID).
		Order("created_at DESC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// Update persists all fields of the question
func (r *GormQuestionRepository) Update(q *models.Question) error {
	return r.db.Save(q).Error
}

// DeleteCascade removes the question with all of its answers and likes.
func (r *GormQuestionRepository) DeleteCascade(id int64) ([]int64, error) {
	var answerIDs []int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Answer{}).
			Where("question_id = ?", id).
			Pluck("id", &answerIDs).Error; err != nil {
			return err
		}

		if len(answerIDs) > 0 {
			if err := tx.Where("answer_id IN ?", answerIDs).Delete(&models.AnswerLike{}).Error; err != nil {
				return err
			}
			if err := tx.Where("question_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Question{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return answerIDs, nil
}
