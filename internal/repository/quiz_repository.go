package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"studyassist/internal/model"
)

type QuizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// CreateWithQuestions persists the quiz and its questions in one transaction.
func (r *QuizRepository) CreateWithQuestions(quiz *model.Quiz, questions []model.Question) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quiz).Error; err != nil {
			return fmt.Errorf("create quiz failed: %w", err)
		}
		for i := range questions {
			questions[i].QuizID = quiz.ID
		}
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return fmt.Errorf("create questions failed: %w", err)
			}
		}
		quiz.Questions = questions
		return nil
	})
}

// GetByID returns the quiz with its questions, or nil when not found.
func (r *QuizRepository) GetByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.db.Preload("Questions").First(&quiz, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quiz failed: %w", err)
	}
	return &quiz, nil
}

func (r *QuizRepository) ListByDocumentID(documentID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	if err := r.db.Where("document_id = ?", documentID).Order("created_at DESC").Find(&quizzes).Error; err != nil {
		return nil, fmt.Errorf("list quizzes failed: %w", err)
	}
	return quizzes, nil
}
