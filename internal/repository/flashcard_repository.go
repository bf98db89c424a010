package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"studyassist/internal/model"
)

type FlashcardRepository struct {
	db *gorm.DB
}

func NewFlashcardRepository(db *gorm.DB) *FlashcardRepository {
	return &FlashcardRepository{db: db}
}

func (r *FlashcardRepository) CreateBatch(cards []model.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	if err := r.db.Create(&cards).Error; err != nil {
		return fmt.Errorf("create flashcards batch failed: %w", err)
	}
	return nil
}

func (r *FlashcardRepository) ListByDocumentID(documentID uint) ([]model.Flashcard, error) {
	var cards []model.Flashcard
	if err := r.db.Where("document_id = ?", documentID).Order("id ASC").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("list flashcards failed: %w", err)
	}
	return cards, nil
}

func (r *FlashcardRepository) DeleteByDocumentID(documentID uint) error {
	if err := r.db.Where("document_id = ?", documentID).Delete(&model.Flashcard{}).Error; err != nil {
		return fmt.Errorf("delete flashcards by document failed: %w", err)
	}
	return nil
}

// ToggleKnown flips the known flag and returns the updated card.
func (r *FlashcardRepository) ToggleKnown(id uint) (*model.Flashcard, error) {
	var card model.Flashcard
	if err := r.db.First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get flashcard failed: %w", err)
	}
	card.Known = !card.Known
	if err := r.db.Model(&card).Update("known", card.Known).Error; err != nil {
		return nil, fmt.Errorf("update flashcard failed: %w", err)
	}
	return &card, nil
}
