package app

import (
	"context"

	"studyassist/internal/ai"
	"studyassist/internal/model"
	"studyassist/internal/platform/logger"
	"studyassist/internal/repository"
)

const defaultFlashcardCount = 10

type FlashcardService struct {
	docRepo    *repository.DocumentRepository
	cardRepo   *repository.FlashcardRepository
	contextSrc *ContextBuilder
	provider   ai.Provider
	fallback   ai.Provider
	log        *logger.Logger
}

func NewFlashcardService(
	docRepo *repository.DocumentRepository,
	cardRepo *repository.FlashcardRepository,
	contextSrc *ContextBuilder,
	provider ai.Provider,
	fallback ai.Provider,
	log *logger.Logger,
) *FlashcardService {
	if fallback == nil {
		fallback = ai.NewLocalStub()
	}
	if provider == nil {
		provider = fallback
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &FlashcardService{
		docRepo:    docRepo,
		cardRepo:   cardRepo,
		contextSrc: contextSrc,
		provider:   provider,
		fallback:   fallback,
		log:        log,
	}
}

// Generate creates up to n study cards grounded in retrieved context and
// persists them for the document.
func (s *FlashcardService) Generate(ctx context.Context, documentID uint, n int) ([]model.Flashcard, error) {
	if documentID == 0 {
		return nil, ErrInvalidInput
	}
	if n <= 0 {
		n = defaultFlashcardCount
	}
	doc, err := s.docRepo.GetByID(documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}

	contextText := s.contextSrc.Build(ctx, doc.ID, doc.Content, "")

	cards, err := s.provider.MakeFlashcards(ctx, contextText, n)
	if err != nil {
		s.log.Warn("flashcard backend failed, using fallback", "document_id", doc.ID, "error", err)
		if cards, err = s.fallback.MakeFlashcards(ctx, contextText, n); err != nil {
			return nil, err
		}
	}
	if len(cards) > n {
		cards = cards[:n]
	}
	// The backend may under-deliver; top up the shortfall deterministically.
	if len(cards) < n {
		extra, err := s.fallback.MakeFlashcards(ctx, contextText, n-len(cards))
		if err == nil {
			cards = append(cards, extra...)
		}
	}

	records := make([]model.Flashcard, 0, len(cards))
	for _, card := range cards {
		if card.Front == "" || card.Back == "" {
			continue
		}
		records = append(records, model.Flashcard{
			DocumentID: doc.ID,
			Front:      card.Front,
			Back:       card.Back,
		})
	}
	if err := s.cardRepo.CreateBatch(records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *FlashcardService) ListByDocument(documentID uint) ([]model.Flashcard, error) {
	if documentID == 0 {
		return nil, ErrInvalidInput
	}
	return s.cardRepo.ListByDocumentID(documentID)
}

// ToggleKnown flips the learned flag on one card.
func (s *FlashcardService) ToggleKnown(id uint) (*model.Flashcard, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	card, err := s.cardRepo.ToggleKnown(id)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrFlashcardNotFound
	}
	return card, nil
}
