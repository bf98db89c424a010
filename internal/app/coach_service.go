package app

import (
	"context"
	"strings"

	"studyassist/internal/ai"
	"studyassist/internal/platform/logger"
	"studyassist/internal/repository"
)

type CoachService struct {
	docRepo    *repository.DocumentRepository
	contextSrc *ContextBuilder
	provider   ai.Provider
	fallback   ai.Provider
	log        *logger.Logger
}

func NewCoachService(
	docRepo *repository.DocumentRepository,
	contextSrc *ContextBuilder,
	provider ai.Provider,
	fallback ai.Provider,
	log *logger.Logger,
) *CoachService {
	if fallback == nil {
		fallback = ai.NewLocalStub()
	}
	if provider == nil {
		provider = fallback
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &CoachService{
		docRepo:    docRepo,
		contextSrc: contextSrc,
		provider:   provider,
		fallback:   fallback,
		log:        log,
	}
}

// Answer responds to a question about the document using retrieved context,
// with the question itself driving retrieval.
func (s *CoachService) Answer(ctx context.Context, documentID uint, question string) (string, error) {
	question = strings.TrimSpace(question)
	if documentID == 0 || question == "" {
		return "", ErrInvalidInput
	}
	doc, err := s.docRepo.GetByID(documentID)
	if err != nil {
		return "", err
	}
	if doc == nil {
		return "", ErrDocumentNotFound
	}

	contextText := s.contextSrc.Build(ctx, doc.ID, doc.Content, question)

	answer, err := s.provider.AnswerQuestion(ctx, question, contextText)
	if err != nil {
		s.log.Warn("coach backend failed, using fallback", "document_id", doc.ID, "error", err)
		if answer, err = s.fallback.AnswerQuestion(ctx, question, contextText); err != nil {
			return "", err
		}
	}
	return answer, nil
}
