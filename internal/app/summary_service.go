package app

import (
	"context"
	"errors"
	"strings"

	"studyassist/internal/ai"
	"studyassist/internal/model"
	"studyassist/internal/platform/logger"
	"studyassist/internal/rag"
	"studyassist/internal/repository"
)

// summaryQuery steers retrieval toward the chunks worth summarizing when the
// caller gives no query of their own.
const summaryQuery = "main ideas, definitions, relations and examples from the document"

const (
	defaultSummaryChunks = 8
	defaultSummaryTopK   = 10
)

type SummaryService struct {
	docRepo     *repository.DocumentRepository
	summaryRepo *repository.SummaryRepository
	store       *rag.Store
	provider    ai.Provider
	fallback    ai.Provider
	log         *logger.Logger
}

// SummarizeInput selects the document and tunes retrieval. Zero values take
// the defaults; an empty Query falls back to the generic summary query.
type SummarizeInput struct {
	DocumentID uint
	Query      string
	MaxChunks  int
	TopK       int
}

func NewSummaryService(
	docRepo *repository.DocumentRepository,
	summaryRepo *repository.SummaryRepository,
	store *rag.Store,
	provider ai.Provider,
	fallback ai.Provider,
	log *logger.Logger,
) *SummaryService {
	if fallback == nil {
		fallback = ai.NewLocalStub()
	}
	if provider == nil {
		provider = fallback
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &SummaryService{
		docRepo:     docRepo,
		summaryRepo: summaryRepo,
		store:       store,
		provider:    provider,
		fallback:    fallback,
		log:         log,
	}
}

// Summarize generates and persists a summary of the document. Retrieval
// runs first: the index is ensured, the top hits are joined and summarized.
// When no index can be built or retrieval comes back empty the whole text
// is summarized instead. When the primary backend fails the deterministic
// fallback takes over, so the operation itself cannot fail on generation.
func (s *SummaryService) Summarize(ctx context.Context, input SummarizeInput) (*model.Summary, error) {
	if input.DocumentID == 0 {
		return nil, ErrInvalidInput
	}
	doc, err := s.docRepo.GetByID(input.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}

	text := s.retrievedContext(ctx, doc, input)
	if text == "" {
		text = doc.Content
	}

	result, err := s.provider.Summarize(ctx, text)
	if err != nil {
		s.log.Warn("summary backend failed, using fallback", "document_id", doc.ID, "error", err)
		result, err = s.fallback.Summarize(ctx, text)
		if err != nil {
			return nil, err
		}
	}

	summary := &model.Summary{
		DocumentID: doc.ID,
		Title:      result.Title,
		Text:       result.Summary,
		WordCount:  result.WordCount,
	}
	if err := s.summaryRepo.Create(summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// retrievedContext ensures the index and joins the best chunks for the
// query. Any failure along the way yields "" so the caller can summarize
// the whole text instead.
func (s *SummaryService) retrievedContext(ctx context.Context, doc *model.Document, input SummarizeInput) string {
	if s.store == nil {
		return ""
	}
	if err := s.store.Ensure(ctx, doc.ID, doc.Content); err != nil {
		if !errors.Is(err, rag.ErrEmbeddingUnavailable) {
			s.log.Warn("index build failed", "document_id", doc.ID, "error", err)
		}
		return ""
	}

	query := strings.TrimSpace(input.Query)
	if query == "" {
		query = summaryQuery
	}
	topK := input.TopK
	if topK <= 0 {
		topK = defaultSummaryTopK
	}
	hits, err := s.store.Retrieve(ctx, doc.ID, query, topK)
	if err != nil {
		if !errors.Is(err, rag.ErrEmbeddingUnavailable) {
			s.log.Warn("summary retrieval failed", "document_id", doc.ID, "error", err)
		}
		return ""
	}
	if len(hits) == 0 {
		return ""
	}

	maxChunks := input.MaxChunks
	if maxChunks <= 0 {
		maxChunks = defaultSummaryChunks
	}
	if len(hits) > maxChunks {
		hits = hits[:maxChunks]
	}
	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Text
	}
	return strings.Join(texts, "\n\n")
}

func (s *SummaryService) ListByDocument(documentID uint) ([]model.Summary, error) {
	if documentID == 0 {
		return nil, ErrInvalidInput
	}
	return s.summaryRepo.ListByDocumentID(documentID)
}
