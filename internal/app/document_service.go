package app

import (
	"context"
	"errors"
	"io"
	"strings"

	"studyassist/internal/model"
	"studyassist/internal/pkg/textextract"
	"studyassist/internal/platform/logger"
	"studyassist/internal/rag"
	"studyassist/internal/repository"
)

// IndexQueue enqueues an index-build job for a document.
type IndexQueue interface {
	Publish(ctx context.Context, documentID uint) error
}

type DocumentService struct {
	docRepo   *repository.DocumentRepository
	store     *rag.Store
	publisher IndexQueue
	log       *logger.Logger
}

// NewDocumentService wires the upload path. Both store and publisher may be
// nil; indexing then degrades to synchronous or skipped, and retrieval
// callers fall back to windowed context.
func NewDocumentService(
	docRepo *repository.DocumentRepository,
	store *rag.Store,
	publisher IndexQueue,
	log *logger.Logger,
) *DocumentService {
	if log == nil {
		log = logger.NewNop()
	}
	return &DocumentService{
		docRepo:   docRepo,
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

// Ingest extracts text from the upload, persists the document and schedules
// index construction. Indexing failures never fail the upload.
func (s *DocumentService) Ingest(ctx context.Context, filename string, r io.Reader, sizeBytes int64) (*model.Document, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, ErrInvalidInput
	}

	content, err := textextract.FromUpload(filename, r)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrDocumentEmpty
	}

	doc := &model.Document{
		Filename: filename,
		SizeKB:   int(sizeBytes / 1024),
		Content:  content,
	}
	if err := s.docRepo.Create(doc); err != nil {
		return nil, err
	}

	s.scheduleIndex(ctx, doc)
	return doc, nil
}

// scheduleIndex prefers the async queue and falls back to building inline.
func (s *DocumentService) scheduleIndex(ctx context.Context, doc *model.Document) {
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, doc.ID); err == nil {
			return
		} else {
			s.log.Warn("index job enqueue failed, building inline", "document_id", doc.ID, "error", err)
		}
	}
	if s.store == nil {
		return
	}
	if err := s.store.Ensure(ctx, doc.ID, doc.Content); err != nil {
		if errors.Is(err, rag.ErrEmbeddingUnavailable) {
			s.log.Warn("embedding unavailable, document stays unindexed", "document_id", doc.ID)
			return
		}
		s.log.Error("index build failed", "document_id", doc.ID, "error", err)
	}
}

func (s *DocumentService) Get(id uint) (*model.Document, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	doc, err := s.docRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

func (s *DocumentService) List() ([]model.Document, error) {
	return s.docRepo.List()
}

func (s *DocumentService) Delete(id uint) error {
	if id == 0 {
		return ErrInvalidInput
	}
	doc, err := s.docRepo.GetByID(id)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	return s.docRepo.Delete(id)
}
