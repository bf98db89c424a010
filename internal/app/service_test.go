package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyassist/internal/ai"
	"studyassist/internal/platform/logger"
	"studyassist/internal/rag"
	"studyassist/internal/repository"
)

func TestDocumentIngestPlainText(t *testing.T) {
	db := newTestDB(t)
	svc := NewDocumentService(repository.NewDocumentRepository(db), nil, nil, logger.NewNop())

	content := "Plain text upload. With two sentences."
	doc, err := svc.Ingest(context.Background(), "notes.txt", strings.NewReader(content), int64(len(content)))
	require.NoError(t, err)
	assert.NotZero(t, doc.ID)
	assert.Equal(t, "notes.txt", doc.Filename)
	assert.Equal(t, content, doc.Content)

	listed, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestDocumentIngestRejectsEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewDocumentService(repository.NewDocumentRepository(db), nil, nil, logger.NewNop())

	_, err := svc.Ingest(context.Background(), "empty.txt", strings.NewReader("   "), 3)
	assert.ErrorIs(t, err, ErrDocumentEmpty)

	_, err = svc.Ingest(context.Background(), "  ", strings.NewReader("content"), 7)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDocumentDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewDocumentService(repository.NewDocumentRepository(db), nil, nil, logger.NewNop())

	doc, err := svc.Ingest(context.Background(), "a.txt", strings.NewReader("Some content here."), 18)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(doc.ID))
	_, err = svc.Get(doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.ErrorIs(t, svc.Delete(doc.ID), ErrDocumentNotFound)
}

func TestSummarizePersistsResult(t *testing.T) {
	db := newTestDB(t)
	doc := seedDocument(t, db)

	svc := NewSummaryService(
		repository.NewDocumentRepository(db),
		repository.NewSummaryRepository(db),
		nil,
		ai.NewLocalStub(),
		ai.NewLocalStub(),
		logger.NewNop(),
	)

	summary, err := svc.Summarize(context.Background(), SummarizeInput{DocumentID: doc.ID})
	require.NoError(t, err)
	assert.NotZero(t, summary.ID)
	assert.NotEmpty(t, summary.Text)
	assert.Greater(t, summary.WordCount, 0)

	listed, err := svc.ListByDocument(doc.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestSummarizeMissingDocument(t *testing.T) {
	db := newTestDB(t)
	svc := NewSummaryService(
		repository.NewDocumentRepository(db),
		repository.NewSummaryRepository(db),
		nil,
		ai.NewLocalStub(),
		ai.NewLocalStub(),
		logger.NewNop(),
	)
	_, err := svc.Summarize(context.Background(), SummarizeInput{DocumentID: 404})
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

type failingEmbedder struct{}

func (failingEmbedder) Dimension() int { return 2 }

func (failingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("embedding backend down")
}

func TestSummarizeUsesRetrievedChunks(t *testing.T) {
	db := newTestDB(t)
	doc := seedDocument(t, db)

	// Small chunk budget so each sentence becomes its own chunk. The fixed
	// embedder scores every chunk the same, so ranking falls back to
	// ordinal order.
	store := rag.NewStore(t.TempDir(), fixedEmbedder{}, 60, 0)
	provider := &scriptedProvider{}
	svc := NewSummaryService(
		repository.NewDocumentRepository(db),
		repository.NewSummaryRepository(db),
		store,
		provider,
		ai.NewLocalStub(),
		logger.NewNop(),
	)

	summary, err := svc.Summarize(context.Background(), SummarizeInput{
		DocumentID: doc.ID,
		TopK:       2,
		MaxChunks:  2,
	})
	require.NoError(t, err)
	assert.NotZero(t, summary.ID)

	want := "Glaciers carve valleys over thousands of years.\n\n" +
		"Rivers transport sediment toward the ocean."
	assert.Equal(t, want, provider.summarized)
	assert.NotEqual(t, doc.Content, provider.summarized)
}

func TestSummarizeFallsBackToWholeTextWhenEmbedderDown(t *testing.T) {
	db := newTestDB(t)
	doc := seedDocument(t, db)

	store := rag.NewStore(t.TempDir(), failingEmbedder{}, 800, 0)
	provider := &scriptedProvider{}
	svc := NewSummaryService(
		repository.NewDocumentRepository(db),
		repository.NewSummaryRepository(db),
		store,
		provider,
		ai.NewLocalStub(),
		logger.NewNop(),
	)

	_, err := svc.Summarize(context.Background(), SummarizeInput{DocumentID: doc.ID})
	require.NoError(t, err)
	assert.Equal(t, doc.Content, provider.summarized)
}

func TestFlashcardGenerateTopsUpShortfall(t *testing.T) {
	db := newTestDB(t)
	doc := seedDocument(t, db)

	contextSrc := NewContextBuilder(nil, 5, 3000, 300, 40, logger.NewNop())
	contextSrc.Seed = 1
	provider := &scriptedProvider{cards: []ai.Flashcard{
		{Front: "Only card front", Back: "Only card back"},
	}}
	svc := NewFlashcardService(
		repository.NewDocumentRepository(db),
		repository.NewFlashcardRepository(db),
		contextSrc,
		provider,
		ai.NewLocalStub(),
		logger.NewNop(),
	)

	cards, err := svc.Generate(context.Background(), doc.ID, 3)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, "Only card front", cards[0].Front)
	// The shortfall comes from the deterministic fallback.
	assert.Contains(t, cards[1].Front, "Explain briefly")
	assert.Contains(t, cards[2].Front, "Explain briefly")
}

func TestFlashcardGenerateAndToggle(t *testing.T) {
	db := newTestDB(t)
	doc := seedDocument(t, db)

	contextSrc := NewContextBuilder(nil, 5, 3000, 300, 40, logger.NewNop())
	contextSrc.Seed = 1
	svc := NewFlashcardService(
		repository.NewDocumentRepository(db),
		repository.NewFlashcardRepository(db),
		contextSrc,
		ai.NewLocalStub(),
		ai.NewLocalStub(),
		logger.NewNop(),
	)

	cards, err := svc.Generate(context.Background(), doc.ID, 2)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.False(t, cards[0].Known)

	toggled, err := svc.ToggleKnown(cards[0].ID)
	require.NoError(t, err)
	assert.True(t, toggled.Known)

	toggled, err = svc.ToggleKnown(cards[0].ID)
	require.NoError(t, err)
	assert.False(t, toggled.Known)

	_, err = svc.ToggleKnown(9999)
	assert.ErrorIs(t, err, ErrFlashcardNotFound)
}

func TestCoachAnswersFromDocument(t *testing.T) {
	db := newTestDB(t)
	doc := seedDocument(t, db)

	contextSrc := NewContextBuilder(nil, 5, 3000, 300, 40, logger.NewNop())
	contextSrc.Seed = 1
	svc := NewCoachService(
		repository.NewDocumentRepository(db),
		contextSrc,
		ai.NewLocalStub(),
		ai.NewLocalStub(),
		logger.NewNop(),
	)

	answer, err := svc.Answer(context.Background(), doc.ID, "What do rivers transport?")
	require.NoError(t, err)
	assert.Contains(t, answer, "sediment")

	_, err = svc.Answer(context.Background(), doc.ID, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
