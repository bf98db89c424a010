package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"studyassist/internal/ai"
	"studyassist/internal/model"
	"studyassist/internal/platform/logger"
	sqliteClient "studyassist/internal/platform/sqlite"
	"studyassist/internal/quiz"
	"studyassist/internal/repository"
)

// scriptedProvider returns canned values so service behavior is testable
// without a network.
type scriptedProvider struct {
	quizItems []quiz.RawItem
	quizErr   error
	grade     ai.GradeResult
	gradeErr  error
	cards     []ai.Flashcard

	summarized string
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Summarize(ctx context.Context, text string) (ai.SummaryResult, error) {
	p.summarized = text
	return ai.SummaryResult{Title: "T", Summary: "S", WordCount: 1}, nil
}

func (p *scriptedProvider) GenerateQuiz(ctx context.Context, contextText string, counts quiz.Counts) ([]quiz.RawItem, error) {
	return p.quizItems, p.quizErr
}

func (p *scriptedProvider) GradeFreeform(ctx context.Context, question, groundTruth, userAnswer string) (ai.GradeResult, error) {
	return p.grade, p.gradeErr
}

func (p *scriptedProvider) MakeFlashcards(ctx context.Context, contextText string, n int) ([]ai.Flashcard, error) {
	return p.cards, nil
}

func (p *scriptedProvider) AnswerQuestion(ctx context.Context, question, contextText string) (string, error) {
	return "", nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := sqliteClient.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Document{},
		&model.Summary{},
		&model.Quiz{},
		&model.Question{},
		&model.Flashcard{},
	))
	return db
}

func seedDocument(t *testing.T, db *gorm.DB) *model.Document {
	t.Helper()
	doc := &model.Document{
		Filename: "notes.txt",
		Content: "Glaciers carve valleys over thousands of years. " +
			"Rivers transport sediment toward the ocean. " +
			"Mountains rise where tectonic plates collide.",
	}
	require.NoError(t, repository.NewDocumentRepository(db).Create(doc))
	return doc
}

func newQuizService(t *testing.T, db *gorm.DB, provider ai.Provider) *QuizService {
	t.Helper()
	contextSrc := NewContextBuilder(nil, 5, 3000, 300, 40, logger.NewNop())
	contextSrc.Seed = 1
	return NewQuizService(
		repository.NewDocumentRepository(db),
		repository.NewQuizRepository(db),
		contextSrc,
		provider,
		ai.NewLocalStub(),
		nil,
		logger.NewNop(),
	)
}

func TestQuizGeneratePersistsEnforcedCounts(t *testing.T) {
	db := newTestDB(t)
	doc := seedDocument(t, db)

	provider := &scriptedProvider{quizItems: []quiz.RawItem{
		{Kind: "mcq", Prompt: "Real question?", Options: "One|Two|Three|Four", Correct: "Two"},
	}}
	svc := newQuizService(t, db, provider)

	q, err := svc.Generate(context.Background(), GenerateQuizInput{
		DocumentID: doc.ID,
		Counts:     quiz.Counts{MCQ: 1, TF: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "scripted", q.Backend)
	assert.Equal(t, 3, q.TotalQuestions)
	require.Len(t, q.Questions, 3)

	assert.Equal(t, quiz.KindMCQ, q.Questions[0].Kind)
	assert.Equal(t, "Real question?", q.Questions[0].Prompt)
	assert.Equal(t, "B", q.Questions[0].CorrectAnswer)
	assert.Equal(t, quiz.KindTF, q.Questions[1].Kind)
	assert.Equal(t, quiz.KindTF, q.Questions[2].Kind)

	// The quiz and questions are persisted, not just returned.
	reloaded, err := svc.Get(q.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Questions, 3)
}

func TestQuizGenerateFallsBackToStub(t *testing.T) {
	db := newTestDB(t)
	doc := seedDocument(t, db)

	provider := &scriptedProvider{quizErr: errors.New("backend down")}
	svc := newQuizService(t, db, provider)

	q, err := svc.Generate(context.Background(), GenerateQuizInput{
		DocumentID: doc.ID,
		Counts:     quiz.Counts{MCQ: 2, Short: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "stub", q.Backend)
	assert.Len(t, q.Questions, 3)
}

func TestQuizGenerateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(t, db, &scriptedProvider{})

	_, err := svc.Generate(context.Background(), GenerateQuizInput{DocumentID: 0, Counts: quiz.Counts{TF: 1}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Generate(context.Background(), GenerateQuizInput{DocumentID: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Generate(context.Background(), GenerateQuizInput{DocumentID: 999, Counts: quiz.Counts{TF: 1}})
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestGradeQuizMixedKinds(t *testing.T) {
	db := newTestDB(t)
	doc := seedDocument(t, db)

	provider := &scriptedProvider{
		quizItems: []quiz.RawItem{
			{Kind: "mcq", Prompt: "Pick A.", Options: "One|Two|Three|Four", Correct: "A"},
			{Kind: "short", Prompt: "Explain rivers.", Correct: "they transport sediment"},
		},
		grade: ai.GradeResult{Correct: true, Reason: "equivalent"},
	}
	svc := newQuizService(t, db, provider)

	q, err := svc.Generate(context.Background(), GenerateQuizInput{
		DocumentID: doc.ID,
		Counts:     quiz.Counts{MCQ: 1, Short: 1},
	})
	require.NoError(t, err)
	require.Len(t, q.Questions, 2)

	report, err := svc.GradeQuiz(context.Background(), q.ID, map[uint]string{
		q.Questions[0].ID: "a",
		q.Questions[1].ID: "rivers move sediment downstream",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Correct)
	assert.InDelta(t, 100.0, report.Percent, 0.01)

	// The letter compare is case-insensitive; the freeform verdict carries
	// the grader's reason.
	assert.True(t, report.Results[0].Correct)
	assert.Equal(t, "equivalent", report.Results[1].Reason)
}

func TestGradeQuizUnansweredCountsWrong(t *testing.T) {
	db := newTestDB(t)
	doc := seedDocument(t, db)

	provider := &scriptedProvider{quizItems: []quiz.RawItem{
		{Kind: "tf", Prompt: "True?", Correct: "true"},
	}}
	svc := newQuizService(t, db, provider)

	q, err := svc.Generate(context.Background(), GenerateQuizInput{
		DocumentID: doc.ID,
		Counts:     quiz.Counts{TF: 1},
	})
	require.NoError(t, err)

	report, err := svc.GradeQuiz(context.Background(), q.ID, map[uint]string{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Correct)
	assert.False(t, report.Results[0].Correct)
}

func TestGradeFreeformFallsBackToStub(t *testing.T) {
	db := newTestDB(t)
	provider := &scriptedProvider{gradeErr: errors.New("backend down")}
	svc := newQuizService(t, db, provider)

	verdict := svc.GradeFreeform(context.Background(), "Q?", "sediment", "rivers move sediment")
	assert.True(t, verdict.Correct)
}
