package ai

import (
	"context"
	"errors"

	"studyassist/internal/quiz"
)

var (
	// ErrRateLimited marks a backend response that asked us to slow down.
	// The generation client reacts by switching to the fallback backend;
	// it is never surfaced to callers directly.
	ErrRateLimited = errors.New("backend rate limited")

	// ErrGenerationFailed means the retry and fallback budget is exhausted.
	// Callers substitute a rule-based result instead of surfacing it.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrParse means the sanitized backend output still did not contain
	// valid structured data. Callers treat it as zero items produced.
	ErrParse = errors.New("backend output parse failed")
)

// SummaryResult is what Summarize produces.
type SummaryResult struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	WordCount int    `json:"word_count"`
}

// GradeResult is the verdict on a freeform answer.
type GradeResult struct {
	Correct bool   `json:"correct"`
	Reason  string `json:"reason"`
}

// Flashcard is one question/answer study card.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Provider is the pluggable text-generation backend. Implementations are
// selected at startup and injected into the services; there is no
// process-wide provider singleton.
type Provider interface {
	// Name identifies the backend in results and logs, e.g. "groq" or "stub".
	Name() string

	Summarize(ctx context.Context, text string) (SummaryResult, error)

	// GenerateQuiz produces raw quiz items grounded in contextText. The
	// result is unvalidated; callers run it through quiz.Normalize and
	// quiz.Enforce before using it.
	GenerateQuiz(ctx context.Context, contextText string, counts quiz.Counts) ([]quiz.RawItem, error)

	GradeFreeform(ctx context.Context, question, groundTruth, userAnswer string) (GradeResult, error)

	MakeFlashcards(ctx context.Context, contextText string, n int) ([]Flashcard, error)

	// AnswerQuestion answers a study question using only contextText.
	AnswerQuestion(ctx context.Context, question, contextText string) (string, error)
}
