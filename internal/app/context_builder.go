package app

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"studyassist/internal/platform/logger"
	"studyassist/internal/rag"
)

// studyQuery is the retrieval query used when no user question exists, as in
// quiz and flashcard generation. It steers retrieval toward definition-heavy
// chunks.
const studyQuery = "key concepts, definitions, important facts and relationships"

// ContextBuilder produces grounding context for generation with a fallback
// ladder: indexed retrieval first, then a random word-budgeted window over
// the full text, then a raw prefix. It never fails; the ladder bottoms out
// on plain text slicing.
type ContextBuilder struct {
	store        *rag.Store
	topK         int
	maxChars     int
	windowWords  int
	overlapWords int
	log          *logger.Logger

	// Seed fixes the random window for tests. Zero means time-seeded.
	Seed int64
}

func NewContextBuilder(store *rag.Store, topK, maxChars, windowWords, overlapWords int, log *logger.Logger) *ContextBuilder {
	if topK <= 0 {
		topK = 5
	}
	if maxChars <= 0 {
		maxChars = 3000
	}
	if windowWords <= 0 {
		windowWords = 300
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ContextBuilder{
		store:        store,
		topK:         topK,
		maxChars:     maxChars,
		windowWords:  windowWords,
		overlapWords: overlapWords,
		log:          log,
	}
}

// Build returns grounding context for the document. The query may be empty,
// in which case the generic study query drives retrieval.
func (b *ContextBuilder) Build(ctx context.Context, documentID uint, fullText, query string) string {
	if query == "" {
		query = studyQuery
	}

	if b.store != nil {
		out, err := b.store.BuildContext(ctx, documentID, query, b.topK, b.maxChars)
		if err != nil {
			if !errors.Is(err, rag.ErrEmbeddingUnavailable) {
				b.log.Warn("context retrieval failed", "document_id", documentID, "error", err)
			}
		} else if out != "" {
			return out
		}
	}

	if window := rag.RandomWindow(fullText, b.windowWords, b.overlapWords, b.rng()); window != "" {
		return b.clamp(window)
	}
	return b.clamp(fullText)
}

func (b *ContextBuilder) clamp(s string) string {
	if len(s) > b.maxChars {
		return s[:b.maxChars]
	}
	return s
}

func (b *ContextBuilder) rng() *rand.Rand {
	seed := b.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
