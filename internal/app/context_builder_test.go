package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyassist/internal/platform/logger"
	"studyassist/internal/rag"
)

type fixedEmbedder struct{}

func (fixedEmbedder) Dimension() int { return 2 }

func (fixedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func TestContextBuilderPrefersIndexedRetrieval(t *testing.T) {
	store := rag.NewStore(t.TempDir(), fixedEmbedder{}, 800, 0)
	text := "Rivers transport sediment toward the ocean. Glaciers carve valleys slowly."
	_, err := store.Build(context.Background(), 1, text)
	require.NoError(t, err)

	b := NewContextBuilder(store, 5, 3000, 300, 40, logger.NewNop())
	b.Seed = 1
	out := b.Build(context.Background(), 1, text, "rivers")
	assert.Contains(t, out, "Rivers")
}

func TestContextBuilderFallsBackToWindowWithoutStore(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		sb.WriteString("Every sentence here carries a handful of ordinary words. ")
	}
	text := sb.String()

	b := NewContextBuilder(nil, 5, 3000, 50, 10, logger.NewNop())
	b.Seed = 1
	out := b.Build(context.Background(), 1, text, "")
	assert.NotEmpty(t, out)
	assert.GreaterOrEqual(t, len(strings.Fields(out)), 50)

	// Same seed, same window.
	again := b.Build(context.Background(), 1, text, "")
	assert.Equal(t, out, again)
}

func TestContextBuilderFallsBackToPrefixForWordlessText(t *testing.T) {
	text := strings.Repeat("x", 5000)
	b := NewContextBuilder(nil, 5, 3000, 300, 40, logger.NewNop())
	b.Seed = 1
	out := b.Build(context.Background(), 1, text, "")
	assert.NotEmpty(t, out)
	assert.LessOrEqual(t, len(out), 3000)
}

func TestContextBuilderUnindexedDocumentUsesWindow(t *testing.T) {
	store := rag.NewStore(t.TempDir(), fixedEmbedder{}, 800, 0)
	b := NewContextBuilder(store, 5, 3000, 300, 40, logger.NewNop())
	b.Seed = 1
	out := b.Build(context.Background(), 77, "One short sentence only.", "")
	assert.Equal(t, "One short sentence only.", out)
}
