package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordEmbedder maps texts onto axis vectors by keyword presence so
// similarity is fully predictable.
type keywordEmbedder struct {
	keywords []string
	fail     bool
}

func (e *keywordEmbedder) Dimension() int { return len(e.keywords) }

func (e *keywordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e.fail {
		return nil, ErrEmbeddingUnavailable
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(e.keywords))
		for j, kw := range e.keywords {
			if strings.Contains(strings.ToLower(text), kw) {
				vec[j] = 1
			}
		}
		out[i] = vec
	}
	return out, nil
}

func newTestStore(t *testing.T) (*Store, *keywordEmbedder) {
	t.Helper()
	emb := &keywordEmbedder{keywords: []string{"cats", "dogs", "birds"}}
	return NewStore(t.TempDir(), emb, 80, 0), emb
}

const petText = "Cats sleep most of the day in warm corners. " +
	"Dogs need long walks every single morning. " +
	"Birds sing loudly when the sun rises early."

func TestStoreBuildAndHas(t *testing.T) {
	store, _ := newTestStore(t)
	require.False(t, store.Has(1))

	meta, err := store.Build(context.Background(), 1, petText)
	require.NoError(t, err)
	assert.Equal(t, uint(1), meta.DocumentID)
	assert.Greater(t, meta.Chunks, 0)
	assert.True(t, store.Has(1))
}

func TestStoreBuildEmbedderDown(t *testing.T) {
	store, emb := newTestStore(t)
	emb.fail = true

	_, err := store.Build(context.Background(), 1, petText)
	require.ErrorIs(t, err, ErrEmbeddingUnavailable)
	assert.False(t, store.Has(1))
}

func TestStoreEnsureIsIdempotent(t *testing.T) {
	store, emb := newTestStore(t)
	require.NoError(t, store.Ensure(context.Background(), 1, petText))

	// A second Ensure must not touch the embedder again.
	emb.fail = true
	require.NoError(t, store.Ensure(context.Background(), 1, petText))
}

func TestRetrieveRanksByQuerySimilarity(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Build(context.Background(), 1, petText)
	require.NoError(t, err)

	hits, err := store.Retrieve(context.Background(), 1, "dogs", 2)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Contains(t, strings.ToLower(hits[0].Text), "dogs")
	if len(hits) > 1 {
		assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
	}
}

func TestRetrieveTiesBreakByOrdinal(t *testing.T) {
	emb := &keywordEmbedder{keywords: []string{"cats", "dogs", "birds"}}
	// A tiny chunk budget puts every sentence in its own chunk, and every
	// sentence scores identically for the query.
	store := NewStore(t.TempDir(), emb, 25, 0)
	text := "Cats nap here quietly. Cats nap there loudly. Cats nap everywhere."
	_, err := store.Build(context.Background(), 1, text)
	require.NoError(t, err)

	hits, err := store.Retrieve(context.Background(), 1, "cats", 3)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	// Equal scores keep document order, so the first chunk wins.
	assert.True(t, strings.HasPrefix(hits[0].Text, "Cats nap here"))
}

func TestRetrieveMissingIndexIsEmptyNotError(t *testing.T) {
	store, _ := newTestStore(t)
	hits, err := store.Retrieve(context.Background(), 42, "cats", 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestBuildContextJoinsAndTruncates(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Build(context.Background(), 1, petText)
	require.NoError(t, err)

	out, err := store.BuildContext(context.Background(), 1, "cats", 5, 20)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), 20)
	assert.NotEmpty(t, out)
}

func TestBuildContextUnindexedDocument(t *testing.T) {
	store, _ := newTestStore(t)
	out, err := store.BuildContext(context.Background(), 9, "cats", 5, 3000)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}
