package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Hit is one retrieved chunk with its cosine similarity to the query.
type Hit struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Retrieve returns the topK chunks most similar to the query, highest score
// first. Ties are broken by chunk ordinal so results are deterministic for
// a fixed index and query. A missing index yields an empty result, not an
// error.
func (s *Store) Retrieve(ctx context.Context, documentID uint, query string, topK int) ([]Hit, error) {
	if !s.Has(documentID) {
		return nil, nil
	}
	if topK < 1 {
		topK = 1
	}

	chunks, embeddings, err := s.load(documentID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	qv, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if len(qv) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", ErrEmbeddingUnavailable)
	}

	type scored struct {
		ordinal int
		score   float64
	}
	ranked := make([]scored, len(chunks))
	for i := range chunks {
		ranked[i] = scored{ordinal: i, score: cosineSimilarity(qv[0], embeddings[i])}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].score != ranked[b].score {
			return ranked[a].score > ranked[b].score
		}
		return ranked[a].ordinal < ranked[b].ordinal
	})

	if topK > len(ranked) {
		topK = len(ranked)
	}
	hits := make([]Hit, topK)
	for i := 0; i < topK; i++ {
		hits[i] = Hit{Text: chunks[ranked[i].ordinal], Score: ranked[i].score}
	}
	return hits, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
