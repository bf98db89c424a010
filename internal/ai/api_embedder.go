package ai

import (
	"context"
	"fmt"
	"math"

	"studyassist/internal/rag"
)

// embeddingBatchSize limits one embeddings request. Hosted endpoints commonly
// reject larger batches.
const embeddingBatchSize = 10

// APIEmbedder implements rag.Embedder over an OpenAI-compatible embeddings
// endpoint. Outputs are unit-normalized so cosine scoring reduces to a dot
// product over consistent magnitudes.
type APIEmbedder struct {
	client    *OpenAICompatibleClient
	cfg       EmbeddingAPIConfig
	dimension int
}

func NewAPIEmbedder(client *OpenAICompatibleClient, cfg EmbeddingAPIConfig, dimension int) *APIEmbedder {
	return &APIEmbedder{
		client:    client,
		cfg:       cfg,
		dimension: dimension,
	}
}

func (e *APIEmbedder) Dimension() int { return e.dimension }

func (e *APIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	result := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embeddingBatchSize {
		end := start + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := e.client.EmbedBatch(ctx, e.cfg, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", rag.ErrEmbeddingUnavailable, err)
		}
		for _, vec := range batch {
			result = append(result, normalizeVector(vec))
		}
	}
	return result, nil
}

func normalizeVector(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

var _ rag.Embedder = (*APIEmbedder)(nil)
