package rag

import (
	"context"
	"errors"
)

// ErrEmbeddingUnavailable signals that the embedding capability cannot be
// used right now. Callers fall back to non-indexed context assembly; it is
// not fatal for the pipeline.
var ErrEmbeddingUnavailable = errors.New("embedding capability unavailable")

// Embedder turns texts into fixed-length unit-normalized vectors. An index
// built with one Embedder must only ever be queried through the same one;
// vectors from different embedding functions are not comparable.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}
