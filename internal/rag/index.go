package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	embeddingsFile = "embeddings.json"
	metaFile       = "meta.json"
)

// Store builds and serves per-document vector indexes on disk. Each
// document gets its own directory under root holding one embeddings
// artifact and one chunk-text artifact. Build overwrites; there is no
// appending.
type Store struct {
	root       string
	embedder   Embedder
	chunkChars int
	overlap    int
}

// IndexMeta describes a built index.
type IndexMeta struct {
	DocumentID uint `json:"document_id"`
	Chunks     int  `json:"chunks"`
}

type indexMetaFile struct {
	Chunks []string `json:"chunks"`
}

func NewStore(root string, embedder Embedder, chunkChars, overlapChars int) *Store {
	if chunkChars <= 0 {
		chunkChars = 800
	}
	if overlapChars < 0 {
		overlapChars = 120
	}
	return &Store{
		root:       root,
		embedder:   embedder,
		chunkChars: chunkChars,
		overlap:    overlapChars,
	}
}

func (s *Store) docDir(documentID uint) string {
	return filepath.Join(s.root, strconv.FormatUint(uint64(documentID), 10))
}

// Has reports whether a complete index exists for the document.
func (s *Store) Has(documentID uint) bool {
	dir := s.docDir(documentID)
	if _, err := os.Stat(filepath.Join(dir, embeddingsFile)); err != nil {
		return false
	}
	if _, err := os.Stat(filepath.Join(dir, metaFile)); err != nil {
		return false
	}
	return true
}

// Build chunks the text, embeds every chunk and persists the index,
// replacing any previous index for the document. Embedding failures are
// reported as ErrEmbeddingUnavailable so callers can take the non-indexed
// path.
func (s *Store) Build(ctx context.Context, documentID uint, text string) (IndexMeta, error) {
	chunks := ChunkText(text, s.chunkChars, s.overlap)
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	var embeddings [][]float32
	if len(texts) > 0 {
		var err error
		embeddings, err = s.embedder.Embed(ctx, texts)
		if err != nil {
			return IndexMeta{}, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
		}
	}
	if len(embeddings) != len(texts) {
		return IndexMeta{}, fmt.Errorf("%w: embedder returned %d vectors for %d chunks",
			ErrEmbeddingUnavailable, len(embeddings), len(texts))
	}

	dir := s.docDir(documentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return IndexMeta{}, fmt.Errorf("create index dir failed: %w", err)
	}

	embPayload, err := json.Marshal(embeddings)
	if err != nil {
		return IndexMeta{}, fmt.Errorf("marshal embeddings failed: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, embeddingsFile), embPayload, 0o644); err != nil {
		return IndexMeta{}, fmt.Errorf("write embeddings failed: %w", err)
	}

	metaPayload, err := json.Marshal(indexMetaFile{Chunks: texts})
	if err != nil {
		return IndexMeta{}, fmt.Errorf("marshal index meta failed: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metaFile), metaPayload, 0o644); err != nil {
		return IndexMeta{}, fmt.Errorf("write index meta failed: %w", err)
	}

	return IndexMeta{DocumentID: documentID, Chunks: len(texts)}, nil
}

// Ensure builds the index only if none exists yet. Rebuilds never happen
// here, so repeated calls are cheap no-ops.
func (s *Store) Ensure(ctx context.Context, documentID uint, text string) error {
	if s.Has(documentID) {
		return nil
	}
	_, err := s.Build(ctx, documentID, text)
	return err
}

// load reads the persisted chunks and embeddings for a document.
func (s *Store) load(documentID uint) ([]string, [][]float32, error) {
	dir := s.docDir(documentID)

	metaRaw, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		return nil, nil, fmt.Errorf("read index meta failed: %w", err)
	}
	var meta indexMetaFile
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		return nil, nil, fmt.Errorf("parse index meta failed: %w", err)
	}

	embRaw, err := os.ReadFile(filepath.Join(dir, embeddingsFile))
	if err != nil {
		return nil, nil, fmt.Errorf("read embeddings failed: %w", err)
	}
	var embeddings [][]float32
	if err := json.Unmarshal(embRaw, &embeddings); err != nil {
		return nil, nil, fmt.Errorf("parse embeddings failed: %w", err)
	}

	if len(meta.Chunks) != len(embeddings) {
		return nil, nil, fmt.Errorf("index corrupt: %d chunks vs %d embeddings", len(meta.Chunks), len(embeddings))
	}
	return meta.Chunks, embeddings, nil
}
