package rag

import (
	"context"
	"strings"
)

// BuildContext retrieves the topK chunks for the query, joins them in
// descending-score order with blank lines and hard-truncates the result to
// maxChars. The cut may land mid-sentence; the context is advisory
// grounding material, not exact text. An unindexed document yields "".
func (s *Store) BuildContext(ctx context.Context, documentID uint, query string, topK, maxChars int) (string, error) {
	hits, err := s.Retrieve(ctx, documentID, query, topK)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return "", nil
	}

	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Text
	}
	combined := strings.Join(texts, "\n\n")
	if maxChars > 0 && len(combined) > maxChars {
		combined = combined[:maxChars]
	}
	return combined, nil
}
