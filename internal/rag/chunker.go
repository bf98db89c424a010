package rag

import (
	"math/rand"
	"regexp"
	"strings"
)

// Chunk is one retrievable unit of a document. Ordinal is the position of
// the chunk in the original text and doubles as the tie-breaker during
// retrieval ranking.
type Chunk struct {
	Text    string `json:"text"`
	Ordinal int    `json:"ordinal"`
}

var sentenceEnd = regexp.MustCompile(`[.!?]+\s+`)

// SplitSentences splits text into sentence-like units on `.`, `!` or `?`
// followed by whitespace. The terminating punctuation stays with its
// sentence.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sents []string
	last := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		// Keep the punctuation, drop the trailing whitespace.
		end := loc[0]
		for end < loc[1] && !isSpace(text[end]) {
			end++
		}
		if s := strings.TrimSpace(text[last:end]); s != "" {
			sents = append(sents, s)
		}
		last = loc[1]
	}
	if s := strings.TrimSpace(text[last:]); s != "" {
		sents = append(sents, s)
	}
	return sents
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// ChunkText splits text into overlapping windows of roughly chunkChars
// characters. Sentences are accumulated greedily; when a sentence would
// overflow the budget the buffer is emitted and the next buffer is seeded
// with the trailing overlapChars characters of the emitted chunk, so
// adjacent chunks share context. Text without sentence boundaries falls
// back to fixed-size character slicing. Empty text yields no chunks.
func ChunkText(text string, chunkChars, overlapChars int) []Chunk {
	if chunkChars <= 0 {
		chunkChars = 800
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= chunkChars {
		overlapChars = chunkChars / 2
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sents := SplitSentences(text)
	if len(sents) <= 1 && len(text) > chunkChars {
		return sliceChunks(text, chunkChars, overlapChars)
	}

	var out []Chunk
	buf := ""
	for _, s := range sents {
		if len(buf)+len(s)+1 <= chunkChars {
			buf = strings.TrimSpace(buf + " " + s)
			continue
		}
		if buf != "" {
			out = append(out, Chunk{Text: buf, Ordinal: len(out)})
		}
		if overlapChars > 0 && len(out) > 0 {
			tail := out[len(out)-1].Text
			if len(tail) > overlapChars {
				tail = tail[len(tail)-overlapChars:]
			}
			buf = strings.TrimSpace(tail + " " + s)
		} else {
			buf = s
		}
	}
	if buf != "" {
		out = append(out, Chunk{Text: buf, Ordinal: len(out)})
	}
	return out
}

// sliceChunks cuts text into fixed-size character windows with overlap.
func sliceChunks(text string, size, overlap int) []Chunk {
	var out []Chunk
	step := size - overlap
	if step <= 0 {
		step = size
	}
	for i := 0; i < len(text); i += step {
		end := i + size
		if end > len(text) {
			end = len(text)
		}
		out = append(out, Chunk{Text: text[i:end], Ordinal: len(out)})
		if end == len(text) {
			break
		}
	}
	return out
}

// RandomWindow accumulates sentences into word-budgeted windows with
// overlapWords of carry-over and returns one window chosen uniformly at
// random. Pass a seeded rng for reproducible output; nil falls back to the
// global source.
func RandomWindow(text string, targetWords, overlapWords int, rng *rand.Rand) string {
	if targetWords <= 0 {
		targetWords = 300
	}
	if overlapWords < 0 {
		overlapWords = 0
	}
	pick := rand.Intn
	if rng != nil {
		pick = rng.Intn
	}

	sents := SplitSentences(text)
	if len(sents) == 0 {
		words := strings.Fields(text)
		if len(words) == 0 {
			return ""
		}
		start := 0
		if len(words) > targetWords {
			start = pick(len(words) - targetWords + 1)
		}
		end := start + targetWords
		if end > len(words) {
			end = len(words)
		}
		return strings.Join(words[start:end], " ")
	}

	var windows []string
	var buf []string
	count := 0
	for _, s := range sents {
		buf = append(buf, s)
		count += len(strings.Fields(s))
		if count >= targetWords {
			window := strings.Join(buf, " ")
			windows = append(windows, window)
			tail := strings.Fields(window)
			if len(tail) > overlapWords {
				tail = tail[len(tail)-overlapWords:]
			}
			buf = []string{strings.Join(tail, " ")}
			count = len(tail)
		}
	}
	if len(windows) == 0 {
		return strings.Join(sents, " ")
	}
	return windows[pick(len(windows))]
}
