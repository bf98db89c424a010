package ai

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// wordpieceTokenizer implements the greedy longest-match-first subword
// algorithm used by BERT-family vocabularies. It is enough to feed a
// sentence-embedding model; it does not handle byte fallback or unicode
// normalization beyond lowercasing.
type wordpieceTokenizer struct {
	vocab map[string]int64

	clsID int64
	sepID int64
	padID int64
	unkID int64
}

const maxWordpieceChars = 100

func newWordpieceTokenizer(vocabPath string) (*wordpieceTokenizer, error) {
	f, err := os.Open(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("open vocab failed: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]int64)
	sc := bufio.NewScanner(f)
	var id int64
	for sc.Scan() {
		token := strings.TrimSpace(sc.Text())
		if token != "" {
			vocab[token] = id
		}
		id++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vocab failed: %w", err)
	}

	t := &wordpieceTokenizer{vocab: vocab}
	var ok bool
	for _, special := range []struct {
		name string
		dst  *int64
	}{
		{"[CLS]", &t.clsID},
		{"[SEP]", &t.sepID},
		{"[PAD]", &t.padID},
		{"[UNK]", &t.unkID},
	} {
		if *special.dst, ok = vocab[special.name]; !ok {
			return nil, fmt.Errorf("vocab missing %s token", special.name)
		}
	}
	return t, nil
}

// Encode produces input ids and an attention mask of exactly seqLen entries,
// truncating long inputs and padding short ones.
func (t *wordpieceTokenizer) Encode(text string, seqLen int) (ids, mask []int64) {
	pieces := []int64{t.clsID}
	for _, word := range basicTokenize(text) {
		pieces = append(pieces, t.wordToPieces(word)...)
		if len(pieces) >= seqLen-1 {
			break
		}
	}
	if len(pieces) > seqLen-1 {
		pieces = pieces[:seqLen-1]
	}
	pieces = append(pieces, t.sepID)

	ids = make([]int64, seqLen)
	mask = make([]int64, seqLen)
	for i := 0; i < seqLen; i++ {
		if i < len(pieces) {
			ids[i] = pieces[i]
			mask[i] = 1
		} else {
			ids[i] = t.padID
		}
	}
	return ids, mask
}

func (t *wordpieceTokenizer) wordToPieces(word string) []int64 {
	if len(word) > maxWordpieceChars {
		return []int64{t.unkID}
	}

	var out []int64
	runes := []rune(word)
	start := 0
	for start < len(runes) {
		end := len(runes)
		var matched int64 = -1
		for end > start {
			candidate := string(runes[start:end])
			if start > 0 {
				candidate = "##" + candidate
			}
			if id, ok := t.vocab[candidate]; ok {
				matched = id
				break
			}
			end--
		}
		if matched == -1 {
			return []int64{t.unkID}
		}
		out = append(out, matched)
		start = end
	}
	return out
}

// basicTokenize lowercases and splits on whitespace, then splits punctuation
// into standalone tokens.
func basicTokenize(text string) []string {
	var out []string
	for _, field := range strings.Fields(strings.ToLower(text)) {
		var current strings.Builder
		for _, r := range field {
			if unicode.IsPunct(r) || unicode.IsSymbol(r) {
				if current.Len() > 0 {
					out = append(out, current.String())
					current.Reset()
				}
				out = append(out, string(r))
				continue
			}
			current.WriteRune(r)
		}
		if current.Len() > 0 {
			out = append(out, current.String())
		}
	}
	return out
}
