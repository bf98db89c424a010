package quiz

import "strings"

// Question kinds in their fixed output order.
const (
	KindMCQ   = "mcq"
	KindTF    = "tf"
	KindShort = "short"
	KindFill  = "fill"
)

// KindOrder is the order buckets are concatenated in after enforcement.
var KindOrder = []string{KindMCQ, KindTF, KindShort, KindFill}

// Difficulties accepted from the backend; anything else normalizes to easy.
var Difficulties = []string{"easy", "medium", "hard"}

// RawItem is a backend-produced question object before normalization. Every
// field is deliberately loose: generation backends routinely emit missing,
// renamed or wrongly typed values, and the normalizer has to cope with all
// of it.
type RawItem struct {
	Kind        any `json:"kind"`
	Difficulty  any `json:"difficulty"`
	Prompt      any `json:"prompt"`
	Options     any `json:"options"`
	Correct     any `json:"correct"`
	Explanation any `json:"explanation"`
}

// Item is a fully normalized question. Options is empty for short/fill and
// holds "A) text" entries for mcq/tf. Correct is a single letter for
// mcq/tf and free text otherwise. Synthesized marks rule-based filler the
// count enforcer produced without the backend.
type Item struct {
	Kind        string   `json:"kind"`
	Difficulty  string   `json:"difficulty"`
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options,omitempty"`
	Correct     string   `json:"correct"`
	Explanation string   `json:"explanation"`
	Synthesized bool     `json:"synthesized,omitempty"`
}

// EncodedOptions returns the pipe-delimited form used for persistence,
// e.g. "A) True|B) False".
func (it Item) EncodedOptions() string {
	return strings.Join(it.Options, "|")
}

// Counts is the requested number of questions per kind plus the allowed
// difficulty labels.
type Counts struct {
	MCQ          int      `json:"mcq"`
	TF           int      `json:"tf"`
	Short        int      `json:"short"`
	Fill         int      `json:"fill"`
	Difficulties []string `json:"difficulties"`
}

// ByKind returns the requested count for a kind.
func (c Counts) ByKind(kind string) int {
	switch kind {
	case KindMCQ:
		return c.MCQ
	case KindTF:
		return c.TF
	case KindShort:
		return c.Short
	case KindFill:
		return c.Fill
	}
	return 0
}

// Total is the exact number of items enforcement must produce.
func (c Counts) Total() int {
	return c.MCQ + c.TF + c.Short + c.Fill
}

// NormalizedDifficulties lowercases the requested labels and keeps only
// known ones, defaulting to all three when nothing valid remains.
func (c Counts) NormalizedDifficulties() []string {
	var out []string
	for _, d := range c.Difficulties {
		d = strings.ToLower(strings.TrimSpace(d))
		for _, known := range Difficulties {
			if d == known {
				out = append(out, d)
				break
			}
		}
	}
	if len(out) == 0 {
		return append([]string(nil), Difficulties...)
	}
	return out
}
