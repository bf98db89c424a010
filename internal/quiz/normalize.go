package quiz

import (
	"fmt"
	"strconv"
	"strings"
)

// tfSynonyms maps the correct-answer spellings backends actually produce
// for true/false questions, including Serbian variants, to option letters.
var tfSynonyms = map[string]string{
	"a": "A", "true": "A", "t": "A", "tačno": "A", "tacno": "A", "1": "A", "yes": "A",
	"b": "B", "false": "B", "f": "B", "netačno": "B", "netacno": "B", "0": "B", "no": "B",
}

// mcqDistractors pads option lists that arrive with fewer than four
// entries. Generic on purpose: they must read plausibly for any document.
var mcqDistractors = []string{
	"None of the above",
	"All of the above",
	"Not stated in the text",
	"Cannot be determined",
}

const (
	minMCQOptions = 4
	maxMCQOptions = 6
)

// Normalize coerces backend-produced items into the canonical schema.
// Items whose prompt is empty after trimming are dropped; everything else
// is repaired rather than rejected. Normalizing already-normalized data is
// a no-op.
func Normalize(raw []RawItem) []Item {
	out := make([]Item, 0, len(raw))
	for _, r := range raw {
		if item, ok := normalizeOne(r); ok {
			out = append(out, item)
		}
	}
	return out
}

func normalizeOne(r RawItem) (Item, bool) {
	prompt := strings.TrimSpace(asString(r.Prompt))
	if prompt == "" {
		return Item{}, false
	}

	item := Item{
		Kind:        normalizeKind(asString(r.Kind)),
		Difficulty:  normalizeDifficulty(asString(r.Difficulty)),
		Prompt:      prompt,
		Explanation: strings.TrimSpace(asString(r.Explanation)),
	}

	switch item.Kind {
	case KindTF:
		item.Options = []string{"A) True", "B) False"}
		item.Correct = normalizeTFCorrect(asString(r.Correct))
	case KindMCQ:
		opts := parseOptions(r.Options)
		opts = dedupeOptions(opts)
		opts = padOptions(opts)
		if len(opts) > maxMCQOptions {
			opts = opts[:maxMCQOptions]
		}
		item.Correct = resolveMCQCorrect(asString(r.Correct), opts)
		item.Options = letterOptions(opts)
	default:
		item.Correct = strings.TrimSpace(asString(r.Correct))
	}

	return item, true
}

func normalizeKind(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindMCQ:
		return KindMCQ
	case KindTF:
		return KindTF
	case KindFill:
		return KindFill
	case KindShort:
		return KindShort
	}
	// Unknown kinds land in the freeform bucket.
	return KindShort
}

func normalizeDifficulty(difficulty string) string {
	d := strings.ToLower(strings.TrimSpace(difficulty))
	for _, known := range Difficulties {
		if d == known {
			return d
		}
	}
	return "easy"
}

// normalizeTFCorrect maps any recognized synonym to A or B. Unrecognized
// values default to A; preserved source behavior, see DESIGN.md.
func normalizeTFCorrect(correct string) string {
	key := strings.ToLower(strings.TrimSpace(correct))
	if letter, ok := tfSynonyms[key]; ok {
		return letter
	}
	return "A"
}

// parseOptions accepts pipe-, comma- or newline-delimited strings (checked
// in that priority order) as well as JSON arrays, and strips any existing
// "X) " letter prefixes.
func parseOptions(v any) []string {
	var parts []string
	switch opts := v.(type) {
	case nil:
		return nil
	case []any:
		for _, o := range opts {
			parts = append(parts, asString(o))
		}
	case []string:
		parts = opts
	default:
		s := asString(v)
		switch {
		case strings.Contains(s, "|"):
			parts = strings.Split(s, "|")
		case strings.Contains(s, ","):
			parts = strings.Split(s, ",")
		default:
			parts = strings.Split(s, "\n")
		}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = stripLetterPrefix(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func stripLetterPrefix(s string) string {
	if len(s) >= 2 && s[1] == ')' && isASCIILetter(s[0]) {
		return strings.TrimSpace(s[2:])
	}
	return s
}

func isASCIILetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// dedupeOptions removes case-insensitive duplicates keeping the first
// occurrence.
func dedupeOptions(opts []string) []string {
	seen := make(map[string]bool, len(opts))
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		key := strings.ToLower(o)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, o)
	}
	return out
}

// padOptions tops the list up to the minimum of four with synthetic
// distractors, skipping any that already appear.
func padOptions(opts []string) []string {
	for _, d := range mcqDistractors {
		if len(opts) >= minMCQOptions {
			break
		}
		dup := false
		for _, o := range opts {
			if strings.EqualFold(o, d) {
				dup = true
				break
			}
		}
		if !dup {
			opts = append(opts, d)
		}
	}
	return opts
}

// resolveMCQCorrect turns the backend's correct value into a letter within
// range: a bare letter is kept, otherwise the value is matched against the
// option texts, otherwise A.
func resolveMCQCorrect(correct string, opts []string) string {
	c := strings.TrimSpace(correct)
	if len(c) == 1 && isASCIILetter(c[0]) {
		letter := strings.ToUpper(c)
		if int(letter[0]-'A') < len(opts) {
			return letter
		}
	}
	c = stripLetterPrefix(c)
	for i, o := range opts {
		if strings.EqualFold(o, c) {
			return string(rune('A' + i))
		}
	}
	return "A"
}

// letterOptions prefixes each option with its final letter.
func letterOptions(opts []string) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = fmt.Sprintf("%c) %s", rune('A'+i), o)
	}
	return out
}

// asString coerces the loosely typed values backends return into strings.
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
