package quiz

import (
	"fmt"
	"regexp"
	"strings"
)

// Enforce guarantees the exact per-kind counts the caller requested.
// Excess items in a bucket are discarded (never moved to another kind);
// buckets that come up short are topped up with deterministic rule-based
// filler derived from contextText. Buckets are concatenated in the fixed
// mcq, tf, short, fill order, so the output length always equals
// counts.Total().
func Enforce(items []Item, counts Counts, contextText string) []Item {
	buckets := make(map[string][]Item, len(KindOrder))
	for _, it := range items {
		buckets[it.Kind] = append(buckets[it.Kind], it)
	}

	out := make([]Item, 0, counts.Total())
	for _, kind := range KindOrder {
		want := counts.ByKind(kind)
		if want <= 0 {
			continue
		}
		bucket := buckets[kind]
		if len(bucket) > want {
			bucket = bucket[:want]
		}
		if len(bucket) < want {
			bucket = append(bucket, Synthesize(kind, want-len(bucket), counts.NormalizedDifficulties(), contextText)...)
		}
		out = append(out, bucket...)
	}
	return out
}

var wordRe = regexp.MustCompile(`[A-Za-zÀ-ž]{5,}`)

// Synthesize produces n canonical items of the given kind without any
// backend. Content is derived from contextText sentence by sentence, so
// repeated calls with the same inputs give identical output; when the
// context has nothing usable, generic study prompts are used instead.
func Synthesize(kind string, n int, difficulties []string, contextText string) []Item {
	if n <= 0 {
		return nil
	}
	if len(difficulties) == 0 {
		difficulties = Difficulties
	}
	sents := usableSentences(contextText)

	out := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		difficulty := difficulties[i%len(difficulties)]
		var sent string
		if len(sents) > 0 {
			sent = sents[i%len(sents)]
		}

		item := Item{
			Kind:        kind,
			Difficulty:  difficulty,
			Synthesized: true,
		}
		switch kind {
		case KindMCQ:
			item = synthesizeMCQ(item, sent, i)
		case KindTF:
			item = synthesizeTF(item, sent)
		case KindFill:
			item = synthesizeFill(item, sent)
		default:
			item = synthesizeShort(item, sent)
		}
		out = append(out, item)
	}
	return out
}

func synthesizeMCQ(item Item, sent string, seq int) Item {
	if sent == "" {
		item.Prompt = "Which approach is most effective when studying new material?"
		item.Options = []string{
			"A) Reading the text once from start to finish",
			"B) Active recall with spaced repetition",
			"C) Highlighting every paragraph",
			"D) Memorizing section headings only",
		}
		item.Correct = "B"
		item.Explanation = "Active recall with spacing consistently outperforms passive review."
		return item
	}
	item.Prompt = fmt.Sprintf("Which statement is supported by the material? (%d)", seq+1)
	opts := []string{
		truncateSentence(sent, 160),
		"The material states the opposite of this claim",
		"This topic is not covered in the material",
		"None of the above",
	}
	item.Options = letterOptions(opts)
	item.Correct = "A"
	item.Explanation = "Restated directly from the source text."
	return item
}

func synthesizeTF(item Item, sent string) Item {
	item.Options = []string{"A) True", "B) False"}
	item.Correct = "A"
	if sent == "" {
		item.Prompt = "True or False: Reviewing material over several sessions beats a single long session."
		item.Explanation = "Spacing out practice improves long-term retention."
		return item
	}
	item.Prompt = "True or False: " + truncateSentence(sent, 200)
	item.Explanation = "Taken verbatim from the source text."
	return item
}

func synthesizeFill(item Item, sent string) Item {
	if sent != "" {
		if blanked, answer, ok := blankLongestWord(sent); ok {
			item.Prompt = truncateSentence(blanked, 220)
			item.Correct = answer
			item.Explanation = "The missing word appears in the source text."
			return item
		}
	}
	item.Prompt = "Retrieval practice means actively _____ information instead of re-reading it."
	item.Correct = "recalling"
	item.Explanation = "Recalling from memory strengthens retention."
	return item
}

func synthesizeShort(item Item, sent string) Item {
	if sent == "" {
		item.Prompt = "Briefly describe the main topic of the material you studied."
		item.Correct = "A short statement of the material's central topic"
		item.Explanation = "Any answer naming the central topic counts."
		return item
	}
	item.Prompt = "In your own words, explain: " + truncateSentence(sent, 120)
	item.Correct = sent
	item.Explanation = "Compare your answer with the source statement."
	return item
}

// usableSentences keeps sentences long enough to carry a fact.
func usableSentences(text string) []string {
	var out []string
	for _, s := range splitSentences(text) {
		if len(strings.Fields(s)) >= 4 {
			out = append(out, s)
		}
	}
	return out
}

var sentenceBoundary = regexp.MustCompile(`[.!?]+\s+`)

func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var out []string
	for _, part := range sentenceBoundary.Split(text, -1) {
		if p := strings.TrimSpace(strings.TrimRight(part, ".!?")); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// blankLongestWord replaces the longest word of at least five letters with
// a blank and returns it as the answer.
func blankLongestWord(sent string) (string, string, bool) {
	words := wordRe.FindAllString(sent, -1)
	if len(words) == 0 {
		return "", "", false
	}
	longest := words[0]
	for _, w := range words {
		if len(w) > len(longest) {
			longest = w
		}
	}
	return strings.Replace(sent, longest, "_____", 1), longest, true
}

func truncateSentence(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
