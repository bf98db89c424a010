package ai

import (
	"context"
	"strings"

	"studyassist/internal/quiz"
)

// LocalStub is the rule-based backend. It needs no network, never fails and
// produces deterministic output, which makes it both the fallback when the
// hosted backend misbehaves and the generator behind count-enforcement
// filler.
type LocalStub struct{}

func NewLocalStub() *LocalStub { return &LocalStub{} }

func (s *LocalStub) Name() string { return "stub" }

func (s *LocalStub) Summarize(ctx context.Context, text string) (SummaryResult, error) {
	sents := splitStubSentences(text)
	var body string
	if len(sents) > 0 {
		n := len(sents)
		if n > 6 {
			n = 6
		}
		body = strings.Join(sents[:n], " ")
	} else {
		body = text
		if len(body) > 600 {
			body = body[:600]
		}
	}
	return SummaryResult{
		Title:     "Content Summary",
		Summary:   body,
		WordCount: len(strings.Fields(body)),
	}, nil
}

// GenerateQuiz returns already well-formed items; the raw representation is
// kept so stub output flows through the same normalize/enforce path as
// hosted output.
func (s *LocalStub) GenerateQuiz(ctx context.Context, contextText string, counts quiz.Counts) ([]quiz.RawItem, error) {
	var raw []quiz.RawItem
	for _, kind := range quiz.KindOrder {
		for _, item := range quiz.Synthesize(kind, counts.ByKind(kind), counts.NormalizedDifficulties(), contextText) {
			raw = append(raw, quiz.RawItem{
				Kind:        item.Kind,
				Difficulty:  item.Difficulty,
				Prompt:      item.Prompt,
				Options:     item.EncodedOptions(),
				Correct:     item.Correct,
				Explanation: item.Explanation,
			})
		}
	}
	return raw, nil
}

// GradeFreeform does a crude substring match in both directions.
func (s *LocalStub) GradeFreeform(ctx context.Context, question, groundTruth, userAnswer string) (GradeResult, error) {
	gt := strings.ToLower(strings.TrimSpace(groundTruth))
	ua := strings.ToLower(strings.TrimSpace(userAnswer))
	ok := gt != "" && ua != "" && (strings.Contains(ua, gt) || strings.Contains(gt, ua))
	return GradeResult{
		Correct: ok,
		Reason:  "Substring match against the expected answer.",
	}, nil
}

func (s *LocalStub) MakeFlashcards(ctx context.Context, contextText string, n int) ([]Flashcard, error) {
	sents := splitStubSentences(contextText)
	if n <= 0 {
		return nil, nil
	}

	count := n
	if len(sents) > 0 && count > len(sents) {
		count = len(sents)
	}
	if len(sents) == 0 {
		return []Flashcard{{
			Front: "What is the main topic of this material?",
			Back:  "Review the uploaded document to identify its central topic.",
		}}, nil
	}

	cards := make([]Flashcard, 0, count)
	for i := 0; i < count; i++ {
		sent := sents[i]
		front := sent
		if len(front) > 80 {
			front = front[:80] + "..."
		}
		back := sent
		if len(back) > 220 {
			back = back[:220] + "..."
		}
		cards = append(cards, Flashcard{
			Front: "Explain briefly: " + front,
			Back:  back,
		})
	}
	return cards, nil
}

func (s *LocalStub) AnswerQuestion(ctx context.Context, question, contextText string) (string, error) {
	sents := splitStubSentences(contextText)
	terms := strings.Fields(strings.ToLower(question))
	best := ""
	bestHits := 0
	for _, sent := range sents {
		lower := strings.ToLower(sent)
		hits := 0
		for _, term := range terms {
			if len(term) >= 4 && strings.Contains(lower, term) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			best = sent
		}
	}
	if best == "" {
		return "I cannot find the answer in the provided material.", nil
	}
	return best, nil
}

func splitStubSentences(text string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var _ Provider = (*LocalStub)(nil)
