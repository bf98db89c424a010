package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"studyassist/internal/platform/logger"
	"studyassist/internal/quiz"
)

const (
	systemQuiz = "You are a quiz generator. Use ONLY the provided context. " +
		"If the context is insufficient, return an empty JSON array []. " +
		"Questions must be grounded in the context (verbatim facts, names, terms). " +
		"Return STRICT JSON list with objects: " +
		"{kind('mcq'|'tf'|'short'|'fill'), difficulty('easy'|'medium'|'hard'), " +
		"prompt, options(pipe-delimited for mcq/tf), correct, explanation}. " +
		"No extra text."

	systemGrader = "You are a strict grader for short/freeform answers. " +
		"Be tolerant to synonyms and minor paraphrasing; focus on factual equivalence. " +
		"Return STRICT JSON object: {\"correct\": true|false, \"reason\": \"...\"}."

	systemSummarizer = "You are an academic summarizer. Summarize the following text " +
		"in concise, clear paragraphs covering the main ideas, definitions and relationships. " +
		"Return plain text only."

	systemFlashcards = "You are a flashcard author. From the provided context create concise " +
		"question/answer study cards for core definitions, key concepts and relationships. " +
		"Return STRICT JSON list with objects: {front, back}. No extra text."

	systemCoach = "You are a study coach. Answer concisely using ONLY the given context. " +
		"If the context does not contain the answer, say you cannot find it in the provided material. " +
		"Answer in the language of the question."

	// maxPromptContextChars bounds how much retrieved context goes into one
	// request payload.
	maxPromptContextChars = 8000

	baseBackoff = 500 * time.Millisecond
)

// HostedProvider talks to an OpenAI-compatible generation backend with a
// retry budget. Responses without a structural delimiter are retried with
// growing backoff; a rate-limit response switches the remainder of the
// budget to the configured lower-cost fallback backend.
type HostedProvider struct {
	client   *OpenAICompatibleClient
	name     string
	primary  ChatConfig
	fallback ChatConfig
	retries  int
	log      *logger.Logger
}

func NewHostedProvider(client *OpenAICompatibleClient, name string, primary, fallback ChatConfig, retries int, log *logger.Logger) *HostedProvider {
	if retries < 0 {
		retries = 0
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &HostedProvider{
		client:   client,
		name:     name,
		primary:  primary,
		fallback: fallback,
		retries:  retries,
		log:      log,
	}
}

func (p *HostedProvider) Name() string { return p.name }

// chat runs the retry/fallback loop around one completion. It returns the
// last non-empty response even when it never saw a structural delimiter;
// the sanitizer downstream decides what to do with it.
func (p *HostedProvider) chat(ctx context.Context, system, user string) (string, error) {
	cfg := p.primary
	backoff := baseBackoff
	last := ""
	var lastErr error

	for attempt := 0; attempt <= p.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrGenerationFailed, ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		out, err := p.client.Complete(ctx, cfg, []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		})
		if err != nil {
			lastErr = err
			if errors.Is(err, ErrRateLimited) && cfg.Model != p.fallback.Model {
				p.log.Warn("backend rate limited, switching to fallback",
					"from", cfg.Model, "to", p.fallback.Model)
				cfg = p.fallback
			}
			continue
		}

		last = out
		if strings.ContainsAny(out, "[{") {
			return out, nil
		}
		// No structural delimiter; give the backend another shot.
	}

	if last != "" {
		return last, nil
	}
	return "", fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
}

func (p *HostedProvider) Summarize(ctx context.Context, text string) (SummaryResult, error) {
	resp, err := p.chat(ctx, systemSummarizer, truncate(text, maxPromptContextChars))
	if err != nil {
		return SummaryResult{}, err
	}
	summary := strings.TrimSpace(resp)
	return SummaryResult{
		Title:     "Summary",
		Summary:   summary,
		WordCount: len(strings.Fields(summary)),
	}, nil
}

func (p *HostedProvider) GenerateQuiz(ctx context.Context, contextText string, counts quiz.Counts) ([]quiz.RawItem, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"counts": map[string]int{
			"mcq":   counts.MCQ,
			"tf":    counts.TF,
			"short": counts.Short,
			"fill":  counts.Fill,
		},
		"difficulties": counts.NormalizedDifficulties(),
		"context":      truncate(contextText, maxPromptContextChars),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal quiz request failed: %w", err)
	}

	content, err := p.chat(ctx, systemQuiz, string(payload))
	if err != nil {
		return nil, err
	}

	var items []quiz.RawItem
	if err := json.Unmarshal([]byte(ExtractJSON(content)), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return items, nil
}

func (p *HostedProvider) GradeFreeform(ctx context.Context, question, groundTruth, userAnswer string) (GradeResult, error) {
	payload, err := json.Marshal(map[string]string{
		"question":     question,
		"ground_truth": groundTruth,
		"user_answer":  userAnswer,
	})
	if err != nil {
		return GradeResult{}, fmt.Errorf("marshal grade request failed: %w", err)
	}

	content, err := p.chat(ctx, systemGrader, string(payload))
	if err != nil {
		return GradeResult{}, err
	}

	var verdict struct {
		Correct bool   `json:"correct"`
		Reason  string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(ExtractJSON(content)), &verdict); err != nil {
		return GradeResult{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return GradeResult{Correct: verdict.Correct, Reason: verdict.Reason}, nil
}

func (p *HostedProvider) MakeFlashcards(ctx context.Context, contextText string, n int) ([]Flashcard, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"count":   n,
		"context": truncate(contextText, maxPromptContextChars),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal flashcard request failed: %w", err)
	}

	content, err := p.chat(ctx, systemFlashcards, string(payload))
	if err != nil {
		return nil, err
	}

	var cards []Flashcard
	if err := json.Unmarshal([]byte(ExtractJSON(content)), &cards); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return cards, nil
}

func (p *HostedProvider) AnswerQuestion(ctx context.Context, question, contextText string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"question": question,
		"context":  truncate(contextText, maxPromptContextChars*2),
	})
	if err != nil {
		return "", fmt.Errorf("marshal coach request failed: %w", err)
	}

	resp, err := p.chat(ctx, systemCoach, string(payload))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

var _ Provider = (*HostedProvider)(nil)
