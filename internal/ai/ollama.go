package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"studyassist/internal/quiz"
)

// OllamaProvider talks to a local Ollama daemon over its native chat API.
// It shares prompts with the hosted provider but needs no API key, retry
// budget or fallback: a local daemon either answers or is down.
type OllamaProvider struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewOllamaProvider(baseURL, model string, timeout time.Duration) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:11434"
	}
	if model == "" {
		model = "llama3"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaProvider{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		model:      model,
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) chat(ctx context.Context, system, user string) (string, error) {
	reqBody := map[string]interface{}{
		"model": p.model,
		"messages": []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		"stream":  false,
		"options": map[string]interface{}{"temperature": 0.2},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal ollama request failed: %w", err)
	}

	url := strings.TrimRight(p.baseURL, "/") + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build ollama request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ollama response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: ollama status %d: %s", ErrGenerationFailed, resp.StatusCode, string(raw))
	}

	var parsed struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse ollama json failed: %w", err)
	}
	return parsed.Message.Content, nil
}

func (p *OllamaProvider) Summarize(ctx context.Context, text string) (SummaryResult, error) {
	content, err := p.chat(ctx, "You summarize text in 6 sentences max. Return plain text.", truncate(text, 6000))
	if err != nil {
		return SummaryResult{}, err
	}
	summary := strings.TrimSpace(content)
	return SummaryResult{
		Title:     "Content Summary",
		Summary:   summary,
		WordCount: len(strings.Fields(summary)),
	}, nil
}

func (p *OllamaProvider) GenerateQuiz(ctx context.Context, contextText string, counts quiz.Counts) ([]quiz.RawItem, error) {
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

func (p *OllamaProvider) GradeFreeform(ctx context.Context, question, groundTruth, userAnswer string) (GradeResult, error) {
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

func (p *OllamaProvider) MakeFlashcards(ctx context.Context, contextText string, n int) ([]Flashcard, error) {
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

func (p *OllamaProvider) AnswerQuestion(ctx context.Context, question, contextText string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"question": question,
		"context":  truncate(contextText, maxPromptContextChars*2),
	})
	if err != nil {
		return "", fmt.Errorf("marshal coach request failed: %w", err)
	}

	content, err := p.chat(ctx, systemCoach, string(payload))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

var _ Provider = (*OllamaProvider)(nil)
