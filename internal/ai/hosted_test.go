package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyassist/internal/platform/logger"
	"studyassist/internal/quiz"
)

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

func chatReply(w http.ResponseWriter, content string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
}

func newTestHosted(t *testing.T, srvURL string, retries int) *HostedProvider {
	t.Helper()
	client := NewOpenAICompatibleClient(5 * time.Second)
	primary := ChatConfig{BaseURL: srvURL, APIKey: "test-key", Model: "big-model"}
	fallback := ChatConfig{BaseURL: srvURL, APIKey: "test-key", Model: "small-model"}
	return NewHostedProvider(client, "hosted", primary, fallback, retries, logger.NewNop())
}

func TestHostedRetriesUntilStructuralDelimiter(t *testing.T) {
	var models []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		models = append(models, req.Model)

		if len(models) == 1 {
			chatReply(w, "I will produce JSON shortly.")
			return
		}
		chatReply(w, `[{"kind":"tf","prompt":"Water is wet?","correct":"true"}]`)
	}))
	defer srv.Close()

	p := newTestHosted(t, srv.URL, 2)
	items, err := p.GenerateQuiz(context.Background(), "some context", quiz.Counts{TF: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	// Both attempts stayed on the primary model.
	assert.Equal(t, []string{"big-model", "big-model"}, models)
}

func TestHostedSwitchesToFallbackOnRateLimit(t *testing.T) {
	var models []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		models = append(models, req.Model)

		if req.Model == "big-model" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		chatReply(w, `{"correct": true, "reason": "equivalent"}`)
	}))
	defer srv.Close()

	p := newTestHosted(t, srv.URL, 2)
	verdict, err := p.GradeFreeform(context.Background(), "Q?", "truth", "answer")
	require.NoError(t, err)
	assert.True(t, verdict.Correct)
	require.GreaterOrEqual(t, len(models), 2)
	assert.Equal(t, "big-model", models[0])
	assert.Equal(t, "small-model", models[1])
}

func TestHostedExhaustedBudgetFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := newTestHosted(t, srv.URL, 1)
	_, err := p.GenerateQuiz(context.Background(), "ctx", quiz.Counts{TF: 1})
	require.ErrorIs(t, err, ErrGenerationFailed)
}

func TestHostedUnparsableContentIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatReply(w, `{"not": "an array"}`)
	}))
	defer srv.Close()

	p := newTestHosted(t, srv.URL, 0)
	_, err := p.GenerateQuiz(context.Background(), "ctx", quiz.Counts{TF: 1})
	require.ErrorIs(t, err, ErrParse)
}

func TestClientReports429AsRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(5 * time.Second)
	cfg := ChatConfig{BaseURL: srv.URL, APIKey: "k", Model: "m"}
	_, err := client.Complete(context.Background(), cfg, []ChatMessage{{Role: "user", Content: "hi"}})
	require.ErrorIs(t, err, ErrRateLimited)
}
