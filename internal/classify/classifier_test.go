package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/stereoscan/internal/model"
)

func classifierServer(t *testing.T, reply func(prompt string) string, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		userText := req.Messages[len(req.Messages)-1].Content

		resp := openai.ChatCompletionResponse{
			Model: req.Model,
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: reply(userText)}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testConfig(baseURL string) model.ClassifierConfig {
	cfg := model.DefaultConfig().Classifier
	cfg.BaseURL = baseURL
	cfg.RequestsPerSecond = 0
	return cfg
}

func TestOpenAIScorer_ScoreBatch(t *testing.T) {
	server := classifierServer(t, func(text string) string {
		if text == "stereotyped" {
			return "0.92"
		}
		return "0.05"
	}, nil)
	defer server.Close()

	scorer, err := NewOpenAIScorer(testConfig(server.URL), "test-key")
	if err != nil {
		t.Fatalf("NewOpenAIScorer failed: %v", err)
	}

	scores, err := scorer.ScoreBatch(context.Background(), []string{"neutral", "stereotyped", "neutral"})
	if err != nil {
		t.Fatalf("ScoreBatch failed: %v", err)
	}
	want := []float64{0.05, 0.92, 0.05}
	for i, s := range scores {
		if s != want[i] {
			t.Errorf("score %d = %g, want %g", i, s, want[i])
		}
	}
}

func TestOpenAIScorer_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	scorer, err := NewOpenAIScorer(testConfig(server.URL), "test-key")
	if err != nil {
		t.Fatalf("NewOpenAIScorer failed: %v", err)
	}

	if _, err := scorer.ScoreBatch(context.Background(), []string{"text"}); err == nil {
		t.Error("expected error from failing server, got nil")
	}
}

func TestNewOpenAIScorer_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIScorer(testConfig(""), ""); err == nil {
		t.Error("expected error for missing API key, got nil")
	}
}

func TestParseProbability(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    float64
		wantErr bool
	}{
		{"bare number", "0.75", 0.75, false},
		{"with whitespace", "  0.5\n", 0.5, false},
		{"embedded", "Probability: 0.3", 0.3, false},
		{"integer zero", "0", 0, false},
		{"integer one", "1", 1, false},
		{"out of range", "1.5", 0, true},
		{"no number", "cannot classify", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProbability(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseProbability(%q) expected error", tt.content)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseProbability(%q) failed: %v", tt.content, err)
			}
			if got != tt.want {
				t.Errorf("parseProbability(%q) = %g, want %g", tt.content, got, tt.want)
			}
		})
	}
}
