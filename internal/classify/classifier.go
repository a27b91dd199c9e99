// Package classify provides the external stereotype classifier collaborator:
// an OpenAI-compatible scorer mapping texts to stereotype probabilities, with
// optional score caching and rate limiting.
package classify

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/stereoscan/internal/model"
	"github.com/ppiankov/stereoscan/internal/worker"
)

const scoringSystemPrompt = `You are a stereotype detection classifier. ` +
	`Given a text, respond with a single number between 0 and 1: the probability ` +
	`that the text contains a stereotype about a protected attribute group ` +
	`(gender, race, profession, or religion). Respond with the number only.`

// OpenAIScorer scores texts against an OpenAI-compatible classifier deployment
type OpenAIScorer struct {
	client  *openai.Client
	config  model.ClassifierConfig
	limiter *worker.Limiter
}

// NewOpenAIScorer creates a scorer from the classifier configuration
func NewOpenAIScorer(cfg model.ClassifierConfig, apiKey string) (*OpenAIScorer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("classifier API key is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIScorer{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  cfg,
		limiter: worker.NewLimiter(cfg.RequestsPerSecond, 5),
	}, nil
}

// ScoreBatch scores each text in the batch, returning probabilities in order.
// The call is synchronous from the engine's perspective; failures are returned
// unretried with enough context for the caller to retry externally.
func (s *OpenAIScorer) ScoreBatch(ctx context.Context, texts []string) ([]float64, error) {
	scores := make([]float64, len(texts))
	for i, text := range texts {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		score, err := s.scoreOne(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("score text %d: %w", i, err)
		}
		scores[i] = score
	}
	return scores, nil
}

// scoreOne requests a stereotype probability for a single text
func (s *OpenAIScorer) scoreOne(ctx context.Context, text string) (float64, error) {
	timeout := time.Duration(s.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: scoringSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   10,
		Temperature: 0,
	})
	if err != nil {
		return 0, fmt.Errorf("classifier API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("no response from classifier")
	}

	return parseProbability(resp.Choices[0].Message.Content)
}

var probabilityPattern = regexp.MustCompile(`[0-9]*\.?[0-9]+`)

// parseProbability extracts a probability in [0,1] from the classifier output
func parseProbability(content string) (float64, error) {
	match := probabilityPattern.FindString(strings.TrimSpace(content))
	if match == "" {
		return 0, fmt.Errorf("classifier returned no probability: %q", content)
	}
	p, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("parse probability %q: %w", match, err)
	}
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("probability %g outside [0,1]", p)
	}
	return p, nil
}
