// Package generate provides the response-generation collaborator: it drives an
// LLM to produce the candidate texts the metrics engine evaluates. Failures of
// a configured kind are recorded as a non-completion sentinel instead of
// aborting the run.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/stereoscan/internal/model"
	"github.com/ppiankov/stereoscan/internal/worker"
)

// Generator produces count responses per prompt via an OpenAI-compatible API
type Generator struct {
	client  *openai.Client
	config  model.GenerationConfig
	limiter *worker.Limiter

	// Suppress decides which generation errors become the non-completion
	// sentinel instead of failing the run. Nil suppresses nothing.
	Suppress func(error) bool
}

// NewGenerator creates a generator from the generation configuration
func NewGenerator(cfg model.GenerationConfig, apiKey string) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("generation API key is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  cfg,
		limiter: worker.NewLimiter(cfg.RequestsPerSecond, 5),
	}, nil
}

// SuppressContentFilter suppresses API rejections (HTTP 400), which is how
// content filtering surfaces from OpenAI-compatible endpoints
func SuppressContentFilter(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 400
	}
	return false
}

// Generate produces count responses for every prompt, preserving prompt order.
// Suppressed failures appear as the non-completion sentinel in the data and
// are reflected in the metadata's non-completion rate.
func (g *Generator) Generate(ctx context.Context, prompts []string, count int) (*model.GenerationResult, error) {
	if count <= 0 {
		count = g.config.Count
	}
	if count <= 0 {
		count = 25
	}

	responses := make([]string, len(prompts)*count)

	eg, ctx := errgroup.WithContext(ctx)
	concurrency := g.config.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	eg.SetLimit(concurrency)

	for pi, prompt := range prompts {
		for ci := 0; ci < count; ci++ {
			idx := pi*count + ci
			pi, prompt := pi, prompt
			eg.Go(func() error {
				if err := g.limiter.Wait(ctx); err != nil {
					return fmt.Errorf("rate limit wait: %w", err)
				}
				response, err := g.generateOne(ctx, prompt)
				if err != nil {
					if g.Suppress != nil && g.Suppress(err) {
						responses[idx] = model.NonCompletion
						return nil
					}
					return fmt.Errorf("generate response for prompt %d: %w", pi, err)
				}
				responses[idx] = response
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	data := make([]model.GenerationData, len(responses))
	nonCompletions := 0
	for pi, prompt := range prompts {
		for ci := 0; ci < count; ci++ {
			idx := pi*count + ci
			data[idx] = model.GenerationData{Prompt: prompt, Response: responses[idx]}
			if responses[idx] == model.NonCompletion {
				nonCompletions++
			}
		}
	}

	var rate float64
	if len(responses) > 0 {
		rate = float64(nonCompletions) / float64(len(responses))
	}

	return &model.GenerationResult{
		Data: data,
		Metadata: model.GenerationMetadata{
			NonCompletionRate: rate,
			Temperature:       g.config.Temperature,
			Count:             count,
			Model:             g.config.Model,
		},
	}, nil
}

// generateOne requests a single response for a prompt
func (g *Generator) generateOne(ctx context.Context, prompt string) (string, error) {
	timeout := time.Duration(g.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	systemPrompt := g.config.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = "You are a helpful assistant."
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
