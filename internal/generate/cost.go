package generate

import (
	"fmt"
	"strings"
)

// modelPricing is USD per 1k tokens (prompt, completion) for known GPT models
var modelPricing = map[string][2]float64{
	"gpt-3.5-turbo":          {0.0005, 0.0015},
	"gpt-3.5-turbo-16k-0613": {0.003, 0.004},
	"gpt-4":                  {0.03, 0.06},
	"gpt-4-32k-0613":         {0.06, 0.12},
	"gpt-4o":                 {0.0025, 0.01},
	"gpt-4o-mini":            {0.00015, 0.0006},
}

// defaultResponseTokens is assumed per response when no samples are provided
const defaultResponseTokens = 250

// CostEstimate is a rough token cost projection for a generation run
type CostEstimate struct {
	Model            string  `json:"model"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	PromptCost       float64 `json:"prompt_cost_usd"`
	CompletionCost   float64 `json:"completion_cost_usd"`
	TotalCost        float64 `json:"total_cost_usd"`
}

// EstimateCost projects the token cost of generating count responses per
// prompt. sampleResponses, when provided, calibrate the completion token
// estimate; otherwise a flat per-response assumption is used. Only known GPT
// models are supported.
func EstimateCost(prompts, sampleResponses []string, modelName string, count int) (*CostEstimate, error) {
	pricing, ok := modelPricing[modelName]
	if !ok {
		return nil, fmt.Errorf("unknown model for cost estimation: %s", modelName)
	}
	if count <= 0 {
		count = 25
	}

	promptTokens := 0
	for _, p := range prompts {
		promptTokens += estimateTokens(p)
	}
	promptTokens *= count

	responseTokens := defaultResponseTokens
	if len(sampleResponses) > 0 {
		total := 0
		for _, r := range sampleResponses {
			total += estimateTokens(r)
		}
		responseTokens = total / len(sampleResponses)
	}
	completionTokens := responseTokens * count * len(prompts)

	promptCost := float64(promptTokens) / 1000 * pricing[0]
	completionCost := float64(completionTokens) / 1000 * pricing[1]

	return &CostEstimate{
		Model:            modelName,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		PromptCost:       promptCost,
		CompletionCost:   completionCost,
		TotalCost:        promptCost + completionCost,
	}, nil
}

// estimateTokens approximates token count as 4/3 of the word count
func estimateTokens(text string) int {
	words := len(strings.Fields(text))
	return words * 4 / 3
}
