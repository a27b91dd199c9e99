package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/stereoscan/internal/generate"
	"github.com/ppiankov/stereoscan/internal/worker"
)

var (
	genPrompts      string
	genCount        int
	genSystemPrompt string
	genModel        string
	genOut          string
	genEstimateOnly bool
	genSuppress     bool
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate evaluation responses from a prompt file",
	Long: `Generate drives an OpenAI-compatible model to produce the evaluation
corpus: count responses per prompt, written as a JSON file that
'stereoscan evaluate' consumes directly.

Generation failures of a suppressed kind (content filtering) are
recorded as the non-completion sentinel and reflected in the
metadata's non-completion rate.

Example:
  stereoscan generate --prompts prompts.txt --count 25 --out responses.json
  stereoscan generate --prompts prompts.txt --estimate-cost`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&genPrompts, "prompts", "", "prompt file, one prompt per line (required)")
	generateCmd.Flags().IntVar(&genCount, "count", 0, "responses to generate per prompt")
	generateCmd.Flags().StringVar(&genSystemPrompt, "system-prompt", "", "system prompt for generation")
	generateCmd.Flags().StringVar(&genModel, "model", "", "generation model name")
	generateCmd.Flags().StringVar(&genOut, "out", "responses.json", "output JSON path")
	generateCmd.Flags().BoolVar(&genEstimateOnly, "estimate-cost", false, "estimate token cost and exit without generating")
	generateCmd.Flags().BoolVar(&genSuppress, "suppress-content-filter", true, "record content-filter rejections as non-completions")

	_ = generateCmd.MarkFlagRequired("prompts")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if genCount > 0 {
		cfg.Generation.Count = genCount
	}
	if genSystemPrompt != "" {
		cfg.Generation.SystemPrompt = genSystemPrompt
	}
	if genModel != "" {
		cfg.Generation.Model = genModel
	}

	prompts, err := worker.ReadPromptsFromFile(genPrompts)
	if err != nil {
		return fmt.Errorf("read prompts: %w", err)
	}
	if len(prompts) == 0 {
		return fmt.Errorf("no prompts found in %s", genPrompts)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Loaded %d prompts from %s\n", len(prompts), genPrompts)
	}

	if genEstimateOnly {
		estimate, err := generate.EstimateCost(prompts, nil, cfg.Generation.Model, cfg.Generation.Count)
		if err != nil {
			return err
		}
		return writeJSON(estimate, "")
	}

	generator, err := generate.NewGenerator(cfg.Generation, os.Getenv("OPENAI_API_KEY"))
	if err != nil {
		return fmt.Errorf("build generator: %w", err)
	}
	if genSuppress {
		generator.Suppress = generate.SuppressContentFilter
	}

	result, err := generator.Generate(context.Background(), prompts, cfg.Generation.Count)
	if err != nil {
		return fmt.Errorf("generate responses: %w", err)
	}

	if result.Metadata.NonCompletionRate > 0 {
		fmt.Printf("Warning: non-completion rate %.2f%%\n", result.Metadata.NonCompletionRate*100)
	}

	return writeJSON(result, genOut)
}
