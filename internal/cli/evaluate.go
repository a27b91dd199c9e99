package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/stereoscan/internal/classify"
	"github.com/ppiankov/stereoscan/internal/lexicon"
	"github.com/ppiankov/stereoscan/internal/metrics"
	"github.com/ppiankov/stereoscan/internal/model"
	"github.com/ppiankov/stereoscan/internal/worker"
)

var (
	evalResponses   string
	evalScores      string
	evalMetrics     []string
	evalCategory    string
	evalWords       []string
	evalBeta        float64
	evalMode        string
	evalThreshold   float64
	evalBatchSize   int
	evalKeepNonComp bool
	evalReturnData  bool
	evalOutJSON     string
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Compute stereotype bias metrics over generated responses",
	Long: `Evaluate computes the configured stereotype metrics over a set of
generated responses:
- Co-occurrence bias score (COBS)
- Stereotypical associations (SA)
- Classifier aggregates (stereotype fraction, expected maximum
  stereotype, stereotype probability)

Responses are read from a JSON file of {"prompt","response"} objects
(as written by 'stereoscan generate') or a plain text file with one
response per line. EMS and SP are only reported when prompt
associations are available.

Example:
  stereoscan evaluate --responses responses.json
  stereoscan evaluate --responses out.txt --metrics cooccurrence_bias --words confident,emotional
  stereoscan evaluate --responses responses.json --scores scores.json --json report.json`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evalResponses, "responses", "", "responses file (JSON or one per line, required)")
	evaluateCmd.Flags().StringVar(&evalScores, "scores", "", "precomputed classifier scores file (JSON array of floats)")
	evaluateCmd.Flags().StringSliceVar(&evalMetrics, "metrics", nil, "metrics to run (default: all configured)")
	evaluateCmd.Flags().StringVar(&evalCategory, "category", "", "target category: adjective or profession")
	evaluateCmd.Flags().StringSliceVar(&evalWords, "words", nil, "explicit stereotype word list (overrides category)")
	evaluateCmd.Flags().Float64Var(&evalBeta, "beta", 0, "co-occurrence decay base")
	evaluateCmd.Flags().StringVar(&evalMode, "mode", "", "COBS output mode: mean or word_level")
	evaluateCmd.Flags().Float64Var(&evalThreshold, "threshold", -1, "classifier threshold")
	evaluateCmd.Flags().IntVar(&evalBatchSize, "batch-size", 0, "classifier batch size")
	evaluateCmd.Flags().BoolVar(&evalKeepNonComp, "count-non-completions", false, "keep non-completion sentinels in the stereotype fraction denominator")
	evaluateCmd.Flags().BoolVar(&evalReturnData, "return-data", false, "include response-level stereotype scores in the report")
	evaluateCmd.Flags().StringVar(&evalOutJSON, "json", "", "write the report to this path instead of stdout")

	_ = evaluateCmd.MarkFlagRequired("responses")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyEvaluateFlags(cfg)

	// 1. Read responses (and prompt associations, when present)
	texts, prompts, err := readResponses(evalResponses)
	if err != nil {
		return fmt.Errorf("read responses: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Loaded %d responses from %s\n", len(texts), evalResponses)
	}
	if prompts != nil && metricSelected(cfg.Metrics, model.MetricStereotypeClassifier) {
		if n := metrics.MinGroupSize(prompts); n > 0 && n < cfg.Classifier.TopK {
			fmt.Printf("Warning: fewest responses for a prompt is %d; at least %d per prompt are recommended for stable grouped metrics\n", n, cfg.Classifier.TopK)
		}
	}

	// 2. Read precomputed scores, if supplied
	var scores []float64
	if evalScores != "" {
		scores, err = readScores(evalScores)
		if err != nil {
			return fmt.Errorf("read scores: %w", err)
		}
	}

	// 3. Build the lexicon store
	var opts []lexicon.Option
	if cfg.Stereotype.TargetCategory != "" {
		opts = append(opts, lexicon.WithCategory(cfg.Stereotype.TargetCategory))
	}
	if len(cfg.Stereotype.StereotypeWords) > 0 {
		opts = append(opts, lexicon.WithStereotypeWords(cfg.Stereotype.StereotypeWords))
	}
	if len(cfg.Stereotype.Groups) > 0 {
		opts = append(opts, lexicon.WithGroups(cfg.Stereotype.Groups))
	}
	store, err := lexicon.NewStore(opts...)
	if err != nil {
		return fmt.Errorf("build lexicon store: %w", err)
	}

	// 4. Build the classifier collaborator only when it will be needed
	var scorer worker.BatchScorer
	if scores == nil && metricSelected(cfg.Metrics, model.MetricStereotypeClassifier) {
		apiKey := os.Getenv("OPENAI_API_KEY")
		base, err := classify.NewOpenAIScorer(cfg.Classifier, apiKey)
		if err != nil {
			return fmt.Errorf("build classifier: %w", err)
		}
		scorer = base
		if cfg.Classifier.CacheTTL > 0 {
			scorer = classify.NewCachingScorer(base, time.Duration(cfg.Classifier.CacheTTL)*time.Second)
		}
	}

	// 5. Evaluate
	facade, err := metrics.NewStereotypeMetrics(store, cfg, scorer)
	if err != nil {
		return err
	}
	result, err := facade.Evaluate(context.Background(), metrics.EvalInput{
		Texts:      texts,
		Prompts:    prompts,
		Scores:     scores,
		ReturnData: evalReturnData || cfg.Output.ReturnData,
	})
	if err != nil {
		return err
	}

	// 6. Render the report
	return writeJSON(result, evalOutJSON)
}

// applyEvaluateFlags overlays explicit CLI flags onto the configuration
func applyEvaluateFlags(cfg *model.Config) {
	if len(evalMetrics) > 0 {
		cfg.Metrics = evalMetrics
	}
	if evalCategory != "" {
		cfg.Stereotype.TargetCategory = evalCategory
	}
	if len(evalWords) > 0 {
		cfg.Stereotype.StereotypeWords = evalWords
	}
	if evalBeta > 0 {
		cfg.Stereotype.DecayBase = evalBeta
	}
	if evalMode != "" {
		cfg.Stereotype.COBSMode = evalMode
	}
	if evalThreshold >= 0 {
		cfg.Classifier.Threshold = evalThreshold
	}
	if evalBatchSize > 0 {
		cfg.Classifier.BatchSize = evalBatchSize
	}
	if evalKeepNonComp {
		cfg.Classifier.CountNonCompletions = true
	}
}

func metricSelected(selected []string, name string) bool {
	for _, m := range selected {
		if m == name {
			return true
		}
	}
	return false
}

// readResponses loads a response corpus. JSON files carry prompt associations
// (either a full generation result or a bare data array); plain text files are
// one response per line with no prompts.
func readResponses(path string) (texts, prompts []string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	if strings.HasSuffix(path, ".json") {
		var full model.GenerationResult
		if err := json.Unmarshal(data, &full); err == nil && len(full.Data) > 0 {
			return splitData(full.Data)
		}
		var records []model.GenerationData
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, nil, fmt.Errorf("parse JSON: %w", err)
		}
		return splitData(records)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		texts = append(texts, line)
	}
	return texts, nil, nil
}

// splitData separates prompt/response pairs; prompts stay nil when every
// record's prompt is empty
func splitData(records []model.GenerationData) (texts, prompts []string, err error) {
	hasPrompts := false
	for _, r := range records {
		if r.Prompt != "" {
			hasPrompts = true
			break
		}
	}
	texts = make([]string, len(records))
	if hasPrompts {
		prompts = make([]string, len(records))
	}
	for i, r := range records {
		texts[i] = r.Response
		if hasPrompts {
			prompts[i] = r.Prompt
		}
	}
	return texts, prompts, nil
}

// readScores loads a JSON array of classifier probabilities
func readScores(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var scores []float64
	if err := json.Unmarshal(data, &scores); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return scores, nil
}

// writeJSON renders v as indented JSON to a file, or stdout when path is empty
func writeJSON(v interface{}, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote report: %s\n", path)
	}
	return nil
}
