// Package metrics implements the stereotype bias metrics: the co-occurrence
// bias score, stereotypical associations, and classifier-based aggregates,
// plus the facade that runs a configured subset of them over a corpus of
// generated texts.
package metrics

import (
	"context"
	"fmt"

	"github.com/ppiankov/stereoscan/internal/lexicon"
	"github.com/ppiankov/stereoscan/internal/model"
	"github.com/ppiankov/stereoscan/internal/worker"
)

// EvalInput is one evaluation request. Texts is required; Prompts and Scores,
// when non-nil, must be parallel to Texts.
type EvalInput struct {
	Texts   []string
	Prompts []string
	Scores  []float64

	// ReturnData includes response-level stereotype scores in the result
	ReturnData bool
}

// StereotypeMetrics orchestrates a configurable subset of the stereotype
// metrics and merges their outputs into a single result.
type StereotypeMetrics struct {
	store  *lexicon.Store
	cfg    *model.Config
	scorer worker.BatchScorer
}

// NewStereotypeMetrics creates the facade. scorer is the external classifier
// collaborator; it may be nil when the classifier metric is not selected or
// when callers always supply precomputed scores.
func NewStereotypeMetrics(store *lexicon.Store, cfg *model.Config, scorer worker.BatchScorer) (*StereotypeMetrics, error) {
	for _, name := range cfg.Metrics {
		switch name {
		case model.MetricCooccurrenceBias, model.MetricStereotypicalAssociations, model.MetricStereotypeClassifier:
		default:
			return nil, &ConfigurationError{Metric: name, Reason: "unknown metric"}
		}
	}
	return &StereotypeMetrics{store: store, cfg: cfg, scorer: scorer}, nil
}

// Evaluate runs the configured metrics over the input corpus.
//
// Non-completion sentinels are always excluded from word counting; for the
// classifier metrics they are dropped entirely unless CountNonCompletions keeps
// them in the stereotype fraction's denominator. Already-supplied scores are
// never recomputed.
func (m *StereotypeMetrics) Evaluate(ctx context.Context, in EvalInput) (*model.EvalResult, error) {
	// 1. Validate parallel input lengths
	if in.Prompts != nil && len(in.Prompts) != len(in.Texts) {
		return nil, &InputMismatchError{Field: "prompts", Want: len(in.Texts), Got: len(in.Prompts)}
	}
	if in.Scores != nil && len(in.Scores) != len(in.Texts) {
		return nil, &InputMismatchError{Field: "scores", Want: len(in.Texts), Got: len(in.Scores)}
	}

	result := &model.EvalResult{Metrics: make(map[string]model.MetricValue)}

	// 2. Word counting never sees non-completion sentinels
	counting := make([]string, 0, len(in.Texts))
	for _, t := range in.Texts {
		if t != model.NonCompletion {
			counting = append(counting, t)
		}
	}

	for _, name := range m.cfg.Metrics {
		switch name {
		case model.MetricCooccurrenceBias:
			calc, err := NewCooccurrenceBias(m.store, m.cfg.Stereotype.DecayBase, m.cfg.Stereotype.COBSMode)
			if err != nil {
				return nil, err
			}
			value, err := calc.Evaluate(ctx, counting)
			if err != nil {
				return nil, fmt.Errorf("evaluate %s: %w", name, err)
			}
			result.Metrics[name] = value

		case model.MetricStereotypicalAssociations:
			calc, err := NewStereotypicalAssociations(m.store)
			if err != nil {
				return nil, err
			}
			value, err := calc.Evaluate(ctx, counting)
			if err != nil {
				return nil, fmt.Errorf("evaluate %s: %w", name, err)
			}
			result.Metrics[name] = value

		case model.MetricStereotypeClassifier:
			if err := m.evaluateClassifier(ctx, in, result); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// evaluateClassifier runs the classifier aggregates and merges them, plus the
// optional response-level breakdown, into the result
func (m *StereotypeMetrics) evaluateClassifier(ctx context.Context, in EvalInput, result *model.EvalResult) error {
	texts, prompts, scores := m.filterNonCompletions(in)

	calc := NewClassifierMetrics(m.scorer, m.cfg.Classifier.Threshold, m.cfg.Classifier.BatchSize, m.cfg.Classifier.Concurrency)
	cr, err := calc.Evaluate(ctx, texts, prompts, scores)
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", model.MetricStereotypeClassifier, err)
	}

	result.Metrics[MetricStereotypeFraction] = model.Scalar(MetricStereotypeFraction, cr.StereotypeFraction)
	if cr.ExpectedMaxStereotype != nil {
		result.Metrics[MetricExpectedMaxStereotype] = model.Scalar(MetricExpectedMaxStereotype, *cr.ExpectedMaxStereotype)
	}
	if cr.StereotypeProbability != nil {
		result.Metrics[MetricStereotypeProbability] = model.Scalar(MetricStereotypeProbability, *cr.StereotypeProbability)
	}

	if in.ReturnData {
		records := make([]model.ResponseRecord, len(texts))
		for i := range texts {
			score := cr.Scores[i]
			records[i] = model.ResponseRecord{Response: texts[i], Score: &score}
			if prompts != nil {
				records[i].Prompt = prompts[i]
			}
		}
		result.Data = records
	}
	return nil
}

// filterNonCompletions drops sentinel responses (and their prompt/score
// entries) from classifier input unless configured to keep them
func (m *StereotypeMetrics) filterNonCompletions(in EvalInput) (texts, prompts []string, scores []float64) {
	if m.cfg.Classifier.CountNonCompletions {
		return in.Texts, in.Prompts, in.Scores
	}

	texts = make([]string, 0, len(in.Texts))
	if in.Prompts != nil {
		prompts = make([]string, 0, len(in.Texts))
	}
	if in.Scores != nil {
		scores = make([]float64, 0, len(in.Texts))
	}
	for i, t := range in.Texts {
		if t == model.NonCompletion {
			continue
		}
		texts = append(texts, t)
		if in.Prompts != nil {
			prompts = append(prompts, in.Prompts[i])
		}
		if in.Scores != nil {
			scores = append(scores, in.Scores[i])
		}
	}
	return texts, prompts, scores
}
