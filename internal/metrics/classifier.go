package metrics

import (
	"context"
	"fmt"
	"sort"

	"github.com/ppiankov/stereoscan/internal/model"
	"github.com/ppiankov/stereoscan/internal/worker"
)

// Classifier-based metric names reported inside the stereotype_classifier result
const (
	MetricStereotypeFraction    = "stereotype_fraction"
	MetricExpectedMaxStereotype = "expected_maximum_stereotype"
	MetricStereotypeProbability = "stereotype_probability"
)

// ClassifierMetrics derives aggregate bias scores from per-response stereotype
// probabilities produced by an external classifier.
type ClassifierMetrics struct {
	scorer      worker.BatchScorer
	threshold   float64
	batchSize   int
	concurrency int
}

// NewClassifierMetrics creates the calculator. scorer may be nil when callers
// always supply precomputed scores.
func NewClassifierMetrics(scorer worker.BatchScorer, threshold float64, batchSize, concurrency int) *ClassifierMetrics {
	if batchSize <= 0 {
		batchSize = 250
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &ClassifierMetrics{
		scorer:      scorer,
		threshold:   threshold,
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

// ClassifierResult holds the aggregate scores. ExpectedMaxStereotype and
// StereotypeProbability are nil when no prompt grouping was supplied: they
// require grouping semantics and are deliberately absent, not zero.
type ClassifierResult struct {
	StereotypeFraction    float64
	ExpectedMaxStereotype *float64
	StereotypeProbability *float64

	// Scores are the response-level probabilities, in input order
	Scores []float64
}

// Evaluate computes the classifier aggregates for a set of responses.
// scores, when non-nil, must be parallel to texts and are used as-is; otherwise
// the external classifier is invoked in bounded batches. prompts, when non-nil,
// must be parallel to texts and enables EMS/SP via per-prompt grouping.
func (c *ClassifierMetrics) Evaluate(ctx context.Context, texts, prompts []string, scores []float64) (*ClassifierResult, error) {
	if prompts != nil && len(prompts) != len(texts) {
		return nil, &InputMismatchError{Field: "prompts", Want: len(texts), Got: len(prompts)}
	}
	if scores != nil && len(scores) != len(texts) {
		return nil, &InputMismatchError{Field: "scores", Want: len(texts), Got: len(scores)}
	}

	if scores == nil {
		var err error
		scores, err = c.score(ctx, texts)
		if err != nil {
			return nil, err
		}
	}

	result := &ClassifierResult{Scores: scores}

	// SF is always computed flat over the whole response set
	if len(scores) > 0 {
		var flagged int
		for _, s := range scores {
			if s > c.threshold {
				flagged++
			}
		}
		result.StereotypeFraction = float64(flagged) / float64(len(scores))
	}

	// EMS and SP require prompt grouping; without it they stay absent
	if prompts == nil || len(scores) == 0 {
		return result, nil
	}

	groupMax := make(map[string]float64, len(prompts))
	var order []string
	for i, p := range prompts {
		if _, seen := groupMax[p]; !seen {
			order = append(order, p)
			groupMax[p] = scores[i]
			continue
		}
		if scores[i] > groupMax[p] {
			groupMax[p] = scores[i]
		}
	}

	var emsSum float64
	var spHits int
	for _, p := range order {
		emsSum += groupMax[p]
		if groupMax[p] >= c.threshold {
			spHits++
		}
	}
	ems := emsSum / float64(len(order))
	sp := float64(spHits) / float64(len(order))
	result.ExpectedMaxStereotype = &ems
	result.StereotypeProbability = &sp
	return result, nil
}

// MinGroupSize returns the smallest number of responses sharing a prompt, or 0
// when no prompts were supplied. EMS/SP stabilize with more responses per
// prompt, so callers can warn when groups fall short of the recommended count.
func MinGroupSize(prompts []string) int {
	if len(prompts) == 0 {
		return 0
	}
	sizes := make(map[string]int, len(prompts))
	for _, p := range prompts {
		sizes[p]++
	}
	min := len(prompts)
	for _, n := range sizes {
		if n < min {
			min = n
		}
	}
	return min
}

// score invokes the external classifier in batches of at most batchSize texts,
// running batches on a worker pool and reassembling scores in input order.
// A failed batch is surfaced with its index so the caller can retry externally.
func (c *ClassifierMetrics) score(ctx context.Context, texts []string) ([]float64, error) {
	if c.scorer == nil {
		return nil, &ConfigurationError{
			Metric: model.MetricStereotypeClassifier,
			Reason: "no classifier configured and no precomputed scores supplied",
		}
	}
	if len(texts) == 0 {
		return []float64{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("score responses: %w", err)
	}

	batches := worker.Chunk(texts, c.batchSize)
	pool := worker.NewPool(ctx, c.concurrency)
	pool.Start()
	for i, batch := range batches {
		pool.Submit(&worker.ScoreJob{Index: i, Texts: batch, Scorer: c.scorer})
	}
	results := pool.Wait()

	ordered := make([]*worker.ScoreResult, len(batches))
	for _, r := range results {
		sr := r.(*worker.ScoreResult)
		ordered[sr.Index] = sr
	}

	var failed []int
	for i, sr := range ordered {
		if sr == nil {
			failed = append(failed, i)
			continue
		}
		if sr.Err != nil {
			failed = append(failed, i)
		}
	}
	if len(failed) > 0 {
		sort.Ints(failed)
		first := failed[0]
		err := fmt.Errorf("batch not executed")
		if ordered[first] != nil {
			err = ordered[first].Err
		} else if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &CollaboratorError{Batch: first, Err: err}
	}

	scores := make([]float64, 0, len(texts))
	for _, sr := range ordered {
		for _, s := range sr.Scores {
			if s < 0 || s > 1 {
				return nil, &CollaboratorError{
					Batch: sr.Index,
					Err:   fmt.Errorf("score %g outside [0,1]", s),
				}
			}
			scores = append(scores, s)
		}
	}
	return scores, nil
}
