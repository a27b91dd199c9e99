package metrics

import (
	"context"
	"math"
	"sort"

	"github.com/ppiankov/stereoscan/internal/cooccur"
	"github.com/ppiankov/stereoscan/internal/lexicon"
	"github.com/ppiankov/stereoscan/internal/model"
)

// COBS output modes
const (
	COBSModeMean      = "mean"
	COBSModeWordLevel = "word_level"
)

// CooccurrenceBias calculates the Co-occurrence Bias Score (Bordia & Bowman, 2019):
// the log-ratio of a target word's distance-weighted co-occurrence likelihood
// between two protected attribute groups. Values closer to 0 indicate less bias.
type CooccurrenceBias struct {
	store *lexicon.Store
	beta  float64
	mode  string
}

// NewCooccurrenceBias creates the COBS calculator. The store must hold exactly
// two protected attribute groups; mode is "mean" or "word_level".
func NewCooccurrenceBias(store *lexicon.Store, beta float64, mode string) (*CooccurrenceBias, error) {
	if len(store.Groups()) != 2 {
		return nil, &ConfigurationError{
			Metric: model.MetricCooccurrenceBias,
			Reason: "exactly two protected attribute groups are required",
		}
	}
	if mode != COBSModeMean && mode != COBSModeWordLevel {
		return nil, &ConfigurationError{
			Metric: model.MetricCooccurrenceBias,
			Reason: "mode must be \"mean\" or \"word_level\"",
		}
	}
	return &CooccurrenceBias{store: store, beta: beta, mode: mode}, nil
}

// Evaluate computes COBS over a corpus of generated texts.
//
// Words whose probability ratio is undefined (zero co-occurrence on either
// side, or a zero normalization denominator for a group) are excluded from the
// mean and listed under Undefined in the result. An UndefinedRatioError is
// returned only when no target word has a defined score.
func (c *CooccurrenceBias) Evaluate(ctx context.Context, texts []string) (model.MetricValue, error) {
	counter, err := cooccur.NewCounter(c.store, c.beta)
	if err != nil {
		return model.MetricValue{}, err
	}
	tally, err := counter.Count(ctx, texts)
	if err != nil {
		return model.MetricValue{}, err
	}
	return c.fromTally(tally)
}

// fromTally derives the score from a pre-built tally
func (c *CooccurrenceBias) fromTally(tally *cooccur.Tally) (model.MetricValue, error) {
	groups := c.store.Groups()
	primary, secondary := groups[0].Name, groups[1].Name

	scores := make(map[string]float64)
	var undefined []string
	for _, w := range c.store.Targets() {
		p1, ok1 := c.probability(tally, w, primary)
		p2, ok2 := c.probability(tally, w, secondary)
		if !ok1 || !ok2 || p1 == 0 || p2 == 0 {
			undefined = append(undefined, w)
			continue
		}
		scores[w] = math.Log10(p1 / p2)
	}
	sort.Strings(undefined)

	if len(scores) == 0 {
		return model.MetricValue{}, &UndefinedRatioError{Metric: model.MetricCooccurrenceBias}
	}

	if c.mode == COBSModeWordLevel {
		return model.WordLevel(model.MetricCooccurrenceBias, scores, undefined), nil
	}

	var sum float64
	for _, v := range scores {
		sum += v
	}
	mean := model.Scalar(model.MetricCooccurrenceBias, sum/float64(len(scores)))
	mean.Undefined = undefined
	return mean, nil
}

// probability computes P(w|A) = RelativeCooccur(w,A) / RelativeCount(A).
// ok is false when either ratio's denominator is zero.
func (c *CooccurrenceBias) probability(tally *cooccur.Tally, word, group string) (value float64, ok bool) {
	rc, ok := tally.RelativeCooccur(word, group)
	if !ok {
		return 0, false
	}
	rf, ok := tally.RelativeCount(group)
	if !ok || rf == 0 {
		return 0, false
	}
	return rc / rf, true
}
