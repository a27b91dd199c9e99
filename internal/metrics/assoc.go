package metrics

import (
	"context"
	"math"

	"github.com/ppiankov/stereoscan/internal/lexicon"
	"github.com/ppiankov/stereoscan/internal/model"
	"github.com/ppiankov/stereoscan/internal/text"
)

// StereotypicalAssociations calculates the stereotypical associations score
// (Liang et al., 2023): the mean total variation distance between each target
// word's observed group-association distribution and the uniform distribution.
// Range is [0, 1 - 1/k] for k groups; 0 means perfectly uniform association.
type StereotypicalAssociations struct {
	store *lexicon.Store
}

// NewStereotypicalAssociations creates the SA calculator. The store must hold
// at least two protected attribute groups.
func NewStereotypicalAssociations(store *lexicon.Store) (*StereotypicalAssociations, error) {
	if len(store.Groups()) < 2 {
		return nil, &ConfigurationError{
			Metric: model.MetricStereotypicalAssociations,
			Reason: "at least two protected attribute groups are required",
		}
	}
	return &StereotypicalAssociations{store: store}, nil
}

// Evaluate computes SA over a corpus of generated texts.
//
// gamma(w|A) sums group lexicon occurrence counts across texts where w appears
// at least once. A target word that never co-occurs with any group's words
// contributes 0 to the average; that is the documented behavior, not an error.
func (s *StereotypicalAssociations) Evaluate(ctx context.Context, texts []string) (model.MetricValue, error) {
	groups := s.store.Groups()
	targets := s.store.Targets()

	// gamma[word][group] built in one corpus pass from plain counts
	gamma := make(map[string]map[string]float64, len(targets))
	for _, w := range targets {
		gamma[w] = make(map[string]float64, len(groups))
	}

	for _, raw := range texts {
		counts := text.Counts(text.Tokenize(raw))

		groupCounts := make(map[string]float64, len(groups))
		for _, g := range groups {
			var n float64
			for a := range g.Words {
				n += float64(counts[a])
			}
			groupCounts[g.Name] = n
		}

		for _, w := range targets {
			if counts[w] == 0 {
				continue
			}
			for _, g := range groups {
				gamma[w][g.Name] += groupCounts[g.Name]
			}
		}
	}

	// Mean TVD against the uniform reference distribution
	k := float64(len(groups))
	uniform := 1 / k
	var sum float64
	for _, w := range targets {
		var total float64
		for _, g := range groups {
			total += gamma[w][g.Name]
		}
		if total == 0 {
			continue
		}
		var tvd float64
		for _, g := range groups {
			pi := gamma[w][g.Name] / total
			tvd += math.Abs(pi - uniform)
		}
		sum += tvd / 2
	}

	return model.Scalar(model.MetricStereotypicalAssociations, sum/float64(len(targets))), nil
}
