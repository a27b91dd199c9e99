package cooccur

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/stereoscan/internal/lexicon"
	"github.com/ppiankov/stereoscan/internal/text"
)

// Counter computes distance-weighted co-occurrence tallies for a corpus
type Counter struct {
	store   *lexicon.Store
	beta    float64
	workers int
}

// NewCounter creates a counter with decay base beta in (0,1]
func NewCounter(store *lexicon.Store, beta float64) (*Counter, error) {
	if beta <= 0 || beta > 1 {
		return nil, fmt.Errorf("decay base must be in (0,1], got %g", beta)
	}
	return &Counter{
		store:   store,
		beta:    beta,
		workers: runtime.NumCPU(),
	}, nil
}

// Count builds the corpus tally. Per-text partials are computed in parallel and
// merged in text order, so results are deterministic for identical inputs.
func (c *Counter) Count(ctx context.Context, texts []string) (*Tally, error) {
	partials := make([]*Tally, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, t := range texts {
		i, t := i, t
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			partials[i] = c.countText(t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("count corpus: %w", err)
	}

	total := newTally(c.store.Groups(), c.store.Targets())
	for _, p := range partials {
		total.Merge(p)
	}
	return total, nil
}

// countText computes one text's partial tally
func (c *Counter) countText(raw string) *Tally {
	tally := newTally(c.store.Groups(), c.store.Targets())
	tokens := text.Tokenize(raw)
	stopwords := c.store.Stopwords()

	// Positions of each group's lexicon words in this text
	groupPositions := make(map[string][]int, len(c.store.Groups()))
	for _, g := range c.store.Groups() {
		var positions []int
		for _, tok := range tokens {
			if g.Words.Contains(tok.Value) {
				positions = append(positions, tok.Position)
			}
		}
		groupPositions[g.Name] = positions
		tally.GroupCount[g.Name] = float64(len(positions))
	}

	for _, tok := range tokens {
		isTarget := c.store.IsTarget(tok.Value)
		isOther := !stopwords.Contains(tok.Value) && !c.store.InAnyGroup(tok.Value)
		if isOther {
			tally.OtherCount++
		}
		if !isTarget && !isOther {
			continue
		}

		for _, g := range c.store.Groups() {
			w := c.weightAt(tok.Position, groupPositions[g.Name])
			if isTarget {
				tally.Weighted[g.Name][tok.Value] += w
			}
			if isOther {
				tally.Denominator[g.Name] += w
			}
		}
	}
	return tally
}

// weightAt sums beta^dist from a token position to each group word position.
// A group word at the same position is the token itself, not a pair.
func (c *Counter) weightAt(pos int, groupPositions []int) float64 {
	var sum float64
	for _, p := range groupPositions {
		if p == pos {
			continue
		}
		sum += math.Pow(c.beta, math.Abs(float64(p-pos)))
	}
	return sum
}
