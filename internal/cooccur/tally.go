// Package cooccur computes distance-weighted co-occurrence tallies between
// target stereotype words and protected attribute group lexicons.
package cooccur

import "github.com/ppiankov/stereoscan/internal/lexicon"

// Tally accumulates weighted co-occurrence counts over a corpus.
// Built once per corpus pass by a single reduction over per-text partials;
// read-only after construction.
type Tally struct {
	// Weighted maps group name -> target word -> accumulated weighted co-occurrence.
	// Every (target, group) entry exists, zero-valued when no pair qualified.
	Weighted map[string]map[string]float64

	// Denominator maps group name -> total weighted co-occurrence of that group
	// with every non-stop, non-lexicon word in the corpus
	Denominator map[string]float64

	// GroupCount maps group name -> plain occurrence count of its lexicon words
	GroupCount map[string]float64

	// OtherCount is the plain occurrence count of non-stop, non-lexicon words
	OtherCount float64
}

// newTally returns a zero-filled tally covering every (target, group) pair
func newTally(groups []lexicon.Group, targets []string) *Tally {
	t := &Tally{
		Weighted:    make(map[string]map[string]float64, len(groups)),
		Denominator: make(map[string]float64, len(groups)),
		GroupCount:  make(map[string]float64, len(groups)),
	}
	for _, g := range groups {
		words := make(map[string]float64, len(targets))
		for _, w := range targets {
			words[w] = 0
		}
		t.Weighted[g.Name] = words
		t.Denominator[g.Name] = 0
		t.GroupCount[g.Name] = 0
	}
	return t
}

// Merge adds another tally into this one. Addition is commutative and
// associative, so merge order only affects floating-point rounding.
func (t *Tally) Merge(other *Tally) {
	for group, words := range other.Weighted {
		for w, v := range words {
			t.Weighted[group][w] += v
		}
	}
	for group, v := range other.Denominator {
		t.Denominator[group] += v
	}
	for group, v := range other.GroupCount {
		t.GroupCount[group] += v
	}
	t.OtherCount += other.OtherCount
}

// RelativeCooccur returns the corpus-wide weighted co-occurrence of a target
// word with a group, normalized by the group's denominator. ok is false when
// the denominator is zero (0/0 must not silently become 0 or Inf).
func (t *Tally) RelativeCooccur(word, group string) (value float64, ok bool) {
	d := t.Denominator[group]
	if d == 0 {
		return 0, false
	}
	return t.Weighted[group][word] / d, true
}

// RelativeCount returns the group lexicon's plain occurrence frequency relative
// to all non-stop, non-lexicon words. ok is false when no qualifying words
// appeared in the corpus.
func (t *Tally) RelativeCount(group string) (value float64, ok bool) {
	if t.OtherCount == 0 {
		return 0, false
	}
	return t.GroupCount[group] / t.OtherCount, true
}
