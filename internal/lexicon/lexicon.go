// Package lexicon holds the immutable word lists used by the stereotype metrics:
// stop words, protected attribute group lexicons, and target stereotype words.
package lexicon

import (
	"fmt"
	"sort"
	"strings"
)

// Target categories for the default stereotype word lists
const (
	CategoryAdjective  = "adjective"
	CategoryProfession = "profession"
)

// Set is a case-normalized membership set of words
type Set map[string]struct{}

// NewSet builds a set from a word list, lower-casing each entry
func NewSet(words []string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[strings.ToLower(w)] = struct{}{}
	}
	return s
}

// Contains reports whether the set holds the given (already normalized) word
func (s Set) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Words returns the set's members in sorted order
func (s Set) Words() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Group is a protected attribute group: a name and its word lexicon
type Group struct {
	Name  string
	Words Set
}

// Store holds all word lists for one evaluation run. Read-only after construction.
type Store struct {
	stopwords Set
	groups    []Group
	targets   []string
	targetSet Set
	category  string
}

// Option customizes store construction
type Option func(*storeOptions)

type storeOptions struct {
	category string
	targets  []string
	groups   map[string][]string
}

// WithCategory selects the default target word list ("adjective" or "profession")
func WithCategory(category string) Option {
	return func(o *storeOptions) { o.category = category }
}

// WithStereotypeWords sets an explicit target word list.
// Takes precedence over the category default.
func WithStereotypeWords(words []string) Option {
	return func(o *storeOptions) { o.targets = words }
}

// WithGroups sets custom protected attribute group lexicons.
// Empty means the default male/female gender lexicons.
func WithGroups(groups map[string][]string) Option {
	return func(o *storeOptions) { o.groups = groups }
}

// NewStore builds an immutable lexicon store
func NewStore(opts ...Option) (*Store, error) {
	o := storeOptions{category: CategoryAdjective}
	for _, opt := range opts {
		opt(&o)
	}

	var targets []string
	switch {
	case len(o.targets) > 0:
		// Explicit word list overrides the category default
		targets = normalize(o.targets)
	case o.category == CategoryAdjective:
		targets = normalize(adjectiveWords)
	case o.category == CategoryProfession:
		targets = normalize(professionWords)
	default:
		return nil, fmt.Errorf("unknown target category: %s (supported: adjective, profession)", o.category)
	}

	var groups []Group
	if len(o.groups) == 0 {
		groups = []Group{
			{Name: "male", Words: NewSet(maleWords)},
			{Name: "female", Words: NewSet(femaleWords)},
		}
	} else {
		// Deterministic group order regardless of map iteration
		names := make([]string, 0, len(o.groups))
		for name := range o.groups {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if len(o.groups[name]) == 0 {
				return nil, fmt.Errorf("group %q has an empty word list", name)
			}
			groups = append(groups, Group{Name: name, Words: NewSet(o.groups[name])})
		}
	}

	return &Store{
		stopwords: NewSet(stopWords),
		groups:    groups,
		targets:   targets,
		targetSet: NewSet(targets),
		category:  o.category,
	}, nil
}

// Stopwords returns the stop word set
func (s *Store) Stopwords() Set { return s.stopwords }

// Groups returns the protected attribute groups in deterministic order
func (s *Store) Groups() []Group { return s.groups }

// Targets returns the target stereotype words in deterministic order
func (s *Store) Targets() []string { return s.targets }

// IsTarget reports whether the normalized word is a target stereotype word
func (s *Store) IsTarget(word string) bool { return s.targetSet.Contains(word) }

// InAnyGroup reports whether the normalized word belongs to any group lexicon
func (s *Store) InAnyGroup(word string) bool {
	for _, g := range s.groups {
		if g.Words.Contains(word) {
			return true
		}
	}
	return false
}

// normalize lower-cases and deduplicates a word list, preserving first-seen order
func normalize(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		lw := strings.ToLower(w)
		if !seen[lw] {
			seen[lw] = true
			out = append(out, lw)
		}
	}
	return out
}
