package corpus

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"
)

// Index is an immutable similarity index over a rule corpus. Once built it
// is never mutated; rebuilds construct a new Index and publish it through a
// Snapshot. All methods are safe for concurrent use.
type Index struct {
	rules   []RuleEntry
	vectors []SparseVector
	vec     *Vectorizer
	builtAt time.Time
	version string
}

// BuildIndex fits the text representation over the given rules and indexes
// them. Rules are ordered by RuleID internally so the build is independent
// of input order.
func BuildIndex(rules []RuleEntry, version string) (*Index, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("empty rule corpus")
	}
	ordered := make([]RuleEntry, len(rules))
	copy(ordered, rules)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].RuleID < ordered[j].RuleID })

	docs := make([]string, len(ordered))
	for i, r := range ordered {
		if r.RuleID == "" {
			return nil, fmt.Errorf("rule %d: empty rule_id", i)
		}
		docs[i] = r.RegulationText
	}

	vec := FitVectorizer(docs)
	return newIndex(ordered, vec, version)
}

// RestoreIndex rebuilds an index from persisted rules and a persisted
// vocabulary, without refitting.
func RestoreIndex(rules []RuleEntry, vocab Vocabulary, version string) (*Index, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("empty rule corpus")
	}
	ordered := make([]RuleEntry, len(rules))
	copy(ordered, rules)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].RuleID < ordered[j].RuleID })
	return newIndex(ordered, NewVectorizer(vocab), version)
}

func newIndex(ordered []RuleEntry, vec *Vectorizer, version string) (*Index, error) {
	vectors := make([]SparseVector, len(ordered))
	for i, r := range ordered {
		vectors[i] = vec.Transform(r.RegulationText)
	}
	return &Index{
		rules:   ordered,
		vectors: vectors,
		vec:     vec,
		builtAt: time.Now().UTC(),
		version: version,
	}, nil
}

// Retrieve returns the k closest rules to the query text, ordered by
// descending similarity, ties broken by ascending RuleID. Identical input
// against the same index always yields the same ordering and scores.
func (ix *Index) Retrieve(actionText string, k int) []Match {
	if k <= 0 {
		return nil
	}
	query := ix.vec.Transform(actionText)

	matches := make([]Match, len(ix.rules))
	for i, r := range ix.rules {
		matches[i] = Match{Rule: r, Score: Cosine(query, ix.vectors[i])}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Rule.RuleID < matches[j].Rule.RuleID
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k]
}

// Rules returns the indexed rules in RuleID order.
func (ix *Index) Rules() []RuleEntry { return ix.rules }

// Vocabulary returns the fitted term table for persistence.
func (ix *Index) Vocabulary() Vocabulary { return ix.vec.Vocabulary() }

// Len returns the number of indexed rules.
func (ix *Index) Len() int { return len(ix.rules) }

// Version returns the corpus version label the index was built from.
func (ix *Index) Version() string { return ix.version }

// BuiltAt returns the build timestamp.
func (ix *Index) BuiltAt() time.Time { return ix.builtAt }

// Snapshot publishes the live index. Readers always observe a fully built
// index: rebuilds construct a complete replacement off the hot path and
// Swap publishes it atomically.
type Snapshot struct {
	current atomic.Pointer[Index]
}

// NewSnapshot publishes an initial index.
func NewSnapshot(ix *Index) *Snapshot {
	s := &Snapshot{}
	s.current.Store(ix)
	return s
}

// Current returns the published index.
func (s *Snapshot) Current() *Index { return s.current.Load() }

// Swap atomically replaces the published index.
func (s *Snapshot) Swap(ix *Index) { s.current.Store(ix) }
