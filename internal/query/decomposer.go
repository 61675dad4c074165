package query

import (
	"strings"
)

// MaxSubQueries caps decomposition and expansion output.
const MaxSubQueries = 5

// aspectVocabulary is the fixed aspect list used to detect multi-aspect
// queries. A query mentioning two or more aspects is split into one
// sub-query per aspect.
var aspectVocabulary = []string{
	"performance", "cost", "safety", "speed", "accuracy",
	"licensing", "features", "quality", "reliability", "pricing",
}

// Expander produces sub-queries (decomposition) and contextually
// expanded variants of a query. It never fails: when nothing applies it
// returns the original query unchanged.
type Expander struct {
	understanding *Understanding
}

// NewExpander creates an expander backed by the given understanding
// component (and through it, its knowledge base).
func NewExpander(u *Understanding) *Expander {
	return &Expander{understanding: u}
}

// Decompose splits a query into simpler sub-queries. The original
// query is always first; the result is deduplicated and capped at
// MaxSubQueries.
//
// Three strategies apply, in order:
//  1. comparison queries with ≥2 entities split into per-entity queries
//  2. queries mentioning ≥2 known aspects split into per-aspect queries
//  3. conjunction clauses (" and ", " or ") split anchored on the
//     detected main subject
func (e *Expander) Decompose(queryText string) []string {
	a := e.understanding.Analyze(queryText)
	return e.DecomposeAnalyzed(a)
}

// DecomposeAnalyzed is Decompose for a query that is already analyzed,
// avoiding a second classification pass inside the pipeline.
func (e *Expander) DecomposeAnalyzed(a *Analysis) []string {
	out := newQuerySet(MaxSubQueries)
	out.add(a.Raw)

	if a.Type == TypeComparison && len(a.Entities) >= 2 {
		focus := e.nonEntityTerms(a)
		for _, entity := range a.Entities {
			sub := entity
			if len(focus) > 0 {
				sub = entity + " " + strings.Join(focus, " ")
			}
			out.add(sub)
		}
	}

	if aspects := presentAspects(a.Raw); len(aspects) >= 2 {
		subject := e.mainSubject(a)
		for _, aspect := range aspects {
			out.add(strings.TrimSpace(subject + " " + aspect))
		}
	}

	if clauses := splitConjunctions(a.Raw); len(clauses) >= 2 {
		subject := e.mainSubject(a)
		for _, clause := range clauses {
			clause = strings.TrimSpace(clause)
			if len(strings.Fields(clause)) < 2 {
				continue
			}
			// Anchor clauses that lost the subject during the split.
			if subject != "" && !strings.Contains(strings.ToLower(clause), strings.ToLower(subject)) {
				clause = subject + " " + clause
			}
			out.add(clause)
		}
	}

	return out.list()
}

// nonEntityTerms returns key terms that are not entity names, keeping
// the per-entity sub-queries focused on the comparison dimension
// ("gpt-5 reasoning" rather than "gpt-5 claude").
func (e *Expander) nonEntityTerms(a *Analysis) []string {
	entitySet := make(map[string]bool, len(a.Entities))
	for _, ent := range a.Entities {
		entitySet[ent] = true
	}
	var focus []string
	for _, term := range a.KeyTerms {
		if !entitySet[term] {
			focus = append(focus, term)
		}
	}
	return focus
}

// mainSubject picks the anchor for aspect and conjunction sub-queries:
// the first entity if any, else the first key term, else empty.
func (e *Expander) mainSubject(a *Analysis) string {
	if len(a.Entities) > 0 {
		return a.Entities[0]
	}
	if len(a.KeyTerms) > 0 {
		return a.KeyTerms[0]
	}
	return ""
}

// presentAspects returns the aspects from the fixed vocabulary found in
// the query, in vocabulary order for determinism.
func presentAspects(queryText string) []string {
	lower := strings.ToLower(queryText)
	var present []string
	for _, aspect := range aspectVocabulary {
		if containsWord(lower, aspect) {
			present = append(present, aspect)
		}
	}
	return present
}

// splitConjunctions splits on " and " / " or " connectors.
func splitConjunctions(queryText string) []string {
	parts := []string{queryText}
	for _, sep := range []string{" and ", " or "} {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}
	return parts
}

// querySet accumulates deduplicated queries up to a cap, preserving
// insertion order. Dedup is case-insensitive on trimmed text.
type querySet struct {
	seen  map[string]bool
	out   []string
	limit int
}

func newQuerySet(limit int) *querySet {
	return &querySet{seen: make(map[string]bool), limit: limit}
}

func (s *querySet) add(q string) {
	q = strings.TrimSpace(q)
	if q == "" || len(s.out) >= s.limit {
		return
	}
	key := strings.ToLower(q)
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.out = append(s.out, q)
}

func (s *querySet) list() []string {
	return s.out
}
