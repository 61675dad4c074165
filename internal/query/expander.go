package query

import (
	"strings"
)

// Expand produces contextually expanded variants of a query for the
// given type. The original query is always first; the result is
// deduplicated and capped at MaxSubQueries. Expansion never fails: a
// query with no applicable context comes back unchanged as [query].
//
// Per-entity context injection:
//   - every detected entity adds its organization and category
//   - licensing/cost/implementation queries append the entity category
//   - comparison queries append related-entity terms
//   - capability/performance queries append key feature terms
//
// Type-level lexical expansion:
//   - performance queries gain a benchmark-vocabulary variant
//   - specification queries gain a "requirements specifications" variant
func (e *Expander) Expand(queryText string, qtype Type) []string {
	out := newQuerySet(MaxSubQueries)
	out.add(queryText)

	kb := e.understanding.kb
	for _, name := range e.understanding.ExtractEntities(queryText) {
		entity := kb.Lookup(name)
		if entity == nil {
			continue
		}

		if entity.Organization != "" || entity.Category != "" {
			out.add(strings.TrimSpace(queryText + " " + entity.Organization + " " + entity.Category))
		}

		switch qtype {
		case TypeLicensing, TypeCost, TypeImplementation:
			if entity.Category != "" {
				out.add(queryText + " " + entity.Category)
			}
		case TypeComparison:
			if len(entity.RelatedTerms) > 0 {
				out.add(queryText + " " + strings.Join(entity.RelatedTerms, " "))
			}
		case TypeCapability, TypePerformance:
			if len(entity.KeyFeatures) > 0 {
				out.add(queryText + " " + strings.Join(entity.KeyFeatures, " "))
			}
		}
	}

	switch qtype {
	case TypePerformance:
		if benchmarks := kb.Benchmarks(); len(benchmarks) > 0 {
			out.add(queryText + " " + strings.Join(benchmarks, " ") + " benchmark results")
		}
	case TypeSpecification:
		out.add(queryText + " requirements specifications")
	}

	return out.list()
}
