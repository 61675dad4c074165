// Package query provides query understanding and expansion for the
// retrieval pipeline: classification into a closed set of query types,
// entity and key-term extraction against an injected knowledge base,
// decomposition into sub-queries, and contextual expansion.
package query

// Type is the classification category for a query.
//
// Classification is a closed enumeration dispatched via switch; unknown
// labels decode to TypeGeneral rather than failing.
type Type string

const (
	TypeComparison     Type = "comparison"
	TypeSpecification  Type = "specification"
	TypePerformance    Type = "performance"
	TypeCapability     Type = "capability"
	TypeImplementation Type = "implementation"
	TypeCost           Type = "cost"
	TypeSafety         Type = "safety"
	TypeTechnical      Type = "technical"
	TypeLicensing      Type = "licensing"
	TypeGeneral        Type = "general"
)

// ParseType converts a stored label to a Type, defaulting to general.
func ParseType(s string) Type {
	switch Type(s) {
	case TypeComparison, TypeSpecification, TypePerformance, TypeCapability,
		TypeImplementation, TypeCost, TypeSafety, TypeTechnical, TypeLicensing:
		return Type(s)
	default:
		return TypeGeneral
	}
}

// MaxKeyTerms caps the key-term list produced by analysis.
const MaxKeyTerms = 8

// Analysis is the derived view of a raw query: its type, the known
// entities it mentions, and a prioritized key-term list.
type Analysis struct {
	// Raw is the original query text.
	Raw string

	// Type is the classified query type.
	Type Type

	// Entities are canonical entity names found in the query, sorted.
	Entities []string

	// KeyTerms is the prioritized term list (entities first, then
	// domain technical terms, then remaining content words), capped
	// at MaxKeyTerms.
	KeyTerms []string
}

// HasEntity reports whether the analysis found the given canonical name.
func (a *Analysis) HasEntity(name string) bool {
	for _, e := range a.Entities {
		if e == name {
			return true
		}
	}
	return false
}
