package query

import (
	"regexp"
	"sort"
	"strings"

	"github.com/corpusgap/corpusgap/internal/knowledge"
)

// typePattern pairs a query type with its detection pattern. Patterns
// are evaluated in order; the first match wins.
type typePattern struct {
	qtype   Type
	pattern *regexp.Regexp
}

// classifierPatterns is the ordered pattern table. Order matters:
// comparison outranks performance so "compare benchmark scores" stays a
// comparison, and technical is near the end as a broad catch-all.
var classifierPatterns = []typePattern{
	{TypeComparison, regexp.MustCompile(`(?i)\b(compare|comparison|versus|vs\.?|difference between|better than|which is better)\b`)},
	{TypeSpecification, regexp.MustCompile(`(?i)\b(specification|specs?|context window|parameter count|how (?:big|large|many)|model size|architecture details)\b`)},
	{TypePerformance, regexp.MustCompile(`(?i)\b(performance|benchmark|score[sd]?|accuracy|latency|throughput|how fast|speed)\b`)},
	{TypeCapability, regexp.MustCompile(`(?i)\b(can (?:it|they|you)|capab(?:le|ility|ilities)|support[s]?|able to|handle|feature[s]?)\b`)},
	{TypeImplementation, regexp.MustCompile(`(?i)\b(how (?:to|do i)|implement|integrat(?:e|ion)|deploy|set ?up|install|api access|getting started)\b`)},
	{TypeCost, regexp.MustCompile(`(?i)\b(cost[s]?|price|pricing|fee[s]?|subscription|how much|free tier|billing)\b`)},
	{TypeSafety, regexp.MustCompile(`(?i)\b(safety|safe|bias(?:ed)?|harm(?:ful)?|alignment|guardrail[s]?|risk[s]?|jailbreak)\b`)},
	{TypeTechnical, regexp.MustCompile(`(?i)\b(architecture|training|algorithm|transformer|attention|tokeniz|quantiz|embedding[s]?)\b`)},
	{TypeLicensing, regexp.MustCompile(`(?i)\b(licens(?:e|ing|ed)|open[ -]?source|commercial use|terms of (?:use|service)|usage rights)\b`)},
}

// capitalizedPattern is the generic fallback for entity-like tokens:
// a capitalized word optionally followed by more capitalized words or
// digit/dash suffixes (e.g. "Claude", "GPT-5", "Mistral Large").
var capitalizedPattern = regexp.MustCompile(`\b[A-Z][a-zA-Z0-9]*(?:[-][A-Za-z0-9]+)*(?:\s+[A-Z][a-zA-Z0-9]*)*`)

// Understanding classifies queries and extracts entities and key terms
// against an injected knowledge base. All methods are pure functions of
// the input text and the immutable base.
type Understanding struct {
	kb *knowledge.Base
}

// NewUnderstanding creates a query understanding component.
func NewUnderstanding(kb *knowledge.Base) *Understanding {
	if kb == nil {
		kb = knowledge.Default()
	}
	return &Understanding{kb: kb}
}

// Classify returns the query type via ordered pattern matching.
// Queries matching no pattern are general.
func (u *Understanding) Classify(query string) Type {
	for _, tp := range classifierPatterns {
		if tp.pattern.MatchString(query) {
			return tp.qtype
		}
	}
	return TypeGeneral
}

// ExtractEntities returns the canonical names of known entities
// mentioned in the text, unioned with a generic capitalized-token
// fallback for names the base resolves via alias. The result is sorted
// and duplicate-free.
func (u *Understanding) ExtractEntities(text string) []string {
	found := make(map[string]bool)
	lower := strings.ToLower(text)

	// Knowledge base pass: names and aliases, longest first.
	for _, name := range u.kb.Names() {
		if containsWord(lower, name) {
			found[u.kb.Lookup(name).Name] = true
		}
	}

	// Capitalized-token fallback: only tokens the base can resolve are
	// kept, so arbitrary capitalized words don't pollute the entity set.
	for _, match := range capitalizedPattern.FindAllString(text, -1) {
		if e := u.kb.Lookup(match); e != nil {
			found[e.Name] = true
		}
	}

	entities := make([]string, 0, len(found))
	for name := range found {
		entities = append(entities, name)
	}
	sort.Strings(entities)
	return entities
}

// ExtractKeyTerms returns the prioritized term list for a query:
// entity names first, then domain technical terms present in the
// query, then remaining content words in query order. Stop words are
// dropped and the result is capped at MaxKeyTerms.
func (u *Understanding) ExtractKeyTerms(queryText string) []string {
	entities := u.ExtractEntities(queryText)
	lower := strings.ToLower(queryText)

	seen := make(map[string]bool)
	terms := make([]string, 0, MaxKeyTerms)

	add := func(term string) {
		if len(terms) >= MaxKeyTerms {
			return
		}
		if term == "" || seen[term] {
			return
		}
		seen[term] = true
		terms = append(terms, term)
	}

	for _, e := range entities {
		add(e)
	}

	// Technical terms may be multi-word ("context window"), so match
	// against the whole query rather than individual tokens.
	for _, tech := range u.kb.TechnicalTerms() {
		if containsWord(lower, strings.ToLower(tech)) {
			add(strings.ToLower(tech))
		}
	}

	for _, word := range tokenizeWords(lower) {
		if u.kb.IsStopWord(word) || len(word) < 3 {
			continue
		}
		add(word)
	}

	return terms
}

// Analyze runs classification, entity extraction, and key-term
// extraction in one pass.
func (u *Understanding) Analyze(queryText string) *Analysis {
	return &Analysis{
		Raw:      queryText,
		Type:     u.Classify(queryText),
		Entities: u.ExtractEntities(queryText),
		KeyTerms: u.ExtractKeyTerms(queryText),
	}
}

// wordRegex matches word tokens including internal dashes (gpt-5).
var wordRegex = regexp.MustCompile(`[a-z0-9]+(?:[-'][a-z0-9]+)*`)

// tokenizeWords splits lowercased text into word tokens.
func tokenizeWords(lower string) []string {
	return wordRegex.FindAllString(lower, -1)
}

// containsWord reports whether needle occurs in haystack on word
// boundaries. Both arguments must already be lowercased.
func containsWord(haystack, needle string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		beforeOK := start == 0 || !isWordByte(haystack[start-1])
		afterOK := end == len(haystack) || !isWordByte(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '-' || b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
