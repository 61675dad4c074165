package retrieval

import (
	"regexp"
	"strings"

	"github.com/corpusgap/corpusgap/internal/query"
)

// maxStructuralScore caps the accumulated structural signal.
const maxStructuralScore = 0.5

// Structural pattern tables. Checks are cheap substring/regex matches
// against the candidate content, selected by query type.
var (
	numberPattern  = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
	percentPattern = regexp.MustCompile(`\b\d+(?:\.\d+)?\s?%`)
	sizePattern    = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:b|billion|m|million|k|gb|mb|tokens|parameters)\b`)
	pricePattern   = regexp.MustCompile(`(?i)(?:\$\s?\d|\d+(?:\.\d+)?\s?(?:usd|eur)\b|per (?:month|token|request|seat))`)
	yesNoPattern   = regexp.MustCompile(`(?i)(?:^|\.\s+)(?:yes|no)\b`)

	comparativeWords = []string{
		"better", "worse", "faster", "slower", "higher", "lower",
		"stronger", "weaker", "outperforms", "than", "superior", "inferior",
	}
	capabilityWords = []string{
		"supports", "support for", "capable", "can handle", "handles",
		"able to", "feature", "built-in", "allows",
	}
	safetyWords = []string{
		"safety", "bias", "harmful", "alignment", "guardrail",
		"refus", "mitigat", "moderation",
	}
	licensingWords = []string{
		"license", "licensed", "open source", "open-weight",
		"commercial use", "terms of", "permitted", "restricted",
	}
	implementationWords = []string{
		"install", "setup", "configure", "endpoint", "api key",
		"example", "snippet", "sdk", "integration",
	}
	technicalWords = []string{
		"architecture", "transformer", "attention", "training",
		"layer", "embedding", "tokenizer", "algorithm",
	}
	specificationWords = []string{
		"specification", "context window", "parameter", "dimension",
		"limit", "maximum", "supported",
	}
)

// structuralScore accumulates query-type-specific pattern rewards from
// the content, capped at maxStructuralScore.
func (r *CompositeReranker) structuralScore(a *query.Analysis, content string) float64 {
	if content == "" {
		return 0
	}
	lower := strings.ToLower(content)
	score := 0.0

	switch a.Type {
	case query.TypePerformance:
		if numberPattern.MatchString(content) {
			score += 0.15
		}
		if percentPattern.MatchString(content) {
			score += 0.15
		}
		for _, b := range r.kb.Benchmarks() {
			if strings.Contains(lower, strings.ToLower(b)) {
				score += 0.2
				break
			}
		}

	case query.TypeComparison:
		if containsAny(lower, comparativeWords) {
			score += 0.25
		}
		// Reward content mentioning every compared entity.
		if len(a.Entities) >= 2 && containsAll(lower, a.Entities) {
			score += 0.25
		}

	case query.TypeSpecification:
		if sizePattern.MatchString(content) {
			score += 0.3
		}
		if containsAny(lower, specificationWords) {
			score += 0.2
		}

	case query.TypeCapability:
		if containsAny(lower, capabilityWords) {
			score += 0.25
		}
		if yesNoPattern.MatchString(content) {
			score += 0.25
		}

	case query.TypeCost:
		if pricePattern.MatchString(content) {
			score += 0.3
		}
		if strings.Contains(lower, "pricing") || strings.Contains(lower, "cost") {
			score += 0.2
		}

	case query.TypeSafety:
		if containsAny(lower, safetyWords) {
			score += 0.3
		}

	case query.TypeLicensing:
		if containsAny(lower, licensingWords) {
			score += 0.3
		}

	case query.TypeImplementation:
		if containsAny(lower, implementationWords) {
			score += 0.3
		}

	case query.TypeTechnical:
		if containsAny(lower, technicalWords) {
			score += 0.3
		}
	}

	if score > maxStructuralScore {
		score = maxStructuralScore
	}
	return score
}

// Alignment signal weights. These are weak relevance proxies: question/
// answer co-occurrence, term continuity, and punctuation density.
const (
	answerCuedWeight = 0.4
	continuityWeight = 0.3
	densityWeight    = 0.3
)

var questionWords = []string{"what", "how", "why", "which", "when", "where", "who", "can", "does", "is"}

var answerIndicators = []string{" is a ", " is an ", " refers to ", " means ", " defined as ", " consists of ", ": "}

// alignmentScore estimates query-document alignment in [0,1].
func alignmentScore(queryText, content string) float64 {
	if queryText == "" || content == "" {
		return 0
	}
	qLower := strings.ToLower(queryText)
	cLower := strings.ToLower(content)

	score := 0.0

	if isQuestionStyle(qLower) && containsAny(cLower, answerIndicators) {
		score += answerCuedWeight
	}

	qTerms := termSet(queryText)
	score += continuityWeight * overlapFraction(qTerms, cLower)

	score += densityWeight * densityProximity(queryText, content)

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// confidenceBoost rewards likely-direct-answer formatting for
// question-style queries: definition phrasing boosts 1.2x, colon or
// equals formatting 1.15x. Non-question queries get no boost.
func confidenceBoost(queryText, content string) float64 {
	if !isQuestionStyle(strings.ToLower(queryText)) || content == "" {
		return 1.0
	}
	lower := strings.ToLower(content)
	for _, ind := range []string{" is a ", " is an ", " refers to ", " defined as "} {
		if strings.Contains(lower, ind) {
			return 1.2
		}
	}
	head := content
	if len(head) > 120 {
		head = head[:120]
	}
	if strings.ContainsAny(head, ":=") {
		return 1.15
	}
	return 1.0
}

// isQuestionStyle reports whether the lowercased query reads like a
// question: a question mark, or a leading question word.
func isQuestionStyle(qLower string) bool {
	if strings.Contains(qLower, "?") {
		return true
	}
	fields := strings.Fields(qLower)
	if len(fields) == 0 {
		return false
	}
	for _, w := range questionWords {
		if fields[0] == w {
			return true
		}
	}
	return false
}

// termSet tokenizes text into a case-folded word set.
func termSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(text)) {
		f = strings.Trim(f, `.,;:!?"'()[]{}`)
		if f != "" {
			set[f] = true
		}
	}
	return set
}

// keywordOverlap is |query terms ∩ content terms| / |query terms|.
func keywordOverlap(queryTerms map[string]bool, content string) float64 {
	if len(queryTerms) == 0 || content == "" {
		return 0
	}
	contentTerms := termSet(content)
	hits := 0
	for t := range queryTerms {
		if contentTerms[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTerms))
}

// overlapFraction is the fraction of query terms present in the
// lowercased content (substring containment, looser than
// keywordOverlap's exact term match).
func overlapFraction(queryTerms map[string]bool, cLower string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	hits := 0
	for t := range queryTerms {
		if strings.Contains(cLower, t) {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTerms))
}

// densityProximity compares sentence density (terminators per 100
// runes) between query and content; closer densities score higher.
func densityProximity(queryText, content string) float64 {
	dq := sentenceDensity(queryText)
	dc := sentenceDensity(content)
	diff := dq - dc
	if diff < 0 {
		diff = -diff
	}
	return 1.0 / (1.0 + 10*diff)
}

func sentenceDensity(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	count := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			count++
		}
	}
	return float64(count) * 100 / float64(len([]rune(text)))
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func containsAll(haystack string, needles []string) bool {
	for _, n := range needles {
		if !strings.Contains(haystack, strings.ToLower(n)) {
			return false
		}
	}
	return true
}
