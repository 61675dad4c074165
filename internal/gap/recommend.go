package gap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/corpusgap/corpusgap/internal/quality"
)

// roleType selects the improvement-strategy family for a role label.
type roleType string

const (
	roleDeveloper roleType = "developer"
	roleSupport   roleType = "support"
	roleAdmin     roleType = "admin"
	roleCustomer  roleType = "customer"
	roleGeneral   roleType = "general"
)

// roleTypeMarkers map role-label substrings to strategy families. The
// first family with a matching marker wins.
var roleTypeMarkers = []struct {
	rt      roleType
	markers []string
}{
	{roleDeveloper, []string{"developer", "engineer", "dev", "technical"}},
	{roleSupport, []string{"support", "agent", "helpdesk", "service"}},
	{roleAdmin, []string{"admin", "operator", "ops", "manager"}},
	{roleCustomer, []string{"customer", "user", "client", "buyer"}},
}

// classifyRole maps a free-form role label to its strategy family.
func classifyRole(role string) roleType {
	lower := strings.ToLower(role)
	for _, entry := range roleTypeMarkers {
		for _, m := range entry.markers {
			if strings.Contains(lower, m) {
				return entry.rt
			}
		}
	}
	return roleGeneral
}

// roleStrategies are the tailored improvement strategies per family.
var roleStrategies = map[roleType][]string{
	roleDeveloper: {
		"Add code examples and integration walkthroughs for the failing topics",
		"Document API parameters, limits, and error responses",
		"Cover setup, authentication, and SDK usage end to end",
	},
	roleSupport: {
		"Write troubleshooting guides for the most common failure reports",
		"Add step-by-step resolution playbooks with expected outcomes",
		"Document escalation criteria and known-issue workarounds",
	},
	roleAdmin: {
		"Document configuration, deployment, and access management",
		"Add operational runbooks for routine maintenance tasks",
		"Cover monitoring, quotas, and billing administration",
	},
	roleCustomer: {
		"Add plain-language answers for common product questions",
		"Cover pricing, plan limits, and upgrade paths",
		"Write getting-started guides that assume no prior context",
	},
	roleGeneral: {
		"Broaden topic coverage with overview and FAQ content",
		"Add glossary entries for recurring terminology",
	},
}

// dataCollectionStrategies are the generic strategies appended to every
// area recommendation, with extra steps for severe failures.
func dataCollectionStrategies(category string) []string {
	strategies := []string{
		"Collect real questions from this group and verify each has a source document",
		"Review retrieval failures to identify missing source material",
	}
	if category == "critical" {
		strategies = append(strategies,
			"Author net-new content for these topics since existing documents do not cover them")
	}
	return strategies
}

// areaGrades maps the failure category to impact and effort grades.
func areaGrades(category string) (impact, effort Level) {
	switch category {
	case "critical":
		return LevelHigh, LevelHigh
	case "poor":
		return LevelHigh, LevelMedium
	default:
		return LevelMedium, LevelMedium
	}
}

// expectedGain estimates the quality-score gain from fixing a gap:
// the distance to the good band, capped at 10.
func expectedGain(score float64) float64 {
	gain := quality.GoodThreshold - score
	if gain < 0 {
		gain = 0
	}
	if gain > 10 {
		gain = 10
	}
	return gain
}

// recommend builds the ranked recommendation list: one per weak area
// and one per critical query, sorted by priority score descending and
// truncated.
func (a *Analyzer) recommend(areas []WeakArea, critical []quality.Result) []Recommendation {
	recs := make([]Recommendation, 0, len(areas)+len(critical))

	for _, area := range areas {
		recs = append(recs, areaRecommendation(area))
	}
	for _, q := range critical {
		recs = append(recs, criticalQueryRecommendation(q))
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Description < recs[j].Description
	})

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// areaRecommendation synthesizes the remediation for one weak area.
func areaRecommendation(area WeakArea) Recommendation {
	rt := classifyRole(area.Role)
	impact, effort := areaGrades(area.Category)
	score := PriorityScore(impact, effort)

	strategies := append([]string{}, roleStrategies[rt]...)
	strategies = append(strategies, dataCollectionStrategies(area.Category)...)

	return Recommendation{
		Description: fmt.Sprintf("Weak coverage for %s questions: mean score %.1f across %d queries",
			area.Role, area.MeanScore, area.QueryCount),
		Remediation: fmt.Sprintf("Expand corpus content for the %s group, starting from its worst-performing questions", area.Role),
		Strategies:  strategies,
		ExpectedImprovement: expectedGain(area.MeanScore),
		Impact:              impact,
		Effort:              effort,
		Priority:            PriorityLevel(score),
		Score:               score,
		AffectedQueries:     area.SampleQuestions,
		Category:            "role-coverage",
	}
}

// criticalQueryRecommendation targets one individually failing query.
func criticalQueryRecommendation(r quality.Result) Recommendation {
	impact, effort := LevelHigh, LevelLow
	score := PriorityScore(impact, effort)

	return Recommendation{
		Description: fmt.Sprintf("Critical retrieval failure: %q scored %.1f", r.Question, r.Score),
		Remediation: "Add or restructure a document that directly answers this question",
		Strategies: []string{
			"Verify a source document exists for this question",
			"Split or retitle the closest document so its answer section is retrievable",
		},
		ExpectedImprovement: expectedGain(r.Score),
		Impact:              impact,
		Effort:              effort,
		Priority:            PriorityLevel(score),
		Score:               score,
		AffectedQueries:     []string{r.Question},
		Category:            "critical-query",
	}
}
