// Package gap turns per-query quality results into prioritized,
// actionable corpus-improvement recommendations: partition by role,
// flag underperforming groups and critical individual queries, and
// rank role-aware remediations by an impact/effort priority score.
package gap

// Level grades impact, effort, and priority.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Weight tables for the priority score. Impact weighs up with level.
// The effort map is inverted and the score divides by its weight, so
// at equal impact a high-effort gap outranks a low-effort one: effort
// here measures how much is missing, not how cheap the fix is.
var (
	impactWeights = map[Level]float64{LevelLow: 1, LevelMedium: 2, LevelHigh: 3}
	effortWeights = map[Level]float64{LevelLow: 3, LevelMedium: 2, LevelHigh: 1}
)

// PriorityScore is impact weight times the inverse effort weight.
func PriorityScore(impact, effort Level) float64 {
	iw, ok := impactWeights[impact]
	if !ok {
		iw = impactWeights[LevelMedium]
	}
	ew, ok := effortWeights[effort]
	if !ok {
		ew = effortWeights[LevelMedium]
	}
	return iw * (1 / ew)
}

// Priority level cutoffs on the priority score.
const (
	highPriorityScore   = 2.0
	mediumPriorityScore = 0.8
)

// PriorityLevel maps a priority score to its level.
func PriorityLevel(score float64) Level {
	switch {
	case score >= highPriorityScore:
		return LevelHigh
	case score >= mediumPriorityScore:
		return LevelMedium
	default:
		return LevelLow
	}
}

// WeakArea is a role whose aggregate quality falls below the minimum
// acceptable score.
type WeakArea struct {
	// Role is the group label.
	Role string `json:"role"`

	// MeanScore is the role's average quality score.
	MeanScore float64 `json:"mean_score"`

	// QueryCount is how many queries the role holds.
	QueryCount int `json:"query_count"`

	// SampleQuestions are up to three affected questions.
	SampleQuestions []string `json:"sample_questions"`

	// Category grades the failure: critical below 3.0, poor below
	// 5.0, weak otherwise.
	Category string `json:"category"`

	// SuccessRate is the fraction of the role's queries in the good band.
	SuccessRate float64 `json:"success_rate"`

	// PoorCount and CriticalCount count queries below 5.0 and 3.0.
	PoorCount     int `json:"poor_count"`
	CriticalCount int `json:"critical_count"`
}

// Recommendation is one prioritized corpus-improvement action.
type Recommendation struct {
	// Description names the gap.
	Description string `json:"description"`

	// Remediation is the suggested fix in prose.
	Remediation string `json:"remediation"`

	// Strategies are concrete improvement steps.
	Strategies []string `json:"strategies"`

	// ExpectedImprovement estimates the quality-score gain, capped at 10.
	ExpectedImprovement float64 `json:"expected_improvement"`

	// Impact and Effort grade the recommendation; Priority and
	// Score derive from them.
	Impact   Level   `json:"impact"`
	Effort   Level   `json:"effort"`
	Priority Level   `json:"priority"`
	Score    float64 `json:"priority_score"`

	// AffectedQueries lists the queries behind the gap.
	AffectedQueries []string `json:"affected_queries"`

	// Category tags the recommendation kind.
	Category string `json:"category"`
}

// Summary aggregates a gap analysis run.
type Summary struct {
	// TotalQueries is the size of the analyzed batch.
	TotalQueries int `json:"total_queries"`

	// TotalGaps counts queries below the weak threshold (5.0).
	TotalGaps int `json:"total_gaps"`

	// CriticalGaps counts queries below the critical threshold (3.0).
	CriticalGaps int `json:"critical_gaps"`

	// AverageGapScore is the mean quality score among flagged queries
	// (0 when nothing is flagged).
	AverageGapScore float64 `json:"average_gap_score"`

	// ImprovementPotential estimates the realistic quality-score gain
	// from acting on the recommendations, capped at 10.
	ImprovementPotential float64 `json:"improvement_potential"`

	// Band counts and percentages over the full result set.
	GoodCount   int     `json:"good_count"`
	WeakCount   int     `json:"weak_count"`
	PoorCount   int     `json:"poor_count"`
	GoodPercent float64 `json:"good_percent"`
	WeakPercent float64 `json:"weak_percent"`
	PoorPercent float64 `json:"poor_percent"`
}

// Analysis is the complete gap-analysis output.
type Analysis struct {
	// UncoveredTopics are roles whose mean score sits in the poor band.
	UncoveredTopics []string `json:"uncovered_topics"`

	// WeakAreas are roles below the minimum acceptable score.
	WeakAreas []WeakArea `json:"weak_areas"`

	// Recommendations are ranked by priority score, top entries only.
	Recommendations []Recommendation `json:"recommendations"`

	// Summary aggregates the run.
	Summary Summary `json:"summary"`
}
