package gap

import (
	"log/slog"
	"sort"

	"github.com/corpusgap/corpusgap/internal/quality"
)

// Analysis thresholds on the 0-10 quality scale.
const (
	// UncoveredThreshold flags a role as an uncovered topic when its
	// mean score falls below it.
	UncoveredThreshold = quality.WeakThreshold

	// AcceptableThreshold is the looser floor for weak-coverage areas.
	AcceptableThreshold = 6.0

	// CriticalThreshold marks individually critical queries.
	CriticalThreshold = 3.0
)

const (
	// minWeakAreaQueries is the minimum group size before a role can
	// be flagged as a weak area; single-query roles are too noisy.
	minWeakAreaQueries = 2

	// maxSampleQuestions bounds the affected-question samples per area.
	maxSampleQuestions = 3

	// maxCriticalQueryRecs bounds per-query recommendations.
	maxCriticalQueryRecs = 3

	// maxRecommendations bounds the final ranked list.
	maxRecommendations = 6

	// realisticBoostFactor discounts the stacked expected improvements
	// when estimating overall potential.
	realisticBoostFactor = 0.6
)

// generalRole buckets results without a role label.
const generalRole = "General"

// Analyzer runs batch gap analysis over quality results. It holds no
// mutable state and is safe to share across goroutines.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates a gap analyzer.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger}
}

// Analyze partitions results by role, flags underperforming roles and
// critical queries, and synthesizes ranked recommendations.
//
// Empty input yields a zeroed analysis with empty lists, never an
// error. The input slice is not modified.
func (a *Analyzer) Analyze(results []quality.Result) *Analysis {
	analysis := &Analysis{
		UncoveredTopics: []string{},
		WeakAreas:       []WeakArea{},
		Recommendations: []Recommendation{},
	}
	if len(results) == 0 {
		return analysis
	}

	normalized := make([]quality.Result, len(results))
	for i, r := range results {
		normalized[i] = r.Normalized()
	}

	groups := partitionByRole(normalized)
	roles := make([]string, 0, len(groups))
	for role := range groups {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	for _, role := range roles {
		group := groups[role]
		mean := meanScore(group)

		if mean < UncoveredThreshold {
			analysis.UncoveredTopics = append(analysis.UncoveredTopics, role)
		}
		if mean < AcceptableThreshold && len(group) >= minWeakAreaQueries {
			analysis.WeakAreas = append(analysis.WeakAreas, buildWeakArea(role, mean, group))
		}
	}

	critical := criticalQueries(normalized)
	analysis.Recommendations = a.recommend(analysis.WeakAreas, critical)
	analysis.Summary = summarize(normalized, analysis.Recommendations)

	a.logger.Debug("gap analysis complete",
		slog.Int("results", len(normalized)),
		slog.Int("weak_areas", len(analysis.WeakAreas)),
		slog.Int("recommendations", len(analysis.Recommendations)),
		slog.Int("total_gaps", analysis.Summary.TotalGaps))

	return analysis
}

// partitionByRole groups results by role label, folding blanks into
// the general bucket.
func partitionByRole(results []quality.Result) map[string][]quality.Result {
	groups := make(map[string][]quality.Result)
	for _, r := range results {
		role := r.Role
		if role == "" {
			role = generalRole
		}
		groups[role] = append(groups[role], r)
	}
	return groups
}

func meanScore(results []quality.Result) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Score
	}
	return sum / float64(len(results))
}

// buildWeakArea records the failure profile of one underperforming role.
func buildWeakArea(role string, mean float64, group []quality.Result) WeakArea {
	area := WeakArea{
		Role:       role,
		MeanScore:  mean,
		QueryCount: len(group),
		Category:   severityCategory(mean),
	}

	for _, r := range group {
		if r.Score < quality.WeakThreshold {
			area.PoorCount++
		}
		if r.Score < CriticalThreshold {
			area.CriticalCount++
		}
	}
	area.SuccessRate = quality.SuccessRate(group)

	// Sample the worst-scoring questions.
	sorted := make([]quality.Result, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score < sorted[j].Score })
	for i := 0; i < len(sorted) && i < maxSampleQuestions; i++ {
		area.SampleQuestions = append(area.SampleQuestions, sorted[i].Question)
	}

	return area
}

// severityCategory grades a mean score.
func severityCategory(mean float64) string {
	switch {
	case mean < CriticalThreshold:
		return "critical"
	case mean < quality.WeakThreshold:
		return "poor"
	default:
		return "weak"
	}
}

// criticalQueries returns the worst individually critical queries,
// most severe first, capped.
func criticalQueries(results []quality.Result) []quality.Result {
	var critical []quality.Result
	for _, r := range results {
		if r.Score < CriticalThreshold {
			critical = append(critical, r)
		}
	}
	sort.SliceStable(critical, func(i, j int) bool { return critical[i].Score < critical[j].Score })
	if len(critical) > maxCriticalQueryRecs {
		critical = critical[:maxCriticalQueryRecs]
	}
	return critical
}

// summarize computes run statistics over the full result set.
func summarize(results []quality.Result, recs []Recommendation) Summary {
	s := Summary{TotalQueries: len(results)}

	var gapSum float64
	for _, r := range results {
		switch r.Status {
		case quality.StatusGood:
			s.GoodCount++
		case quality.StatusWeak:
			s.WeakCount++
		default:
			s.PoorCount++
		}
		if r.Score < quality.WeakThreshold {
			s.TotalGaps++
			gapSum += r.Score
		}
		if r.Score < CriticalThreshold {
			s.CriticalGaps++
		}
	}

	if s.TotalGaps > 0 {
		s.AverageGapScore = gapSum / float64(s.TotalGaps)
	}

	total := float64(len(results))
	if total > 0 {
		s.GoodPercent = 100 * float64(s.GoodCount) / total
		s.WeakPercent = 100 * float64(s.WeakCount) / total
		s.PoorPercent = 100 * float64(s.PoorCount) / total
	}

	if len(recs) > 0 {
		var impSum float64
		for _, r := range recs {
			impSum += r.ExpectedImprovement
		}
		potential := (impSum / float64(len(recs))) * realisticBoostFactor
		if potential > 10 {
			potential = 10
		}
		s.ImprovementPotential = potential
	}

	return s
}
