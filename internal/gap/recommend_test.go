package gap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusgap/corpusgap/internal/quality"
)

func TestClassifyRole(t *testing.T) {
	tests := []struct {
		role string
		want roleType
	}{
		{"developer", roleDeveloper},
		{"Senior Engineer", roleDeveloper},
		{"support agent", roleSupport},
		{"Helpdesk Tier 2", roleSupport},
		{"system admin", roleAdmin},
		{"Ops Team", roleAdmin},
		{"customer", roleCustomer},
		{"end user", roleCustomer},
		{"marketing", roleGeneral},
		{"", roleGeneral},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyRole(tt.role), "role %q", tt.role)
	}
}

func TestPriorityScore(t *testing.T) {
	tests := []struct {
		impact Level
		effort Level
		want   float64
		level  Level
		reason string
	}{
		{LevelHigh, LevelHigh, 3.0, LevelHigh, "high impact dominates even at high effort"},
		{LevelHigh, LevelMedium, 1.5, LevelMedium, "3 * 1/2"},
		{LevelHigh, LevelLow, 1.0, LevelMedium, "3 * 1/3"},
		{LevelMedium, LevelMedium, 1.0, LevelMedium, "2 * 1/2"},
		{LevelMedium, LevelLow, 2.0 / 3.0, LevelLow, "2 * 1/3"},
		{LevelLow, LevelLow, 1.0 / 3.0, LevelLow, "1 * 1/3"},
		{LevelLow, LevelHigh, 1.0, LevelMedium, "1 * 1/1"},
	}

	for _, tt := range tests {
		score := PriorityScore(tt.impact, tt.effort)
		assert.InDelta(t, tt.want, score, 1e-9, tt.reason)
		assert.Equal(t, tt.level, PriorityLevel(score), tt.reason)
	}
}

func TestPriorityScoreEffortOrdering(t *testing.T) {
	// The inverted effort map divides the score, so at equal impact a
	// higher-effort gap ranks above a lower-effort one.
	assert.Greater(t, PriorityScore(LevelHigh, LevelHigh), PriorityScore(LevelHigh, LevelMedium))
	assert.Greater(t, PriorityScore(LevelHigh, LevelMedium), PriorityScore(LevelHigh, LevelLow))
}

func TestPriorityScoreUnknownLevelsDefaultToMedium(t *testing.T) {
	assert.InDelta(t, 1.0, PriorityScore(Level("??"), Level("")), 1e-9)
}

func TestAreaRecommendationBySeverity(t *testing.T) {
	tests := []struct {
		name     string
		category string
		impact   Level
		effort   Level
		priority Level
	}{
		{"critical area", "critical", LevelHigh, LevelHigh, LevelHigh},
		{"poor area", "poor", LevelHigh, LevelMedium, LevelMedium},
		{"weak area", "weak", LevelMedium, LevelMedium, LevelMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := areaRecommendation(WeakArea{
				Role:            "developer",
				MeanScore:       2.0,
				QueryCount:      4,
				Category:        tt.category,
				SampleQuestions: []string{"q1", "q2"},
			})

			assert.Equal(t, tt.impact, rec.Impact)
			assert.Equal(t, tt.effort, rec.Effort)
			assert.Equal(t, tt.priority, rec.Priority)
			assert.Equal(t, "role-coverage", rec.Category)
			assert.Equal(t, []string{"q1", "q2"}, rec.AffectedQueries)
			assert.Contains(t, rec.Description, "developer")
		})
	}
}

func TestAreaRecommendationStrategies(t *testing.T) {
	rec := areaRecommendation(WeakArea{Role: "support team", Category: "critical", MeanScore: 1.5})

	joined := ""
	for _, s := range rec.Strategies {
		joined += s + "\n"
	}
	assert.Contains(t, joined, "troubleshooting", "support roles get support-flavored strategies")
	assert.Contains(t, joined, "net-new content", "critical areas add the authoring strategy")
	require.Greater(t, len(rec.Strategies), len(roleStrategies[roleSupport]),
		"generic data-collection strategies append to the role strategies")
}

func TestCriticalQueryRecommendation(t *testing.T) {
	rec := criticalQueryRecommendation(quality.Result{Question: "how do refunds work?", Score: 1.2})

	assert.Contains(t, rec.Description, "how do refunds work?")
	assert.Equal(t, []string{"how do refunds work?"}, rec.AffectedQueries)
	assert.Equal(t, "critical-query", rec.Category)
	assert.Equal(t, LevelHigh, rec.Impact)
	assert.Equal(t, LevelLow, rec.Effort)
	assert.InDelta(t, 5.8, rec.ExpectedImprovement, 1e-9, "gain is the distance to the good band")
}

func TestExpectedGainBounds(t *testing.T) {
	assert.InDelta(t, 7.0, expectedGain(0), 1e-9)
	assert.InDelta(t, 0.0, expectedGain(8.5), 1e-9, "already good scores no gain")
}
