package gap

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusgap/corpusgap/internal/quality"
)

func testAnalyzer() *Analyzer {
	return NewAnalyzer(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func resultWithScore(question, role string, score float64) quality.Result {
	return quality.Result{
		Question:   question,
		Role:       role,
		Similarity: score / 10,
		Score:      score,
		Status:     quality.StatusOf(score),
	}
}

func uniformResults(n int, role string, score float64) []quality.Result {
	results := make([]quality.Result, n)
	for i := range results {
		results[i] = resultWithScore(fmt.Sprintf("question %d", i), role, score)
	}
	return results
}

func TestAnalyzeEmptyInput(t *testing.T) {
	analysis := testAnalyzer().Analyze(nil)
	require.NotNil(t, analysis)

	assert.Empty(t, analysis.UncoveredTopics)
	assert.Empty(t, analysis.WeakAreas)
	assert.Empty(t, analysis.Recommendations)
	assert.Zero(t, analysis.Summary.TotalGaps)
	assert.Zero(t, analysis.Summary.CriticalGaps)
	assert.Zero(t, analysis.Summary.TotalQueries)
}

func TestAnalyzeHealthyCorpus(t *testing.T) {
	analysis := testAnalyzer().Analyze(uniformResults(10, "customer", 9.0))

	assert.Empty(t, analysis.UncoveredTopics)
	assert.Empty(t, analysis.WeakAreas)
	assert.Empty(t, analysis.Recommendations, "nothing to recommend when every query scores well")
	assert.Zero(t, analysis.Summary.TotalGaps)
	assert.Equal(t, 10, analysis.Summary.GoodCount)
	assert.InDelta(t, 100.0, analysis.Summary.GoodPercent, 1e-9)
}

func TestAnalyzeFailingCorpus(t *testing.T) {
	analysis := testAnalyzer().Analyze(uniformResults(10, "", 1.0))

	assert.Equal(t, []string{"General"}, analysis.UncoveredTopics,
		"unlabeled results fold into the general bucket")
	require.Len(t, analysis.WeakAreas, 1)
	assert.Equal(t, "critical", analysis.WeakAreas[0].Category)
	assert.Equal(t, 10, analysis.WeakAreas[0].QueryCount)
	assert.Equal(t, 10, analysis.WeakAreas[0].CriticalCount)
	assert.Len(t, analysis.WeakAreas[0].SampleQuestions, 3)

	assert.Positive(t, analysis.Summary.CriticalGaps)
	assert.Equal(t, 10, analysis.Summary.TotalGaps)

	require.NotEmpty(t, analysis.Recommendations)
	hasHigh := false
	for _, r := range analysis.Recommendations {
		if r.Priority == LevelHigh {
			hasHigh = true
		}
	}
	assert.True(t, hasHigh, "a fully failing corpus must yield a high-priority recommendation")
}

func TestAnalyzePartitionsByRole(t *testing.T) {
	results := []quality.Result{
		resultWithScore("dev q1", "developer", 4.0),
		resultWithScore("dev q2", "developer", 4.5),
		resultWithScore("cust q1", "customer", 8.5),
		resultWithScore("cust q2", "customer", 9.0),
	}

	analysis := testAnalyzer().Analyze(results)

	assert.Equal(t, []string{"developer"}, analysis.UncoveredTopics)
	require.Len(t, analysis.WeakAreas, 1)
	area := analysis.WeakAreas[0]
	assert.Equal(t, "developer", area.Role)
	assert.InDelta(t, 4.25, area.MeanScore, 1e-9)
	assert.Equal(t, "poor", area.Category)
	assert.Equal(t, 2, area.PoorCount)
	assert.Equal(t, 0, area.CriticalCount)
	assert.Zero(t, area.SuccessRate)
}

func TestAnalyzeSingleQueryRoleNotAWeakArea(t *testing.T) {
	analysis := testAnalyzer().Analyze([]quality.Result{
		resultWithScore("lonely", "admin", 4.0),
	})

	assert.Equal(t, []string{"admin"}, analysis.UncoveredTopics,
		"uncovered-topic detection has no minimum group size")
	assert.Empty(t, analysis.WeakAreas,
		"a single-query role is too noisy to flag as a weak area")
}

func TestAnalyzeWeakAreaSamplesWorstQuestions(t *testing.T) {
	results := []quality.Result{
		resultWithScore("bad one", "support", 1.0),
		resultWithScore("bad two", "support", 2.0),
		resultWithScore("better", "support", 5.5),
		resultWithScore("best", "support", 6.5),
	}

	analysis := testAnalyzer().Analyze(results)
	require.Len(t, analysis.WeakAreas, 1)
	assert.Equal(t, []string{"bad one", "bad two", "better"},
		analysis.WeakAreas[0].SampleQuestions,
		"samples are the worst-scoring questions in order")
}

func TestAnalyzeNormalizesUnscoredResults(t *testing.T) {
	// Results carrying only a similarity still participate fully.
	analysis := testAnalyzer().Analyze([]quality.Result{
		{Question: "q1", Role: "ops", Similarity: 0.2},
		{Question: "q2", Role: "ops", Similarity: 0.25},
	})

	require.Len(t, analysis.WeakAreas, 1)
	assert.InDelta(t, 2.25, analysis.WeakAreas[0].MeanScore, 1e-9)
	assert.Equal(t, 2, analysis.Summary.TotalGaps)
}

func TestAnalyzeRecommendationCapAndOrder(t *testing.T) {
	// Five failing roles plus three critical queries exceed the cap.
	var results []quality.Result
	for i := 0; i < 5; i++ {
		role := fmt.Sprintf("team-%d", i)
		results = append(results,
			resultWithScore(role+" q1", role, 1.0),
			resultWithScore(role+" q2", role, 2.0),
		)
	}

	analysis := testAnalyzer().Analyze(results)
	require.Len(t, analysis.Recommendations, maxRecommendations)

	for i := 1; i < len(analysis.Recommendations); i++ {
		assert.GreaterOrEqual(t,
			analysis.Recommendations[i-1].Score,
			analysis.Recommendations[i].Score,
			"recommendations must be ranked by priority score")
	}
}

func TestSummaryBandPercentages(t *testing.T) {
	results := []quality.Result{
		resultWithScore("g1", "", 8.0),
		resultWithScore("g2", "", 7.0),
		resultWithScore("w1", "", 6.0),
		resultWithScore("p1", "", 2.0),
	}

	analysis := testAnalyzer().Analyze(results)
	s := analysis.Summary

	assert.Equal(t, 4, s.TotalQueries)
	assert.Equal(t, 2, s.GoodCount)
	assert.Equal(t, 1, s.WeakCount)
	assert.Equal(t, 1, s.PoorCount)
	assert.InDelta(t, 50.0, s.GoodPercent, 1e-9)
	assert.InDelta(t, 25.0, s.WeakPercent, 1e-9)
	assert.InDelta(t, 25.0, s.PoorPercent, 1e-9)
	assert.Equal(t, 1, s.TotalGaps)
	assert.Equal(t, 1, s.CriticalGaps)
	assert.InDelta(t, 2.0, s.AverageGapScore, 1e-9)
}

func TestAnalyzeDoesNotModifyInput(t *testing.T) {
	results := []quality.Result{{Question: "q", Similarity: 0.2}}
	_ = testAnalyzer().Analyze(results)
	assert.Zero(t, results[0].Score, "analysis normalizes copies, not the caller's slice")
}
