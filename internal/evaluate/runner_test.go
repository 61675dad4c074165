package evaluate

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusgap/corpusgap/internal/quality"
	"github.com/corpusgap/corpusgap/internal/retrieval"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedSearcher returns fixed-similarity candidates keyed by a
// substring of the query.
func scriptedSearcher(similarities map[string]float64) retrieval.Searcher {
	return retrieval.SearcherFunc(func(ctx context.Context, queryText string, topK int) ([]retrieval.Candidate, error) {
		for marker, sim := range similarities {
			if strings.Contains(strings.ToLower(queryText), marker) {
				return []retrieval.Candidate{{
					ChunkID:    marker + "-chunk",
					DocID:      marker + "-doc",
					Title:      strings.ToUpper(marker[:1]) + marker[1:],
					Content:    "Content about " + marker + ".",
					Similarity: sim,
				}}, nil
			}
		}
		return []retrieval.Candidate{}, nil
	})
}

func newTestRunner(t *testing.T, searcher retrieval.Searcher, concurrency int) *Runner {
	t.Helper()
	cfg := retrieval.DefaultPipelineConfig()
	cfg.DisableRerank = true
	pipeline := retrieval.NewPipeline(searcher, nil, cfg, testLogger())
	return NewRunner(pipeline, RunnerOptions{
		TopK:        3,
		Concurrency: concurrency,
		Logger:      testLogger(),
	})
}

func TestRunnerPreservesQuestionOrder(t *testing.T) {
	runner := newTestRunner(t, scriptedSearcher(map[string]float64{
		"pricing": 0.9,
		"deploy":  0.5,
	}), 4)

	questions := []Question{
		{Question: "What is the pricing model?", Role: "customer"},
		{Question: "How do I deploy the service?", Role: "developer"},
	}

	results, summary, err := runner.Run(context.Background(), questions)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "What is the pricing model?", results[0].Question)
	assert.Equal(t, "customer", results[0].Role)
	assert.Equal(t, "How do I deploy the service?", results[1].Question)

	assert.Equal(t, 2, summary.TotalQuestions)
	assert.Positive(t, summary.Elapsed)
}

func TestRunnerScoresFromRetrieval(t *testing.T) {
	runner := newTestRunner(t, scriptedSearcher(map[string]float64{
		"pricing": 0.9,
	}), 1)

	results, _, err := runner.Run(context.Background(), []Question{
		{Question: "What is the pricing model?", Role: "customer"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.InDelta(t, 9.0, results[0].Score, 1e-9)
	assert.Equal(t, quality.StatusGood, results[0].Status)
	require.NotEmpty(t, results[0].Documents)
	assert.Equal(t, "Pricing", results[0].Documents[0].Title)
}

func TestRunnerConfiguredThresholdsBandResults(t *testing.T) {
	// A 0.75 similarity scores 7.5: good under the defaults, weak once
	// the good cutoff moves to 8.0. Banked statuses, the summary, and
	// the success rate must all follow the configured cutoffs.
	searcher := scriptedSearcher(map[string]float64{"pricing": 0.75})
	cfg := retrieval.DefaultPipelineConfig()
	cfg.DisableRerank = true
	pipeline := retrieval.NewPipeline(searcher, nil, cfg, testLogger())

	runner := NewRunner(pipeline, RunnerOptions{
		TopK:        3,
		Concurrency: 1,
		Thresholds:  quality.Thresholds{Good: 8.0, Weak: 5.0},
		Logger:      testLogger(),
	})

	results, summary, err := runner.Run(context.Background(), []Question{
		{Question: "What is the pricing model?", Role: "customer"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.InDelta(t, 7.5, results[0].Score, 1e-9)
	assert.Equal(t, quality.StatusWeak, results[0].Status)
	assert.Equal(t, 1, summary.WeakCount)
	assert.Zero(t, summary.GoodCount)
	assert.Zero(t, summary.SuccessRate)
}

func TestRunnerUnansweredQuestionScoresZero(t *testing.T) {
	runner := newTestRunner(t, scriptedSearcher(nil), 2)

	results, summary, err := runner.Run(context.Background(), []Question{
		{Question: "Completely uncovered topic?", Role: "support"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Zero(t, results[0].Score)
	assert.Equal(t, quality.StatusPoor, results[0].Status)
	assert.Empty(t, results[0].Documents)
	assert.Equal(t, 1, summary.PoorCount)
}

func TestRunnerEmptyQuestionList(t *testing.T) {
	runner := newTestRunner(t, scriptedSearcher(nil), 2)

	results, summary, err := runner.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, summary.TotalQuestions)
	assert.Zero(t, summary.SuccessRate)
}

func TestRunnerCancelledContext(t *testing.T) {
	runner := newTestRunner(t, scriptedSearcher(nil), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := runner.Run(ctx, []Question{{Question: "Anything?"}})
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	results := []quality.Result{
		quality.NewResult("a", "", 0.9, nil), // 9.0 good
		quality.NewResult("b", "", 0.6, nil), // 6.0 weak
		quality.NewResult("c", "", 0.2, nil), // 2.0 poor
	}

	summary := Summarize(results)
	assert.Equal(t, 3, summary.TotalQuestions)
	assert.Equal(t, 1, summary.GoodCount)
	assert.Equal(t, 1, summary.WeakCount)
	assert.Equal(t, 1, summary.PoorCount)
	assert.InDelta(t, 1.0/3.0, summary.SuccessRate, 1e-9)
	assert.InDelta(t, (9.0+6.0+2.0)/3.0, summary.AverageScore, 1e-9)
}
