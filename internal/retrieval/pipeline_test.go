package retrieval

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// corpusSearcher returns a fixed candidate set for every query, which
// is enough to exercise dedup, reranking, and diversity downstream.
func corpusSearcher(counter *atomic.Int64) SearcherFunc {
	corpus := []Candidate{
		{ChunkID: "c1", DocID: "specs", Title: "Model specs", Content: "GPT-5 is a large model. Context window: 200,000 tokens.", Similarity: 0.92},
		{ChunkID: "c2", DocID: "specs", Title: "Model specs", Content: "Parameters and dimension limits are listed per model.", Similarity: 0.81},
		{ChunkID: "c3", DocID: "faq", Title: "FAQ", Content: "The context window refers to the maximum supported input.", Similarity: 0.77},
		{ChunkID: "c4", DocID: "faq", Title: "FAQ", Content: "Yes. Long documents are supported up to the window limit.", Similarity: 0.64},
		{ChunkID: "c5", DocID: "blog", Title: "Release notes", Content: "Benchmark results improved across MMLU and GSM8K.", Similarity: 0.58},
		{ChunkID: "c6", DocID: "blog", Title: "Release notes", Content: "Latency dropped 40% after the runtime rewrite.", Similarity: 0.51},
	}
	return func(_ context.Context, _ string, topK int) ([]Candidate, error) {
		if counter != nil {
			counter.Add(1)
		}
		if topK < len(corpus) {
			return corpus[:topK], nil
		}
		return corpus, nil
	}
}

func TestPipelineRetrieve(t *testing.T) {
	p := NewPipeline(corpusSearcher(nil), nil, DefaultPipelineConfig(), testLogger())

	result := p.Retrieve(context.Background(), "What is the context window of GPT-5?", 4)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Documents)
	assert.LessOrEqual(t, len(result.Documents), 4)

	seen := make(map[string]bool)
	for i, d := range result.Documents {
		assert.False(t, seen[d.ChunkID], "chunk %s returned twice", d.ChunkID)
		seen[d.ChunkID] = true
		assert.GreaterOrEqual(t, d.FinalScore, 0.0)
		assert.LessOrEqual(t, d.FinalScore, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, result.Documents[i-1].FinalScore, d.FinalScore,
				"documents must be ranked by final score")
		}
	}

	var sum float64
	for _, d := range result.Documents {
		sum += d.FinalScore
	}
	assert.InDelta(t, sum/float64(len(result.Documents)), result.AverageScore, 1e-9)

	d := result.Diagnostics
	assert.False(t, d.Degraded)
	assert.False(t, d.CacheHit)
	require.NotEmpty(t, d.SubQueries)
	assert.Equal(t, "What is the context window of GPT-5?", d.SubQueries[0],
		"the original query always leads the sub-query list")
	assert.NotEmpty(t, d.Expansions)
	assert.Len(t, d.Stages, DefaultStageCount)
}

func TestPipelineEmptyQuery(t *testing.T) {
	p := NewPipeline(corpusSearcher(nil), nil, DefaultPipelineConfig(), testLogger())

	for _, q := range []string{"", "   ", "\t\n"} {
		result := p.Retrieve(context.Background(), q, 5)
		require.NotNil(t, result)
		assert.Empty(t, result.Documents)
		assert.Zero(t, result.AverageScore)
	}
}

func TestPipelineCacheHit(t *testing.T) {
	var calls atomic.Int64
	p := NewPipeline(corpusSearcher(&calls), nil, DefaultPipelineConfig(), testLogger())

	first := p.Retrieve(context.Background(), "what can claude do?", 3)
	searches := calls.Load()
	require.Positive(t, searches)
	assert.False(t, first.Diagnostics.CacheHit)

	second := p.Retrieve(context.Background(), "What can Claude do?", 3)
	assert.True(t, second.Diagnostics.CacheHit, "normalized repeat query hits the cache")
	assert.Equal(t, searches, calls.Load(), "cache hits issue no new searches")
	assert.Equal(t, first.Documents, second.Documents)
}

func TestPipelineCacheHitDocumentsAreIsolated(t *testing.T) {
	p := NewPipeline(corpusSearcher(nil), nil, DefaultPipelineConfig(), testLogger())

	first := p.Retrieve(context.Background(), "what can claude do?", 3)
	require.NotEmpty(t, first.Documents)

	// Mutate what the first caller got back.
	originalTitle := first.Documents[0].Title
	first.Documents[0].Title = "clobbered"
	first.Documents[0].FinalScore = -1

	second := p.Retrieve(context.Background(), "what can claude do?", 3)
	require.True(t, second.Diagnostics.CacheHit)
	require.NotEmpty(t, second.Documents)
	assert.Equal(t, originalTitle, second.Documents[0].Title,
		"a caller's mutation must not leak into later cache hits")
	assert.NotEqual(t, -1.0, second.Documents[0].FinalScore)
}

func TestPipelineDegradedFallback(t *testing.T) {
	// The staged path fetches wide batches; making those fail while the
	// narrow fallback fetch succeeds forces the degraded path.
	searcher := SearcherFunc(func(_ context.Context, q string, topK int) ([]Candidate, error) {
		if topK > 5 {
			return nil, errors.New("batch too large for degraded backend")
		}
		return []Candidate{
			{ChunkID: "f1", DocID: "d", Content: "fallback answer", Similarity: 0.7},
			{ChunkID: "f2", DocID: "d", Content: "second fallback", Similarity: 0.4},
		}, nil
	})

	cfg := DefaultPipelineConfig()
	cfg.CandidatesPerStage = []int{8, 8, 8}
	p := NewPipeline(searcher, nil, cfg, testLogger())

	result := p.Retrieve(context.Background(), "what is the fallback behaviour?", 5)
	require.NotNil(t, result)
	assert.True(t, result.Diagnostics.Degraded)
	require.Len(t, result.Documents, 2)
	assert.Equal(t, "f1", result.Documents[0].ChunkID)
	assert.InDelta(t, 0.7, result.Documents[0].FinalScore, 1e-9,
		"degraded mode ranks by raw similarity")
}

func TestPipelineTotalFailure(t *testing.T) {
	searcher := SearcherFunc(func(_ context.Context, _ string, _ int) ([]Candidate, error) {
		return nil, errors.New("backend down")
	})
	p := NewPipeline(searcher, nil, DefaultPipelineConfig(), testLogger())

	result := p.Retrieve(context.Background(), "anything at all", 5)
	require.NotNil(t, result, "total failure still yields a result, never a panic or error")
	assert.Empty(t, result.Documents)
	assert.True(t, result.Diagnostics.Degraded)
}

func TestPipelineDisableRerank(t *testing.T) {
	cfg := DefaultPipelineConfig()
	cfg.DisableRerank = true
	p := NewPipeline(corpusSearcher(nil), nil, cfg, testLogger())

	result := p.Retrieve(context.Background(), "model specifications", 3)
	require.NotEmpty(t, result.Documents)
	for _, d := range result.Documents {
		assert.InDelta(t, d.Similarity, d.FinalScore, 1e-9,
			"with reranking disabled the final score is the raw similarity")
		assert.Nil(t, d.Breakdown)
	}
}
