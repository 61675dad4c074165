package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusgap/corpusgap/internal/knowledge"
	"github.com/corpusgap/corpusgap/internal/query"
)

func analyzeForTest(t *testing.T, queryText string) *query.Analysis {
	t.Helper()
	return query.NewUnderstanding(knowledge.Default()).Analyze(queryText)
}

func TestCompositeScoreAlwaysInRange(t *testing.T) {
	r := NewCompositeReranker(knowledge.Default(), testLogger())
	a := analyzeForTest(t, "What is the context window of GPT-5?")

	candidates := []Candidate{
		{ChunkID: "c1", Content: "GPT-5 is a large model with a 200K context window.", Similarity: 0.99, Stage: 2},
		{ChunkID: "c2", Content: "Unrelated text about gardening tools and soil quality.", Similarity: 0.05, Stage: 0},
		{ChunkID: "c3", Content: "Context window: 200,000 tokens maximum.", Similarity: 1.7, Stage: 2},
		{ChunkID: "c4", Content: "", Similarity: -0.4, Stage: 1},
		{ChunkID: "c5", Content: "The context window refers to the maximum input length.", Similarity: 0.8, Stage: 1},
	}

	scored := r.Score(a, candidates)
	require.Len(t, scored, len(candidates))

	for _, c := range scored {
		assert.GreaterOrEqual(t, c.FinalScore, 0.0, "chunk %s scored below zero", c.ChunkID)
		assert.LessOrEqual(t, c.FinalScore, 1.0, "chunk %s scored above the cap", c.ChunkID)
		require.NotNil(t, c.Breakdown, "chunk %s missing its score breakdown", c.ChunkID)
		assert.GreaterOrEqual(t, c.Breakdown.Confidence, 1.0)
	}

	for i := 1; i < len(scored); i++ {
		assert.GreaterOrEqual(t, scored[i-1].FinalScore, scored[i].FinalScore,
			"results must be sorted by final score descending")
	}
}

func TestCompositeScoreDoesNotMutateInput(t *testing.T) {
	r := NewCompositeReranker(knowledge.Default(), testLogger())
	a := analyzeForTest(t, "how fast is llama on benchmarks?")

	input := []Candidate{
		{ChunkID: "c1", Content: "Llama scores 85% on MMLU.", Similarity: 0.7},
	}
	_ = r.Score(a, input)

	assert.Zero(t, input[0].FinalScore, "scoring must return copies, not mutate the input")
	assert.Nil(t, input[0].Breakdown)
}

func TestCompositeScoreRewardsLaterStages(t *testing.T) {
	r := NewCompositeReranker(knowledge.Default(), testLogger())
	a := analyzeForTest(t, "tell me about mistral")

	candidates := []Candidate{
		{ChunkID: "early", Content: "Mistral releases open-weight models.", Similarity: 0.5, Stage: 0},
		{ChunkID: "late", Content: "Mistral releases open-weight models.", Similarity: 0.5, Stage: 2},
	}

	scored := r.Score(a, candidates)
	require.Len(t, scored, 2)
	assert.Equal(t, "late", scored[0].ChunkID,
		"identical candidates differ only by stage, so the later stage wins")
	assert.Greater(t, scored[0].FinalScore, scored[1].FinalScore)
	assert.InDelta(t, 1.10, scored[0].Breakdown.StageBoost, 1e-9)
}

func TestStructuralScoreByQueryType(t *testing.T) {
	r := NewCompositeReranker(knowledge.Default(), testLogger())

	tests := []struct {
		name    string
		a       *query.Analysis
		content string
		want    float64
		reason  string
	}{
		{
			name:    "performance content with numbers percent and benchmark",
			a:       &query.Analysis{Raw: "benchmark scores", Type: query.TypePerformance},
			content: "Scores 85% on MMLU with 15 points above baseline.",
			want:    0.5,
			reason:  "all three performance signals fire and the cap holds",
		},
		{
			name:    "comparison content naming both entities",
			a:       &query.Analysis{Raw: "compare", Type: query.TypeComparison, Entities: []string{"claude", "gpt-5"}},
			content: "Claude is faster than GPT-5 on long documents.",
			want:    0.5,
			reason:  "comparative wording plus both compared entities present",
		},
		{
			name:    "cost content with pricing",
			a:       &query.Analysis{Raw: "price", Type: query.TypeCost},
			content: "Pricing starts at $20 per month.",
			want:    0.5,
			reason:  "price pattern and the pricing keyword both fire",
		},
		{
			name:    "no signals in unrelated content",
			a:       &query.Analysis{Raw: "safety", Type: query.TypeSafety},
			content: "The recipe calls for two cups of flour.",
			want:    0.0,
			reason:  "no safety vocabulary present",
		},
		{
			name:    "general type has no structural signals",
			a:       &query.Analysis{Raw: "anything", Type: query.TypeGeneral},
			content: "Claude is faster than GPT-5, 85% on MMLU, $20 per month.",
			want:    0.0,
			reason:  "general queries take no structural reward",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.structuralScore(tt.a, tt.content)
			assert.InDelta(t, tt.want, got, 1e-9, tt.reason)
		})
	}
}

func TestConfidenceBoost(t *testing.T) {
	tests := []struct {
		name      string
		queryText string
		content   string
		want      float64
		reason    string
	}{
		{
			name:      "definition phrasing for a question",
			queryText: "What is a context window?",
			content:   "A context window is a limit on input length.",
			want:      1.2,
			reason:    "question query answered by definition phrasing",
		},
		{
			name:      "structured formatting for a question",
			queryText: "what is the token limit",
			content:   "Token limit: 200,000",
			want:      1.15,
			reason:    "colon formatting near the start suggests a direct answer",
		},
		{
			name:      "non-question query gets no boost",
			queryText: "summarize the model lineup",
			content:   "GPT-5 is a large model.",
			want:      1.0,
			reason:    "boosts apply to question-style queries only",
		},
		{
			name:      "question with plain prose",
			queryText: "why did latency improve?",
			content:   "Latency improved after the runtime rewrite",
			want:      1.0,
			reason:    "no definition phrasing and no early formatting",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, confidenceBoost(tt.queryText, tt.content), 1e-9, tt.reason)
		})
	}
}

func TestKeywordOverlap(t *testing.T) {
	terms := termSet("What is the context window?")
	assert.InDelta(t, 1.0, keywordOverlap(terms, "what is the context window"), 1e-9,
		"identical terms overlap fully")
	assert.InDelta(t, 0.0, keywordOverlap(terms, "completely unrelated prose"), 1e-9)
	assert.InDelta(t, 0.0, keywordOverlap(nil, "anything"), 1e-9, "empty query terms overlap nothing")
}

func TestBasicRerankerSortsBySimilarity(t *testing.T) {
	candidates := []Candidate{
		{ChunkID: "low", Similarity: 0.2},
		{ChunkID: "high", Similarity: 0.9},
		{ChunkID: "mid", Similarity: 0.5},
		{ChunkID: "over", Similarity: 1.4},
	}

	scored := BasicReranker{}.Score(nil, candidates)
	require.Len(t, scored, 4)
	assert.Equal(t, "over", scored[0].ChunkID)
	assert.InDelta(t, 1.0, scored[0].FinalScore, 1e-9, "similarity clamps into [0,1]")
	assert.Equal(t, "high", scored[1].ChunkID)
	assert.Equal(t, "mid", scored[2].ChunkID)
	assert.Equal(t, "low", scored[3].ChunkID)

	assert.Zero(t, candidates[0].FinalScore, "input slice stays untouched")
}
