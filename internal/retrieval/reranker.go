package retrieval

import (
	"log/slog"
	"sort"

	"github.com/corpusgap/corpusgap/internal/knowledge"
	"github.com/corpusgap/corpusgap/internal/query"
)

// Composite score weights. The weighted sum is multiplied by the
// confidence and stage boosts, then capped at 1.0.
const (
	semanticWeight   = 0.6
	keywordWeight    = 0.2
	structuralWeight = 0.2
	alignmentWeight  = 0.1
)

// Stage boost: candidates surfaced by later, more targeted stages get
// a small multiplicative reward.
const stageBoostStep = 0.05

// Reranker orders candidates by relevance to the analyzed query.
type Reranker interface {
	// Score returns new candidate copies with FinalScore populated,
	// sorted descending. The input slice is not mutated.
	Score(a *query.Analysis, candidates []Candidate) []Candidate
}

// CompositeReranker blends semantic similarity, keyword overlap,
// structural pattern signals, and query-document alignment into one
// composite score per candidate.
type CompositeReranker struct {
	kb     *knowledge.Base
	logger *slog.Logger
}

// NewCompositeReranker creates the advanced reranker. The knowledge
// base supplies benchmark vocabulary for the structural signals.
func NewCompositeReranker(kb *knowledge.Base, logger *slog.Logger) *CompositeReranker {
	if kb == nil {
		kb = knowledge.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CompositeReranker{kb: kb, logger: logger}
}

// Score computes the composite score for every candidate and returns
// new scored copies sorted by FinalScore descending. A candidate with
// malformed fields (empty content, out-of-range similarity) scores on
// neutral defaults; it never aborts the rest of the batch.
func (r *CompositeReranker) Score(a *query.Analysis, candidates []Candidate) []Candidate {
	scored := make([]Candidate, len(candidates))
	queryTerms := termSet(a.Raw)

	for i, c := range candidates {
		scored[i] = r.scoreOne(a, queryTerms, c)
	}

	sortByFinalScore(scored)
	return scored
}

// scoreOne computes the composite score for a single candidate.
func (r *CompositeReranker) scoreOne(a *query.Analysis, queryTerms map[string]bool, c Candidate) Candidate {
	semantic := clamp01(c.Similarity)
	keyword := keywordOverlap(queryTerms, c.Content)
	structural := r.structuralScore(a, c.Content)
	alignment := alignmentScore(a.Raw, c.Content)

	confidence := confidenceBoost(a.Raw, c.Content)
	stageBoost := 1.0 + stageBoostStep*float64(c.Stage)

	composite := semanticWeight*semantic +
		keywordWeight*keyword +
		structuralWeight*structural +
		alignmentWeight*alignment
	composite *= confidence * stageBoost
	if composite > 1.0 {
		composite = 1.0
	}

	c.FinalScore = composite
	c.Breakdown = &ScoreBreakdown{
		Semantic:   semantic,
		Keyword:    keyword,
		Structural: structural,
		Alignment:  alignment,
		Confidence: confidence,
		StageBoost: stageBoost,
	}
	return c
}

// BasicReranker is the degraded-mode path: a pure similarity sort with
// no composite scoring. Used when advanced scoring is disabled or the
// pipeline has fallen back after a collaborator failure.
type BasicReranker struct{}

// Score copies candidates, sets FinalScore to the raw similarity, and
// sorts descending.
func (BasicReranker) Score(_ *query.Analysis, candidates []Candidate) []Candidate {
	scored := make([]Candidate, len(candidates))
	copy(scored, candidates)
	for i := range scored {
		scored[i].FinalScore = clamp01(scored[i].Similarity)
	}
	sortByFinalScore(scored)
	return scored
}

// Compile-time interface checks.
var (
	_ Reranker = (*CompositeReranker)(nil)
	_ Reranker = BasicReranker{}
)

// sortByFinalScore sorts descending with deterministic tie-breaking on
// similarity, then chunk ID.
func sortByFinalScore(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].FinalScore != candidates[j].FinalScore {
			return candidates[i].FinalScore > candidates[j].FinalScore
		}
		if candidates[i].Similarity != candidates[j].Similarity {
			return candidates[i].Similarity > candidates[j].Similarity
		}
		return candidates[i].ChunkID < candidates[j].ChunkID
	})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
