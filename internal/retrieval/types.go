// Package retrieval implements the multi-stage retrieval and reranking
// pipeline: staged candidate retrieval over expanded queries, hybrid
// composite scoring, diversity-constrained selection, and a degraded
// single-stage fallback path.
package retrieval

import (
	"context"
	"time"

	"github.com/corpusgap/corpusgap/internal/query"
)

// Candidate is a retrieved chunk of document content with its scores
// and retrieval provenance. Scoring stages return new scored copies
// rather than mutating candidates in place, so the same slice can be
// reused across stages and tests without aliasing surprises.
type Candidate struct {
	// ChunkID is the stable chunk identity. Candidates are unique by
	// ChunkID within one retrieval call.
	ChunkID string

	// DocID is the source document identity.
	DocID string

	// Content is the raw chunk text.
	Content string

	// Title is the source document title.
	Title string

	// Similarity is the vector similarity in [0,1].
	Similarity float64

	// FinalScore is the composite score after reranking, capped at 1.0.
	// Zero until the reranker has run.
	FinalScore float64

	// Stage is the retrieval stage (0-based) that surfaced this candidate.
	Stage int

	// SubQuery is the expanded query that produced this candidate.
	SubQuery string

	// Breakdown holds the per-signal scoring components, retained for
	// diagnostics. Nil until the reranker has run.
	Breakdown *ScoreBreakdown
}

// ScoreBreakdown records the composite-score components for one candidate.
type ScoreBreakdown struct {
	Semantic   float64 `json:"semantic"`
	Keyword    float64 `json:"keyword"`
	Structural float64 `json:"structural"`
	Alignment  float64 `json:"alignment"`
	Confidence float64 `json:"confidence_boost"`
	StageBoost float64 `json:"stage_boost"`
}

// Result is the ordered outcome of one retrieval call. Documents are
// ranked by FinalScore descending.
type Result struct {
	// Documents are the ranked candidates.
	Documents []Candidate

	// AverageScore is the mean FinalScore over Documents (0 if empty).
	AverageScore float64

	// Diagnostics is the structured trace for logging and debugging.
	Diagnostics Diagnostics
}

// Diagnostics traces one retrieval call. It is informational only;
// correctness never depends on it.
type Diagnostics struct {
	QueryType  query.Type   `json:"query_type"`
	Entities   []string     `json:"entities,omitempty"`
	SubQueries []string     `json:"sub_queries,omitempty"`
	Expansions []string     `json:"expansions,omitempty"`
	Stages     []StageStats `json:"stages,omitempty"`

	// Degraded is true when the pipeline fell back to the basic
	// single-query, single-stage, un-reranked path.
	Degraded bool `json:"degraded,omitempty"`

	// CacheHit is true when the result was served from the query cache.
	CacheHit bool `json:"cache_hit,omitempty"`

	Elapsed time.Duration `json:"elapsed,omitempty"`
}

// StageStats records what one retrieval stage contributed.
type StageStats struct {
	// Stage is the 0-based stage index.
	Stage int `json:"stage"`

	// Queries are the sub-queries issued in this stage.
	Queries []string `json:"queries"`

	// Candidates is the number of new candidates the stage added after
	// dedup and threshold filtering.
	Candidates int `json:"candidates"`

	// MinScore is the lowest similarity observed among the stage's
	// accepted candidates (0 when the stage added none).
	MinScore float64 `json:"min_score"`

	// Threshold is the minimum-similarity filter applied to this stage
	// (0 for the first stage, which accepts everything).
	Threshold float64 `json:"threshold"`
}

// Searcher is the external vector-search collaborator. Implementations
// return candidates with at least ChunkID, DocID, Content, Title, and
// Similarity populated.
type Searcher interface {
	VectorSearch(ctx context.Context, queryText string, topK int) ([]Candidate, error)
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, queryText string, topK int) ([]Candidate, error)

// VectorSearch calls f.
func (f SearcherFunc) VectorSearch(ctx context.Context, queryText string, topK int) ([]Candidate, error) {
	return f(ctx, queryText, topK)
}
