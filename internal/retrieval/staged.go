package retrieval

import (
	"context"
	"fmt"
	"log/slog"
)

// Staged retrieval defaults. The funnel widens recall early (diverse
// rewritten queries, loose threshold) and narrows precision later
// (fewer, stricter-filtered queries) without discarding earlier-stage
// survivors.
const (
	// DefaultStageCount is the number of retrieval stages.
	DefaultStageCount = 3

	// stageWindowSize is how many queries each stage issues.
	stageWindowSize = 2

	// baseThreshold is the similarity floor applied from stage 1 on.
	baseThreshold = 0.4

	// thresholdStep tightens the floor per stage index.
	thresholdStep = 0.1
)

// DefaultCandidatesPerStage returns the per-stage fetch sizes for the
// given stage count, tapering from wide to narrow.
func DefaultCandidatesPerStage(stages int) []int {
	sizes := make([]int, stages)
	for i := range sizes {
		n := 10 - 3*i
		if n < 3 {
			n = 3
		}
		sizes[i] = n
	}
	return sizes
}

// StagedRetriever issues vector searches for expanded queries across a
// fixed number of stages with progressively tightening score
// thresholds, deduplicating by chunk identity.
type StagedRetriever struct {
	searcher Searcher
	logger   *slog.Logger
}

// NewStagedRetriever creates a staged retriever over the given
// vector-search collaborator.
func NewStagedRetriever(searcher Searcher, logger *slog.Logger) *StagedRetriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &StagedRetriever{searcher: searcher, logger: logger}
}

// StageThreshold returns the minimum-similarity filter for a stage:
// 0 for stage 0 (accept everything), then 0.4 + 0.1*stage. The filter
// applies only to candidates retrieved in that stage, never
// retroactively to earlier survivors.
func StageThreshold(stage int) float64 {
	if stage == 0 {
		return 0
	}
	return baseThreshold + thresholdStep*float64(stage)
}

// Retrieve runs the staged funnel over the expanded query list.
//
// For stage i, a rotating window of two queries is selected from the
// list (wrapping to the last two once exhausted); each is searched for
// candidatesPerStage[i] results. New candidates are deduplicated
// against a running seen set and, for stages after the first, filtered
// by the stage's similarity floor. All stage results concatenate into
// one pool.
//
// Individual search failures are logged and skipped; an error is
// returned only when every search failed and the pool is empty, so the
// caller can fall back to the degraded path.
func (r *StagedRetriever) Retrieve(
	ctx context.Context,
	queries []string,
	stageCount int,
	candidatesPerStage []int,
) ([]Candidate, []StageStats, error) {
	if len(queries) == 0 {
		return []Candidate{}, nil, nil
	}
	if stageCount <= 0 {
		stageCount = DefaultStageCount
	}
	if len(candidatesPerStage) < stageCount {
		candidatesPerStage = DefaultCandidatesPerStage(stageCount)
	}

	seen := make(map[string]bool)
	pool := make([]Candidate, 0, stageCount*candidatesPerStage[0])
	stats := make([]StageStats, 0, stageCount)

	searches := 0
	failures := 0
	var lastErr error

	for stage := 0; stage < stageCount; stage++ {
		window := stageWindow(queries, stage)
		threshold := StageThreshold(stage)

		st := StageStats{Stage: stage, Queries: window, Threshold: threshold}

		for _, q := range window {
			searches++
			candidates, err := r.searcher.VectorSearch(ctx, q, candidatesPerStage[stage])
			if err != nil {
				failures++
				lastErr = err
				r.logger.Warn("stage search failed",
					slog.Int("stage", stage),
					slog.String("query", q),
					slog.String("error", err.Error()))
				continue
			}

			for _, c := range candidates {
				if c.ChunkID == "" || seen[c.ChunkID] {
					continue
				}
				if stage > 0 && c.Similarity < threshold {
					continue
				}
				seen[c.ChunkID] = true
				c.Stage = stage
				c.SubQuery = q
				pool = append(pool, c)

				if st.Candidates == 0 || c.Similarity < st.MinScore {
					st.MinScore = c.Similarity
				}
				st.Candidates++
			}
		}

		stats = append(stats, st)
	}

	if failures == searches && failures > 0 {
		return nil, stats, fmt.Errorf("all %d stage searches failed: %w", searches, lastErr)
	}

	return pool, stats, nil
}

// stageWindow selects the two queries for a stage, advancing two per
// stage and wrapping to the final two once the list is exhausted.
func stageWindow(queries []string, stage int) []string {
	if len(queries) <= stageWindowSize {
		return queries
	}
	start := stage * stageWindowSize
	if start+stageWindowSize > len(queries) {
		start = len(queries) - stageWindowSize
	}
	return queries[start : start+stageWindowSize]
}
