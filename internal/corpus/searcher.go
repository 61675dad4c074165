package corpus

import (
	"context"
	"log/slog"
	"sort"

	"github.com/corpusgap/corpusgap/internal/embed"
	"github.com/corpusgap/corpusgap/internal/errors"
	"github.com/corpusgap/corpusgap/internal/retrieval"
	"github.com/corpusgap/corpusgap/internal/store"
)

// Hybrid score weights. Vector similarity dominates; keyword hits
// nudge lexically exact matches upward.
const (
	DefaultVectorWeight  = 0.75
	DefaultKeywordWeight = 0.25
)

// HybridSearcher implements retrieval.Searcher over the vector and
// keyword indexes. Per query it blends vector similarity with a
// normalized keyword score, so the returned similarity stays in [0,1].
type HybridSearcher struct {
	chunks        *store.ChunkStore
	vectors       store.VectorStore
	keywords      store.KeywordIndex
	embedder      embed.Embedder
	vectorWeight  float64
	keywordWeight float64
	logger        *slog.Logger
}

// NewHybridSearcher creates a searcher over the given stores.
func NewHybridSearcher(chunks *store.ChunkStore, vectors store.VectorStore, keywords store.KeywordIndex, embedder embed.Embedder, logger *slog.Logger) *HybridSearcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &HybridSearcher{
		chunks:        chunks,
		vectors:       vectors,
		keywords:      keywords,
		embedder:      embedder,
		vectorWeight:  DefaultVectorWeight,
		keywordWeight: DefaultKeywordWeight,
		logger:        logger,
	}
}

// VectorSearch returns the topK best chunks for the query. A keyword
// index failure degrades to vector-only search rather than erroring;
// an embedding or vector index failure is fatal for the query.
func (h *HybridSearcher) VectorSearch(ctx context.Context, queryText string, topK int) ([]retrieval.Candidate, error) {
	if topK <= 0 {
		return []retrieval.Candidate{}, nil
	}

	queryVec, err := h.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, errors.New(errors.ErrCodeEmbeddingFailed, "failed to embed query", err)
	}

	// Over-fetch so keyword blending can promote hits outside the
	// vector topK.
	fetchK := topK * 2

	vecResults, err := h.vectors.Search(ctx, queryVec, fetchK)
	if err != nil {
		return nil, errors.New(errors.ErrCodeSearchFailed, "vector search failed", err)
	}

	kwResults, err := h.keywords.Search(ctx, queryText, fetchK)
	if err != nil {
		h.logger.Warn("keyword search failed, using vector-only results",
			slog.String("query", queryText),
			slog.String("error", err.Error()))
		kwResults = nil
	}

	scores := h.blend(vecResults, kwResults)
	if len(scores) == 0 {
		return []retrieval.Candidate{}, nil
	}

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > topK {
		ids = ids[:topK]
	}

	chunks, err := h.chunks.GetChunks(ctx, ids)
	if err != nil {
		return nil, errors.StoreError("failed to resolve chunks", err)
	}

	candidates := make([]retrieval.Candidate, 0, len(chunks))
	for _, chunk := range chunks {
		candidates = append(candidates, retrieval.Candidate{
			ChunkID:    chunk.ID,
			DocID:      chunk.DocID,
			Content:    chunk.Content,
			Title:      chunk.Title,
			Similarity: scores[chunk.ID],
		})
	}

	return candidates, nil
}

// blend combines vector and keyword hits into one similarity per
// chunk. Keyword scores are unbounded BM25 values, so they are
// normalized against the best hit before weighting.
func (h *HybridSearcher) blend(vecResults []*store.VectorResult, kwResults []*store.KeywordResult) map[string]float64 {
	scores := make(map[string]float64, len(vecResults)+len(kwResults))

	for _, r := range vecResults {
		scores[r.ID] = h.vectorWeight * float64(r.Score)
	}

	if len(kwResults) > 0 {
		maxScore := kwResults[0].Score
		for _, r := range kwResults {
			if r.Score > maxScore {
				maxScore = r.Score
			}
		}
		if maxScore > 0 {
			for _, r := range kwResults {
				scores[r.ID] += h.keywordWeight * (r.Score / maxScore)
			}
		}
	}

	for id, s := range scores {
		if s > 1.0 {
			scores[id] = 1.0
		}
	}
	return scores
}

var _ retrieval.Searcher = (*HybridSearcher)(nil)
