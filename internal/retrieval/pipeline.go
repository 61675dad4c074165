package retrieval

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/corpusgap/corpusgap/internal/knowledge"
	"github.com/corpusgap/corpusgap/internal/query"
)

// PipelineConfig configures the advanced retrieval pipeline.
type PipelineConfig struct {
	// StageCount is the number of retrieval stages (default: 3).
	StageCount int

	// CandidatesPerStage are per-stage fetch sizes. When shorter than
	// StageCount, tapering defaults apply.
	CandidatesPerStage []int

	// DefaultTopK is the result count when the caller passes topK <= 0.
	DefaultTopK int

	// DisableRerank forces the basic similarity-sort path.
	DisableRerank bool

	// CacheSize bounds the query cache entries (default: 512).
	CacheSize int

	// CacheTTL bounds query cache entry lifetime (default: 5m).
	CacheTTL time.Duration
}

// DefaultPipelineConfig returns the standard pipeline settings.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		StageCount:         DefaultStageCount,
		CandidatesPerStage: DefaultCandidatesPerStage(DefaultStageCount),
		DefaultTopK:        5,
		CacheSize:          DefaultCacheSize,
		CacheTTL:           DefaultCacheTTL,
	}
}

// Pipeline is the full retrieval path: query understanding, expansion,
// staged retrieval, composite reranking, and diversity selection, with
// a degraded single-query fallback when the collaborator fails.
//
// The pipeline is synchronous and single-threaded per request; the only
// shared state is the bounded TTL result cache, which is safe for
// concurrent use.
type Pipeline struct {
	understanding *query.Understanding
	expander      *query.Expander
	retriever     *StagedRetriever
	reranker      Reranker
	basic         BasicReranker
	searcher      Searcher
	cache         *resultCache
	config        PipelineConfig
	logger        *slog.Logger
}

// NewPipeline wires the pipeline over a vector-search collaborator and
// a knowledge base.
func NewPipeline(searcher Searcher, kb *knowledge.Base, cfg PipelineConfig, logger *slog.Logger) *Pipeline {
	if kb == nil {
		kb = knowledge.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.StageCount <= 0 {
		cfg.StageCount = DefaultStageCount
	}
	if len(cfg.CandidatesPerStage) < cfg.StageCount {
		cfg.CandidatesPerStage = DefaultCandidatesPerStage(cfg.StageCount)
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 5
	}

	understanding := query.NewUnderstanding(kb)
	var reranker Reranker = NewCompositeReranker(kb, logger)
	if cfg.DisableRerank {
		reranker = BasicReranker{}
	}

	return &Pipeline{
		understanding: understanding,
		expander:      query.NewExpander(understanding),
		retriever:     NewStagedRetriever(searcher, logger),
		reranker:      reranker,
		searcher:      searcher,
		cache:         newResultCache(cfg.CacheSize, cfg.CacheTTL),
		config:        cfg,
		logger:        logger,
	}
}

// Retrieve runs the advanced retrieval pipeline for one query.
//
// Nothing here is fatal: collaborator failures degrade to the basic
// single-query path, and empty inputs yield a well-defined empty
// result. The returned diagnostics trace the decisions taken.
func (p *Pipeline) Retrieve(ctx context.Context, queryText string, topK int) *Result {
	start := time.Now()

	queryText = strings.TrimSpace(queryText)
	if topK <= 0 {
		topK = p.config.DefaultTopK
	}
	if queryText == "" {
		return &Result{Documents: []Candidate{}}
	}

	if cached, ok := p.cache.get(queryText, topK); ok {
		out := *cached
		// Hand out a copy of the documents; callers may mutate what
		// they receive and the cached slice must stay intact.
		out.Documents = make([]Candidate, len(cached.Documents))
		copy(out.Documents, cached.Documents)
		out.Diagnostics.CacheHit = true
		return &out
	}

	a := p.understanding.Analyze(queryText)
	subQueries := p.expander.DecomposeAnalyzed(a)
	expansions := p.expander.Expand(queryText, a.Type)
	stageQueries := mergeQueryLists(subQueries, expansions)

	diag := Diagnostics{
		QueryType:  a.Type,
		Entities:   a.Entities,
		SubQueries: subQueries,
		Expansions: expansions,
	}

	pool, stageStats, err := p.retriever.Retrieve(ctx, stageQueries, p.config.StageCount, p.config.CandidatesPerStage)
	diag.Stages = stageStats
	if err != nil {
		p.logger.Warn("staged retrieval failed, using basic fallback",
			slog.String("query", queryText),
			slog.String("error", err.Error()))
		return p.basicRetrieve(ctx, queryText, topK, diag, start)
	}

	scored := p.reranker.Score(a, pool)
	ranked := Diversify(scored, topK)

	diag.Elapsed = time.Since(start)
	result := &Result{
		Documents:    ranked,
		AverageScore: averageFinalScore(ranked),
		Diagnostics:  diag,
	}

	p.cache.set(queryText, topK, result)

	p.logger.Debug("retrieval complete",
		slog.String("query", queryText),
		slog.String("query_type", string(a.Type)),
		slog.Int("pool", len(pool)),
		slog.Int("results", len(ranked)),
		slog.Duration("elapsed", diag.Elapsed))

	return result
}

// basicRetrieve is the degraded path: one query, one stage, pure
// similarity ranking. A failure here yields an empty result, never an
// error past the boundary.
func (p *Pipeline) basicRetrieve(ctx context.Context, queryText string, topK int, diag Diagnostics, start time.Time) *Result {
	diag.Degraded = true

	candidates, err := p.searcher.VectorSearch(ctx, queryText, topK)
	if err != nil {
		p.logger.Error("fallback search failed, returning empty result",
			slog.String("query", queryText),
			slog.String("error", err.Error()))
		diag.Elapsed = time.Since(start)
		return &Result{Documents: []Candidate{}, Diagnostics: diag}
	}

	ranked := p.basic.Score(nil, dedupeByChunkID(candidates))
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	diag.Elapsed = time.Since(start)
	return &Result{
		Documents:    ranked,
		AverageScore: averageFinalScore(ranked),
		Diagnostics:  diag,
	}
}

// mergeQueryLists concatenates sub-queries and expansions, dedup
// case-insensitively, preserving order (sub-queries first since the
// early stages carry the widest fetch sizes).
func mergeQueryLists(subQueries, expansions []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]string{subQueries, expansions} {
		for _, q := range list {
			key := strings.ToLower(strings.TrimSpace(q))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, q)
		}
	}
	return out
}

// dedupeByChunkID keeps the first candidate per chunk ID.
func dedupeByChunkID(candidates []Candidate) []Candidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.ChunkID == "" || seen[c.ChunkID] {
			continue
		}
		seen[c.ChunkID] = true
		out = append(out, c)
	}
	return out
}

// averageFinalScore is the mean FinalScore, 0 for an empty set.
func averageFinalScore(candidates []Candidate) float64 {
	if len(candidates) == 0 {
		return 0
	}
	var sum float64
	for _, c := range candidates {
		sum += c.FinalScore
	}
	return sum / float64(len(candidates))
}
