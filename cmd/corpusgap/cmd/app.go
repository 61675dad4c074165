package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/corpusgap/corpusgap/internal/config"
	"github.com/corpusgap/corpusgap/internal/corpus"
	"github.com/corpusgap/corpusgap/internal/embed"
	"github.com/corpusgap/corpusgap/internal/knowledge"
	"github.com/corpusgap/corpusgap/internal/retrieval"
	"github.com/corpusgap/corpusgap/internal/store"
)

// timeRound trims durations for display.
const timeRound = 10 * time.Millisecond

// Data file names inside the data directory.
const (
	chunksFile  = "chunks.db"
	vectorsFile = "vectors.hnsw"
	keywordDir  = "keyword.bleve"
	resultsFile = "results.db"
)

// app bundles the opened stores and pipeline for one command run.
type app struct {
	cfg      *config.Config
	chunks   *store.ChunkStore
	vectors  *store.HNSWStore
	keywords *store.BleveIndex
	embedder embed.Embedder
	searcher *corpus.HybridSearcher
	pipeline *retrieval.Pipeline
	logger   *slog.Logger
}

func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working directory: %w", err)
	}
	return config.Load(cwd)
}

func (a *app) vectorPath() string {
	return filepath.Join(a.cfg.Paths.DataDir, vectorsFile)
}

// openApp opens all stores. With requireIndex set, a missing vector
// index is an error; ingest opens without it to build a fresh index.
func openApp(cfg *config.Config, requireIndex bool) (*app, error) {
	logger := slog.Default()
	a := &app{cfg: cfg, logger: logger}

	dataDir := cfg.Paths.DataDir
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create data directory %s: %w", dataDir, err)
	}

	chunks, err := store.NewChunkStore(filepath.Join(dataDir, chunksFile))
	if err != nil {
		return nil, err
	}
	a.chunks = chunks

	keywords, err := store.NewBleveIndex(filepath.Join(dataDir, keywordDir))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.keywords = keywords

	// An existing index fixes the dimensionality regardless of config.
	dims := cfg.Embeddings.Dimensions
	vectorPath := a.vectorPath()
	storedDims, err := store.ReadVectorDimensions(vectorPath)
	if err != nil {
		a.Close()
		return nil, err
	}
	hasIndex := storedDims > 0
	if hasIndex {
		dims = storedDims
	}
	if requireIndex && !hasIndex {
		a.Close()
		return nil, fmt.Errorf("no index found in %s, run 'corpusgap ingest' first", dataDir)
	}

	vectors, err := store.NewHNSWStore(store.DefaultVectorStoreConfig(dims))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.vectors = vectors
	if hasIndex {
		if err := vectors.Load(vectorPath); err != nil {
			a.Close()
			return nil, err
		}
	}

	static := embed.NewStaticEmbedderWithDimensions(dims)
	a.embedder = embed.NewCachedEmbedder(static, cfg.Embeddings.CacheSize)

	a.searcher = corpus.NewHybridSearcher(a.chunks, a.vectors, a.keywords, a.embedder, logger)

	kb, err := loadKnowledge(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.pipeline = retrieval.NewPipeline(a.searcher, kb, retrieval.PipelineConfig{
		StageCount:         cfg.Retrieval.StageCount,
		CandidatesPerStage: cfg.Retrieval.CandidatesPerStage,
		DefaultTopK:        cfg.Retrieval.TopK,
		DisableRerank:      cfg.Retrieval.DisableRerank,
		CacheSize:          cfg.Retrieval.CacheSize,
		CacheTTL:           cfg.CacheTTLDuration(),
	}, logger)

	return a, nil
}

func loadKnowledge(cfg *config.Config) (*knowledge.Base, error) {
	if cfg.Paths.KnowledgeFile == "" {
		return knowledge.Default(), nil
	}
	return knowledge.Load(cfg.Paths.KnowledgeFile)
}

func (a *app) openResults() (*store.ResultStore, error) {
	return store.NewResultStore(filepath.Join(a.cfg.Paths.DataDir, resultsFile))
}

// Close releases every opened store, keeping the first error.
func (a *app) Close() error {
	var firstErr error
	if a.embedder != nil {
		if err := a.embedder.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.vectors != nil {
		if err := a.vectors.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.keywords != nil {
		if err := a.keywords.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.chunks != nil {
		if err := a.chunks.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
