package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/corpusgap/corpusgap/internal/embed"
	"github.com/corpusgap/corpusgap/internal/errors"
	"github.com/corpusgap/corpusgap/internal/store"
)

// DefaultEmbedConcurrency bounds parallel embedding batches.
const DefaultEmbedConcurrency = 4

// IngestStats summarizes one ingest pass.
type IngestStats struct {
	Documents int
	Chunks    int
	Elapsed   time.Duration
}

// Ingestor coordinates loading documents into all three stores: chunk
// metadata into SQLite, vectors into HNSW, and text into the keyword
// index.
type Ingestor struct {
	chunks      *store.ChunkStore
	vectors     store.VectorStore
	keywords    store.KeywordIndex
	embedder    embed.Embedder
	chunker     *Chunker
	batchSize   int
	concurrency int
	logger      *slog.Logger
	onProgress  func(done, total int)
}

// IngestorOptions configures an Ingestor.
type IngestorOptions struct {
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
	Concurrency  int
	Logger       *slog.Logger

	// OnProgress, when set, is called after each embedded batch with
	// the number of chunks embedded so far and the total.
	OnProgress func(done, total int)
}

// NewIngestor creates an ingest coordinator.
func NewIngestor(chunks *store.ChunkStore, vectors store.VectorStore, keywords store.KeywordIndex, embedder embed.Embedder, opts IngestorOptions) *Ingestor {
	batchSize := opts.BatchSize
	if batchSize < embed.MinBatchSize {
		batchSize = embed.DefaultBatchSize
	}
	if batchSize > embed.MaxBatchSize {
		batchSize = embed.MaxBatchSize
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultEmbedConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Ingestor{
		chunks:      chunks,
		vectors:     vectors,
		keywords:    keywords,
		embedder:    embedder,
		chunker:     NewChunker(opts.ChunkSize, opts.ChunkOverlap),
		batchSize:   batchSize,
		concurrency: concurrency,
		logger:      logger,
		onProgress:  opts.OnProgress,
	}
}

// Ingest chunks, embeds, and indexes the given documents. Safe to call
// repeatedly; unchanged chunks are replaced in place.
func (in *Ingestor) Ingest(ctx context.Context, docs []*store.Document) (*IngestStats, error) {
	start := time.Now()

	if len(docs) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyCorpus, "no documents to ingest", nil)
	}

	if err := in.validateEmbedder(ctx); err != nil {
		return nil, err
	}

	if err := in.chunks.SaveDocuments(ctx, docs); err != nil {
		return nil, errors.StoreError("failed to save documents", err)
	}

	var allChunks []*store.Chunk
	for _, doc := range docs {
		allChunks = append(allChunks, in.chunker.Chunk(doc)...)
	}
	if len(allChunks) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyCorpus, "documents produced no chunks", nil)
	}

	if err := in.chunks.SaveChunks(ctx, allChunks); err != nil {
		return nil, errors.StoreError("failed to save chunks", err)
	}

	vectors, err := in.embedAll(ctx, allChunks)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(allChunks))
	for i, chunk := range allChunks {
		ids[i] = chunk.ID
	}
	if err := in.vectors.Add(ctx, ids, vectors); err != nil {
		return nil, errors.New(errors.ErrCodeIndexFailed, "failed to add vectors", err)
	}

	if err := in.keywords.Index(ctx, allChunks); err != nil {
		return nil, errors.New(errors.ErrCodeIndexFailed, "failed to index keywords", err)
	}

	if err := in.recordEmbedderState(ctx); err != nil {
		return nil, err
	}

	stats := &IngestStats{
		Documents: len(docs),
		Chunks:    len(allChunks),
		Elapsed:   time.Since(start),
	}
	in.logger.Info("corpus ingested",
		slog.Int("documents", stats.Documents),
		slog.Int("chunks", stats.Chunks),
		slog.Duration("elapsed", stats.Elapsed))

	return stats, nil
}

// embedAll embeds chunk content in batches, with bounded parallelism
// across batches.
func (in *Ingestor) embedAll(ctx context.Context, chunks []*store.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.concurrency)

	for batchStart := 0; batchStart < len(chunks); batchStart += in.batchSize {
		batchEnd := batchStart + in.batchSize
		if batchEnd > len(chunks) {
			batchEnd = len(chunks)
		}
		offset, end := batchStart, batchEnd

		g.Go(func() error {
			texts := make([]string, end-offset)
			for i := offset; i < end; i++ {
				texts[i-offset] = chunks[i].Content
			}

			embeddings, err := in.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return errors.New(errors.ErrCodeEmbeddingFailed,
					fmt.Sprintf("failed to embed batch at %d", offset), err)
			}
			copy(vectors[offset:end], embeddings)
			if in.onProgress != nil {
				in.onProgress(int(done.Add(int64(end-offset))), len(chunks))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// validateEmbedder rejects ingests whose embedder does not match the
// one the existing index was built with.
func (in *Ingestor) validateEmbedder(ctx context.Context) error {
	storedDims, err := in.chunks.GetState(ctx, store.StateKeyIndexDimension)
	if err != nil {
		return errors.StoreError("failed to read index state", err)
	}
	if storedDims == "" {
		return nil // Fresh index.
	}

	dims, convErr := strconv.Atoi(storedDims)
	if convErr == nil && dims != in.embedder.Dimensions() {
		return errors.New(errors.ErrCodeDimensionMismatch,
			fmt.Sprintf("index was built with %d dimensions, embedder produces %d", dims, in.embedder.Dimensions()), nil).
			WithSuggestion("delete the data directory and reingest the corpus")
	}

	storedModel, err := in.chunks.GetState(ctx, store.StateKeyIndexModel)
	if err != nil {
		return errors.StoreError("failed to read index state", err)
	}
	if storedModel != "" && storedModel != in.embedder.ModelName() {
		return errors.New(errors.ErrCodeDimensionMismatch,
			fmt.Sprintf("index was built with model %q, current embedder is %q", storedModel, in.embedder.ModelName()), nil).
			WithSuggestion("delete the data directory and reingest the corpus")
	}

	return nil
}

func (in *Ingestor) recordEmbedderState(ctx context.Context) error {
	if err := in.chunks.SetState(ctx, store.StateKeyIndexDimension, strconv.Itoa(in.embedder.Dimensions())); err != nil {
		return errors.StoreError("failed to record index dimension", err)
	}
	if err := in.chunks.SetState(ctx, store.StateKeyIndexModel, in.embedder.ModelName()); err != nil {
		return errors.StoreError("failed to record index model", err)
	}
	return nil
}
