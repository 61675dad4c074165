package cmd

import (
	"sync"

	"github.com/spf13/cobra"

	"github.com/corpusgap/corpusgap/internal/corpus"
	"github.com/corpusgap/corpusgap/internal/output"
)

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <path>",
		Short: "Index a corpus into the local stores",
		Long: `Ingest loads corpus documents, chunks them, and indexes the chunks
for hybrid search.

Accepted inputs:
  a directory of .md/.txt files
  a CSV file with title and content columns
  a JSON array of {title, content} objects

Examples:
  corpusgap ingest ./docs
  corpusgap ingest corpus.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args[0])
		},
	}
	return cmd
}

func runIngest(cmd *cobra.Command, path string) error {
	out := output.New(cmd.OutOrStdout())

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := openApp(cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	loader := corpus.NewLoader()
	if cfg.Ingest.MaxFileSizeMB > 0 {
		loader.MaxFileSize = int64(cfg.Ingest.MaxFileSizeMB) << 20
	}

	docs, err := loader.Load(path)
	if err != nil {
		return err
	}
	out.Statusf("📄", "Loaded %d documents from %s", len(docs), path)

	ingestor := corpus.NewIngestor(a.chunks, a.vectors, a.keywords, a.embedder, corpus.IngestorOptions{
		ChunkSize:    cfg.Ingest.ChunkSize,
		ChunkOverlap: cfg.Ingest.ChunkOverlap,
		BatchSize:    cfg.Ingest.BatchSize,
		Logger:       a.logger,
		OnProgress: progressFunc(out),
	})

	stats, err := ingestor.Ingest(cmd.Context(), docs)
	if err != nil {
		return err
	}
	out.ProgressDone()

	if err := a.vectors.Save(a.vectorPath()); err != nil {
		return err
	}

	out.Successf("Indexed %d chunks from %d documents in %s",
		stats.Chunks, stats.Documents, stats.Elapsed.Round(timeRound))
	return nil
}

// progressFunc serializes progress updates; embedding batches report
// completion from concurrent goroutines.
func progressFunc(out *output.Writer) func(done, total int) {
	var mu sync.Mutex
	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		out.Progress(done, total, "embedding chunks")
	}
}
