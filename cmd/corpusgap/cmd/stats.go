package cmd

import (
	"github.com/spf13/cobra"

	"github.com/corpusgap/corpusgap/internal/output"
	"github.com/corpusgap/corpusgap/internal/store"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics and recent evaluation runs",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
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

	ctx := cmd.Context()

	docs, err := a.chunks.CountDocuments(ctx)
	if err != nil {
		return err
	}
	chunks, err := a.chunks.CountChunks(ctx)
	if err != nil {
		return err
	}
	keywords, err := a.keywords.Count()
	if err != nil {
		return err
	}
	model, err := a.chunks.GetState(ctx, store.StateKeyIndexModel)
	if err != nil {
		return err
	}
	dims, err := a.chunks.GetState(ctx, store.StateKeyIndexDimension)
	if err != nil {
		return err
	}

	out.Statusf("📚", "Corpus: %d documents, %d chunks", docs, chunks)
	out.Statusf("🔍", "Index: %d vectors, %d keyword entries", a.vectors.Count(), keywords)
	if model != "" {
		out.Statusf("🧠", "Embeddings: %s (%s dimensions)", model, dims)
	} else {
		out.Warning("No index yet, run 'corpusgap ingest' to build one")
	}
	out.Statusf("", "data dir: %s", cfg.Paths.DataDir)

	resultStore, err := a.openResults()
	if err != nil {
		return err
	}
	defer resultStore.Close()

	runs, err := resultStore.ListRuns(ctx, 10)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return nil
	}

	out.Newline()
	out.Status("📊", "Recent evaluation runs:")
	for _, run := range runs {
		out.Statusf("", "%s  %s  %d queries  %.0f%% good  avg %.1f",
			run.ID[:8], run.CreatedAt.Format("2006-01-02 15:04"),
			run.TotalQueries, run.SuccessRate*100, run.AverageScore)
	}
	return nil
}
