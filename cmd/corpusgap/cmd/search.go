package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corpusgap/corpusgap/internal/output"
	"github.com/corpusgap/corpusgap/internal/retrieval"
)

type searchOptions struct {
	limit   int
	format  string // "text", "json"
	explain bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed corpus",
		Long: `Search runs one query through the full retrieval pipeline: query
expansion, staged retrieval, composite reranking, and diversity
selection.

Examples:
  corpusgap search "how is the API priced"
  corpusgap search "model capabilities" --limit 3 --format json
  corpusgap search "deployment" --explain`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "Show retrieval diagnostics (stages, expansions, score breakdown)")

	return cmd
}

func runSearch(cmd *cobra.Command, queryText string, opts searchOptions) error {
	out := output.New(cmd.OutOrStdout())

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := openApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	topK := opts.limit
	if topK <= 0 {
		topK = cfg.Retrieval.TopK
	}

	result := a.pipeline.Retrieve(cmd.Context(), queryText, topK)

	if opts.format == "json" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	printSearchResult(out, queryText, result, opts.explain)
	return nil
}

func printSearchResult(out *output.Writer, queryText string, result *retrieval.Result, explain bool) {
	if len(result.Documents) == 0 {
		out.Warningf("No results for %q", queryText)
		return
	}

	out.Statusf("🔍", "%d results for %q (avg score %.2f)",
		len(result.Documents), queryText, result.AverageScore)
	out.Newline()

	for i, doc := range result.Documents {
		out.Statusf("", "%d. %s  [score %.2f, similarity %.2f]",
			i+1, doc.Title, doc.FinalScore, doc.Similarity)
		out.Code(snippet(doc.Content, 240))

		if explain && doc.Breakdown != nil {
			out.Statusf("", "   semantic=%.2f keyword=%.2f structural=%.2f alignment=%.2f confidence=%.2f stage=%.2f",
				doc.Breakdown.Semantic, doc.Breakdown.Keyword, doc.Breakdown.Structural,
				doc.Breakdown.Alignment, doc.Breakdown.Confidence, doc.Breakdown.StageBoost)
		}
	}

	if explain {
		diag := result.Diagnostics
		out.Newline()
		out.Statusf("ℹ️ ", "query type: %s", diag.QueryType)
		if len(diag.SubQueries) > 0 {
			out.Statusf("", "sub-queries: %s", strings.Join(diag.SubQueries, " | "))
		}
		if len(diag.Expansions) > 0 {
			out.Statusf("", "expansions: %s", strings.Join(diag.Expansions, " | "))
		}
		for _, stage := range diag.Stages {
			out.Statusf("", "stage %d: %d candidates (threshold %.2f)",
				stage.Stage, stage.Candidates, stage.Threshold)
		}
		if diag.Degraded {
			out.Warning("pipeline degraded to basic retrieval")
		}
	}
}

// snippet trims content to a display length on a word boundary.
func snippet(content string, limit int) string {
	content = strings.Join(strings.Fields(content), " ")
	if len(content) <= limit {
		return content
	}
	cut := strings.LastIndex(content[:limit], " ")
	if cut <= 0 {
		cut = limit
	}
	return content[:cut] + "…"
}
