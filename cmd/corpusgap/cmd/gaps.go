package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corpusgap/corpusgap/internal/gap"
	"github.com/corpusgap/corpusgap/internal/output"
	"github.com/corpusgap/corpusgap/internal/store"
)

type gapsOptions struct {
	runID  string
	format string // "text", "json"
}

func newGapsCmd() *cobra.Command {
	var opts gapsOptions

	cmd := &cobra.Command{
		Use:   "gaps",
		Short: "Analyze corpus coverage gaps from evaluation results",
		Long: `Gaps analyzes the most recent evaluation run (or a specific run) and
reports uncovered topics, weak areas per audience role, and
prioritized recommendations for improving the corpus.

Examples:
  corpusgap gaps
  corpusgap gaps --run 4fc2a9d1
  corpusgap gaps --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGaps(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.runID, "run", "", "Run ID to analyze (default: latest)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runGaps(cmd *cobra.Command, opts gapsOptions) error {
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

	resultStore, err := a.openResults()
	if err != nil {
		return err
	}
	defer resultStore.Close()

	ctx := cmd.Context()
	runID := opts.runID
	if runID == "" {
		latest, err := resultStore.LatestRun(ctx)
		if err != nil {
			return err
		}
		if latest == nil {
			return fmt.Errorf("no evaluation runs found, run 'corpusgap evaluate' first")
		}
		runID = latest.ID
	} else if len(runID) < 36 {
		// Accept run ID prefixes.
		full, err := resolveRunPrefix(ctx, resultStore, runID)
		if err != nil {
			return err
		}
		runID = full
	}

	results, err := resultStore.GetResults(ctx, runID)
	if err != nil {
		return err
	}

	analysis := gap.NewAnalyzer(a.logger).Analyze(results)

	if opts.format == "json" {
		data, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	printGapReport(out, analysis)
	return nil
}

// resolveRunPrefix matches a short run ID prefix against recent runs.
func resolveRunPrefix(ctx context.Context, resultStore *store.ResultStore, prefix string) (string, error) {
	runs, err := resultStore.ListRuns(ctx, 100)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, run := range runs {
		if strings.HasPrefix(run.ID, prefix) {
			matches = append(matches, run.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no run matches %q, see 'corpusgap stats' for recent runs", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("run prefix %q is ambiguous (%d matches)", prefix, len(matches))
	}
}

func printGapReport(out *output.Writer, analysis *gap.Analysis) {
	s := analysis.Summary

	out.Statusf("📈", "Corpus gap report: %d queries, %d gaps (%d critical)",
		s.TotalQueries, s.TotalGaps, s.CriticalGaps)
	out.Statusf("", "good %.0f%%  weak %.0f%%  poor %.0f%%",
		s.GoodPercent, s.WeakPercent, s.PoorPercent)
	if s.TotalGaps > 0 {
		out.Statusf("", "average gap score %.1f, improvement potential %.1f",
			s.AverageGapScore, s.ImprovementPotential)
	}
	out.Newline()

	if len(analysis.UncoveredTopics) > 0 {
		out.Statusf("🕳️ ", "Uncovered topics: %s", strings.Join(analysis.UncoveredTopics, ", "))
	}

	for _, area := range analysis.WeakAreas {
		out.Statusf("⚠️ ", "%s: mean %.1f over %d queries (%s)",
			area.Role, area.MeanScore, area.QueryCount, area.Category)
		for _, q := range area.SampleQuestions {
			out.Statusf("", "   e.g. %s", q)
		}
	}

	if len(analysis.Recommendations) == 0 {
		out.Newline()
		out.Success("No recommendations, the corpus covers this question set well")
		return
	}

	out.Newline()
	out.Status("🛠️ ", "Recommendations (highest priority first):")
	for i, rec := range analysis.Recommendations {
		out.Statusf("", "%d. [%s] %s", i+1, strings.ToUpper(string(rec.Priority)), rec.Description)
		out.Statusf("", "   %s (expected gain %.1f)", rec.Remediation, rec.ExpectedImprovement)
		for _, strategy := range rec.Strategies {
			out.Statusf("", "   - %s", strategy)
		}
	}
}
