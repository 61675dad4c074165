package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corpusgap/corpusgap/internal/evaluate"
	"github.com/corpusgap/corpusgap/internal/output"
	"github.com/corpusgap/corpusgap/internal/quality"
)

type evaluateOptions struct {
	format string // "text", "json"
	topK   int
}

func newEvaluateCmd() *cobra.Command {
	var opts evaluateOptions

	cmd := &cobra.Command{
		Use:   "evaluate [questions.yaml]",
		Short: "Evaluate the corpus against a question set",
		Long: `Evaluate runs every question through the retrieval pipeline, scores
the answers, and stores the results for gap analysis.

The question file is YAML, either a bare list or under a questions key:

  - question: "What does the API cost?"
    role: customer

Examples:
  corpusgap evaluate questions.yaml
  corpusgap evaluate --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runEvaluate(cmd, path, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().IntVarP(&opts.topK, "limit", "n", 0, "Documents retrieved per question (default from config)")

	return cmd
}

func runEvaluate(cmd *cobra.Command, path string, opts evaluateOptions) error {
	out := output.New(cmd.OutOrStdout())

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if path == "" {
		path = cfg.Paths.QuestionsFile
	}
	if path == "" {
		return fmt.Errorf("no question file given and paths.questions_file is not configured")
	}

	questions, err := evaluate.LoadQuestions(path)
	if err != nil {
		return err
	}

	a, err := openApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	topK := opts.topK
	if topK <= 0 {
		topK = cfg.Evaluate.TopK
	}

	thresholds := quality.NewThresholds(cfg.Quality.GoodThreshold, cfg.Quality.WeakThreshold)
	runner := evaluate.NewRunner(a.pipeline, evaluate.RunnerOptions{
		TopK:        topK,
		Concurrency: cfg.Evaluate.Concurrency,
		Thresholds:  thresholds,
		Logger:      a.logger,
	})

	results, summary, err := runner.Run(cmd.Context(), questions)
	if err != nil {
		return err
	}

	resultStore, err := a.openResults()
	if err != nil {
		return err
	}
	defer resultStore.Close()

	ctx := cmd.Context()
	run, err := resultStore.BeginRun(ctx, path)
	if err != nil {
		return err
	}
	if err := resultStore.SaveResults(ctx, run.ID, results); err != nil {
		return err
	}
	if err := resultStore.FinishRun(ctx, run.ID, summary.TotalQuestions, summary.SuccessRate, summary.AverageScore); err != nil {
		return err
	}

	if opts.format == "json" {
		payload := struct {
			RunID   string            `json:"run_id"`
			Summary *evaluate.Summary `json:"summary"`
			Results any               `json:"results"`
		}{run.ID, summary, results}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out.Statusf("📊", "Evaluated %d questions in %s", summary.TotalQuestions, summary.Elapsed.Round(timeRound))
	out.Statusf("", "good: %d  weak: %d  poor: %d", summary.GoodCount, summary.WeakCount, summary.PoorCount)
	out.Statusf("", "success rate: %.0f%%  average score: %.1f", summary.SuccessRate*100, summary.AverageScore)
	out.Newline()

	for _, res := range results {
		icon := "✅"
		switch res.Status {
		case quality.StatusPoor:
			icon = "❌"
		case quality.StatusWeak:
			icon = "⚠️ "
		}
		role := res.Role
		if role == "" {
			role = "general"
		}
		out.Statusf(icon, "%.1f [%s] %s", res.Score, role, res.Question)
	}

	out.Newline()
	out.Successf("Run %s saved, use 'corpusgap gaps' for the gap report", run.ID[:8])
	return nil
}
