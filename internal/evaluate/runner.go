package evaluate

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/corpusgap/corpusgap/internal/quality"
	"github.com/corpusgap/corpusgap/internal/retrieval"
)

// Summary aggregates one evaluation run.
type Summary struct {
	TotalQuestions int           `json:"total_questions"`
	SuccessRate    float64       `json:"success_rate"`
	AverageScore   float64       `json:"average_score"`
	GoodCount      int           `json:"good_count"`
	WeakCount      int           `json:"weak_count"`
	PoorCount      int           `json:"poor_count"`
	Elapsed        time.Duration `json:"elapsed"`
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// TopK is how many documents to retrieve per question.
	TopK int

	// Concurrency bounds parallel questions (default NumCPU).
	Concurrency int

	// Thresholds are the quality band cutoffs for the run; the zero
	// value means the 7.0/5.0 defaults.
	Thresholds quality.Thresholds

	Logger *slog.Logger
}

// Runner evaluates questions against the retrieval pipeline
// concurrently, preserving input order in the results.
type Runner struct {
	pipeline    *retrieval.Pipeline
	topK        int
	concurrency int
	thresholds  quality.Thresholds
	logger      *slog.Logger
}

// NewRunner creates an evaluation runner.
func NewRunner(pipeline *retrieval.Pipeline, opts RunnerOptions) *Runner {
	topK := opts.TopK
	if topK <= 0 {
		topK = retrieval.DefaultPipelineConfig().DefaultTopK
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	thresholds := quality.NewThresholds(opts.Thresholds.Good, opts.Thresholds.Weak)
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		pipeline:    pipeline,
		topK:        topK,
		concurrency: concurrency,
		thresholds:  thresholds,
		logger:      logger,
	}
}

// Run evaluates every question and returns per-question results plus
// an aggregate summary. Retrieval failures degrade to empty document
// lists rather than aborting the run; only context cancellation stops
// it early.
func (r *Runner) Run(ctx context.Context, questions []Question) ([]quality.Result, *Summary, error) {
	start := time.Now()

	results := make([]quality.Result, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, q := range questions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res := r.pipeline.Retrieve(gctx, q.Question, r.topK)

			docs := make([]quality.RetrievedDoc, 0, len(res.Documents))
			for _, cand := range res.Documents {
				docs = append(docs, quality.RetrievedDoc{
					Title:      cand.Title,
					Similarity: cand.Similarity,
				})
			}

			results[i] = r.thresholds.NewResult(q.Question, q.Role, res.AverageScore, docs)

			r.logger.Debug("question evaluated",
				slog.String("question", q.Question),
				slog.String("role", q.Role),
				slog.Float64("score", results[i].Score),
				slog.String("status", string(results[i].Status)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	summary := Summarize(results)
	summary.Elapsed = time.Since(start)

	r.logger.Info("evaluation complete",
		slog.Int("questions", summary.TotalQuestions),
		slog.Float64("success_rate", summary.SuccessRate),
		slog.Float64("average_score", summary.AverageScore),
		slog.Duration("elapsed", summary.Elapsed))

	return results, summary, nil
}

// Summarize computes aggregate statistics over evaluation results.
func Summarize(results []quality.Result) *Summary {
	summary := &Summary{TotalQuestions: len(results)}
	if len(results) == 0 {
		return summary
	}

	var total float64
	for _, res := range results {
		total += res.Score

		switch res.Status {
		case quality.StatusGood:
			summary.GoodCount++
		case quality.StatusWeak:
			summary.WeakCount++
		default:
			summary.PoorCount++
		}
	}

	summary.SuccessRate = quality.SuccessRate(results)
	summary.AverageScore = total / float64(len(results))
	return summary
}
