package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/docrank/internal/analyze"
)

// Worker processes a single collection job.
type Worker struct {
	analyzer *analyze.Analyzer
	stats    *Stats
	log      *slog.Logger
}

func NewWorker(a *analyze.Analyzer, stats *Stats, log *slog.Logger) *Worker {
	return &Worker{analyzer: a, stats: stats, log: log}
}

// Process ranks the job's collection and records the outcome on the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)
	in, files := job.work()

	job.SetStatus(StatusProcessing, "ranking")
	start := time.Now()
	res, err := w.analyzer.Collection(ctx, in, files)
	if err != nil {
		log.Error("collection failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "ranking")
		return
	}
	w.stats.Record(KindCollection, time.Since(start).Milliseconds())

	for _, skipped := range res.Skipped {
		job.AddError(skipped.Error())
	}
	job.SetResult(res)

	switch {
	case len(res.Skipped) == 0:
		job.SetStatus(StatusCompleted, "done")
	case len(res.Skipped) < len(res.Metadata.InputDocuments):
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusFailed, "done")
	}
	log.Info("job finished",
		"documents", len(res.Metadata.InputDocuments),
		"skipped", len(res.Skipped),
		"sections", len(res.ExtractedSections),
	)
}
