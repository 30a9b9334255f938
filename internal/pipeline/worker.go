package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"github.com/dgallion1/docmark/internal/parser"
)

// Worker processes a single document job.
type Worker struct {
	engine *Engine
	log    *slog.Logger
}

func NewWorker(engine *Engine, log *slog.Logger) *Worker {
	return &Worker{engine: engine, log: log}
}

// Process runs the engine for a job and records the outcome on it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	phase := string(StatusQueued)
	result, err := w.engine.Process(ctx, bytes.NewReader(job.FileData()), job.Filename, func(s JobStatus) {
		phase = string(s)
		job.SetStatus(s, phase)
	})

	switch {
	case err == nil:
		job.SetResult(result)
		job.SetStatus(StatusCompleted, "done")
		log.Info("job complete", "sentences", len(result.Sentences), "marked", result.Marked)
	case errors.Is(err, parser.ErrNotReadable):
		log.Info("document not readable")
		job.AddError(err.Error())
		job.SetStatus(StatusNotReadable, phase)
	case errors.Is(err, parser.ErrNoContent):
		log.Info("document has no content")
		job.AddError(err.Error())
		job.SetStatus(StatusNoContent, phase)
	default:
		log.Error("job failed", "phase", phase, "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, phase)
	}
}
