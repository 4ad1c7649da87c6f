package pipeline

import (
	"bytes"
	"context"
	"log/slog"

	"docgraph/internal/importer"
	"docgraph/internal/model"
)

// Worker processes a single import job.
type Worker struct {
	importer *importer.Importer
	log      *slog.Logger
}

func NewWorker(im *importer.Importer, log *slog.Logger) *Worker {
	return &Worker{importer: im, log: log}
}

// stageStatus maps importer stage names to job statuses.
var stageStatus = map[string]JobStatus{
	importer.StageParsing:     StatusParsing,
	importer.StageNormalizing: StatusNormalizing,
	importer.StageChunking:    StatusChunking,
	importer.StageCorrelating: StatusCorrelating,
}

// Process runs the import pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	onStage := func(stage string) {
		if status, ok := stageStatus[stage]; ok {
			job.SetStatus(status)
		}
	}

	result, err := w.importer.ImportReaderWithProgress(ctx, bytes.NewReader(job.FileData()), job.Filename, job.Config(), onStage)
	if err != nil {
		log.Error("import failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed)
		return
	}

	job.SetResult(result)
	if result.Status != model.StatusSuccess {
		for _, msg := range result.Errors {
			job.AddError(msg)
		}
		job.SetStatus(StatusFailed)
		return
	}

	log.Info("job complete", "chunks", result.ChunkCount, "tokens", result.TotalTokens)
	job.SetStatus(StatusCompleted)
}
