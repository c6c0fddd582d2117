package pipeline

import (
	"context"
	"log/slog"

	"scenecast/internal/logging"
	"scenecast/internal/queue"
	"scenecast/internal/services/prodrecord"
)

// ensureRecord creates the remote production record on first run. Failures
// only log; a job never waits on the record service.
func (r *Runner) ensureRecord(ctx context.Context, job *queue.Job, logger *slog.Logger) {
	if r.collab.Records == nil || job.ProductionRecordID != "" {
		return
	}
	id, err := r.collab.Records.Create(ctx, recordForJob(job))
	if err != nil {
		logger.Debug("production record create failed", logging.Error(err))
		return
	}
	job.ProductionRecordID = id
	if err := r.store.Update(ctx, job); err != nil {
		logger.Debug("production record id not persisted", logging.Error(err))
	}
}

// syncRecord pushes the job's current state to the production record
// service, best-effort.
func (r *Runner) syncRecord(ctx context.Context, job *queue.Job, logger *slog.Logger) {
	if r.collab.Records == nil || job.ProductionRecordID == "" {
		return
	}
	if err := r.collab.Records.Update(ctx, job.ProductionRecordID, recordForJob(job)); err != nil {
		logger.Debug("production record sync failed", logging.Error(err))
	}
}

func recordForJob(job *queue.Job) prodrecord.Record {
	record := prodrecord.Record{
		Title:     job.Title,
		Status:    string(job.Status),
		VideoPath: job.FinalVideoPath,
		ExportDir: job.ExportDir,
		Error:     job.ErrorMessage,
	}
	if len(job.CompletedSteps) > 0 {
		record.Step = string(job.CompletedSteps[len(job.CompletedSteps)-1])
	}
	if job.FailedStep != "" {
		record.Step = string(job.FailedStep)
	}
	return record
}
