package queue

import (
	"context"
	"fmt"
	"time"
)

// Retry moves errored or done jobs back to queued, keeping every checkpoint.
// An empty id list retries all errored jobs.
func (s *Store) Retry(ctx context.Context, ids ...int64) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if len(ids) == 0 {
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE queue_jobs
            SET status = ?, progress_stage = 'Retry requested', progress_percent = 0,
                progress_message = NULL, error_message = NULL, warning_message = NULL,
                failed_step = NULL, retry_from_step = NULL, completed_steps = NULL,
                updated_at = ?
            WHERE status = ?`,
			StatusQueued,
			now,
			StatusError,
		)
		if err != nil {
			return 0, fmt.Errorf("retry errored jobs: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+4)
	args = append(args, StatusQueued, now)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, StatusError, StatusDone)
	query := `UPDATE queue_jobs
        SET status = ?, progress_stage = 'Retry requested', progress_percent = 0,
            progress_message = NULL, error_message = NULL, warning_message = NULL,
            failed_step = NULL, retry_from_step = NULL, completed_steps = NULL,
            updated_at = ?
        WHERE id IN (` + placeholders + `) AND status IN (?, ?)`
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected jobs: %w", err)
	}
	return res.RowsAffected()
}

// RetryFromStep requeues a terminal job to resume at the given step. Completed
// steps are trimmed to those strictly before the step and checkpoints at or
// after it are discarded, so the next run re-executes from the step while
// reusing earlier artifacts.
func (s *Store) RetryFromStep(ctx context.Context, id int64, step Step) error {
	if StepIndex(step) < 0 {
		return fmt.Errorf("unknown step %q", step)
	}

	job, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job %d not found", id)
	}
	if !job.Status.IsTerminal() {
		return fmt.Errorf("job %d is %s; only done or errored jobs can be retried", id, job.Status)
	}

	job.Status = StatusQueued
	job.RetryFromStep = step
	job.TrimCompletedBefore(step)
	job.FailedStep = ""
	job.ErrorMessage = ""
	job.WarningMessage = ""
	job.SetProgress("Retry requested", fmt.Sprintf("Will resume from %s", step), 0)

	if err := s.Update(ctx, job); err != nil {
		return err
	}
	return s.DeleteCheckpointsFrom(ctx, id, step)
}

// ResetStuckRunning moves running jobs back to queued. Called on daemon
// startup so a crash never strands jobs mid-pipeline.
func (s *Store) ResetStuckRunning(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE queue_jobs
         SET status = ?, progress_stage = 'Reset from interrupted run',
             progress_percent = 0, progress_message = NULL, updated_at = ?
         WHERE status = ?`,
		StatusQueued,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck jobs: %w", err)
	}
	return res.RowsAffected()
}

// ClearDone removes only completed jobs from the queue.
func (s *Store) ClearDone(ctx context.Context) (int64, error) {
	return s.clearByStatus(ctx, StatusDone)
}

// ClearErrored removes only errored jobs from the queue.
func (s *Store) ClearErrored(ctx context.Context) (int64, error) {
	return s.clearByStatus(ctx, StatusError)
}

// Clear removes all jobs and their checkpoints.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM job_checkpoints`); err != nil {
		return 0, fmt.Errorf("clear checkpoints: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM queue_jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) clearByStatus(ctx context.Context, status Status) (int64, error) {
	if _, err := s.db.ExecContext(
		ctx,
		`DELETE FROM job_checkpoints WHERE job_id IN (SELECT id FROM queue_jobs WHERE status = ?)`,
		status,
	); err != nil {
		return 0, fmt.Errorf("clear %s checkpoints: %w", status, err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM queue_jobs WHERE status = ?`, status)
	if err != nil {
		return 0, fmt.Errorf("clear %s jobs: %w", status, err)
	}
	return res.RowsAffected()
}
