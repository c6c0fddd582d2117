package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"scenecast/internal/logging"
	"scenecast/internal/queue"
)

// AddJob enqueues a new job from a title and source script.
func (d *Daemon) AddJob(ctx context.Context, title, sourceScript, preset string, settings queue.JobSettings) (*queue.Job, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("job title is required")
	}
	if strings.TrimSpace(sourceScript) == "" {
		return nil, errors.New("source script is required")
	}
	job, err := d.store.NewJob(ctx, title, sourceScript, preset, settings)
	if err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}
	d.logger.Info("job queued",
		slog.Int64(logging.FieldJobID, job.ID),
		slog.String("title", title))
	d.workflow.Kick()
	return job, nil
}

// ListQueue returns jobs filtered by optional statuses.
func (d *Daemon) ListQueue(ctx context.Context, statuses []queue.Status) ([]*queue.Job, error) {
	return d.store.List(ctx, statuses...)
}

// GetJob fetches one job by id.
func (d *Daemon) GetJob(ctx context.Context, id int64) (*queue.Job, error) {
	return d.store.GetByID(ctx, id)
}

// RemoveJobs deletes jobs and their cached artifacts. Running jobs are
// stopped first.
func (d *Daemon) RemoveJobs(ctx context.Context, ids []int64) (int64, error) {
	var removed int64
	for _, id := range ids {
		if _, err := d.workflow.StopJob(ctx, id); err != nil {
			return removed, err
		}
		ok, err := d.store.Remove(ctx, id)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// RetryErrored requeues errored jobs for a fresh run. An empty id list
// retries every errored job.
func (d *Daemon) RetryErrored(ctx context.Context, ids []int64) (int64, error) {
	updated, err := d.store.Retry(ctx, ids...)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		d.workflow.Kick()
	}
	return updated, nil
}

// RetryFromStep requeues one terminal job to resume at the given step,
// discarding that step's artifact and everything after it.
func (d *Daemon) RetryFromStep(ctx context.Context, id int64, step queue.Step) error {
	if err := d.store.RetryFromStep(ctx, id, step); err != nil {
		return err
	}
	d.workflow.Kick()
	return nil
}

// StopJobs cooperatively stops running jobs or marks queued ones as stopped.
func (d *Daemon) StopJobs(ctx context.Context, ids []int64) (int64, error) {
	var stopped int64
	for _, id := range ids {
		ok, err := d.workflow.StopJob(ctx, id)
		if err != nil {
			return stopped, err
		}
		if ok {
			stopped++
		}
	}
	return stopped, nil
}

// ClearQueue removes all jobs.
func (d *Daemon) ClearQueue(ctx context.Context) (int64, error) {
	return d.store.Clear(ctx)
}

// ClearDone removes finished jobs.
func (d *Daemon) ClearDone(ctx context.Context) (int64, error) {
	return d.store.ClearDone(ctx)
}

// ClearErrored removes errored jobs.
func (d *Daemon) ClearErrored(ctx context.Context) (int64, error) {
	return d.store.ClearErrored(ctx)
}

// ResetStuck requeues jobs stranded in the running state.
func (d *Daemon) ResetStuck(ctx context.Context) (int64, error) {
	updated, err := d.store.ResetStuckRunning(ctx)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		d.workflow.Kick()
	}
	return updated, nil
}

// QueueHealth returns aggregate queue diagnostics.
func (d *Daemon) QueueHealth(ctx context.Context) (queue.HealthSummary, error) {
	return d.store.Health(ctx)
}

// RunConfig returns the effective dispatch configuration.
func (d *Daemon) RunConfig(ctx context.Context) (queue.RunConfig, error) {
	stored, found, err := d.store.LoadRunConfig(ctx)
	if err != nil {
		return queue.RunConfig{}, err
	}
	if !found {
		stored = queue.RunConfig{
			MaxConcurrent:     d.cfg.Queue.MaxConcurrent,
			StartDelaySeconds: d.cfg.Queue.StartDelaySeconds,
			OutputDir:         d.cfg.Paths.OutputDir,
		}
	}
	stored.Normalize()
	return stored, nil
}

// SetRunConfig persists a new dispatch configuration. It applies to future
// starts only; running jobs are never preempted.
func (d *Daemon) SetRunConfig(ctx context.Context, rc queue.RunConfig) error {
	if err := d.store.SaveRunConfig(ctx, rc); err != nil {
		return err
	}
	d.logger.Info("run config updated",
		slog.Int("max_concurrent", rc.MaxConcurrent),
		slog.Int("start_delay_seconds", rc.StartDelaySeconds))
	d.workflow.Kick()
	return nil
}
