package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"scenecast/internal/logging"
	"scenecast/internal/pipeline"
	"scenecast/internal/queue"
	"scenecast/internal/services"
)

// Start begins background dispatching.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancelFn := context.WithCancel(ctx)
	m.cancelFn = cancelFn
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.dispatch(runCtx)
	m.Kick()
	return nil
}

// Stop terminates dispatching, interrupts in-flight jobs, and waits for
// every worker to finish persisting its terminal state.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancelFn := m.cancelFn
	m.running = false
	m.cancelFn = nil
	m.mu.Unlock()

	cancelFn()
	m.wg.Wait()
}

// Kick wakes the dispatcher, typically after new jobs enter the queue.
func (m *Manager) Kick() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

// dispatch is the single dispatcher loop. It claims queued jobs in FIFO
// order, spacing starts by the configured delay, and goes idle when the
// queue drains or the concurrency limit is reached.
func (m *Manager) dispatch(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.kick:
		case <-m.workerDone:
		}

		for {
			if ctx.Err() != nil {
				return
			}

			stored, found, err := m.store.LoadRunConfig(ctx)
			if err != nil {
				m.dispatchError(ctx, err)
				break
			}
			rc := m.effectiveRunConfig(stored, found)

			m.mu.Lock()
			atLimit := m.inFlight >= rc.MaxConcurrent
			m.mu.Unlock()
			if atLimit {
				break
			}

			job, err := m.store.ClaimNextQueued(ctx)
			if err != nil {
				m.dispatchError(ctx, err)
				break
			}
			if job == nil {
				m.checkQueueCompletion(ctx)
				break
			}

			m.startWorker(ctx, job, pipeline.Overrides{
				OutputDir:     rc.OutputDir,
				ExportToggles: rc.ExportToggles,
			})

			if delay := rc.StartDelay(); delay > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(delay):
				}
			}
		}
	}
}

func (m *Manager) dispatchError(ctx context.Context, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	m.setLastError(err)
	m.logger.Error("dispatch failed",
		logging.Error(err),
		slog.String(logging.FieldEventType, "dispatch_failed"))
	retry := time.Duration(m.cfg.Queue.ErrorRetryInterval) * time.Second
	if retry <= 0 {
		retry = 5 * time.Second
	}
	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(retry):
			m.Kick()
		}
	}()
}

func (m *Manager) startWorker(ctx context.Context, job *queue.Job, overrides pipeline.Overrides) {
	m.mu.Lock()
	m.inFlight++
	m.mu.Unlock()
	m.onJobStarted(ctx, job)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			m.mu.Lock()
			m.inFlight--
			m.mu.Unlock()
			select {
			case m.workerDone <- struct{}{}:
			default:
			}
		}()
		m.runJob(ctx, job, overrides)
	}()
}

func (m *Manager) runJob(ctx context.Context, job *queue.Job, overrides pipeline.Overrides) {
	runCtx := services.WithRequestID(services.WithJobID(ctx, job.ID), uuid.NewString())
	jobCtx, release := m.registry.Register(runCtx, job.ID)
	defer release()

	err := m.runner.Run(jobCtx, job, overrides)
	m.recordOutcome(err)

	switch {
	case err == nil:
		m.onJobCompleted(ctx, job)
	case errors.Is(ctx.Err(), context.Canceled):
		// Daemon shutdown; the runner already persisted the stop.
	default:
		m.setLastError(err)
		m.onJobFailed(ctx, job)
	}
}

// StopJob cancels a running job or marks a queued one as stopped. It returns
// false when the job is already terminal or unknown.
func (m *Manager) StopJob(ctx context.Context, id int64) (bool, error) {
	if m.registry.Cancel(id) {
		return true, nil
	}
	job, err := m.store.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if job == nil || job.Status != queue.StatusQueued {
		return false, nil
	}
	job.SetStopped("", queue.UserStopReason)
	if err := m.store.Update(ctx, job); err != nil {
		return false, err
	}
	return true, nil
}

// StopAll cancels every in-flight job.
func (m *Manager) StopAll() {
	m.registry.CancelAll()
}
