package workflow

import (
	"context"
	"errors"
	"time"

	"scenecast/internal/logging"
	"scenecast/internal/queue"
)

func (m *Manager) onJobStarted(ctx context.Context, job *queue.Job) {
	m.mu.Lock()
	first := !m.queueActive
	if first {
		m.queueActive = true
		m.queueStart = time.Now()
		m.processed = 0
		m.failed = 0
	}
	m.mu.Unlock()

	if first {
		if health, err := m.store.Health(ctx); err == nil {
			if err := m.notifier.NotifyQueueStarted(ctx, health.Queued+health.Running); err != nil {
				m.notifyDebug(ctx, "queue start notification failed", err)
			}
		}
	}
	if err := m.notifier.NotifyJobStarted(ctx, job.Title); err != nil {
		m.notifyDebug(ctx, "job start notification failed", err)
	}
}

func (m *Manager) recordOutcome(err error) {
	m.mu.Lock()
	if err == nil {
		m.processed++
	} else {
		m.failed++
	}
	m.mu.Unlock()
}

func (m *Manager) onJobCompleted(ctx context.Context, job *queue.Job) {
	if err := m.notifier.NotifyJobCompleted(ctx, job.Title, job.WarningMessage); err != nil {
		m.notifyDebug(ctx, "job completion notification failed", err)
	}
}

func (m *Manager) onJobFailed(ctx context.Context, job *queue.Job) {
	if err := m.notifier.NotifyJobFailed(ctx, job.Title, string(job.FailedStep), job.ErrorMessage); err != nil {
		m.notifyDebug(ctx, "job failure notification failed", err)
	}
}

// checkQueueCompletion sends the queue-drained notification once per batch,
// after the last in-flight job finishes with nothing left to claim.
func (m *Manager) checkQueueCompletion(ctx context.Context) {
	m.mu.Lock()
	idle := m.queueActive && m.inFlight == 0
	if !idle {
		m.mu.Unlock()
		return
	}
	start := m.queueStart
	processed := m.processed
	failed := m.failed
	m.queueActive = false
	m.queueStart = time.Time{}
	m.mu.Unlock()

	duration := time.Duration(0)
	if !start.IsZero() {
		duration = time.Since(start)
	}
	if err := m.notifier.NotifyQueueCompleted(ctx, processed, failed, duration); err != nil {
		m.notifyDebug(ctx, "queue completion notification failed", err)
	}
}

func (m *Manager) notifyDebug(ctx context.Context, message string, err error) {
	if errors.Is(err, context.Canceled) {
		m.logger.Debug("daemon shutting down, notification skipped")
		return
	}
	m.logger.Debug(message, logging.Error(err))
}
