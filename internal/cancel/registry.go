package cancel

import (
	"context"
	"sync"

	"scenecast/internal/services"
)

// Registry tracks one cancellation handle per in-flight job. Handles are
// created when a run starts and discarded when it finishes, whatever the
// outcome.
type Registry struct {
	mu      sync.Mutex
	cancels map[int64]context.CancelCauseFunc
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{cancels: make(map[int64]context.CancelCauseFunc)}
}

// Register derives a cancellable context for a job run and records its
// cancel handle. The returned release func must be called when the run ends.
func (r *Registry) Register(ctx context.Context, jobID int64) (context.Context, func()) {
	runCtx, cancelCause := context.WithCancelCause(ctx)

	r.mu.Lock()
	r.cancels[jobID] = cancelCause
	r.mu.Unlock()

	release := func() {
		r.mu.Lock()
		delete(r.cancels, jobID)
		r.mu.Unlock()
		cancelCause(nil)
	}
	return runCtx, release
}

// Cancel signals one job's token with the cancelled sentinel as cause.
// Returns false when the job has no in-flight run.
func (r *Registry) Cancel(jobID int64) bool {
	r.mu.Lock()
	cancelCause, ok := r.cancels[jobID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	cancelCause(services.ErrCancelled)
	return true
}

// CancelAll signals every in-flight job, used on daemon shutdown.
func (r *Registry) CancelAll() {
	r.mu.Lock()
	cancels := make([]context.CancelCauseFunc, 0, len(r.cancels))
	for _, cancelCause := range r.cancels {
		cancels = append(cancels, cancelCause)
	}
	r.mu.Unlock()

	for _, cancelCause := range cancels {
		cancelCause(services.ErrCancelled)
	}
}

// Active reports whether a job currently holds a cancellation handle.
func (r *Registry) Active(jobID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cancels[jobID]
	return ok
}

// ActiveIDs returns the identifiers of every in-flight job, unordered.
func (r *Registry) ActiveIDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.cancels))
	for id := range r.cancels {
		ids = append(ids, id)
	}
	return ids
}

// ActiveCount returns the number of in-flight jobs.
func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cancels)
}
