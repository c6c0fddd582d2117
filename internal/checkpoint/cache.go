package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"

	"scenecast/internal/queue"
)

// Storage is the persistence surface the cache needs from the queue store.
type Storage interface {
	SaveCheckpoint(ctx context.Context, jobID int64, step queue.Step, payload string) error
	Checkpoint(ctx context.Context, jobID int64, step queue.Step) (string, bool, error)
	CheckpointSteps(ctx context.Context, jobID int64) ([]queue.Step, error)
	DeleteCheckpointsFrom(ctx context.Context, jobID int64, step queue.Step) error
	DeleteCheckpoints(ctx context.Context, jobID int64) error
}

// Cache provides typed access to one job's step artifacts. Artifacts are
// written only on step success and read only when a later run resumes past
// the step; they are never shared between jobs.
type Cache struct {
	store Storage
	jobID int64
}

// ForJob scopes a cache to a single job.
func ForJob(store Storage, jobID int64) *Cache {
	return &Cache{store: store, jobID: jobID}
}

// JobID returns the job this cache is scoped to.
func (c *Cache) JobID() int64 {
	return c.jobID
}

// Steps lists the steps with cached artifacts.
func (c *Cache) Steps(ctx context.Context) ([]queue.Step, error) {
	return c.store.CheckpointSteps(ctx, c.jobID)
}

// TrimFrom discards the artifact for step and everything after it.
func (c *Cache) TrimFrom(ctx context.Context, step queue.Step) error {
	return c.store.DeleteCheckpointsFrom(ctx, c.jobID, step)
}

// Clear discards every artifact for the job.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.DeleteCheckpoints(ctx, c.jobID)
}

// Put serializes and persists a step artifact.
func Put[T any](ctx context.Context, c *Cache, step queue.Step, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s artifact: %w", step, err)
	}
	return c.store.SaveCheckpoint(ctx, c.jobID, step, string(data))
}

// Get loads and decodes a step artifact, with ok=false when absent.
func Get[T any](ctx context.Context, c *Cache, step queue.Step) (T, bool, error) {
	var value T
	payload, ok, err := c.store.Checkpoint(ctx, c.jobID, step)
	if err != nil || !ok {
		return value, false, err
	}
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		return value, false, fmt.Errorf("decode %s artifact: %w", step, err)
	}
	return value, true, nil
}
