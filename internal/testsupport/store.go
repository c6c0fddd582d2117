package testsupport

import (
	"context"
	"testing"

	"scenecast/internal/config"
	"scenecast/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustNewJob enqueues a job with default settings and returns it.
func MustNewJob(t testing.TB, store *queue.Store, title string) *queue.Job {
	t.Helper()

	settings, err := queue.SettingsFromJSON("")
	if err != nil {
		t.Fatalf("default settings: %v", err)
	}
	job, err := store.NewJob(context.Background(), title, "An opening line.\n\nA closing line.", "", settings)
	if err != nil {
		t.Fatalf("store.NewJob: %v", err)
	}
	return job
}
