package queue_test

import (
	"context"
	"fmt"
	"testing"

	"scenecast/internal/queue"
	"scenecast/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.MustNewJob(t, store, "Sample Script")
	if job.ID == 0 {
		t.Fatal("expected job ID to be assigned")
	}
	if job.Status != queue.StatusQueued {
		t.Fatalf("expected queued status, got %s", job.Status)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.Title != "Sample Script" {
		t.Fatalf("unexpected fetched job: %#v", fetched)
	}
}

func TestClaimNextQueuedIsFIFO(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.MustNewJob(t, store, "First")
	second := testsupport.MustNewJob(t, store, "Second")

	claimed, err := store.ClaimNextQueued(ctx)
	if err != nil {
		t.Fatalf("ClaimNextQueued failed: %v", err)
	}
	if claimed == nil || claimed.ID != first.ID {
		t.Fatalf("expected job %d claimed first, got %#v", first.ID, claimed)
	}
	if claimed.Status != queue.StatusRunning {
		t.Fatalf("expected running status after claim, got %s", claimed.Status)
	}

	claimed, err = store.ClaimNextQueued(ctx)
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	if claimed == nil || claimed.ID != second.ID {
		t.Fatalf("expected job %d claimed second, got %#v", second.ID, claimed)
	}

	claimed, err = store.ClaimNextQueued(ctx)
	if err != nil {
		t.Fatalf("third claim failed: %v", err)
	}
	if claimed != nil {
		t.Fatalf("expected empty queue, got %#v", claimed)
	}
}

func TestClaimClearsPriorFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.MustNewJob(t, store, "Failing")
	job.SetFailed(queue.StepVoice, "synthesis refused")
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, err := store.Retry(ctx, job.ID); err != nil {
		t.Fatalf("Retry failed: %v", err)
	}

	claimed, err := store.ClaimNextQueued(ctx)
	if err != nil {
		t.Fatalf("ClaimNextQueued failed: %v", err)
	}
	if claimed == nil {
		t.Fatal("expected a claimable job")
	}
	if claimed.ErrorMessage != "" || claimed.FailedStep != "" {
		t.Fatalf("expected failure fields cleared, got %q / %q", claimed.ErrorMessage, claimed.FailedStep)
	}
}

func TestRetryAllErrored(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	var errored []*queue.Job
	for i := 0; i < 3; i++ {
		job := testsupport.MustNewJob(t, store, fmt.Sprintf("Job %d", i))
		job.SetFailed(queue.StepScript, "rewrite failed")
		if err := store.Update(ctx, job); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		errored = append(errored, job)
	}
	done := testsupport.MustNewJob(t, store, "Finished")
	done.SetDone("")
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated, err := store.Retry(ctx)
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if int(updated) != len(errored) {
		t.Fatalf("expected %d retried, got %d", len(errored), updated)
	}

	refreshed, err := store.GetByID(ctx, done.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if refreshed.Status != queue.StatusDone {
		t.Fatalf("done job should be untouched by bare retry, got %s", refreshed.Status)
	}
}

func TestRetryFromStepTrimsStateAndCheckpoints(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.MustNewJob(t, store, "Resumable")
	job.MarkStepCompleted(queue.StepScript)
	job.MarkStepCompleted(queue.StepScenes)
	job.MarkStepCompleted(queue.StepMetadata)
	job.MarkStepCompleted(queue.StepVoice)
	job.SetFailed(queue.StepKeywords, "keyword generation failed")
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	for _, step := range job.CompletedSteps {
		if err := store.SaveCheckpoint(ctx, job.ID, step, `{"ok":true}`); err != nil {
			t.Fatalf("SaveCheckpoint failed: %v", err)
		}
	}

	if err := store.RetryFromStep(ctx, job.ID, queue.StepVoice); err != nil {
		t.Fatalf("RetryFromStep failed: %v", err)
	}

	refreshed, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if refreshed.Status != queue.StatusQueued {
		t.Fatalf("expected queued, got %s", refreshed.Status)
	}
	if refreshed.RetryFromStep != queue.StepVoice {
		t.Fatalf("expected retry_from_step voice, got %q", refreshed.RetryFromStep)
	}
	want := []queue.Step{queue.StepScript, queue.StepScenes, queue.StepMetadata}
	if len(refreshed.CompletedSteps) != len(want) {
		t.Fatalf("expected completed steps %v, got %v", want, refreshed.CompletedSteps)
	}
	for i, step := range want {
		if refreshed.CompletedSteps[i] != step {
			t.Fatalf("expected completed steps %v, got %v", want, refreshed.CompletedSteps)
		}
	}

	steps, err := store.CheckpointSteps(ctx, job.ID)
	if err != nil {
		t.Fatalf("CheckpointSteps failed: %v", err)
	}
	for _, step := range steps {
		if queue.StepIndex(step) >= queue.StepIndex(queue.StepVoice) {
			t.Fatalf("checkpoint %s should have been discarded", step)
		}
	}
	if len(steps) != 3 {
		t.Fatalf("expected 3 surviving checkpoints, got %d", len(steps))
	}
}

func TestRetryFromStepRejectsActiveJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.MustNewJob(t, store, "Active")
	if err := store.RetryFromStep(ctx, job.ID, queue.StepVoice); err == nil {
		t.Fatal("expected error for queued job")
	}

	if _, err := store.ClaimNextQueued(ctx); err != nil {
		t.Fatalf("ClaimNextQueued failed: %v", err)
	}
	if err := store.RetryFromStep(ctx, job.ID, queue.StepVoice); err == nil {
		t.Fatal("expected error for running job")
	}
	if err := store.RetryFromStep(ctx, job.ID, queue.Step("mystery")); err == nil {
		t.Fatal("expected error for unknown step")
	}
}

func TestResetStuckRunning(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.MustNewJob(t, store, "One")
	testsupport.MustNewJob(t, store, "Two")
	if _, err := store.ClaimNextQueued(ctx); err != nil {
		t.Fatalf("ClaimNextQueued failed: %v", err)
	}

	count, err := store.ResetStuckRunning(ctx)
	if err != nil {
		t.Fatalf("ResetStuckRunning failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 job reset, got %d", count)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Queued != 2 || health.Running != 0 {
		t.Fatalf("unexpected health after reset: %+v", health)
	}
}

func TestStatsAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.MustNewJob(t, store, "Queued")
	running := testsupport.MustNewJob(t, store, "Running")
	running.Status = queue.StatusRunning
	if err := store.Update(ctx, running); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	done := testsupport.MustNewJob(t, store, "Done")
	done.SetDone("footage assembly skipped; no final video produced")
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[queue.StatusQueued] != 1 || stats[queue.StatusRunning] != 1 || stats[queue.StatusDone] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 3 || health.Queued != 1 || health.Running != 1 || health.Done != 1 || health.Errored != 0 {
		t.Fatalf("unexpected health: %+v", health)
	}
}

func TestDoneWithWarningRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.MustNewJob(t, store, "No Assembly")
	job.SetDone("footage assembly skipped; no final video produced")
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	refreshed, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if refreshed.Status != queue.StatusDone {
		t.Fatalf("expected done, got %s", refreshed.Status)
	}
	if refreshed.WarningMessage == "" {
		t.Fatal("expected warning message to survive persistence")
	}
	if refreshed.ProgressPercent != 100 {
		t.Fatalf("expected 100%% progress, got %d", refreshed.ProgressPercent)
	}
}

func TestRemoveDeletesCheckpoints(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.MustNewJob(t, store, "Removable")
	if err := store.SaveCheckpoint(ctx, job.ID, queue.StepScript, `{"text":"hello"}`); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	removed, err := store.Remove(ctx, job.ID)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !removed {
		t.Fatal("expected job to be removed")
	}

	steps, err := store.CheckpointSteps(ctx, job.ID)
	if err != nil {
		t.Fatalf("CheckpointSteps failed: %v", err)
	}
	if len(steps) != 0 {
		t.Fatalf("expected no surviving checkpoints, got %v", steps)
	}

	removed, err = store.Remove(ctx, job.ID)
	if err != nil {
		t.Fatalf("second Remove failed: %v", err)
	}
	if removed {
		t.Fatal("expected second removal to report not found")
	}
}

func TestRunConfigRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, ok, err := store.LoadRunConfig(ctx); err != nil || ok {
		t.Fatalf("expected no persisted run config, got ok=%t err=%v", ok, err)
	}

	saved := queue.RunConfig{
		MaxConcurrent:     3,
		StartDelaySeconds: 7,
		OutputDir:         "/tmp/out",
		ExportToggles:     map[string]bool{"video": false},
	}
	if err := store.SaveRunConfig(ctx, saved); err != nil {
		t.Fatalf("SaveRunConfig failed: %v", err)
	}

	loaded, ok, err := store.LoadRunConfig(ctx)
	if err != nil {
		t.Fatalf("LoadRunConfig failed: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted run config")
	}
	if loaded.MaxConcurrent != 3 || loaded.StartDelaySeconds != 7 || loaded.OutputDir != "/tmp/out" {
		t.Fatalf("unexpected run config: %+v", loaded)
	}
	if enabled, present := loaded.ExportToggles["video"]; !present || enabled {
		t.Fatalf("expected video toggle false, got %+v", loaded.ExportToggles)
	}

	saved.MaxConcurrent = 0
	if err := store.SaveRunConfig(ctx, saved); err != nil {
		t.Fatalf("SaveRunConfig failed: %v", err)
	}
	loaded, _, err = store.LoadRunConfig(ctx)
	if err != nil {
		t.Fatalf("LoadRunConfig failed: %v", err)
	}
	if loaded.MaxConcurrent != 1 {
		t.Fatalf("expected normalized concurrency 1, got %d", loaded.MaxConcurrent)
	}
}
