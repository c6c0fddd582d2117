package api_test

import (
	"reflect"
	"testing"
	"time"

	"scenecast/internal/api"
	"scenecast/internal/queue"
)

func TestFromJob(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
	job := &queue.Job{
		ID:              7,
		Title:           "Harbor Dawn",
		OriginalTitle:   "harbor_draft",
		Preset:          "short",
		Status:          queue.StatusRunning,
		ProgressPercent: 42,
		ProgressStage:   "voice",
		ProgressMessage: "Narrated scene 3/7",
		CompletedSteps:  []queue.Step{queue.StepScript, queue.StepScenes},
		RetryFromStep:   queue.StepVoice,
		MetadataJSON:    `{"title":"Harbor Dawn"}`,
		CreatedAt:       created,
		UpdatedAt:       created.Add(time.Minute),
	}

	item := api.FromJob(job)
	if item.ID != 7 || item.Status != "running" {
		t.Fatalf("unexpected item: %+v", item)
	}
	if item.Progress.Stage != "voice" || item.Progress.Percent != 42 {
		t.Fatalf("unexpected progress: %+v", item.Progress)
	}
	if !reflect.DeepEqual(item.CompletedSteps, []string{"script", "scenes"}) {
		t.Fatalf("unexpected completed steps: %v", item.CompletedSteps)
	}
	if item.RetryFromStep != "voice" {
		t.Fatalf("unexpected retry step %q", item.RetryFromStep)
	}
	if item.CreatedAt != "2026-03-14T09:26:53.589Z" {
		t.Fatalf("unexpected created timestamp %q", item.CreatedAt)
	}
	if string(item.Metadata) != `{"title":"Harbor Dawn"}` {
		t.Fatalf("unexpected metadata %s", item.Metadata)
	}
}

func TestFromJobSkipsInvalidMetadata(t *testing.T) {
	item := api.FromJob(&queue.Job{ID: 1, MetadataJSON: "{not json"})
	if item.Metadata != nil {
		t.Fatalf("expected invalid metadata dropped, got %s", item.Metadata)
	}

	item = api.FromJob(&queue.Job{ID: 2})
	if item.Metadata != nil {
		t.Fatalf("expected empty metadata dropped, got %s", item.Metadata)
	}
	if item.CreatedAt != "" {
		t.Fatalf("expected empty timestamp for zero time, got %q", item.CreatedAt)
	}
}

func TestFromJobNil(t *testing.T) {
	item := api.FromJob(nil)
	if item.ID != 0 || item.Status != "" {
		t.Fatalf("expected zero item for nil job, got %+v", item)
	}
}

func TestFromJobsSkipsNilEntries(t *testing.T) {
	items := api.FromJobs([]*queue.Job{
		{ID: 1, Title: "First"},
		nil,
		{ID: 2, Title: "Second"},
	})
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != 1 || items[1].ID != 2 {
		t.Fatalf("unexpected items: %+v", items)
	}
}
