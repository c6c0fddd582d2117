package queue_test

import (
	"testing"

	"scenecast/internal/queue"
)

func TestParseStep(t *testing.T) {
	step, ok := queue.ParseStep("  Video_Direction ")
	if !ok || step != queue.StepVideoDirection {
		t.Fatalf("expected video_direction, got %q ok=%t", step, ok)
	}
	if _, ok := queue.ParseStep("transcode"); ok {
		t.Fatal("expected unknown step to fail parsing")
	}
	if _, ok := queue.ParseStep(""); ok {
		t.Fatal("expected empty step to fail parsing")
	}
}

func TestStepOrderIsStable(t *testing.T) {
	order := queue.StepOrder()
	if len(order) != 13 {
		t.Fatalf("expected 13 pipeline steps, got %d", len(order))
	}
	if order[0] != queue.StepScript || order[len(order)-1] != queue.StepExport {
		t.Fatalf("unexpected boundary steps: %v", order)
	}
	for i, step := range order {
		if queue.StepIndex(step) != i {
			t.Fatalf("StepIndex(%s) = %d, want %d", step, queue.StepIndex(step), i)
		}
	}
	if queue.StepIndex(queue.Step("mystery")) != -1 {
		t.Fatal("unknown step should index to -1")
	}
}

func TestStepsBeforeAndFrom(t *testing.T) {
	before := queue.StepsBefore(queue.StepVoice)
	want := []queue.Step{queue.StepScript, queue.StepScenes, queue.StepMetadata}
	if len(before) != len(want) {
		t.Fatalf("StepsBefore(voice) = %v, want %v", before, want)
	}
	for i := range want {
		if before[i] != want[i] {
			t.Fatalf("StepsBefore(voice) = %v, want %v", before, want)
		}
	}

	from := queue.StepsFrom(queue.StepSEO)
	if len(from) != 2 || from[0] != queue.StepSEO || from[1] != queue.StepExport {
		t.Fatalf("StepsFrom(seo) = %v", from)
	}
	if queue.StepsFrom(queue.Step("mystery")) != nil {
		t.Fatal("StepsFrom of unknown step should be nil")
	}
}

func TestIsOrderedPrefix(t *testing.T) {
	cases := []struct {
		name  string
		steps []queue.Step
		want  bool
	}{
		{"empty", nil, true},
		{"full prefix", []queue.Step{queue.StepScript, queue.StepScenes, queue.StepMetadata}, true},
		{"gap for skipped step", []queue.Step{queue.StepScript, queue.StepScenes, queue.StepVoice}, true},
		{"out of order", []queue.Step{queue.StepScenes, queue.StepScript}, false},
		{"duplicate", []queue.Step{queue.StepScript, queue.StepScript}, false},
		{"unknown", []queue.Step{queue.Step("mystery")}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := queue.IsOrderedPrefix(tc.steps); got != tc.want {
				t.Fatalf("IsOrderedPrefix(%v) = %t, want %t", tc.steps, got, tc.want)
			}
		})
	}
}

func TestTrimCompletedBefore(t *testing.T) {
	job := &queue.Job{}
	job.MarkStepCompleted(queue.StepScript)
	job.MarkStepCompleted(queue.StepScenes)
	job.MarkStepCompleted(queue.StepVoice)
	job.MarkStepCompleted(queue.StepKeywords)

	job.TrimCompletedBefore(queue.StepVoice)
	if len(job.CompletedSteps) != 2 {
		t.Fatalf("expected 2 steps after trim, got %v", job.CompletedSteps)
	}
	if job.CompletedSteps[0] != queue.StepScript || job.CompletedSteps[1] != queue.StepScenes {
		t.Fatalf("unexpected trim result: %v", job.CompletedSteps)
	}

	// Unknown step leaves the set untouched.
	job.TrimCompletedBefore(queue.Step("mystery"))
	if len(job.CompletedSteps) != 2 {
		t.Fatalf("trim with unknown step should be a no-op, got %v", job.CompletedSteps)
	}
}

func TestMarkStepCompletedIsIdempotent(t *testing.T) {
	job := &queue.Job{}
	job.MarkStepCompleted(queue.StepScript)
	job.MarkStepCompleted(queue.StepScript)
	if len(job.CompletedSteps) != 1 {
		t.Fatalf("expected one completed step, got %v", job.CompletedSteps)
	}
}
