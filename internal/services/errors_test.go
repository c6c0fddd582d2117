package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"scenecast/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("connection reset")
	err := services.Wrap(services.ErrService, "voice", "synthesize", "scene 3", cause)
	if !errors.Is(err, services.ErrService) {
		t.Fatal("expected service marker")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause preserved")
	}
	if got := err.Error(); got != "service error: voice: synthesize: scene 3: connection reset" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrService) {
		t.Fatal("expected default service marker")
	}
	if got := err.Error(); got != "service error: service failure" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestDetailsClassification(t *testing.T) {
	cases := []struct {
		marker error
		kind   string
	}{
		{services.ErrService, "service"},
		{services.ErrValidation, "validation"},
		{services.ErrConfiguration, "configuration"},
		{services.ErrTimeout, "timeout"},
		{services.ErrCancelled, "cancelled"},
	}
	for _, tc := range cases {
		t.Run(tc.kind, func(t *testing.T) {
			err := services.Wrap(tc.marker, "script", "rewrite", "", nil)
			details := services.Details(err)
			if details.Kind != tc.kind {
				t.Fatalf("expected kind %q, got %q", tc.kind, details.Kind)
			}
			if details.Message != "script: rewrite" {
				t.Fatalf("expected sentinel prefix stripped, got %q", details.Message)
			}
		})
	}
}

func TestDetailsNil(t *testing.T) {
	details := services.Details(nil)
	if details.Kind != "" || details.Message != "" || details.Cause != nil {
		t.Fatalf("expected zero details, got %+v", details)
	}
}

func TestIsCancelled(t *testing.T) {
	if services.IsCancelled(nil) {
		t.Fatal("nil is not cancelled")
	}
	if !services.IsCancelled(services.Wrap(services.ErrCancelled, "voice", "", "stopped", nil)) {
		t.Fatal("expected sentinel wrap detected")
	}
	if !services.IsCancelled(fmt.Errorf("run: %w", context.Canceled)) {
		t.Fatal("expected raw context cancellation detected")
	}
	if services.IsCancelled(errors.New("boom")) {
		t.Fatal("plain errors are not cancellations")
	}
}

func TestContextHelpersRoundTrip(t *testing.T) {
	ctx := services.WithJobID(context.Background(), 9)
	ctx = services.WithStep(ctx, "keywords")
	ctx = services.WithRequestID(ctx, "req-1")

	if id, ok := services.JobIDFromContext(ctx); !ok || id != 9 {
		t.Fatalf("job id lost: %d %t", id, ok)
	}
	if step, ok := services.StepFromContext(ctx); !ok || step != "keywords" {
		t.Fatalf("step lost: %q %t", step, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-1" {
		t.Fatalf("request id lost: %q %t", rid, ok)
	}
	if _, ok := services.JobIDFromContext(context.Background()); ok {
		t.Fatal("expected empty context to carry no job id")
	}
}
