package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"scenecast/internal/logs"
)

func writeLog(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenecastd.log")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailMissingFile(t *testing.T) {
	result, err := logs.Tail(context.Background(), filepath.Join(t.TempDir(), "missing.log"), logs.TailOptions{Offset: -1, Limit: 10})
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("expected empty result for missing file, got %+v", result)
	}
}

func TestTailLastLines(t *testing.T) {
	path := writeLog(t, "one\ntwo\nthree\nfour\n")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}
	if !reflect.DeepEqual(result.Lines, []string{"three", "four"}) {
		t.Fatalf("unexpected lines: %v", result.Lines)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log: %v", err)
	}
	if result.Offset != info.Size() {
		t.Fatalf("expected offset at end of file, got %d", result.Offset)
	}
}

func TestTailLastLinesShortFile(t *testing.T) {
	path := writeLog(t, "only\n")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 5})
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}
	if !reflect.DeepEqual(result.Lines, []string{"only"}) {
		t.Fatalf("unexpected lines: %v", result.Lines)
	}
}

func TestTailNegativeOffsetZeroLimitSkipsToEnd(t *testing.T) {
	path := writeLog(t, "one\ntwo\n")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 0})
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}
	if len(result.Lines) != 0 {
		t.Fatalf("expected no lines with limit 0, got %v", result.Lines)
	}
	if result.Offset == 0 {
		t.Fatal("expected offset advanced to end of file")
	}
}

func TestTailForwardReadsFromOffset(t *testing.T) {
	path := writeLog(t, "one\ntwo\n")

	first, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: 0})
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}
	if !reflect.DeepEqual(first.Lines, []string{"one", "two"}) {
		t.Fatalf("unexpected lines: %v", first.Lines)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := file.WriteString("three\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	file.Close()

	second, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: first.Offset})
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}
	if !reflect.DeepEqual(second.Lines, []string{"three"}) {
		t.Fatalf("expected only new lines, got %v", second.Lines)
	}
	if second.Offset <= first.Offset {
		t.Fatalf("expected offset to advance, got %d", second.Offset)
	}
}

func TestTailClampsOffsetBeyondEnd(t *testing.T) {
	path := writeLog(t, "one\n")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: 10_000})
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}
	if len(result.Lines) != 0 {
		t.Fatalf("expected no lines past end, got %v", result.Lines)
	}
}

func TestTailFollowReturnsAppendedLines(t *testing.T) {
	path := writeLog(t, "one\n")

	first, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: 0})
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}

	done := make(chan logs.TailResult, 1)
	go func() {
		result, err := logs.Tail(context.Background(), path, logs.TailOptions{
			Offset: first.Offset,
			Follow: true,
			Wait:   5 * time.Second,
		})
		if err != nil {
			t.Errorf("follow Tail failed: %v", err)
		}
		done <- result
	}()

	time.Sleep(100 * time.Millisecond)
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := file.WriteString("two\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	file.Close()

	select {
	case result := <-done:
		if !reflect.DeepEqual(result.Lines, []string{"two"}) {
			t.Fatalf("unexpected followed lines: %v", result.Lines)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("follow never returned")
	}
}

func TestTailFollowHonorsCancellation(t *testing.T) {
	path := writeLog(t, "one\n")
	first, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: 0})
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	if _, err := logs.Tail(ctx, path, logs.TailOptions{Offset: first.Offset, Follow: true, Wait: 30 * time.Second}); err == nil {
		t.Fatal("expected context cancellation error")
	}
}
