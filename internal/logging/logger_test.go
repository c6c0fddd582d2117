package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scenecast/internal/services"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := New(Options{Level: "info", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("job queued", slog.Int64(FieldJobID, 7))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("decode log record: %v", err)
	}
	if record["msg"] != "job queued" {
		t.Fatalf("unexpected message %v", record["msg"])
	}
	if record[FieldJobID] != float64(7) {
		t.Fatalf("unexpected job id %v", record[FieldJobID])
	}
}

func TestNewRespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := New(Options{Level: "warn", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("kept")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "suppressed") {
		t.Fatal("info record should be filtered at warn level")
	}
	if !strings.Contains(content, "kept") {
		t.Fatal("warn record missing")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewForPathsCreatesLogDir(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "nested", "logs")
	logger, err := NewForPaths(logDir, "info", "json")
	if err != nil {
		t.Fatalf("NewForPaths failed: %v", err)
	}
	logger.Info("hello")

	data, err := os.ReadFile(filepath.Join(logDir, "scenecast.log"))
	if err != nil {
		t.Fatalf("expected log file created: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatal("expected record written to log file")
	}
}

func TestParseLevelDefaults(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestContextFields(t *testing.T) {
	ctx := services.WithJobID(context.Background(), 3)
	ctx = services.WithStep(ctx, "voice")
	ctx = services.WithRequestID(ctx, "req-9")

	fields := ContextFields(ctx)
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	keys := map[string]bool{}
	for _, field := range fields {
		keys[field.Key] = true
	}
	if !keys[FieldJobID] || !keys[FieldStep] || !keys[FieldCorrelationID] {
		t.Fatalf("unexpected field keys: %v", keys)
	}

	if fields := ContextFields(context.Background()); len(fields) != 0 {
		t.Fatalf("expected no fields from empty context, got %v", fields)
	}
}

func TestWithContextNilLogger(t *testing.T) {
	logger := WithContext(services.WithJobID(context.Background(), 1), nil)
	if logger == nil {
		t.Fatal("expected usable logger")
	}
	logger.Info("no panic")
}

func TestErrorAttr(t *testing.T) {
	attr := Error(nil)
	if attr.Value.String() != "<nil>" {
		t.Fatalf("unexpected nil error attr %v", attr)
	}
}
