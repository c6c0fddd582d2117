package export_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"scenecast/internal/export"
	"scenecast/internal/media"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

func TestExportPackagesSelectedArtifacts(t *testing.T) {
	sourceDir := t.TempDir()
	clipPath := writeFixture(t, sourceDir, "scene_001.mp3", "audio-bytes")
	videoPath := writeFixture(t, sourceDir, "final.mp4", "video-bytes")

	baseDir := t.TempDir()
	exporter := export.New(baseDir)

	manifest, err := exporter.Export(context.Background(), 7, "Harbor Dawn!", export.Options{
		Script:   true,
		Audio:    true,
		Prompts:  true,
		Metadata: true,
		Video:    true,
	}, export.Artifacts{
		Script:       "An opening line.",
		VoiceClips:   []media.VoiceClip{{SceneIndex: 1, Filename: clipPath, DurationSec: 4.5}},
		VideoPrompts: []media.ScenePrompt{{SceneIndex: 1, Prompt: "wide shot"}},
		Metadata:     &media.Metadata{Title: "Harbor Dawn", Description: "A short film."},
		SEO:          &media.SEOBundle{Keywords: []string{"harbor"}},
		VideoPath:    videoPath,
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	wantDir := filepath.Join(baseDir, "harbor_dawn-7")
	if manifest.Dir != wantDir {
		t.Fatalf("unexpected export dir %q", manifest.Dir)
	}
	wantFiles := []string{"final.mp4", "metadata.json", "prompts.json", "scene_001.mp3", "script.txt"}
	if !reflect.DeepEqual(manifest.Files, wantFiles) {
		t.Fatalf("unexpected manifest files: %v", manifest.Files)
	}

	data, err := os.ReadFile(filepath.Join(wantDir, "script.txt"))
	if err != nil || string(data) != "An opening line." {
		t.Fatalf("unexpected script contents: %q err=%v", data, err)
	}
	data, err = os.ReadFile(filepath.Join(wantDir, "scene_001.mp3"))
	if err != nil || string(data) != "audio-bytes" {
		t.Fatalf("unexpected audio copy: %q err=%v", data, err)
	}

	var decoded media.ExportManifest
	raw, err := os.ReadFile(filepath.Join(wantDir, "manifest.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if !reflect.DeepEqual(decoded.Files, wantFiles) {
		t.Fatalf("manifest file disagrees with return value: %v", decoded.Files)
	}

	var prompts map[string]json.RawMessage
	raw, err = os.ReadFile(filepath.Join(wantDir, "prompts.json"))
	if err != nil {
		t.Fatalf("read prompts: %v", err)
	}
	if err := json.Unmarshal(raw, &prompts); err != nil {
		t.Fatalf("decode prompts: %v", err)
	}
	if _, ok := prompts["video_prompts"]; !ok {
		t.Fatalf("expected video_prompts in bundle, got %v", prompts)
	}
}

func TestExportSkipsEmptyGroups(t *testing.T) {
	exporter := export.New(t.TempDir())
	manifest, err := exporter.Export(context.Background(), 3, "Sparse", export.Options{
		Script:   true,
		Prompts:  true,
		Metadata: true,
		Video:    true,
	}, export.Artifacts{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(manifest.Files) != 0 {
		t.Fatalf("expected no files for empty artifacts, got %v", manifest.Files)
	}
	if _, err := os.Stat(filepath.Join(manifest.Dir, "manifest.json")); err != nil {
		t.Fatalf("expected manifest written even when empty: %v", err)
	}
}

func TestExportSanitizesTitle(t *testing.T) {
	exporter := export.New(t.TempDir())
	manifest, err := exporter.Export(context.Background(), 12, "  ", export.Options{}, export.Artifacts{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if filepath.Base(manifest.Dir) != "unknown-12" {
		t.Fatalf("unexpected dir name %q", filepath.Base(manifest.Dir))
	}
}

func TestExportFailsOnMissingAudio(t *testing.T) {
	exporter := export.New(t.TempDir())
	_, err := exporter.Export(context.Background(), 1, "Broken", export.Options{Audio: true}, export.Artifacts{
		VoiceClips: []media.VoiceClip{{SceneIndex: 1, Filename: "/nonexistent/scene_001.mp3"}},
	})
	if err == nil {
		t.Fatal("expected error for missing clip source")
	}
}

func TestExportHonorsCancellation(t *testing.T) {
	sourceDir := t.TempDir()
	clipPath := writeFixture(t, sourceDir, "scene_001.mp3", "audio")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exporter := export.New(t.TempDir())
	_, err := exporter.Export(ctx, 1, "Stopped", export.Options{Audio: true}, export.Artifacts{
		VoiceClips: []media.VoiceClip{{SceneIndex: 1, Filename: clipPath}},
	})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}
