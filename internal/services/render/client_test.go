package render

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"scenecast/internal/media"
)

func samplePrompts() []media.SceneBuilderPrompt {
	return []media.SceneBuilderPrompt{
		{SceneIndex: 1, Prompt: "wide shot of the harbor at dawn"},
		{SceneIndex: 2, Prompt: "tracking shot of the departing fleet"},
	}
}

func setHelperCommand(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("RENDER_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestNewCLIWithBinary(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/reelforge"))
	if cli.binary != "/opt/reelforge" {
		t.Fatalf("expected binary override to be applied, got %q", cli.binary)
	}
}

func TestGenerateScenesRequiresInputs(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.GenerateScenes(context.Background(), nil, t.TempDir(), nil, nil); err == nil {
		t.Fatal("expected error without prompts")
	}
	if _, err := cli.GenerateScenes(context.Background(), samplePrompts(), "  ", nil, nil); err == nil {
		t.Fatal("expected error without output directory")
	}
}

func TestGenerateScenesSuccess(t *testing.T) {
	setHelperCommand(t, "scenes")

	cli := NewCLI()
	outputDir := filepath.Join(t.TempDir(), "scenes")

	var updates []ProgressUpdate
	var found []media.SceneAsset
	assets, err := cli.GenerateScenes(context.Background(), samplePrompts(), outputDir,
		func(update ProgressUpdate) { updates = append(updates, update) },
		func(asset media.SceneAsset) { found = append(found, asset) },
	)
	if err != nil {
		t.Fatalf("GenerateScenes returned error: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(assets))
	}
	if assets[0].SceneIndex != 1 || assets[0].AssetPath != "/renders/scene_001.mp4" {
		t.Fatalf("unexpected first asset: %+v", assets[0])
	}
	if assets[1].Source != "generated" {
		t.Fatalf("unexpected asset source %q", assets[1].Source)
	}
	if len(found) != 2 {
		t.Fatalf("expected assetFound to fire per scene, got %d", len(found))
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 progress updates, got %d", len(updates))
	}
	if updates[1].Percent != 100 || updates[1].Stage != "complete" {
		t.Fatalf("unexpected final update: %+v", updates[1])
	}

	promptsPath := filepath.Join(outputDir, "scene_prompts.json")
	data, err := os.ReadFile(promptsPath)
	if err != nil {
		t.Fatalf("expected prompts file written: %v", err)
	}
	var payload struct {
		Prompts []media.SceneBuilderPrompt `json:"prompts"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode prompts file: %v", err)
	}
	if len(payload.Prompts) != 2 {
		t.Fatalf("expected 2 prompts in file, got %d", len(payload.Prompts))
	}
}

func TestGenerateScenesRejectsAssetCountMismatch(t *testing.T) {
	setHelperCommand(t, "short")

	cli := NewCLI()
	if _, err := cli.GenerateScenes(context.Background(), samplePrompts(), t.TempDir(), nil, nil); err == nil {
		t.Fatal("expected error when renderer produced fewer assets than scenes")
	}
}

func TestGenerateScenesSkipsInvalidJSON(t *testing.T) {
	setHelperCommand(t, "badjson")

	cli := NewCLI()
	var updates []ProgressUpdate
	_, err := cli.GenerateScenes(context.Background(), samplePrompts(), t.TempDir(),
		func(update ProgressUpdate) { updates = append(updates, update) }, nil)
	if err != nil {
		t.Fatalf("GenerateScenes returned error: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("expected 1 update from valid json, got %d", len(updates))
	}
}

func TestGenerateScenesFailure(t *testing.T) {
	setHelperCommand(t, "failure")

	cli := NewCLI()
	if _, err := cli.GenerateScenes(context.Background(), samplePrompts(), t.TempDir(), nil, nil); err == nil {
		t.Fatal("expected renderer failure error")
	}
}

func TestAssembleRequiresInputs(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.Assemble(context.Background(), AssembleRequest{OutputPath: "/tmp/out.mp4"}, nil); err == nil {
		t.Fatal("expected error without assets")
	}
	req := AssembleRequest{Assets: []media.SceneAsset{{SceneIndex: 1, AssetPath: "a.mp4"}}}
	if _, err := cli.Assemble(context.Background(), req, nil); err == nil {
		t.Fatal("expected error without output path")
	}
}

func TestAssembleSuccess(t *testing.T) {
	setHelperCommand(t, "assemble")

	cli := NewCLI()
	outputPath := filepath.Join(t.TempDir(), "final", "video.mp4")
	req := AssembleRequest{
		Assets: []media.SceneAsset{
			{SceneIndex: 1, AssetPath: "/renders/scene_001.mp4", Source: "generated"},
			{SceneIndex: 2, AssetPath: "/renders/scene_002.mp4", Source: "stock"},
		},
		VoiceClips: []media.VoiceClip{{SceneIndex: 1, Filename: "scene_001.mp3", DurationSec: 4.5}},
		OutputPath: outputPath,
		Resolution: "1920x1080",
		FPS:        30,
	}

	var updates []ProgressUpdate
	result, err := cli.Assemble(context.Background(), req, func(update ProgressUpdate) {
		updates = append(updates, update)
	})
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if result.VideoPath != outputPath {
		t.Fatalf("unexpected video path %q", result.VideoPath)
	}
	if result.SceneCount != 2 {
		t.Fatalf("expected scene count 2, got %d", result.SceneCount)
	}
	if result.DurationSec != 42.5 {
		t.Fatalf("expected duration from done event, got %f", result.DurationSec)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 progress updates, got %d", len(updates))
	}

	manifestPath := filepath.Join(filepath.Dir(outputPath), "video.manifest.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("expected manifest written: %v", err)
	}
	var decoded AssembleRequest
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if decoded.Resolution != "1920x1080" || decoded.FPS != 30 {
		t.Fatalf("unexpected manifest contents: %+v", decoded)
	}
}

func TestAssembleFailure(t *testing.T) {
	setHelperCommand(t, "failure")

	cli := NewCLI()
	req := AssembleRequest{
		Assets:     []media.SceneAsset{{SceneIndex: 1, AssetPath: "a.mp4"}},
		OutputPath: filepath.Join(t.TempDir(), "video.mp4"),
	}
	if _, err := cli.Assemble(context.Background(), req, nil); err == nil {
		t.Fatal("expected assemble failure error")
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("RENDER_HELPER_MODE") {
	case "scenes":
		fmt.Println(`{"event":"progress","percent":10,"stage":"generating","message":"scene 1"}`)
		fmt.Println(`{"event":"asset","scene_index":1,"path":"/renders/scene_001.mp4","source":"stock"}`)
		fmt.Println(`{"event":"asset","scene_index":2,"path":"/renders/scene_002.mp4","source":"generated"}`)
		fmt.Println(`{"event":"progress","percent":100,"stage":"complete","message":"done"}`)
		os.Exit(0)
	case "short":
		fmt.Println(`{"event":"asset","scene_index":1,"path":"/renders/scene_001.mp4","source":"stock"}`)
		os.Exit(0)
	case "badjson":
		fmt.Println("not-json")
		fmt.Println(`{"event":"progress","percent":50,"stage":"generating","message":"halfway"}`)
		fmt.Println(`{"event":"asset","scene_index":1,"path":"/renders/scene_001.mp4"}`)
		fmt.Println(`{"event":"asset","scene_index":2,"path":"/renders/scene_002.mp4"}`)
		os.Exit(0)
	case "assemble":
		fmt.Println(`{"event":"progress","percent":25,"stage":"stitching","message":"joining scenes"}`)
		fmt.Println(`{"event":"progress","percent":90,"stage":"muxing","message":"adding narration"}`)
		fmt.Println(`{"event":"done","percent":42.5}`)
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "render failed")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
