package render

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"scenecast/internal/media"
)

var commandContext = exec.CommandContext

// ProgressUpdate captures renderer progress events.
type ProgressUpdate struct {
	Percent float64
	Stage   string
	Message string
}

// Client defines the scene rendering and assembly behaviour.
type Client interface {
	GenerateScenes(ctx context.Context, prompts []media.SceneBuilderPrompt, outputDir string, progress func(ProgressUpdate), assetFound func(media.SceneAsset)) ([]media.SceneAsset, error)
	Assemble(ctx context.Context, req AssembleRequest, progress func(ProgressUpdate)) (media.AssemblyResult, error)
}

// AssembleRequest describes a final-video assembly run.
type AssembleRequest struct {
	Assets     []media.SceneAsset `json:"assets"`
	VoiceClips []media.VoiceClip  `json:"voice_clips"`
	OutputPath string             `json:"output_path"`
	Resolution string             `json:"resolution,omitempty"`
	FPS        int                `json:"fps,omitempty"`
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the reelforge command-line renderer.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "reelforge"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

type rendererEvent struct {
	Event      string  `json:"event"`
	Percent    float64 `json:"percent"`
	Stage      string  `json:"stage"`
	Message    string  `json:"message"`
	SceneIndex int     `json:"scene_index"`
	Path       string  `json:"path"`
	Source     string  `json:"source"`
}

// GenerateScenes launches the renderer over every scene prompt and returns
// the produced assets in scene order. assetFound fires as each scene's asset
// is reported, before the run as a whole finishes.
func (c *CLI) GenerateScenes(ctx context.Context, prompts []media.SceneBuilderPrompt, outputDir string, progress func(ProgressUpdate), assetFound func(media.SceneAsset)) ([]media.SceneAsset, error) {
	if len(prompts) == 0 {
		return nil, errors.New("scene prompts required")
	}
	cleanOutputDir := strings.TrimSpace(outputDir)
	if cleanOutputDir == "" {
		return nil, errors.New("output directory required")
	}
	if err := os.MkdirAll(cleanOutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	promptsPath := filepath.Join(cleanOutputDir, "scene_prompts.json")
	if err := writeJSONFile(promptsPath, map[string]any{"prompts": prompts}); err != nil {
		return nil, err
	}

	assets := make([]media.SceneAsset, 0, len(prompts))
	args := []string{"scenes", "--prompts", promptsPath, "--output", cleanOutputDir, "--progress-json"}
	err := c.run(ctx, args, func(event rendererEvent) {
		switch event.Event {
		case "asset":
			asset := media.SceneAsset{SceneIndex: event.SceneIndex, AssetPath: event.Path, Source: event.Source}
			assets = append(assets, asset)
			if assetFound != nil {
				assetFound(asset)
			}
		default:
			if progress != nil {
				progress(ProgressUpdate{Percent: event.Percent, Stage: event.Stage, Message: event.Message})
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if len(assets) != len(prompts) {
		return nil, fmt.Errorf("renderer produced %d assets for %d scenes", len(assets), len(prompts))
	}
	return assets, nil
}

// Assemble stitches the scene assets and narration into the final video.
func (c *CLI) Assemble(ctx context.Context, req AssembleRequest, progress func(ProgressUpdate)) (media.AssemblyResult, error) {
	if len(req.Assets) == 0 {
		return media.AssemblyResult{}, errors.New("scene assets required")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return media.AssemblyResult{}, errors.New("output path required")
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return media.AssemblyResult{}, fmt.Errorf("create output dir: %w", err)
	}

	manifestPath := strings.TrimSuffix(req.OutputPath, filepath.Ext(req.OutputPath)) + ".manifest.json"
	if err := writeJSONFile(manifestPath, req); err != nil {
		return media.AssemblyResult{}, err
	}

	var duration float64
	args := []string{"assemble", "--manifest", manifestPath, "--output", req.OutputPath, "--progress-json"}
	err := c.run(ctx, args, func(event rendererEvent) {
		if event.Event == "done" {
			duration = event.Percent
			return
		}
		if progress != nil {
			progress(ProgressUpdate{Percent: event.Percent, Stage: event.Stage, Message: event.Message})
		}
	})
	if err != nil {
		return media.AssemblyResult{}, err
	}
	return media.AssemblyResult{VideoPath: req.OutputPath, SceneCount: len(req.Assets), DurationSec: duration}, nil
}

func (c *CLI) run(ctx context.Context, args []string, handle func(rendererEvent)) error {
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.binary, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var event rendererEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue
		}
		handle(event)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s output: %w", c.binary, err)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s failed: %w", c.binary, err)
	}
	return nil
}

func writeJSONFile(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

var _ Client = (*CLI)(nil)
