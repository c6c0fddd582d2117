package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"scenecast/internal/fileutil"
	"scenecast/internal/media"
	"scenecast/internal/textutil"
)

// Options selects which artifact groups the packager copies out.
type Options struct {
	Script   bool
	Audio    bool
	Prompts  bool
	Metadata bool
	Video    bool
}

// Artifacts collects everything a finished pipeline run may hand to export.
// Nil or empty fields are skipped.
type Artifacts struct {
	Script              string
	VoiceClips          []media.VoiceClip
	VideoPrompts        []media.ScenePrompt
	SceneBuilderPrompts []media.SceneBuilderPrompt
	ReferencePrompts    []media.ReferencePrompt
	Directions          []media.DirectionNote
	Metadata            *media.Metadata
	SEO                 *media.SEOBundle
	VideoPath           string
}

// Exporter packages job artifacts into a per-job directory under the base
// output directory.
type Exporter struct {
	baseDir string
}

// New constructs an exporter rooted at baseDir.
func New(baseDir string) *Exporter {
	return &Exporter{baseDir: baseDir}
}

// Export copies the selected artifacts into <baseDir>/<title>-<jobID> and
// writes a manifest listing every file it produced.
func (e *Exporter) Export(ctx context.Context, jobID int64, title string, opts Options, artifacts Artifacts) (media.ExportManifest, error) {
	dirName := fmt.Sprintf("%s-%d", textutil.SanitizeToken(title), jobID)
	dir := filepath.Join(e.baseDir, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return media.ExportManifest{}, fmt.Errorf("export: create dir: %w", err)
	}

	manifest := media.ExportManifest{Dir: dir}
	record := func(name string) {
		manifest.Files = append(manifest.Files, name)
	}

	if opts.Script && artifacts.Script != "" {
		if err := os.WriteFile(filepath.Join(dir, "script.txt"), []byte(artifacts.Script), 0o644); err != nil {
			return media.ExportManifest{}, fmt.Errorf("export: write script: %w", err)
		}
		record("script.txt")
	}

	if opts.Audio {
		for _, clip := range artifacts.VoiceClips {
			if err := ctx.Err(); err != nil {
				return media.ExportManifest{}, err
			}
			name := filepath.Base(clip.Filename)
			if err := fileutil.CopyFile(clip.Filename, filepath.Join(dir, name)); err != nil {
				return media.ExportManifest{}, fmt.Errorf("export: copy audio %s: %w", name, err)
			}
			record(name)
		}
	}

	if opts.Prompts {
		bundle := map[string]any{}
		if len(artifacts.VideoPrompts) > 0 {
			bundle["video_prompts"] = artifacts.VideoPrompts
		}
		if len(artifacts.SceneBuilderPrompts) > 0 {
			bundle["scene_builder_prompts"] = artifacts.SceneBuilderPrompts
		}
		if len(artifacts.ReferencePrompts) > 0 {
			bundle["reference_prompts"] = artifacts.ReferencePrompts
		}
		if len(artifacts.Directions) > 0 {
			bundle["directions"] = artifacts.Directions
		}
		if len(bundle) > 0 {
			if err := writeJSON(filepath.Join(dir, "prompts.json"), bundle); err != nil {
				return media.ExportManifest{}, err
			}
			record("prompts.json")
		}
	}

	if opts.Metadata {
		bundle := map[string]any{}
		if artifacts.Metadata != nil {
			bundle["metadata"] = artifacts.Metadata
		}
		if artifacts.SEO != nil {
			bundle["seo"] = artifacts.SEO
		}
		if len(bundle) > 0 {
			if err := writeJSON(filepath.Join(dir, "metadata.json"), bundle); err != nil {
				return media.ExportManifest{}, err
			}
			record("metadata.json")
		}
	}

	if opts.Video && artifacts.VideoPath != "" {
		name := filepath.Base(artifacts.VideoPath)
		if err := fileutil.CopyFile(artifacts.VideoPath, filepath.Join(dir, name)); err != nil {
			return media.ExportManifest{}, fmt.Errorf("export: copy video: %w", err)
		}
		record(name)
	}

	sort.Strings(manifest.Files)
	if err := writeJSON(filepath.Join(dir, "manifest.json"), manifest); err != nil {
		return media.ExportManifest{}, err
	}
	return manifest, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("export: encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", filepath.Base(path), err)
	}
	return nil
}
