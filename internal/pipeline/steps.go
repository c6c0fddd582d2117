package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	"scenecast/internal/checkpoint"
	"scenecast/internal/export"
	"scenecast/internal/media"
	"scenecast/internal/queue"
	"scenecast/internal/services"
	"scenecast/internal/services/render"
	"scenecast/internal/services/voice"
	"scenecast/internal/textutil"
)

// stepSpec describes one pipeline step: its share of overall progress, when
// it applies, and how to execute it. Executors write their output into the
// run state and persist the step artifact on success.
type stepSpec struct {
	step       queue.Step
	label      string
	weight     int
	applicable func(queue.JobSettings) bool
	run        func(ctx context.Context, r *Runner, s *runState, progress ProgressFunc) error
}

var stepTable = []stepSpec{
	{
		step:   queue.StepScript,
		label:  "Writing script",
		weight: 8,
		run:    runScript,
	},
	{
		step:   queue.StepScenes,
		label:  "Splitting scenes",
		weight: 6,
		run:    runScenes,
	},
	{
		step:       queue.StepMetadata,
		label:      "Generating metadata",
		weight:     4,
		applicable: func(s queue.JobSettings) bool { return s.Metadata.Enabled },
		run:        runMetadata,
	},
	{
		step:   queue.StepVoice,
		label:  "Synthesizing narration",
		weight: 20,
		run:    runVoice,
	},
	{
		step:   queue.StepKeywords,
		label:  "Selecting keywords",
		weight: 4,
		run:    runKeywords,
	},
	{
		step:   queue.StepVideoDirection,
		label:  "Directing scenes",
		weight: 5,
		run:    runVideoDirection,
	},
	{
		step:   queue.StepVideoPrompts,
		label:  "Writing video prompts",
		weight: 6,
		run:    runVideoPrompts,
	},
	{
		step:   queue.StepEntityExtraction,
		label:  "Extracting entities",
		weight: 4,
		run:    runEntityExtraction,
	},
	{
		step:   queue.StepReferencePrompts,
		label:  "Writing reference prompts",
		weight: 3,
		run:    runReferencePrompts,
	},
	{
		step:   queue.StepSceneBuilder,
		label:  "Composing scene prompts",
		weight: 5,
		run:    runSceneBuilder,
	},
	{
		step:       queue.StepAssembly,
		label:      "Assembling video",
		weight:     25,
		applicable: func(s queue.JobSettings) bool { return s.Assembly.Enabled },
		run:        runAssembly,
	},
	{
		step:       queue.StepSEO,
		label:      "Generating SEO metadata",
		weight:     3,
		applicable: func(s queue.JobSettings) bool { return s.SEO.Enabled },
		run:        runSEO,
	},
	{
		step:       queue.StepExport,
		label:      "Exporting artifacts",
		weight:     7,
		applicable: func(s queue.JobSettings) bool { return s.Export.Enabled },
		run:        runExport,
	},
}

func (spec stepSpec) applies(settings queue.JobSettings) bool {
	return spec.applicable == nil || spec.applicable(settings)
}

func runScript(ctx context.Context, r *Runner, s *runState, progress ProgressFunc) error {
	script, err := r.collab.Text.Rewrite(ctx, s.job.SourceScript, s.settings.StyleRefs)
	if err != nil {
		return err
	}
	s.script = script
	return checkpoint.Put(ctx, s.cache, queue.StepScript, script)
}

func runScenes(ctx context.Context, r *Runner, s *runState, progress ProgressFunc) error {
	scenes, err := r.collab.Text.Split(ctx, s.script, s.settings.SceneMode)
	if err != nil {
		return err
	}
	s.scenes = scenes
	return checkpoint.Put(ctx, s.cache, queue.StepScenes, scenes)
}

func runMetadata(ctx context.Context, r *Runner, s *runState, progress ProgressFunc) error {
	meta, err := r.collab.Text.GenerateMetadata(ctx, s.script, s.settings.Metadata.StyleSamples)
	if err != nil {
		return err
	}
	s.metadata = &meta
	s.applyMetadata(meta)
	return checkpoint.Put(ctx, s.cache, queue.StepMetadata, meta)
}

// applyMetadata folds generated metadata into the job record, preserving the
// user's working title for display.
func (s *runState) applyMetadata(meta media.Metadata) {
	if s.job.OriginalTitle == "" {
		s.job.OriginalTitle = s.job.Title
	}
	if title := strings.TrimSpace(meta.Title); title != "" {
		s.job.Title = title
	}
	s.job.OriginalDescription = meta.Description
	s.job.ThumbnailRef = meta.ThumbnailPrompt
	if encoded, err := encodeMetadata(meta); err == nil {
		s.job.MetadataJSON = encoded
	}
}

func runVoice(ctx context.Context, r *Runner, s *runState, progress ProgressFunc) error {
	settings := voice.Settings{
		VoiceID: s.settings.Voice.VoiceID,
		Speed:   s.settings.Voice.Speed,
		Format:  s.settings.Voice.Format,
	}
	clips, err := r.collab.Voice.SynthesizeBatch(ctx, s.scenes, settings, filepath.Join(s.stagingDir, "voice"), progress)
	if err != nil {
		return err
	}
	s.clips = clips
	return checkpoint.Put(ctx, s.cache, queue.StepVoice, clips)
}

func runKeywords(ctx context.Context, r *Runner, s *runState, progress ProgressFunc) error {
	keywords, err := r.collab.Text.GenerateKeywords(ctx, s.scenes, s.settings.KeywordMode)
	if err != nil {
		return err
	}
	s.keywords = keywords
	return checkpoint.Put(ctx, s.cache, queue.StepKeywords, keywords)
}

func runVideoDirection(ctx context.Context, r *Runner, s *runState, progress ProgressFunc) error {
	directions, err := r.collab.Text.AnalyzeDirection(ctx, s.scenes, s.settings.StyleRefs)
	if err != nil {
		return err
	}
	s.directions = directions
	return checkpoint.Put(ctx, s.cache, queue.StepVideoDirection, directions)
}

func runVideoPrompts(ctx context.Context, r *Runner, s *runState, progress ProgressFunc) error {
	prompts, err := r.collab.Text.GenerateVideoPrompts(ctx, s.scenes, s.directions)
	if err != nil {
		return err
	}
	s.videoPrompts = prompts
	return checkpoint.Put(ctx, s.cache, queue.StepVideoPrompts, prompts)
}

func runEntityExtraction(ctx context.Context, r *Runner, s *runState, progress ProgressFunc) error {
	entities, err := r.collab.Text.ExtractEntities(ctx, s.videoPrompts, s.script)
	if err != nil {
		return err
	}
	s.entities = entities
	return checkpoint.Put(ctx, s.cache, queue.StepEntityExtraction, entities)
}

func runReferencePrompts(ctx context.Context, r *Runner, s *runState, progress ProgressFunc) error {
	prompts, err := r.collab.Text.GenerateReferencePrompts(ctx, s.entities)
	if err != nil {
		return err
	}
	s.referencePrompts = prompts
	return checkpoint.Put(ctx, s.cache, queue.StepReferencePrompts, prompts)
}

func runSceneBuilder(ctx context.Context, r *Runner, s *runState, progress ProgressFunc) error {
	prompts, err := r.collab.Text.GenerateSceneBuilderPrompts(ctx, s.videoPrompts, s.entities, s.directions)
	if err != nil {
		return err
	}
	s.builderPrompts = prompts
	return checkpoint.Put(ctx, s.cache, queue.StepSceneBuilder, prompts)
}

// Scene generation consumes most of assembly's wall time; the final stitch
// gets the tail of the step's progress span.
const assemblyGenerateShare = 0.75

func runAssembly(ctx context.Context, r *Runner, s *runState, progress ProgressFunc) error {
	sceneDir := filepath.Join(s.stagingDir, "scenes")
	assets, err := r.collab.Renderer.GenerateScenes(ctx, s.builderPrompts, sceneDir,
		func(update render.ProgressUpdate) {
			progress(update.Percent*assemblyGenerateShare, update.Message)
		},
		func(asset media.SceneAsset) {
			s.assets = append(s.assets, asset)
		})
	if err != nil {
		return err
	}
	s.assets = assets

	outputPath := filepath.Join(s.outputDir, textutil.SanitizeFileName(s.job.Title)+".mp4")
	result, err := r.collab.Renderer.Assemble(ctx, render.AssembleRequest{
		Assets:     assets,
		VoiceClips: s.clips,
		OutputPath: outputPath,
		Resolution: s.settings.Assembly.Resolution,
		FPS:        s.settings.Assembly.FPS,
	}, func(update render.ProgressUpdate) {
		progress(assemblyGenerateShare*100+update.Percent*(1-assemblyGenerateShare), update.Message)
	})
	if err != nil {
		return err
	}
	s.assembly = &result
	s.job.FinalVideoPath = result.VideoPath
	return checkpoint.Put(ctx, s.cache, queue.StepAssembly, result)
}

func runSEO(ctx context.Context, r *Runner, s *runState, progress ProgressFunc) error {
	bundle, err := r.collab.Text.GenerateSEOMetadata(ctx, s.script)
	if err != nil {
		return err
	}
	s.seo = &bundle
	return checkpoint.Put(ctx, s.cache, queue.StepSEO, bundle)
}

func runExport(ctx context.Context, r *Runner, s *runState, progress ProgressFunc) error {
	if r.collab.Packager == nil {
		return services.Wrap(services.ErrConfiguration, string(queue.StepExport), "export", "no packager configured", nil)
	}
	opts := export.Options{
		Script:   s.settings.Export.Script,
		Audio:    s.settings.Export.Audio,
		Prompts:  s.settings.Export.Prompts,
		Metadata: s.settings.Export.Metadata,
		Video:    s.settings.Export.Video,
	}
	artifacts := export.Artifacts{
		Script:              s.script,
		VoiceClips:          s.clips,
		VideoPrompts:        s.videoPrompts,
		SceneBuilderPrompts: s.builderPrompts,
		ReferencePrompts:    s.referencePrompts,
		Directions:          s.directions,
		Metadata:            s.metadata,
		SEO:                 s.seo,
	}
	if s.assembly != nil {
		artifacts.VideoPath = s.assembly.VideoPath
	}
	manifest, err := r.collab.Packager.Export(ctx, s.job.ID, s.job.Title, opts, artifacts)
	if err != nil {
		return err
	}
	s.manifest = &manifest
	s.job.ExportDir = manifest.Dir
	return checkpoint.Put(ctx, s.cache, queue.StepExport, manifest)
}
