package pipeline

import (
	"context"

	"scenecast/internal/checkpoint"
	"scenecast/internal/media"
	"scenecast/internal/queue"
)

// runState carries one run attempt's in-memory artifacts. Steps read inputs
// from it and write their outputs back; cached artifacts rehydrate it when a
// run resumes past completed steps.
type runState struct {
	job      *queue.Job
	settings queue.JobSettings
	cache    *checkpoint.Cache

	stagingDir string
	outputDir  string
	exportDir  string

	script           string
	scenes           []media.Scene
	metadata         *media.Metadata
	clips            []media.VoiceClip
	keywords         []media.SceneKeywords
	directions       []media.DirectionNote
	videoPrompts     []media.ScenePrompt
	entities         []media.Entity
	referencePrompts []media.ReferencePrompt
	builderPrompts   []media.SceneBuilderPrompt
	assets           []media.SceneAsset
	assembly         *media.AssemblyResult
	seo              *media.SEOBundle
	manifest         *media.ExportManifest
}

// rehydrate loads cached artifacts for every step the job already completed,
// so resumed steps find their inputs in place.
func (s *runState) rehydrate(ctx context.Context) error {
	for _, step := range s.job.CompletedSteps {
		if err := s.loadArtifact(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

func (s *runState) loadArtifact(ctx context.Context, step queue.Step) error {
	switch step {
	case queue.StepScript:
		value, ok, err := checkpoint.Get[string](ctx, s.cache, step)
		if err != nil {
			return err
		}
		if ok {
			s.script = value
		}
	case queue.StepScenes:
		value, ok, err := checkpoint.Get[[]media.Scene](ctx, s.cache, step)
		if err != nil {
			return err
		}
		if ok {
			s.scenes = value
		}
	case queue.StepMetadata:
		value, ok, err := checkpoint.Get[media.Metadata](ctx, s.cache, step)
		if err != nil {
			return err
		}
		if ok {
			s.metadata = &value
		}
	case queue.StepVoice:
		value, ok, err := checkpoint.Get[[]media.VoiceClip](ctx, s.cache, step)
		if err != nil {
			return err
		}
		if ok {
			s.clips = value
		}
	case queue.StepKeywords:
		value, ok, err := checkpoint.Get[[]media.SceneKeywords](ctx, s.cache, step)
		if err != nil {
			return err
		}
		if ok {
			s.keywords = value
		}
	case queue.StepVideoDirection:
		value, ok, err := checkpoint.Get[[]media.DirectionNote](ctx, s.cache, step)
		if err != nil {
			return err
		}
		if ok {
			s.directions = value
		}
	case queue.StepVideoPrompts:
		value, ok, err := checkpoint.Get[[]media.ScenePrompt](ctx, s.cache, step)
		if err != nil {
			return err
		}
		if ok {
			s.videoPrompts = value
		}
	case queue.StepEntityExtraction:
		value, ok, err := checkpoint.Get[[]media.Entity](ctx, s.cache, step)
		if err != nil {
			return err
		}
		if ok {
			s.entities = value
		}
	case queue.StepReferencePrompts:
		value, ok, err := checkpoint.Get[[]media.ReferencePrompt](ctx, s.cache, step)
		if err != nil {
			return err
		}
		if ok {
			s.referencePrompts = value
		}
	case queue.StepSceneBuilder:
		value, ok, err := checkpoint.Get[[]media.SceneBuilderPrompt](ctx, s.cache, step)
		if err != nil {
			return err
		}
		if ok {
			s.builderPrompts = value
		}
	case queue.StepAssembly:
		value, ok, err := checkpoint.Get[media.AssemblyResult](ctx, s.cache, step)
		if err != nil {
			return err
		}
		if ok {
			s.assembly = &value
		}
	case queue.StepSEO:
		value, ok, err := checkpoint.Get[media.SEOBundle](ctx, s.cache, step)
		if err != nil {
			return err
		}
		if ok {
			s.seo = &value
		}
	case queue.StepExport:
		value, ok, err := checkpoint.Get[media.ExportManifest](ctx, s.cache, step)
		if err != nil {
			return err
		}
		if ok {
			s.manifest = &value
		}
	}
	return nil
}
