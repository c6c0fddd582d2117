package pipeline

import (
	"context"

	"scenecast/internal/export"
	"scenecast/internal/media"
	"scenecast/internal/services/prodrecord"
	"scenecast/internal/services/render"
	"scenecast/internal/services/voice"
)

// ProgressFunc reports step-relative progress in percent with a short
// human-readable message.
type ProgressFunc func(percent float64, message string)

// TextService covers every text-generation operation the pipeline performs.
type TextService interface {
	Rewrite(ctx context.Context, original string, styleRefs []string) (string, error)
	Split(ctx context.Context, script, mode string) ([]media.Scene, error)
	GenerateMetadata(ctx context.Context, script string, styleSamples []string) (media.Metadata, error)
	GenerateKeywords(ctx context.Context, scenes []media.Scene, mode string) ([]media.SceneKeywords, error)
	AnalyzeDirection(ctx context.Context, scenes []media.Scene, styleRefs []string) ([]media.DirectionNote, error)
	GenerateVideoPrompts(ctx context.Context, scenes []media.Scene, directions []media.DirectionNote) ([]media.ScenePrompt, error)
	ExtractEntities(ctx context.Context, prompts []media.ScenePrompt, script string) ([]media.Entity, error)
	GenerateReferencePrompts(ctx context.Context, entities []media.Entity) ([]media.ReferencePrompt, error)
	GenerateSceneBuilderPrompts(ctx context.Context, prompts []media.ScenePrompt, entities []media.Entity, directions []media.DirectionNote) ([]media.SceneBuilderPrompt, error)
	GenerateSEOMetadata(ctx context.Context, script string) (media.SEOBundle, error)
}

// VoiceService synthesizes narration audio per scene.
type VoiceService interface {
	SynthesizeBatch(ctx context.Context, scenes []media.Scene, settings voice.Settings, outputDir string, progress func(percent float64, message string)) ([]media.VoiceClip, error)
}

// RecordService syncs the durable production record. Every call is
// best-effort from the pipeline's perspective.
type RecordService interface {
	Create(ctx context.Context, record prodrecord.Record) (string, error)
	Update(ctx context.Context, id string, record prodrecord.Record) error
}

// Packager copies finished artifacts into the export directory.
type Packager interface {
	Export(ctx context.Context, jobID int64, title string, opts export.Options, artifacts export.Artifacts) (media.ExportManifest, error)
}

// Collaborators bundles the external services the runner drives. Records is
// optional; every other field must be set.
type Collaborators struct {
	Text     TextService
	Voice    VoiceService
	Renderer render.Client
	Records  RecordService
	Packager Packager
}
