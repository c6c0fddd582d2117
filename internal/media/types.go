package media

// Scene is one narration unit produced by scene splitting.
type Scene struct {
	Index           int     `json:"index"`
	Text            string  `json:"text"`
	DurationHintSec float64 `json:"duration_hint_sec,omitempty"`
}

// Metadata is the generated title/description/thumbnail bundle for a video.
type Metadata struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	ThumbnailPrompt string `json:"thumbnail_prompt"`
}

// VoiceClip is one synthesized narration file.
type VoiceClip struct {
	SceneIndex  int     `json:"scene_index"`
	Filename    string  `json:"filename"`
	DurationSec float64 `json:"duration_sec"`
}

// SceneKeywords carries the footage-search keywords for one scene.
type SceneKeywords struct {
	SceneIndex int      `json:"scene_index"`
	Keywords   []string `json:"keywords"`
}

// DirectionNote carries per-scene visual direction.
type DirectionNote struct {
	SceneIndex int    `json:"scene_index"`
	Notes      string `json:"notes"`
}

// ScenePrompt is a per-scene generation prompt.
type ScenePrompt struct {
	SceneIndex int    `json:"scene_index"`
	Prompt     string `json:"prompt"`
}

// Entity is a recurring subject extracted from the video prompts and script.
type Entity struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

// ReferencePrompt is an image prompt anchoring one entity's appearance.
type ReferencePrompt struct {
	Entity string `json:"entity"`
	Prompt string `json:"prompt"`
}

// SceneBuilderPrompt is the composite per-scene prompt combining the video
// prompt, entity references, and direction notes.
type SceneBuilderPrompt struct {
	SceneIndex int    `json:"scene_index"`
	Prompt     string `json:"prompt"`
}

// SceneAsset reports footage located for one scene during assembly.
type SceneAsset struct {
	SceneIndex int    `json:"scene_index"`
	AssetPath  string `json:"asset_path"`
	Source     string `json:"source"`
}

// AssemblyResult is the outcome of footage assembly.
type AssemblyResult struct {
	VideoPath   string  `json:"video_path"`
	SceneCount  int     `json:"scene_count"`
	DurationSec float64 `json:"duration_sec"`
}

// SEOBundle is the generated keyword/tag set for publishing.
type SEOBundle struct {
	Keywords []string `json:"keywords"`
	Tags     []string `json:"tags"`
	Category string   `json:"category"`
}

// ExportManifest records what the export step packaged and where.
type ExportManifest struct {
	Dir   string   `json:"dir"`
	Files []string `json:"files"`
}
