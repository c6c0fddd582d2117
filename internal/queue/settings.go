package queue

import (
	"encoding/json"
	"fmt"
	"strings"
)

// JobSettings captures the per-job pipeline configuration, normalized once
// when the job enters the queue. Optional features are explicit toggles
// rather than presence-based duck typing.
type JobSettings struct {
	SceneMode   string         `json:"scene_mode"`
	KeywordMode string         `json:"keyword_mode"`
	Voice       VoiceSettings  `json:"voice"`
	Assembly    AssemblyToggle `json:"assembly"`
	SEO         SEOToggle      `json:"seo"`
	Metadata    MetadataToggle `json:"metadata"`
	Export      ExportSettings `json:"export"`
	StyleRefs   []string       `json:"style_refs,omitempty"`
}

// VoiceSettings configures narration synthesis.
type VoiceSettings struct {
	VoiceID string  `json:"voice_id"`
	Speed   float64 `json:"speed"`
	Format  string  `json:"format"`
}

// AssemblyToggle enables footage assembly with optional render options.
type AssemblyToggle struct {
	Enabled    bool   `json:"enabled"`
	Resolution string `json:"resolution,omitempty"`
	FPS        int    `json:"fps,omitempty"`
}

// SEOToggle enables SEO metadata generation.
type SEOToggle struct {
	Enabled bool `json:"enabled"`
}

// MetadataToggle enables title/description/thumbnail-prompt generation.
type MetadataToggle struct {
	Enabled      bool     `json:"enabled"`
	StyleSamples []string `json:"style_samples,omitempty"`
}

// ExportSettings selects which artifacts the export step packages.
type ExportSettings struct {
	Enabled  bool `json:"enabled"`
	Script   bool `json:"script"`
	Audio    bool `json:"audio"`
	Prompts  bool `json:"prompts"`
	Metadata bool `json:"metadata"`
	Video    bool `json:"video"`
}

// Normalize fills defaulted fields and canonicalizes enumerations.
func (s *JobSettings) Normalize() {
	s.SceneMode = strings.ToLower(strings.TrimSpace(s.SceneMode))
	if s.SceneMode == "" {
		s.SceneMode = "duration"
	}
	s.KeywordMode = strings.ToLower(strings.TrimSpace(s.KeywordMode))
	if s.KeywordMode == "" {
		s.KeywordMode = "per_scene"
	}
	if s.Voice.Speed <= 0 {
		s.Voice.Speed = 1.0
	}
	s.Voice.Format = strings.ToLower(strings.TrimSpace(s.Voice.Format))
	if s.Voice.Format == "" {
		s.Voice.Format = "mp3"
	}
	if s.Assembly.Enabled && strings.TrimSpace(s.Assembly.Resolution) == "" {
		s.Assembly.Resolution = "1920x1080"
	}
	if s.Assembly.Enabled && s.Assembly.FPS <= 0 {
		s.Assembly.FPS = 30
	}
}

// SettingsFromJSON decodes and normalizes job settings from their stored form.
// An empty payload yields defaults with every optional feature enabled.
func SettingsFromJSON(raw string) (JobSettings, error) {
	settings := JobSettings{
		Assembly: AssemblyToggle{Enabled: true},
		SEO:      SEOToggle{Enabled: true},
		Metadata: MetadataToggle{Enabled: true},
		Export:   ExportSettings{Enabled: true, Script: true, Audio: true, Prompts: true, Metadata: true, Video: true},
	}
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &settings); err != nil {
			return JobSettings{}, fmt.Errorf("decode job settings: %w", err)
		}
	}
	settings.Normalize()
	return settings, nil
}

// EncodeSettings serializes normalized settings for storage.
func EncodeSettings(settings JobSettings) (string, error) {
	settings.Normalize()
	data, err := json.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("encode job settings: %w", err)
	}
	return string(data), nil
}
