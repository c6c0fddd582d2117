package testsupport

import (
	"path/filepath"
	"testing"

	"scenecast/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.LLM.APIKey = "test"
	cfg.Voice.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithMaxConcurrent overrides the dispatch concurrency limit.
func WithMaxConcurrent(limit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Queue.MaxConcurrent = limit
	}
}

// WithStartDelay overrides the inter-start delay in seconds.
func WithStartDelay(seconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Queue.StartDelaySeconds = seconds
	}
}

// WithNtfyTopic enables notifications against the provided topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.NtfyTopic = topic
	}
}
