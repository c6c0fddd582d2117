package config

import (
	"fmt"
	"strings"
)

var validSceneModes = map[string]struct{}{
	"duration": {},
	"sentence": {},
	"manual":   {},
}

var validKeywordModes = map[string]struct{}{
	"per_scene": {},
	"global":    {},
}

// Validate checks configuration invariants that normalization cannot repair.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return fmt.Errorf("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return fmt.Errorf("paths.log_dir must be set")
	}
	if c.Queue.MaxConcurrent < 1 {
		return fmt.Errorf("queue.max_concurrent must be at least 1")
	}
	if _, ok := validSceneModes[c.Pipeline.SceneMode]; !ok {
		return fmt.Errorf("pipeline.scene_mode: unsupported value %q", c.Pipeline.SceneMode)
	}
	if _, ok := validKeywordModes[c.Pipeline.KeywordMode]; !ok {
		return fmt.Errorf("pipeline.keyword_mode: unsupported value %q", c.Pipeline.KeywordMode)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if c.ProductionRecord.Enabled && strings.TrimSpace(c.ProductionRecord.BaseURL) == "" {
		return fmt.Errorf("production_record.base_url must be set when production_record.enabled is true")
	}
	return nil
}
