package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RunConfig holds the global dispatch configuration. It is read on every
// dispatch decision; changes throttle future starts but never preempt
// running jobs.
type RunConfig struct {
	MaxConcurrent     int             `json:"max_concurrent"`
	StartDelaySeconds int             `json:"start_delay_seconds"`
	OutputDir         string          `json:"output_dir"`
	ExportToggles     map[string]bool `json:"export_toggles,omitempty"`
}

// Normalize clamps run configuration values to their documented ranges.
func (c *RunConfig) Normalize() {
	if c.MaxConcurrent < 1 {
		c.MaxConcurrent = 1
	}
	if c.StartDelaySeconds < 0 {
		c.StartDelaySeconds = 0
	}
}

// StartDelay returns the inter-start delay as a duration.
func (c RunConfig) StartDelay() time.Duration {
	return time.Duration(c.StartDelaySeconds) * time.Second
}

// SaveRunConfig persists the global run configuration.
func (s *Store) SaveRunConfig(ctx context.Context, cfg RunConfig) error {
	cfg.Normalize()
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode run config: %w", err)
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO run_config (id, payload, updated_at) VALUES (1, ?, ?)
         ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(payload),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save run config: %w", err)
	}
	return nil
}

// LoadRunConfig returns the persisted run configuration, with ok=false when
// none has been saved yet.
func (s *Store) LoadRunConfig(ctx context.Context) (RunConfig, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM run_config WHERE id = 1`)
	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunConfig{}, false, nil
		}
		return RunConfig{}, false, fmt.Errorf("load run config: %w", err)
	}
	var cfg RunConfig
	if err := json.Unmarshal([]byte(payload), &cfg); err != nil {
		return RunConfig{}, false, fmt.Errorf("decode run config: %w", err)
	}
	cfg.Normalize()
	return cfg, true, nil
}
