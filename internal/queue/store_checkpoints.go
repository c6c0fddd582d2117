package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SaveCheckpoint persists a step artifact for later resume, replacing any
// previous payload for the same step.
func (s *Store) SaveCheckpoint(ctx context.Context, jobID int64, step Step, payload string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO job_checkpoints (job_id, step, payload, created_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT (job_id, step) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		jobID,
		step,
		payload,
		now,
	)
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", step, err)
	}
	return nil
}

// Checkpoint returns the cached artifact payload for a step, with ok=false
// when the step has no checkpoint.
func (s *Store) Checkpoint(ctx context.Context, jobID int64, step Step) (string, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT payload FROM job_checkpoints WHERE job_id = ? AND step = ?`,
		jobID,
		step,
	)
	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load checkpoint %s: %w", step, err)
	}
	return payload, true, nil
}

// CheckpointSteps lists the steps with cached artifacts for a job.
func (s *Store) CheckpointSteps(ctx context.Context, jobID int64) ([]Step, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT step FROM job_checkpoints WHERE job_id = ?`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var step Step
		if err := rows.Scan(&step); err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// DeleteCheckpointsFrom discards cached artifacts for the step and everything
// after it in pipeline order.
func (s *Store) DeleteCheckpointsFrom(ctx context.Context, jobID int64, step Step) error {
	doomed := StepsFrom(step)
	if len(doomed) == 0 {
		return nil
	}
	placeholders := makePlaceholders(len(doomed))
	args := make([]any, 0, len(doomed)+1)
	args = append(args, jobID)
	for _, s := range doomed {
		args = append(args, s)
	}
	_, err := s.db.ExecContext(
		ctx,
		`DELETE FROM job_checkpoints WHERE job_id = ? AND step IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("delete checkpoints from %s: %w", step, err)
	}
	return nil
}

// DeleteCheckpoints discards every cached artifact for a job.
func (s *Store) DeleteCheckpoints(ctx context.Context, jobID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM job_checkpoints WHERE job_id = ?`, jobID); err != nil {
		return fmt.Errorf("delete checkpoints: %w", err)
	}
	return nil
}
