package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"scenecast/internal/config"
)

// Store manages queue persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the queue database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "queue.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// NewJob inserts a queued job for the provided source script and settings.
func (s *Store) NewJob(ctx context.Context, title, sourceScript, preset string, settings JobSettings) (*Job, error) {
	settingsJSON, err := EncodeSettings(settings)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO queue_jobs (
            title, source_script, preset, settings_json, status,
            progress_percent, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableString(title),
		nullableString(sourceScript),
		nullableString(preset),
		settingsJSON,
		StatusQueued,
		0,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a queue job by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM queue_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Update persists changes to an existing queue job.
func (s *Store) Update(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	completed, err := encodeSteps(job.CompletedSteps)
	if err != nil {
		return err
	}
	job.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(
		ctx,
		`UPDATE queue_jobs
         SET title = ?, source_script = ?, preset = ?, settings_json = ?, status = ?,
             progress_percent = ?, progress_stage = ?, progress_message = ?,
             completed_steps = ?, failed_step = ?, retry_from_step = ?,
             error_message = ?, warning_message = ?,
             original_title = ?, original_description = ?, thumbnail_ref = ?,
             final_video_path = ?, export_dir = ?, metadata_json = ?,
             production_record_id = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(job.Title),
		nullableString(job.SourceScript),
		nullableString(job.Preset),
		nullableString(job.SettingsJSON),
		job.Status,
		job.ProgressPercent,
		nullableString(job.ProgressStage),
		nullableString(job.ProgressMessage),
		nullableString(completed),
		nullableString(string(job.FailedStep)),
		nullableString(string(job.RetryFromStep)),
		nullableString(job.ErrorMessage),
		nullableString(job.WarningMessage),
		nullableString(job.OriginalTitle),
		nullableString(job.OriginalDescription),
		nullableString(job.ThumbnailRef),
		nullableString(job.FinalVideoPath),
		nullableString(job.ExportDir),
		nullableString(job.MetadataJSON),
		nullableString(job.ProductionRecordID),
		job.UpdatedAt.Format(time.RFC3339Nano),
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

// List returns queue jobs filtered by status set (or all jobs when no status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + jobColumns + ` FROM queue_jobs`
	orderClause := ` ORDER BY created_at, id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list queue jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// NextQueued returns the earliest-added queued job without claiming it.
func (s *Store) NextQueued(ctx context.Context) (*Job, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+jobColumns+` FROM queue_jobs WHERE status = ? ORDER BY created_at, id LIMIT 1`,
		StatusQueued,
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next queued: %w", err)
	}
	return job, nil
}

// ClaimNextQueued atomically moves the earliest queued job to running and
// returns it. The compare-and-swap UPDATE makes double-dispatch impossible
// even with concurrent claimers.
func (s *Store) ClaimNextQueued(ctx context.Context) (*Job, error) {
	for {
		candidate, err := s.NextQueued(ctx)
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			return nil, nil
		}

		now := time.Now().UTC().Format(time.RFC3339Nano)
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE queue_jobs
             SET status = ?, progress_percent = 0, progress_stage = 'Starting',
                 progress_message = NULL, error_message = NULL, warning_message = NULL,
                 failed_step = NULL, updated_at = ?
             WHERE id = ? AND status = ?`,
			StatusRunning,
			now,
			candidate.ID,
			StatusQueued,
		)
		if err != nil {
			return nil, fmt.Errorf("claim job: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("claim rows affected: %w", err)
		}
		if affected == 1 {
			return s.GetByID(ctx, candidate.ID)
		}
		// Lost the race for this candidate; try the next one.
	}
}

// RunningCount returns the number of jobs currently running.
func (s *Store) RunningCount(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM queue_jobs WHERE status = ?`, StatusRunning)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("running count: %w", err)
	}
	return count, nil
}

// Remove deletes a job and its checkpoints.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	// Cascade handles checkpoints, but the explicit delete keeps removal
	// correct when foreign keys are disabled on an inherited connection.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM job_checkpoints WHERE job_id = ?`, id); err != nil {
		return false, fmt.Errorf("delete job checkpoints: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM queue_jobs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Stats returns a count of jobs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM queue_jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates queue state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusQueued:
			health.Queued += count
		case StatusRunning:
			health.Running += count
		case StatusDone:
			health.Done += count
		case StatusError:
			health.Errored += count
		}
	}
	return health, nil
}

const jobColumns = "id, title, source_script, preset, settings_json, status, progress_percent, progress_stage, progress_message, completed_steps, failed_step, retry_from_step, error_message, warning_message, original_title, original_description, thumbnail_ref, final_video_path, export_dir, metadata_json, production_record_id, created_at, updated_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id              int64
		title           sql.NullString
		sourceScript    sql.NullString
		preset          sql.NullString
		settingsJSON    sql.NullString
		statusStr       string
		progressPercent sql.NullInt64
		progressStage   sql.NullString
		progressMessage sql.NullString
		completedSteps  sql.NullString
		failedStep      sql.NullString
		retryFromStep   sql.NullString
		errorMessage    sql.NullString
		warningMessage  sql.NullString
		originalTitle   sql.NullString
		originalDesc    sql.NullString
		thumbnailRef    sql.NullString
		finalVideoPath  sql.NullString
		exportDir       sql.NullString
		metadataJSON    sql.NullString
		recordID        sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&sourceScript,
		&preset,
		&settingsJSON,
		&statusStr,
		&progressPercent,
		&progressStage,
		&progressMessage,
		&completedSteps,
		&failedStep,
		&retryFromStep,
		&errorMessage,
		&warningMessage,
		&originalTitle,
		&originalDesc,
		&thumbnailRef,
		&finalVideoPath,
		&exportDir,
		&metadataJSON,
		&recordID,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:                  id,
		Title:               title.String,
		SourceScript:        sourceScript.String,
		Preset:              preset.String,
		SettingsJSON:        settingsJSON.String,
		Status:              Status(statusStr),
		ProgressPercent:     int(progressPercent.Int64),
		ProgressStage:       progressStage.String,
		ProgressMessage:     progressMessage.String,
		FailedStep:          Step(failedStep.String),
		RetryFromStep:       Step(retryFromStep.String),
		ErrorMessage:        errorMessage.String,
		WarningMessage:      warningMessage.String,
		OriginalTitle:       originalTitle.String,
		OriginalDescription: originalDesc.String,
		ThumbnailRef:        thumbnailRef.String,
		FinalVideoPath:      finalVideoPath.String,
		ExportDir:           exportDir.String,
		MetadataJSON:        metadataJSON.String,
		ProductionRecordID:  recordID.String,
	}

	steps, err := decodeSteps(completedSteps.String)
	if err != nil {
		return nil, err
	}
	job.CompletedSteps = steps

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	return job, nil
}

func encodeSteps(steps []Step) (string, error) {
	if len(steps) == 0 {
		return "", nil
	}
	data, err := json.Marshal(steps)
	if err != nil {
		return "", fmt.Errorf("encode completed steps: %w", err)
	}
	return string(data), nil
}

func decodeSteps(raw string) ([]Step, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var steps []Step
	if err := json.Unmarshal([]byte(raw), &steps); err != nil {
		return nil, fmt.Errorf("decode completed steps: %w", err)
	}
	return steps, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
