package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"scenecast/internal/checkpoint"
	"scenecast/internal/config"
	"scenecast/internal/logging"
	"scenecast/internal/media"
	"scenecast/internal/queue"
	"scenecast/internal/services"
)

// Runner executes the generation pipeline for one job at a time. It owns
// step ordering, checkpoint persistence, progress accounting, and terminal
// status transitions; dispatch and concurrency live in the workflow manager.
type Runner struct {
	cfg    *config.Config
	store  *queue.Store
	collab Collaborators
	logger *slog.Logger
}

// Overrides carries the runtime configuration applied to a single run,
// sourced from the persisted run config at dispatch time.
type Overrides struct {
	OutputDir     string
	ExportToggles map[string]bool
}

// NewRunner constructs a pipeline runner.
func NewRunner(cfg *config.Config, store *queue.Store, collab Collaborators, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{cfg: cfg, store: store, collab: collab, logger: logger}
}

// plannedStep is a step with its slice of the overall progress range.
type plannedStep struct {
	stepSpec
	startPercent float64
	endPercent   float64
}

// Run drives the job through every applicable step, resuming past completed
// work. It persists the terminal status before returning; the returned error
// reports why a run did not complete.
func (r *Runner) Run(ctx context.Context, job *queue.Job, overrides Overrides) error {
	settings, err := queue.SettingsFromJSON(job.SettingsJSON)
	if err != nil {
		return r.fail(ctx, job, "", services.Wrap(services.ErrValidation, "", "decode settings", "", err))
	}
	applyExportOverrides(&settings, overrides.ExportToggles)

	outputDir := strings.TrimSpace(overrides.OutputDir)
	if outputDir == "" {
		outputDir = r.cfg.Paths.OutputDir
	}

	state := &runState{
		job:        job,
		settings:   settings,
		cache:      checkpoint.ForJob(r.store, job.ID),
		stagingDir: filepath.Join(r.cfg.Paths.StagingDir, fmt.Sprintf("job-%d", job.ID)),
		outputDir:  outputDir,
	}
	if err := os.MkdirAll(state.stagingDir, 0o755); err != nil {
		return r.fail(ctx, job, "", services.Wrap(services.ErrConfiguration, "", "create staging dir", "", err))
	}

	logger := r.jobLogger(ctx, job)

	// A pending retry-from marker has already trimmed completed steps and
	// cached artifacts; consuming it here just clears the request.
	if job.RetryFromStep != "" {
		logger.Info("resuming from step", slog.String("step", string(job.RetryFromStep)))
		job.RetryFromStep = ""
	}

	if err := state.rehydrate(ctx); err != nil {
		return r.fail(ctx, job, "", services.Wrap(services.ErrService, "", "load cached artifacts", "", err))
	}

	r.ensureRecord(ctx, job, logger)

	plan := buildPlan(settings)
	for i := 0; i < len(plan); i++ {
		step := plan[i]
		if job.HasCompletedStep(step.step) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return r.stopped(ctx, job, step.step, logger)
		}

		// Scene splitting and metadata generation both depend only on the
		// script, so they run concurrently when both are still pending.
		if step.step == queue.StepScenes && i+1 < len(plan) &&
			plan[i+1].step == queue.StepMetadata && !job.HasCompletedStep(queue.StepMetadata) {
			if err := r.executePair(ctx, state, step, plan[i+1], logger); err != nil {
				return err
			}
			i++
			continue
		}

		if err := r.executeStep(ctx, state, step, logger); err != nil {
			return err
		}
	}

	warning := ""
	if !settings.Assembly.Enabled {
		warning = "footage assembly skipped; no final video produced"
	}
	job.SetDone(warning)
	if err := r.store.Update(ctx, job); err != nil {
		return fmt.Errorf("persist completion: %w", err)
	}
	r.syncRecord(context.WithoutCancel(ctx), job, logger)
	logger.Info("job completed",
		slog.String(logging.FieldEventType, "job_complete"),
		slog.String("warning", warning))
	return nil
}

func (r *Runner) executeStep(ctx context.Context, state *runState, step plannedStep, logger *slog.Logger) error {
	job := state.job
	job.SetProgress(step.label, step.label, int(step.startPercent))
	if err := r.store.Update(ctx, job); err != nil {
		return fmt.Errorf("persist step start: %w", err)
	}
	logger.Info("step started",
		slog.String(logging.FieldEventType, "step_start"),
		slog.String(logging.FieldStep, string(step.step)))

	progress := r.progressFunc(ctx, state, step, logger)
	if err := step.run(services.WithStep(ctx, string(step.step)), r, state, progress); err != nil {
		if services.IsCancelled(err) {
			return r.stopped(ctx, job, step.step, logger)
		}
		return r.fail(ctx, job, step.step, err)
	}

	job.MarkStepCompleted(step.step)
	job.SetProgress(step.label, step.label+" completed", int(step.endPercent))
	if err := r.store.Update(ctx, job); err != nil {
		return fmt.Errorf("persist step result: %w", err)
	}
	r.syncRecord(ctx, job, logger)
	logger.Info("step completed",
		slog.String(logging.FieldEventType, "step_complete"),
		slog.String(logging.FieldStep, string(step.step)))
	return nil
}

// executePair runs two independent steps concurrently and records their
// results in pipeline order.
func (r *Runner) executePair(ctx context.Context, state *runState, first, second plannedStep, logger *slog.Logger) error {
	job := state.job
	job.SetProgress(first.label, first.label, int(first.startPercent))
	if err := r.store.Update(ctx, job); err != nil {
		return fmt.Errorf("persist step start: %w", err)
	}
	logger.Info("step started",
		slog.String(logging.FieldEventType, "step_start"),
		slog.String(logging.FieldStep, string(first.step)))
	logger.Info("step started",
		slog.String(logging.FieldEventType, "step_start"),
		slog.String(logging.FieldStep, string(second.step)))

	secondErr := make(chan error, 1)
	go func() {
		secondErr <- second.run(services.WithStep(ctx, string(second.step)), r, state, nil)
	}()
	firstErr := first.run(services.WithStep(ctx, string(first.step)), r, state, nil)
	errSecond := <-secondErr

	for _, outcome := range []struct {
		step plannedStep
		err  error
	}{{first, firstErr}, {second, errSecond}} {
		if outcome.err != nil {
			if services.IsCancelled(outcome.err) {
				return r.stopped(ctx, job, outcome.step.step, logger)
			}
			return r.fail(ctx, job, outcome.step.step, outcome.err)
		}
		job.MarkStepCompleted(outcome.step.step)
		logger.Info("step completed",
			slog.String(logging.FieldEventType, "step_complete"),
			slog.String(logging.FieldStep, string(outcome.step.step)))
	}

	job.SetProgress(second.label, second.label+" completed", int(second.endPercent))
	if err := r.store.Update(ctx, job); err != nil {
		return fmt.Errorf("persist step result: %w", err)
	}
	r.syncRecord(ctx, job, logger)
	return nil
}

// progressFunc maps step-relative percent into the step's slice of overall
// progress and persists it. Persistence failures only log; progress is
// advisory.
func (r *Runner) progressFunc(ctx context.Context, state *runState, step plannedStep, logger *slog.Logger) ProgressFunc {
	return func(percent float64, message string) {
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		overall := step.startPercent + percent/100*(step.endPercent-step.startPercent)
		state.job.SetProgress(step.label, message, int(overall))
		if err := r.store.Update(ctx, state.job); err != nil {
			logger.Debug("progress update not persisted", logging.Error(err))
		}
	}
}

// stopped records a cooperative stop. The cancellation cause distinguishes a
// user-requested stop from daemon shutdown.
func (r *Runner) stopped(ctx context.Context, job *queue.Job, step queue.Step, logger *slog.Logger) error {
	reason := queue.DaemonStopReason
	if errors.Is(context.Cause(ctx), services.ErrCancelled) {
		reason = queue.UserStopReason
	}
	job.SetStopped(step, reason)
	persistCtx := context.WithoutCancel(ctx)
	if err := r.store.Update(persistCtx, job); err != nil {
		logger.Error("failed to persist stop", logging.Error(err))
	}
	r.syncRecord(persistCtx, job, logger)
	logger.Info("job stopped",
		slog.String(logging.FieldEventType, "job_stopped"),
		slog.String(logging.FieldStep, string(step)),
		slog.String("reason", reason))
	return services.Wrap(services.ErrCancelled, string(step), "run", reason, nil)
}

// fail records a step failure and surfaces the classified message.
func (r *Runner) fail(ctx context.Context, job *queue.Job, step queue.Step, cause error) error {
	details := services.Details(cause)
	job.SetFailed(step, details.Message)
	persistCtx := context.WithoutCancel(ctx)
	if err := r.store.Update(persistCtx, job); err != nil {
		r.logger.Error("failed to persist failure", logging.Error(err))
	}
	logger := r.jobLogger(persistCtx, job)
	r.syncRecord(persistCtx, job, logger)
	logger.Error("job failed",
		slog.String(logging.FieldEventType, "job_failed"),
		slog.String(logging.FieldStep, string(step)),
		slog.String("error_kind", details.Kind),
		logging.Error(cause))
	return cause
}

func (r *Runner) jobLogger(ctx context.Context, job *queue.Job) *slog.Logger {
	logger := r.logger.With(
		slog.String(logging.FieldComponent, "pipeline"),
		slog.Int64(logging.FieldJobID, job.ID))
	return logging.WithContext(ctx, logger)
}

// buildPlan selects the applicable steps and assigns each its progress span,
// renormalized so the plan always spans 0-100.
func buildPlan(settings queue.JobSettings) []plannedStep {
	total := 0
	for _, spec := range stepTable {
		if spec.applies(settings) {
			total += spec.weight
		}
	}
	if total == 0 {
		return nil
	}
	plan := make([]plannedStep, 0, len(stepTable))
	cursor := 0.0
	for _, spec := range stepTable {
		if !spec.applies(settings) {
			continue
		}
		span := float64(spec.weight) / float64(total) * 100
		plan = append(plan, plannedStep{
			stepSpec:     spec,
			startPercent: cursor,
			endPercent:   cursor + span,
		})
		cursor += span
	}
	// Rounding drift keeps the final step short of 100 otherwise.
	plan[len(plan)-1].endPercent = 100
	return plan
}

func applyExportOverrides(settings *queue.JobSettings, toggles map[string]bool) {
	if len(toggles) == 0 {
		return
	}
	for name, enabled := range toggles {
		switch name {
		case "script":
			settings.Export.Script = enabled
		case "audio":
			settings.Export.Audio = enabled
		case "prompts":
			settings.Export.Prompts = enabled
		case "metadata":
			settings.Export.Metadata = enabled
		case "video":
			settings.Export.Video = enabled
		}
	}
}

func encodeMetadata(meta media.Metadata) (string, error) {
	data, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
