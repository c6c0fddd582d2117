package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue job.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// UserStopReason is the error message set when a user explicitly stops a job.
const UserStopReason = "Stopped by user"

// DaemonStopReason is the error message set when jobs are interrupted by daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusQueued,
	StatusRunning,
	StatusDone,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status ends a run attempt.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusError
}

// HealthSummary describes aggregated queue counts per lifecycle state.
type HealthSummary struct {
	Total   int
	Queued  int
	Running int
	Done    int
	Errored int
}

// Job represents a queue job persisted in SQLite.
type Job struct {
	ID                  int64
	Title               string
	SourceScript        string
	Preset              string
	SettingsJSON        string
	Status              Status
	ProgressPercent     int
	ProgressStage       string
	ProgressMessage     string
	CompletedSteps      []Step
	FailedStep          Step
	RetryFromStep       Step
	ErrorMessage        string
	WarningMessage      string
	OriginalTitle       string
	OriginalDescription string
	ThumbnailRef        string
	FinalVideoPath      string
	ExportDir           string
	MetadataJSON        string
	ProductionRecordID  string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasCompletedStep reports whether the step finished in the current run attempt.
func (j *Job) HasCompletedStep(step Step) bool {
	for _, s := range j.CompletedSteps {
		if s == step {
			return true
		}
	}
	return false
}

// MarkStepCompleted appends a step to the completed set, preserving pipeline order.
func (j *Job) MarkStepCompleted(step Step) {
	if j.HasCompletedStep(step) {
		return
	}
	j.CompletedSteps = append(j.CompletedSteps, step)
}

// TrimCompletedBefore drops completed steps at or after the given step.
func (j *Job) TrimCompletedBefore(step Step) {
	cutoff := StepIndex(step)
	if cutoff < 0 {
		return
	}
	kept := j.CompletedSteps[:0]
	for _, s := range j.CompletedSteps {
		if StepIndex(s) < cutoff {
			kept = append(kept, s)
		}
	}
	j.CompletedSteps = kept
}

// SetProgress updates all three progress fields together.
// Use this instead of setting ProgressStage, ProgressPercent, and
// ProgressMessage individually.
func (j *Job) SetProgress(stage, message string, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	j.ProgressStage = stage
	j.ProgressMessage = message
	j.ProgressPercent = percent
}

// SetFailed marks the job as errored at the given step.
func (j *Job) SetFailed(step Step, message string) {
	j.Status = StatusError
	j.FailedStep = step
	j.ErrorMessage = message
	j.ProgressStage = "Failed"
	j.ProgressMessage = message
}

// SetStopped marks the job as errored by a cooperative stop.
func (j *Job) SetStopped(step Step, reason string) {
	if strings.TrimSpace(reason) == "" {
		reason = UserStopReason
	}
	j.Status = StatusError
	j.FailedStep = step
	j.ErrorMessage = reason
	j.ProgressStage = "Stopped"
	j.ProgressMessage = reason
}

// SetDone marks the job finished, carrying an optional warning message.
func (j *Job) SetDone(warning string) {
	j.Status = StatusDone
	j.FailedStep = ""
	j.ErrorMessage = ""
	j.WarningMessage = strings.TrimSpace(warning)
	message := "Completed"
	if j.WarningMessage != "" {
		message = "Completed with warning: " + j.WarningMessage
	}
	j.SetProgress("Completed", message, 100)
}
