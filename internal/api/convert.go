package api

import (
	"encoding/json"
	"time"

	"scenecast/internal/queue"
)

// FromJob converts a queue job into its transport representation.
func FromJob(job *queue.Job) QueueItem {
	if job == nil {
		return QueueItem{}
	}
	item := QueueItem{
		ID:            job.ID,
		Title:         job.Title,
		OriginalTitle: job.OriginalTitle,
		Preset:        job.Preset,
		Status:        string(job.Status),
		Progress: QueueProgress{
			Stage:   job.ProgressStage,
			Percent: float64(job.ProgressPercent),
			Message: job.ProgressMessage,
		},
		CompletedSteps:     stepsToStrings(job.CompletedSteps),
		FailedStep:         string(job.FailedStep),
		RetryFromStep:      string(job.RetryFromStep),
		ErrorMessage:       job.ErrorMessage,
		WarningMessage:     job.WarningMessage,
		FinalVideoPath:     job.FinalVideoPath,
		ExportDir:          job.ExportDir,
		ProductionRecordID: job.ProductionRecordID,
		CreatedAt:          formatTime(job.CreatedAt),
		UpdatedAt:          formatTime(job.UpdatedAt),
	}
	if raw := []byte(job.MetadataJSON); json.Valid(raw) && len(raw) > 0 {
		item.Metadata = json.RawMessage(raw)
	}
	return item
}

// FromJobs converts a job slice, skipping nil entries.
func FromJobs(jobs []*queue.Job) []QueueItem {
	items := make([]QueueItem, 0, len(jobs))
	for _, job := range jobs {
		if job == nil {
			continue
		}
		items = append(items, FromJob(job))
	}
	return items
}

func stepsToStrings(steps []queue.Step) []string {
	out := make([]string, len(steps))
	for i, step := range steps {
		out[i] = string(step)
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
