package api

import "encoding/json"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// QueueItem describes a queue job in a transport-friendly format.
type QueueItem struct {
	ID                 int64           `json:"id"`
	Title              string          `json:"title"`
	OriginalTitle      string          `json:"originalTitle,omitempty"`
	Preset             string          `json:"preset,omitempty"`
	Status             string          `json:"status"`
	Progress           QueueProgress   `json:"progress"`
	CompletedSteps     []string        `json:"completedSteps"`
	FailedStep         string          `json:"failedStep,omitempty"`
	RetryFromStep      string          `json:"retryFromStep,omitempty"`
	ErrorMessage       string          `json:"errorMessage,omitempty"`
	WarningMessage     string          `json:"warningMessage,omitempty"`
	FinalVideoPath     string          `json:"finalVideoPath,omitempty"`
	ExportDir          string          `json:"exportDir,omitempty"`
	ProductionRecordID string          `json:"productionRecordId,omitempty"`
	CreatedAt          string          `json:"createdAt,omitempty"`
	UpdatedAt          string          `json:"updatedAt,omitempty"`
	Metadata           json.RawMessage `json:"metadata,omitempty"`
}

// QueueProgress captures step progress information for a queue job.
type QueueProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// WorkflowStatus summarizes dispatch state.
type WorkflowStatus struct {
	Running   bool    `json:"running"`
	InFlight  int     `json:"inFlight"`
	ActiveIDs []int64 `json:"activeIds,omitempty"`
	LastError string  `json:"lastError,omitempty"`
}

// RunConfig is the transport form of the global dispatch configuration.
type RunConfig struct {
	MaxConcurrent     int             `json:"maxConcurrent"`
	StartDelaySeconds int             `json:"startDelaySeconds"`
	OutputDir         string          `json:"outputDir,omitempty"`
	ExportToggles     map[string]bool `json:"exportToggles,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	QueueDBPath  string         `json:"queueDbPath"`
	LockFilePath string         `json:"lockFilePath"`
	Workflow     WorkflowStatus `json:"workflow"`
	QueueStats   map[string]int `json:"queueStats"`
}
