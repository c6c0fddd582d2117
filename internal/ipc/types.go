package ipc

import "scenecast/internal/api"

// StartRequest triggers daemon workflow startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops daemon workflow.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// QueueItem mirrors the API queue DTO for IPC callers.
type QueueItem = api.QueueItem

// StatusResponse represents combined daemon/workflow status information.
type StatusResponse struct {
	Running     bool           `json:"running"`
	QueueStats  map[string]int `json:"queue_stats"`
	InFlight    int            `json:"in_flight"`
	ActiveIDs   []int64        `json:"active_ids,omitempty"`
	LastError   string         `json:"last_error"`
	LockPath    string         `json:"lock_path"`
	QueueDBPath string         `json:"queue_db_path"`
	PID         int            `json:"pid"`
}

// QueueAddRequest enqueues a new job.
type QueueAddRequest struct {
	Title        string `json:"title"`
	SourceScript string `json:"source_script"`
	Preset       string `json:"preset"`
	SettingsJSON string `json:"settings_json"`
}

// QueueAddResponse returns the created job.
type QueueAddResponse struct {
	Item QueueItem `json:"item"`
}

// QueueListRequest filters queue listing by status.
type QueueListRequest struct {
	Statuses []string `json:"statuses"`
}

// QueueListResponse contains queue entries.
type QueueListResponse struct {
	Items []QueueItem `json:"items"`
}

// QueueDescribeRequest fetches a single job by id.
type QueueDescribeRequest struct {
	ID int64 `json:"id"`
}

// QueueDescribeResponse contains a single queue entry.
type QueueDescribeResponse struct {
	Item QueueItem `json:"item"`
}

// QueueRemoveRequest removes specific jobs by ID.
type QueueRemoveRequest struct {
	IDs []int64 `json:"ids"`
}

// QueueRemoveResponse reports number of removed entries.
type QueueRemoveResponse struct {
	Removed int64 `json:"removed"`
}

// QueueRetryRequest retries errored jobs. Empty list means all errored jobs.
type QueueRetryRequest struct {
	IDs []int64 `json:"ids"`
}

// QueueRetryResponse reports number of retried jobs.
type QueueRetryResponse struct {
	Updated int64 `json:"updated"`
}

// QueueRetryFromRequest requeues one job to resume at a specific step.
type QueueRetryFromRequest struct {
	ID   int64  `json:"id"`
	Step string `json:"step"`
}

// QueueRetryFromResponse acknowledges the retry-from request.
type QueueRetryFromResponse struct {
	Updated bool `json:"updated"`
}

// QueueStopRequest stops jobs. Empty list is invalid.
type QueueStopRequest struct {
	IDs []int64 `json:"ids"`
}

// QueueStopResponse reports number of stopped jobs.
type QueueStopResponse struct {
	Updated int64 `json:"updated"`
}

// QueueClearRequest removes all jobs.
type QueueClearRequest struct{}

// QueueClearResponse reports number of removed entries.
type QueueClearResponse struct {
	Removed int64 `json:"removed"`
}

// QueueClearDoneRequest removes finished jobs.
type QueueClearDoneRequest struct{}

// QueueClearDoneResponse reports number of removed entries.
type QueueClearDoneResponse struct {
	Removed int64 `json:"removed"`
}

// QueueClearErroredRequest removes errored jobs.
type QueueClearErroredRequest struct{}

// QueueClearErroredResponse reports number of removed entries.
type QueueClearErroredResponse struct {
	Removed int64 `json:"removed"`
}

// QueueResetRequest requeues jobs stranded in the running state.
type QueueResetRequest struct{}

// QueueResetResponse reports number of jobs reset.
type QueueResetResponse struct {
	Updated int64 `json:"updated"`
}

// QueueHealthRequest fetches aggregate diagnostics.
type QueueHealthRequest struct{}

// QueueHealthResponse reports queue health information.
type QueueHealthResponse struct {
	Total   int `json:"total"`
	Queued  int `json:"queued"`
	Running int `json:"running"`
	Done    int `json:"done"`
	Errored int `json:"errored"`
}

// RunConfigGetRequest fetches the effective dispatch configuration.
type RunConfigGetRequest struct{}

// RunConfigGetResponse returns the effective dispatch configuration.
type RunConfigGetResponse struct {
	Config api.RunConfig `json:"config"`
}

// RunConfigSetRequest updates the dispatch configuration.
type RunConfigSetRequest struct {
	Config api.RunConfig `json:"config"`
}

// RunConfigSetResponse acknowledges the update.
type RunConfigSetResponse struct {
	Updated bool `json:"updated"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
