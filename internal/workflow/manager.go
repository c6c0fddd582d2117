package workflow

import (
	"log/slog"
	"sync"
	"time"

	"scenecast/internal/cancel"
	"scenecast/internal/config"
	"scenecast/internal/logging"
	"scenecast/internal/notifications"
	"scenecast/internal/pipeline"
	"scenecast/internal/queue"
)

// Manager dispatches queued jobs to a bounded set of pipeline workers. A
// single dispatcher goroutine claims jobs in FIFO order and enforces the
// concurrency limit and inter-start delay; one worker goroutine runs each
// claimed job to a terminal status.
type Manager struct {
	cfg      *config.Config
	store    *queue.Store
	runner   *pipeline.Runner
	logger   *slog.Logger
	notifier notifications.Service
	registry *cancel.Registry

	kick       chan struct{}
	workerDone chan struct{}

	mu       sync.Mutex
	running  bool
	cancelFn func()
	wg       sync.WaitGroup
	inFlight int
	lastErr  error

	queueActive bool
	queueStart  time.Time
	processed   int
	failed      int
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, store *queue.Store, runner *pipeline.Runner, notifier notifications.Service, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Manager{
		cfg:        cfg,
		store:      store,
		runner:     runner,
		logger:     logger.With(slog.String(logging.FieldComponent, "workflow")),
		notifier:   notifier,
		registry:   cancel.NewRegistry(),
		kick:       make(chan struct{}, 1),
		workerDone: make(chan struct{}, 1),
	}
}

// Registry exposes the cancellation registry for status reporting.
func (m *Manager) Registry() *cancel.Registry {
	return m.registry
}

// effectiveRunConfig merges the persisted run configuration over the static
// file defaults. It is consulted on every dispatch decision so changes apply
// to future starts without a restart.
func (m *Manager) effectiveRunConfig(rc queue.RunConfig, found bool) queue.RunConfig {
	if !found {
		rc = queue.RunConfig{}
	}
	if rc.MaxConcurrent < 1 {
		rc.MaxConcurrent = m.cfg.Queue.MaxConcurrent
	}
	if rc.StartDelaySeconds <= 0 {
		rc.StartDelaySeconds = m.cfg.Queue.StartDelaySeconds
	}
	if rc.OutputDir == "" {
		rc.OutputDir = m.cfg.Paths.OutputDir
	}
	rc.Normalize()
	return rc
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
