package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"scenecast/internal/config"
	"scenecast/internal/daemon"
	"scenecast/internal/export"
	"scenecast/internal/ipc"
	"scenecast/internal/logging"
	"scenecast/internal/notifications"
	"scenecast/internal/pipeline"
	"scenecast/internal/queue"
	"scenecast/internal/services/llm"
	"scenecast/internal/services/prodrecord"
	"scenecast/internal/services/render"
	"scenecast/internal/services/textgen"
	"scenecast/internal/services/voice"
	"scenecast/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel   string
	SocketPath string
}

// Run starts the scenecast daemon runtime loop and blocks until the context
// is cancelled or a termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.NewForPaths(cfg.Paths.LogDir, level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	sessionID := uuid.NewString()
	logger = logger.With(slog.String("session_id", sessionID))

	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open queue store: %w", err)
	}
	defer store.Close()

	runner := pipeline.NewRunner(cfg, store, buildCollaborators(cfg), logger)
	notifier := notifications.NewService(cfg)
	manager := workflow.NewManager(cfg, store, runner, notifier, logger)

	d, err := daemon.New(cfg, store, logger, manager)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	socketPath := opts.SocketPath
	if socketPath == "" {
		socketPath = cfg.SocketPath()
	}
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-signalCtx.Done()
	logger.Info("scenecast daemon shutting down",
		slog.String(logging.FieldEventType, "daemon_shutdown"))
	d.Stop()
	return nil
}

// buildCollaborators wires the external service clients the pipeline drives.
func buildCollaborators(cfg *config.Config) pipeline.Collaborators {
	textClient := textgen.NewClient(llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	}))

	voiceClient := voice.NewClient(voice.Config{
		BaseURL:        cfg.Voice.BaseURL,
		APIKey:         cfg.Voice.APIKey,
		TimeoutSeconds: cfg.Voice.TimeoutSeconds,
	})

	collab := pipeline.Collaborators{
		Text:     textClient,
		Voice:    voiceClient,
		Renderer: render.NewCLI(render.WithBinary(cfg.Render.Binary)),
		Packager: export.New(cfg.Paths.OutputDir),
	}

	if cfg.ProductionRecord.Enabled {
		collab.Records = prodrecord.NewClient(prodrecord.Config{
			BaseURL:        cfg.ProductionRecord.BaseURL,
			APIKey:         cfg.ProductionRecord.APIKey,
			TimeoutSeconds: cfg.ProductionRecord.TimeoutSeconds,
		})
	}

	return collab
}
