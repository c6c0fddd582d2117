package daemon_test

import (
	"context"
	"os"
	"testing"

	"scenecast/internal/config"
	"scenecast/internal/daemon"
	"scenecast/internal/logging"
	"scenecast/internal/notifications"
	"scenecast/internal/pipeline"
	"scenecast/internal/queue"
	"scenecast/internal/testsupport"
	"scenecast/internal/workflow"
)

func newDaemon(t *testing.T, cfg *config.Config, store *queue.Store) *daemon.Daemon {
	t.Helper()
	logger := logging.NewNop()
	runner := pipeline.NewRunner(cfg, store, pipeline.Collaborators{}, logger)
	mgr := workflow.NewManager(cfg, store, runner, notifications.NewService(cfg), logger)
	d, err := daemon.New(cfg, store, logger, mgr)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := daemon.New(nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}

func TestStartStopLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	d := newDaemon(t, cfg, store)

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected running status")
	}
	if status.PID != os.Getpid() {
		t.Fatalf("unexpected pid %d", status.PID)
	}
	if status.QueueDBPath == "" || status.LockFilePath == "" {
		t.Fatalf("expected paths populated: %+v", status)
	}

	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second Start to fail while running")
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("expected stopped status")
	}

	if err := d.Start(ctx); err != nil {
		t.Fatalf("restart after Stop failed: %v", err)
	}
	d.Stop()
}

func TestTestNotificationWithoutTopic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	d := newDaemon(t, cfg, store)

	sent, message, err := d.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("TestNotification failed: %v", err)
	}
	if sent {
		t.Fatal("expected notification skipped without topic")
	}
	if message != "ntfy topic not configured" {
		t.Fatalf("unexpected message %q", message)
	}
}
