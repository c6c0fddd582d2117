package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"scenecast/internal/api"
	"scenecast/internal/daemon"
	"scenecast/internal/logging"
	"scenecast/internal/logs"
	"scenecast/internal/queue"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Scenecast", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", slog.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					slog.String(logging.FieldEventType, "ipc_accept_failed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			slog.String("socket", s.path),
			logging.Error(err),
			slog.String(logging.FieldEventType, "ipc_socket_cleanup_failed"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(slog.String(logging.FieldComponent, "ipc"))
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.log().Debug("daemon start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	s.log().Info("daemon started via IPC",
		slog.String(logging.FieldEventType, "daemon_start"))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("daemon stopped via IPC",
		slog.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.QueueDBPath = status.QueueDBPath
	resp.LockPath = status.LockFilePath
	resp.PID = status.PID
	resp.InFlight = status.Workflow.InFlight
	resp.ActiveIDs = status.Workflow.ActiveIDs
	resp.LastError = status.Workflow.LastError
	resp.QueueStats = make(map[string]int, len(status.QueueStats))
	for k, v := range status.QueueStats {
		resp.QueueStats[string(k)] = v
	}
	return nil
}

func (s *service) QueueAdd(req QueueAddRequest, resp *QueueAddResponse) error {
	settings, err := queue.SettingsFromJSON(req.SettingsJSON)
	if err != nil {
		return err
	}
	job, err := s.daemon.AddJob(s.ctx, req.Title, req.SourceScript, req.Preset, settings)
	if err != nil {
		return err
	}
	resp.Item = api.FromJob(job)
	return nil
}

func (s *service) QueueList(req QueueListRequest, resp *QueueListResponse) error {
	statuses := make([]queue.Status, 0, len(req.Statuses))
	for _, status := range req.Statuses {
		parsed, ok := queue.ParseStatus(status)
		if !ok {
			continue
		}
		statuses = append(statuses, parsed)
	}
	jobs, err := s.daemon.ListQueue(s.ctx, statuses)
	if err != nil {
		return err
	}
	resp.Items = api.FromJobs(jobs)
	return nil
}

func (s *service) QueueDescribe(req QueueDescribeRequest, resp *QueueDescribeResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid job id %d", req.ID)
	}
	job, err := s.daemon.GetJob(s.ctx, req.ID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job %d not found", req.ID)
	}
	resp.Item = api.FromJob(job)
	return nil
}

func (s *service) QueueRemove(req QueueRemoveRequest, resp *QueueRemoveResponse) error {
	if len(req.IDs) == 0 {
		return errors.New("queue remove requires at least one id")
	}
	removed, err := s.daemon.RemoveJobs(s.ctx, req.IDs)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.log().Info("jobs removed",
		slog.String(logging.FieldEventType, "queue_remove"),
		slog.Int64("removed_count", removed))
	return nil
}

func (s *service) QueueRetry(req QueueRetryRequest, resp *QueueRetryResponse) error {
	updated, err := s.daemon.RetryErrored(s.ctx, req.IDs)
	if err != nil {
		return err
	}
	resp.Updated = updated
	s.log().Info("jobs retried",
		slog.String(logging.FieldEventType, "queue_retry"),
		slog.Int64("updated_count", updated))
	return nil
}

func (s *service) QueueRetryFrom(req QueueRetryFromRequest, resp *QueueRetryFromResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid job id %d", req.ID)
	}
	step, ok := queue.ParseStep(req.Step)
	if !ok {
		return fmt.Errorf("unknown step %q", req.Step)
	}
	if err := s.daemon.RetryFromStep(s.ctx, req.ID, step); err != nil {
		return err
	}
	resp.Updated = true
	s.log().Info("job requeued from step",
		slog.String(logging.FieldEventType, "queue_retry_from"),
		slog.Int64(logging.FieldJobID, req.ID),
		slog.String(logging.FieldStep, string(step)))
	return nil
}

func (s *service) QueueStop(req QueueStopRequest, resp *QueueStopResponse) error {
	if len(req.IDs) == 0 {
		return errors.New("queue stop requires at least one id")
	}
	updated, err := s.daemon.StopJobs(s.ctx, req.IDs)
	if err != nil {
		return err
	}
	resp.Updated = updated
	s.log().Info("jobs stopped",
		slog.String(logging.FieldEventType, "queue_stop"),
		slog.Int64("updated_count", updated))
	return nil
}

func (s *service) QueueClear(_ QueueClearRequest, resp *QueueClearResponse) error {
	removed, err := s.daemon.ClearQueue(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.log().Info("queue cleared",
		slog.String(logging.FieldEventType, "queue_clear"),
		slog.Int64("removed_count", removed))
	return nil
}

func (s *service) QueueClearDone(_ QueueClearDoneRequest, resp *QueueClearDoneResponse) error {
	removed, err := s.daemon.ClearDone(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.log().Info("finished jobs cleared",
		slog.String(logging.FieldEventType, "queue_clear_done"),
		slog.Int64("removed_count", removed))
	return nil
}

func (s *service) QueueClearErrored(_ QueueClearErroredRequest, resp *QueueClearErroredResponse) error {
	removed, err := s.daemon.ClearErrored(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.log().Info("errored jobs cleared",
		slog.String(logging.FieldEventType, "queue_clear_errored"),
		slog.Int64("removed_count", removed))
	return nil
}

func (s *service) QueueReset(_ QueueResetRequest, resp *QueueResetResponse) error {
	updated, err := s.daemon.ResetStuck(s.ctx)
	if err != nil {
		return err
	}
	resp.Updated = updated
	s.log().Info("stuck jobs reset",
		slog.String(logging.FieldEventType, "queue_reset_stuck"),
		slog.Int64("updated_count", updated))
	return nil
}

func (s *service) QueueHealth(_ QueueHealthRequest, resp *QueueHealthResponse) error {
	health, err := s.daemon.QueueHealth(s.ctx)
	if err != nil {
		return err
	}
	resp.Total = health.Total
	resp.Queued = health.Queued
	resp.Running = health.Running
	resp.Done = health.Done
	resp.Errored = health.Errored
	return nil
}

func (s *service) RunConfigGet(_ RunConfigGetRequest, resp *RunConfigGetResponse) error {
	rc, err := s.daemon.RunConfig(s.ctx)
	if err != nil {
		return err
	}
	resp.Config = api.RunConfig{
		MaxConcurrent:     rc.MaxConcurrent,
		StartDelaySeconds: rc.StartDelaySeconds,
		OutputDir:         rc.OutputDir,
		ExportToggles:     rc.ExportToggles,
	}
	return nil
}

func (s *service) RunConfigSet(req RunConfigSetRequest, resp *RunConfigSetResponse) error {
	rc := queue.RunConfig{
		MaxConcurrent:     req.Config.MaxConcurrent,
		StartDelaySeconds: req.Config.StartDelaySeconds,
		OutputDir:         req.Config.OutputDir,
		ExportToggles:     req.Config.ExportToggles,
	}
	if err := s.daemon.SetRunConfig(s.ctx, rc); err != nil {
		return err
	}
	resp.Updated = true
	s.log().Info("run config updated via IPC",
		slog.String(logging.FieldEventType, "run_config_set"))
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	options := logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, options)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
