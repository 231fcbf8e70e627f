package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"vigil/config"
	deliverycontext "vigil/internal/delivery/context"
	"vigil/internal/domain/entity"
	domainerrors "vigil/internal/domain/errors"
	"vigil/internal/domain/repository"
	"vigil/internal/domain/service"
	"vigil/internal/usecase"
	"vigil/internal/util"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// monitorService implements the MonitorUsecase interface. It is the only
// consumer of the event stream; every observable mutation happens under its
// mutex, keyed to the current episode so late messages from a torn-down
// subscription are discarded instead of applied.
type monitorService struct {
	cfg      config.MonitorConfig
	stream   service.EventStream
	sessions repository.SessionRepository
	logger   *slog.Logger

	mu         sync.Mutex
	episode    int
	deviceID   string
	running    bool
	alerts     []*entity.Alert
	latest     *entity.FallEvent
	lastUpdate *time.Time
}

// NewMonitorService is the constructor for monitorService.
func NewMonitorService(
	cfg *config.Config,
	stream service.EventStream,
	sessions repository.SessionRepository,
	logger *slog.Logger,
) usecase.MonitorUsecase {
	return &monitorService{
		cfg:      cfg.Monitor,
		stream:   stream,
		sessions: sessions,
		logger:   logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *monitorService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Start connects the event channel for the session's device. Starting twice
// for the same device is a no-op; a changed device restarts the subscription.
func (srv *monitorService) Start(ctx context.Context) error {
	// 1. Resolve the device from the persisted session
	session, err := srv.sessions.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return domainerrors.ErrNotAuthenticated
		}

		return errors.Wrap(err, "failed to load session")
	}

	deviceID := session.DeviceID()
	if !session.IsAuthenticated || deviceID == "" {
		return domainerrors.ErrNoDevicePaired
	}

	srv.mu.Lock()
	if srv.running && srv.deviceID == deviceID {
		srv.mu.Unlock()

		return nil
	}
	srv.mu.Unlock()

	// 2. Tear down any subscription for a previous device
	srv.Stop()

	// 3. Connect and start consuming
	if err := srv.stream.Connect(ctx, deviceID); err != nil {
		return errors.Wrap(err, "failed to connect event channel")
	}

	srv.mu.Lock()
	srv.episode++
	episode := srv.episode
	srv.deviceID = deviceID
	srv.running = true
	srv.mu.Unlock()

	srv.log(ctx).Info("Monitoring started", slog.String("device_id", deviceID))

	go srv.consume(episode, srv.stream.Messages())

	return nil
}

// Stop deterministically cancels the subscription. Idempotent.
func (srv *monitorService) Stop() {
	srv.mu.Lock()
	wasRunning := srv.running
	srv.running = false
	srv.episode++ // invalidates any in-flight consume loop
	srv.mu.Unlock()

	srv.stream.Disconnect()

	if wasRunning {
		srv.logger.Info("Monitoring stopped")
	}
}

// Status reports a snapshot for the console's status indicator.
func (srv *monitorService) Status() *usecase.MonitorStatus {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	status := &usecase.MonitorStatus{
		ChannelState:  srv.stream.State(),
		DeviceID:      srv.deviceID,
		PendingAlerts: len(srv.pendingLocked()),
	}
	if srv.lastUpdate != nil {
		ts := *srv.lastUpdate
		status.LastUpdate = &ts
		status.LastUpdateAge = util.FormatDuration(time.Since(ts))
	}

	return status
}

// PendingAlerts lists unacknowledged alerts, oldest first.
func (srv *monitorService) PendingAlerts() []*entity.Alert {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	pending := srv.pendingLocked()
	out := make([]*entity.Alert, len(pending))
	copy(out, pending)

	return out
}

// Acknowledge dismisses a pending alert.
func (srv *monitorService) Acknowledge(alertID uuid.UUID) error {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	for _, alert := range srv.alerts {
		if alert.ID == alertID && !alert.Acknowledged() {
			now := time.Now()
			alert.AckedAt = &now

			return nil
		}
	}

	return domainerrors.ErrAlertNotFound
}

// LatestLocation returns the most recent located fall event.
func (srv *monitorService) LatestLocation() (*entity.FallEvent, error) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.latest == nil || srv.latest.Location == nil {
		return nil, domainerrors.ErrNoLocationAvailable
	}

	event := *srv.latest

	return &event, nil
}

// consume drains one episode's message channel until it closes.
func (srv *monitorService) consume(episode int, messages <-chan entity.ChannelMessage) {
	for msg := range messages {
		srv.apply(episode, msg)
	}
}

// apply folds one channel message into the monitor state. Messages from a
// superseded episode are dropped: the screen that owned them is gone.
func (srv *monitorService) apply(episode int, msg entity.ChannelMessage) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if episode != srv.episode {
		return
	}

	switch msg.Kind {
	case entity.MessageConnected:
		srv.logger.Info("Push channel connected")

	case entity.MessageRegistered:
		srv.logger.Info("Device registration acknowledged",
			slog.String("device_id", srv.deviceID))

	case entity.MessageConnectionConfirm:
		ts := msg.Timestamp
		srv.lastUpdate = &ts

	case entity.MessageFallDetected:
		srv.raiseLocked(msg)

	case entity.MessageDisconnected:
		srv.logger.Warn("Push channel disconnected", slog.String("reason", msg.Reason))

	case entity.MessageConnectionError:
		srv.logger.Warn("Push channel connection error", slog.Any("error", msg.Err))
	}
}

// raiseLocked records a fall alert. Default retention keeps only the most
// recent event; the queue mode keeps a bounded pending backlog, dropping the
// oldest when full.
func (srv *monitorService) raiseLocked(msg entity.ChannelMessage) {
	if msg.Fall == nil {
		return
	}

	ts := msg.Timestamp
	srv.lastUpdate = &ts
	srv.latest = msg.Fall

	alert := &entity.Alert{
		ID:       uuid.New(),
		Event:    *msg.Fall,
		RaisedAt: msg.Timestamp,
	}

	if !srv.cfg.QueueAlerts {
		// Latest event wins; an unacknowledged predecessor is replaced.
		srv.alerts = []*entity.Alert{alert}
	} else {
		srv.alerts = append(srv.alerts, alert)
		if pending := srv.pendingLocked(); len(pending) > srv.cfg.MaxPendingAlerts {
			drop := pending[0]
			now := time.Now()
			drop.AckedAt = &now
			srv.logger.Warn("Pending alert queue full, dropping oldest",
				slog.String("alert_id", drop.ID.String()))
		}
	}

	srv.logger.Warn("Fall detected",
		slog.String("device_id", msg.Fall.DeviceID),
		slog.Time("timestamp", msg.Fall.Timestamp),
		slog.String("message", msg.Fall.Message),
	)
}

// pendingLocked filters out acknowledged alerts. Callers hold the mutex.
func (srv *monitorService) pendingLocked() []*entity.Alert {
	pending := srv.alerts[:0:0]
	for _, alert := range srv.alerts {
		if !alert.Acknowledged() {
			pending = append(pending, alert)
		}
	}

	return pending
}
