// Package push implements the live event channel: a websocket subscription to
// the backend's push endpoint that delivers fall-detection events for exactly
// one registered device at a time.
package push

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"vigil/config"
	"vigil/internal/domain/entity"
	"vigil/internal/domain/service"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// Conn is the minimal transport surface the stream needs from a websocket
// connection. *websocket.Conn satisfies it.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// Dialer opens a transport connection. Swappable in tests.
type Dialer func(ctx context.Context, url string, timeout time.Duration) (Conn, error)

// defaultDialer dials the backend over gorilla/websocket.
func defaultDialer(ctx context.Context, url string, timeout time.Duration) (Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: timeout,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
	}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "websocket dial failed")
	}

	return conn, nil
}

// envelope is the wire format of the push channel, both directions.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// registerPayload is the client→server device registration message.
type registerPayload struct {
	DeviceID string `json:"deviceId"`
}

// Stream implements service.EventStream over a websocket transport with a
// bounded automatic reconnect policy.
type Stream struct {
	cfg    config.PushConfig
	logger *slog.Logger
	dial   Dialer

	mu    sync.Mutex
	state entity.ChannelState
	run   *run
}

// run is one Connect..Disconnect episode. Each episode owns its message
// channel and its transport.
type run struct {
	deviceID string
	ctx      context.Context
	cancel   context.CancelFunc
	messages chan entity.ChannelMessage
	done     chan struct{}

	connMu sync.Mutex
	conn   Conn

	closeOnce sync.Once
}

// NewStream creates the live event channel in the idle state.
func NewStream(cfg *config.Config, logger *slog.Logger) service.EventStream {
	return &Stream{
		cfg:    cfg.Push,
		logger: logger,
		dial:   defaultDialer,
		state:  entity.ChannelIdle,
	}
}

// NewStreamWithDialer is NewStream with an explicit transport dialer.
func NewStreamWithDialer(cfg *config.Config, logger *slog.Logger, dial Dialer) service.EventStream {
	return &Stream{
		cfg:    cfg.Push,
		logger: logger,
		dial:   dial,
		state:  entity.ChannelIdle,
	}
}

// Connect starts a subscription episode for deviceID. Any previous episode is
// torn down first, so the stream never serves two devices at once.
func (s *Stream) Connect(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return errors.New("deviceID must not be empty")
	}

	s.Disconnect()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r := &run{
		deviceID: deviceID,
		ctx:      runCtx,
		cancel:   cancel,
		messages: make(chan entity.ChannelMessage, 32),
		done:     make(chan struct{}),
	}

	s.mu.Lock()
	s.run = r
	s.state = entity.ChannelConnecting
	s.mu.Unlock()

	go s.loop(r)

	return nil
}

// Messages returns the current episode's ordered message channel. A stream
// that was never connected returns a closed channel.
func (s *Stream) Messages() <-chan entity.ChannelMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run == nil {
		closed := make(chan entity.ChannelMessage)
		close(closed)

		return closed
	}

	return s.run.messages
}

// State reports the current channel state.
func (s *Stream) State() entity.ChannelState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Disconnect tears the current episode down. Safe to call repeatedly; the
// transport is closed exactly once per episode.
func (s *Stream) Disconnect() {
	s.mu.Lock()
	r := s.run
	s.mu.Unlock()

	if r == nil {
		return
	}

	r.closeOnce.Do(func() {
		r.cancel()
		r.closeConn()
	})

	<-r.done

	s.mu.Lock()
	if s.run == r {
		s.state = entity.ChannelDisconnected
	}
	s.mu.Unlock()
}

// loop drives one episode: dial, register, read until the transport drops,
// then reconnect within the attempt budget.
func (s *Stream) loop(r *run) {
	defer close(r.done)
	defer close(r.messages)

	attemptsLeft := s.cfg.ReconnectAttempts

	for {
		if r.ctx.Err() != nil {
			s.finish(r, "connection closed")

			return
		}

		if attemptsLeft <= 0 {
			s.logger.Warn("Push channel retry budget exhausted",
				slog.String("device_id", r.deviceID),
				slog.Int("attempts", s.cfg.ReconnectAttempts),
			)
			s.finish(r, "reconnect attempts exhausted")

			return
		}
		attemptsLeft--

		s.setState(r, entity.ChannelConnecting)

		conn, err := s.dial(r.ctx, s.cfg.URL, s.cfg.ConnectTimeout)
		if err != nil {
			s.setState(r, entity.ChannelError)
			s.emit(r, entity.ChannelMessage{
				Kind:      entity.MessageConnectionError,
				Timestamp: time.Now(),
				Err:       err,
			})

			if !s.sleep(r, s.cfg.ReconnectDelay) {
				s.finish(r, "connection closed")

				return
			}

			continue
		}

		r.setConn(conn)
		s.setState(r, entity.ChannelConnected)
		s.emit(r, entity.ChannelMessage{
			Kind:      entity.MessageConnected,
			Timestamp: time.Now(),
		})

		reason, registered := s.serve(r, conn)
		r.setConn(nil)

		if r.ctx.Err() != nil {
			s.finish(r, "connection closed")

			return
		}

		// A connection that made it to registration restores the full retry
		// budget; a failed handshake keeps burning the current one.
		if registered {
			attemptsLeft = s.cfg.ReconnectAttempts
		}

		s.emit(r, entity.ChannelMessage{
			Kind:      entity.MessageDisconnected,
			Timestamp: time.Now(),
			Reason:    reason,
		})

		if !s.sleep(r, s.cfg.ReconnectDelay) {
			s.finish(r, "connection closed")

			return
		}
	}
}

// serve registers the device, then pumps inbound messages until the transport
// drops. Returns the disconnect reason and whether registration was reached.
func (s *Stream) serve(r *run, conn Conn) (reason string, registered bool) {
	payload, err := json.Marshal(registerPayload{DeviceID: r.deviceID})
	if err != nil {
		conn.Close()

		return "failed to marshal registration", false
	}

	if err := conn.WriteJSON(envelope{Event: "register_device", Data: payload}); err != nil {
		conn.Close()

		return "failed to register device", false
	}

	s.logger.Info("Registering device on push channel",
		slog.String("device_id", r.deviceID))

	for {
		var msg envelope
		if err := conn.ReadJSON(&msg); err != nil {
			conn.Close()

			return err.Error(), registered
		}

		switch msg.Event {
		case "registered":
			registered = true
			s.setState(r, entity.ChannelRegistered)
			s.emit(r, entity.ChannelMessage{
				Kind:      entity.MessageRegistered,
				Timestamp: time.Now(),
			})

		case "connection_confirmed":
			s.emit(r, entity.ChannelMessage{
				Kind:      entity.MessageConnectionConfirm,
				Timestamp: time.Now(),
			})

		case "fall_detected":
			s.handleFall(r, msg.Data)

		default:
			s.logger.Debug("Ignoring unknown push event",
				slog.String("event", msg.Event))
		}
	}
}

// handleFall decodes a fall event and forwards it unless it belongs to a
// different device. The cross-device filter is silent: a mismatch is not an
// error on a push channel shared by every sensor.
func (s *Stream) handleFall(r *run, data json.RawMessage) {
	var event entity.FallEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn("Dropping malformed fall event", slog.Any("error", err))

		return
	}

	if event.DeviceID != r.deviceID {
		s.logger.Debug("Suppressing fall event for different device",
			slog.String("event_device", event.DeviceID),
			slog.String("registered_device", r.deviceID),
		)

		return
	}

	s.emit(r, entity.ChannelMessage{
		Kind:      entity.MessageFallDetected,
		Timestamp: time.Now(),
		Fall:      &event,
	})
}

// finish emits the terminal disconnect message and parks the stream in the
// disconnected state. Only an explicit Connect recovers from here.
func (s *Stream) finish(r *run, reason string) {
	s.setState(r, entity.ChannelDisconnected)
	s.emit(r, entity.ChannelMessage{
		Kind:      entity.MessageDisconnected,
		Timestamp: time.Now(),
		Reason:    reason,
	})
}

// emit delivers a message in order, giving up only when the episode ends.
func (s *Stream) emit(r *run, msg entity.ChannelMessage) {
	select {
	case r.messages <- msg:
	case <-r.ctx.Done():
	}
}

// sleep waits the reconnect delay, returning false if the episode ended.
func (s *Stream) sleep(r *run, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-r.ctx.Done():
		return false
	}
}

// setState updates the channel state if the episode is still current.
func (s *Stream) setState(r *run, state entity.ChannelState) {
	s.mu.Lock()
	if s.run == r {
		s.state = state
	}
	s.mu.Unlock()
}

func (r *run) setConn(conn Conn) {
	r.connMu.Lock()
	r.conn = conn
	r.connMu.Unlock()
}

func (r *run) closeConn() {
	r.connMu.Lock()
	conn := r.conn
	r.conn = nil
	r.connMu.Unlock()

	if conn != nil {
		conn.Close()
	}
}
