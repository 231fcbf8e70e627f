package push

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vigil/config"
	"vigil/internal/domain/entity"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pushConfig(attempts int) *config.Config {
	cfg := &config.Config{}
	cfg.Push.URL = "ws://test/socket"
	cfg.Push.ReconnectAttempts = attempts
	cfg.Push.ReconnectDelay = 5 * time.Millisecond
	cfg.Push.ConnectTimeout = time.Second

	return cfg
}

// scriptedConn replays a fixed inbound script and records outbound writes.
// Reads past the end of the script fail like a dropped transport.
type scriptedConn struct {
	mu     sync.Mutex
	writes []envelope
	reads  chan envelope

	closed     chan struct{}
	closeOnce  sync.Once
	closeCount int32
}

func newScriptedConn() *scriptedConn {
	return &scriptedConn{
		reads:  make(chan envelope, 16),
		closed: make(chan struct{}),
	}
}

func (c *scriptedConn) ReadJSON(v any) error {
	select {
	case env, ok := <-c.reads:
		if !ok {
			return errors.New("connection reset")
		}
		*(v.(*envelope)) = env

		return nil
	case <-c.closed:
		return errors.New("use of closed connection")
	}
}

func (c *scriptedConn) WriteJSON(v any) error {
	select {
	case <-c.closed:
		return errors.New("use of closed connection")
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, v.(envelope))

	return nil
}

func (c *scriptedConn) Close() error {
	atomic.AddInt32(&c.closeCount, 1)
	c.closeOnce.Do(func() { close(c.closed) })

	return nil
}

func (c *scriptedConn) written() []envelope {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]envelope, len(c.writes))
	copy(out, c.writes)

	return out
}

func push(c *scriptedConn, event string, data any) {
	raw, _ := json.Marshal(data)
	c.reads <- envelope{Event: event, Data: raw}
}

func nextMessage(t *testing.T, ch <-chan entity.ChannelMessage) entity.ChannelMessage {
	t.Helper()

	select {
	case msg, ok := <-ch:
		require.True(t, ok, "message channel closed early")

		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel message")

		return entity.ChannelMessage{}
	}
}

func TestStream_RegistersAndDeliversFalls(t *testing.T) {
	conn := newScriptedConn()
	dialed := int32(0)
	dial := func(ctx context.Context, url string, timeout time.Duration) (Conn, error) {
		if atomic.AddInt32(&dialed, 1) > 1 {
			return nil, errors.New("backend gone")
		}
		assert.Equal(t, "ws://test/socket", url)

		return conn, nil
	}

	stream := NewStreamWithDialer(pushConfig(1), testLogger(), dial)
	require.NoError(t, stream.Connect(context.Background(), "dev-1"))
	messages := stream.Messages()

	push(conn, "registered", map[string]string{"deviceId": "dev-1"})
	push(conn, "connection_confirmed", map[string]string{"status": "ok"})
	push(conn, "fall_detected", entity.FallEvent{ // different device, suppressed
		DeviceID:  "dev-2",
		Timestamp: time.Now(),
	})
	push(conn, "fall_detected", entity.FallEvent{
		DeviceID:  "dev-1",
		Timestamp: time.Now(),
		Location:  &entity.Location{Latitude: 10.776, Longitude: 106.7},
		Message:   "Fall detected",
	})

	assert.Equal(t, entity.MessageConnected, nextMessage(t, messages).Kind)
	assert.Equal(t, entity.MessageRegistered, nextMessage(t, messages).Kind)
	assert.Equal(t, entity.MessageConnectionConfirm, nextMessage(t, messages).Kind)

	// The cross-device fall never surfaces; the next message is already the
	// matching one.
	fall := nextMessage(t, messages)
	require.Equal(t, entity.MessageFallDetected, fall.Kind)
	require.NotNil(t, fall.Fall)
	assert.Equal(t, "dev-1", fall.Fall.DeviceID)
	assert.InDelta(t, 10.776, fall.Fall.Location.Latitude, 0.0001)

	writes := conn.written()
	require.NotEmpty(t, writes)
	assert.Equal(t, "register_device", writes[0].Event)
	var reg registerPayload
	require.NoError(t, json.Unmarshal(writes[0].Data, &reg))
	assert.Equal(t, "dev-1", reg.DeviceID)

	stream.Disconnect()
}

func TestStream_ExhaustsRetryBudget(t *testing.T) {
	attempts := int32(0)
	dial := func(ctx context.Context, url string, timeout time.Duration) (Conn, error) {
		atomic.AddInt32(&attempts, 1)

		return nil, errors.New("connection refused")
	}

	stream := NewStreamWithDialer(pushConfig(3), testLogger(), dial)
	require.NoError(t, stream.Connect(context.Background(), "dev-1"))
	messages := stream.Messages()

	for range 3 {
		msg := nextMessage(t, messages)
		assert.Equal(t, entity.MessageConnectionError, msg.Kind)
		assert.Error(t, msg.Err)
	}

	final := nextMessage(t, messages)
	assert.Equal(t, entity.MessageDisconnected, final.Kind)
	assert.Equal(t, "reconnect attempts exhausted", final.Reason)

	_, open := <-messages
	assert.False(t, open, "channel should close after the terminal disconnect")

	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Equal(t, entity.ChannelDisconnected, stream.State())
}

func TestStream_RegistrationRestoresRetryBudget(t *testing.T) {
	var mu sync.Mutex
	conns := []*scriptedConn{}
	dial := func(ctx context.Context, url string, timeout time.Duration) (Conn, error) {
		mu.Lock()
		defer mu.Unlock()

		if len(conns) >= 1 {
			return nil, errors.New("backend gone")
		}
		conn := newScriptedConn()
		conns = append(conns, conn)

		return conn, nil
	}

	stream := NewStreamWithDialer(pushConfig(1), testLogger(), dial)
	require.NoError(t, stream.Connect(context.Background(), "dev-1"))
	messages := stream.Messages()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(conns) == 1
	}, 2*time.Second, time.Millisecond, "dialer was never invoked")

	mu.Lock()
	conn := conns[0]
	mu.Unlock()

	push(conn, "registered", map[string]string{"deviceId": "dev-1"})
	assert.Equal(t, entity.MessageConnected, nextMessage(t, messages).Kind)
	assert.Equal(t, entity.MessageRegistered, nextMessage(t, messages).Kind)

	// Drop the transport. Registration restored the single-attempt budget,
	// so the stream retries once more before giving up.
	close(conn.reads)

	drop := nextMessage(t, messages)
	assert.Equal(t, entity.MessageDisconnected, drop.Kind)

	redial := nextMessage(t, messages)
	assert.Equal(t, entity.MessageConnectionError, redial.Kind)

	final := nextMessage(t, messages)
	assert.Equal(t, entity.MessageDisconnected, final.Kind)
	assert.Equal(t, "reconnect attempts exhausted", final.Reason)
}

func TestStream_DisconnectIsIdempotent(t *testing.T) {
	conn := newScriptedConn()
	dial := func(ctx context.Context, url string, timeout time.Duration) (Conn, error) {
		return conn, nil
	}

	stream := NewStreamWithDialer(pushConfig(5), testLogger(), dial)
	require.NoError(t, stream.Connect(context.Background(), "dev-1"))

	// Wait for the transport to be live before tearing down.
	assert.Equal(t, entity.MessageConnected, nextMessage(t, stream.Messages()).Kind)

	stream.Disconnect()
	stream.Disconnect()

	assert.Equal(t, entity.ChannelDisconnected, stream.State())
}

func TestStream_NeverConnectedReturnsClosedChannel(t *testing.T) {
	stream := NewStreamWithDialer(pushConfig(5), testLogger(), nil)

	_, open := <-stream.Messages()
	assert.False(t, open)
	assert.Equal(t, entity.ChannelIdle, stream.State())
}

func TestStream_ConnectRequiresDevice(t *testing.T) {
	stream := NewStreamWithDialer(pushConfig(5), testLogger(), nil)

	assert.Error(t, stream.Connect(context.Background(), ""))
}
