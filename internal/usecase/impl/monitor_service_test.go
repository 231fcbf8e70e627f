package impl

import (
	"context"
	"testing"
	"time"

	"vigil/config"
	"vigil/internal/domain/entity"
	domainerrors "vigil/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monitorConfig(queue bool, maxPending int) *config.Config {
	cfg := &config.Config{}
	cfg.Monitor.QueueAlerts = queue
	cfg.Monitor.MaxPendingAlerts = maxPending

	return cfg
}

func fallMessage(deviceID string, ts time.Time) entity.ChannelMessage {
	return entity.ChannelMessage{
		Kind:      entity.MessageFallDetected,
		Timestamp: ts,
		Fall: &entity.FallEvent{
			DeviceID:  deviceID,
			Timestamp: ts,
			Location:  &entity.Location{Latitude: 10.776, Longitude: 106.7},
			Message:   "Fall detected",
		},
	}
}

func TestMonitorService_Start_NotAuthenticated(t *testing.T) {
	svc := NewMonitorService(monitorConfig(false, 0), newFakeStream(), &memSessionRepo{}, testLogger())

	err := svc.Start(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrNotAuthenticated)
}

func TestMonitorService_Start_NoDevice(t *testing.T) {
	repo := loggedInRepo(&entity.UserProfile{ID: "user-1"})
	svc := NewMonitorService(monitorConfig(false, 0), newFakeStream(), repo, testLogger())

	err := svc.Start(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrNoDevicePaired)
}

func TestMonitorService_Start_IdempotentForSameDevice(t *testing.T) {
	stream := newFakeStream()
	repo := loggedInRepo(&entity.UserProfile{ID: "user-1", DeviceID: "dev-1"})
	svc := NewMonitorService(monitorConfig(false, 0), stream, repo, testLogger())

	require.NoError(t, svc.Start(context.Background()))
	require.NoError(t, svc.Start(context.Background()))

	assert.Equal(t, []string{"dev-1"}, stream.connected)
	assert.Equal(t, "dev-1", svc.Status().DeviceID)
}

func TestMonitorService_FallRaisesAlert(t *testing.T) {
	stream := newFakeStream()
	repo := loggedInRepo(&entity.UserProfile{ID: "user-1", DeviceID: "dev-1"})
	svc := NewMonitorService(monitorConfig(false, 0), stream, repo, testLogger())

	require.NoError(t, svc.Start(context.Background()))

	stream.messages <- fallMessage("dev-1", time.Now())

	assert.Eventually(t, func() bool {
		return len(svc.PendingAlerts()) == 1
	}, time.Second, 10*time.Millisecond)

	event, err := svc.LatestLocation()
	require.NoError(t, err)
	assert.InDelta(t, 10.776, event.Location.Latitude, 0.0001)
}

func TestMonitorService_SingleSlot_LatestEventWins(t *testing.T) {
	stream := newFakeStream()
	repo := loggedInRepo(&entity.UserProfile{ID: "user-1", DeviceID: "dev-1"})
	svc := NewMonitorService(monitorConfig(false, 0), stream, repo, testLogger())

	require.NoError(t, svc.Start(context.Background()))

	first := fallMessage("dev-1", time.Now().Add(-time.Minute))
	second := fallMessage("dev-1", time.Now())
	stream.messages <- first
	stream.messages <- second

	assert.Eventually(t, func() bool {
		pending := svc.PendingAlerts()

		return len(pending) == 1 && pending[0].RaisedAt.Equal(second.Timestamp)
	}, time.Second, 10*time.Millisecond)
}

func TestMonitorService_QueueMode_DropsOldestWhenFull(t *testing.T) {
	stream := newFakeStream()
	repo := loggedInRepo(&entity.UserProfile{ID: "user-1", DeviceID: "dev-1"})
	svc := NewMonitorService(monitorConfig(true, 2), stream, repo, testLogger())

	require.NoError(t, svc.Start(context.Background()))

	base := time.Now()
	for i := range 3 {
		stream.messages <- fallMessage("dev-1", base.Add(time.Duration(i)*time.Second))
	}

	assert.Eventually(t, func() bool {
		pending := svc.PendingAlerts()
		if len(pending) != 2 {
			return false
		}

		// The oldest was dropped; the two newest remain in order.
		return pending[0].RaisedAt.Equal(base.Add(time.Second)) &&
			pending[1].RaisedAt.Equal(base.Add(2*time.Second))
	}, time.Second, 10*time.Millisecond)
}

func TestMonitorService_Acknowledge(t *testing.T) {
	stream := newFakeStream()
	repo := loggedInRepo(&entity.UserProfile{ID: "user-1", DeviceID: "dev-1"})
	svc := NewMonitorService(monitorConfig(false, 0), stream, repo, testLogger())

	require.NoError(t, svc.Start(context.Background()))
	stream.messages <- fallMessage("dev-1", time.Now())

	assert.Eventually(t, func() bool {
		return len(svc.PendingAlerts()) == 1
	}, time.Second, 10*time.Millisecond)

	alert := svc.PendingAlerts()[0]
	require.NoError(t, svc.Acknowledge(alert.ID))
	assert.Empty(t, svc.PendingAlerts())

	assert.ErrorIs(t, svc.Acknowledge(uuid.New()), domainerrors.ErrAlertNotFound)
}

func TestMonitorService_LatestLocation_NoneAvailable(t *testing.T) {
	svc := NewMonitorService(monitorConfig(false, 0), newFakeStream(), &memSessionRepo{}, testLogger())

	_, err := svc.LatestLocation()
	assert.ErrorIs(t, err, domainerrors.ErrNoLocationAvailable)
}

func TestMonitorService_StopDiscardsLateMessages(t *testing.T) {
	stream := newFakeStream()
	repo := loggedInRepo(&entity.UserProfile{ID: "user-1", DeviceID: "dev-1"})
	svc := NewMonitorService(monitorConfig(false, 0), stream, repo, testLogger())

	require.NoError(t, svc.Start(context.Background()))
	svc.Stop()
	assert.GreaterOrEqual(t, stream.disconnects, 1)

	// Anything still in flight when the subscription was torn down must
	// never surface as an alert.
	stream.messages <- fallMessage("dev-1", time.Now())
	close(stream.messages)

	assert.Never(t, func() bool {
		return len(svc.PendingAlerts()) > 0
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestMonitorService_ConnectionConfirmUpdatesLastUpdate(t *testing.T) {
	stream := newFakeStream()
	repo := loggedInRepo(&entity.UserProfile{ID: "user-1", DeviceID: "dev-1"})
	svc := NewMonitorService(monitorConfig(false, 0), stream, repo, testLogger())

	require.NoError(t, svc.Start(context.Background()))
	require.Nil(t, svc.Status().LastUpdate)

	stream.messages <- entity.ChannelMessage{
		Kind:      entity.MessageConnectionConfirm,
		Timestamp: time.Now(),
	}

	assert.Eventually(t, func() bool {
		status := svc.Status()

		return status.LastUpdate != nil && status.LastUpdateAge != ""
	}, time.Second, 10*time.Millisecond)
}
