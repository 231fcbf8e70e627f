package usecase

import (
	"context"
	"time"

	"vigil/internal/domain/entity"

	"github.com/google/uuid"
)

// MonitorStatus is a snapshot of the live monitoring state for the console.
type MonitorStatus struct {
	ChannelState  entity.ChannelState `json:"channelState"`
	DeviceID      string              `json:"deviceId,omitempty"`
	LastUpdate    *time.Time          `json:"lastUpdate,omitempty"`
	LastUpdateAge string              `json:"lastUpdateAge,omitempty"`
	PendingAlerts int                 `json:"pendingAlerts"`
}

// MonitorUsecase owns the live event subscription and the alerts it raises.
// It is the single consumer of the event stream; everything the console shows
// about live monitoring comes from its snapshots.
type MonitorUsecase interface {
	// Start connects the event channel for the session's device and begins
	// consuming messages. Idempotent for the same device.
	Start(ctx context.Context) error

	// Stop deterministically tears the subscription down. Messages arriving
	// after Stop are discarded, never applied.
	Stop()

	// Status reports the channel state, last-update timestamp and pending
	// alert count.
	Status() *MonitorStatus

	// PendingAlerts lists unacknowledged alerts, oldest first.
	PendingAlerts() []*entity.Alert

	// Acknowledge dismisses a pending alert.
	Acknowledge(alertID uuid.UUID) error

	// LatestLocation returns the most recent fall event's coordinates, or a
	// domain error when no located event has been received.
	LatestLocation() (*entity.FallEvent, error)
}
