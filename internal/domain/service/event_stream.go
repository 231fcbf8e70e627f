package service

import (
	"context"

	"vigil/internal/domain/entity"
)

// EventStream is the live push channel to the backend. It maintains a single
// logical subscription for exactly one device identifier at a time and
// delivers typed messages on one ordered channel; no client-side reordering
// or deduplication.
//
// Connect opens the transport and, once connected, registers the device.
// Transient disconnects are retried automatically per the configured policy;
// when the attempt budget is spent the stream goes terminally disconnected
// and stays so until the next explicit Connect.
type EventStream interface {
	// Connect starts the subscription for deviceID. Calling Connect on an
	// already-running stream tears the old subscription down first.
	Connect(ctx context.Context, deviceID string) error

	// Messages returns the ordered message channel. The channel is closed
	// when the stream reaches a terminal disconnected state.
	Messages() <-chan entity.ChannelMessage

	// State reports the current channel state.
	State() entity.ChannelState

	// Disconnect tears the subscription down. Idempotent: the underlying
	// transport is closed exactly once.
	Disconnect()
}
