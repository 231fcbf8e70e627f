// Package entity contains the core business objects of the project.
package entity

import "time"

// ChannelState is the observable state of the live event channel.
type ChannelState string

const (
	// ChannelIdle means Connect has never been called.
	ChannelIdle ChannelState = "idle"
	// ChannelConnecting means a transport dial (or automatic retry) is in flight.
	ChannelConnecting ChannelState = "connecting"
	// ChannelConnected means the transport is up but the device is not yet registered.
	ChannelConnected ChannelState = "connected"
	// ChannelRegistered means the backend acknowledged the device registration.
	ChannelRegistered ChannelState = "registered"
	// ChannelDisconnected is terminal until an explicit Connect: either a scoped
	// teardown or retry exhaustion.
	ChannelDisconnected ChannelState = "disconnected"
	// ChannelError means the last dial attempt failed; the channel keeps
	// retrying until the attempt budget is spent.
	ChannelError ChannelState = "error"
)

// ChannelMessageKind discriminates messages on the event stream.
type ChannelMessageKind string

const (
	MessageConnected         ChannelMessageKind = "connected"
	MessageRegistered        ChannelMessageKind = "registered"
	MessageConnectionConfirm ChannelMessageKind = "connection_confirmed"
	MessageFallDetected      ChannelMessageKind = "fall_detected"
	MessageDisconnected      ChannelMessageKind = "disconnected"
	MessageConnectionError   ChannelMessageKind = "connection_error"
)

// ChannelMessage is a single ordered message from the live event channel.
// Exactly one payload field is populated, selected by Kind.
type ChannelMessage struct {
	Kind      ChannelMessageKind
	Timestamp time.Time

	// Fall is set for MessageFallDetected.
	Fall *FallEvent
	// Reason is set for MessageDisconnected.
	Reason string
	// Err is set for MessageConnectionError.
	Err error
}
