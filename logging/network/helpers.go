package network

import (
	"context"

	"gridchase/logging"
)

const (
	// EventBroadcastFailed is emitted when a state frame cannot be written to a subscriber.
	EventBroadcastFailed logging.EventType = "network.broadcast_failed"
	// EventHeartbeatTimeout is emitted when a client is pruned for missing heartbeats.
	EventHeartbeatTimeout logging.EventType = "network.heartbeat_timeout"
)

// BroadcastFailedPayload captures the failed write.
type BroadcastFailedPayload struct {
	Bytes int    `json:"bytes"`
	Error string `json:"error"`
}

// BroadcastFailed publishes a subscriber write failure; the client is dropped afterwards.
func BroadcastFailed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload BroadcastFailedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventBroadcastFailed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}

// HeartbeatTimeoutPayload captures how long the client had been silent.
type HeartbeatTimeoutPayload struct {
	SilentMillis int64 `json:"silentMillis"`
}

// HeartbeatTimeout publishes a stale-client eviction.
func HeartbeatTimeout(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload HeartbeatTimeoutPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventHeartbeatTimeout,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}
