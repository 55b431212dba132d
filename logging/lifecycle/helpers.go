package lifecycle

import (
	"context"

	"gridchase/logging"
)

const (
	// EventClientJoined is emitted when a client joins the session.
	EventClientJoined logging.EventType = "lifecycle.client_joined"
	// EventClientDisconnected is emitted when a client leaves the session.
	EventClientDisconnected logging.EventType = "lifecycle.client_disconnected"
	// EventSeatTransferred is emitted when the control seat moves to another client.
	EventSeatTransferred logging.EventType = "lifecycle.seat_transferred"
	// EventLevelCleared is emitted when the last pellet of a round is eaten.
	EventLevelCleared logging.EventType = "lifecycle.level_cleared"
	// EventGameOver is emitted when the last life is lost.
	EventGameOver logging.EventType = "lifecycle.game_over"
	// EventGameReset is emitted when an operator restarts the game.
	EventGameReset logging.EventType = "lifecycle.game_reset"
)

// ClientJoinedPayload captures seating metadata for a new client.
type ClientJoinedPayload struct {
	Seat       bool `json:"seat"`
	Spectators int  `json:"spectators"`
}

// ClientDisconnectedPayload captures the reason a client left.
type ClientDisconnectedPayload struct {
	Reason string `json:"reason"`
}

// SeatTransferredPayload names the client that inherited the seat.
type SeatTransferredPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// LevelClearedPayload captures round progress at the moment of the clear.
type LevelClearedPayload struct {
	Round uint64 `json:"round"`
	Score uint64 `json:"score"`
}

// GameOverPayload captures the final score of the run.
type GameOverPayload struct {
	Score  uint64 `json:"score"`
	Rounds uint64 `json:"rounds"`
}

// ClientJoined publishes a client join event.
func ClientJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ClientJoinedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventClientJoined,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

// ClientDisconnected publishes a client disconnect event.
func ClientDisconnected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ClientDisconnectedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventClientDisconnected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

// SeatTransferred publishes a control seat handover event.
func SeatTransferred(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SeatTransferredPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSeatTransferred,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

// LevelCleared publishes a round completion event.
func LevelCleared(ctx context.Context, pub logging.Publisher, tick uint64, payload LevelClearedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLevelCleared,
		Tick:     tick,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

// GameOver publishes an end-of-run event.
func GameOver(ctx context.Context, pub logging.Publisher, tick uint64, payload GameOverPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventGameOver,
		Tick:     tick,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

// GameReset publishes an operator-initiated restart event.
func GameReset(ctx context.Context, pub logging.Publisher, tick uint64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventGameReset,
		Tick:     tick,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
	})
}
