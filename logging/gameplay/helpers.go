package gameplay

import (
	"context"

	"gridchase/logging"
)

const (
	// EventPelletEaten is emitted when the player clears a pellet cell.
	EventPelletEaten logging.EventType = "gameplay.pellet_eaten"
	// EventPowerPelletEaten is emitted when the player clears a power pellet.
	EventPowerPelletEaten logging.EventType = "gameplay.power_pellet_eaten"
	// EventAgentCaught is emitted when two agents collide on a cell.
	EventAgentCaught logging.EventType = "gameplay.agent_caught"
	// EventAgentReachedHome is emitted when a returning chaser arrives home.
	EventAgentReachedHome logging.EventType = "gameplay.agent_reached_home"
	// EventModeChanged is emitted when a chaser's behavior mode changes.
	EventModeChanged logging.EventType = "gameplay.mode_changed"
	// EventWaveChanged is emitted when the ambient mode schedule advances.
	EventWaveChanged logging.EventType = "gameplay.wave_changed"
	// EventAgentTeleported is emitted when a passage link relocates an agent.
	EventAgentTeleported logging.EventType = "gameplay.agent_teleported"
)

// PelletEatenPayload captures the cleared cell and its value.
type PelletEatenPayload struct {
	Col       int  `json:"col"`
	Row       int  `json:"row"`
	Points    int  `json:"points"`
	Power     bool `json:"power"`
	Remaining int  `json:"remaining"`
}

// PelletEaten publishes a pellet consumption event.
func PelletEaten(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PelletEatenPayload) {
	if pub == nil {
		return
	}
	eventType := EventPelletEaten
	severity := logging.SeverityDebug
	if payload.Power {
		eventType = EventPowerPelletEaten
		severity = logging.SeverityInfo
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}

// AgentCaughtPayload names the agent that forced the catch.
type AgentCaughtPayload struct {
	By  string `json:"by"`
	Col int    `json:"col"`
	Row int    `json:"row"`
}

// AgentCaught publishes a collision catch event.
func AgentCaught(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload AgentCaughtPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAgentCaught,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}

// AgentReachedHomePayload records where the return completed.
type AgentReachedHomePayload struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// AgentReachedHome publishes a completed return trip.
func AgentReachedHome(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload AgentReachedHomePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAgentReachedHome,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}

// ModeChangedPayload captures a single chaser mode transition.
type ModeChangedPayload struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// ModeChanged publishes a chaser mode transition.
func ModeChanged(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ModeChangedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventModeChanged,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}

// WaveChangedPayload captures the newly active ambient wave.
type WaveChangedPayload struct {
	Mode  string `json:"mode"`
	Index int    `json:"index"`
}

// WaveChanged publishes an ambient schedule advance.
func WaveChanged(ctx context.Context, pub logging.Publisher, tick uint64, payload WaveChangedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventWaveChanged,
		Tick:     tick,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}

// AgentTeleportedPayload records a passage relocation.
type AgentTeleportedPayload struct {
	Passage string `json:"passage"`
	FromCol int    `json:"fromCol"`
	FromRow int    `json:"fromRow"`
	ToCol   int    `json:"toCol"`
	ToRow   int    `json:"toRow"`
}

// AgentTeleported publishes a passage relocation event.
func AgentTeleported(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload AgentTeleportedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAgentTeleported,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}
