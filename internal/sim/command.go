package sim

import "time"

// CommandType enumerates the supported simulation commands.
type CommandType string

const (
	CommandSteer CommandType = "Steer"
	CommandReset CommandType = "Reset"
)

// SteerCommand carries the requested travel direction for the player.
type SteerCommand struct {
	Direction string `json:"direction"`
}

// Command represents an intent captured for processing on the next tick.
type Command struct {
	OriginTick uint64        `json:"originTick"`
	ActorID    string        `json:"actorId"`
	Type       CommandType   `json:"type"`
	IssuedAt   time.Time     `json:"issuedAt"`
	Steer      *SteerCommand `json:"steer,omitempty"`
}
