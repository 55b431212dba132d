package sim

import (
	"math/rand"

	"gridchase/internal/behavior"
	"gridchase/internal/grid"
	"gridchase/internal/motion"
)

// PlayerID is the actor identifier of the seat-driven runner.
const PlayerID = "player"

// playerAgent is the player-controlled runner.
type playerAgent struct {
	id     string
	motion *motion.Controller
	alive  bool
}

// chaserAgent couples one autonomous agent's motion with its mode state.
type chaserAgent struct {
	id        string
	motion    *motion.Controller
	mode      *behavior.Controller
	rng       *rand.Rand
	home      grid.Point
	homeWorld grid.Vec2

	// evasionDeadline is the tick at which the evasion timer expires.
	// Zero means no timer is armed.
	evasionDeadline uint64
}

// requestReversal stages the opposite of the current travel direction.
// Reversals are legal anywhere, so the request applies on the next tick.
func (c *chaserAgent) requestReversal() {
	dir := c.motion.Direction()
	if dir == grid.DirNone {
		return
	}
	c.motion.RequestDirection(dir.Opposite())
}

// reset restores the spawn pose and rebuilds the mode state on ambient.
func (c *chaserAgent) reset(ambient behavior.Mode) {
	c.motion.Reset()
	c.mode = behavior.NewController(ambient)
	c.evasionDeadline = 0
}
