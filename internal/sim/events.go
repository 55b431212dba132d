package sim

import "gridchase/internal/grid"

// Pellet is the value object reported when the player clears a cell.
type Pellet struct {
	Cell   grid.Point `json:"cell"`
	Points int        `json:"points"`
	Power  bool       `json:"power"`
}

// EventSink receives gameplay callbacks from the world step. Callbacks
// run synchronously on the simulation goroutine and must not call back
// into the world; the session shell reacts after the step completes.
type EventSink interface {
	OnPelletEaten(tick uint64, pellet Pellet)
	OnPowerPelletEaten(tick uint64, pellet Pellet)
	OnAgentCaught(tick uint64, agentID, byID string)
	OnAgentReachedHome(tick uint64, agentID string)
}

// NopEvents discards every callback.
type NopEvents struct{}

func (NopEvents) OnPelletEaten(uint64, Pellet)         {}
func (NopEvents) OnPowerPelletEaten(uint64, Pellet)    {}
func (NopEvents) OnAgentCaught(uint64, string, string) {}
func (NopEvents) OnAgentReachedHome(uint64, string)    {}
