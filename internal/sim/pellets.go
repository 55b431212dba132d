package sim

import (
	"sort"

	"gridchase/internal/grid"
	"gridchase/internal/level"
)

// pelletField owns the live pellet set for the current level run.
type pelletField struct {
	spawns      []level.PelletSpawn
	live        map[grid.Point]bool // value reports a power pellet
	points      int
	powerPoints int
}

func newPelletField(lvl *level.Level) *pelletField {
	f := &pelletField{
		spawns:      lvl.Pellets,
		points:      lvl.Rules.PelletPoints,
		powerPoints: lvl.Rules.PowerPelletPoints,
	}
	f.Reset()
	return f
}

// Reset restores every authored pellet.
func (f *pelletField) Reset() {
	f.live = make(map[grid.Point]bool, len(f.spawns))
	for _, spawn := range f.spawns {
		f.live[spawn.Cell] = spawn.Power
	}
}

// Consume removes the pellet on cell, reporting what was eaten.
func (f *pelletField) Consume(cell grid.Point) (Pellet, bool) {
	power, ok := f.live[cell]
	if !ok {
		return Pellet{}, false
	}
	delete(f.live, cell)
	pellet := Pellet{Cell: cell, Points: f.points, Power: power}
	if power {
		pellet.Points = f.powerPoints
	}
	return pellet, true
}

// Remaining reports how many pellets are still on the maze.
func (f *pelletField) Remaining() int {
	return len(f.live)
}

// Snapshot lists the live pellets in row-major order.
func (f *pelletField) Snapshot() []PelletSnapshot {
	if len(f.live) == 0 {
		return nil
	}
	pellets := make([]PelletSnapshot, 0, len(f.live))
	for cell, power := range f.live {
		pellets = append(pellets, PelletSnapshot{Col: cell.Col, Row: cell.Row, Power: power})
	}
	sort.Slice(pellets, func(i, j int) bool {
		if pellets[i].Row != pellets[j].Row {
			return pellets[i].Row < pellets[j].Row
		}
		return pellets[i].Col < pellets[j].Col
	})
	return pellets
}
