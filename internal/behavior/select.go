package behavior

import (
	"math/rand"

	"gridchase/internal/grid"
)

// Context carries the per-decision inputs a steering policy may read.
// Every field is a snapshot of state already committed this tick; the
// policies themselves mutate nothing.
type Context struct {
	Current grid.Direction // travel direction entering the node
	Target  grid.Vec2      // pursuit and evasion reference point
	Home    grid.Vec2      // returning destination
	RNG     *rand.Rand     // patrol randomness, seeded per subsystem
}

// SelectFunc picks the next travel direction at a node.
type SelectFunc func(node *grid.Node, ctx Context) grid.Direction

// selectors maps each mode to its steering policy.
var selectors = map[Mode]SelectFunc{
	ModePatrol:    selectPatrol,
	ModePursuit:   selectPursuit,
	ModeEvasion:   selectEvasion,
	ModeReturning: selectReturning,
}

// SelectDirection applies mode's steering policy at node. Unknown modes
// hold the current course.
func SelectDirection(mode Mode, node *grid.Node, ctx Context) grid.Direction {
	sel, ok := selectors[mode]
	if !ok {
		return ctx.Current
	}
	return sel(node, ctx)
}

// candidates filters a node's exits down to the legal choices: the
// reverse of the current direction is excluded unless it is the only
// exit. The node's priority ordering is preserved.
func candidates(node *grid.Node, current grid.Direction) []grid.Direction {
	dirs := node.Directions()
	reverse := current.Opposite()
	if reverse == grid.DirNone {
		return dirs
	}
	filtered := make([]grid.Direction, 0, len(dirs))
	for _, d := range dirs {
		if d == reverse {
			continue
		}
		filtered = append(filtered, d)
	}
	if len(filtered) == 0 {
		// Dead end: reversing is the only way out.
		return dirs
	}
	return filtered
}

func selectPatrol(node *grid.Node, ctx Context) grid.Direction {
	options := candidates(node, ctx.Current)
	switch len(options) {
	case 0:
		return grid.DirNone
	case 1:
		return options[0]
	}
	if ctx.RNG == nil {
		return options[0]
	}
	return options[ctx.RNG.Intn(len(options))]
}

func selectPursuit(node *grid.Node, ctx Context) grid.Direction {
	return steerByDistance(node, ctx.Current, ctx.Target, false)
}

func selectEvasion(node *grid.Node, ctx Context) grid.Direction {
	return steerByDistance(node, ctx.Current, ctx.Target, true)
}

func selectReturning(node *grid.Node, ctx Context) grid.Direction {
	return steerByDistance(node, ctx.Current, ctx.Home, false)
}

// steerByDistance scores each candidate exit by the straight-line
// distance from the neighboring cell center to goal and keeps the best:
// nearest when closing in, farthest when fleeing. Ties keep the earlier
// candidate, so the node's priority order (up, left, down, right)
// settles equidistant exits deterministically.
func steerByDistance(node *grid.Node, current grid.Direction, goal grid.Vec2, flee bool) grid.Direction {
	options := candidates(node, current)
	if len(options) == 0 {
		return grid.DirNone
	}
	best := options[0]
	bestDist := goal.DistanceTo(node.NeighborCenter(best))
	for _, d := range options[1:] {
		dist := goal.DistanceTo(node.NeighborCenter(d))
		if flee {
			if dist > bestDist {
				best = d
				bestDist = dist
			}
		} else if dist < bestDist {
			best = d
			bestDist = dist
		}
	}
	return best
}
