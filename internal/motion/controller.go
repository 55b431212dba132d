package motion

import "gridchase/internal/grid"

// arrivalEpsilon is the distance below which a position counts as
// sitting on a node center. It keeps the advance loop from spinning on
// float dust after a snap.
const arrivalEpsilon = 1e-9

// PortalResolver relocates positions when an advance coincides with a
// linked passage sensor. Resolve reports the destination center for
// cell and whether cell hosts a sensor.
type PortalResolver interface {
	Resolve(cell grid.Point) (grid.Vec2, bool)
}

// State is the complete motion state of one agent.
type State struct {
	Pos        grid.Vec2
	Dir        grid.Direction // zero while stationary
	Next       grid.Direction // pending request, zero when none
	SpeedBase  float64        // world units per second
	SpeedScale float64        // mode multiplier, 1 = normal
}

// Arrival records one coincidence with a node center during a tick.
type Arrival struct {
	Node       *grid.Node // node the agent stands on after any relocation
	Entered    grid.Point // cell whose center was reached this coincidence
	Teleported bool       // a passage link relocated the agent
}

// Controller advances one agent along the navigation graph. Positions
// move on the rails between node centers: direction changes happen only
// when the position coincides with a center, except reversals, which
// are legal anywhere. Controllers are owned by the simulation loop and
// are not safe for concurrent use.
type Controller struct {
	graph    *grid.Graph
	portals  PortalResolver
	state    State
	spawnPos grid.Vec2
	spawnDir grid.Direction
}

// NewController places an agent at the center of spawn, traveling dir.
// portals may be nil for agents on levels without passage links.
func NewController(g *grid.Graph, portals PortalResolver, spawn grid.Point, dir grid.Direction, speedBase float64) *Controller {
	pos := g.WorldPos(spawn)
	return &Controller{
		graph:    g,
		portals:  portals,
		spawnPos: pos,
		spawnDir: dir,
		state: State{
			Pos:        pos,
			Dir:        dir,
			SpeedBase:  speedBase,
			SpeedScale: 1,
		},
	}
}

// SetInitialState overrides the spawn pose. Later Resets restore it.
func (c *Controller) SetInitialState(pos grid.Vec2, dir grid.Direction) {
	if c == nil {
		return
	}
	c.spawnPos = pos
	c.spawnDir = dir
	c.state.Pos = pos
	c.state.Dir = dir
	c.state.Next = grid.DirNone
}

// RequestDirection stages dir as the agent's next travel direction,
// replacing any earlier pending request. A reversal takes effect on the
// next tick regardless of position; any other change waits for a node
// center that allows it and stays pending until then. DirNone clears
// the pending request.
func (c *Controller) RequestDirection(dir grid.Direction) {
	if c == nil {
		return
	}
	c.state.Next = dir
}

// Reset restores the spawn pose, clears the pending request and returns
// the speed scale to normal. Calling it repeatedly yields the same
// state each time.
func (c *Controller) Reset() {
	if c == nil {
		return
	}
	c.state.Pos = c.spawnPos
	c.state.Dir = c.spawnDir
	c.state.Next = grid.DirNone
	c.state.SpeedScale = 1
}

// Teleport moves the agent to pos without touching its direction,
// pending request or speed scale. Passage relocation during a tick
// flows through the PortalResolver; Teleport serves tests and tooling.
func (c *Controller) Teleport(pos grid.Vec2) {
	if c == nil {
		return
	}
	c.state.Pos = pos
}

// State returns a copy of the agent's motion state.
func (c *Controller) State() State {
	if c == nil {
		return State{}
	}
	return c.state
}

// Position reports the agent's continuous position.
func (c *Controller) Position() grid.Vec2 {
	return c.State().Pos
}

// Cell reports the discrete cell the agent currently occupies.
func (c *Controller) Cell() grid.Point {
	if c == nil || c.graph == nil {
		return grid.Point{}
	}
	return c.graph.Locate(c.state.Pos)
}

// Direction reports the agent's travel direction, DirNone when stopped.
func (c *Controller) Direction() grid.Direction {
	return c.State().Dir
}

// Pending reports the staged direction request, DirNone when none.
func (c *Controller) Pending() grid.Direction {
	return c.State().Next
}

// SpeedScale reports the active speed multiplier.
func (c *Controller) SpeedScale() float64 {
	if c == nil {
		return 0
	}
	return c.state.SpeedScale
}

// SetSpeedScale replaces the speed multiplier. Values at or below zero
// are ignored.
func (c *Controller) SetSpeedScale(scale float64) {
	if c == nil || scale <= 0 {
		return
	}
	c.state.SpeedScale = scale
}

// DecideFunc chooses a travel direction when an agent coincides with a
// node center. It runs after any passage relocation and before the turn
// is resolved; a non-None result replaces the staged request, so the
// residual travel budget continues in the chosen direction.
type DecideFunc func(Arrival) grid.Direction

// Tick advances the agent by dt seconds and reports every node-center
// coincidence in traversal order. The travel budget for the tick is
// speed base times speed scale times dt; it is spent across segments so
// crossing a center or a passage link mid-tick does not shorten the
// distance traveled. An agent whose course is blocked stops exactly on
// the node center and forfeits the rest of the budget.
func (c *Controller) Tick(dt float64) []Arrival {
	return c.TickDecide(dt, nil)
}

// TickDecide advances like Tick but consults decide at every coincidence
// so autonomous agents can steer per node instead of per tick.
func (c *Controller) TickDecide(dt float64, decide DecideFunc) []Arrival {
	if c == nil || dt <= 0 {
		return nil
	}
	c.applyReversal()
	if c.state.Dir == grid.DirNone {
		c.tryDepart()
		if c.state.Dir == grid.DirNone {
			return nil
		}
	}
	budget := c.state.SpeedBase * c.state.SpeedScale * dt
	var arrivals []Arrival
	for budget > arrivalEpsilon && c.state.Dir != grid.DirNone {
		center, dist := c.nextCenter()
		if dist > budget {
			v := c.state.Dir.Vector()
			c.state.Pos = c.state.Pos.Add(v.Scale(budget))
			break
		}
		budget -= dist
		c.state.Pos = center
		arrivals = append(arrivals, c.arrive(decide))
	}
	return arrivals
}

// applyReversal flips the travel direction when the pending request is
// its exact reverse. Reversals never wait for a node: between centers
// the opposite direction always lies on the lane. The one exception is
// an agent coinciding with a node center whose opposite lane does not
// exist, a pose only a spawn facing can produce; the request stays
// pending there so the agent never leaves the graph.
func (c *Controller) applyReversal() {
	if c.state.Dir == grid.DirNone || c.state.Next == grid.DirNone {
		return
	}
	if c.state.Next != c.state.Dir.Opposite() {
		return
	}
	cell := c.graph.Locate(c.state.Pos)
	if c.state.Pos.DistanceTo(c.graph.WorldPos(cell)) <= arrivalEpsilon {
		node, ok := c.graph.NodeAt(cell)
		if !ok || !node.Allows(c.state.Next) {
			return
		}
	}
	c.state.Dir = c.state.Next
	c.state.Next = grid.DirNone
}

// tryDepart starts a stopped agent when its pending request is
// traversable from the node it rests on.
func (c *Controller) tryDepart() {
	if c.state.Next == grid.DirNone {
		return
	}
	node, ok := c.graph.NodeAt(c.graph.Locate(c.state.Pos))
	if !ok || !node.Allows(c.state.Next) {
		return
	}
	c.state.Dir = c.state.Next
	c.state.Next = grid.DirNone
}

// nextCenter locates the first node center strictly ahead of the agent
// along its travel direction. A center the position already sits on is
// skipped; the previous arrival handled it.
func (c *Controller) nextCenter() (grid.Vec2, float64) {
	cell := c.graph.Locate(c.state.Pos)
	center := c.graph.WorldPos(cell)
	if dist := axisDistance(c.state.Pos, center, c.state.Dir); dist > arrivalEpsilon {
		return center, dist
	}
	dc, dr := c.state.Dir.Delta()
	next := grid.Point{Col: cell.Col + dc, Row: cell.Row + dr}
	center = c.graph.WorldPos(next)
	return center, axisDistance(c.state.Pos, center, c.state.Dir)
}

// arrive resolves one node-center coincidence: passage relocation first,
// then the steering callback, then the turn decision at the node the
// agent ends up on.
func (c *Controller) arrive(decide DecideFunc) Arrival {
	entered := c.graph.Locate(c.state.Pos)
	arrival := Arrival{Entered: entered}
	if c.portals != nil {
		if dest, ok := c.portals.Resolve(entered); ok {
			c.state.Pos = dest
			arrival.Teleported = true
		}
	}
	node, ok := c.graph.NodeAt(c.graph.Locate(c.state.Pos))
	if !ok {
		// Unreachable on a validated level; stop rather than walk
		// through geometry.
		c.state.Dir = grid.DirNone
		return arrival
	}
	arrival.Node = node
	if decide != nil {
		if dir := decide(arrival); dir != grid.DirNone {
			c.state.Next = dir
		}
	}
	if c.state.Next != grid.DirNone && node.Allows(c.state.Next) {
		c.state.Dir = c.state.Next
		c.state.Next = grid.DirNone
	} else if !node.Allows(c.state.Dir) {
		c.state.Dir = grid.DirNone
	}
	return arrival
}

// axisDistance measures the signed distance from one position to
// another along dir. Negative values mean the destination lies behind.
func axisDistance(from, to grid.Vec2, dir grid.Direction) float64 {
	switch dir {
	case grid.DirUp:
		return from.Y - to.Y
	case grid.DirDown:
		return to.Y - from.Y
	case grid.DirLeft:
		return from.X - to.X
	case grid.DirRight:
		return to.X - from.X
	default:
		return 0
	}
}
