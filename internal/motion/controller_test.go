package motion

import (
	"testing"

	"gridchase/internal/grid"
)

// plusMaze is a cross-shaped layout: a vertical corridor meeting a
// horizontal one at the junction (3,3).
var plusMaze = []string{
	"#######",
	"###.###",
	"###.###",
	"#.....#",
	"###.###",
	"###.###",
	"#######",
}

var corridorMaze = []string{
	"#####",
	"#...#",
	"#####",
}

type mazeSource struct {
	rows []string
}

func (m mazeSource) Blocked(origin grid.Point, dir grid.Direction) bool {
	dc, dr := dir.Delta()
	col := origin.Col + dc
	row := origin.Row + dr
	if row < 0 || row >= len(m.rows) {
		return true
	}
	if col < 0 || col >= len(m.rows[row]) {
		return true
	}
	return m.rows[row][col] == '#'
}

func buildGraph(t *testing.T, rows []string) *grid.Graph {
	t.Helper()
	src := mazeSource{rows: rows}
	var walkable []grid.Point
	for row, line := range rows {
		for col := 0; col < len(line); col++ {
			if line[col] != '#' {
				walkable = append(walkable, grid.Point{Col: col, Row: row})
			}
		}
	}
	g, err := grid.Build(src, walkable, len(rows[0]), len(rows), 16)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

type portalMap map[grid.Point]grid.Vec2

func (p portalMap) Resolve(cell grid.Point) (grid.Vec2, bool) {
	dest, ok := p[cell]
	return dest, ok
}

func TestTickAdvancesExactDistance(t *testing.T) {
	g := buildGraph(t, corridorMaze)
	c := NewController(g, nil, grid.Point{Col: 1, Row: 1}, grid.DirRight, 32)

	c.Tick(0.25)
	if got := c.Position(); got != (grid.Vec2{X: 32, Y: 24}) {
		t.Fatalf("position after quarter second = %+v, want (32,24)", got)
	}

	c.SetSpeedScale(0.5)
	c.Tick(0.25)
	if got := c.Position(); got != (grid.Vec2{X: 36, Y: 24}) {
		t.Fatalf("position with halved scale = %+v, want (36,24)", got)
	}
}

func TestTurnWaitsForAllowingNode(t *testing.T) {
	g := buildGraph(t, plusMaze)
	c := NewController(g, nil, grid.Point{Col: 3, Row: 1}, grid.DirDown, 16)
	c.RequestDirection(grid.DirRight)

	arrivals := c.Tick(1.0)
	if len(arrivals) != 1 || arrivals[0].Node.Pos() != (grid.Point{Col: 3, Row: 2}) {
		t.Fatalf("expected single arrival at (3,2), got %+v", arrivals)
	}
	if c.Direction() != grid.DirDown {
		t.Fatalf("turn applied at a node without that exit")
	}
	if c.Pending() != grid.DirRight {
		t.Fatalf("unavailable request should stay pending, got %v", c.Pending())
	}

	arrivals = c.Tick(1.5)
	if len(arrivals) != 1 || arrivals[0].Node.Pos() != (grid.Point{Col: 3, Row: 3}) {
		t.Fatalf("expected single arrival at the junction, got %+v", arrivals)
	}
	if c.Direction() != grid.DirRight {
		t.Fatalf("pending turn should apply at the junction, direction = %v", c.Direction())
	}
	if c.Pending() != grid.DirNone {
		t.Fatalf("applied request should be consumed, got %v", c.Pending())
	}
	// 24 units of travel: 16 down to the junction, 8 right past it.
	if got := c.Position(); got != (grid.Vec2{X: 64, Y: 56}) {
		t.Fatalf("residual travel lost in the turn: %+v, want (64,56)", got)
	}
}

func TestReversalAppliesBetweenNodes(t *testing.T) {
	g := buildGraph(t, plusMaze)
	c := NewController(g, nil, grid.Point{Col: 3, Row: 2}, grid.DirDown, 16)

	c.Tick(0.5)
	if got := c.Position(); got != (grid.Vec2{X: 56, Y: 48}) {
		t.Fatalf("setup position = %+v, want (56,48)", got)
	}

	c.RequestDirection(grid.DirUp)
	arrivals := c.Tick(0.5)
	if c.Direction() != grid.DirUp {
		t.Fatalf("reversal should apply mid-edge, direction = %v", c.Direction())
	}
	if got := c.Position(); got != (grid.Vec2{X: 56, Y: 40}) {
		t.Fatalf("position after reversal tick = %+v, want (56,40)", got)
	}
	if len(arrivals) != 1 || arrivals[0].Node.Pos() != (grid.Point{Col: 3, Row: 2}) {
		t.Fatalf("reversing back onto the node should arrive there, got %+v", arrivals)
	}
}

func TestBlockedCourseStopsOnCenter(t *testing.T) {
	g := buildGraph(t, plusMaze)
	c := NewController(g, nil, grid.Point{Col: 3, Row: 4}, grid.DirDown, 16)

	arrivals := c.Tick(1.0)
	if len(arrivals) != 1 {
		t.Fatalf("expected arrival at the dead end, got %+v", arrivals)
	}
	if c.Direction() != grid.DirNone {
		t.Fatalf("agent should stop at the dead end, direction = %v", c.Direction())
	}
	if got := c.Position(); got != (grid.Vec2{X: 56, Y: 88}) {
		t.Fatalf("agent should rest exactly on the center, got %+v", got)
	}

	if arrivals := c.Tick(1.0); arrivals != nil {
		t.Fatalf("stationary agent should not arrive anywhere, got %+v", arrivals)
	}
	if got := c.Position(); got != (grid.Vec2{X: 56, Y: 88}) {
		t.Fatalf("stationary agent moved to %+v", got)
	}

	c.RequestDirection(grid.DirLeft)
	c.Tick(1.0)
	if c.Direction() != grid.DirNone || c.Pending() != grid.DirLeft {
		t.Fatalf("untraversable request should defer, dir=%v pending=%v", c.Direction(), c.Pending())
	}

	c.RequestDirection(grid.DirUp)
	arrivals = c.Tick(1.0)
	if c.Direction() != grid.DirUp {
		t.Fatalf("agent should depart along a traversable request, direction = %v", c.Direction())
	}
	if len(arrivals) != 1 || arrivals[0].Node.Pos() != (grid.Point{Col: 3, Row: 4}) {
		t.Fatalf("departure should arrive at the next center, got %+v", arrivals)
	}
}

func TestResetRestoresSpawnPose(t *testing.T) {
	g := buildGraph(t, plusMaze)
	spawn := grid.Point{Col: 3, Row: 3}
	c := NewController(g, nil, spawn, grid.DirLeft, 16)

	c.SetSpeedScale(0.5)
	c.RequestDirection(grid.DirUp)
	c.Tick(1.0)

	for i := 0; i < 2; i++ {
		c.Reset()
		state := c.State()
		if state.Pos != g.WorldPos(spawn) {
			t.Fatalf("reset %d: position = %+v, want spawn center", i, state.Pos)
		}
		if state.Dir != grid.DirLeft || state.Next != grid.DirNone {
			t.Fatalf("reset %d: dir=%v next=%v", i, state.Dir, state.Next)
		}
		if state.SpeedScale != 1 {
			t.Fatalf("reset %d: speed scale = %v, want 1", i, state.SpeedScale)
		}
	}
}

func TestPortalRelocationPreservesMotion(t *testing.T) {
	g := buildGraph(t, corridorMaze)
	portals := portalMap{
		{Col: 1, Row: 1}: g.WorldPos(grid.Point{Col: 3, Row: 1}),
		{Col: 3, Row: 1}: g.WorldPos(grid.Point{Col: 1, Row: 1}),
	}
	c := NewController(g, portals, grid.Point{Col: 2, Row: 1}, grid.DirLeft, 16)
	c.RequestDirection(grid.DirUp) // never traversable in the corridor

	arrivals := c.Tick(1.5)
	if len(arrivals) != 1 {
		t.Fatalf("expected one arrival, got %+v", arrivals)
	}
	a := arrivals[0]
	if !a.Teleported || a.Entered != (grid.Point{Col: 1, Row: 1}) || a.Node.Pos() != (grid.Point{Col: 3, Row: 1}) {
		t.Fatalf("unexpected portal arrival %+v", a)
	}
	if c.Direction() != grid.DirLeft {
		t.Fatalf("relocation should preserve direction, got %v", c.Direction())
	}
	if c.Pending() != grid.DirUp {
		t.Fatalf("relocation should preserve the pending request, got %v", c.Pending())
	}
	// 24 units of travel: 16 into the west sensor, 8 onward from the east one.
	if got := c.Position(); got != (grid.Vec2{X: 48, Y: 24}) {
		t.Fatalf("residual travel should continue from the pair, got %+v", got)
	}
}

func TestTickDecideSteersAtNode(t *testing.T) {
	g := buildGraph(t, plusMaze)
	c := NewController(g, nil, grid.Point{Col: 3, Row: 1}, grid.DirDown, 16)
	c.Tick(1.5) // halfway between (3,2) and the junction

	junction := grid.Point{Col: 3, Row: 3}
	arrivals := c.TickDecide(1.0, func(a Arrival) grid.Direction {
		if a.Node.Pos() == junction {
			return grid.DirRight
		}
		return grid.DirNone
	})
	if len(arrivals) != 1 || arrivals[0].Node.Pos() != junction {
		t.Fatalf("expected a single arrival at the junction, got %+v", arrivals)
	}
	if c.Direction() != grid.DirRight {
		t.Fatalf("decision should apply at the node, direction = %v", c.Direction())
	}
	// 16 units of travel: 8 down to the junction, 8 right past it.
	if got := c.Position(); got != (grid.Vec2{X: 64, Y: 56}) {
		t.Fatalf("residual travel should continue in the chosen direction, got %+v", got)
	}
}

func TestTickDecideOverridesPendingRequest(t *testing.T) {
	g := buildGraph(t, plusMaze)
	c := NewController(g, nil, grid.Point{Col: 3, Row: 2}, grid.DirDown, 16)
	c.RequestDirection(grid.DirLeft)

	c.TickDecide(1.0, func(a Arrival) grid.Direction {
		return grid.DirRight
	})
	if c.Direction() != grid.DirRight {
		t.Fatalf("decision should replace the staged request, direction = %v", c.Direction())
	}
	if c.Pending() != grid.DirNone {
		t.Fatalf("applied decision should be consumed, got %v", c.Pending())
	}
}

func TestReversalTowardWallWaitsUntilLegal(t *testing.T) {
	g := buildGraph(t, corridorMaze)
	c := NewController(g, nil, grid.Point{Col: 1, Row: 1}, grid.DirRight, 16)

	// On the spawn center the opposite lane is a wall: the request must
	// stay pending instead of walking the agent off the graph.
	c.RequestDirection(grid.DirLeft)
	c.Tick(0.25)
	if c.Direction() != grid.DirRight || c.Pending() != grid.DirLeft {
		t.Fatalf("reversal into a wall applied on the center, dir=%v pending=%v", c.Direction(), c.Pending())
	}
	if got := c.Position(); got != (grid.Vec2{X: 28, Y: 24}) {
		t.Fatalf("position = %+v, want (28,24)", got)
	}

	// Off the center the lane exists, so the reversal applies and the
	// agent rides back to the spawn center, where the missing exit stops it.
	arrivals := c.Tick(0.25)
	if len(arrivals) != 1 || arrivals[0].Entered != (grid.Point{Col: 1, Row: 1}) {
		t.Fatalf("expected arrival back at the spawn cell, got %+v", arrivals)
	}
	if c.Direction() != grid.DirNone {
		t.Fatalf("agent should stop at the dead end, direction = %v", c.Direction())
	}
	if got := c.Position(); got != (grid.Vec2{X: 24, Y: 24}) {
		t.Fatalf("agent should rest on the spawn center, got %+v", got)
	}
}

func TestTeleportMovesPositionOnly(t *testing.T) {
	g := buildGraph(t, corridorMaze)
	c := NewController(g, nil, grid.Point{Col: 1, Row: 1}, grid.DirRight, 16)
	c.RequestDirection(grid.DirUp)
	c.SetSpeedScale(0.5)

	dest := g.WorldPos(grid.Point{Col: 3, Row: 1})
	c.Teleport(dest)
	state := c.State()
	if state.Pos != dest {
		t.Fatalf("position = %+v, want %+v", state.Pos, dest)
	}
	if state.Dir != grid.DirRight || state.Next != grid.DirUp || state.SpeedScale != 0.5 {
		t.Fatalf("teleport should leave motion state alone: %+v", state)
	}
}

func TestTickIgnoresNonPositiveDelta(t *testing.T) {
	g := buildGraph(t, corridorMaze)
	c := NewController(g, nil, grid.Point{Col: 2, Row: 1}, grid.DirRight, 16)
	start := c.Position()
	if arrivals := c.Tick(0); arrivals != nil {
		t.Fatalf("zero delta should not produce arrivals: %+v", arrivals)
	}
	if arrivals := c.Tick(-1); arrivals != nil {
		t.Fatalf("negative delta should not produce arrivals: %+v", arrivals)
	}
	if c.Position() != start {
		t.Fatalf("position moved without time passing")
	}
}
