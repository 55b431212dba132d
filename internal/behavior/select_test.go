package behavior

import (
	"math/rand"
	"reflect"
	"testing"

	"gridchase/internal/grid"
)

// ringMaze is an open ring around a single wall block. The corner
// (1,3) exposes exactly the up and right exits.
var ringMaze = []string{
	"#####",
	"#...#",
	"#.#.#",
	"#...#",
	"#####",
}

// plusMaze meets at a four-way junction at (3,3).
var plusMaze = []string{
	"#######",
	"###.###",
	"###.###",
	"#.....#",
	"###.###",
	"###.###",
	"#######",
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

func nodeAt(t *testing.T, g *grid.Graph, cell grid.Point) *grid.Node {
	t.Helper()
	node, ok := g.NodeAt(cell)
	if !ok {
		t.Fatalf("expected node at %v", cell)
	}
	return node
}

func TestCandidatesExcludeReverseUnlessDeadEnd(t *testing.T) {
	g := buildGraph(t, plusMaze)

	junction := nodeAt(t, g, grid.Point{Col: 3, Row: 3})
	got := candidates(junction, grid.DirDown)
	want := []grid.Direction{grid.DirLeft, grid.DirDown, grid.DirRight}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("junction candidates = %v, want %v", got, want)
	}

	deadEnd := nodeAt(t, g, grid.Point{Col: 3, Row: 5})
	got = candidates(deadEnd, grid.DirDown)
	if !reflect.DeepEqual(got, []grid.Direction{grid.DirUp}) {
		t.Fatalf("dead end should allow the reverse exit, got %v", got)
	}
}

func TestPursuitPrefersClosestExit(t *testing.T) {
	g := buildGraph(t, ringMaze)
	corner := nodeAt(t, g, grid.Point{Col: 1, Row: 3})

	ctx := Context{Current: grid.DirRight, Target: g.WorldPos(grid.Point{Col: 1, Row: 1})}
	if got := SelectDirection(ModePursuit, corner, ctx); got != grid.DirUp {
		t.Fatalf("pursuit toward a target above should pick up, got %v", got)
	}

	// Equidistant exits fall back to the fixed priority order.
	ctx.Target = grid.Vec2{X: 32, Y: 48}
	if got := SelectDirection(ModePursuit, corner, ctx); got != grid.DirUp {
		t.Fatalf("tie should resolve to the higher-priority exit, got %v", got)
	}
}

func TestEvasionPrefersFarthestExit(t *testing.T) {
	g := buildGraph(t, ringMaze)
	corner := nodeAt(t, g, grid.Point{Col: 1, Row: 3})

	ctx := Context{Current: grid.DirRight, Target: g.WorldPos(grid.Point{Col: 1, Row: 1})}
	if got := SelectDirection(ModeEvasion, corner, ctx); got != grid.DirRight {
		t.Fatalf("evasion from a target above should pick right, got %v", got)
	}

	ctx.Target = grid.Vec2{X: 32, Y: 48}
	if got := SelectDirection(ModeEvasion, corner, ctx); got != grid.DirUp {
		t.Fatalf("evasion tie should resolve to the higher-priority exit, got %v", got)
	}
}

func TestReturningSteersTowardHome(t *testing.T) {
	g := buildGraph(t, ringMaze)
	corner := nodeAt(t, g, grid.Point{Col: 1, Row: 3})

	ctx := Context{
		Current: grid.DirRight,
		Target:  g.WorldPos(grid.Point{Col: 3, Row: 3}),
		Home:    g.WorldPos(grid.Point{Col: 1, Row: 1}),
	}
	if got := SelectDirection(ModeReturning, corner, ctx); got != grid.DirUp {
		t.Fatalf("returning should steer home, not after the target, got %v", got)
	}
}

func TestPatrolDrawsFromInjectedRNG(t *testing.T) {
	g := buildGraph(t, plusMaze)
	junction := nodeAt(t, g, grid.Point{Col: 3, Row: 3})

	first := Context{Current: grid.DirDown, RNG: rand.New(rand.NewSource(7))}
	second := Context{Current: grid.DirDown, RNG: rand.New(rand.NewSource(7))}
	for i := 0; i < 64; i++ {
		a := SelectDirection(ModePatrol, junction, first)
		b := SelectDirection(ModePatrol, junction, second)
		if a != b {
			t.Fatalf("draw %d diverged with equal seeds: %v vs %v", i, a, b)
		}
		if a == grid.DirUp {
			t.Fatalf("draw %d picked the reverse at a junction", i)
		}
		if a == grid.DirNone {
			t.Fatalf("draw %d picked no direction", i)
		}
	}
}

func TestPatrolReversesOnlyAtDeadEnds(t *testing.T) {
	g := buildGraph(t, plusMaze)
	deadEnd := nodeAt(t, g, grid.Point{Col: 1, Row: 3})

	ctx := Context{Current: grid.DirLeft, RNG: rand.New(rand.NewSource(1))}
	if got := SelectDirection(ModePatrol, deadEnd, ctx); got != grid.DirRight {
		t.Fatalf("dead end should force the reverse exit, got %v", got)
	}
}
