package grid

import (
	"fmt"
	"sort"
	"strings"
)

// ObstacleSource answers one-cell probes against the static level
// geometry. Implementations must stay stable for the lifetime of the
// level: the graph is built once from their answers and never refreshed.
type ObstacleSource interface {
	// Blocked reports whether travel from origin one cell toward dir is
	// obstructed by a wall or the edge of the level.
	Blocked(origin Point, dir Direction) bool
}

// Node is one traversable cell of the navigation graph. Its direction
// set is computed once at build time and never mutated afterwards.
type Node struct {
	pos        Point
	world      Vec2
	cellSize   float64
	directions []Direction
}

// Pos reports the node's discrete cell coordinate.
func (n *Node) Pos() Point {
	if n == nil {
		return Point{}
	}
	return n.pos
}

// World reports the node's world-space center.
func (n *Node) World() Vec2 {
	if n == nil {
		return Vec2{}
	}
	return n.world
}

// Directions lists the traversable exits in tie-break priority order.
// Callers must not mutate the returned slice.
func (n *Node) Directions() []Direction {
	if n == nil {
		return nil
	}
	return n.directions
}

// Allows reports whether dir is a traversable exit of this node.
func (n *Node) Allows(dir Direction) bool {
	if n == nil {
		return false
	}
	for _, d := range n.directions {
		if d == dir {
			return true
		}
	}
	return false
}

// Neighbor reports the cell one step from the node along dir.
func (n *Node) Neighbor(dir Direction) Point {
	dc, dr := dir.Delta()
	p := n.Pos()
	return Point{Col: p.Col + dc, Row: p.Row + dr}
}

// NeighborCenter reports the world-space center of the adjacent cell
// along dir. Steering policies use it to score candidate exits without
// holding a reference to the graph.
func (n *Node) NeighborCenter(dir Direction) Vec2 {
	if n == nil {
		return Vec2{}
	}
	return n.world.Add(dir.Vector().Scale(n.cellSize))
}

// Graph is the navigation graph for one level: a node for every walkable
// cell. Graphs are immutable after Build and safe for concurrent readers.
type Graph struct {
	cols     int
	rows     int
	cellSize float64
	nodes    map[Point]*Node
}

// Build probes the four cardinal exits of every walkable cell and
// assembles the navigation graph. It runs once per level load. A
// walkable cell with no traversable exit is an authoring defect; Build
// reports every such cell and fails rather than skipping them.
func Build(src ObstacleSource, walkable []Point, cols, rows int, cellSize float64) (*Graph, error) {
	if src == nil {
		return nil, fmt.Errorf("grid: nil obstacle source")
	}
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("grid: invalid dimensions %dx%d", cols, rows)
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("grid: invalid cell size %v", cellSize)
	}
	g := &Graph{
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		nodes:    make(map[Point]*Node, len(walkable)),
	}
	var sealed []Point
	for _, cell := range walkable {
		if !g.InBounds(cell) {
			return nil, fmt.Errorf("grid: walkable cell %v outside %dx%d grid", cell, cols, rows)
		}
		if _, exists := g.nodes[cell]; exists {
			continue
		}
		node := &Node{pos: cell, world: g.WorldPos(cell), cellSize: cellSize}
		for _, dir := range Cardinals {
			if !src.Blocked(cell, dir) {
				node.directions = append(node.directions, dir)
			}
		}
		if len(node.directions) == 0 {
			sealed = append(sealed, cell)
			continue
		}
		g.nodes[cell] = node
	}
	if len(sealed) > 0 {
		return nil, fmt.Errorf("grid: walkable cells with no traversable exit: %s", describeCells(sealed))
	}
	return g, nil
}

func describeCells(cells []Point) string {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// Cols reports the number of columns in the graph.
func (g *Graph) Cols() int {
	if g == nil {
		return 0
	}
	return g.cols
}

// Rows reports the number of rows in the graph.
func (g *Graph) Rows() int {
	if g == nil {
		return 0
	}
	return g.rows
}

// CellSize reports the size of each cell in world units.
func (g *Graph) CellSize() float64 {
	if g == nil {
		return 0
	}
	return g.cellSize
}

// NodeCount reports the number of traversable cells.
func (g *Graph) NodeCount() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

// InBounds reports whether cell lies inside the grid.
func (g *Graph) InBounds(cell Point) bool {
	return g != nil && cell.Col >= 0 && cell.Row >= 0 && cell.Col < g.cols && cell.Row < g.rows
}

// NodeAt reports the node occupying cell, if the cell is traversable.
func (g *Graph) NodeAt(cell Point) (*Node, bool) {
	if g == nil {
		return nil, false
	}
	node, ok := g.nodes[cell]
	return node, ok
}

// WorldPos reports the world-space center of cell.
func (g *Graph) WorldPos(cell Point) Vec2 {
	if g == nil {
		return Vec2{}
	}
	return Vec2{
		X: (float64(cell.Col) + 0.5) * g.cellSize,
		Y: (float64(cell.Row) + 0.5) * g.cellSize,
	}
}

// Locate reports the cell containing the world position. Positions
// outside the level clamp to the nearest edge cell.
func (g *Graph) Locate(pos Vec2) Point {
	if g == nil || g.cols == 0 || g.rows == 0 {
		return Point{}
	}
	maxX := float64(g.cols)*g.cellSize - 1
	if maxX < 0 {
		maxX = 0
	}
	maxY := float64(g.rows)*g.cellSize - 1
	if maxY < 0 {
		maxY = 0
	}
	return Point{
		Col: int(Clamp(pos.X, 0, maxX) / g.cellSize),
		Row: int(Clamp(pos.Y, 0, maxY) / g.cellSize),
	}
}
