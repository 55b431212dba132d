package level

import "gridchase/internal/grid"

// TileMap is the static obstacle geometry of one level. It answers the
// one-cell probes the graph builder and spawn validation rely on and
// never changes after compilation.
type TileMap struct {
	cols  int
	rows  int
	walls []bool
}

func newTileMap(cols, rows int) *TileMap {
	return &TileMap{
		cols:  cols,
		rows:  rows,
		walls: make([]bool, cols*rows),
	}
}

func (t *TileMap) setWall(cell grid.Point) {
	t.walls[cell.Row*t.cols+cell.Col] = true
}

// Cols reports the number of columns.
func (t *TileMap) Cols() int {
	if t == nil {
		return 0
	}
	return t.cols
}

// Rows reports the number of rows.
func (t *TileMap) Rows() int {
	if t == nil {
		return 0
	}
	return t.rows
}

// InBounds reports whether cell lies inside the map.
func (t *TileMap) InBounds(cell grid.Point) bool {
	return t != nil && cell.Col >= 0 && cell.Row >= 0 && cell.Col < t.cols && cell.Row < t.rows
}

// Wall reports whether cell is a wall. Out-of-bounds cells count as
// walls.
func (t *TileMap) Wall(cell grid.Point) bool {
	if !t.InBounds(cell) {
		return true
	}
	return t.walls[cell.Row*t.cols+cell.Col]
}

// Blocked implements grid.ObstacleSource with a one-cell probe: travel
// from origin toward dir is obstructed when the destination is a wall
// or off the map.
func (t *TileMap) Blocked(origin grid.Point, dir grid.Direction) bool {
	dc, dr := dir.Delta()
	return t.Wall(grid.Point{Col: origin.Col + dc, Row: origin.Row + dr})
}

// Walkable lists the floor cells in row-major order.
func (t *TileMap) Walkable() []grid.Point {
	if t == nil {
		return nil
	}
	cells := make([]grid.Point, 0, t.cols*t.rows)
	for row := 0; row < t.rows; row++ {
		for col := 0; col < t.cols; col++ {
			cell := grid.Point{Col: col, Row: row}
			if !t.Wall(cell) {
				cells = append(cells, cell)
			}
		}
	}
	return cells
}

// WallCells lists the wall cells in row-major order. The join payload
// sends them to clients for drawing.
func (t *TileMap) WallCells() []grid.Point {
	if t == nil {
		return nil
	}
	cells := make([]grid.Point, 0, t.cols*t.rows)
	for row := 0; row < t.rows; row++ {
		for col := 0; col < t.cols; col++ {
			cell := grid.Point{Col: col, Row: row}
			if t.Wall(cell) {
				cells = append(cells, cell)
			}
		}
	}
	return cells
}
