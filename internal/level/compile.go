package level

import (
	"errors"
	"fmt"

	"gridchase/internal/behavior"
	"gridchase/internal/grid"
)

// PelletSpawn places one pellet on the maze.
type PelletSpawn struct {
	Cell  grid.Point
	Power bool
}

// PassageLink is one compiled teleport sensor: an agent whose advance
// coincides with the center of Cell relocates to the center of Dest.
type PassageLink struct {
	Name string
	Cell grid.Point
	Dest grid.Point
}

// AgentSpawn is the compiled pose of one agent.
type AgentSpawn struct {
	Name      string
	Cell      grid.Point
	Direction grid.Direction
	Home      grid.Point
	Speed     float64
}

// Wave is one compiled entry of the ambient mode schedule.
type Wave struct {
	Mode  behavior.Mode
	Ticks uint64
}

// Rules are the compiled gameplay tunables.
type Rules struct {
	PelletPoints      int
	PowerPelletPoints int
	EvasionTicks      uint64
	EvasionSpeedScale float64
	ReturnSpeedScale  float64
	Waves             []Wave
}

// Level is the compiled, immutable runtime form of a Definition. The
// simulation reads it and never writes back.
type Level struct {
	Name     string
	CellSize float64
	Tiles    *TileMap
	Graph    *grid.Graph
	Pellets  []PelletSpawn
	Passages []PassageLink
	Player   AgentSpawn
	Chasers  []AgentSpawn
	Rules    Rules
}

// Compile normalizes, validates and assembles the runtime level. Every
// authoring defect found at a stage is reported together; compilation
// stops at the first stage with defects.
func (d Definition) Compile() (*Level, error) {
	def := d.normalized()

	tiles, pellets, errs := parseRows(def.Rows)
	if len(errs) > 0 {
		return nil, compileError(def.Name, errs)
	}
	if errs := def.validatePlacements(tiles); len(errs) > 0 {
		return nil, compileError(def.Name, errs)
	}

	graph, err := grid.Build(tiles, tiles.Walkable(), tiles.Cols(), tiles.Rows(), def.CellSize)
	if err != nil {
		return nil, fmt.Errorf("level %q: %w", def.Name, err)
	}

	lvl := &Level{
		Name:     def.Name,
		CellSize: def.CellSize,
		Tiles:    tiles,
		Graph:    graph,
		Pellets:  pellets,
	}
	lvl.Passages = compilePassages(def.Passages)

	dir, _ := grid.ParseDirection(def.Player.Direction)
	lvl.Player = AgentSpawn{
		Name:      "player",
		Cell:      cellPoint(def.Player.Spawn),
		Direction: dir,
		Home:      cellPoint(def.Player.Spawn),
		Speed:     def.Player.Speed,
	}
	for _, chaser := range def.Chasers {
		dir, _ := grid.ParseDirection(chaser.Direction)
		lvl.Chasers = append(lvl.Chasers, AgentSpawn{
			Name:      chaser.Name,
			Cell:      cellPoint(chaser.Spawn),
			Direction: dir,
			Home:      cellPoint(*chaser.Home),
			Speed:     chaser.Speed,
		})
	}

	lvl.Rules = Rules{
		PelletPoints:      def.Rules.PelletPoints,
		PowerPelletPoints: def.Rules.PowerPelletPoints,
		EvasionTicks:      def.Rules.EvasionTicks,
		EvasionSpeedScale: def.Rules.EvasionSpeedScale,
		ReturnSpeedScale:  def.Rules.ReturnSpeedScale,
	}
	for _, wave := range def.Rules.Waves {
		mode, _ := behavior.ParseMode(wave.Mode)
		lvl.Rules.Waves = append(lvl.Rules.Waves, Wave{Mode: mode, Ticks: wave.Ticks})
	}

	if errs := lvl.validateExits(); len(errs) > 0 {
		return nil, compileError(def.Name, errs)
	}
	if errs := lvl.validateReachability(); len(errs) > 0 {
		return nil, compileError(def.Name, errs)
	}
	return lvl, nil
}

func compileError(name string, errs []error) error {
	return fmt.Errorf("level %q: %w", name, errors.Join(errs...))
}

func cellPoint(c Cell) grid.Point {
	return grid.Point{Col: c.Col, Row: c.Row}
}

// parseRows turns the ASCII maze into tiles and pellet placements.
func parseRows(rows []string) (*TileMap, []PelletSpawn, []error) {
	var errs []error
	if len(rows) == 0 {
		return nil, nil, []error{errors.New("rows: maze must not be empty")}
	}
	width := len(rows[0])
	if width == 0 {
		errs = append(errs, errors.New("rows: first row is empty"))
	}
	for i, row := range rows {
		if len(row) != width {
			errs = append(errs, fmt.Errorf("rows[%d]: width %d, want %d", i, len(row), width))
		}
	}
	if len(errs) > 0 {
		return nil, nil, errs
	}

	tiles := newTileMap(width, len(rows))
	var pellets []PelletSpawn
	for rowIdx, row := range rows {
		for colIdx := 0; colIdx < width; colIdx++ {
			cell := grid.Point{Col: colIdx, Row: rowIdx}
			switch row[colIdx] {
			case glyphWall:
				tiles.setWall(cell)
			case glyphPellet:
				pellets = append(pellets, PelletSpawn{Cell: cell})
			case glyphPowerPellet:
				pellets = append(pellets, PelletSpawn{Cell: cell, Power: true})
			case glyphFloor:
			default:
				errs = append(errs, fmt.Errorf("rows[%d]: unknown glyph %q at column %d", rowIdx, string(row[colIdx]), colIdx))
			}
		}
	}
	if len(errs) > 0 {
		return nil, nil, errs
	}
	return tiles, pellets, nil
}

// validatePlacements checks everything that only needs the tile map.
func (d Definition) validatePlacements(tiles *TileMap) []error {
	var errs []error

	if tiles.Wall(cellPoint(d.Player.Spawn)) {
		errs = append(errs, fmt.Errorf("player: spawn %v is not on floor", cellPoint(d.Player.Spawn)))
	}
	if _, ok := grid.ParseDirection(d.Player.Direction); !ok {
		errs = append(errs, fmt.Errorf("player: unknown direction %q", d.Player.Direction))
	}

	chaserNames := make(map[string]struct{}, len(d.Chasers))
	for i, chaser := range d.Chasers {
		if chaser.Name == "" {
			errs = append(errs, fmt.Errorf("chasers[%d]: name must not be empty", i))
		} else if _, dup := chaserNames[chaser.Name]; dup {
			errs = append(errs, fmt.Errorf("chasers[%d]: duplicate name %q", i, chaser.Name))
		} else {
			chaserNames[chaser.Name] = struct{}{}
		}
		if tiles.Wall(cellPoint(chaser.Spawn)) {
			errs = append(errs, fmt.Errorf("chaser %q: spawn %v is not on floor", chaser.Name, cellPoint(chaser.Spawn)))
		}
		if chaser.Home != nil && tiles.Wall(cellPoint(*chaser.Home)) {
			errs = append(errs, fmt.Errorf("chaser %q: home %v is not on floor", chaser.Name, cellPoint(*chaser.Home)))
		}
		if dir, ok := grid.ParseDirection(chaser.Direction); !ok {
			errs = append(errs, fmt.Errorf("chaser %q: unknown direction %q", chaser.Name, chaser.Direction))
		} else if dir == grid.DirNone {
			errs = append(errs, fmt.Errorf("chaser %q: spawn direction must not be none", chaser.Name))
		}
	}

	passagesByName := make(map[string]PassageDef, len(d.Passages))
	passageCells := make(map[grid.Point]string, len(d.Passages))
	for i, p := range d.Passages {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("passages[%d]: name must not be empty", i))
			continue
		}
		if _, dup := passagesByName[p.Name]; dup {
			errs = append(errs, fmt.Errorf("passage %q: duplicate name", p.Name))
			continue
		}
		passagesByName[p.Name] = p
		cell := cellPoint(p.Cell)
		if tiles.Wall(cell) {
			errs = append(errs, fmt.Errorf("passage %q: sensor %v is not on floor", p.Name, cell))
		}
		if other, taken := passageCells[cell]; taken {
			errs = append(errs, fmt.Errorf("passage %q: sensor %v already hosts passage %q", p.Name, cell, other))
		} else {
			passageCells[cell] = p.Name
		}
	}
	for _, p := range d.Passages {
		if p.Name == "" {
			continue
		}
		if p.Pair == p.Name {
			errs = append(errs, fmt.Errorf("passage %q: pairs with itself", p.Name))
			continue
		}
		pair, ok := passagesByName[p.Pair]
		if !ok {
			errs = append(errs, fmt.Errorf("passage %q: pair %q does not exist", p.Name, p.Pair))
			continue
		}
		if pair.Pair != p.Name {
			errs = append(errs, fmt.Errorf("passage %q: pair %q names %q back instead", p.Name, p.Pair, pair.Pair))
		}
	}

	for i, wave := range d.Rules.Waves {
		if _, ok := behavior.ParseMode(wave.Mode); !ok {
			errs = append(errs, fmt.Errorf("rules.waves[%d]: unknown mode %q", i, wave.Mode))
		}
		if wave.Ticks == 0 {
			errs = append(errs, fmt.Errorf("rules.waves[%d]: ticks must be positive", i))
		}
	}

	return errs
}

// validateExits checks spawn poses against the built graph: an agent
// must be able to travel its spawn direction immediately.
func (l *Level) validateExits() []error {
	var errs []error
	if l.Player.Direction != grid.DirNone {
		if node, ok := l.Graph.NodeAt(l.Player.Cell); !ok || !node.Allows(l.Player.Direction) {
			errs = append(errs, fmt.Errorf("player: spawn direction %v is not traversable from %v", l.Player.Direction, l.Player.Cell))
		}
	}
	for _, chaser := range l.Chasers {
		if node, ok := l.Graph.NodeAt(chaser.Cell); !ok || !node.Allows(chaser.Direction) {
			errs = append(errs, fmt.Errorf("chaser %q: spawn direction %v is not traversable from %v", chaser.Name, chaser.Direction, chaser.Cell))
		}
	}
	return errs
}

// validateReachability flood-fills the graph from the player spawn,
// following passage links, and requires every pellet, chaser pose and
// sensor to sit in the flooded region. Anything outside it could never
// participate in a session.
func (l *Level) validateReachability() []error {
	links := make(map[grid.Point]grid.Point, len(l.Passages))
	for _, p := range l.Passages {
		links[p.Cell] = p.Dest
	}

	visited := make(map[grid.Point]struct{}, l.Graph.NodeCount())
	queue := []grid.Point{l.Player.Cell}
	visited[l.Player.Cell] = struct{}{}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		node, ok := l.Graph.NodeAt(current)
		if !ok {
			continue
		}
		next := make([]grid.Point, 0, 5)
		for _, dir := range node.Directions() {
			next = append(next, node.Neighbor(dir))
		}
		if dest, linked := links[current]; linked {
			next = append(next, dest)
		}
		for _, cell := range next {
			if _, seen := visited[cell]; seen {
				continue
			}
			visited[cell] = struct{}{}
			queue = append(queue, cell)
		}
	}

	var errs []error
	for _, pellet := range l.Pellets {
		if _, ok := visited[pellet.Cell]; !ok {
			errs = append(errs, fmt.Errorf("pellet %v is unreachable from the player spawn", pellet.Cell))
		}
	}
	for _, chaser := range l.Chasers {
		if _, ok := visited[chaser.Cell]; !ok {
			errs = append(errs, fmt.Errorf("chaser %q: spawn %v is unreachable from the player spawn", chaser.Name, chaser.Cell))
		}
		if _, ok := visited[chaser.Home]; !ok {
			errs = append(errs, fmt.Errorf("chaser %q: home %v is unreachable from the player spawn", chaser.Name, chaser.Home))
		}
	}
	for _, passage := range l.Passages {
		if _, ok := visited[passage.Cell]; !ok {
			errs = append(errs, fmt.Errorf("passage %q: sensor %v is unreachable from the player spawn", passage.Name, passage.Cell))
		}
	}
	return errs
}

func compilePassages(defs []PassageDef) []PassageLink {
	if len(defs) == 0 {
		return nil
	}
	byName := make(map[string]PassageDef, len(defs))
	for _, p := range defs {
		byName[p.Name] = p
	}
	links := make([]PassageLink, 0, len(defs))
	for _, p := range defs {
		pair := byName[p.Pair]
		links = append(links, PassageLink{
			Name: p.Name,
			Cell: cellPoint(p.Cell),
			Dest: cellPoint(pair.Cell),
		})
	}
	return links
}
