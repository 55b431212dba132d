package sim

import (
	"gridchase/internal/grid"
	"gridchase/internal/level"
	"gridchase/internal/motion"
)

// PassageLinker resolves passage sensor cells to the world center of
// their paired sensor. It implements motion.PortalResolver, so passage
// relocation happens inside the movement tick and preserves direction,
// pending request and speed scale.
type PassageLinker struct {
	links map[grid.Point]passageDest
}

type passageDest struct {
	name  string
	cell  grid.Point
	world grid.Vec2
}

// NewPassageLinker indexes the compiled links against the graph.
func NewPassageLinker(g *grid.Graph, links []level.PassageLink) *PassageLinker {
	linker := &PassageLinker{links: make(map[grid.Point]passageDest, len(links))}
	for _, link := range links {
		linker.links[link.Cell] = passageDest{
			name:  link.Name,
			cell:  link.Dest,
			world: g.WorldPos(link.Dest),
		}
	}
	return linker
}

// Resolve reports the paired center for cell when cell hosts a sensor.
func (l *PassageLinker) Resolve(cell grid.Point) (grid.Vec2, bool) {
	if l == nil {
		return grid.Vec2{}, false
	}
	dest, ok := l.links[cell]
	if !ok {
		return grid.Vec2{}, false
	}
	return dest.world, true
}

// Name reports the sensor name registered on cell.
func (l *PassageLinker) Name(cell grid.Point) (string, bool) {
	if l == nil {
		return "", false
	}
	dest, ok := l.links[cell]
	if !ok {
		return "", false
	}
	return dest.name, true
}

var _ motion.PortalResolver = (*PassageLinker)(nil)
