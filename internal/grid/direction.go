package grid

// Direction identifies one of the four cardinal travel directions. The
// zero value means no direction: a stationary agent, or no pending
// request. The declaration order after DirNone doubles as the fixed
// tie-break priority used by the steering policies.
type Direction uint8

const (
	DirNone Direction = iota
	DirUp
	DirLeft
	DirDown
	DirRight
)

// Cardinals lists the travel directions in tie-break priority order.
var Cardinals = [4]Direction{DirUp, DirLeft, DirDown, DirRight}

// Delta reports the cell offset of one step along d.
func (d Direction) Delta() (dc, dr int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirLeft:
		return -1, 0
	case DirDown:
		return 0, 1
	case DirRight:
		return 1, 0
	default:
		return 0, 0
	}
}

// Vector reports the unit world-space vector of d.
func (d Direction) Vector() Vec2 {
	dc, dr := d.Delta()
	return Vec2{X: float64(dc), Y: float64(dr)}
}

// Opposite reports the reverse of d. DirNone has no reverse.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirLeft:
		return DirRight
	case DirDown:
		return DirUp
	case DirRight:
		return DirLeft
	default:
		return DirNone
	}
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirLeft:
		return "left"
	case DirDown:
		return "down"
	case DirRight:
		return "right"
	default:
		return "none"
	}
}

// ParseDirection maps the textual form used by level files and client
// messages back to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return DirUp, true
	case "left":
		return DirLeft, true
	case "down":
		return DirDown, true
	case "right":
		return DirRight, true
	case "", "none":
		return DirNone, true
	default:
		return DirNone, false
	}
}
