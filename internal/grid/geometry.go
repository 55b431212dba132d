package grid

import (
	"fmt"
	"math"
)

// Vec2 is a continuous world-space position. The origin sits at the
// top-left corner of the level; X grows rightward and Y grows downward.
type Vec2 struct {
	X float64
	Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// DistanceTo reports the Euclidean distance between v and o.
func (v Vec2) DistanceTo(o Vec2) float64 {
	return math.Hypot(o.X-v.X, o.Y-v.Y)
}

// Point is a discrete cell coordinate on the navigation grid.
type Point struct {
	Col int
	Row int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Col, p.Row)
}

// Clamp limits value to the range [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
