package shared

import (
	"fmt"
	"math"
)

// WorldPoint is an immutable tile coordinate in the game world
type WorldPoint struct {
	X     int `json:"x" yaml:"x"`
	Y     int `json:"y" yaml:"y"`
	Plane int `json:"plane" yaml:"plane"`
}

// NewWorldPoint creates a world point
func NewWorldPoint(x, y, plane int) WorldPoint {
	return WorldPoint{X: x, Y: y, Plane: plane}
}

// DistanceTo returns the Chebyshev tile distance to other.
// Points on different planes are infinitely far apart.
func (p WorldPoint) DistanceTo(other WorldPoint) int {
	if p.Plane != other.Plane {
		return math.MaxInt32
	}
	dx := p.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - other.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// Within returns true if other lies within tolerance tiles of p
func (p WorldPoint) Within(other WorldPoint, tolerance int) bool {
	return p.DistanceTo(other) <= tolerance
}

// IsZero reports whether the point is the zero value
func (p WorldPoint) IsZero() bool {
	return p.X == 0 && p.Y == 0 && p.Plane == 0
}

func (p WorldPoint) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Plane)
}
