package physics

import (
	gomath "math"

	"github.com/Faultbox/liftarm/pkg/math"
)

// Reference mechanism shapes.
var (
	FrameShape  = Cuboid{HalfWidth: 2.52, HalfHeight: 48.25}
	IntakeShape = Cuboid{HalfWidth: 19.05, HalfHeight: 6.675}
)

// IntakeRotation is the fixed orientation of the intake.
const IntakeRotation = gomath.Pi / 4

// ElevatorFrame returns the elevator frame obstacle centred at pos.
func ElevatorFrame(shape Cuboid, pos math.Vec2) Body {
	return Body{
		Name:     "elevator_frame",
		Shape:    shape,
		Position: pos,
		Groups:   Groups{Memberships: GroupElevator, Filter: GroupIntake},
	}
}

// IntakeProbe answers whether the intake collides with the world when placed
// at a position. Orientation and shape are fixed.
type IntakeProbe struct {
	World    *World
	Shape    Cuboid
	Rotation float32
	Filter   Groups

	queries int
}

// NewIntakeProbe creates a probe for the intake against world.
func NewIntakeProbe(world *World, shape Cuboid, rotation float32) *IntakeProbe {
	return &IntakeProbe{
		World:    world,
		Shape:    shape,
		Rotation: rotation,
		Filter:   Groups{Memberships: GroupIntake, Filter: GroupElevator},
	}
}

// Collides reports whether the intake centred at (x, y) hits an obstacle.
func (p *IntakeProbe) Collides(x, y float64) bool {
	p.queries++
	pos := math.Vec2{X: float32(x), Y: float32(y)}
	return p.World.IntersectsShape(pos, p.Rotation, p.Shape, p.Filter)
}

// Queries returns how many times the probe has been called.
func (p *IntakeProbe) Queries() int {
	return p.queries
}
