// Package kinematics solves and validates joint configurations for the
// elevator/arm mechanism.
//
// The arm pivots about a point on the elevator carriage at (0, h+ElevatorOffset),
// where h is the actuator-relative elevator height. The arm tip lies ArmLength
// from the pivot at ArmAngle, and the intake is mounted at a fixed offset from
// the tip.
package kinematics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Faultbox/liftarm/pkg/formats"
)

// MountOffset is the fixed displacement from the arm tip to the intake,
// in polar form.
type MountOffset struct {
	Distance float64
	Angle    float64 // radians from +X
}

// Vector returns the offset as a world-space displacement.
func (m MountOffset) Vector() r2.Vec {
	s, c := math.Sincos(m.Angle)
	return r2.Vec{X: m.Distance * c, Y: m.Distance * s}
}

// Geometry holds the mechanism constants.
type Geometry struct {
	ArmLength      float64
	ElevatorOffset float64 // pivot height when the elevator actuator reads zero
	TravelMin      float64 // actuator-relative elevator limits
	TravelMax      float64
	Mount          MountOffset
}

// DefaultGeometry returns the reference mechanism.
func DefaultGeometry() Geometry {
	return Geometry{
		ArmLength:      39.37,
		ElevatorOffset: -13.65,
		TravelMin:      0,
		TravelMax:      45.4,
		Mount:          MountOffset{Distance: 13, Angle: math.Pi / 4},
	}
}

// MountVector is the single effector-mount offset shared by the grid sweep and
// the solver.
func (g Geometry) MountVector() r2.Vec {
	return g.Mount.Vector()
}

// WorkspaceBounds returns the rectangle every reachable arm tip lies in:
// the arm's reach square swept along the elevator travel.
func WorkspaceBounds(g Geometry) formats.Bounds {
	lowPivot := g.ElevatorOffset + g.TravelMin
	highPivot := g.ElevatorOffset + g.TravelMax
	return formats.Bounds{
		MinX: float32(-g.ArmLength),
		MaxX: float32(g.ArmLength),
		MinY: float32(lowPivot - g.ArmLength),
		MaxY: float32(highPivot + g.ArmLength),
	}
}
