package kinematics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Faultbox/liftarm/pkg/formats"
)

// Solver and validator errors.
var (
	ErrUnreachable = errors.New("target outside arm reach")
	ErrOutOfTravel = errors.New("elevator height outside travel limits")
	ErrObstructed  = errors.New("configuration obstructed")
	ErrNoGrid      = errors.New("no occupancy grid loaded")
)

// JointConfig is a pair of actuator setpoints.
type JointConfig struct {
	ElevatorHeight float64 // actuator-relative
	ArmAngle       float64 // radians
}

// String returns the configuration with the angle in degrees.
func (c JointConfig) String() string {
	return fmt.Sprintf("height=%.3f angle=%.2f°", c.ElevatorHeight, c.ArmAngle*180/math.Pi)
}

// ArmTip returns the world position of the arm tip for cfg.
func (g Geometry) ArmTip(cfg JointConfig) r2.Vec {
	s, c := math.Sincos(cfg.ArmAngle)
	return r2.Vec{
		X: g.ArmLength * c,
		Y: cfg.ElevatorHeight + g.ElevatorOffset + g.ArmLength*s,
	}
}

// EndEffector returns the world position of the intake for cfg.
func (g Geometry) EndEffector(cfg JointConfig) r2.Vec {
	return r2.Add(g.ArmTip(cfg), g.MountVector())
}

// Solve returns the joint configuration that places the intake at target.
//
// The arm angle is picked so the tip lands on the target's x; the arm points
// up for targets above the elevator zero and down otherwise. The elevator then
// takes up the remaining height. The result is exact: EndEffector(cfg)
// reproduces target.
func (g Geometry) Solve(target r2.Vec) (JointConfig, error) {
	a := r2.Sub(target, g.MountVector())

	if !finite(a) {
		return JointConfig{}, fmt.Errorf("%w: non-finite target (%v, %v)", ErrUnreachable, target.X, target.Y)
	}
	if dist := r2.Norm(a); !(dist <= g.ArmLength) {
		return JointConfig{}, fmt.Errorf("%w: distance %.3f > %.3f", ErrUnreachable, dist, g.ArmLength)
	}

	rise := math.Sqrt(math.Max(0, g.ArmLength*g.ArmLength-a.X*a.X))
	if a.Y < 0 {
		rise = -rise
	}
	angle := math.Atan2(rise, a.X)

	pivot := a.Y - g.ArmLength*math.Sin(angle)
	height := pivot - g.ElevatorOffset
	if !(height >= g.TravelMin && height <= g.TravelMax) {
		return JointConfig{}, fmt.Errorf("%w: height %.3f not in [%.3f, %.3f]",
			ErrOutOfTravel, height, g.TravelMin, g.TravelMax)
	}

	return JointConfig{ElevatorHeight: height, ArmAngle: angle}, nil
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// TrySolve is Solve without the reason.
func (g Geometry) TrySolve(target r2.Vec) (JointConfig, bool) {
	cfg, err := g.Solve(target)
	return cfg, err == nil
}

// IsFree reports whether cfg's arm tip lies in a sampled, unobstructed cell.
// Positions outside the grid and a nil grid are never free.
func (g Geometry) IsFree(cfg JointConfig, grid *formats.OccupancyGrid) bool {
	return g.Validate(cfg, grid) == nil
}

// Validate is IsFree with a reason: ErrNoGrid or ErrObstructed.
func (g Geometry) Validate(cfg JointConfig, grid *formats.OccupancyGrid) error {
	if grid == nil {
		return ErrNoGrid
	}

	tip := g.ArmTip(cfg)
	ix, iy, ok := grid.CellIndex(tip.X, tip.Y)
	if !ok {
		return fmt.Errorf("%w: tip (%.3f, %.3f) outside sampled workspace", ErrObstructed, tip.X, tip.Y)
	}
	if obstructed, _ := grid.Obstructed(ix, iy); obstructed {
		return fmt.Errorf("%w: tip (%.3f, %.3f) in cell (%d, %d)", ErrObstructed, tip.X, tip.Y, ix, iy)
	}
	return nil
}

// Plan solves for target and checks the result against grid.
func (g Geometry) Plan(target r2.Vec, grid *formats.OccupancyGrid) (JointConfig, error) {
	cfg, err := g.Solve(target)
	if err != nil {
		return JointConfig{}, err
	}
	if err := g.Validate(cfg, grid); err != nil {
		return JointConfig{}, err
	}
	return cfg, nil
}
