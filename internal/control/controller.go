package control

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Faultbox/liftarm/internal/config"
	"github.com/Faultbox/liftarm/internal/kinematics"
	"github.com/Faultbox/liftarm/pkg/formats"
)

// ErrGridLoad is returned when the occupancy grid cannot be read.
var ErrGridLoad = errors.New("loading occupancy grid")

// Preset is a named joint configuration.
type Preset struct {
	Name   string
	Config kinematics.JointConfig
}

// Stow positions with the elevator at the bottom of its travel.
var (
	BottomLeft = Preset{
		Name:   "bottom_left",
		Config: kinematics.JointConfig{ElevatorHeight: 0, ArmAngle: 220 * math.Pi / 180},
	}
	BottomRight = Preset{
		Name:   "bottom_right",
		Config: kinematics.JointConfig{ElevatorHeight: 0, ArmAngle: -40 * math.Pi / 180},
	}
)

// Direction is the sign of a jog.
type Direction int

// Jog directions.
const (
	Reverse Direction = -1
	Stop    Direction = 0
	Forward Direction = 1
)

// Controller turns intake targets into motor setpoints. It only ever issues
// configurations that pass the occupancy grid check.
type Controller struct {
	geom   kinematics.Geometry
	act    Actuator
	motors config.MotorConfig
	log    *zap.Logger

	grid *formats.OccupancyGrid

	setpoint    kinematics.JointConfig
	hasSetpoint bool
}

// NewController creates a controller without a grid. Every move is refused
// until a grid is loaded.
func NewController(geom kinematics.Geometry, act Actuator, motors config.MotorConfig, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		geom:   geom,
		act:    act,
		motors: motors,
		log:    log,
	}
}

// LoadGrid reads the occupancy grid at path. On failure the controller keeps
// no grid.
func (c *Controller) LoadGrid(path string) error {
	g, err := formats.ReadGridFile(path)
	if err != nil {
		c.grid = nil
		c.log.Warn("occupancy grid unavailable", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrGridLoad, err)
	}
	c.SetGrid(g)
	c.log.Info("occupancy grid loaded",
		zap.String("path", path),
		zap.Uint32("width", g.Width),
		zap.Uint32("height", g.Height),
		zap.Stringer("bounds", g.Bounds()))
	return nil
}

// SetGrid installs an already loaded grid. Nil removes the grid.
func (c *Controller) SetGrid(g *formats.OccupancyGrid) {
	c.grid = g
}

// Grid returns the grid in use, or nil.
func (c *Controller) Grid() *formats.OccupancyGrid {
	return c.grid
}

// Setpoint returns the last configuration that was issued to the motors.
func (c *Controller) Setpoint() (kinematics.JointConfig, bool) {
	return c.setpoint, c.hasSetpoint
}

// MoveTo drives the intake to target. On any error the motors keep their
// previous setpoint.
func (c *Controller) MoveTo(target r2.Vec) (kinematics.JointConfig, error) {
	cfg, err := c.geom.Plan(target, c.grid)
	if err != nil {
		c.log.Debug("move refused",
			zap.Float64("x", target.X), zap.Float64("y", target.Y), zap.Error(err))
		return kinematics.JointConfig{}, err
	}
	c.issue(cfg)
	return cfg, nil
}

// MoveToPreset drives the joints to p if the grid allows it.
func (c *Controller) MoveToPreset(p Preset) error {
	if err := c.geom.Validate(p.Config, c.grid); err != nil {
		c.log.Debug("preset refused", zap.String("preset", p.Name), zap.Error(err))
		return fmt.Errorf("preset %s: %w", p.Name, err)
	}
	c.issue(p.Config)
	return nil
}

// Jog drives joint at its jog speed in dir. Jogging bypasses the grid.
func (c *Controller) Jog(joint Joint, dir Direction) {
	m := c.motor(joint)
	c.act.SetVelocityTarget(joint, float64(dir)*m.JogSpeed, 1)
}

// Release disables both motors.
func (c *Controller) Release() {
	c.act.SetVelocityTarget(Elevator, 0, 0)
	c.act.SetVelocityTarget(Arm, 0, 0)
}

func (c *Controller) issue(cfg kinematics.JointConfig) {
	// The elevator motor works on the raw pivot height.
	em, am := c.motors.Elevator, c.motors.Arm
	c.act.SetPositionTarget(Elevator, cfg.ElevatorHeight+c.geom.ElevatorOffset, em.MaxVelocity, em.Stiffness)
	c.act.SetPositionTarget(Arm, cfg.ArmAngle, am.MaxVelocity, am.Stiffness)

	c.setpoint = cfg
	c.hasSetpoint = true
	c.log.Debug("setpoint issued", zap.Stringer("config", cfg))
}

func (c *Controller) motor(joint Joint) config.JointMotor {
	if joint == Elevator {
		return c.motors.Elevator
	}
	return c.motors.Arm
}
