// Package config handles liftarm configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Faultbox/liftarm/internal/kinematics"
	"github.com/Faultbox/liftarm/internal/physics"
	"github.com/Faultbox/liftarm/pkg/formats"
	vec "github.com/Faultbox/liftarm/pkg/math"
)

// Config holds all settings.
type Config struct {
	Mechanism MechanismConfig `yaml:"mechanism"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Grid      GridConfig      `yaml:"grid"`
	Motor     MotorConfig     `yaml:"motor"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// MechanismConfig holds the mechanism geometry. Angles are in degrees.
type MechanismConfig struct {
	ArmLength      float64     `yaml:"arm_length"`
	ElevatorOffset float64     `yaml:"elevator_offset"`
	TravelMin      float64     `yaml:"travel_min"`
	TravelMax      float64     `yaml:"travel_max"`
	Mount          MountConfig `yaml:"mount"`
}

// MountConfig is the intake offset from the arm tip.
type MountConfig struct {
	Distance float64 `yaml:"distance"`
	AngleDeg float64 `yaml:"angle_deg"`
}

// Geometry converts the mechanism settings for the solver.
func (m MechanismConfig) Geometry() kinematics.Geometry {
	return kinematics.Geometry{
		ArmLength:      m.ArmLength,
		ElevatorOffset: m.ElevatorOffset,
		TravelMin:      m.TravelMin,
		TravelMax:      m.TravelMax,
		Mount: kinematics.MountOffset{
			Distance: m.Mount.Distance,
			Angle:    m.Mount.AngleDeg * math.Pi / 180,
		},
	}
}

// BoxConfig is a rectangle given by half extents.
type BoxConfig struct {
	HalfWidth  float32 `yaml:"half_width"`
	HalfHeight float32 `yaml:"half_height"`
}

// PhysicsConfig holds the collision shapes used during the grid sweep.
//
// IntakeAngleDeg is the intake orientation in degrees. Legacy grids were
// swept with the intake at about 21.93°; set intake_angle_deg: 21.93 to
// rebuild a grid that matches them.
type PhysicsConfig struct {
	Frame          BoxConfig  `yaml:"frame"`
	FramePosition  [2]float32 `yaml:"frame_position"`
	Intake         BoxConfig  `yaml:"intake"`
	IntakeAngleDeg float32    `yaml:"intake_angle_deg"`
}

// World builds the collision world holding the elevator frame.
func (p PhysicsConfig) World() *physics.World {
	w := physics.NewWorld()
	w.AddBody(physics.ElevatorFrame(
		physics.Cuboid{HalfWidth: p.Frame.HalfWidth, HalfHeight: p.Frame.HalfHeight},
		vec.Vec2{X: p.FramePosition[0], Y: p.FramePosition[1]},
	))
	return w
}

// IntakeProbe builds the collision probe used by the grid sweep.
func (p PhysicsConfig) IntakeProbe() *physics.IntakeProbe {
	return physics.NewIntakeProbe(
		p.World(),
		physics.Cuboid{HalfWidth: p.Intake.HalfWidth, HalfHeight: p.Intake.HalfHeight},
		p.IntakeAngleDeg*math.Pi/180,
	)
}

// GridConfig holds grid build and load settings.
type GridConfig struct {
	Path           string        `yaml:"path"`
	StepSize       float32       `yaml:"step_size"`
	SamplesPerTick int           `yaml:"samples_per_tick"`
	TickInterval   time.Duration `yaml:"tick_interval"`
}

// JointMotor holds position-drive settings for one joint.
type JointMotor struct {
	MaxVelocity float64 `yaml:"max_velocity"`
	Stiffness   float64 `yaml:"stiffness"`
	JogSpeed    float64 `yaml:"jog_speed"`
}

// MotorConfig holds actuation settings.
type MotorConfig struct {
	Elevator JointMotor `yaml:"elevator"`
	Arm      JointMotor `yaml:"arm"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config describing the reference mechanism.
func Default() *Config {
	return &Config{
		Mechanism: MechanismConfig{
			ArmLength:      39.37,
			ElevatorOffset: -13.65,
			TravelMin:      0,
			TravelMax:      45.4,
			Mount: MountConfig{
				Distance: 13,
				AngleDeg: 45,
			},
		},
		Physics: PhysicsConfig{
			Frame:          BoxConfig{HalfWidth: 2.52, HalfHeight: 48.25},
			Intake:         BoxConfig{HalfWidth: 19.05, HalfHeight: 6.675},
			IntakeAngleDeg: 45,
		},
		Grid: GridConfig{
			Path:           formats.DefaultGridFile,
			StepSize:       2.0,
			SamplesPerTick: 10,
			TickInterval:   16 * time.Millisecond,
		},
		Motor: MotorConfig{
			Elevator: JointMotor{MaxVelocity: 5000, Stiffness: 300, JogSpeed: 1000},
			Arm:      JointMotor{MaxVelocity: 5000, Stiffness: 300, JogSpeed: 5},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks settings that would make the build or solver meaningless.
func (c *Config) Validate() error {
	var errs []error
	if c.Mechanism.ArmLength <= 0 {
		errs = append(errs, fmt.Errorf("mechanism.arm_length must be positive, got %v", c.Mechanism.ArmLength))
	}
	if c.Mechanism.TravelMax < c.Mechanism.TravelMin {
		errs = append(errs, fmt.Errorf("mechanism.travel_max %v below travel_min %v",
			c.Mechanism.TravelMax, c.Mechanism.TravelMin))
	}
	if !(c.Grid.StepSize > 0) {
		errs = append(errs, fmt.Errorf("grid.step_size must be positive, got %v", c.Grid.StepSize))
	}
	if c.Grid.SamplesPerTick <= 0 {
		errs = append(errs, fmt.Errorf("grid.samples_per_tick must be positive, got %d", c.Grid.SamplesPerTick))
	}
	if c.Grid.Path == "" {
		errs = append(errs, errors.New("grid.path is empty"))
	}
	return errors.Join(errs...)
}
