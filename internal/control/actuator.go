// Package control drives the elevator and arm motors from intake targets,
// refusing any setpoint the occupancy grid marks as unsafe.
package control

import (
	"fmt"

	"go.uber.org/zap"
)

// Joint identifies a motorised joint.
type Joint int

// Joints of the mechanism.
const (
	Elevator Joint = iota
	Arm
)

// String returns the joint name.
func (j Joint) String() string {
	switch j {
	case Elevator:
		return "elevator"
	case Arm:
		return "arm"
	default:
		return fmt.Sprintf("joint(%d)", int(j))
	}
}

// Actuator applies motor targets to the mechanism.
type Actuator interface {
	// SetPositionTarget drives joint towards value.
	SetPositionTarget(joint Joint, value, maxVelocity, stiffness float64)
	// SetVelocityTarget drives joint at value. A factor of 0 disables the motor.
	SetVelocityTarget(joint Joint, value, factor float64)
}

// LogActuator is an Actuator that only logs the targets it receives.
type LogActuator struct {
	Log *zap.Logger
}

// SetPositionTarget logs a position target.
func (a LogActuator) SetPositionTarget(joint Joint, value, maxVelocity, stiffness float64) {
	a.logger().Info("position target",
		zap.Stringer("joint", joint),
		zap.Float64("value", value),
		zap.Float64("max_velocity", maxVelocity),
		zap.Float64("stiffness", stiffness))
}

// SetVelocityTarget logs a velocity target.
func (a LogActuator) SetVelocityTarget(joint Joint, value, factor float64) {
	a.logger().Info("velocity target",
		zap.Stringer("joint", joint),
		zap.Float64("value", value),
		zap.Float64("factor", factor))
}

func (a LogActuator) logger() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}
