package control

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Faultbox/liftarm/internal/config"
	"github.com/Faultbox/liftarm/internal/kinematics"
	"github.com/Faultbox/liftarm/pkg/formats"
)

type call struct {
	Kind   string
	Joint  Joint
	Value  float64
	Param1 float64
	Param2 float64
}

type recordingActuator struct {
	calls []call
}

func (a *recordingActuator) SetPositionTarget(joint Joint, value, maxVelocity, stiffness float64) {
	a.calls = append(a.calls, call{"position", joint, value, maxVelocity, stiffness})
}

func (a *recordingActuator) SetVelocityTarget(joint Joint, value, factor float64) {
	a.calls = append(a.calls, call{"velocity", joint, value, factor, 0})
}

var approx = cmpopts.EquateApprox(0, 1e-6)

// reachable is a configuration whose intake position solves back to itself.
var reachable = kinematics.JointConfig{ElevatorHeight: 20, ArmAngle: -math.Pi / 3}

func newTestController(t *testing.T) (*Controller, *recordingActuator, *formats.OccupancyGrid) {
	t.Helper()
	geom := config.Default().Mechanism.Geometry()
	grid, err := formats.NewOccupancyGrid(kinematics.WorkspaceBounds(geom), 1)
	if err != nil {
		t.Fatalf("NewOccupancyGrid: %v", err)
	}
	act := &recordingActuator{}
	c := NewController(geom, act, config.Default().Motor, nil)
	c.SetGrid(grid)
	return c, act, grid
}

func TestMoveTo(t *testing.T) {
	c, act, _ := newTestController(t)
	target := c.geom.EndEffector(reachable)

	cfg, err := c.MoveTo(target)
	if err != nil {
		t.Fatalf("MoveTo: %v", err)
	}
	if diff := cmp.Diff(reachable, cfg, approx); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	want := []call{
		{"position", Elevator, 20 - 13.65, 5000, 300},
		{"position", Arm, -math.Pi / 3, 5000, 300},
	}
	if diff := cmp.Diff(want, act.calls, approx); diff != "" {
		t.Errorf("actuator calls mismatch (-want +got):\n%s", diff)
	}

	sp, ok := c.Setpoint()
	if !ok {
		t.Fatal("expected a setpoint after a successful move")
	}
	if diff := cmp.Diff(reachable, sp, approx); diff != "" {
		t.Errorf("setpoint mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveTo_HoldsSetpointOnError(t *testing.T) {
	c, act, grid := newTestController(t)
	if _, err := c.MoveTo(c.geom.EndEffector(reachable)); err != nil {
		t.Fatalf("MoveTo: %v", err)
	}

	blocked := kinematics.JointConfig{ElevatorHeight: 25, ArmAngle: -math.Pi / 3}
	tip := c.geom.ArmTip(blocked)
	grid.MarkAt(tip.X, tip.Y)

	tests := []struct {
		name    string
		target  r2.Vec
		wantErr error
	}{
		{"unreachable", r2.Vec{X: 100, Y: 0}, kinematics.ErrUnreachable},
		{"obstructed", c.geom.EndEffector(blocked), kinematics.ErrObstructed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(act.calls)
			_, err := c.MoveTo(tt.target)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("MoveTo() error = %v, want %v", err, tt.wantErr)
			}
			if len(act.calls) != before {
				t.Errorf("refused move issued %d actuator calls", len(act.calls)-before)
			}
			sp, _ := c.Setpoint()
			if diff := cmp.Diff(reachable, sp, approx); diff != "" {
				t.Errorf("setpoint changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMoveTo_NoGrid(t *testing.T) {
	geom := kinematics.DefaultGeometry()
	act := &recordingActuator{}
	c := NewController(geom, act, config.Default().Motor, nil)

	_, err := c.MoveTo(geom.EndEffector(reachable))
	if !errors.Is(err, kinematics.ErrNoGrid) {
		t.Errorf("MoveTo() error = %v, want ErrNoGrid", err)
	}
	if len(act.calls) != 0 {
		t.Errorf("expected no actuator calls, got %d", len(act.calls))
	}
	if _, ok := c.Setpoint(); ok {
		t.Error("expected no setpoint")
	}
}

func TestMoveToPreset(t *testing.T) {
	c, act, grid := newTestController(t)

	if err := c.MoveToPreset(BottomLeft); err != nil {
		t.Fatalf("MoveToPreset(BottomLeft): %v", err)
	}
	want := []call{
		{"position", Elevator, -13.65, 5000, 300},
		{"position", Arm, 220 * math.Pi / 180, 5000, 300},
	}
	if diff := cmp.Diff(want, act.calls, approx); diff != "" {
		t.Errorf("actuator calls mismatch (-want +got):\n%s", diff)
	}

	tip := c.geom.ArmTip(BottomRight.Config)
	grid.MarkAt(tip.X, tip.Y)
	act.calls = nil

	if err := c.MoveToPreset(BottomRight); !errors.Is(err, kinematics.ErrObstructed) {
		t.Errorf("MoveToPreset(BottomRight) error = %v, want ErrObstructed", err)
	}
	if len(act.calls) != 0 {
		t.Errorf("expected no actuator calls, got %d", len(act.calls))
	}
	sp, _ := c.Setpoint()
	if diff := cmp.Diff(BottomLeft.Config, sp, approx); diff != "" {
		t.Errorf("setpoint mismatch (-want +got):\n%s", diff)
	}
}

func TestJogAndRelease(t *testing.T) {
	c, act, _ := newTestController(t)

	c.Jog(Elevator, Forward)
	c.Jog(Arm, Reverse)
	c.Jog(Arm, Stop)
	c.Release()

	want := []call{
		{"velocity", Elevator, 1000, 1, 0},
		{"velocity", Arm, -5, 1, 0},
		{"velocity", Arm, 0, 1, 0},
		{"velocity", Elevator, 0, 0, 0},
		{"velocity", Arm, 0, 0, 0},
	}
	if diff := cmp.Diff(want, act.calls, approx); diff != "" {
		t.Errorf("actuator calls mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadGrid(t *testing.T) {
	dir := t.TempDir()
	c, _, grid := newTestController(t)
	grid.Mark(3, 4)

	path := filepath.Join(dir, formats.DefaultGridFile)
	if err := formats.WriteGridFile(path, grid); err != nil {
		t.Fatalf("WriteGridFile: %v", err)
	}

	c.SetGrid(nil)
	if err := c.LoadGrid(path); err != nil {
		t.Fatalf("LoadGrid: %v", err)
	}
	if diff := cmp.Diff(grid, c.Grid()); diff != "" {
		t.Errorf("loaded grid mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadGrid_Failure(t *testing.T) {
	dir := t.TempDir()
	truncated := filepath.Join(dir, "truncated.bin")
	if err := os.WriteFile(truncated, make([]byte, 10), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tests := []struct {
		name  string
		path  string
		cause error
	}{
		{"missing", filepath.Join(dir, "missing.bin"), os.ErrNotExist},
		{"truncated", truncated, formats.ErrTruncatedGridData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, act, _ := newTestController(t)

			err := c.LoadGrid(tt.path)
			if !errors.Is(err, ErrGridLoad) {
				t.Errorf("LoadGrid() error = %v, want ErrGridLoad", err)
			}
			if !errors.Is(err, tt.cause) {
				t.Errorf("LoadGrid() error = %v, want cause %v", err, tt.cause)
			}
			if c.Grid() != nil {
				t.Error("grid should be absent after a failed load")
			}

			if _, err := c.MoveTo(c.geom.EndEffector(reachable)); !errors.Is(err, kinematics.ErrNoGrid) {
				t.Errorf("MoveTo() error = %v, want ErrNoGrid", err)
			}
			if len(act.calls) != 0 {
				t.Errorf("expected no actuator calls, got %d", len(act.calls))
			}
		})
	}
}

func TestJointString(t *testing.T) {
	if Elevator.String() != "elevator" || Arm.String() != "arm" {
		t.Errorf("unexpected joint names %s, %s", Elevator, Arm)
	}
	if Joint(7).String() != "joint(7)" {
		t.Errorf("unexpected name %s", Joint(7))
	}
}
