// armtool is a CLI utility for inspecting occupancy grids and trying arm
// targets against them.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Faultbox/liftarm/internal/config"
	"github.com/Faultbox/liftarm/internal/control"
	"github.com/Faultbox/liftarm/internal/debug"
	"github.com/Faultbox/liftarm/internal/kinematics"
	"github.com/Faultbox/liftarm/internal/logger"
	"github.com/Faultbox/liftarm/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "solve":
		cmdSolve(args)
	case "check":
		cmdCheck(args)
	case "preset":
		cmdPreset(args)
	case "render":
		cmdRender(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`armtool - elevator arm occupancy grid utility

Usage:
  armtool <command> [options]

Commands:
  info <grid.bin>                  Show grid header and obstruction count
  solve <x> <y>                    Solve joint setpoints for an intake target
  check <grid.bin> <x> <y>         Solve and validate a target against a grid
  preset <grid.bin> left|right     Validate a stow preset against a grid
  render [-scale N] [-target x,y] <grid.bin> <out.png>
                                   Write a PNG preview of a grid
  config [out.yaml]                Write the effective config (default: user config dir)

The mechanism is read from liftarm.yaml when present.

Examples:
  armtool info collision_grid.bin
  armtool solve 10 -20
  armtool check collision_grid.bin 10 -20
  armtool render -scale 8 collision_grid.bin grid.png`)
}

// setup loads the mechanism config and routes logs to stderr.
func setup() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	logger.Sync()
	os.Exit(1)
}

func parseTarget(xs, ys string) r2.Vec {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		fail(fmt.Errorf("invalid x %q: %w", xs, err))
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		fail(fmt.Errorf("invalid y %q: %w", ys, err))
	}
	return r2.Vec{X: x, Y: y}
}

func printConfig(geom kinematics.Geometry, cfg kinematics.JointConfig) {
	tip := geom.ArmTip(cfg)
	eff := geom.EndEffector(cfg)
	fmt.Printf("Elevator: %.3f (motor %.3f)\n", cfg.ElevatorHeight, cfg.ElevatorHeight+geom.ElevatorOffset)
	fmt.Printf("Arm:      %.3f rad (%.2f°)\n", cfg.ArmAngle, cfg.ArmAngle*180/math.Pi)
	fmt.Printf("Tip:      (%.3f, %.3f)\n", tip.X, tip.Y)
	fmt.Printf("Intake:   (%.3f, %.3f)\n", eff.X, eff.Y)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: armtool info <grid.bin>")
		os.Exit(1)
	}

	grid, err := formats.ReadGridFile(args[0])
	if err != nil {
		fail(err)
	}

	obstructed := grid.CountObstructed()
	total := len(grid.Cells)
	fmt.Printf("Grid:       %s\n", args[0])
	fmt.Printf("Size:       %d x %d (%d cells)\n", grid.Width, grid.Height, total)
	fmt.Printf("Bounds:     %s\n", grid.Bounds())
	fmt.Printf("Step:       %g\n", grid.StepSize)
	fmt.Printf("Obstructed: %d (%.1f%%)\n", obstructed, percent(obstructed, total))
}

// percent returns part as a percentage of total, or 0 for an empty grid.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}

func cmdSolve(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: armtool solve <x> <y>")
		os.Exit(1)
	}
	cfg := setup()
	defer logger.Sync()

	geom := cfg.Mechanism.Geometry()
	joints, err := geom.Solve(parseTarget(args[0], args[1]))
	if err != nil {
		fail(err)
	}
	printConfig(geom, joints)
}

func newController(cfg *config.Config, gridPath string) *control.Controller {
	ctrl := control.NewController(cfg.Mechanism.Geometry(),
		control.LogActuator{Log: logger.Named("actuator")},
		cfg.Motor,
		logger.Named("control"))
	if err := ctrl.LoadGrid(gridPath); err != nil {
		fail(err)
	}
	return ctrl
}

func cmdCheck(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: armtool check <grid.bin> <x> <y>")
		os.Exit(1)
	}
	cfg := setup()
	defer logger.Sync()

	ctrl := newController(cfg, args[0])
	joints, err := ctrl.MoveTo(parseTarget(args[1], args[2]))
	if err != nil {
		fmt.Printf("Refused: %v\n", err)
		logger.Sync()
		os.Exit(2)
	}
	fmt.Println("Free")
	printConfig(cfg.Mechanism.Geometry(), joints)
}

func cmdPreset(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: armtool preset <grid.bin> left|right")
		os.Exit(1)
	}

	var preset control.Preset
	switch args[1] {
	case "left":
		preset = control.BottomLeft
	case "right":
		preset = control.BottomRight
	default:
		fmt.Fprintf(os.Stderr, "Unknown preset: %s\n", args[1])
		os.Exit(1)
	}

	cfg := setup()
	defer logger.Sync()

	ctrl := newController(cfg, args[0])
	if err := ctrl.MoveToPreset(preset); err != nil {
		fmt.Printf("Refused: %v\n", err)
		logger.Sync()
		os.Exit(2)
	}
	fmt.Printf("Preset %s is free\n", preset.Name)
	printConfig(cfg.Mechanism.Geometry(), preset.Config)
}

func cmdRender(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	scale := fs.Int("scale", 4, "Pixels per grid cell")
	target := fs.String("target", "", "Mark an arm tip position, as x,y")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: armtool render [-scale N] [-target x,y] <grid.bin> <out.png>")
		os.Exit(1)
	}

	grid, err := formats.ReadGridFile(fs.Arg(0))
	if err != nil {
		fail(err)
	}

	img := debug.RenderGrid(grid, *scale)
	if *target != "" {
		var x, y float64
		if _, err := fmt.Sscanf(*target, "%g,%g", &x, &y); err != nil {
			fail(fmt.Errorf("invalid target %q: %w", *target, err))
		}
		if !debug.MarkPoint(img, grid, *scale, x, y) {
			fmt.Fprintf(os.Stderr, "Target (%g, %g) is outside the grid\n", x, y)
		}
	}

	if err := debug.SavePNG(fs.Arg(1), img); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %s (%dx%d)\n", fs.Arg(1), img.Bounds().Dx(), img.Bounds().Dy())
}

func cmdConfig(args []string) {
	cfg := setup()
	defer logger.Sync()

	var err error
	path := filepath.Join(config.ConfigDir(), config.FileName)
	if len(args) > 0 {
		path = args[0]
		err = cfg.SaveTo(path)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %s\n", path)
}
