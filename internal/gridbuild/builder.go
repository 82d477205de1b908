// Package gridbuild sweeps the mechanism workspace with a collision probe and
// records the result as an occupancy grid.
package gridbuild

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Faultbox/liftarm/pkg/formats"
)

// Probe is the collision oracle: it reports whether the intake placed at
// world position (x, y) hits the obstacle. Calls are assumed synchronous.
type Probe interface {
	Collides(x, y float64) bool
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func(x, y float64) bool

// Collides calls f(x, y).
func (f ProbeFunc) Collides(x, y float64) bool { return f(x, y) }

// Persister stores a finished grid.
type Persister interface {
	Persist(g *formats.OccupancyGrid) error
}

// PersistFunc adapts a function to Persister.
type PersistFunc func(g *formats.OccupancyGrid) error

// Persist calls f(g).
func (f PersistFunc) Persist(g *formats.OccupancyGrid) error { return f(g) }

// FilePersister writes the grid to a file path.
type FilePersister string

// Persist writes g to the file.
func (p FilePersister) Persist(g *formats.OccupancyGrid) error {
	return formats.WriteGridFile(string(p), g)
}

// BuildStatus is the sweep state reported by Advance.
type BuildStatus int

// Build states.
const (
	InProgress BuildStatus = iota
	Complete
)

// String returns the status name.
func (s BuildStatus) String() string {
	switch s {
	case InProgress:
		return "in-progress"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("BuildStatus(%d)", int(s))
	}
}

// ErrPersist wraps a failure to store the finished grid.
var ErrPersist = errors.New("persisting occupancy grid")

// Option configures a Builder.
type Option func(*Builder)

// WithPersister sets where the finished grid is stored.
func WithPersister(p Persister) Option {
	return func(b *Builder) { b.persister = p }
}

// WithSamplesPerTick sets how many samples each Tick processes. Values below
// one are ignored.
func WithSamplesPerTick(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.perTick = n
		}
	}
}

// WithLogger sets the logger for progress and completion messages.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// Builder owns an in-progress sweep: its cursor and the grid being filled.
// It is not safe for concurrent use; one caller drives Advance.
type Builder struct {
	grid      *formats.OccupancyGrid
	probe     Probe
	mount     r2.Vec
	persister Persister
	log       *zap.Logger

	minX, minY float64
	step       float64
	cols, rows int
	cursor     int
	perTick    int

	completed bool
}

// New prepares a sweep over bounds at the given step. mount is the
// effector-mount offset added to each sample before probing.
func New(bounds formats.Bounds, step float32, probe Probe, mount r2.Vec, opts ...Option) (*Builder, error) {
	if probe == nil {
		return nil, errors.New("gridbuild: nil probe")
	}

	grid, err := formats.NewOccupancyGrid(bounds, step)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		grid:    grid,
		probe:   probe,
		mount:   mount,
		log:     zap.NewNop(),
		minX:    float64(bounds.MinX),
		minY:    float64(bounds.MinY),
		step:    float64(step),
		cols:    sampleCount(bounds.MinX, bounds.MaxX, step),
		rows:    sampleCount(bounds.MinY, bounds.MaxY, step),
		perTick: 1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// sampleCount is the number of samples lo, lo+step, ... not exceeding hi.
func sampleCount(lo, hi, step float32) int {
	return int(math.Floor(float64((hi-lo)/step))) + 1
}

// Samples returns the sweep dimensions in samples.
func (b *Builder) Samples() (cols, rows int) {
	return b.cols, b.rows
}

// Progress returns the number of samples processed and the total.
func (b *Builder) Progress() (done, total int) {
	return b.cursor, b.cols * b.rows
}

// Done reports whether the sweep has finished.
func (b *Builder) Done() bool {
	return b.completed
}

// Grid returns a copy of the finished grid. ok is false while the sweep is
// still running.
func (b *Builder) Grid() (*formats.OccupancyGrid, bool) {
	if !b.completed {
		return nil, false
	}
	return b.grid.Clone(), true
}

// Advance processes up to n samples in row-major order. The call that covers
// the last sample persists the grid; later calls do nothing and report
// Complete.
func (b *Builder) Advance(n int) (BuildStatus, error) {
	if b.completed {
		return Complete, nil
	}

	total := b.cols * b.rows
	for i := 0; i < n && b.cursor < total; i++ {
		b.sample(b.cursor%b.cols, b.cursor/b.cols)
		b.cursor++
	}

	if b.cursor < total {
		return InProgress, nil
	}
	return Complete, b.finish()
}

// sample probes the intake at the arm-tip sample (ix, iy) shifted by the mount.
func (b *Builder) sample(ix, iy int) {
	x := b.minX + float64(ix)*b.step
	y := b.minY + float64(iy)*b.step

	if !b.probe.Collides(x+b.mount.X, y+b.mount.Y) {
		return
	}
	// Samples rounding past the last cell are dropped.
	if !b.grid.MarkAt(x, y) {
		b.log.Debug("sample outside grid", zap.Float64("x", x), zap.Float64("y", y))
	}
}

func (b *Builder) finish() error {
	b.completed = true

	b.log.Info("grid sweep completed",
		zap.Uint32("width", b.grid.Width),
		zap.Uint32("height", b.grid.Height),
		zap.Int("obstructed", b.grid.CountObstructed()),
	)

	if b.persister == nil {
		return nil
	}
	if err := b.persister.Persist(b.grid); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	b.log.Info("grid persisted")
	return nil
}

// Tick advances the sweep by the configured samples per tick and reports
// whether it is done. It lets the host loop drive the builder directly.
func (b *Builder) Tick(time.Duration) (bool, error) {
	status, err := b.Advance(b.perTick)
	return status == Complete, err
}
