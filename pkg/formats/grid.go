// Package formats provides the occupancy grid and its binary file format.
package formats

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGridBounds is returned when a grid cannot be laid out over the given bounds.
var ErrInvalidGridBounds = errors.New("invalid occupancy grid bounds")

// Bounds is an axis-aligned workspace rectangle in world units.
type Bounds struct {
	MinX, MaxX float32
	MinY, MaxY float32
}

// String returns the bounds as "[minX, maxX] x [minY, maxY]".
func (b Bounds) String() string {
	return fmt.Sprintf("[%.2f, %.2f] x [%.2f, %.2f]", b.MinX, b.MaxX, b.MinY, b.MaxY)
}

// OccupancyGrid is a row-major boolean map over a bounded workspace.
// A true cell is obstructed.
type OccupancyGrid struct {
	Width    uint32
	Height   uint32
	MinX     float32
	MaxX     float32
	MinY     float32
	MaxY     float32
	StepSize float32
	Cells    []bool
}

// NewOccupancyGrid creates an all-free grid covering bounds at the given step.
// Each axis gets ceil(extent/step)+1 cells.
func NewOccupancyGrid(b Bounds, step float32) (*OccupancyGrid, error) {
	if !(step > 0) {
		return nil, fmt.Errorf("%w: step size %v", ErrInvalidGridBounds, step)
	}
	if !(b.MaxX >= b.MinX) || !(b.MaxY >= b.MinY) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGridBounds, b)
	}

	width := cellCount(b.MinX, b.MaxX, step)
	height := cellCount(b.MinY, b.MaxY, step)

	return &OccupancyGrid{
		Width:    width,
		Height:   height,
		MinX:     b.MinX,
		MaxX:     b.MaxX,
		MinY:     b.MinY,
		MaxY:     b.MaxY,
		StepSize: step,
		Cells:    make([]bool, int(width)*int(height)),
	}, nil
}

func cellCount(lo, hi, step float32) uint32 {
	return uint32(math.Ceil(float64((hi-lo)/step))) + 1
}

// Bounds returns the workspace rectangle the grid was laid out over.
func (g *OccupancyGrid) Bounds() Bounds {
	return Bounds{MinX: g.MinX, MaxX: g.MaxX, MinY: g.MinY, MaxY: g.MaxY}
}

// CellIndex maps a world position to cell indices.
// ok is false when the position falls outside the grid.
func (g *OccupancyGrid) CellIndex(x, y float64) (ix, iy int, ok bool) {
	fx := math.Floor((x - float64(g.MinX)) / float64(g.StepSize))
	fy := math.Floor((y - float64(g.MinY)) / float64(g.StepSize))

	// NaN fails both comparisons and lands here too.
	if !(fx >= 0 && fx < float64(g.Width)) || !(fy >= 0 && fy < float64(g.Height)) {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}

func (g *OccupancyGrid) inBounds(ix, iy int) bool {
	return ix >= 0 && iy >= 0 && ix < int(g.Width) && iy < int(g.Height)
}

// Obstructed reports the state of cell (ix, iy).
// ok is false for out-of-range indices.
func (g *OccupancyGrid) Obstructed(ix, iy int) (obstructed, ok bool) {
	if !g.inBounds(ix, iy) {
		return false, false
	}
	return g.Cells[iy*int(g.Width)+ix], true
}

// Mark sets cell (ix, iy) obstructed. Cells are never cleared.
// Returns false without writing when the indices are out of range.
func (g *OccupancyGrid) Mark(ix, iy int) bool {
	if !g.inBounds(ix, iy) {
		return false
	}
	g.Cells[iy*int(g.Width)+ix] = true
	return true
}

// MarkAt marks the cell containing world position (x, y).
func (g *OccupancyGrid) MarkAt(x, y float64) bool {
	ix, iy, ok := g.CellIndex(x, y)
	if !ok {
		return false
	}
	return g.Mark(ix, iy)
}

// CountObstructed returns the number of obstructed cells.
func (g *OccupancyGrid) CountObstructed() int {
	n := 0
	for _, c := range g.Cells {
		if c {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the grid.
func (g *OccupancyGrid) Clone() *OccupancyGrid {
	c := *g
	c.Cells = make([]bool, len(g.Cells))
	copy(c.Cells, g.Cells)
	return &c
}
