// Package physics provides a small 2D collision world for shape intersection
// queries against fixed obstacles.
package physics

import (
	"github.com/Faultbox/liftarm/pkg/math"
)

// Group is a collision group bitmask.
type Group uint32

// Collision groups used by the mechanism.
const (
	GroupNone     Group = 0
	GroupElevator Group = 1 << 0
	GroupIntake   Group = 1 << 1
	GroupAll      Group = ^Group(0)
)

// Groups pairs the groups a shape belongs to with the groups it can hit.
type Groups struct {
	Memberships Group
	Filter      Group
}

// Interacts reports whether two shapes with these groups can collide.
// Both sides have to accept the other.
func (g Groups) Interacts(other Groups) bool {
	return g.Memberships&other.Filter != 0 && other.Memberships&g.Filter != 0
}

// Cuboid is a rectangle given by its half extents.
type Cuboid struct {
	HalfWidth  float32
	HalfHeight float32
}

// Body is a fixed obstacle in the world.
type Body struct {
	Name     string
	Shape    Cuboid
	Position math.Vec2
	Rotation float32 // radians
	Groups   Groups
}

// World holds the fixed bodies that queries are run against.
type World struct {
	bodies []Body
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{}
}

// AddBody adds a fixed body.
func (w *World) AddBody(b Body) {
	w.bodies = append(w.bodies, b)
}

// Bodies returns the number of bodies in the world.
func (w *World) Bodies() int {
	return len(w.bodies)
}

// IntersectsShape reports whether shape placed at pos with the given rotation
// overlaps any body whose groups interact with filter. Touching counts.
func (w *World) IntersectsShape(pos math.Vec2, rotation float32, shape Cuboid, filter Groups) bool {
	query := newBox(pos, rotation, shape)
	for i := range w.bodies {
		b := &w.bodies[i]
		if !filter.Interacts(b.Groups) {
			continue
		}
		if query.overlaps(newBox(b.Position, b.Rotation, b.Shape)) {
			return true
		}
	}
	return false
}

// box is an oriented rectangle ready for separating axis tests.
type box struct {
	center math.Vec2
	axes   [2]math.Vec2 // unit local X and Y
	half   [2]float32
}

func newBox(center math.Vec2, rotation float32, c Cuboid) box {
	ax := math.FromAngle(rotation)
	return box{
		center: center,
		axes:   [2]math.Vec2{ax, ax.Perp()},
		half:   [2]float32{c.HalfWidth, c.HalfHeight},
	}
}

// radius returns the half length of the box projected onto axis.
func (b box) radius(axis math.Vec2) float32 {
	return b.half[0]*abs(b.axes[0].Dot(axis)) + b.half[1]*abs(b.axes[1].Dot(axis))
}

func (b box) overlaps(o box) bool {
	d := o.center.Sub(b.center)
	for _, axis := range [4]math.Vec2{b.axes[0], b.axes[1], o.axes[0], o.axes[1]} {
		if abs(d.Dot(axis)) > b.radius(axis)+o.radius(axis) {
			return false
		}
	}
	return true
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
