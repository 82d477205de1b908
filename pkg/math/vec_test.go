package math

import (
	"math"
	"testing"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestVec2Sub(t *testing.T) {
	got := Vec2{4, 6}.Sub(Vec2{1, 2})
	if want := (Vec2{3, 4}); got != want {
		t.Errorf("Vec2.Sub() = %v, want %v", got, want)
	}
}

func TestFromAngle(t *testing.T) {
	tests := []struct {
		angle float32
		want  Vec2
	}{
		{0, Vec2{1, 0}},
		{math.Pi / 2, Vec2{0, 1}},
		{math.Pi, Vec2{-1, 0}},
		{-math.Pi / 4, Vec2{float32(math.Sqrt2 / 2), -float32(math.Sqrt2 / 2)}},
	}

	for _, tc := range tests {
		got := FromAngle(tc.angle)
		if !approx(got.X, tc.want.X) || !approx(got.Y, tc.want.Y) {
			t.Errorf("FromAngle(%v) = %v, want %v", tc.angle, got, tc.want)
		}
	}
}

func TestVec2PerpAndDot(t *testing.T) {
	v := FromAngle(math.Pi / 4)
	if l := v.Dot(v); !approx(l, 1) {
		t.Errorf("FromAngle squared length = %v, want 1", l)
	}
	if d := v.Dot(v.Perp()); !approx(d, 0) {
		t.Errorf("v.Dot(v.Perp()) = %v, want 0", d)
	}
	if got := (Vec2{1, 0}).Perp(); got != (Vec2{0, 1}) {
		t.Errorf("Perp() = %v, want {0 1}", got)
	}
	if got := (Vec2{3, 4}).Dot(Vec2{2, -1}); got != 2 {
		t.Errorf("Dot() = %v, want 2", got)
	}
}
