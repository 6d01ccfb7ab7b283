package vmath

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestClosestPointOnLine(t *testing.T) {
	tests := map[string]struct {
		a, b, p Vec2
		expPos  Vec2
		expOK   bool
	}{
		"inside segment": {a: V(0, 0), b: V(10, 0), p: V(4, 3), expPos: V(4, 0), expOK: true},
		"before start":   {a: V(0, 0), b: V(10, 0), p: V(-5, 1), expPos: V(0, 0), expOK: true},
		"after end":      {a: V(0, 0), b: V(10, 0), p: V(20, 1), expPos: V(10, 0), expOK: true},
		"zero length":    {a: V(3, 3), b: V(3, 3), p: V(0, 0), expPos: V(0, 0), expOK: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			pos, ok := ClosestPointOnLine(tt.a, tt.b, tt.p)
			testutil.AssertEqual(t, "ok", ok, tt.expOK)
			testutil.AssertEqual(t, "pos", pos, tt.expPos)
		})
	}
}

func TestRoundToInt(t *testing.T) {
	tests := map[string]struct {
		in  float32
		exp int
	}{
		"positive half": {in: 2.5, exp: 3},
		"positive":      {in: 2.4, exp: 2},
		"negative half": {in: -2.5, exp: -3},
		"negative":      {in: -2.4, exp: -2},
		"zero":          {in: 0, exp: 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "rounded", RoundToInt(tt.in), tt.exp)
		})
	}
}

func TestNormalizeZero(t *testing.T) {
	testutil.AssertEqual(t, "zero", Vec2{}.Normalize(), Vec2{})
	testutil.AssertEqual(t, "unit", V(0, -5).Normalize(), V(0, -1))
}

func TestAngle(t *testing.T) {
	testutil.AssertEqual(t, "zero", Angle(Vec2{}), float32(0))
	testutil.AssertEqual(t, "down", Angle(V(0, 2)), Pi/2)
	testutil.AssertEqual(t, "up", Angle(V(0, -2)), -Pi/2)
	testutil.AssertEqual(t, "right", Angle(V(3, 0)), float32(0))
}
