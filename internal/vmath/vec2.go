package vmath

import "math"

// Vec2 is a 2D vector in world units (1 tile = 32 units).
type Vec2 struct {
	X, Y float32
}

func V(x, y float32) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2        { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2        { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float32) Vec2   { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Mul(o Vec2) Vec2        { return Vec2{v.X * o.X, v.Y * o.Y} }
func (v Vec2) Neg() Vec2              { return Vec2{-v.X, -v.Y} }
func (v Vec2) Dot(o Vec2) float32     { return v.X*o.X + v.Y*o.Y }
func (v Vec2) IsZero() bool           { return v.X == 0 && v.Y == 0 }
func (v Vec2) Length() float32        { return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y))) }
func (v Vec2) LengthSquared() float32 { return v.X*v.X + v.Y*v.Y }

// Normalize returns the unit vector, or the zero vector for zero input.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	d := 1 / l
	return Vec2{v.X * d, v.Y * d}
}

func Distance(a, b Vec2) float32 { return a.Sub(b).Length() }

// Mix linearly interpolates between a and b.
func Mix(a, b Vec2, t float32) Vec2 {
	return a.Add(b.Sub(a).Scale(t))
}

// ClosestPointOnLine projects p onto the segment a-b, clamped to its ends.
// It reports false for a zero-length segment.
func ClosestPointOnLine(a, b, p Vec2) (Vec2, bool) {
	ab := b.Sub(a)
	sq := ab.Dot(ab)
	if sq <= 0 {
		return Vec2{}, false
	}
	t := Clamp(p.Sub(a).Dot(ab)/sq, 0, 1)
	return a.Add(ab.Scale(t)), true
}

// Direction returns the unit vector for an angle in radians.
func Direction(angle float32) Vec2 {
	return Vec2{float32(math.Cos(float64(angle))), float32(math.Sin(float64(angle)))}
}

// Angle returns the angle of v in radians, in (-pi/2, 3pi/2].
func Angle(v Vec2) float32 {
	if v.X == 0 && v.Y == 0 {
		return 0
	}
	if v.X == 0 {
		if v.Y < 0 {
			return -Pi / 2
		}
		return Pi / 2
	}
	r := float32(math.Atan(float64(v.Y / v.X)))
	if v.X < 0 {
		r += Pi
	}
	return r
}

func RoundToInt(f float32) int {
	if f > 0 {
		return int(f + 0.5)
	}
	return int(f - 0.5)
}

func Abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

type number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

func Clamp[T number](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Pi as float32 for tick math.
const Pi = float32(math.Pi)
