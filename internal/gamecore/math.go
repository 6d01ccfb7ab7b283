package gamecore

import (
	"math"

	"github.com/ddnetgo/predict/internal/vmath"
)

// CalcPos returns the position on a ballistic curve after t seconds.
func CalcPos(pos, vel vmath.Vec2, curvature, speed, t float32) vmath.Vec2 {
	t *= speed
	return vmath.V(
		pos.X+vel.X*t,
		pos.Y+vel.Y*t+curvature/10000*(t*t),
	)
}

// SaturatedAdd adds mod to cur without crossing the [lo, hi] bound it moves
// towards. Values already past the bound are left alone.
func SaturatedAdd(lo, hi, cur, mod float32) float32 {
	if mod < 0 {
		if cur < lo {
			return cur
		}
		cur += mod
		if cur < lo {
			cur = lo
		}
		return cur
	}
	if cur > hi {
		return cur
	}
	cur += mod
	if cur > hi {
		cur = hi
	}
	return cur
}

// VelocityRamp returns the horizontal speed multiplier for speed v.
func VelocityRamp(v, start, rng, curvature float32) float32 {
	if v < start {
		return 1
	}
	return 1 / float32(math.Pow(float64(curvature), float64((v-start)/rng)))
}
