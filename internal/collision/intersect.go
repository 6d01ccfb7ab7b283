package collision

import (
	"math"

	"github.com/ddnetgo/predict/internal/vmath"
)

// Hit is the result of a line intersection. Tile is 0 when nothing was hit,
// in which case At and Before are the segment end.
type Hit struct {
	Tile   int
	At     vmath.Vec2
	Before vmath.Vec2
}

func miss(p1 vmath.Vec2) Hit { return Hit{At: p1, Before: p1} }

// IntersectLine walks from p0 to p1 and returns the first solid tile.
func (c *Collision) IntersectLine(p0, p1 vmath.Vec2) Hit {
	end := int(vmath.Distance(p0, p1) + 1)
	last := p0
	for i := 0; i <= end; i++ {
		pos := vmath.Mix(p0, p1, float32(i)/float32(end))
		ix, iy := vmath.RoundToInt(pos.X), vmath.RoundToInt(pos.Y)
		if c.CheckPoint(float32(ix), float32(iy)) {
			return Hit{Tile: c.GetTile(ix, iy), At: pos, Before: last}
		}
		last = pos
	}
	return miss(p1)
}

// IntersectLineTeleHook is IntersectLine for hooks: through tiles are
// passable in the right direction, hook blockers stop with TileNoHook and
// hook teleporters stop with TileTeleInHook and their number.
func (c *Collision) IntersectLineTeleHook(p0, p1 vmath.Vec2) (Hit, int) {
	end := int(vmath.Distance(p0, p1) + 1)
	last := p0
	dx, dy := ThroughOffset(p0, p1)
	for i := 0; i <= end; i++ {
		pos := vmath.Mix(p0, p1, float32(i)/float32(end))
		ix, iy := vmath.RoundToInt(pos.X), vmath.RoundToInt(pos.Y)

		if nr := c.IsTeleportHook(c.GetPureMapIndex(pos)); nr != 0 {
			return Hit{Tile: TileTeleInHook, At: pos, Before: last}, nr
		}

		hit := 0
		if c.CheckPoint(float32(ix), float32(iy)) {
			if !c.IsThrough(ix, iy, dx, dy, p0, p1) {
				hit = c.GetTile(ix, iy)
			}
		} else if c.IsHookBlocker(ix, iy, p0, p1) {
			hit = TileNoHook
		}
		if hit != 0 {
			return Hit{Tile: hit, At: pos, Before: last}, 0
		}
		last = pos
	}
	return miss(p1), 0
}

// IntersectLineTeleWeapon is IntersectLine that also stops at weapon
// teleporters, returning TileTeleInWeapon and their number.
func (c *Collision) IntersectLineTeleWeapon(p0, p1 vmath.Vec2) (Hit, int) {
	end := int(vmath.Distance(p0, p1) + 1)
	last := p0
	for i := 0; i <= end; i++ {
		pos := vmath.Mix(p0, p1, float32(i)/float32(end))
		ix, iy := vmath.RoundToInt(pos.X), vmath.RoundToInt(pos.Y)

		if nr := c.IsTeleportWeapon(c.GetPureMapIndex(pos)); nr != 0 {
			return Hit{Tile: TileTeleInWeapon, At: pos, Before: last}, nr
		}
		if c.CheckPoint(float32(ix), float32(iy)) {
			return Hit{Tile: c.GetTile(ix, iy), At: pos, Before: last}, 0
		}
		last = pos
	}
	return miss(p1), 0
}

// IntersectNoLaser stops at solid, no-hook and no-laser tiles.
func (c *Collision) IntersectNoLaser(p0, p1 vmath.Vec2) Hit {
	d := vmath.Distance(p0, p1)
	last := p0
	steps := int(math.Ceil(float64(d)))
	for i := 0; i < steps; i++ {
		pos := vmath.Mix(p0, p1, float32(i)/d)
		nx := c.clampX(vmath.RoundToInt(pos.X))
		ny := c.clampY(vmath.RoundToInt(pos.Y))
		idx := c.getIndex(nx, ny)
		frontNoLaser := c.getFrontIndex(nx, ny) == TileNoLaser
		if idx == TileSolid || idx == TileNoHook || idx == TileNoLaser || frontNoLaser {
			h := Hit{At: pos, Before: last}
			if frontNoLaser {
				h.Tile = c.GetFrontCollisionAt(pos.X, pos.Y)
			} else {
				h.Tile = c.GetCollisionAt(pos.X, pos.Y)
			}
			return h
		}
		last = pos
	}
	return miss(p1)
}

// IntersectNoLaserNoWalls stops only at no-laser tiles.
func (c *Collision) IntersectNoLaserNoWalls(p0, p1 vmath.Vec2) Hit {
	d := vmath.Distance(p0, p1)
	last := p0
	steps := int(math.Ceil(float64(d)))
	for i := 0; i < steps; i++ {
		pos := vmath.Mix(p0, p1, float32(i)/d)
		ix, iy := vmath.RoundToInt(pos.X), vmath.RoundToInt(pos.Y)
		if c.IsNoLaser(ix, iy) {
			return Hit{Tile: c.GetCollisionAt(pos.X, pos.Y), At: pos, Before: last}
		}
		if c.IsFrontNoLaser(ix, iy) {
			return Hit{Tile: c.GetFrontCollisionAt(pos.X, pos.Y), At: pos, Before: last}
		}
		last = pos
	}
	return miss(p1)
}

// ThroughOffset returns the one tile offset against the dominant direction
// of travel, used to find the through tile behind a wall.
func ThroughOffset(p0, p1 vmath.Vec2) (int, int) {
	x := p0.X - p1.X
	y := p0.Y - p1.Y
	if vmath.Abs(x) > vmath.Abs(y) {
		if x < 0 {
			return -32, 0
		}
		return 32, 0
	}
	if y < 0 {
		return 0, -32
	}
	return 0, 32
}

func throughDirMatches(flags uint8, p0, p1 vmath.Vec2, hook bool) bool {
	if hook {
		return (flags == Rotation0 && p0.Y < p1.Y) ||
			(flags == Rotation90 && p0.X > p1.X) ||
			(flags == Rotation180 && p0.Y > p1.Y) ||
			(flags == Rotation270 && p0.X < p1.X)
	}
	return (flags == Rotation0 && p0.Y > p1.Y) ||
		(flags == Rotation90 && p0.X < p1.X) ||
		(flags == Rotation180 && p0.Y < p1.Y) ||
		(flags == Rotation270 && p0.X > p1.X)
}

// IsThrough reports whether the hook may pass the solid tile at x, y.
func (c *Collision) IsThrough(x, y, offX, offY int, p0, p1 vmath.Vec2) bool {
	pos := c.pureIndex(x, y)
	if c.front != nil {
		f := c.front[pos]
		if f.Index == TileThroughAll || f.Index == TileThroughCut {
			return true
		}
		if f.Index == TileThroughDir && throughDirMatches(f.Flags, p0, p1, false) {
			return true
		}
	}
	off := c.pureIndex(x+offX, y+offY)
	return c.tiles[off].Index == TileThrough || (c.front != nil && c.front[off].Index == TileThrough)
}

// IsHookBlocker reports whether the air tile at x, y stops hooks moving
// from p0 to p1.
func (c *Collision) IsHookBlocker(x, y int, p0, p1 vmath.Vec2) bool {
	pos := c.pureIndex(x, y)
	t := c.tiles[pos]
	if t.Index == TileThroughAll || (c.front != nil && c.front[pos].Index == TileThroughAll) {
		return true
	}
	if t.Index == TileThroughDir && throughDirMatches(t.Flags, p0, p1, true) {
		return true
	}
	if c.front != nil && c.front[pos].Index == TileThroughDir && throughDirMatches(c.front[pos].Flags, p0, p1, true) {
		return true
	}
	return false
}

// MovePoint moves a point by vel, reflecting vel on solid tiles. It returns
// the number of axis bounces.
func (c *Collision) MovePoint(pos, vel *vmath.Vec2, elasticity float32) int {
	p, v := *pos, *vel
	if !c.CheckPointV(p.Add(v)) {
		*pos = p.Add(v)
		return 0
	}

	bounces := 0
	affected := 0
	if c.CheckPoint(p.X+v.X, p.Y) {
		vel.X *= -elasticity
		bounces++
		affected++
	}
	if c.CheckPoint(p.X, p.Y+v.Y) {
		vel.Y *= -elasticity
		bounces++
		affected++
	}
	if affected == 0 {
		vel.X *= -elasticity
		vel.Y *= -elasticity
	}
	return bounces
}

// TestBox reports whether any corner of the box is solid.
func (c *Collision) TestBox(pos, size vmath.Vec2) bool {
	size = size.Scale(0.5)
	return c.CheckPoint(pos.X-size.X, pos.Y-size.Y) ||
		c.CheckPoint(pos.X+size.X, pos.Y-size.Y) ||
		c.CheckPoint(pos.X-size.X, pos.Y+size.Y) ||
		c.CheckPoint(pos.X+size.X, pos.Y+size.Y)
}

// MoveBox moves a box by vel in unit steps, stopping or bouncing on solid
// tiles per axis. It reports whether the box landed with positive vertical
// elasticity.
func (c *Collision) MoveBox(pos, vel *vmath.Vec2, size, elasticity vmath.Vec2) bool {
	p, v := *pos, *vel
	grounded := false

	dist := v.Length()
	steps := int(dist)
	if dist > 0.00001 {
		fraction := 1 / float32(steps+1)
		ex := vmath.Clamp(elasticity.X, -1, 1)
		ey := vmath.Clamp(elasticity.Y, -1, 1)

		for i := 0; i <= steps; i++ {
			if v.IsZero() {
				break
			}
			np := p.Add(v.Scale(fraction))
			if np == p {
				break
			}

			if c.TestBox(np, size) {
				hits := 0
				if c.TestBox(vmath.V(p.X, np.Y), size) {
					if ey > 0 && v.Y > 0 {
						grounded = true
					}
					np.Y = p.Y
					v.Y *= -ey
					hits++
				}
				if c.TestBox(vmath.V(np.X, p.Y), size) {
					np.X = p.X
					v.X *= -ex
					hits++
				}
				if hits == 0 {
					if ey > 0 && v.Y > 0 {
						grounded = true
					}
					np.Y = p.Y
					v.Y *= -ey
					np.X = p.X
					v.X *= -ex
				}
			}
			p = np
		}
	}

	*pos, *vel = p, v
	return grounded
}
