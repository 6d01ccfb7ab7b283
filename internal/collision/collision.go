// Package collision answers map queries for the prediction world: tile
// lookups, move restrictions, switch and tele layers, and line and box
// intersection.
package collision

import (
	"fmt"

	"github.com/ddnetgo/predict/internal/vmath"
	"github.com/pixil98/go-errors"
)

// Layers is the tile data of one map. Game is required, the others are
// optional and must match the game layer size when present.
type Layers struct {
	Width   int
	Height  int
	Game    []Tile
	Front   []Tile
	Tele    []TeleTile
	Speedup []SpeedupTile
	Switch  []SwitchTile
	Tune    []TuneTile
}

// SwitchActiveFunc reports whether the switch group number is active for
// the querying character.
type SwitchActiveFunc func(number int) bool

type Collision struct {
	width  int
	height int

	tiles   []Tile
	front   []Tile
	tele    []TeleTile
	speedup []SpeedupTile
	sw      []SwitchTile
	tune    []TuneTile
	door    []DoorTile

	// doorClaims counts the doors holding a carved slot and remembers
	// what the first one replaced.
	doorClaims map[int]*doorClaim

	highestSwitchNumber int

	teleIns       map[int][]vmath.Vec2
	teleOuts      map[int][]vmath.Vec2
	teleCheckOuts map[int][]vmath.Vec2
	teleOthers    map[int][]vmath.Vec2
}

func (l *Layers) validate() error {
	el := errors.NewErrorList()
	if l.Width <= 0 || l.Height <= 0 {
		el.Add(fmt.Errorf("invalid map size %dx%d", l.Width, l.Height))
		return el.Err()
	}
	n := l.Width * l.Height
	if len(l.Game) != n {
		el.Add(fmt.Errorf("game layer: got %d tiles, want %d", len(l.Game), n))
	}
	check := func(name string, got int) {
		if got != 0 && got != n {
			el.Add(fmt.Errorf("%s layer: got %d tiles, want %d", name, got, n))
		}
	}
	check("front", len(l.Front))
	check("tele", len(l.Tele))
	check("speedup", len(l.Speedup))
	check("switch", len(l.Switch))
	check("tune", len(l.Tune))
	return el.Err()
}

// New builds the collision service. The layers are copied; doors and
// SetCollisionAt modify the copy only.
func New(l Layers) (*Collision, error) {
	if err := l.validate(); err != nil {
		return nil, fmt.Errorf("validate layers: %w", err)
	}
	n := l.Width * l.Height
	c := &Collision{
		width:         l.Width,
		height:        l.Height,
		tiles:         append([]Tile(nil), l.Game...),
		door:          make([]DoorTile, n),
		doorClaims:    make(map[int]*doorClaim),
		teleIns:       make(map[int][]vmath.Vec2),
		teleOuts:      make(map[int][]vmath.Vec2),
		teleCheckOuts: make(map[int][]vmath.Vec2),
		teleOthers:    make(map[int][]vmath.Vec2),
	}
	if len(l.Front) > 0 {
		c.front = append([]Tile(nil), l.Front...)
	}
	if len(l.Tele) > 0 {
		c.tele = append([]TeleTile(nil), l.Tele...)
	}
	if len(l.Speedup) > 0 {
		c.speedup = append([]SpeedupTile(nil), l.Speedup...)
	}
	if len(l.Switch) > 0 {
		c.sw = append([]SwitchTile(nil), l.Switch...)
	}
	if len(l.Tune) > 0 {
		c.tune = append([]TuneTile(nil), l.Tune...)
	}

	for i := range c.sw {
		s := &c.sw[i]
		if int(s.Number) > c.highestSwitchNumber {
			c.highestSwitchNumber = int(s.Number)
		}
		c.door[i].Number = int(s.Number)

		t := int(s.Type)
		if t <= TileNPHEnable {
			if !(t >= TileJump && t <= TileSubtractTime) && t != TileAllowTeleGun && t != TileAllowBlueTeleGun {
				s.Type = 0
			}
		}
	}

	for i, t := range c.tele {
		if t.Number == 0 {
			continue
		}
		pos := vmath.V(float32(i%c.width)*32+16, float32(i/c.width)*32+16)
		nr := int(t.Number) - 1
		switch {
		case t.Type == TileTeleIn:
			c.teleIns[nr] = append(c.teleIns[nr], pos)
		case t.Type == TileTeleOut:
			c.teleOuts[nr] = append(c.teleOuts[nr], pos)
		case t.Type == TileTeleCheckOut:
			c.teleCheckOuts[nr] = append(c.teleCheckOuts[nr], pos)
		case t.Type != 0:
			c.teleOthers[nr] = append(c.teleOthers[nr], pos)
		}
	}
	return c, nil
}

func (c *Collision) Width() int               { return c.width }
func (c *Collision) Height() int              { return c.height }
func (c *Collision) HighestSwitchNumber() int { return c.highestSwitchNumber }

// TeleOuts returns the exit positions of tele number nr (zero based).
func (c *Collision) TeleOuts(nr int) []vmath.Vec2 { return c.teleOuts[nr] }

func (c *Collision) TeleCheckOuts(nr int) []vmath.Vec2 { return c.teleCheckOuts[nr] }

// ClampVel zeroes the velocity components blocked by the restrictions.
func ClampVel(restrictions int, vel vmath.Vec2) vmath.Vec2 {
	if vel.X > 0 && restrictions&CantMoveRight != 0 {
		vel.X = 0
	}
	if vel.X < 0 && restrictions&CantMoveLeft != 0 {
		vel.X = 0
	}
	if vel.Y > 0 && restrictions&CantMoveDown != 0 {
		vel.Y = 0
	}
	if vel.Y < 0 && restrictions&CantMoveUp != 0 {
		vel.Y = 0
	}
	return vel
}

func (c *Collision) clampX(x int) int { return vmath.Clamp(x/32, 0, c.width-1) }
func (c *Collision) clampY(y int) int { return vmath.Clamp(y/32, 0, c.height-1) }

// GetTile returns the game tile at x, y if it is one of the collision
// tiles, else 0.
func (c *Collision) GetTile(x, y int) int {
	pos := c.clampY(y)*c.width + c.clampX(x)
	idx := int(c.tiles[pos].Index)
	if idx >= TileSolid && idx <= TileNoLaser {
		return idx
	}
	return 0
}

// GetFrontTile returns the front tile at x, y if it is death or no-laser.
func (c *Collision) GetFrontTile(x, y int) int {
	if c.front == nil {
		return 0
	}
	idx := int(c.front[c.clampY(y)*c.width+c.clampX(x)].Index)
	if idx == TileDeath || idx == TileNoLaser {
		return idx
	}
	return 0
}

func (c *Collision) IsSolid(x, y int) bool {
	idx := c.GetTile(x, y)
	return idx == TileSolid || idx == TileNoHook
}

func (c *Collision) CheckPoint(x, y float32) bool {
	return c.IsSolid(vmath.RoundToInt(x), vmath.RoundToInt(y))
}

func (c *Collision) CheckPointV(p vmath.Vec2) bool { return c.CheckPoint(p.X, p.Y) }

func (c *Collision) GetCollisionAt(x, y float32) int {
	return c.GetTile(vmath.RoundToInt(x), vmath.RoundToInt(y))
}

func (c *Collision) GetFrontCollisionAt(x, y float32) int {
	return c.GetFrontTile(vmath.RoundToInt(x), vmath.RoundToInt(y))
}

func (c *Collision) IsNoLaser(x, y int) bool      { return c.GetTile(x, y) == TileNoLaser }
func (c *Collision) IsFrontNoLaser(x, y int) bool { return c.GetFrontTile(x, y) == TileNoLaser }

// GetPureMapIndex returns the tile index at p using rounded coordinates.
func (c *Collision) GetPureMapIndex(p vmath.Vec2) int {
	return c.clampY(vmath.RoundToInt(p.Y))*c.width + c.clampX(vmath.RoundToInt(p.X))
}

func (c *Collision) pureIndex(x, y int) int {
	return c.clampY(y)*c.width + c.clampX(x)
}

// GetMapIndex returns the tile index at p if anything of interest is there,
// else -1.
func (c *Collision) GetMapIndex(p vmath.Vec2) int {
	idx := c.clampY(int(p.Y))*c.width + c.clampX(int(p.X))
	if c.TileExists(idx) {
		return idx
	}
	return -1
}

// GetMapIndices returns the distinct interesting tile indices crossed when
// moving from prev to pos. limit caps the result when nonzero.
func (c *Collision) GetMapIndices(prev, pos vmath.Vec2, limit int) []int {
	d := vmath.Distance(prev, pos)
	if d == 0 {
		idx := c.clampY(int(pos.Y))*c.width + c.clampX(int(pos.X))
		if c.TileExists(idx) {
			return []int{idx}
		}
		return nil
	}

	var out []int
	last := 0
	end := int(d + 1)
	for i := 0; i < end; i++ {
		tmp := vmath.Mix(prev, pos, float32(i)/d)
		idx := c.clampY(int(tmp.Y))*c.width + c.clampX(int(tmp.X))
		if c.TileExists(idx) && last != idx {
			if limit > 0 && len(out) > limit {
				return out
			}
			out = append(out, idx)
			last = idx
		}
	}
	return out
}

// GetPos returns the center of tile index idx.
func (c *Collision) GetPos(idx int) vmath.Vec2 {
	if idx < 0 {
		return vmath.Vec2{}
	}
	return vmath.V(float32(idx%c.width*32+16), float32(idx/c.width*32+16))
}

func (c *Collision) GetTileIndex(idx int) int {
	if idx < 0 {
		return 0
	}
	return int(c.tiles[idx].Index)
}

func (c *Collision) GetFrontTileIndex(idx int) int {
	if idx < 0 || c.front == nil {
		return 0
	}
	return int(c.front[idx].Index)
}

func (c *Collision) GetTileFlags(idx int) int {
	if idx < 0 {
		return 0
	}
	return int(c.tiles[idx].Flags)
}

func (c *Collision) GetFrontTileFlags(idx int) int {
	if idx < 0 || c.front == nil {
		return 0
	}
	return int(c.front[idx].Flags)
}

func (c *Collision) getIndex(nx, ny int) int { return int(c.tiles[ny*c.width+nx].Index) }

func (c *Collision) getFrontIndex(nx, ny int) int {
	if c.front == nil {
		return 0
	}
	return int(c.front[ny*c.width+nx].Index)
}

// TileExists reports whether tile idx holds anything the character tile
// handling reacts to.
func (c *Collision) TileExists(idx int) bool {
	if idx < 0 {
		return false
	}
	special := func(i uint8) bool {
		return (i >= TileFreeze && i <= TileTeleLaserOff) || (i >= TileLFreeze && i <= TileLUnfreeze)
	}
	if special(c.tiles[idx].Index) {
		return true
	}
	if c.front != nil && special(c.front[idx].Index) {
		return true
	}
	if c.tele != nil {
		switch c.tele[idx].Type {
		case TileTeleIn, TileTeleInEvil, TileTeleCheckInEvil, TileTeleCheck, TileTeleCheckIn:
			return true
		}
	}
	if c.speedup != nil && c.speedup[idx].Force > 0 {
		return true
	}
	if c.door[idx].Index != 0 {
		return true
	}
	if c.sw != nil && c.sw[idx].Type != 0 {
		return true
	}
	if c.tune != nil && c.tune[idx].Type != 0 {
		return true
	}
	return c.TileExistsNext(idx)
}

// TileExistsNext reports whether a stopper next to idx blocks movement
// into it.
func (c *Collision) TileExistsNext(idx int) bool {
	if idx < 0 {
		return false
	}
	n := c.width * c.height
	left, right, below, above := idx, idx, idx, idx
	if idx-1 > 0 {
		left = idx - 1
	}
	if idx+1 < n {
		right = idx + 1
	}
	if idx+c.width < n {
		below = idx + c.width
	}
	if idx-c.width > 0 {
		above = idx - c.width
	}

	stoppers := func(get func(int) (uint8, uint8)) bool {
		ri, rf := get(right)
		li, lf := get(left)
		bi, bf := get(below)
		ai, af := get(above)
		if (ri == TileStop && rf == Rotation270) || (li == TileStop && lf == Rotation90) {
			return true
		}
		if (bi == TileStop && bf == Rotation0) || (ai == TileStop && af == Rotation180) {
			return true
		}
		if ri == TileStopA || li == TileStopA || ri == TileStopS || li == TileStopS {
			return true
		}
		return bi == TileStopA || ai == TileStopA || bi == TileStopS || ai == TileStopS
	}

	if stoppers(func(i int) (uint8, uint8) { return c.tiles[i].Index, c.tiles[i].Flags }) {
		return true
	}
	if c.front != nil && stoppers(func(i int) (uint8, uint8) { return c.front[i].Index, c.front[i].Flags }) {
		return true
	}
	return stoppers(func(i int) (uint8, uint8) { return c.door[i].Index, c.door[i].Flags })
}

const (
	dirHere = iota
	dirRight
	dirDown
	dirLeft
	dirUp
	numDirs
)

var moveDirections = [numDirs]vmath.Vec2{{}, {X: 1}, {Y: 1}, {X: -1}, {Y: -1}}

func moveRestrictionsRaw(tile, flags int) int {
	flags &= FlagXFlip | FlagYFlip | FlagRotate
	switch tile {
	case TileStop:
		switch flags {
		case Rotation0:
			return CantMoveDown
		case Rotation90:
			return CantMoveLeft
		case Rotation180:
			return CantMoveUp
		case Rotation270:
			return CantMoveRight
		case FlagYFlip ^ Rotation0:
			return CantMoveUp
		case FlagYFlip ^ Rotation90:
			return CantMoveRight
		case FlagYFlip ^ Rotation180:
			return CantMoveDown
		case FlagYFlip ^ Rotation270:
			return CantMoveLeft
		}
	case TileStopS:
		switch flags {
		case Rotation0, Rotation180, FlagYFlip ^ Rotation0, FlagYFlip ^ Rotation180:
			return CantMoveDown | CantMoveUp
		case Rotation90, Rotation270, FlagYFlip ^ Rotation90, FlagYFlip ^ Rotation270:
			return CantMoveLeft | CantMoveRight
		}
	case TileStopA:
		return CantMoveLeft | CantMoveRight | CantMoveUp | CantMoveDown
	}
	return 0
}

func moveRestrictionsMask(dir int) int {
	switch dir {
	case dirRight:
		return CantMoveRight
	case dirDown:
		return CantMoveDown
	case dirLeft:
		return CantMoveLeft
	case dirUp:
		return CantMoveUp
	}
	return 0
}

// Stoppers only block moving onto them, except one-way stoppers which also
// block while standing on them.
func moveRestrictions(dir, tile, flags int) int {
	r := moveRestrictionsRaw(tile, flags)
	if dir == dirHere && tile == TileStop {
		return r
	}
	return r & moveRestrictionsMask(dir)
}

// DefaultRestrictionDistance is the probe distance used for characters.
const DefaultRestrictionDistance = 18

// GetMoveRestrictions probes the tile at pos and the four tiles distance
// away. Door tiles count only when active reports their switch active; a
// nil active ignores doors. overrideCenter replaces the center tile index
// when >= 0.
func (c *Collision) GetMoveRestrictions(active SwitchActiveFunc, pos vmath.Vec2, distance float32, overrideCenter int) int {
	restrictions := 0
	for d := 0; d < numDirs; d++ {
		idx := c.GetPureMapIndex(pos.Add(moveDirections[d].Scale(distance)))
		if d == dirHere && overrideCenter >= 0 {
			idx = overrideCenter
		}
		restrictions |= moveRestrictions(d, c.GetTileIndex(idx), c.GetTileFlags(idx))
		restrictions |= moveRestrictions(d, c.GetFrontTileIndex(idx), c.GetFrontTileFlags(idx))
		if active != nil {
			dt := c.GetDoorTile(idx)
			if active(dt.Number) {
				restrictions |= moveRestrictions(d, int(dt.Index), int(dt.Flags))
			}
		}
	}
	return restrictions
}

// MoverSpeed returns the conveyor tile at x, y and its speed, or 0.
func (c *Collision) MoverSpeed(x, y int) (int, vmath.Vec2) {
	t := c.tiles[c.clampY(y)*c.width+c.clampX(x)]
	idx := int(t.Index)
	if idx != TileCP && idx != TileCPF {
		return 0, vmath.Vec2{}
	}

	var target vmath.Vec2
	switch t.Flags {
	case Rotation0:
		target = vmath.V(0, -4)
	case Rotation90:
		target = vmath.V(4, 0)
	case Rotation180:
		target = vmath.V(0, 4)
	case Rotation270:
		target = vmath.V(-4, 0)
	}
	if idx == TileCPF {
		target = target.Scale(4)
	}
	return idx, target
}

// SetCollisionAt overwrites the game tile at x, y.
func (c *Collision) SetCollisionAt(x, y float32, index int) {
	c.tiles[c.pureIndex(vmath.RoundToInt(x), vmath.RoundToInt(y))].Index = uint8(index)
}

// SetDoorCollisionAt writes the door tile at x, y.
func (c *Collision) SetDoorCollisionAt(x, y float32, tile, flags, number int) {
	c.door[c.pureIndex(vmath.RoundToInt(x), vmath.RoundToInt(y))] = DoorTile{
		Index:  uint8(tile),
		Flags:  uint8(flags),
		Number: number,
	}
}

// GetDoorTile returns the door tile at idx, or the zero tile when nothing
// is carved there.
func (c *Collision) GetDoorTile(idx int) DoorTile {
	if idx < 0 || idx >= len(c.door) || c.door[idx].Index == 0 {
		return DoorTile{}
	}
	return c.door[idx]
}

// RawDoorTile returns the door slot at idx including its switch number,
// carved or not.
func (c *Collision) RawDoorTile(idx int) DoorTile {
	if idx < 0 || idx >= len(c.door) {
		return DoorTile{}
	}
	return c.door[idx]
}

func (c *Collision) SetDoorTile(idx int, t DoorTile) {
	if idx < 0 || idx >= len(c.door) {
		return
	}
	c.door[idx] = t
}

type doorClaim struct {
	count int
	prev  DoorTile
}

// ClaimDoorTile carves t at idx on behalf of one more door. The slot it
// replaced comes back only when every claim is released.
func (c *Collision) ClaimDoorTile(idx int, t DoorTile) {
	if idx < 0 || idx >= len(c.door) {
		return
	}
	cl, ok := c.doorClaims[idx]
	if !ok {
		cl = &doorClaim{prev: c.door[idx]}
		c.doorClaims[idx] = cl
	}
	cl.count++
	c.door[idx] = t
}

// ReleaseDoorTile drops one claim on idx.
func (c *Collision) ReleaseDoorTile(idx int) {
	cl, ok := c.doorClaims[idx]
	if !ok {
		return
	}
	cl.count--
	if cl.count > 0 {
		return
	}
	c.door[idx] = cl.prev
	delete(c.doorClaims, idx)
}

// DoorClaims returns how many doors hold the slot at idx.
func (c *Collision) DoorClaims(idx int) int {
	if cl, ok := c.doorClaims[idx]; ok {
		return cl.count
	}
	return 0
}
