package prediction

import (
	"slices"

	"github.com/ddnetgo/predict/internal/collision"
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/vmath"
)

// Door is a closed switch door. While it exists it carves stopper tiles
// into the door layer along its beam and releases them on destroy. A slot
// shared by overlapping doors stays carved until the last of them goes.
// Copies of the world share the map and never carve.
type Door struct {
	EntityBase

	To        vmath.Vec2
	Direction vmath.Vec2
	Length    float32

	carved []int
}

func newDoorFromData(w *GameWorld, id int, d *protocol.LaserData) *Door {
	door := &Door{
		EntityBase: newEntityBase(w, EntityDoor, d.To, 0),
		To:         d.From,
	}
	door.ID = id
	door.Number = d.SwitchNumber
	if door.Number > 0 {
		door.Layer = LayerSwitch
	}
	diff := door.To.Sub(door.Pos)
	door.Length = diff.Length()
	if door.Length > 0 {
		door.Direction = diff.Normalize()
	}
	return door
}

func (d *Door) clone(w *GameWorld) Entity {
	cp := *d
	cp.EntityBase = d.EntityBase.detach(w, d)
	cp.carved = nil
	return &cp
}

// Carve writes the stopper tiles of the door. Tiles already carved by a
// door with another number are left alone.
func (d *Door) Carve() {
	w := d.world
	if w.parent != nil || d.carved != nil {
		return
	}
	col := w.collision
	startX, startY := vmath.RoundToInt(d.Pos.X), vmath.RoundToInt(d.Pos.Y)
	if col.GetTile(startX, startY) != 0 || col.GetFrontTile(startX, startY) != 0 {
		return
	}

	d.carved = []int{}
	seen := make(map[int]bool)
	for i := 0; i < int(d.Length)-1; i++ {
		cur := d.Pos.Add(d.Direction.Scale(float32(i)))
		if col.CheckPoint(cur.X, cur.Y) {
			break
		}
		idx := col.GetPureMapIndex(cur)
		if seen[idx] {
			continue
		}
		prev := col.RawDoorTile(idx)
		if prev.Index != 0 && prev.Number != 0 && prev.Number != d.Number {
			continue
		}
		seen[idx] = true
		d.carved = append(d.carved, idx)
		col.ClaimDoorTile(idx, collision.DoorTile{Index: collision.TileStopA, Number: d.Number})
	}
	w.OnModified()
}

// Tick does nothing; a door only changes through snapshots.
func (d *Door) Tick() {}

// Destroy releases the carved slots in reverse carving order.
func (d *Door) Destroy() {
	if d.carved == nil {
		return
	}
	col := d.Collision()
	for i := len(d.carved) - 1; i >= 0; i-- {
		col.ReleaseDoorTile(d.carved[i])
	}
	d.carved = nil
}

// Carved returns the map indices the door claimed.
func (d *Door) Carved() []int {
	return slices.Clone(d.carved)
}

// Match reports whether other is the same door.
func (d *Door) Match(other *Door) bool {
	return d.Number == other.Number && vmath.Distance(d.Pos, other.Pos) <= 2 && vmath.Distance(d.To, other.To) <= 2
}
