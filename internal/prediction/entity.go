package prediction

import (
	"github.com/ddnetgo/predict/internal/collision"
	"github.com/ddnetgo/predict/internal/core/ecs"
	"github.com/ddnetgo/predict/internal/gamecore"
	"github.com/ddnetgo/predict/internal/tuning"
	"github.com/ddnetgo/predict/internal/vmath"
)

// EntityType selects the per type list an entity lives in. Lists tick in
// this order, so characters move after every projectile and laser.
type EntityType int

const (
	EntityProjectile EntityType = iota
	EntityLaser
	EntityPickup
	EntityDoor
	EntityDragger
	EntityPlasma
	EntityTargetSwitch
	EntityCharacter
	NumEntityTypes
)

var entityTypeNames = [NumEntityTypes]string{
	"projectile", "laser", "pickup", "door", "dragger", "plasma", "target_switch", "character",
}

func (t EntityType) String() string {
	if t < 0 || t >= NumEntityTypes {
		return "unknown"
	}
	return entityTypeNames[t]
}

// Entity is anything the world ticks.
type Entity interface {
	Base() *EntityBase
	Tick()
	TickDeferred()
	// Destroy releases what the entity holds outside of itself. The world
	// calls it exactly once, from the removal sweep.
	Destroy()
	// clone returns a detached copy of the entity for world w.
	clone(w *GameWorld) Entity
}

// EntityBase holds the state every entity shares.
type EntityBase struct {
	world   *GameWorld
	objType EntityType
	handle  ecs.EntityID
	parent  Entity

	// ID is the snapshot id, or -1 for entities not matched to one yet.
	ID int

	Pos              vmath.Vec2
	ProximityRadius  float32
	MarkedForDestroy bool
	SnapTicks        int
	// DestroyTick is the tick a copy of this entity was removed at, or -1.
	DestroyTick int

	Number int
	Layer  int
}

func newEntityBase(w *GameWorld, t EntityType, pos vmath.Vec2, proximity float32) EntityBase {
	return EntityBase{
		world:           w,
		objType:         t,
		ID:              -1,
		Pos:             pos,
		ProximityRadius: proximity,
		DestroyTick:     -1,
	}
}

func (b *EntityBase) Base() *EntityBase { return b }
func (b *EntityBase) TickDeferred()     {}
func (b *EntityBase) Destroy()          {}

func (b *EntityBase) World() *GameWorld { return b.world }
func (b *EntityBase) Type() EntityType  { return b.objType }

// Handle is the id of the entity in its world list, None before insert.
func (b *EntityBase) Handle() ecs.EntityID { return b.handle }

// Parent is the entity this one was copied from, if any.
func (b *EntityBase) Parent() Entity { return b.parent }

// Keep cancels a pending removal. Reconciliation calls it for entities the
// snapshot still contains.
func (b *EntityBase) Keep() {
	b.SnapTicks = 0
	b.MarkedForDestroy = false
}

func (b *EntityBase) MarkForDestroy() { b.MarkedForDestroy = true }

func (b *EntityBase) Collision() *collision.Collision { return b.world.collision }

func (b *EntityBase) GameTick() int { return b.world.GameTick }

func (b *EntityBase) Teams() *gamecore.Teams { return &b.world.teams }

func (b *EntityBase) Switchers() []gamecore.Switcher { return b.world.core.Switchers }

func (b *EntityBase) Tuning(zone int) *tuning.Params { return b.world.TuningZone(zone) }

// GameLayerClipped reports whether p lies far outside the map.
func (b *EntityBase) GameLayerClipped(p vmath.Vec2) bool {
	col := b.world.collision
	x, y := vmath.RoundToInt(p.X)/32, vmath.RoundToInt(p.Y)/32
	return x < -200 || x > col.Width()+200 || y < -200 || y > col.Height()+200
}

// detach prepares a value copy of the base for world w.
func (b EntityBase) detach(w *GameWorld, from Entity) EntityBase {
	b.world = w
	b.handle = ecs.None
	b.parent = from
	return b
}
