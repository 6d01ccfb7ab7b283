// Package prediction simulates the game world ahead of the last snapshot.
// A GameWorld owns every predicted entity, ticks them in a fixed order and
// reconciles them against each new snapshot.
package prediction

import (
	"github.com/ddnetgo/predict/internal/collision"
	"github.com/ddnetgo/predict/internal/core/ecs"
	"github.com/ddnetgo/predict/internal/core/event"
	"github.com/ddnetgo/predict/internal/gamecore"
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/tuning"
	"github.com/ddnetgo/predict/internal/vmath"
)

// WeaponRules are the fixed weapon constants the server uses.
type WeaponRules struct {
	NinjaDuration int // ms
	NinjaMovetime int // ms
	NinjaVelocity float32
	HammerDamage  int
	NinjaDamage   int
}

func DefaultWeaponRules() WeaponRules {
	return WeaponRules{
		NinjaDuration: 15000,
		NinjaMovetime: 200,
		NinjaVelocity: 50,
		HammerDamage:  3,
		NinjaDamage:   9,
	}
}

// WorldConfig selects which behaviours run. It mirrors the ruleset of the
// server being predicted.
type WorldConfig struct {
	IsVanilla           bool
	IsDDRace            bool
	IsFNG               bool
	IsSolo              bool
	UseTuneZones        bool
	BugDDRaceInput      bool
	NoWeakHookAndBounce bool

	PredictTiles   bool
	PredictFreeze  bool
	PredictWeapons bool
	PredictDDRace  bool
	InfiniteAmmo   bool

	// server rules the client cannot see
	Hit          bool
	OldLaser     bool
	Deepfly      bool
	FreezeDelay  int // seconds
	DraggerRange float32

	Weapons WeaponRules
}

// DefaultConfig is a DDRace server with full prediction.
func DefaultConfig() WorldConfig {
	return WorldConfig{
		IsDDRace:       true,
		UseTuneZones:   true,
		PredictTiles:   true,
		PredictFreeze:  true,
		PredictWeapons: true,
		PredictDDRace:  true,
		Hit:            true,
		Deepfly:        true,
		FreezeDelay:    3,
		DraggerRange:   700,
		Weapons:        DefaultWeaponRules(),
	}
}

// MaskAll selects every client in CreateExplosion.
const MaskAll = ^uint64(0)

type GameWorld struct {
	Config   WorldConfig
	GameTick int
	// Tuning is the global tuning, replaced by the tune zone of the local
	// character while it moves through zones.
	Tuning tuning.Params
	// Events receives explosions and sounds when set. Copies start without
	// a sink.
	Events *event.Bus

	collision  *collision.Collision
	core       *gamecore.WorldCore
	teams      gamecore.Teams
	pool       *ecs.EntityPool
	lists      [NumEntityTypes]*ecs.List[Entity]
	characters [protocol.MaxClients]*Character

	localClientID int

	version       uint64
	parent        *GameWorld
	parentVersion uint64
}

// NewGameWorld returns an empty world on map col. col may be nil until
// SetCollision is called.
func NewGameWorld(col *collision.Collision, cfg WorldConfig) *GameWorld {
	w := &GameWorld{
		Config:        cfg,
		Tuning:        tuning.Default(),
		core:          gamecore.NewWorldCore(),
		pool:          ecs.NewEntityPool(),
		localClientID: -1,
	}
	for i := range w.lists {
		w.lists[i] = ecs.NewList[Entity](w.pool)
	}
	w.SetCollision(col)
	return w
}

// SetCollision switches the map and resets the switch table for it.
func (w *GameWorld) SetCollision(col *collision.Collision) {
	w.collision = col
	if col != nil {
		w.core.InitSwitchers(col.HighestSwitchNumber())
	}
}

func (w *GameWorld) Collision() *collision.Collision { return w.collision }
func (w *GameWorld) Teams() *gamecore.Teams          { return &w.teams }
func (w *GameWorld) Core() *gamecore.WorldCore       { return w.core }
func (w *GameWorld) GameTickSpeed() int              { return protocol.TickSpeed }
func (w *GameWorld) LocalClientID() int              { return w.localClientID }

// TuningZone returns the tuning of tune zone z.
func (w *GameWorld) TuningZone(z int) *tuning.Params { return w.core.Tunings.Zone(z) }

// SetTuningZone replaces the tuning of zone z. Zone 0 also becomes the
// global tuning.
func (w *GameWorld) SetTuningZone(z int, p tuning.Params) {
	if z < 0 || z >= len(w.core.Tunings) {
		return
	}
	w.core.Tunings[z] = p
	if z == 0 {
		w.Tuning = p
	}
}

// Switchers returns the switch table. Entries may be modified in place.
func (w *GameWorld) Switchers() []gamecore.Switcher { return w.core.Switchers }

// switchStatus reports the status of switch number for team. ok is false
// when the number or team has no entry.
func (w *GameWorld) switchStatus(number, team int) (status, ok bool) {
	if number <= 0 || number >= len(w.core.Switchers) || team < 0 || team >= protocol.MaxClients {
		return false, false
	}
	return w.core.Switchers[number].Status[team], true
}

// Entities returns the entities of type t in tick order.
func (w *GameWorld) Entities(t EntityType) []Entity {
	return w.lists[t].Values()
}

// NumEntities counts the entities of type t.
func (w *GameWorld) NumEntities(t EntityType) int { return w.lists[t].Len() }

// InsertEntity adds e to its type list, at the back when last is set and
// at the front otherwise.
func (w *GameWorld) InsertEntity(e Entity, last bool) {
	b := e.Base()
	b.world = w
	if last {
		b.handle = w.lists[b.objType].PushBack(e)
	} else {
		b.handle = w.lists[b.objType].PushFront(e)
	}

	if c, ok := e.(*Character); ok {
		if id := c.ID; id >= 0 && id < protocol.MaxClients {
			w.characters[id] = c
			w.core.Characters[id] = &c.Core
		}
		c.Core.SetCoreWorld(w.core, w.collision, &w.teams)
	}
}

// DestroyEntity marks e for the next sweep.
func (w *GameWorld) DestroyEntity(e Entity) {
	e.Base().MarkForDestroy()
}

// RemoveEntity unlinks e. A live copy reports the removal tick to the
// entity it was copied from.
func (w *GameWorld) RemoveEntity(e Entity) {
	b := e.Base()
	if _, ok := w.lists[b.objType].Remove(b.handle); !ok {
		return
	}
	b.handle = ecs.None
	if b.parent != nil {
		if w.IsValidCopy() {
			b.parent.Base().DestroyTick = w.GameTick
		}
		b.parent = nil
	}
	if c, ok := e.(*Character); ok {
		if id := c.ID; id >= 0 && id < protocol.MaxClients && w.characters[id] == c {
			w.characters[id] = nil
			w.core.Characters[id] = nil
		}
	}
}

// RemoveEntities sweeps every entity marked for destroy.
func (w *GameWorld) RemoveEntities() {
	for t := range w.lists {
		w.lists[t].Each(func(_ ecs.EntityID, e Entity) {
			if e.Base().MarkedForDestroy {
				w.RemoveEntity(e)
				e.Destroy()
			}
		})
	}
}

// Tick advances the world by one tick.
func (w *GameWorld) Tick() {
	for t := range w.lists {
		if w.Config.NoWeakHookAndBounce && EntityType(t) == EntityCharacter {
			w.lists[t].Each(func(_ ecs.EntityID, e Entity) {
				e.(*Character).PreTick()
			})
		}
	}
	for t := range w.lists {
		w.lists[t].Each(func(_ ecs.EntityID, e Entity) {
			e.Tick()
		})
	}
	for t := range w.lists {
		w.lists[t].Each(func(_ ecs.EntityID, e Entity) {
			e.TickDeferred()
			e.Base().SnapTicks++
		})
	}

	w.RemoveEntities()
	w.revertTimedSwitches()
	w.OnModified()
}

// revertTimedSwitches flips timed switches whose time ran out.
func (w *GameWorld) revertTimedSwitches() {
	for i := range w.core.Switchers {
		s := &w.core.Switchers[i]
		for team := range s.Status {
			if s.EndTick[team] == 0 || s.EndTick[team] > w.GameTick {
				continue
			}
			switch s.Type[team] {
			case collision.TileSwitchTimedOpen:
				s.Status[team] = false
				s.Type[team] = collision.TileSwitchClose
			case collision.TileSwitchTimedClose:
				s.Status[team] = true
				s.Type[team] = collision.TileSwitchOpen
			default:
				continue
			}
			s.EndTick[team] = 0
		}
	}
}

// FindEntities returns up to max entities of type t whose proximity circle
// overlaps the circle at pos.
func (w *GameWorld) FindEntities(pos vmath.Vec2, radius float32, max int, t EntityType) []Entity {
	var out []Entity
	w.lists[t].Each(func(_ ecs.EntityID, e Entity) {
		if len(out) >= max {
			return
		}
		b := e.Base()
		if vmath.Distance(b.Pos, pos) < radius+b.ProximityRadius {
			out = append(out, e)
		}
	})
	return out
}

// IntersectCharacter returns the character closest to p0 whose body the
// segment p0-p1 passes within radius of, and the closest point on the
// segment. notThis is skipped; when thisOnly is set only it is tested.
// collideWith filters by team collision unless it is -1.
func (w *GameWorld) IntersectCharacter(p0, p1 vmath.Vec2, radius float32, notThis *Character, collideWith int, thisOnly *Character) (*Character, vmath.Vec2) {
	closestLen := vmath.Distance(p0, p1) * 100
	var closest *Character
	var hitPos vmath.Vec2

	w.lists[EntityCharacter].Each(func(_ ecs.EntityID, e Entity) {
		c := e.(*Character)
		if c == notThis || (thisOnly != nil && c != thisOnly) {
			return
		}
		if collideWith != -1 && !c.CanCollide(collideWith) {
			return
		}
		p, ok := vmath.ClosestPointOnLine(p0, p1, c.Pos)
		if !ok {
			return
		}
		if vmath.Distance(c.Pos, p) < c.ProximityRadius+radius {
			l := vmath.Distance(p0, p)
			if l < closestLen {
				hitPos = p
				closestLen = l
				closest = c
			}
		}
	})
	return closest, hitPos
}

// IntersectedCharacters returns every character within radius of the
// segment p0-p1 except notThis.
func (w *GameWorld) IntersectedCharacters(p0, p1 vmath.Vec2, radius float32, notThis *Character) []*Character {
	var out []*Character
	w.lists[EntityCharacter].Each(func(_ ecs.EntityID, e Entity) {
		c := e.(*Character)
		if c == notThis {
			return
		}
		p, ok := vmath.ClosestPointOnLine(p0, p1, c.Pos)
		if ok && vmath.Distance(c.Pos, p) < c.ProximityRadius+radius {
			out = append(out, c)
		}
	})
	return out
}

// ReleaseHooked makes every non super character let go of id.
func (w *GameWorld) ReleaseHooked(id int) {
	w.lists[EntityCharacter].Each(func(_ ecs.EntityID, e Entity) {
		c := e.(*Character)
		if c.Core.HookedPlayer == id && !c.IsSuper() {
			c.ReleaseHook()
		}
	})
}

// GetEntity returns the entity of type t with snapshot id, or nil.
func (w *GameWorld) GetEntity(id int, t EntityType) Entity {
	var found Entity
	w.lists[t].Each(func(_ ecs.EntityID, e Entity) {
		if found == nil && e.Base().ID == id {
			found = e
		}
	})
	return found
}

// GetCharacterByID returns the character of client id, or nil.
func (w *GameWorld) GetCharacterByID(id int) *Character {
	if id < 0 || id >= protocol.MaxClients {
		return nil
	}
	return w.characters[id]
}

func (w *GameWorld) NumCharacters() int { return w.lists[EntityCharacter].Len() }

// IsLocalTeam reports whether owner can interact with the local player.
// Entities without an owner always can.
func (w *GameWorld) IsLocalTeam(owner int) bool {
	return owner < 0 || w.teams.CanCollide(w.localClientID, owner)
}

const (
	explosionRadius      = 135
	explosionInnerRadius = 48
)

// CreateExplosion pushes every character in range away from pos. The
// strength falls off linearly outside the inner radius. activatedTeam
// limits ownerless explosions to one team; mask limits the characters hit.
func (w *GameWorld) CreateExplosion(pos vmath.Vec2, owner, weapon int, noDamage bool, activatedTeam int, mask uint64) {
	if owner < 0 && w.Config.IsSolo && !(weapon == protocol.WeaponShotgun && w.Config.IsDDRace) {
		return
	}

	if w.Events != nil {
		event.Emit(w.Events, event.Explosion{
			Pos: pos, Owner: owner, Weapon: weapon, NoDamage: noDamage, ActivatedTeam: activatedTeam, Tick: w.GameTick,
		})
	}

	ownerChar := w.GetCharacterByID(owner)
	strength := w.Tuning.ExplosionStrength.Float()
	if ownerChar != nil {
		strength = ownerChar.CurrentTuning().ExplosionStrength.Float()
	}

	for _, e := range w.FindEntities(pos, explosionRadius, protocol.MaxClients, EntityCharacter) {
		c := e.(*Character)
		if id := c.ID; id >= 0 && id < 64 && mask&(1<<uint(id)) == 0 {
			continue
		}

		diff := c.Pos.Sub(pos)
		forceDir := vmath.V(0, 1)
		l := diff.Length()
		if l != 0 {
			forceDir = diff.Normalize()
		}
		l = 1 - vmath.Clamp((l-explosionInnerRadius)/(explosionRadius-explosionInnerRadius), 0, 1)
		dmg := strength * l
		if int(dmg) == 0 {
			continue
		}

		var canHit bool
		if ownerChar != nil {
			canHit = !ownerChar.Core.GrenadeHitDisabled
		} else {
			canHit = w.Config.Hit || noDamage
		}
		if !canHit && owner != c.ID {
			continue
		}
		if owner != -1 && !c.CanCollide(owner) {
			continue
		}
		if owner == -1 && activatedTeam != -1 && c.Team() != activatedTeam {
			continue
		}

		c.TakeDamage(forceDir.Scale(dmg * 2))

		if ownerChar != nil {
			if ownerChar.Core.GrenadeHitDisabled {
				break
			}
		} else if !w.Config.Hit || noDamage {
			break
		}
	}
}

// Clear removes every entity.
func (w *GameWorld) Clear() {
	for t := range w.lists {
		w.lists[t].Each(func(_ ecs.EntityID, e Entity) {
			w.RemoveEntity(e)
			e.Destroy()
		})
	}
	w.OnModified()
}

// OnModified invalidates every copy made from this world.
func (w *GameWorld) OnModified() {
	w.version++
}

// Version changes whenever the world changes.
func (w *GameWorld) Version() uint64 { return w.version }

func (w *GameWorld) emitSound(pos vmath.Vec2, sound int) {
	if w.Events != nil {
		event.Emit(w.Events, event.Sound{Pos: pos, Sound: sound, Tick: w.GameTick})
	}
}
