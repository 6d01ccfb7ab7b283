package prediction

import (
	"testing"

	"github.com/ddnetgo/predict/internal/collision"
	"github.com/ddnetgo/predict/internal/core/event"
	"github.com/ddnetgo/predict/internal/gamecore"
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/tuning"
	"github.com/ddnetgo/predict/internal/vmath"
	"github.com/pixil98/go-testutil"
)

func TestDoor_CarveAndRestore(t *testing.T) {
	tests := map[string]struct {
		claimed   map[int]collision.DoorTile
		expCarved []int
	}{
		"free row": {
			expCarved: []int{11, 12, 13, 14, 15},
		},
		"tile of another door": {
			claimed:   map[int]collision.DoorTile{13: {Index: collision.TileStopA, Number: 2}},
			expCarved: []int{11, 12, 14, 15},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := newTestWorld(t, boxLayers(10, 10))
			col := w.Collision()
			for idx, d := range tt.claimed {
				col.SetDoorTile(idx, d)
			}

			w.NetObjBegin(gamecore.Teams{}, 0)
			w.NetObjAdd(3, &protocol.DDNetLaser{
				ToX: 48, ToY: 48, FromX: 176, FromY: 48,
				Owner: -1, Type: protocol.LaserTypeDoor,
			}, nil)
			w.NetObjEnd()

			door, ok := w.GetEntity(3, EntityDoor).(*Door)
			if !ok {
				t.Fatalf("door not inserted")
			}
			testutil.AssertEqual(t, "carved", door.Carved(), tt.expCarved)
			for _, idx := range tt.expCarved {
				testutil.AssertEqual(t, "door tile", int(col.GetDoorTile(idx).Index), collision.TileStopA)
			}

			// copies share the map and leave it alone
			cp := NewGameWorld(nil, DefaultConfig())
			cp.CopyWorld(w)
			cp.Clear()
			testutil.AssertEqual(t, "still carved", int(col.GetDoorTile(11).Index), collision.TileStopA)

			w.NetObjBegin(gamecore.Teams{}, 0)
			w.NetObjEnd()
			testutil.AssertEqual(t, "doors", w.NumEntities(EntityDoor), 0)
			for _, idx := range tt.expCarved {
				testutil.AssertEqual(t, "restored", col.GetDoorTile(idx).Index, uint8(0))
			}
			for idx, d := range tt.claimed {
				testutil.AssertEqual(t, "other door kept", col.GetDoorTile(idx), d)
			}
		})
	}
}

func TestDoor_OverlappingDoors(t *testing.T) {
	doorA := &protocol.DDNetLaser{ToX: 48, ToY: 48, FromX: 176, FromY: 48, Owner: -1, Type: protocol.LaserTypeDoor}
	doorB := &protocol.DDNetLaser{ToX: 80, ToY: 48, FromX: 240, FromY: 48, Owner: -1, Type: protocol.LaserTypeDoor}

	tests := map[string]struct {
		firstGone  int
		expShared  []int
		expCleared []int
	}{
		"older door goes first": {
			firstGone:  3,
			expShared:  []int{12, 13, 14, 15},
			expCleared: []int{11},
		},
		"newer door goes first": {
			firstGone:  4,
			expShared:  []int{12, 13, 14, 15},
			expCleared: []int{16, 17},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := newTestWorld(t, boxLayers(10, 10))
			col := w.Collision()
			objs := map[int]*protocol.DDNetLaser{3: doorA, 4: doorB}

			w.NetObjBegin(gamecore.Teams{}, 0)
			w.NetObjAdd(3, doorA, nil)
			w.NetObjAdd(4, doorB, nil)
			w.NetObjEnd()
			for _, idx := range tt.expShared {
				testutil.AssertEqual(t, "claims", col.DoorClaims(idx), 2)
			}

			w.NetObjBegin(gamecore.Teams{}, 0)
			for id, obj := range objs {
				if id != tt.firstGone {
					w.NetObjAdd(id, obj, nil)
				}
			}
			w.NetObjEnd()
			testutil.AssertEqual(t, "doors", w.NumEntities(EntityDoor), 1)
			for _, idx := range tt.expShared {
				testutil.AssertEqual(t, "still carved", int(col.GetDoorTile(idx).Index), collision.TileStopA)
			}
			for _, idx := range tt.expCleared {
				testutil.AssertEqual(t, "released", col.GetDoorTile(idx), collision.DoorTile{})
			}

			w.NetObjBegin(gamecore.Teams{}, 0)
			w.NetObjEnd()
			for idx := 11; idx <= 17; idx++ {
				testutil.AssertEqual(t, "air", col.GetDoorTile(idx), collision.DoorTile{})
				testutil.AssertEqual(t, "no claims", col.DoorClaims(idx), 0)
			}
		})
	}
}

func TestLaser_Bounces(t *testing.T) {
	tests := map[string]struct {
		bounceNum  float32
		expBounces int
	}{
		"bounce limit": {
			bounceNum:  1,
			expBounces: 2,
		},
		"energy runs out": {
			bounceNum:  1000,
			expBounces: 3,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := newTestWorld(t, boxLayers(10, 10))
			p := tuning.Default()
			p.LaserBounceNum = tuning.NewParam(tt.bounceNum)
			w.SetTuningZone(0, p)
			w.GameTick = 1

			l := NewLaser(w, vmath.V(160, 160), vmath.V(1, 0), 800, -1, protocol.WeaponLaser)
			testutil.AssertEqual(t, "first bounce", l.Bounces, 1)
			testutil.AssertEqual(t, "reflected", l.Dir, vmath.V(-1, 0))

			for i := 0; i < 80 && w.NumEntities(EntityLaser) > 0; i++ {
				w.GameTick++
				w.Tick()
			}
			testutil.AssertEqual(t, "lasers", w.NumEntities(EntityLaser), 0)
			testutil.AssertEqual(t, "bounces", l.Bounces, tt.expBounces)
		})
	}
}

func TestLaser_UnfreezesCharacter(t *testing.T) {
	w := newTestWorld(t, boxLayers(20, 10))
	w.GameTick = 100
	c := addCharacter(w, 1, 300, 160)
	c.FreezeTime = 100

	NewLaser(w, vmath.V(100, 160), vmath.V(1, 0), 800, -1, protocol.WeaponLaser)
	testutil.AssertEqual(t, "freeze", c.FreezeTime, 0)
}

func TestLaser_BouncedSelfHit(t *testing.T) {
	tests := map[string]struct {
		hit       bool
		expFreeze int
	}{
		"hit enabled": {
			hit:       true,
			expFreeze: 0,
		},
		"hit disabled": {
			hit:       false,
			expFreeze: 100,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := newTestWorld(t, boxLayers(20, 10))
			w.Config.Hit = tt.hit
			w.GameTick = 100
			c := addCharacter(w, 1, 400, 160)
			c.FreezeTime = 100

			l := NewLaser(w, vmath.V(400, 160), vmath.V(1, 0), 800, 1, protocol.WeaponLaser)
			testutil.AssertEqual(t, "bounced off the wall", l.Bounces, 1)
			testutil.AssertEqual(t, "owner skipped before the bounce", c.FreezeTime, 100)

			l.DoBounce()
			testutil.AssertEqual(t, "freeze", c.FreezeTime, tt.expFreeze)
		})
	}
}

func TestProjectile_HitsWall(t *testing.T) {
	tests := map[string]struct {
		weapon        int
		explosive     bool
		expExplosions int
	}{
		"gun": {
			weapon: protocol.WeaponGun,
		},
		"grenade": {
			weapon:        protocol.WeaponGrenade,
			explosive:     true,
			expExplosions: 1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := newTestWorld(t, boxLayers(10, 10))
			w.Events = event.NewBus()
			var explosions []event.Explosion
			event.Subscribe(w.Events, func(e event.Explosion) { explosions = append(explosions, e) })

			w.GameTick = 1
			NewProjectile(w, tt.weapon, -1, vmath.V(200, 160), vmath.V(1, 0), 100, false, tt.explosive, 0)
			for i := 0; i < 30 && w.NumEntities(EntityProjectile) > 0; i++ {
				w.GameTick++
				w.Tick()
			}
			w.Events.SwapBuffers()
			w.Events.DispatchAll()

			testutil.AssertEqual(t, "projectiles", w.NumEntities(EntityProjectile), 0)
			testutil.AssertEqual(t, "explosions", len(explosions), tt.expExplosions)
			for _, e := range explosions {
				testutil.AssertEqual(t, "weapon", e.Weapon, tt.weapon)
			}
		})
	}
}

func TestPickup_Apply(t *testing.T) {
	tests := map[string]struct {
		give      []int
		active    int
		typ       int
		subtype   int
		expGot    map[int]bool
		expActive int
	}{
		"weapon": {
			active:    protocol.WeaponGun,
			typ:       protocol.PowerupWeapon,
			subtype:   protocol.WeaponShotgun,
			expGot:    map[int]bool{protocol.WeaponShotgun: true},
			expActive: protocol.WeaponGun,
		},
		"armor": {
			give:      []int{protocol.WeaponShotgun, protocol.WeaponGrenade},
			active:    protocol.WeaponShotgun,
			typ:       protocol.PowerupArmor,
			expGot:    map[int]bool{protocol.WeaponShotgun: false, protocol.WeaponGrenade: false},
			expActive: protocol.WeaponHammer,
		},
		"shotgun armor": {
			give:      []int{protocol.WeaponShotgun, protocol.WeaponGrenade},
			active:    protocol.WeaponGrenade,
			typ:       protocol.PowerupArmorShotgun,
			expGot:    map[int]bool{protocol.WeaponShotgun: false, protocol.WeaponGrenade: true},
			expActive: protocol.WeaponGrenade,
		},
		"ninja": {
			active:    protocol.WeaponGun,
			typ:       protocol.PowerupNinja,
			expGot:    map[int]bool{protocol.WeaponNinja: true},
			expActive: protocol.WeaponNinja,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := newTestWorld(t, boxLayers(10, 10))
			c := addCharacter(w, 0, 160, 160)
			for _, wp := range tt.give {
				c.Core.Weapons[wp].Got = true
			}
			c.Core.ActiveWeapon = tt.active

			p := newPickupFromData(w, 1, &protocol.PickupData{Pos: c.Pos, Type: tt.typ, Subtype: tt.subtype})
			w.InsertEntity(p, true)
			p.Tick()

			for wp, got := range tt.expGot {
				testutil.AssertEqual(t, "weapon got", c.WeaponGot(wp), got)
			}
			testutil.AssertEqual(t, "active", c.ActiveWeapon(), tt.expActive)
		})
	}
}

func TestDragger_Pull(t *testing.T) {
	tests := map[string]struct {
		blocked   bool
		expTarget int
		expVel    vmath.Vec2
	}{
		"reachable": {
			expTarget: 0,
			expVel:    vmath.V(-2, 0),
		},
		"behind a wall": {
			blocked:   true,
			expTarget: -1,
			expVel:    vmath.Vec2{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l := boxLayers(20, 10)
			if tt.blocked {
				l.Game[5*20+7].Index = collision.TileSolid
			}
			w := newTestWorld(t, l)
			c := addCharacter(w, 0, 300, 176)

			g := newDraggerFromData(w, 1, &protocol.LaserData{
				From: vmath.V(160, 176), To: vmath.V(160, 176),
				Owner: -1, Type: protocol.LaserTypeDragger, Subtype: protocol.DraggerTypeNormal,
			})
			w.InsertEntity(g, false)
			g.Tick()

			testutil.AssertEqual(t, "strength", g.Strength, float32(2))
			testutil.AssertEqual(t, "target", g.TargetID, tt.expTarget)
			testutil.AssertEqual(t, "vel", c.Core.Vel, tt.expVel)
		})
	}
}

func TestPlasma_FreezesTarget(t *testing.T) {
	w := newTestWorld(t, boxLayers(20, 10))
	w.GameTick = 100
	c := addCharacter(w, 0, 200, 160)

	p := newPlasmaFromData(w, 1, &protocol.LaserData{
		From: vmath.V(100, 160), To: vmath.V(100, 160), StartTick: 100,
		Owner: 0, Type: protocol.LaserTypePlasma, Subtype: protocol.GunTypeFreeze,
	})
	w.InsertEntity(p, false)
	testutil.AssertEqual(t, "direction", p.Core, vmath.V(1, 0))

	for i := 0; i < 50 && !p.MarkedForDestroy; i++ {
		p.Tick()
	}
	testutil.AssertEqual(t, "destroyed", p.MarkedForDestroy, true)
	testutil.AssertEqual(t, "frozen", c.FreezeTime, w.Config.FreezeDelay*w.GameTickSpeed())
}

func switchLayers() collision.Layers {
	l := boxLayers(10, 10)
	l.Switch = make([]collision.SwitchTile, 100)
	l.Switch[55] = collision.SwitchTile{Number: 1, Type: collision.TileSwitchOpen}
	return l
}

func TestTargetSwitch_GetHit(t *testing.T) {
	tests := map[string]struct {
		typ       int
		delay     int
		flags     int
		initial   bool
		expHit    bool
		expStatus bool
		expType   int
		expEnd    int
	}{
		"open": {
			typ:       protocol.TargetSwitchOpen,
			expHit:    true,
			expStatus: true,
			expType:   collision.TileSwitchOpen,
		},
		"close": {
			typ:       protocol.TargetSwitchClose,
			initial:   true,
			expHit:    true,
			expStatus: false,
			expType:   collision.TileSwitchClose,
		},
		"alternate": {
			typ:       protocol.TargetSwitchAlternate,
			initial:   true,
			expHit:    true,
			expStatus: false,
			expType:   collision.TileSwitchClose,
		},
		"timed open": {
			typ:       protocol.TargetSwitchOpen,
			delay:     2,
			expHit:    true,
			expStatus: true,
			expType:   collision.TileSwitchTimedOpen,
			expEnd:    10 + 1 + 2*protocol.TickSpeed,
		},
		"not predicted": {
			typ:       protocol.TargetSwitchOpen,
			flags:     protocol.TargetSwitchFlagNoPredict,
			expHit:    false,
			expStatus: false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := newTestWorld(t, switchLayers())
			w.Switchers()[1].Status[0] = tt.initial

			s := newTargetSwitchFromObj(w, 1, &protocol.TargetSwitch{
				X: 160, Y: 160, Type: int32(tt.typ), SwitchNumber: 1,
				SwitchDelay: int32(tt.delay), Flags: int32(tt.flags),
			})
			w.InsertEntity(s, true)

			testutil.AssertEqual(t, "hit", s.GetHit(0, 10), tt.expHit)
			sw := w.Switchers()[1]
			testutil.AssertEqual(t, "status", sw.Status[0], tt.expStatus)
			if tt.expHit {
				testutil.AssertEqual(t, "type", sw.Type[0], tt.expType)
				testutil.AssertEqual(t, "end tick", sw.EndTick[0], tt.expEnd)
			}
		})
	}
}

func TestTargetSwitch_TimedRevert(t *testing.T) {
	w := newTestWorld(t, switchLayers())
	w.Switchers()[1].Status[0] = false
	s := newTargetSwitchFromObj(w, 1, &protocol.TargetSwitch{
		X: 160, Y: 160, Type: protocol.TargetSwitchOpen, SwitchNumber: 1, SwitchDelay: 1,
	})
	w.InsertEntity(s, true)
	s.GetHit(0, 10)

	w.GameTick = 60
	w.Tick()
	testutil.AssertEqual(t, "still open", w.Switchers()[1].Status[0], true)

	w.GameTick = 61
	w.Tick()
	testutil.AssertEqual(t, "closed again", w.Switchers()[1].Status[0], false)
	testutil.AssertEqual(t, "type", w.Switchers()[1].Type[0], collision.TileSwitchClose)
}
