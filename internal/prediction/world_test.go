package prediction

import (
	"testing"

	"github.com/ddnetgo/predict/internal/collision"
	"github.com/ddnetgo/predict/internal/gamecore"
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/vmath"
	"github.com/pixil98/go-testutil"
)

// boxLayers returns a w x h map with a solid border.
func boxLayers(w, h int) collision.Layers {
	l := collision.Layers{Width: w, Height: h, Game: make([]collision.Tile, w*h)}
	for x := 0; x < w; x++ {
		l.Game[x].Index = collision.TileSolid
		l.Game[(h-1)*w+x].Index = collision.TileSolid
	}
	for y := 0; y < h; y++ {
		l.Game[y*w].Index = collision.TileSolid
		l.Game[y*w+w-1].Index = collision.TileSolid
	}
	return l
}

func newTestWorld(t *testing.T, l collision.Layers) *GameWorld {
	t.Helper()
	col, err := collision.New(l)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewGameWorld(col, DefaultConfig())
}

func charObj(x, y int32) *protocol.Character {
	return &protocol.Character{
		CharacterCore: protocol.CharacterCore{X: x, Y: y, HookedPlayer: -1},
		Weapon:        protocol.WeaponGun,
		AmmoCount:     10,
	}
}

func addCharacter(w *GameWorld, id int, x, y int32) *Character {
	c := NewCharacter(w, id, charObj(x, y), nil)
	w.InsertEntity(c, false)
	return c
}

func ids(w *GameWorld, t EntityType) []int {
	var out []int
	for _, e := range w.Entities(t) {
		out = append(out, e.Base().ID)
	}
	return out
}

func TestGameWorld_InsertOrder(t *testing.T) {
	w := newTestWorld(t, boxLayers(10, 10))
	addCharacter(w, 1, 100, 100)
	addCharacter(w, 2, 150, 100)
	w.InsertEntity(newPickupFromData(w, 7, &protocol.PickupData{Pos: vmath.V(50, 50)}), true)
	w.InsertEntity(newPickupFromData(w, 8, &protocol.PickupData{Pos: vmath.V(60, 50)}), true)

	testutil.AssertEqual(t, "characters", ids(w, EntityCharacter), []int{2, 1})
	testutil.AssertEqual(t, "pickups", ids(w, EntityPickup), []int{7, 8})
	testutil.AssertEqual(t, "count", w.NumCharacters(), 2)
}

func TestGameWorld_CopyWorld(t *testing.T) {
	src := newTestWorld(t, boxLayers(10, 10))
	src.GameTick = 100
	addCharacter(src, 1, 100, 100)
	addCharacter(src, 2, 200, 100)
	src.InsertEntity(newPickupFromData(src, 7, &protocol.PickupData{Pos: vmath.V(50, 50)}), true)

	a := NewGameWorld(nil, DefaultConfig())
	a.CopyWorld(src)
	testutil.AssertEqual(t, "valid after copy", a.IsValidCopy(), true)
	testutil.AssertEqual(t, "characters", ids(a, EntityCharacter), ids(src, EntityCharacter))
	testutil.AssertEqual(t, "pickups", ids(a, EntityPickup), ids(src, EntityPickup))
	testutil.AssertEqual(t, "tick", a.GameTick, 100)
	testutil.AssertEqual(t, "checksum", a.Checksum(), src.Checksum())

	for _, e := range a.Entities(EntityCharacter) {
		if e.Base().Parent() == nil {
			t.Fatalf("copied entity %d has no parent", e.Base().ID)
		}
	}

	b := NewGameWorld(nil, DefaultConfig())
	b.CopyWorld(src)
	testutil.AssertEqual(t, "older copy invalidated", a.IsValidCopy(), false)
	testutil.AssertEqual(t, "newer copy valid", b.IsValidCopy(), true)

	src.GameTick++
	src.Tick()
	testutil.AssertEqual(t, "copy invalid after parent tick", b.IsValidCopy(), false)
}

func TestGameWorld_CopiesSimulateIdentically(t *testing.T) {
	src := newTestWorld(t, boxLayers(12, 12))
	src.GameTick = 50
	addCharacter(src, 0, 120, 100)
	addCharacter(src, 1, 200, 100)

	a := NewGameWorld(nil, DefaultConfig())
	b := NewGameWorld(nil, DefaultConfig())
	a.CopyWorld(src)
	b.CopyWorld(src)

	for i := 0; i < 20; i++ {
		a.GameTick++
		a.Tick()
		b.GameTick++
		b.Tick()
	}
	testutil.AssertEqual(t, "checksum", a.Checksum(), b.Checksum())
	if a.Checksum() == src.Checksum() {
		t.Fatalf("expected the copies to move away from the source")
	}
}

func TestGameWorld_DestroyTickPropagates(t *testing.T) {
	src := newTestWorld(t, boxLayers(10, 10))
	src.GameTick = 10
	src.InsertEntity(newPickupFromData(src, 3, &protocol.PickupData{Pos: vmath.V(50, 50)}), true)

	cp := NewGameWorld(nil, DefaultConfig())
	cp.CopyWorld(src)
	cp.GameTick = 12
	cp.DestroyEntity(cp.Entities(EntityPickup)[0])
	cp.RemoveEntities()

	testutil.AssertEqual(t, "destroy tick", src.Entities(EntityPickup)[0].Base().DestroyTick, 12)
	testutil.AssertEqual(t, "copy emptied", cp.NumEntities(EntityPickup), 0)
}

func TestNetObj_Reconciliation(t *testing.T) {
	w := newTestWorld(t, boxLayers(10, 10))

	w.NetObjBegin(gamecore.Teams{}, 0)
	w.NetCharAdd(0, charObj(100, 100), nil, 0, true)
	w.NetCharAdd(1, charObj(200, 100), nil, 0, false)
	w.NetObjAdd(4, &protocol.DDNetPickup{X: 50, Y: 50, Type: protocol.PowerupWeapon, Subtype: protocol.WeaponShotgun}, nil)
	w.NetObjEnd()

	testutil.AssertEqual(t, "characters", w.NumCharacters(), 2)
	testutil.AssertEqual(t, "pickups", w.NumEntities(EntityPickup), 1)
	first := w.GetCharacterByID(0)
	testutil.AssertEqual(t, "local", first.IsLocal, true)

	w.NetObjBegin(gamecore.Teams{}, 0)
	w.NetCharAdd(0, charObj(110, 100), nil, 0, true)
	w.NetObjAdd(4, &protocol.DDNetPickup{X: 51, Y: 50, Type: protocol.PowerupWeapon, Subtype: protocol.WeaponShotgun}, nil)
	w.NetObjEnd()

	testutil.AssertEqual(t, "characters", w.NumCharacters(), 1)
	testutil.AssertEqual(t, "same character kept", w.GetCharacterByID(0) == first, true)
	testutil.AssertEqual(t, "character read", w.GetCharacterByID(0).Pos, vmath.V(110, 100))
	testutil.AssertEqual(t, "pickup moved", w.Entities(EntityPickup)[0].Base().Pos, vmath.V(51, 50))
	testutil.AssertEqual(t, "removed character", w.GetCharacterByID(1) == nil, true)
}

func TestNetObj_KeepHooked(t *testing.T) {
	w := newTestWorld(t, boxLayers(20, 20))

	hooker := charObj(100, 100)
	hooker.HookedPlayer = 1
	hooker.HookState = gamecore.HookGrabbed
	hooker.HookX, hooker.HookY = 300, 120

	w.NetObjBegin(gamecore.Teams{}, 0)
	w.NetCharAdd(1, charObj(300, 100), nil, 0, false)
	w.NetCharAdd(0, hooker, nil, 0, true)
	w.NetObjEnd()

	// character 1 leaves the snapshot while still hooked
	w.NetObjBegin(gamecore.Teams{}, 0)
	w.NetCharAdd(0, hooker, nil, 0, true)
	w.NetObjEnd()

	hooked := w.GetCharacterByID(1)
	if hooked == nil {
		t.Fatalf("hooked character was removed")
	}
	testutil.AssertEqual(t, "keep hooked", hooked.KeepHooked, true)
	testutil.AssertEqual(t, "pos", hooked.Pos, vmath.V(300, 120))
	testutil.AssertEqual(t, "core pos", hooked.Core.Pos, vmath.V(300, 120))
	testutil.AssertEqual(t, "vel", hooked.Core.Vel, vmath.Vec2{})

	// once the hook is gone the character goes too
	free := charObj(100, 100)
	w.NetObjBegin(gamecore.Teams{}, 0)
	w.NetCharAdd(0, free, nil, 0, true)
	w.NetObjEnd()
	testutil.AssertEqual(t, "removed", w.GetCharacterByID(1) == nil, true)
	testutil.AssertEqual(t, "hook released", w.GetCharacterByID(0).Core.HookedPlayer, -1)
}

func TestNetObj_ProjectileOwner(t *testing.T) {
	tests := map[string]struct {
		second    vmath.Vec2
		startTick int
		expOwner  int
	}{
		"single shooter": {
			second:    vmath.V(400, 100),
			startTick: 100,
			expOwner:  0,
		},
		"clearly closer": {
			second:    vmath.V(110, 100),
			startTick: 100,
			expOwner:  0,
		},
		"ambiguous": {
			second:    vmath.V(101, 100),
			startTick: 100,
			expOwner:  -1,
		},
		"too old": {
			second:    vmath.V(400, 100),
			startTick: 90,
			expOwner:  -1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := newTestWorld(t, boxLayers(20, 10))
			w.GameTick = 100

			w.NetObjBegin(gamecore.Teams{}, 0)
			w.NetCharAdd(0, charObj(100, 100), nil, 0, true)
			w.NetCharAdd(1, charObj(int32(tt.second.X), int32(tt.second.Y)), nil, 0, false)
			launch := int32(100 + gamecore.PhysicalSize*0.75)
			w.NetObjAdd(9, &protocol.Projectile{
				X: launch, Y: 100, VelX: 100, VelY: 0,
				Type: protocol.WeaponGun, StartTick: int32(tt.startTick),
			}, nil)
			w.NetObjEnd()

			p, ok := w.GetEntity(9, EntityProjectile).(*Projectile)
			if !ok {
				t.Fatalf("projectile not inserted")
			}
			testutil.AssertEqual(t, "owner", p.Owner, tt.expOwner)
		})
	}
}

func TestNetObj_AdoptsLocalProjectile(t *testing.T) {
	w := newTestWorld(t, boxLayers(20, 10))
	w.GameTick = 100
	local := NewProjectile(w, protocol.WeaponGun, 0, vmath.V(120, 100), vmath.V(1, 0), 100, false, false, 0)

	w.NetObjBegin(gamecore.Teams{}, 0)
	w.NetObjAdd(5, &protocol.Projectile{X: 120, Y: 100, VelX: 100, Type: protocol.WeaponGun, StartTick: 100}, nil)
	w.NetObjEnd()

	testutil.AssertEqual(t, "count", w.NumEntities(EntityProjectile), 1)
	testutil.AssertEqual(t, "adopted id", local.ID, 5)
}

func TestCreateExplosion(t *testing.T) {
	tests := map[string]struct {
		offset vmath.Vec2
		mask   uint64
		expVel vmath.Vec2
	}{
		"centered": {
			offset: vmath.Vec2{},
			mask:   MaskAll,
			expVel: vmath.V(0, 12),
		},
		"left of the character": {
			offset: vmath.V(-10, 0),
			mask:   MaskAll,
			expVel: vmath.V(12, 0),
		},
		"out of range": {
			offset: vmath.V(-200, 0),
			mask:   MaskAll,
			expVel: vmath.Vec2{},
		},
		"masked out": {
			offset: vmath.Vec2{},
			mask:   0,
			expVel: vmath.Vec2{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := newTestWorld(t, boxLayers(20, 20))
			c := addCharacter(w, 0, 300, 300)
			w.CreateExplosion(c.Pos.Add(tt.offset), -1, protocol.WeaponGrenade, false, -1, tt.mask)
			testutil.AssertEqual(t, "vel", c.Core.Vel, tt.expVel)
		})
	}
}
