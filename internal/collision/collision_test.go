package collision

import (
	"testing"

	"github.com/ddnetgo/predict/internal/vmath"
	"github.com/pixil98/go-testutil"
)

// boxMap returns a w x h map with a solid border.
func boxMap(w, h int) Layers {
	l := Layers{Width: w, Height: h, Game: make([]Tile, w*h)}
	for x := 0; x < w; x++ {
		l.Game[x].Index = TileSolid
		l.Game[(h-1)*w+x].Index = TileSolid
	}
	for y := 0; y < h; y++ {
		l.Game[y*w].Index = TileSolid
		l.Game[y*w+w-1].Index = TileSolid
	}
	return l
}

func mustNew(t *testing.T, l Layers) *Collision {
	t.Helper()
	c, err := New(l)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := map[string]struct {
		layers Layers
		expErr string
	}{
		"zero size": {
			layers: Layers{},
			expErr: "invalid map size 0x0",
		},
		"short game layer": {
			layers: Layers{Width: 2, Height: 2, Game: make([]Tile, 3)},
			expErr: "game layer: got 3 tiles, want 4",
		},
		"short optional layer": {
			layers: Layers{Width: 2, Height: 2, Game: make([]Tile, 4), Tele: make([]TeleTile, 1)},
			expErr: "tele layer: got 1 tiles, want 4",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New(tt.layers)
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestNew_SwitchesAndTele(t *testing.T) {
	l := boxMap(4, 4)
	l.Switch = make([]SwitchTile, 16)
	l.Switch[5] = SwitchTile{Number: 3, Type: TileSwitchOpen}
	l.Switch[6] = SwitchTile{Number: 7, Type: TileSolid}
	l.Tele = make([]TeleTile, 16)
	l.Tele[9] = TeleTile{Number: 2, Type: TileTeleOut}
	c := mustNew(t, l)

	testutil.AssertEqual(t, "highest switch", c.HighestSwitchNumber(), 7)
	testutil.AssertEqual(t, "kept type", c.GetSwitchType(5), TileSwitchOpen)
	testutil.AssertEqual(t, "sanitized type", c.GetSwitchType(6), 0)
	testutil.AssertEqual(t, "number of sanitized", c.GetSwitchNumber(6), 0)
	testutil.AssertEqual(t, "door slot number", c.RawDoorTile(5).Number, 3)
	testutil.AssertEqual(t, "tele outs", len(c.TeleOuts(1)), 1)
	testutil.AssertEqual(t, "tele out pos", c.TeleOuts(1)[0], vmath.V(48, 80))
}

func TestGetTile(t *testing.T) {
	l := boxMap(4, 4)
	l.Game[5].Index = TileFreeze
	l.Game[6].Index = TileNoHook
	c := mustNew(t, l)

	testutil.AssertEqual(t, "border", c.GetTile(0, 0), TileSolid)
	testutil.AssertEqual(t, "freeze is not collision", c.GetTile(40, 40), 0)
	testutil.AssertEqual(t, "nohook", c.GetTile(70, 40), TileNoHook)
	testutil.AssertEqual(t, "clamped", c.GetTile(-500, 40), TileSolid)
	testutil.AssertEqual(t, "nohook is solid", c.IsSolid(70, 40), true)
}

func TestIntersectLine(t *testing.T) {
	c := mustNew(t, boxMap(10, 10))

	h := c.IntersectLine(vmath.V(160, 160), vmath.V(160, 400))
	testutil.AssertEqual(t, "tile", h.Tile, TileSolid)
	testutil.AssertEqual(t, "in wall", h.At.Y >= 288, true)
	testutil.AssertEqual(t, "before wall", h.Before.Y < 288, true)

	h = c.IntersectLine(vmath.V(100, 100), vmath.V(200, 200))
	testutil.AssertEqual(t, "miss", h.Tile, 0)
	testutil.AssertEqual(t, "miss end", h.At, vmath.V(200, 200))
}

func TestMoveBox_Lands(t *testing.T) {
	c := mustNew(t, boxMap(10, 10))

	pos := vmath.V(160, 270)
	vel := vmath.V(0, 10)
	c.MoveBox(&pos, &vel, vmath.V(28, 28), vmath.Vec2{})

	testutil.AssertEqual(t, "vertical velocity stopped", vel.Y, float32(0))
	testutil.AssertEqual(t, "resting above floor", pos.Y <= 288-14, true)
}

func TestMovePoint_Bounces(t *testing.T) {
	c := mustNew(t, boxMap(10, 10))

	pos := vmath.V(280, 160)
	vel := vmath.V(20, 0)
	bounces := c.MovePoint(&pos, &vel, 1)

	testutil.AssertEqual(t, "bounces", bounces, 1)
	testutil.AssertEqual(t, "reflected", vel, vmath.V(-20, 0))
	testutil.AssertEqual(t, "position kept", pos, vmath.V(280, 160))
}

func TestGetMoveRestrictions(t *testing.T) {
	l := boxMap(10, 10)
	// stopper at tile (5, 5) blocking downward movement onto it
	l.Game[5*10+5] = Tile{Index: TileStop, Flags: Rotation0}
	c := mustNew(t, l)

	tests := map[string]struct {
		pos    vmath.Vec2
		active SwitchActiveFunc
		expMR  int
	}{
		"above stopper": {
			pos:   vmath.V(176, 150),
			expMR: CantMoveDown,
		},
		"on stopper": {
			pos:   vmath.V(176, 176),
			expMR: CantMoveDown,
		},
		"far away": {
			pos:   vmath.V(80, 80),
			expMR: 0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			mr := c.GetMoveRestrictions(tt.active, tt.pos, DefaultRestrictionDistance, -1)
			testutil.AssertEqual(t, "restrictions", mr, tt.expMR)
		})
	}
}

func TestDoorTiles(t *testing.T) {
	c := mustNew(t, boxMap(10, 10))
	c.SetDoorCollisionAt(112, 112, TileStopA, 0, 4)
	idx := c.GetPureMapIndex(vmath.V(112, 112))

	testutil.AssertEqual(t, "carved", c.GetDoorTile(idx), DoorTile{Index: TileStopA, Number: 4})
	testutil.AssertEqual(t, "exists", c.TileExists(idx), true)

	active := func(n int) bool { return n == 4 }
	inactive := func(int) bool { return false }
	left := vmath.V(112-18, 112)

	testutil.AssertEqual(t, "inside", c.GetMoveRestrictions(active, vmath.V(112, 112), DefaultRestrictionDistance, -1), 0)
	testutil.AssertEqual(t, "inactive", c.GetMoveRestrictions(inactive, left, DefaultRestrictionDistance, -1), 0)
	testutil.AssertEqual(t, "no callback", c.GetMoveRestrictions(nil, left, DefaultRestrictionDistance, -1), 0)
	testutil.AssertEqual(t, "active", c.GetMoveRestrictions(active, left, DefaultRestrictionDistance, -1), CantMoveRight)

	c.SetDoorTile(idx, DoorTile{Number: 4})
	testutil.AssertEqual(t, "uncarved", c.GetDoorTile(idx), DoorTile{})
}

func TestDoorClaims(t *testing.T) {
	c := mustNew(t, boxMap(10, 10))
	idx := 3*10 + 3
	stop := DoorTile{Index: TileStopA, Number: 2}
	c.SetDoorTile(idx, DoorTile{Number: 2})

	c.ClaimDoorTile(idx, stop)
	c.ClaimDoorTile(idx, stop)
	testutil.AssertEqual(t, "claims", c.DoorClaims(idx), 2)

	c.ReleaseDoorTile(idx)
	testutil.AssertEqual(t, "held by the other", c.GetDoorTile(idx), stop)

	c.ReleaseDoorTile(idx)
	testutil.AssertEqual(t, "restored", c.RawDoorTile(idx), DoorTile{Number: 2})
	testutil.AssertEqual(t, "no claims", c.DoorClaims(idx), 0)

	c.ReleaseDoorTile(idx)
	testutil.AssertEqual(t, "extra release ignored", c.RawDoorTile(idx), DoorTile{Number: 2})
}

func TestMoverSpeed(t *testing.T) {
	l := boxMap(10, 10)
	l.Game[3*10+3] = Tile{Index: TileCPF, Flags: Rotation90}
	c := mustNew(t, l)

	idx, speed := c.MoverSpeed(100, 100)
	testutil.AssertEqual(t, "tile", idx, TileCPF)
	testutil.AssertEqual(t, "speed", speed, vmath.V(16, 0))

	idx, _ = c.MoverSpeed(150, 150)
	testutil.AssertEqual(t, "no mover", idx, 0)
}

func TestClampVel(t *testing.T) {
	v := ClampVel(CantMoveRight|CantMoveUp, vmath.V(3, -2))
	testutil.AssertEqual(t, "clamped", v, vmath.Vec2{})

	v = ClampVel(CantMoveRight|CantMoveUp, vmath.V(-3, 2))
	testutil.AssertEqual(t, "free directions", v, vmath.V(-3, 2))
}
