package protocol

import (
	"testing"

	"github.com/ddnetgo/predict/internal/net/packet"
	"github.com/ddnetgo/predict/internal/vmath"
	"github.com/pixil98/go-testutil"
)

func TestFill_ShortDDNetCharacterKeepsDefaults(t *testing.T) {
	var c DDNetCharacter
	err := Fill(&c, []int32{CharacterFlagSolo, 120, 3})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "flags", c.Flags, int32(CharacterFlagSolo))
	testutil.AssertEqual(t, "freeze end", c.FreezeEnd, int32(120))
	testutil.AssertEqual(t, "jumps", c.Jumps, int32(3))
	testutil.AssertEqual(t, "jumped total", c.JumpedTotal, int32(-1))
	testutil.AssertEqual(t, "freeze start", c.FreezeStart, int32(-1))
	testutil.AssertEqual(t, "tune zone override", c.TuneZoneOverride, int32(-1))
}

func TestFill_ShortFixedLayout(t *testing.T) {
	var p Projectile
	err := Fill(&p, []int32{1, 2, 3})
	testutil.AssertErrorContains(t, err, "got 3 fields, want 6")
}

func TestItem_WriteRead(t *testing.T) {
	in := NewItem(7, &Pickup{X: 100, Y: -64, Type: PowerupWeapon, Subtype: WeaponGrenade})

	w := packet.NewWriterWithOpcode(0x10)
	WriteItem(w, in)
	r := packet.NewReader(w.Bytes())

	out, err := ReadItem(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "type", out.Type, ObjTypePickup)
	testutil.AssertEqual(t, "id", out.ID, uint16(7))

	o, err := out.Decode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, ok := o.(*Pickup)
	testutil.AssertEqual(t, "is pickup", ok, true)
	testutil.AssertEqual(t, "pickup", *p, Pickup{X: 100, Y: -64, Type: PowerupWeapon, Subtype: WeaponGrenade})
}

func TestReadItem_Truncated(t *testing.T) {
	w := packet.NewWriterWithOpcode(0x10)
	w.WriteH(ObjTypeProjectile)
	w.WriteH(1)
	w.WriteH(6)
	w.WriteD(5)

	_, err := ReadItem(packet.NewReader(w.Bytes()))
	testutil.AssertErrorContains(t, err, "truncated")
}

func TestExtractProjectile(t *testing.T) {
	tests := map[string]struct {
		obj          Object
		expOwner     int
		expExtra     bool
		expBouncing  int
		expExplosive bool
		expFreeze    bool
		expTuneZone  int
	}{
		"legacy plain": {
			obj:         &Projectile{X: 10, Y: 20, VelX: 100, VelY: 0, Type: WeaponGrenade, StartTick: 5},
			expOwner:    -1,
			expTuneZone: TuneZoneUnknown,
		},
		"legacy extra info": {
			obj: EncodeDDRaceProjectile(ProjectileData{
				StartPos: vmath.V(1000, 1000), StartVel: vmath.V(0, 1), Type: WeaponGrenade,
				StartTick: 50, Owner: 3, Explosive: true, Bouncing: 2,
			}),
			expOwner:     3,
			expExtra:     true,
			expBouncing:  2,
			expExplosive: true,
			expTuneZone:  TuneZoneUnknown,
		},
		"legacy extra info no owner": {
			obj: EncodeDDRaceProjectile(ProjectileData{
				StartPos: vmath.V(32, 32), StartVel: vmath.V(1, 0), Type: WeaponGun, Owner: -1, Freeze: true,
			}),
			expOwner:    -1,
			expExtra:    true,
			expFreeze:   true,
			expTuneZone: TuneZoneUnknown,
		},
		"ddnet": {
			obj: &DDNetProjectile{
				X: 3200, Y: 6400, VelX: 1000000, Type: WeaponShotgun, Owner: 12, TuneZone: 4,
				Flags: ProjectileFlagBounceHorizontal | ProjectileFlagBounceVertical | ProjectileFlagFreeze,
			},
			expOwner:    12,
			expExtra:    true,
			expBouncing: 3,
			expFreeze:   true,
			expTuneZone: 4,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d, ok := ExtractProjectile(tt.obj, nil)
			testutil.AssertEqual(t, "ok", ok, true)
			testutil.AssertEqual(t, "owner", d.Owner, tt.expOwner)
			testutil.AssertEqual(t, "extra", d.ExtraInfo, tt.expExtra)
			testutil.AssertEqual(t, "bouncing", d.Bouncing, tt.expBouncing)
			testutil.AssertEqual(t, "explosive", d.Explosive, tt.expExplosive)
			testutil.AssertEqual(t, "freeze", d.Freeze, tt.expFreeze)
			testutil.AssertEqual(t, "tune zone", d.TuneZone, tt.expTuneZone)
		})
	}
}

func TestExtractProjectile_DDRaceDirection(t *testing.T) {
	d, _ := ExtractProjectile(EncodeDDRaceProjectile(ProjectileData{
		StartPos: vmath.V(1000, 1000), StartVel: vmath.V(0.6, -0.8), Type: WeaponGrenade, Owner: 1,
	}), nil)

	testutil.AssertEqual(t, "pos", d.StartPos, vmath.V(1000, 1000))
	testutil.AssertEqual(t, "dir close", vmath.Distance(d.StartVel, vmath.V(0.6, -0.8)) < 0.001, true)
}

func TestExtractLaser(t *testing.T) {
	tests := map[string]struct {
		obj        Object
		ex         *EntityEx
		expType    int
		expOwner   int
		expPredict bool
		expSwitch  int
	}{
		"legacy": {
			obj:        &Laser{X: 10, Y: 10, FromX: 0, FromY: 0, StartTick: 3},
			expType:    -1,
			expOwner:   -1,
			expPredict: true,
		},
		"legacy dragger via entity ex": {
			obj:        &Laser{},
			ex:         &EntityEx{SwitchNumber: 4, EntityClass: EntityClassDraggerStrong},
			expType:    LaserTypeDragger,
			expOwner:   -1,
			expPredict: true,
			expSwitch:  4,
		},
		"ddnet no predict": {
			obj:       &DDNetLaser{Owner: 2, Type: LaserTypeRifle, SwitchNumber: 0, Flags: LaserFlagNoPredict},
			ex:        &EntityEx{SwitchNumber: 9, EntityClass: EntityClassDoor},
			expType:   LaserTypeRifle,
			expOwner:  2,
			expSwitch: 0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d, ok := ExtractLaser(tt.obj, tt.ex)
			testutil.AssertEqual(t, "ok", ok, true)
			testutil.AssertEqual(t, "type", d.Type, tt.expType)
			testutil.AssertEqual(t, "owner", d.Owner, tt.expOwner)
			testutil.AssertEqual(t, "predict", d.Predict, tt.expPredict)
			testutil.AssertEqual(t, "switch", d.SwitchNumber, tt.expSwitch)
		})
	}
}

func TestSwitchState_StatusOf(t *testing.T) {
	var s SwitchState
	s.Status[0] = 1 << 3
	s.Status[1] = 1

	testutil.AssertEqual(t, "3", s.StatusOf(3), true)
	testutil.AssertEqual(t, "4", s.StatusOf(4), false)
	testutil.AssertEqual(t, "32", s.StatusOf(32), true)
	testutil.AssertEqual(t, "out of range", s.StatusOf(300), false)
}
