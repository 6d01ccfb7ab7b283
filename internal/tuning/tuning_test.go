package tuning

import (
	"testing"

	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/pixil98/go-testutil"
)

func TestDefault(t *testing.T) {
	p := Default()

	testutil.AssertEqual(t, "param count", len(p.fields()), NumParams)
	testutil.AssertEqual(t, "gravity", p.Gravity.Float(), float32(0.5))
	testutil.AssertEqual(t, "ground accel", p.GroundControlAccel.Float(), float32(2))
	testutil.AssertEqual(t, "air control speed", p.AirControlSpeed.Float(), float32(5))
	testutil.AssertEqual(t, "hook length", p.HookLength.Float(), float32(380))
}

func TestSetGet(t *testing.T) {
	tests := map[string]struct {
		name   string
		value  float32
		expOK  bool
		expVal float32
	}{
		"known":            {name: "gravity", value: 0.25, expOK: true, expVal: 0.25},
		"case insensitive": {name: "Hook_Length", value: 500, expOK: true, expVal: 500},
		"quantized":        {name: "air_friction", value: 0.956, expOK: true, expVal: 0.96},
		"unknown":          {name: "warp_speed", value: 1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := Default()
			testutil.AssertEqual(t, "set ok", p.Set(tt.name, tt.value), tt.expOK)

			v, ok := p.Get(tt.name)
			testutil.AssertEqual(t, "get ok", ok, tt.expOK)
			testutil.AssertEqual(t, "value", v, tt.expVal)
		})
	}
}

func TestFireDelay(t *testing.T) {
	p := Default()

	testutil.AssertEqual(t, "hammer", p.FireDelay(protocol.WeaponHammer), float32(0.125))
	testutil.AssertEqual(t, "grenade", p.FireDelay(protocol.WeaponGrenade), float32(0.5))
	testutil.AssertEqual(t, "unknown", p.FireDelay(42), float32(0))
}

func TestListZone(t *testing.T) {
	l := NewList()
	l[3].Gravity = NewParam(1)

	testutil.AssertEqual(t, "zone 3", l.Zone(3).Gravity.Float(), float32(1))
	testutil.AssertEqual(t, "out of range falls back to global", l.Zone(999).Gravity.Float(), float32(0.5))
	testutil.AssertEqual(t, "negative falls back to global", l.Zone(-1).Gravity.Float(), float32(0.5))
}
