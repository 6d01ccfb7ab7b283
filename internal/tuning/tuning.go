// Package tuning holds the physics tuning table. Values travel over the
// network as hundredths, so every parameter is stored quantized.
package tuning

import (
	"strings"

	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/vmath"
)

// NumTuneZones is the number of tune zones a map can define. Zone 0 is the
// global tuning.
const NumTuneZones = 256

// Param is a tuning value stored as value*100.
type Param int32

func NewParam(v float32) Param {
	return Param(vmath.RoundToInt(v * 100))
}

func (p Param) Float() float32 {
	return float32(p) / 100
}

// Params is the full tuning table of one zone.
type Params struct {
	GroundControlSpeed Param
	GroundControlAccel Param
	GroundFriction     Param
	GroundJumpImpulse  Param
	AirJumpImpulse     Param
	AirControlSpeed    Param
	AirControlAccel    Param
	AirFriction        Param
	HookLength         Param
	HookFireSpeed      Param
	HookDragAccel      Param
	HookDragSpeed      Param
	Gravity            Param

	VelrampStart     Param
	VelrampRange     Param
	VelrampCurvature Param

	GunCurvature     Param
	GunSpeed         Param
	GunLifetime      Param
	ShotgunCurvature Param
	ShotgunSpeed     Param
	ShotgunSpeeddiff Param
	ShotgunLifetime  Param
	GrenadeCurvature Param
	GrenadeSpeed     Param
	GrenadeLifetime  Param

	LaserReach       Param
	LaserBounceDelay Param
	LaserBounceNum   Param
	LaserBounceCost  Param
	LaserDamage      Param

	PlayerCollision   Param
	PlayerHooking     Param
	JetpackStrength   Param
	ShotgunStrength   Param
	ExplosionStrength Param
	HammerStrength    Param
	HookDuration      Param

	HammerFireDelay    Param
	GunFireDelay       Param
	ShotgunFireDelay   Param
	GrenadeFireDelay   Param
	LaserFireDelay     Param
	NinjaFireDelay     Param
	HammerHitFireDelay Param

	GroundElasticityX Param
	GroundElasticityY Param
}

var names = []string{
	"ground_control_speed",
	"ground_control_accel",
	"ground_friction",
	"ground_jump_impulse",
	"air_jump_impulse",
	"air_control_speed",
	"air_control_accel",
	"air_friction",
	"hook_length",
	"hook_fire_speed",
	"hook_drag_accel",
	"hook_drag_speed",
	"gravity",
	"velramp_start",
	"velramp_range",
	"velramp_curvature",
	"gun_curvature",
	"gun_speed",
	"gun_lifetime",
	"shotgun_curvature",
	"shotgun_speed",
	"shotgun_speeddiff",
	"shotgun_lifetime",
	"grenade_curvature",
	"grenade_speed",
	"grenade_lifetime",
	"laser_reach",
	"laser_bounce_delay",
	"laser_bounce_num",
	"laser_bounce_cost",
	"laser_damage",
	"player_collision",
	"player_hooking",
	"jetpack_strength",
	"shotgun_strength",
	"explosion_strength",
	"hammer_strength",
	"hook_duration",
	"hammer_fire_delay",
	"gun_fire_delay",
	"shotgun_fire_delay",
	"grenade_fire_delay",
	"laser_fire_delay",
	"ninja_fire_delay",
	"hammer_hit_fire_delay",
	"ground_elasticity_x",
	"ground_elasticity_y",
}

// NumParams is the number of tuning parameters.
var NumParams = len(names)

// Default returns the engine default tuning.
func Default() Params {
	const ticksPerSecond = 50
	return Params{
		GroundControlSpeed: NewParam(10),
		GroundControlAccel: NewParam(100.0 / ticksPerSecond),
		GroundFriction:     NewParam(0.5),
		GroundJumpImpulse:  NewParam(13.2),
		AirJumpImpulse:     NewParam(12),
		AirControlSpeed:    NewParam(250.0 / ticksPerSecond),
		AirControlAccel:    NewParam(1.5),
		AirFriction:        NewParam(0.95),
		HookLength:         NewParam(380),
		HookFireSpeed:      NewParam(80),
		HookDragAccel:      NewParam(3),
		HookDragSpeed:      NewParam(15),
		Gravity:            NewParam(0.5),

		VelrampStart:     NewParam(550),
		VelrampRange:     NewParam(2000),
		VelrampCurvature: NewParam(1.4),

		GunCurvature:     NewParam(1.25),
		GunSpeed:         NewParam(2200),
		GunLifetime:      NewParam(2),
		ShotgunCurvature: NewParam(1.25),
		ShotgunSpeed:     NewParam(2750),
		ShotgunSpeeddiff: NewParam(0.8),
		ShotgunLifetime:  NewParam(0.2),
		GrenadeCurvature: NewParam(7),
		GrenadeSpeed:     NewParam(1000),
		GrenadeLifetime:  NewParam(2),

		LaserReach:       NewParam(800),
		LaserBounceDelay: NewParam(150),
		LaserBounceNum:   NewParam(1000),
		LaserBounceCost:  NewParam(0),
		LaserDamage:      NewParam(5),

		PlayerCollision:   NewParam(1),
		PlayerHooking:     NewParam(1),
		JetpackStrength:   NewParam(400),
		ShotgunStrength:   NewParam(10),
		ExplosionStrength: NewParam(6),
		HammerStrength:    NewParam(1),
		HookDuration:      NewParam(1.25),

		HammerFireDelay:    NewParam(125),
		GunFireDelay:       NewParam(125),
		ShotgunFireDelay:   NewParam(500),
		GrenadeFireDelay:   NewParam(500),
		LaserFireDelay:     NewParam(800),
		NinjaFireDelay:     NewParam(800),
		HammerHitFireDelay: NewParam(320),

		GroundElasticityX: NewParam(0),
		GroundElasticityY: NewParam(0),
	}
}

// fields lists the parameters in wire order, matching names.
func (t *Params) fields() []*Param {
	return []*Param{
		&t.GroundControlSpeed, &t.GroundControlAccel, &t.GroundFriction, &t.GroundJumpImpulse,
		&t.AirJumpImpulse, &t.AirControlSpeed, &t.AirControlAccel, &t.AirFriction,
		&t.HookLength, &t.HookFireSpeed, &t.HookDragAccel, &t.HookDragSpeed, &t.Gravity,
		&t.VelrampStart, &t.VelrampRange, &t.VelrampCurvature,
		&t.GunCurvature, &t.GunSpeed, &t.GunLifetime,
		&t.ShotgunCurvature, &t.ShotgunSpeed, &t.ShotgunSpeeddiff, &t.ShotgunLifetime,
		&t.GrenadeCurvature, &t.GrenadeSpeed, &t.GrenadeLifetime,
		&t.LaserReach, &t.LaserBounceDelay, &t.LaserBounceNum, &t.LaserBounceCost, &t.LaserDamage,
		&t.PlayerCollision, &t.PlayerHooking, &t.JetpackStrength, &t.ShotgunStrength,
		&t.ExplosionStrength, &t.HammerStrength, &t.HookDuration,
		&t.HammerFireDelay, &t.GunFireDelay, &t.ShotgunFireDelay, &t.GrenadeFireDelay,
		&t.LaserFireDelay, &t.NinjaFireDelay, &t.HammerHitFireDelay,
		&t.GroundElasticityX, &t.GroundElasticityY,
	}
}

// Names returns the script names in wire order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// SetIndex sets parameter i. It returns false if i is out of range.
func (t *Params) SetIndex(i int, v float32) bool {
	f := t.fields()
	if i < 0 || i >= len(f) {
		return false
	}
	*f[i] = NewParam(v)
	return true
}

func (t *Params) GetIndex(i int) (float32, bool) {
	f := t.fields()
	if i < 0 || i >= len(f) {
		return 0, false
	}
	return f[i].Float(), true
}

// Set sets a parameter by its script name, case insensitively.
func (t *Params) Set(name string, v float32) bool {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return t.SetIndex(i, v)
		}
	}
	return false
}

func (t *Params) Get(name string) (float32, bool) {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return t.GetIndex(i)
		}
	}
	return 0, false
}

// Ints returns the raw wire values in order.
func (t *Params) Ints() []int32 {
	f := t.fields()
	out := make([]int32, len(f))
	for i, p := range f {
		out[i] = int32(*p)
	}
	return out
}

// FireDelay returns the fire delay of weapon w in seconds. A hammer that
// hits something reloads with HammerHitFireDelay instead. Unknown weapons
// return 0.
func (t *Params) FireDelay(w int) float32 {
	switch w {
	case protocol.WeaponHammer:
		return t.HammerFireDelay.Float() / 1000
	case protocol.WeaponGun:
		return t.GunFireDelay.Float() / 1000
	case protocol.WeaponShotgun:
		return t.ShotgunFireDelay.Float() / 1000
	case protocol.WeaponGrenade:
		return t.GrenadeFireDelay.Float() / 1000
	case protocol.WeaponLaser:
		return t.LaserFireDelay.Float() / 1000
	case protocol.WeaponNinja:
		return t.NinjaFireDelay.Float() / 1000
	default:
		return 0
	}
}

// List is the per tune zone table.
type List []Params

func NewList() List {
	l := make(List, NumTuneZones)
	for i := range l {
		l[i] = Default()
	}
	return l
}

// Zone returns the tuning for zone z, falling back to zone 0 when z is out
// of range.
func (l List) Zone(z int) *Params {
	if z < 0 || z >= len(l) {
		return &l[0]
	}
	return &l[z]
}
