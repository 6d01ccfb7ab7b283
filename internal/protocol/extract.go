package protocol

import (
	"math"

	"github.com/ddnetgo/predict/internal/vmath"
)

// TuneZoneUnknown marks data whose tune zone must be looked up on the map.
const TuneZoneUnknown = -1

type ProjectileData struct {
	StartPos     vmath.Vec2
	StartVel     vmath.Vec2
	Type         int
	StartTick    int
	ExtraInfo    bool
	Owner        int
	Explosive    bool
	Bouncing     int
	Freeze       bool
	TuneZone     int
	SwitchNumber int
}

// UseProjectileExtraInfo reports whether a legacy projectile carries the
// DDRace extra info encoding.
func UseProjectileExtraInfo(p *Projectile) bool {
	return p.VelY >= 0 && p.VelY&LegacyProjectileFlagIsDDNet != 0
}

// ExtractProjectile normalizes any projectile object. ex may be nil.
func ExtractProjectile(o Object, ex *EntityEx) (ProjectileData, bool) {
	switch p := o.(type) {
	case *DDNetProjectile:
		return extractDDNetProjectile(p), true
	case *DDRaceProjectile:
		return extractDDRaceProjectile(p, ex), true
	case *Projectile:
		if UseProjectileExtraInfo(p) {
			return extractDDRaceProjectile(&DDRaceProjectile{
				X: p.X, Y: p.Y, Angle: p.VelX, Data: p.VelY, Type: p.Type, StartTick: p.StartTick,
			}, ex), true
		}
		d := ProjectileData{
			StartPos:  vmath.V(float32(p.X), float32(p.Y)),
			StartVel:  vmath.V(float32(p.VelX)/100, float32(p.VelY)/100),
			Type:      int(p.Type),
			StartTick: int(p.StartTick),
			Owner:     -1,
			TuneZone:  TuneZoneUnknown,
		}
		if ex != nil {
			d.SwitchNumber = int(ex.SwitchNumber)
		}
		return d, true
	}
	return ProjectileData{}, false
}

func extractDDRaceProjectile(p *DDRaceProjectile, ex *EntityEx) ProjectileData {
	angle := float64(p.Angle) / 1000000
	d := ProjectileData{
		StartPos:  vmath.V(float32(p.X)/100, float32(p.Y)/100),
		StartVel:  vmath.V(float32(math.Sin(-angle)), float32(math.Cos(-angle))),
		Type:      int(p.Type),
		StartTick: int(p.StartTick),
		ExtraInfo: true,
		Owner:     int(p.Data & 255),
		Bouncing:  int(p.Data>>10) & 3,
		Explosive: p.Data&LegacyProjectileFlagExplosive != 0,
		Freeze:    p.Data&LegacyProjectileFlagFreeze != 0,
		TuneZone:  TuneZoneUnknown,
	}
	if p.Data&LegacyProjectileFlagNoOwner != 0 || d.Owner < 0 || d.Owner >= MaxClients {
		d.Owner = -1
	}
	if ex != nil {
		d.SwitchNumber = int(ex.SwitchNumber)
	}
	return d
}

func extractDDNetProjectile(p *DDNetProjectile) ProjectileData {
	d := ProjectileData{
		StartPos:     vmath.V(float32(p.X)/100, float32(p.Y)/100),
		StartVel:     vmath.V(float32(p.VelX)/1e6, float32(p.VelY)/1e6),
		Type:         int(p.Type),
		StartTick:    int(p.StartTick),
		ExtraInfo:    true,
		Owner:        int(p.Owner),
		SwitchNumber: int(p.SwitchNumber),
		TuneZone:     int(p.TuneZone),
		Explosive:    p.Flags&ProjectileFlagExplosive != 0,
		Freeze:       p.Flags&ProjectileFlagFreeze != 0,
	}
	if p.Flags&ProjectileFlagNormalizeVel != 0 {
		d.StartVel = d.StartVel.Normalize()
	}
	if p.Flags&ProjectileFlagBounceHorizontal != 0 {
		d.Bouncing |= 1
	}
	if p.Flags&ProjectileFlagBounceVertical != 0 {
		d.Bouncing |= 2
	}
	return d
}

// EncodeDDRaceProjectile packs projectile state into the legacy extra info
// layout. Positions too large for the fixed point encoding fall back to the
// plain layout.
func EncodeDDRaceProjectile(d ProjectileData) *Projectile {
	const maxPos = 0x7fffffff / 100
	if absInt(int(d.StartPos.Y))+1 >= maxPos || absInt(int(d.StartPos.X))+1 >= maxPos {
		return &Projectile{
			X: int32(d.StartPos.X), Y: int32(d.StartPos.Y),
			VelX: int32(d.StartVel.X * 100), VelY: int32(d.StartVel.Y * 100),
			Type: int32(d.Type), StartTick: int32(d.StartTick),
		}
	}
	angle := -math.Atan2(float64(d.StartVel.X), float64(d.StartVel.Y))
	var data int32
	data |= int32(absInt(d.Owner) & 255)
	if d.Owner < 0 {
		data |= LegacyProjectileFlagNoOwner
	}
	data |= LegacyProjectileFlagIsDDNet
	data |= int32(d.Bouncing&3) << 10
	if d.Explosive {
		data |= LegacyProjectileFlagExplosive
	}
	if d.Freeze {
		data |= LegacyProjectileFlagFreeze
	}
	return &Projectile{
		X:         int32(d.StartPos.X * 100),
		Y:         int32(d.StartPos.Y * 100),
		VelX:      int32(float32(angle) * 1000000),
		VelY:      data,
		Type:      int32(d.Type),
		StartTick: int32(d.StartTick),
	}
}

type LaserData struct {
	From         vmath.Vec2
	To           vmath.Vec2
	StartTick    int
	ExtraInfo    bool
	Owner        int
	Type         int
	SwitchNumber int
	Subtype      int
	TuneZone     int
	Predict      bool
}

// ExtractLaser normalizes any laser object. Legacy lasers have type -1 and
// an unknown owner; ex may reclassify them by entity class.
func ExtractLaser(o Object, ex *EntityEx) (LaserData, bool) {
	var d LaserData
	isDDNet := false
	switch l := o.(type) {
	case *DDNetLaser:
		isDDNet = true
		d = LaserData{
			From:         vmath.V(float32(l.FromX), float32(l.FromY)),
			To:           vmath.V(float32(l.ToX), float32(l.ToY)),
			StartTick:    int(l.StartTick),
			ExtraInfo:    true,
			Owner:        int(l.Owner),
			Type:         int(l.Type),
			SwitchNumber: int(l.SwitchNumber),
			Subtype:      int(l.Subtype),
			TuneZone:     TuneZoneUnknown,
			Predict:      l.Flags&LaserFlagNoPredict == 0,
		}
	case *Laser:
		d = LaserData{
			From:      vmath.V(float32(l.FromX), float32(l.FromY)),
			To:        vmath.V(float32(l.X), float32(l.Y)),
			StartTick: int(l.StartTick),
			Owner:     -1,
			Type:      -1,
			Subtype:   -1,
			TuneZone:  TuneZoneUnknown,
			Predict:   true,
		}
	default:
		return LaserData{}, false
	}

	if ex != nil && !(isDDNet && d.SwitchNumber >= 0) {
		d.SwitchNumber = int(ex.SwitchNumber)
		switch c := int(ex.EntityClass); {
		case c == EntityClassLight:
			d.Type = LaserTypeFreeze
		case c >= EntityClassGunNormal && c <= EntityClassGunUnfreeze:
			d.Type = LaserTypeGun
		case c >= EntityClassDraggerWeak && c <= EntityClassDraggerStrong:
			d.Type = LaserTypeDragger
		case c == EntityClassDoor:
			d.Type = LaserTypeDoor
		}
	}
	return d, true
}

type PickupData struct {
	Pos          vmath.Vec2
	Type         int
	Subtype      int
	SwitchNumber int
}

func ExtractPickup(o Object, ex *EntityEx) (PickupData, bool) {
	switch p := o.(type) {
	case *DDNetPickup:
		return PickupData{
			Pos:          vmath.V(float32(p.X), float32(p.Y)),
			Type:         int(p.Type),
			Subtype:      int(p.Subtype),
			SwitchNumber: int(p.SwitchNumber),
		}, true
	case *Pickup:
		d := PickupData{
			Pos:     vmath.V(float32(p.X), float32(p.Y)),
			Type:    int(p.Type),
			Subtype: int(p.Subtype),
		}
		if ex != nil {
			d.SwitchNumber = int(ex.SwitchNumber)
		}
		return d, true
	}
	return PickupData{}, false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
