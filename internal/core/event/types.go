package event

import "github.com/ddnetgo/predict/internal/vmath"

// Explosion is emitted when a grenade, plasma or explosive projectile goes
// off in a predicted world.
type Explosion struct {
	Pos           vmath.Vec2
	Owner         int
	Weapon        int
	NoDamage      bool
	ActivatedTeam int
	Tick          int
}

// Sound ids the core emits.
const (
	SoundGrenadeExplode = iota
	SoundHookAttachPlayer
	SoundHookAttachGround
	SoundHookNoAttach
	SoundPlayerJump
	SoundPlayerAirJump
	SoundHammerHit
	SoundWeaponSwitch
)

// Sound is a fire-and-forget sound trigger.
type Sound struct {
	Pos   vmath.Vec2
	Sound int
	Tick  int
}

// Mismatch is emitted by a replay when a predicted character disagrees
// with the snapshot that confirms its tick.
type Mismatch struct {
	Tick      int
	ClientID  int
	Predicted vmath.Vec2
	Actual    vmath.Vec2
}
