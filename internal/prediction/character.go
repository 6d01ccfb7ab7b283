package prediction

import (
	"math"

	"github.com/ddnetgo/predict/internal/collision"
	"github.com/ddnetgo/predict/internal/core/event"
	"github.com/ddnetgo/predict/internal/gamecore"
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/tuning"
	"github.com/ddnetgo/predict/internal/vmath"
)

// TuneZoneOverrideNone means the character uses the tune zone it stands in.
const TuneZoneOverrideNone = -1

const maxHitObjects = 10

// Character is a predicted player.
type Character struct {
	EntityBase
	Core gamecore.CharacterCore

	IsLocal    bool
	KeepHooked bool
	GameTeam   int

	CanMoveInFreeze     bool
	LastSnapWeapon      int
	LastJetpackStrength float32
	NinjaJetpack        bool
	FreezeTime          int
	FrozenLastTick      bool

	TuneZone         int
	TuneZoneOverride int
	TeleCheckpoint   int
	StrongWeakID     int

	TileIndex        int
	TileFIndex       int
	MoveRestrictions int
	LastRefillJumps  bool

	PrevPos     vmath.Vec2
	PrevPrevPos vmath.Vec2

	hitObjects     []int
	lastWeapon     int
	queuedWeapon   int
	reloadTimer    int
	attackTick     int
	teamBeforeSup  int
	numInputs      int
	latestPrevIn   gamecore.Input
	latestIn       gamecore.Input
	prevIn         gamecore.Input
	input          gamecore.Input
	savedInput     gamecore.Input
	lastSwitchTick int
	lastZoneTick   int
}

// NewCharacter builds a character for client id from its snapshot state.
// ext may be nil for servers without extended character data.
func NewCharacter(w *GameWorld, id int, obj *protocol.Character, ext *protocol.DDNetCharacter) *Character {
	c := &Character{
		EntityBase: newEntityBase(w, EntityCharacter, vmath.V(float32(obj.X), float32(obj.Y)), gamecore.PhysicalSize),
	}
	c.ID = id
	c.lastWeapon = protocol.WeaponHammer
	c.queuedWeapon = -1
	c.LastJetpackStrength = 400
	c.TuneZoneOverride = TuneZoneOverrideNone
	c.TeleCheckpoint = -1
	c.StrongWeakID = 0

	c.Core.Init(w.core, w.collision, &w.teams)
	c.Core.ID = id
	c.Core.Pos = c.Pos
	c.Core.LeftWall = true
	c.PrevPos = c.Pos
	c.PrevPrevPos = c.Pos

	c.input.TargetY = -1
	c.savedInput = c.input

	c.ResetPrediction()
	c.Read(obj, ext, false)
	return c
}

func (c *Character) clone(w *GameWorld) Entity {
	cp := *c
	cp.EntityBase = c.EntityBase.detach(w, c)
	cp.Core = c.Core.Clone()
	cp.hitObjects = append([]int(nil), c.hitObjects...)
	return &cp
}

// Team returns the DDRace team of the character.
func (c *Character) Team() int { return c.world.teams.Team(c.ID) }

// CanCollide reports whether the character interacts with client id.
func (c *Character) CanCollide(id int) bool { return c.world.teams.CanCollide(c.ID, id) }

// SameTeam reports whether the character shares a team with client id.
func (c *Character) SameTeam(id int) bool { return c.world.teams.SameTeam(c.ID, id) }

func (c *Character) IsSuper() bool         { return c.Core.Super }
func (c *Character) ActiveWeapon() int     { return c.Core.ActiveWeapon }
func (c *Character) QueuedWeapon() int     { return c.queuedWeapon }
func (c *Character) ReloadTimer() int      { return c.reloadTimer }
func (c *Character) AttackTick() int       { return c.attackTick }
func (c *Character) Input() gamecore.Input { return c.input }

func (c *Character) WeaponGot(w int) bool {
	return w >= 0 && w < protocol.NumWeapons && c.Core.Weapons[w].Got
}

// OverriddenTuneZone is the tune zone in effect, which the server may
// force regardless of position.
func (c *Character) OverriddenTuneZone() int {
	if c.TuneZoneOverride == TuneZoneOverrideNone {
		return c.TuneZone
	}
	return c.TuneZoneOverride
}

// CurrentTuning is the tuning of the tune zone in effect.
func (c *Character) CurrentTuning() *tuning.Params {
	return c.world.TuningZone(c.OverriddenTuneZone())
}

func (c *Character) SetTuneZone(zone int) {
	if zone == c.TuneZone {
		return
	}
	c.TuneZone = zone
	c.lastZoneTick = c.world.GameTick
}

func (c *Character) SetSolo(solo bool) {
	c.Core.Solo = solo
	c.world.teams.SetSolo(c.ID, solo)
}

// SetSuper moves the character in and out of the super team, remembering
// the team it came from.
func (c *Character) SetSuper(super bool) {
	was := c.Core.Super
	c.Core.Super = super
	switch {
	case super && !was:
		c.teamBeforeSup = c.Team()
		c.world.teams.SetTeam(c.ID, c.world.teams.Super())
	case !super && was:
		c.world.teams.SetTeam(c.ID, c.teamBeforeSup)
	}
}

// IsGrounded reports whether the character stands on something.
func (c *Character) IsGrounded() bool {
	col := c.Collision()
	half := c.ProximityRadius / 2
	if col.CheckPoint(c.Pos.X+half, c.Pos.Y+half+5) || col.CheckPoint(c.Pos.X-half, c.Pos.Y+half+5) {
		return true
	}
	below := col.GetMoveRestrictions(nil, c.Pos.Add(vmath.V(0, half+4)), 0, -1)
	return below&collision.CantMoveDown != 0
}

func (c *Character) PreTick() {
	c.DDRaceTick()
	c.Core.Input = c.input
	c.Core.Tick(true, !c.world.Config.NoWeakHookAndBounce)
}

func (c *Character) Tick() {
	if c.world.Config.NoWeakHookAndBounce {
		c.Core.TickDeferred()
	} else {
		c.PreTick()
	}
	c.emitCoreSounds()

	c.HandleWeapons()
	c.DDRacePostCoreTick()

	c.prevIn = c.input
	c.PrevPrevPos = c.PrevPos
	c.PrevPos = c.Core.Pos
}

func (c *Character) TickDeferred() {
	c.Core.Move()
	c.Core.Quantize()
	c.Pos = c.Core.Pos
}

func (c *Character) Destroy() {
	c.Core.SetHookedPlayer(-1)
}

func (c *Character) emitCoreSounds() {
	if c.world.Events == nil {
		return
	}
	ev := c.Core.TriggeredEvents
	switch {
	case ev&gamecore.CoreEventGroundJump != 0:
		c.world.emitSound(c.Pos, event.SoundPlayerJump)
	case ev&gamecore.CoreEventAirJump != 0:
		c.world.emitSound(c.Pos, event.SoundPlayerAirJump)
	}
	switch {
	case ev&gamecore.CoreEventHookAttachPlayer != 0:
		c.world.emitSound(c.Core.HookPos, event.SoundHookAttachPlayer)
	case ev&gamecore.CoreEventHookAttachGround != 0:
		c.world.emitSound(c.Core.HookPos, event.SoundHookAttachGround)
	case ev&gamecore.CoreEventHookHitNoHook != 0:
		c.world.emitSound(c.Core.HookPos, event.SoundHookNoAttach)
	}
}

// TakeDamage applies force. Prediction has no health, only knockback.
func (c *Character) TakeDamage(force vmath.Vec2) bool {
	c.Core.Vel = collision.ClampVel(c.MoveRestrictions, c.Core.Vel.Add(force))
	return true
}

func (c *Character) ResetVelocity() { c.Core.Vel = vmath.Vec2{} }

func (c *Character) SetVelocity(v vmath.Vec2) {
	c.Core.Vel = collision.ClampVel(c.MoveRestrictions, v)
}

// SetRawVelocity sets the velocity ignoring stoppers.
func (c *Character) SetRawVelocity(v vmath.Vec2) { c.Core.Vel = v }

func (c *Character) AddVelocity(v vmath.Vec2) { c.SetVelocity(c.Core.Vel.Add(v)) }

func (c *Character) ApplyMoveRestrictions() {
	c.Core.Vel = collision.ClampVel(c.MoveRestrictions, c.Core.Vel)
}

// Freeze freezes the character for seconds. It fails for super and
// invincible characters, when a longer freeze is running, or within a
// second of the last freeze.
func (c *Character) Freeze(seconds int) bool {
	w := c.world
	if !w.Config.PredictFreeze {
		return false
	}
	speed := w.GameTickSpeed()
	if seconds <= 0 || c.Core.Super || c.Core.Invincible || c.FreezeTime > seconds*speed {
		return false
	}
	if c.Core.FreezeStart < w.GameTick-speed {
		c.FreezeTime = seconds * speed
		c.Core.FreezeStart = w.GameTick
		return true
	}
	return false
}

// FreezeDefault freezes for the server's freeze delay.
func (c *Character) FreezeDefault() bool {
	return c.Freeze(c.world.Config.FreezeDelay)
}

func (c *Character) UnFreeze() bool {
	if c.FreezeTime <= 0 {
		return false
	}
	if !c.Core.Weapons[c.Core.ActiveWeapon].Got {
		c.Core.ActiveWeapon = protocol.WeaponGun
	}
	c.FreezeTime = 0
	c.Core.FreezeStart = 0
	c.FrozenLastTick = true
	return true
}

// GiveWeapon adds or removes weapon w. Removing the active weapon switches
// to the gun.
func (c *Character) GiveWeapon(w int, remove bool) {
	if w < 0 || w >= protocol.NumWeapons {
		return
	}
	if w == protocol.WeaponNinja {
		if remove {
			c.RemoveNinja()
		} else {
			c.GiveNinja()
		}
		return
	}

	if remove {
		if c.Core.ActiveWeapon == w {
			c.Core.ActiveWeapon = protocol.WeaponGun
		}
	} else {
		c.Core.Weapons[w].Ammo = -1
	}
	c.Core.Weapons[w].Got = !remove
}

func (c *Character) GiveAllWeapons() {
	for w := protocol.WeaponGun; w < protocol.NumWeapons-1; w++ {
		c.GiveWeapon(w, false)
	}
}

func (c *Character) GiveNinja() {
	c.Core.Ninja.ActivationTick = c.world.GameTick
	c.Core.Weapons[protocol.WeaponNinja].Got = true
	if c.FreezeTime == 0 {
		c.Core.Weapons[protocol.WeaponNinja].Ammo = -1
	}
	if c.Core.ActiveWeapon != protocol.WeaponNinja {
		c.lastWeapon = c.Core.ActiveWeapon
	}
	c.Core.ActiveWeapon = protocol.WeaponNinja
}

func (c *Character) RemoveNinja() {
	c.Core.Ninja.CurrentMoveTime = 0
	c.Core.Weapons[protocol.WeaponNinja].Got = false
	c.Core.ActiveWeapon = c.lastWeapon
	c.SetWeapon(c.Core.ActiveWeapon)
}

func (c *Character) SetWeapon(w int) {
	if w == c.Core.ActiveWeapon {
		return
	}
	c.lastWeapon = c.Core.ActiveWeapon
	c.queuedWeapon = -1
	c.SetActiveWeapon(w)
}

// SetActiveWeapon switches without queueing. Invalid weapons select the
// hammer.
func (c *Character) SetActiveWeapon(w int) {
	if w < 0 || w >= protocol.NumWeapons {
		w = protocol.WeaponHammer
	}
	c.Core.ActiveWeapon = w
	c.lastSwitchTick = c.world.GameTick
}

func (c *Character) ReleaseHook() {
	c.Core.SetHookedPlayer(-1)
	c.Core.HookState = gamecore.HookRetracted
	c.Core.TriggeredEvents |= gamecore.CoreEventHookRetract
}

func (c *Character) ResetHook() {
	c.ReleaseHook()
	c.Core.HookPos = c.Core.Pos
}

// ResetInput releases every held button.
func (c *Character) ResetInput() {
	c.input.Direction = 0
	// simulate releasing the fire button
	if c.input.Fire&1 != 0 {
		c.input.Fire++
	}
	c.input.Fire &= protocol.InputStateMask
	c.input.Jump = 0
	c.latestIn = c.input
	c.latestPrevIn = c.input
}

// OnPredictedInput sets the input used by the next ticks.
func (c *Character) OnPredictedInput(in gamecore.Input) {
	// chatting players keep their previous input
	if !c.world.Config.BugDDRaceInput && in.PlayerFlags&protocol.PlayerFlagChatting != 0 {
		c.savedInput = c.input
		return
	}

	c.input = in
	// aiming at the center is not allowed
	if c.input.TargetX == 0 && c.input.TargetY == 0 {
		c.input.TargetY = -1
	}
	c.savedInput = c.input
}

// OnDirectInput handles the input as it arrives: weapon switches and
// shots fire on presses even between ticks.
func (c *Character) OnDirectInput(in gamecore.Input) {
	if !c.world.Config.BugDDRaceInput && in.PlayerFlags&protocol.PlayerFlagChatting != 0 {
		c.ResetInput()
		c.input.Hook = 0
		return
	}

	c.numInputs++
	c.latestPrevIn = c.latestIn
	c.latestIn = in
	if c.latestIn.TargetX == 0 && c.latestIn.TargetY == 0 {
		c.latestIn.TargetY = -1
	}

	if c.numInputs > 1 && c.GameTeam != protocol.TeamSpectators {
		c.HandleWeaponSwitch()
		c.FireWeapon()
	}

	c.latestPrevIn = c.latestIn
}

// ResetPrediction clears everything the snapshot does not carry.
func (c *Character) ResetPrediction() {
	c.SetSolo(false)
	c.SetSuper(false)
	c.Core.EndlessHook = false
	c.Core.EndlessJump = false
	c.Core.HammerHitDisabled = false
	c.Core.ShotgunHitDisabled = false
	c.Core.GrenadeHitDisabled = false
	c.Core.LaserHitDisabled = false
	c.Core.HookHitDisabled = false
	c.Core.CollisionDisabled = false
	c.Core.Jetpack = false
	c.Core.Invincible = false
	c.Core.HasTelegunGun = false
	c.Core.HasTelegunGrenade = false
	c.Core.HasTelegunLaser = false
	c.NinjaJetpack = false
	c.Core.Jumps = 2
	c.numInputs = 0
	c.FreezeTime = 0
	c.Core.FreezeStart = 0
	c.Core.IsInFreeze = false
	c.Core.DeepFrozen = false
	c.Core.LiveFrozen = false
	c.FrozenLastTick = false
	for w := range c.Core.Weapons {
		c.Core.Weapons[w].Got = false
		c.Core.Weapons[w].Ammo = -1
	}
	if c.Core.HookedPlayer >= 0 {
		c.Core.SetHookedPlayer(-1)
		c.Core.HookState = gamecore.HookIdle
	}
	c.lastSwitchTick = 0
	c.lastZoneTick = 0
}

// Read loads the snapshot state. Without extended data the DDRace state
// is guessed from the tuning and the character object.
func (c *Character) Read(obj *protocol.Character, ext *protocol.DDNetCharacter, isLocal bool) {
	w := c.world
	weapon := int(obj.Weapon)
	if weapon < 0 || weapon >= protocol.NumWeapons {
		weapon = protocol.WeaponHammer
	}

	c.Core.Read(&obj.CharacterCore)
	c.IsLocal = isLocal

	if ext != nil {
		c.readExtended(ext)
	} else {
		c.guessExtended(obj, weapon)
	}

	posBefore := c.Pos
	c.Pos = c.Core.Pos
	// a misprediction or a teleport makes the previous position useless
	if vmath.Distance(posBefore, c.Pos) > 2 || vmath.Distance(c.PrevPos, c.Pos) > 10*32 {
		c.PrevPos = c.Pos
	}

	if obj.Jumped&2 != 0 {
		c.Core.JumpedTotal = c.Core.Jumps
	}
	c.attackTick = int(obj.AttackTick)
	c.LastSnapWeapon = weapon

	zone := 0
	if w.Config.UseTuneZones {
		zone = w.collision.IsTune(w.collision.GetMapIndex(c.Pos))
	}
	c.SetTuneZone(zone)

	if weapon != protocol.WeaponNinja {
		if w.Config.InfiniteAmmo || weapon == protocol.WeaponHammer {
			c.Core.Weapons[weapon].Ammo = -1
		} else {
			c.Core.Weapons[weapon].Ammo = int(obj.AmmoCount)
		}
		if weapon != c.Core.ActiveWeapon {
			c.SetActiveWeapon(weapon)
		}
	}

	// other players keep only direction and hook, as in vanilla
	if !isLocal {
		c.input = gamecore.Input{Direction: c.Core.Direction}
		if c.Core.HookState != gamecore.HookIdle {
			c.input.Hook = 1
		}
		if ext != nil && ext.TargetX != 0 && ext.TargetY != 0 {
			c.input.TargetX = int(ext.TargetX)
			c.input.TargetY = int(ext.TargetY)
		} else {
			a := float64(obj.Angle) / 256
			c.input.TargetX = int(math.Cos(a) * 256)
			c.input.TargetY = int(math.Sin(a) * 256)
		}
		c.savedInput = c.input
	}

	// the reload timer follows from the last attack unless the weapon or
	// tune zone just changed
	if isLocal && c.Core.ActiveWeapon != protocol.WeaponHammer && !c.Core.Weapons[protocol.WeaponNinja].Got {
		if max(c.lastZoneTick, c.lastSwitchTick)+w.GameTickSpeed() < w.GameTick {
			delay := int(c.CurrentTuning().FireDelay(c.Core.ActiveWeapon) * float32(w.GameTickSpeed()))
			c.reloadTimer = max(0, c.attackTick+delay-w.GameTick)
		}
	}
}

func (c *Character) readExtended(ext *protocol.DDNetCharacter) {
	w := c.world
	c.SetSolo(ext.Flags&protocol.CharacterFlagSolo != 0)
	c.SetSuper(ext.Flags&protocol.CharacterFlagSuper != 0)

	c.TeleCheckpoint = int(ext.TeleCheckpoint)
	c.StrongWeakID = int(ext.StrongWeakID)
	c.TuneZoneOverride = int(ext.TuneZoneOverride)

	ninja := ext.Flags&protocol.CharacterFlagWeaponNinja != 0
	switch {
	case ninja && c.Core.ActiveWeapon != protocol.WeaponNinja:
		c.GiveNinja()
	case !ninja && c.Core.ActiveWeapon == protocol.WeaponNinja:
		c.RemoveNinja()
	}

	if w.Config.PredictFreeze && ext.FreezeEnd != 0 {
		if ext.FreezeEnd > 0 {
			if c.FreezeTime == 0 {
				c.FreezeDefault()
			}
			c.FreezeTime = max(1, int(ext.FreezeEnd)-w.GameTick)
		} else if ext.FreezeEnd == -1 {
			c.Core.DeepFrozen = true
		}
	} else {
		c.UnFreeze()
	}

	c.Core.ReadDDNet(ext)

	if !w.Config.PredictFreeze {
		c.UnFreeze()
	}
}

func (c *Character) guessExtended(obj *protocol.Character, weapon int) {
	w := c.world
	t := &w.Tuning

	// drop weapons the server took away; a frozen ninja only loses ammo
	if weapon != c.Core.ActiveWeapon {
		if weapon == protocol.WeaponNinja {
			c.Core.Weapons[c.Core.ActiveWeapon].Ammo = 0
		} else {
			if c.Core.ActiveWeapon == protocol.WeaponNinja {
				c.Core.Ninja.ActivationDir = vmath.Vec2{}
				c.Core.Ninja.ActivationTick = -500
				c.Core.Ninja.CurrentMoveTime = 0
			}
			if weapon == c.LastSnapWeapon {
				c.Core.Weapons[c.Core.ActiveWeapon].Got = false
			}
		}
	}
	if weapon != protocol.WeaponNinja {
		c.Core.Weapons[weapon].Got = true
	}

	if w.Config.PredictWeapons && t.JetpackStrength.Float() > 0 {
		c.LastJetpackStrength = t.JetpackStrength.Float()
		c.Core.Jetpack = true
		c.Core.Weapons[protocol.WeaponGun].Got = true
		c.Core.Weapons[protocol.WeaponGun].Ammo = -1
		c.NinjaJetpack = weapon == protocol.WeaponNinja
	} else if weapon != protocol.WeaponNinja {
		c.Core.Jetpack = false
	}

	if w.Config.PredictTiles {
		if obj.Jumped&2 != 0 {
			c.Core.EndlessJump = false
			if c.Core.Jumps > c.Core.JumpedTotal && c.Core.JumpedTotal > 0 && c.Core.Jumps > 2 {
				c.Core.Jumps = c.Core.JumpedTotal + 1
			}
		} else if c.Core.Jumps < 2 {
			c.Core.Jumps = c.Core.JumpedTotal + 2
		}
		if t.AirJumpImpulse == 0 {
			c.Core.Jumps = 0
			c.Core.Jumped = 3
		}
	}

	c.SetSolo(t.PlayerCollision == 0 && t.PlayerHooking == 0)
	c.Core.CollisionDisabled = t.PlayerCollision == 0
	c.Core.HookHitDisabled = t.PlayerHooking == 0

	if c.Core.HookTick != 0 {
		c.Core.EndlessHook = false
	}

	// detect an unfreeze the tile prediction missed
	if obj.Emote != protocol.EmotePain && obj.Emote != protocol.EmoteNormal {
		c.Core.DeepFrozen = false
	}
	if weapon != protocol.WeaponNinja || int(obj.AttackTick) > c.Core.FreezeStart ||
		absInt32(obj.VelX) == 256*10 || !w.Config.PredictFreeze {
		c.Core.DeepFrozen = false
		c.UnFreeze()
	}

	c.TuneZoneOverride = TuneZoneOverrideNone
}

// Match reports whether other is the same character in a newer snapshot.
func (c *Character) Match(other *Character) bool {
	return vmath.Distance(other.Core.Pos, c.Core.Pos) <= 32
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
