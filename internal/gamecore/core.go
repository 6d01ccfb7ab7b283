// Package gamecore is the deterministic character physics shared by
// prediction and the server: movement, jumping, hooking and player
// collision.
package gamecore

import (
	"math"
	"sort"

	"github.com/ddnetgo/predict/internal/collision"
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/tuning"
	"github.com/ddnetgo/predict/internal/vmath"
)

// PhysicalSize is the diameter of a character.
const PhysicalSize = 28

func PhysicalSizeVec() vmath.Vec2 { return vmath.V(PhysicalSize, PhysicalSize) }

// Hook states.
const (
	HookRetracted    = -1
	HookIdle         = 0
	HookRetractStart = 1
	HookRetractEnd   = 3
	HookFlying       = 4
	HookGrabbed      = 5
)

// Core events, set in TriggeredEvents during a tick.
const (
	CoreEventGroundJump       = 0x01
	CoreEventAirJump          = 0x02
	CoreEventHookLaunch       = 0x04
	CoreEventHookAttachPlayer = 0x08
	CoreEventHookAttachGround = 0x10
	CoreEventHookHitNoHook    = 0x20
	CoreEventHookRetract      = 0x40
)

type WeaponStat struct {
	AmmoRegenStart int
	Ammo           int
	AmmoCost       int
	Got            bool
}

type NinjaStat struct {
	ActivationDir   vmath.Vec2
	ActivationTick  int
	CurrentMoveTime int
	OldVelAmount    float32
}

type CharacterCore struct {
	world     *WorldCore
	collision *collision.Collision
	teams     *Teams

	ID int

	Pos          vmath.Vec2
	Vel          vmath.Vec2
	HookPos      vmath.Vec2
	HookDir      vmath.Vec2
	HookTeleBase vmath.Vec2
	HookTick     int
	HookState    int
	HookedPlayer int
	attached     map[int]struct{}

	ActiveWeapon int
	Weapons      [protocol.NumWeapons]WeaponStat
	Ninja        NinjaStat

	NewHook     bool
	Jumped      int
	JumpedTotal int // air jumps since the last ground contact
	Jumps       int
	Direction   int
	Angle       int
	Input       Input

	TriggeredEvents int
	Tuning          tuning.Params

	// HookReset is set when the hook hit something or ran out of length.
	HookReset bool
	Colliding int
	LeftWall  bool

	Solo               bool
	Jetpack            bool
	CollisionDisabled  bool
	EndlessHook        bool
	EndlessJump        bool
	HammerHitDisabled  bool
	GrenadeHitDisabled bool
	LaserHitDisabled   bool
	ShotgunHitDisabled bool
	HookHitDisabled    bool
	Super              bool
	Invincible         bool
	HasTelegunGun      bool
	HasTelegunGrenade  bool
	HasTelegunLaser    bool
	FreezeStart        int
	FreezeEnd          int
	IsInFreeze         bool
	DeepFrozen         bool
	LiveFrozen         bool

	MoveRestrictions int
}

// Init binds the core to a world and resets it. The core starts with the
// world's global tuning.
func (c *CharacterCore) Init(world *WorldCore, col *collision.Collision, teams *Teams) {
	c.world = world
	c.collision = col
	c.teams = teams
	c.ID = -1
	c.HookedPlayer = -1
	if world != nil && len(world.Tunings) > 0 {
		c.Tuning = world.Tunings[0]
	} else {
		c.Tuning = tuning.Default()
	}
	c.Reset()
}

// SetCoreWorld rebinds the core after it was copied into another world.
func (c *CharacterCore) SetCoreWorld(world *WorldCore, col *collision.Collision, teams *Teams) {
	c.world = world
	c.collision = col
	c.teams = teams
}

func (c *CharacterCore) Collision() *collision.Collision { return c.collision }

func (c *CharacterCore) Reset() {
	c.Pos = vmath.Vec2{}
	c.Vel = vmath.Vec2{}
	c.NewHook = false
	c.HookPos = vmath.Vec2{}
	c.HookDir = vmath.Vec2{}
	c.HookTeleBase = vmath.Vec2{}
	c.HookTick = 0
	c.HookState = HookIdle
	c.SetHookedPlayer(-1)
	c.attached = nil
	c.Jumped = 0
	c.JumpedTotal = 0
	c.Jumps = 2
	c.TriggeredEvents = 0

	c.Solo = false
	c.Jetpack = false
	c.CollisionDisabled = false
	c.EndlessHook = false
	c.EndlessJump = false
	c.HammerHitDisabled = false
	c.GrenadeHitDisabled = false
	c.LaserHitDisabled = false
	c.ShotgunHitDisabled = false
	c.HookHitDisabled = false
	c.Super = false
	c.Invincible = false
	c.HasTelegunGun = false
	c.HasTelegunGrenade = false
	c.HasTelegunLaser = false
	c.FreezeStart = 0
	c.FreezeEnd = 0
	c.IsInFreeze = false
	c.DeepFrozen = false
	c.LiveFrozen = false

	// never both zero
	c.Input.TargetX = 0
	c.Input.TargetY = -1
}

func (c *CharacterCore) character(id int) *CharacterCore {
	if c.world == nil || id < 0 || id >= protocol.MaxClients {
		return nil
	}
	return c.world.Characters[id]
}

// IsSwitchActive reports whether door switch number is active for the
// core's team. Super team members pass through doors.
func (c *CharacterCore) IsSwitchActive(number int) bool {
	if c.world == nil || c.ID == -1 || c.teams == nil {
		return false
	}
	team := c.teams.Team(c.ID)
	if team == c.teams.Super() {
		return false
	}
	return c.world.SwitchActive(number, team)
}

// Tick runs the input, jump and hook step. useInput is false for
// characters whose input is unknown.
func (c *CharacterCore) Tick(useInput, doDeferredTick bool) {
	var active collision.SwitchActiveFunc
	if useInput {
		active = c.IsSwitchActive
	}
	c.MoveRestrictions = c.collision.GetMoveRestrictions(active, c.Pos, collision.DefaultRestrictionDistance, -1)
	c.TriggeredEvents = 0

	const half = PhysicalSize / 2
	grounded := c.collision.CheckPoint(c.Pos.X+half, c.Pos.Y+half+5) ||
		c.collision.CheckPoint(c.Pos.X-half, c.Pos.Y+half+5)
	targetDir := vmath.V(float32(c.Input.TargetX), float32(c.Input.TargetY)).Normalize()

	c.Vel.Y += c.Tuning.Gravity.Float()

	maxSpeed := c.Tuning.AirControlSpeed.Float()
	accel := c.Tuning.AirControlAccel.Float()
	friction := c.Tuning.AirFriction.Float()
	if grounded {
		maxSpeed = c.Tuning.GroundControlSpeed.Float()
		accel = c.Tuning.GroundControlAccel.Float()
		friction = c.Tuning.GroundFriction.Float()
	}

	if useInput {
		c.Direction = c.Input.Direction

		a := float32(math.Atan2(float64(c.Input.TargetY), float64(c.Input.TargetX)))
		if a < -(vmath.Pi / 2) {
			c.Angle = int((a + 2*vmath.Pi) * 256)
		} else {
			c.Angle = int(a * 256)
		}

		// Jumps == -1: one ground jump only. Jumps == 0: no jumps.
		// Jumps == 1: a ground or an air jump. Tiles may clear bit 2.
		if c.Input.Jump != 0 {
			if c.Jumped&1 == 0 {
				if grounded && (c.Jumped&2 == 0 || c.Jumps != 0) {
					c.TriggeredEvents |= CoreEventGroundJump
					c.Vel.Y = -c.Tuning.GroundJumpImpulse.Float()
					if c.Jumps > 1 {
						c.Jumped |= 1
					} else {
						c.Jumped |= 3
					}
					c.JumpedTotal = 0
				} else if c.Jumped&2 == 0 {
					c.TriggeredEvents |= CoreEventAirJump
					c.Vel.Y = -c.Tuning.AirJumpImpulse.Float()
					c.Jumped |= 3
					c.JumpedTotal++
				}
			}
		} else {
			c.Jumped &^= 1
		}

		if c.Input.Hook != 0 {
			if c.HookState == HookIdle {
				c.HookState = HookFlying
				c.HookPos = c.Pos.Add(targetDir.Scale(PhysicalSize * 1.5))
				c.HookDir = targetDir
				c.SetHookedPlayer(-1)
				c.HookTick = int(float32(protocol.TickSpeed) * (1.25 - c.Tuning.HookDuration.Float()))
				c.TriggeredEvents |= CoreEventHookLaunch
			}
		} else {
			c.SetHookedPlayer(-1)
			c.HookState = HookIdle
			c.HookPos = c.Pos
		}
	}

	// bit 1: jump held this input, bit 2: air jumps used up
	if grounded {
		c.Jumped &^= 2
		c.JumpedTotal = 0
	}

	switch {
	case c.Direction < 0:
		c.Vel.X = SaturatedAdd(-maxSpeed, maxSpeed, c.Vel.X, -accel)
	case c.Direction > 0:
		c.Vel.X = SaturatedAdd(-maxSpeed, maxSpeed, c.Vel.X, accel)
	default:
		c.Vel.X *= friction
	}

	switch {
	case c.HookState == HookIdle:
		c.SetHookedPlayer(-1)
		c.HookPos = c.Pos
	case c.HookState >= HookRetractStart && c.HookState < HookRetractEnd:
		c.HookState++
	case c.HookState == HookRetractEnd:
		c.TriggeredEvents |= CoreEventHookRetract
		c.HookState = HookRetracted
	case c.HookState == HookFlying:
		c.tickFlyingHook(targetDir)
	}

	if c.HookState == HookGrabbed {
		c.tickGrabbedHook()
	}

	if doDeferredTick {
		c.TickDeferred()
	}
}

func (c *CharacterCore) tickFlyingHook(targetDir vmath.Vec2) {
	hookBase := c.Pos
	if c.NewHook {
		hookBase = c.HookTeleBase
	}
	newPos := c.HookPos.Add(c.HookDir.Scale(c.Tuning.HookFireSpeed.Float()))
	if vmath.Distance(hookBase, newPos) > c.Tuning.HookLength.Float() {
		c.HookState = HookRetractStart
		newPos = hookBase.Add(newPos.Sub(hookBase).Normalize().Scale(c.Tuning.HookLength.Float()))
		c.HookReset = true
	}

	// keep the hook out of the ground
	var hitGround, retract, throughTele bool
	hit, teleNr := c.collision.IntersectLineTeleHook(c.HookPos, newPos)
	newPos = hit.At
	if hit.Tile != 0 {
		switch hit.Tile {
		case collision.TileNoHook:
			retract = true
		case collision.TileTeleInHook:
			throughTele = true
		default:
			hitGround = true
		}
		c.HookReset = true
	}

	// players first
	if !c.HookHitDisabled && c.world != nil && c.Tuning.PlayerHooking.Float() != 0 &&
		(c.HookState == HookFlying || !c.NewHook) {
		var dist float32
		for i, other := range c.world.Characters {
			if other == nil || other == c {
				continue
			}
			if !(c.Super || other.Super) && ((c.ID != -1 && !c.teams.CanCollide(i, c.ID)) || other.Solo || c.Solo) {
				continue
			}
			closest, ok := vmath.ClosestPointOnLine(c.HookPos, newPos, other.Pos)
			if !ok || vmath.Distance(other.Pos, closest) >= PhysicalSize+2 {
				continue
			}
			if c.HookedPlayer == -1 || vmath.Distance(c.HookPos, other.Pos) < dist {
				c.TriggeredEvents |= CoreEventHookAttachPlayer
				c.HookState = HookGrabbed
				c.SetHookedPlayer(i)
				dist = vmath.Distance(c.HookPos, other.Pos)
			}
		}
	}

	if c.HookState != HookFlying {
		return
	}
	if hitGround {
		c.TriggeredEvents |= CoreEventHookAttachGround
		c.HookState = HookGrabbed
	} else if retract {
		c.TriggeredEvents |= CoreEventHookHitNoHook
		c.HookState = HookRetractStart
	}

	if outs := c.collision.TeleOuts(teleNr - 1); throughTele && c.world != nil && len(outs) > 0 {
		c.TriggeredEvents = 0
		c.SetHookedPlayer(-1)

		c.NewHook = true
		out := outs[c.world.RandomOr0(len(outs))]
		c.HookPos = out.Add(targetDir.Scale(PhysicalSize * 1.5))
		c.HookDir = targetDir
		c.HookTeleBase = c.HookPos
	} else {
		c.HookPos = newPos
	}
}

func (c *CharacterCore) tickGrabbedHook() {
	if c.HookedPlayer != -1 && c.world != nil {
		if other := c.character(c.HookedPlayer); other != nil && c.ID != -1 && c.teams.CanKeepHook(c.ID, other.ID) {
			c.HookPos = other.Pos
		} else {
			c.SetHookedPlayer(-1)
			c.HookState = HookRetracted
			c.HookPos = c.Pos
		}
	}

	// ground hook drag; player hooks pull in TickDeferred
	if c.HookedPlayer == -1 && vmath.Distance(c.HookPos, c.Pos) > 46 {
		hookVel := c.HookPos.Sub(c.Pos).Normalize().Scale(c.Tuning.HookDragAccel.Float())
		// pulls up harder than down
		if hookVel.Y > 0 {
			hookVel.Y *= 0.3
		}
		// boosted when moving along, dampened otherwise
		if (hookVel.X < 0 && c.Direction < 0) || (hookVel.X > 0 && c.Direction > 0) {
			hookVel.X *= 0.95
		} else {
			hookVel.X *= 0.75
		}

		newVel := c.Vel.Add(hookVel)
		l := newVel.Length()
		if l < c.Tuning.HookDragSpeed.Float() || l < c.Vel.Length() {
			c.Vel = newVel
		}
	}

	// default hook time is 1.25 s
	c.HookTick++
	if c.HookedPlayer != -1 && (c.HookTick > protocol.TickSpeed+protocol.TickSpeed/5 || c.character(c.HookedPlayer) == nil) {
		c.SetHookedPlayer(-1)
		c.HookState = HookRetracted
		c.HookPos = c.Pos
	}
}

// TickDeferred applies player collision and player hook forces. It runs
// after every core has ticked.
func (c *CharacterCore) TickDeferred() {
	if c.world != nil {
		for i, other := range c.world.Characters {
			if other == nil || other == c || (c.ID != -1 && !c.teams.CanCollide(c.ID, i)) {
				continue
			}
			if !(c.Super || other.Super) && (c.Solo || other.Solo) {
				continue
			}

			dist := vmath.Distance(c.Pos, other.Pos)
			if dist <= 0 {
				continue
			}
			dir := c.Pos.Sub(other.Pos).Normalize()

			canCollide := c.Super || other.Super ||
				(!c.CollisionDisabled && !other.CollisionDisabled && c.Tuning.PlayerCollision.Float() != 0)
			if canCollide && dist < PhysicalSize*1.25 {
				a := PhysicalSize*1.45 - dist
				velocity := float32(0.5)
				// avoid adding force along the current movement
				if c.Vel.Length() > 0.0001 {
					velocity = 1 - (c.Vel.Normalize().Dot(dir)+1)/2
				}
				c.Vel = c.Vel.Add(dir.Scale(a * (velocity * 0.75)))
				c.Vel = c.Vel.Scale(0.85)
			}

			if !c.HookHitDisabled && c.HookedPlayer == i && c.Tuning.PlayerHooking.Float() != 0 && dist > PhysicalSize*1.5 {
				accel := c.Tuning.HookDragAccel.Float() * (dist / c.Tuning.HookLength.Float())
				dragSpeed := c.Tuning.HookDragSpeed.Float()

				// pull the hooked player
				tmp := vmath.V(
					SaturatedAdd(-dragSpeed, dragSpeed, other.Vel.X, accel*dir.X*1.5),
					SaturatedAdd(-dragSpeed, dragSpeed, other.Vel.Y, accel*dir.Y*1.5),
				)
				other.Vel = collision.ClampVel(other.MoveRestrictions, tmp)
				// and a little bit the one holding the hook
				tmp = vmath.V(
					SaturatedAdd(-dragSpeed, dragSpeed, c.Vel.X, -accel*dir.X*0.25),
					SaturatedAdd(-dragSpeed, dragSpeed, c.Vel.Y, -accel*dir.Y*0.25),
				)
				c.Vel = collision.ClampVel(c.MoveRestrictions, tmp)
			}
		}

		if c.HookState != HookFlying {
			c.NewHook = false
		}
	}

	if c.Vel.Length() > 6000 {
		c.Vel = c.Vel.Normalize().Scale(6000)
	}
}

// Move integrates the velocity against the map and other players.
func (c *CharacterCore) Move() {
	ramp := VelocityRamp(c.Vel.Length()*50, c.Tuning.VelrampStart.Float(), c.Tuning.VelrampRange.Float(), c.Tuning.VelrampCurvature.Float())
	c.Vel.X *= ramp

	newPos := c.Pos
	oldVel := c.Vel
	elasticity := vmath.V(c.Tuning.GroundElasticityX.Float(), c.Tuning.GroundElasticityY.Float())
	if c.collision.MoveBox(&newPos, &c.Vel, PhysicalSizeVec(), elasticity) {
		c.Jumped &^= 2
		c.JumpedTotal = 0
	}

	c.Colliding = 0
	if c.Vel.X < 0.001 && c.Vel.X > -0.001 {
		if oldVel.X > 0 {
			c.Colliding = 1
		} else if oldVel.X < 0 {
			c.Colliding = 2
		}
	} else {
		c.LeftWall = true
	}

	c.Vel.X *= 1 / ramp

	if c.world != nil && (c.Super || (c.Tuning.PlayerCollision.Float() != 0 && !c.CollisionDisabled && !c.Solo)) {
		dist := vmath.Distance(c.Pos, newPos)
		if dist > 0 {
			end := int(dist + 1)
			last := c.Pos
			for i := 0; i < end; i++ {
				a := float32(i) / dist
				pos := vmath.Mix(c.Pos, newPos, a)
				for p, other := range c.world.Characters {
					if other == nil || other == c {
						continue
					}
					if !(other.Super || c.Super) && (c.Solo || other.Solo || other.CollisionDisabled || (c.ID != -1 && !c.teams.CanCollide(c.ID, p))) {
						continue
					}
					d := vmath.Distance(pos, other.Pos)
					if d < PhysicalSize {
						if a > 0 {
							c.Pos = last
						} else if vmath.Distance(newPos, other.Pos) > d {
							c.Pos = newPos
						}
						return
					}
				}
				last = pos
			}
		}
	}

	c.Pos = newPos
}

// Write stores the core in its network form.
func (c *CharacterCore) Write(o *protocol.CharacterCore) {
	o.X = int32(vmath.RoundToInt(c.Pos.X))
	o.Y = int32(vmath.RoundToInt(c.Pos.Y))
	o.VelX = int32(vmath.RoundToInt(c.Vel.X * 256))
	o.VelY = int32(vmath.RoundToInt(c.Vel.Y * 256))
	o.HookState = int32(c.HookState)
	o.HookTick = int32(c.HookTick)
	o.HookX = int32(vmath.RoundToInt(c.HookPos.X))
	o.HookY = int32(vmath.RoundToInt(c.HookPos.Y))
	o.HookDx = int32(vmath.RoundToInt(c.HookDir.X * 256))
	o.HookDy = int32(vmath.RoundToInt(c.HookDir.Y * 256))
	o.HookedPlayer = int32(c.HookedPlayer)
	o.Jumped = int32(c.Jumped)
	o.Direction = int32(c.Direction)
	o.Angle = int32(c.Angle)
}

// Read loads the core from its network form.
func (c *CharacterCore) Read(o *protocol.CharacterCore) {
	c.Pos = vmath.V(float32(o.X), float32(o.Y))
	c.Vel = vmath.V(float32(o.VelX)/256, float32(o.VelY)/256)
	c.HookState = int(o.HookState)
	c.HookTick = int(o.HookTick)
	c.HookPos = vmath.V(float32(o.HookX), float32(o.HookY))
	c.HookDir = vmath.V(float32(o.HookDx)/256, float32(o.HookDy)/256)
	c.SetHookedPlayer(int(o.HookedPlayer))
	c.Jumped = int(o.Jumped)
	c.Direction = int(o.Direction)
	c.Angle = int(o.Angle)
}

// ReadDDNet loads the extended character state.
func (c *CharacterCore) ReadDDNet(o *protocol.DDNetCharacter) {
	has := func(flag int32) bool { return o.Flags&flag != 0 }

	c.Solo = has(protocol.CharacterFlagSolo)
	c.Jetpack = has(protocol.CharacterFlagJetpack)
	c.CollisionDisabled = has(protocol.CharacterFlagCollisionDisabled)
	c.HammerHitDisabled = has(protocol.CharacterFlagHammerHitDisabled)
	c.ShotgunHitDisabled = has(protocol.CharacterFlagShotgunHitDisabled)
	c.GrenadeHitDisabled = has(protocol.CharacterFlagGrenadeHitDisabled)
	c.LaserHitDisabled = has(protocol.CharacterFlagLaserHitDisabled)
	c.HookHitDisabled = has(protocol.CharacterFlagHookHitDisabled)
	c.Super = has(protocol.CharacterFlagSuper)
	c.Invincible = has(protocol.CharacterFlagInvincible)

	c.EndlessHook = has(protocol.CharacterFlagEndlessHook)
	c.EndlessJump = has(protocol.CharacterFlagEndlessJump)

	c.FreezeEnd = int(o.FreezeEnd)
	c.DeepFrozen = o.FreezeEnd == -1
	c.LiveFrozen = has(protocol.CharacterFlagMovementsDisabled)

	c.HasTelegunGrenade = has(protocol.CharacterFlagTelegunGrenade)
	c.HasTelegunGun = has(protocol.CharacterFlagTelegunGun)
	c.HasTelegunLaser = has(protocol.CharacterFlagTelegunLaser)

	c.Weapons[protocol.WeaponHammer].Got = has(protocol.CharacterFlagWeaponHammer)
	c.Weapons[protocol.WeaponGun].Got = has(protocol.CharacterFlagWeaponGun)
	c.Weapons[protocol.WeaponShotgun].Got = has(protocol.CharacterFlagWeaponShotgun)
	c.Weapons[protocol.WeaponGrenade].Got = has(protocol.CharacterFlagWeaponGrenade)
	c.Weapons[protocol.WeaponLaser].Got = has(protocol.CharacterFlagWeaponLaser)
	c.Weapons[protocol.WeaponNinja].Got = has(protocol.CharacterFlagWeaponNinja)

	c.Jumps = int(o.Jumps)

	// display values are only taken when sent
	if o.JumpedTotal != -1 {
		c.JumpedTotal = int(o.JumpedTotal)
	}
	if o.NinjaActivationTick != -1 {
		c.Ninja.ActivationTick = int(o.NinjaActivationTick)
	}
	if o.FreezeStart != -1 {
		c.FreezeStart = int(o.FreezeStart)
		c.IsInFreeze = has(protocol.CharacterFlagInFreeze)
	}
}

// Quantize rounds the core to what the network can represent.
func (c *CharacterCore) Quantize() {
	var o protocol.CharacterCore
	c.Write(&o)
	c.Read(&o)
}

// SetHookedPlayer changes the hook target and keeps the attached sets of
// both characters in sync.
func (c *CharacterCore) SetHookedPlayer(id int) {
	if id == c.HookedPlayer {
		return
	}
	if c.ID != -1 {
		if prev := c.character(c.HookedPlayer); prev != nil {
			delete(prev.attached, c.ID)
		}
		if next := c.character(id); next != nil {
			if next.attached == nil {
				next.attached = make(map[int]struct{})
			}
			next.attached[c.ID] = struct{}{}
		}
	}
	c.HookedPlayer = id
}

// AttachedPlayers returns the ids hooking this character, sorted.
func (c *CharacterCore) AttachedPlayers() []int {
	out := make([]int, 0, len(c.attached))
	for id := range c.attached {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// ClearAttached drops the set of characters hooking this one.
func (c *CharacterCore) ClearAttached() {
	c.attached = nil
}

// Clone returns a copy that does not share the attached set. The copy
// stays bound to the same world until SetCoreWorld is called.
func (c *CharacterCore) Clone() CharacterCore {
	cp := *c
	if c.attached != nil {
		cp.attached = make(map[int]struct{}, len(c.attached))
		for id := range c.attached {
			cp.attached[id] = struct{}{}
		}
	}
	return cp
}
