package prediction

import (
	"math"

	"github.com/ddnetgo/predict/internal/collision"
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/vmath"
)

// DDRaceTick prepares the input for the core tick: frozen players lose
// control and the tune zone is refreshed.
func (c *Character) DDRaceTick() {
	c.input = c.savedInput
	if c.Core.LiveFrozen && !c.CanMoveInFreeze && !c.Core.Super && !c.Core.Invincible {
		// hook and weapons still work in live freeze
		c.input.Direction = 0
		c.input.Jump = 0
	}
	if c.FreezeTime > 0 {
		c.FreezeTime--
		if !c.CanMoveInFreeze {
			c.input.Direction = 0
			c.input.Jump = 0
			c.input.Hook = 0
		}
		if c.FreezeTime == 1 {
			c.UnFreeze()
		}
	}

	c.HandleTuneLayer()

	col := c.Collision()
	idx := col.GetPureMapIndex(c.Pos)
	c.Core.IsInFreeze = false
	for _, tile := range [...]int{col.GetTileIndex(idx), col.GetFrontTileIndex(idx), col.GetSwitchType(idx)} {
		if tile == collision.TileFreeze || tile == collision.TileDFreeze || tile == collision.TileLFreeze || tile == collision.TileDeath {
			c.Core.IsInFreeze = true
			break
		}
	}
	r := c.ProximityRadius / 3
	for _, off := range [...]vmath.Vec2{{X: r, Y: -r}, {X: r, Y: r}, {X: -r, Y: -r}, {X: -r, Y: r}} {
		p := c.Pos.Add(off)
		if col.GetCollisionAt(p.X, p.Y) == collision.TileDeath || col.GetFrontCollisionAt(p.X, p.Y) == collision.TileDeath {
			c.Core.IsInFreeze = true
		}
	}
}

// DDRacePostCoreTick applies the jump rules and every tile crossed this
// tick.
func (c *Character) DDRacePostCoreTick() {
	if !c.world.Config.PredictDDRace {
		return
	}

	if c.Core.EndlessHook {
		c.Core.HookTick = 0
	}
	c.FrozenLastTick = false

	if c.Core.DeepFrozen && !c.Core.Super && !c.Core.Invincible {
		c.FreezeDefault()
	}

	// tiles like refill jumps, stoppers and walljumps may override these
	switch {
	case c.Core.Jumps == -1:
		// a single ground jump, feet always dark
		c.Core.Jumped |= 2
	case c.Core.Jumps == 0:
		c.Core.Jumped |= 2
	case c.Core.Jumps == 1 && c.Core.Jumped > 0:
		// every jump is the last one
		c.Core.Jumped |= 2
	case c.Core.JumpedTotal < c.Core.Jumps-1 && c.Core.Jumped > 1:
		c.Core.Jumped = 1
	}
	if (c.Core.Super || c.Core.EndlessJump) && c.Core.Jumped > 1 {
		c.Core.Jumped = 1
	}

	col := c.Collision()
	current := col.GetMapIndex(c.Pos)
	c.HandleSkippableTiles(current)

	// every tile between the last and the current position counts
	indices := col.GetMapIndices(c.PrevPos, c.Pos, 0)
	if len(indices) == 0 {
		c.HandleTiles(current)
		return
	}
	for _, idx := range indices {
		c.HandleTiles(idx)
	}
}

// HandleTuneLayer picks up the tune zone under the character. The local
// character also carries its zone into the global tuning.
func (c *Character) HandleTuneLayer() {
	w := c.world
	zone := 0
	if w.Config.UseTuneZones {
		zone = w.collision.IsTune(w.collision.GetMapIndex(c.Pos))
	}
	c.SetTuneZone(zone)

	t := c.CurrentTuning()
	if c.IsLocal {
		w.Tuning = *t
	}
	c.Core.Tuning = *t
}

// speedupAngle is the angle of v measured counterclockwise with y pointing
// down, in [0, 2pi).
func speedupAngle(v vmath.Vec2) float32 {
	var a float64
	switch {
	case v.X > 0.0000001:
		a = -math.Atan(float64(v.Y / v.X))
	case v.X < 0.0000001:
		a = math.Atan(float64(v.Y/v.X)) + 2*math.Asin(1)
	case v.Y > 0.0000001:
		a = math.Asin(1)
	default:
		a = math.Asin(-1)
	}
	if a < 0 {
		a += 4 * math.Asin(1)
	}
	return float32(a)
}

// HandleSkippableTiles applies speedups. They act on the tile at the
// current position only.
func (c *Character) HandleSkippableTiles(idx int) {
	col := c.Collision()
	if idx < 0 || col.IsSpeedup(idx) == 0 {
		return
	}

	dir, force, maxSpeed := col.GetSpeedup(idx)
	vel := c.Core.Vel
	if force == 255 && maxSpeed != 0 {
		c.Core.Vel = dir.Scale(float32(maxSpeed / 5))
		return
	}

	if maxSpeed > 0 && maxSpeed < 5 {
		maxSpeed = 5
	}
	if maxSpeed > 0 {
		diff := speedupAngle(dir) - speedupAngle(vel)
		speedLeft := float32(maxSpeed)/5 - float32(math.Cos(float64(diff)))*vel.Length()
		switch {
		case absInt(int(speedLeft)) > force && speedLeft > 0.0000001:
			vel = vel.Add(dir.Scale(float32(force)))
		case absInt(int(speedLeft)) > force:
			vel = vel.Add(dir.Scale(float32(-force)))
		default:
			vel = vel.Add(dir.Scale(speedLeft))
		}
	} else {
		vel = vel.Add(dir.Scale(float32(force)))
	}
	c.Core.Vel = collision.ClampVel(c.MoveRestrictions, vel)
}

// HandleTiles applies the game, front and switch tile at map index idx.
func (c *Character) HandleTiles(idx int) {
	w := c.world
	col := c.Collision()

	c.TileIndex = col.GetTileIndex(idx)
	c.TileFIndex = col.GetFrontTileIndex(idx)
	c.MoveRestrictions = col.GetMoveRestrictions(c.Core.IsSwitchActive, c.Pos, collision.DefaultRestrictionDistance, idx)

	// stopper
	if c.Core.Vel.Y > 0 && c.MoveRestrictions&collision.CantMoveDown != 0 {
		c.Core.Jumped = 0
		c.Core.JumpedTotal = 0
	}
	c.ApplyMoveRestrictions()

	if !w.Config.PredictTiles {
		return
	}
	if idx < 0 {
		c.LastRefillJumps = false
		return
	}

	c.handleSwitchTile(idx)

	if cp := col.IsTeleCheckpoint(idx); cp != 0 {
		c.TeleCheckpoint = cp
	}

	is := func(tile int) bool { return c.TileIndex == tile || c.TileFIndex == tile }

	switch {
	case is(collision.TileFreeze) && !c.Core.DeepFrozen:
		c.FreezeDefault()
	case is(collision.TileUnfreeze) && !c.Core.DeepFrozen:
		c.UnFreeze()
	}

	switch {
	case is(collision.TileDFreeze) && !c.Core.Super && !c.Core.DeepFrozen:
		c.Core.DeepFrozen = true
	case is(collision.TileDUnfreeze) && !c.Core.Super && c.Core.DeepFrozen:
		c.Core.DeepFrozen = false
	}

	switch {
	case is(collision.TileLFreeze) && !c.Core.Super:
		c.Core.LiveFrozen = true
	case is(collision.TileLUnfreeze) && !c.Core.Super:
		c.Core.LiveFrozen = false
	}

	switch {
	case is(collision.TileEHookEnable):
		c.Core.EndlessHook = true
	case is(collision.TileEHookDisable):
		c.Core.EndlessHook = false
	}

	switch {
	case is(collision.TileNPCDisable):
		c.Core.CollisionDisabled = true
	case is(collision.TileNPCEnable):
		c.Core.CollisionDisabled = false
	}

	switch {
	case is(collision.TileNPHDisable):
		c.Core.HookHitDisabled = true
	case is(collision.TileNPHEnable):
		c.Core.HookHitDisabled = false
	}

	switch {
	case is(collision.TileUnlimitedJumpsOn):
		c.Core.EndlessJump = true
	case is(collision.TileUnlimitedJumpsOff):
		c.Core.EndlessJump = false
	}

	if is(collision.TileWallJump) && c.Core.Vel.Y > 0 && c.Core.Colliding != 0 && c.Core.LeftWall {
		c.Core.LeftWall = false
		c.Core.JumpedTotal = 0
		if c.Core.Jumps >= 2 {
			c.Core.JumpedTotal = c.Core.Jumps - 2
		}
		c.Core.Jumped = 1
	}

	switch {
	case is(collision.TileJetpackEnable):
		c.Core.Jetpack = true
	case is(collision.TileJetpackDisable):
		c.Core.Jetpack = false
	}

	switch {
	case is(collision.TileSoloEnable) && !w.teams.Solo(c.ID):
		c.SetSolo(true)
	case is(collision.TileSoloDisable) && w.teams.Solo(c.ID):
		c.SetSolo(false)
	}

	if is(collision.TileRefillJumps) {
		if !c.LastRefillJumps {
			c.Core.JumpedTotal = 0
			c.Core.Jumped = 0
			c.LastRefillJumps = true
		}
	} else {
		c.LastRefillJumps = false
	}

	switch {
	case is(collision.TileTeleGunEnable):
		c.Core.HasTelegunGun = true
	case is(collision.TileTeleGunDisable):
		c.Core.HasTelegunGun = false
	}
	switch {
	case is(collision.TileTeleGrenadeOn):
		c.Core.HasTelegunGrenade = true
	case is(collision.TileTeleGrenadeOff):
		c.Core.HasTelegunGrenade = false
	}
	switch {
	case is(collision.TileTeleLaserOn):
		c.Core.HasTelegunLaser = true
	case is(collision.TileTeleLaserOff):
		c.Core.HasTelegunLaser = false
	}
}

// handleSwitchTile applies the switch layer tile at idx.
func (c *Character) handleSwitchTile(idx int) {
	w := c.world
	col := c.Collision()
	team := c.Team()
	if team == w.teams.Super() {
		return
	}

	number := col.GetSwitchNumber(idx)
	delay := col.GetSwitchDelay(idx)
	active := func() bool {
		if number == 0 {
			return true
		}
		status, ok := w.switchStatus(number, team)
		return ok && status
	}
	set := func(status bool, endTick, typ int) {
		if number <= 0 || number >= len(w.core.Switchers) || team < 0 || team >= protocol.MaxClients {
			return
		}
		s := &w.core.Switchers[number]
		s.Status[team] = status
		s.EndTick[team] = endTick
		s.Type[team] = typ
		s.LastUpdateTick[team] = w.GameTick
	}
	timedEnd := w.GameTick + 1 + delay*w.GameTickSpeed()

	switch typ := col.GetSwitchType(idx); typ {
	case collision.TileSwitchOpen:
		set(true, 0, typ)
	case collision.TileSwitchTimedOpen:
		set(true, timedEnd, typ)
	case collision.TileSwitchTimedClose:
		set(false, timedEnd, typ)
	case collision.TileSwitchClose:
		set(false, 0, typ)
	case collision.TileFreeze:
		if active() {
			c.Freeze(delay)
		}
	case collision.TileDFreeze:
		if active() {
			c.Core.DeepFrozen = true
		}
	case collision.TileDUnfreeze:
		if active() {
			c.Core.DeepFrozen = false
		}
	case collision.TileLFreeze:
		if active() {
			c.Core.LiveFrozen = true
		}
	case collision.TileLUnfreeze:
		if active() {
			c.Core.LiveFrozen = false
		}
	case collision.TileHitEnable, collision.TileHitDisable:
		disabled := typ == collision.TileHitDisable
		switch delay {
		case protocol.WeaponHammer:
			c.Core.HammerHitDisabled = disabled
		case protocol.WeaponShotgun:
			c.Core.ShotgunHitDisabled = disabled
		case protocol.WeaponGrenade:
			c.Core.GrenadeHitDisabled = disabled
		case protocol.WeaponLaser:
			c.Core.LaserHitDisabled = disabled
		}
	case collision.TileJump:
		jumps := delay
		if jumps == 255 {
			jumps = -1
		}
		c.Core.Jumps = jumps
	}
}
