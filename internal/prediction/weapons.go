package prediction

import (
	"github.com/ddnetgo/predict/internal/collision"
	"github.com/ddnetgo/predict/internal/core/event"
	"github.com/ddnetgo/predict/internal/gamecore"
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/vmath"
)

// shotgunSpread is the angle offset of each vanilla shotgun pellet.
var shotgunSpread = [5]float32{-0.185, -0.070, 0, 0.070, 0.185}

func (c *Character) HandleWeapons() {
	c.HandleNinja()
	c.HandleJetpack()

	if c.reloadTimer > 0 {
		c.reloadTimer--
		return
	}
	c.FireWeapon()
}

// aim is the normalized direction of the latest input.
func (c *Character) aim() vmath.Vec2 {
	return vmath.V(float32(c.latestIn.TargetX), float32(c.latestIn.TargetY)).Normalize()
}

// fullAuto reports whether holding fire keeps shooting.
func (c *Character) fullAuto() bool {
	switch c.Core.ActiveWeapon {
	case protocol.WeaponGrenade, protocol.WeaponShotgun, protocol.WeaponLaser:
		return true
	case protocol.WeaponGun:
		return c.Core.Jetpack
	}
	return false
}

func (c *Character) willFire(fullAuto bool) bool {
	if presses, _ := gamecore.CountInput(c.latestPrevIn.Fire, c.latestIn.Fire); presses > 0 {
		return true
	}
	return fullAuto && c.latestIn.Fire&1 != 0 && c.Core.Weapons[c.Core.ActiveWeapon].Ammo != 0
}

// HandleJetpack pushes a jetpack gun user away from the aim direction.
func (c *Character) HandleJetpack() {
	if c.numInputs < 2 {
		return
	}
	if !c.willFire(c.fullAuto()) {
		return
	}
	if c.Core.Weapons[c.Core.ActiveWeapon].Ammo == 0 || c.FreezeTime != 0 {
		return
	}

	if c.Core.ActiveWeapon == protocol.WeaponGun && c.Core.Jetpack {
		strength := c.LastJetpackStrength
		if c.TuneZone != 0 {
			strength = c.world.TuningZone(c.TuneZone).JetpackStrength.Float()
		}
		c.TakeDamage(c.aim().Scale(-1 * (strength / 100 / 6.11)))
	}
}

// HandleNinja moves a dashing ninja and hits the characters it passes.
func (c *Character) HandleNinja() {
	if c.Core.ActiveWeapon != protocol.WeaponNinja {
		return
	}
	w := c.world
	rules := w.Config.Weapons

	if w.GameTick-c.Core.Ninja.ActivationTick > rules.NinjaDuration*w.GameTickSpeed()/1000 {
		c.RemoveNinja()
		return
	}

	c.SetWeapon(protocol.WeaponNinja)
	c.Core.Ninja.CurrentMoveTime--

	if c.Core.Ninja.CurrentMoveTime == 0 {
		c.Core.Vel = c.Core.Ninja.ActivationDir.Scale(c.Core.Ninja.OldVelAmount)
	}
	if c.Core.Ninja.CurrentMoveTime <= 0 {
		return
	}

	c.Core.Vel = c.Core.Ninja.ActivationDir.Scale(rules.NinjaVelocity)
	oldPos := c.Pos
	t := c.CurrentTuning()
	c.Collision().MoveBox(&c.Core.Pos, &c.Core.Vel, vmath.V(c.ProximityRadius, c.ProximityRadius),
		vmath.V(t.GroundElasticityX.Float(), t.GroundElasticityY.Float()))
	// the server resets the velocity after the dash step
	c.Core.Vel = vmath.Vec2{}

	radius := c.ProximityRadius * 2
	hits := w.FindEntities(oldPos, radius, protocol.MaxClients, EntityCharacter)
	if w.teams.Solo(c.ID) {
		return
	}
	for _, e := range hits {
		other := e.(*Character)
		if other == c || c.Team() != other.Team() {
			continue
		}
		if w.teams.Solo(other.ID) {
			return
		}
		if c.alreadyHit(other.ID) {
			continue
		}
		if vmath.Distance(other.Pos, c.Pos) > radius {
			continue
		}
		if len(c.hitObjects) < maxHitObjects {
			c.hitObjects = append(c.hitObjects, other.ID)
		}
		other.TakeDamage(vmath.V(0, -10))
	}
}

func (c *Character) alreadyHit(id int) bool {
	for _, h := range c.hitObjects {
		if h == id {
			return true
		}
	}
	return false
}

// DoWeaponSwitch applies a queued switch once the weapon reloaded.
func (c *Character) DoWeaponSwitch() {
	if c.reloadTimer != 0 || c.queuedWeapon == -1 || c.Core.Weapons[protocol.WeaponNinja].Got ||
		!c.Core.Weapons[c.queuedWeapon].Got {
		return
	}
	c.SetWeapon(c.queuedWeapon)
}

// HandleWeaponSwitch queues the weapon selected by the latest input.
func (c *Character) HandleWeaponSwitch() {
	if c.numInputs < 2 {
		return
	}

	wanted := c.Core.ActiveWeapon
	if c.queuedWeapon != -1 {
		wanted = c.queuedWeapon
	}

	anything := false
	for w := 0; w < protocol.NumWeapons-1; w++ {
		if c.Core.Weapons[w].Got {
			anything = true
		}
	}
	if !anything {
		return
	}

	next, _ := gamecore.CountInput(c.latestPrevIn.NextWeapon, c.latestIn.NextWeapon)
	prev, _ := gamecore.CountInput(c.latestPrevIn.PrevWeapon, c.latestIn.PrevWeapon)

	if next < 128 {
		for next > 0 {
			wanted = (wanted + 1) % protocol.NumWeapons
			if c.Core.Weapons[wanted].Got {
				next--
			}
		}
	}
	if prev < 128 {
		for prev > 0 {
			wanted--
			if wanted < 0 {
				wanted = protocol.NumWeapons - 1
			}
			if c.Core.Weapons[wanted].Got {
				prev--
			}
		}
	}

	if c.latestIn.WantedWeapon != 0 {
		wanted = c.input.WantedWeapon - 1
	}

	if wanted >= 0 && wanted < protocol.NumWeapons && wanted != c.Core.ActiveWeapon && c.Core.Weapons[wanted].Got {
		c.queuedWeapon = wanted
	}
	c.DoWeaponSwitch()
}

// FireWeapon shoots the active weapon if the input asks for it.
func (c *Character) FireWeapon() {
	w := c.world
	if c.numInputs < 2 || !w.Config.PredictWeapons || c.reloadTimer != 0 {
		return
	}

	c.DoWeaponSwitch()
	dir := c.aim()

	fullAuto := c.fullAuto() || c.FrozenLastTick

	// deep frozen players may not hammer themselves free without deepfly
	if !w.Config.Deepfly && c.Core.ActiveWeapon == protocol.WeaponHammer && c.Core.DeepFrozen {
		return
	}

	if !c.willFire(fullAuto) {
		return
	}
	if c.Core.Weapons[c.Core.ActiveWeapon].Ammo == 0 || c.FreezeTime != 0 {
		return
	}

	projStart := c.Pos.Add(dir.Scale(c.ProximityRadius * 0.75))
	t := c.CurrentTuning()
	speed := float32(w.GameTickSpeed())

	switch c.Core.ActiveWeapon {
	case protocol.WeaponHammer:
		c.fireHammer(projStart)

	case protocol.WeaponGun:
		if !c.Core.Jetpack {
			NewProjectile(w, protocol.WeaponGun, c.ID, projStart, dir, int(speed*t.GunLifetime.Float()), false, false, 0)
		}

	case protocol.WeaponShotgun:
		if w.Config.IsVanilla {
			const spread = 2
			for i := -spread; i <= spread; i++ {
				a := vmath.Angle(dir) + shotgunSpread[i+spread]
				v := 1 - float32(absInt(i))/spread
				s := w.Tuning.ShotgunSpeeddiff.Float() + (1-w.Tuning.ShotgunSpeeddiff.Float())*v
				NewProjectile(w, protocol.WeaponShotgun, c.ID, projStart, vmath.Direction(a).Scale(s),
					int(speed*w.Tuning.ShotgunLifetime.Float()), false, false, 0)
			}
		} else if w.Config.IsDDRace {
			NewLaser(w, c.Pos, dir, t.LaserReach.Float(), c.ID, protocol.WeaponShotgun)
		}

	case protocol.WeaponGrenade:
		NewProjectile(w, protocol.WeaponGrenade, c.ID, projStart, dir, int(speed*t.GrenadeLifetime.Float()), false, true, 0)

	case protocol.WeaponLaser:
		NewLaser(w, c.Pos, dir, t.LaserReach.Float(), c.ID, protocol.WeaponLaser)

	case protocol.WeaponNinja:
		c.hitObjects = c.hitObjects[:0]
		c.Core.Ninja.ActivationDir = dir
		c.Core.Ninja.CurrentMoveTime = w.Config.Weapons.NinjaMovetime * w.GameTickSpeed() / 1000
		c.Core.Ninja.OldVelAmount = c.Core.Vel.Length()
	}

	c.attackTick = w.GameTick

	if c.reloadTimer == 0 {
		c.reloadTimer = int(t.FireDelay(c.Core.ActiveWeapon) * speed)
	}
}

// fireHammer knocks back every character and target switch at the hammer
// head.
func (c *Character) fireHammer(projStart vmath.Vec2) {
	w := c.world
	c.hitObjects = c.hitObjects[:0]
	if c.Core.HammerHitDisabled {
		return
	}

	t := c.CurrentTuning()
	hits := 0
	for _, e := range w.FindEntities(projStart, c.ProximityRadius*0.5, protocol.MaxClients, EntityCharacter) {
		target := e.(*Character)
		if target == c || !c.CanCollide(target.ID) {
			continue
		}

		dir := vmath.V(0, -1)
		if target.Pos.Sub(c.Pos).Length() > 0 {
			dir = target.Pos.Sub(c.Pos).Normalize()
		}

		temp := target.Core.Vel.Add(dir.Add(vmath.V(0, -1.1)).Normalize().Scale(10))
		temp = collision.ClampVel(target.MoveRestrictions, temp).Sub(target.Core.Vel)
		force := vmath.V(0, -1).Add(temp)

		if w.Config.IsFNG {
			if c.GameTeam == target.GameTeam && target.LastSnapWeapon == protocol.WeaponNinja { // melt hammer
				force.X *= 50 * 0.01
				force.Y *= 50 * 0.01
			} else {
				force.X *= 320 * 0.01
				force.Y *= 120 * 0.01
			}
		} else {
			force = force.Scale(t.HammerStrength.Float())
		}

		target.TakeDamage(force)
		target.UnFreeze()
		hits++
	}

	for _, e := range w.FindEntities(projStart, c.ProximityRadius*0.5, protocol.MaxClients, EntityTargetSwitch) {
		if e.(*TargetSwitch).GetHit(c.Team(), w.GameTick) {
			hits++
		}
	}

	if hits > 0 {
		w.emitSound(projStart, event.SoundHammerHit)
		c.reloadTimer = int(t.HammerHitFireDelay.Float() * float32(w.GameTickSpeed()) / 1000)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
