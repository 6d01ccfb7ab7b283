package prediction

import (
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/vmath"
)

const (
	pickupPhysSize = 14
	// pickupCollectRadius is the radius characters collect pickups in.
	pickupCollectRadius = 20
)

// Pickup is a weapon, ninja or armor pickup. Pickups never disappear in
// DDRace, they only change what the character carries.
type Pickup struct {
	EntityBase

	Type    int
	Subtype int

	// drift is the conveyor speed the pickup moves with.
	drift vmath.Vec2
}

func newPickupFromData(w *GameWorld, id int, d *protocol.PickupData) *Pickup {
	p := &Pickup{
		EntityBase: newEntityBase(w, EntityPickup, d.Pos, pickupPhysSize),
		Type:       d.Type,
		Subtype:    d.Subtype,
	}
	p.ID = id
	p.Number = d.SwitchNumber
	if p.Number > 0 {
		p.Layer = LayerSwitch
	}
	return p
}

func (p *Pickup) clone(w *GameWorld) Entity {
	cp := *p
	cp.EntityBase = p.EntityBase.detach(w, p)
	return &cp
}

// moverStep moves an entity along conveyor tiles. It runs every 0.15s of
// game time and keeps the last conveyor speed between tiles.
func moverStep(w *GameWorld, pos, drift *vmath.Vec2) {
	if w.GameTick%int(float32(w.GameTickSpeed())*0.15) != 0 {
		return
	}
	if idx, speed := w.collision.MoverSpeed(vmath.RoundToInt(pos.X), vmath.RoundToInt(pos.Y)); idx != 0 {
		*drift = speed
	}
	*pos = pos.Add(*drift)
}

func (p *Pickup) Tick() {
	w := p.world
	moverStep(w, &p.Pos, &p.drift)

	for _, e := range w.FindEntities(p.Pos, pickupCollectRadius, protocol.MaxClients, EntityCharacter) {
		c := e.(*Character)
		if w.Config.IsVanilla && vmath.Distance(p.Pos, c.Pos) >= pickupCollectRadius*2 {
			continue
		}
		if p.Layer == LayerSwitch && p.Number > 0 {
			if status, ok := w.switchStatus(p.Number, c.Team()); ok && !status {
				continue
			}
		}
		p.apply(c)
	}
}

func (p *Pickup) apply(c *Character) {
	cfg := &p.world.Config
	armor := cfg.IsDDRace && cfg.PredictDDRace && !c.Core.Super

	switch p.Type {
	case protocol.PowerupHealth:
		c.FreezeDefault()

	case protocol.PowerupArmor:
		if !armor {
			return
		}
		stripped := false
		for w := protocol.WeaponShotgun; w < protocol.NumWeapons; w++ {
			if c.Core.Weapons[w].Got {
				c.Core.Weapons[w].Got = false
				c.Core.Weapons[w].Ammo = 0
				stripped = true
			}
		}
		c.resetNinja()
		if stripped {
			c.lastWeapon = protocol.WeaponGun
		}
		if c.Core.ActiveWeapon >= protocol.WeaponShotgun {
			c.SetActiveWeapon(protocol.WeaponHammer)
		}

	case protocol.PowerupArmorShotgun:
		if armor {
			c.stripWeapon(protocol.WeaponShotgun)
		}
	case protocol.PowerupArmorGrenade:
		if armor {
			c.stripWeapon(protocol.WeaponGrenade)
		}
	case protocol.PowerupArmorLaser:
		if armor {
			c.stripWeapon(protocol.WeaponLaser)
		}
	case protocol.PowerupArmorNinja:
		if armor {
			c.resetNinja()
		}

	case protocol.PowerupWeapon:
		if p.Subtype >= 0 && p.Subtype < protocol.NumWeapons &&
			(!c.Core.Weapons[p.Subtype].Got || c.Core.Weapons[p.Subtype].Ammo != -1) {
			c.GiveWeapon(p.Subtype, false)
		}

	case protocol.PowerupNinja:
		c.GiveNinja()
	}
}

func (c *Character) stripWeapon(w int) {
	if c.Core.Weapons[w].Got {
		c.Core.Weapons[w].Got = false
		c.Core.Weapons[w].Ammo = 0
		c.lastWeapon = protocol.WeaponGun
	}
	if c.Core.ActiveWeapon == w {
		c.SetActiveWeapon(protocol.WeaponHammer)
	}
}

func (c *Character) resetNinja() {
	c.Core.Ninja.ActivationDir = vmath.Vec2{}
	c.Core.Ninja.ActivationTick = -500
	c.Core.Ninja.CurrentMoveTime = 0
}

// Match reports whether other is the same pickup.
func (p *Pickup) Match(other *Pickup) bool {
	return p.Type == other.Type && p.Subtype == other.Subtype && vmath.Distance(p.Pos, other.Pos) <= 2
}
