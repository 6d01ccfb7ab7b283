package prediction

import (
	"sort"

	"github.com/ddnetgo/predict/internal/core/ecs"
	"github.com/ddnetgo/predict/internal/protocol"
)

// CharacterSnap is a character as the server would send it.
type CharacterSnap struct {
	ID       int
	GameTeam int
	Obj      *protocol.Character
	Ext      *protocol.DDNetCharacter
}

// ObjectSnap is one non character object of a snapshot.
type ObjectSnap struct {
	ID  int
	Obj protocol.Object
}

// Snap writes the world as a snapshot, the way an authoritative server
// sends it. Items come sorted by type and id. Entities without a snapshot
// id get one derived from their handle.
func (w *GameWorld) Snap() ([]CharacterSnap, []ObjectSnap) {
	var chars []CharacterSnap
	var objs []ObjectSnap
	for t := range w.lists {
		w.lists[t].Each(func(h ecs.EntityID, e Entity) {
			if c, ok := e.(*Character); ok {
				obj, ext := c.Snap()
				chars = append(chars, CharacterSnap{ID: c.ID, GameTeam: c.GameTeam, Obj: obj, Ext: ext})
				return
			}
			id := e.Base().ID
			if id < 0 {
				id = protocol.MaxClients + int(h.Index())
			}
			if o := snapObject(e); o != nil {
				objs = append(objs, ObjectSnap{ID: id, Obj: o})
			}
		})
	}
	sort.Slice(chars, func(i, j int) bool { return chars[i].ID < chars[j].ID })
	sort.Slice(objs, func(i, j int) bool {
		ti, tj := objs[i].Obj.ObjType(), objs[j].Obj.ObjType()
		if ti != tj {
			return ti < tj
		}
		return objs[i].ID < objs[j].ID
	})
	return chars, objs
}

func snapObject(e Entity) protocol.Object {
	switch x := e.(type) {
	case *Projectile:
		d := x.Data()
		o := &protocol.DDNetProjectile{
			X:            int32(d.StartPos.X * 100),
			Y:            int32(d.StartPos.Y * 100),
			VelX:         int32(d.StartVel.X * 1e6),
			VelY:         int32(d.StartVel.Y * 1e6),
			Type:         int32(d.Type),
			StartTick:    int32(d.StartTick),
			Owner:        int32(d.Owner),
			SwitchNumber: int32(d.SwitchNumber),
			TuneZone:     int32(d.TuneZone),
		}
		if d.Explosive {
			o.Flags |= protocol.ProjectileFlagExplosive
		}
		if d.Freeze {
			o.Flags |= protocol.ProjectileFlagFreeze
		}
		if d.Bouncing&1 != 0 {
			o.Flags |= protocol.ProjectileFlagBounceHorizontal
		}
		if d.Bouncing&2 != 0 {
			o.Flags |= protocol.ProjectileFlagBounceVertical
		}
		return o
	case *Laser:
		d := x.Data()
		return &protocol.DDNetLaser{
			ToX: int32(d.To.X), ToY: int32(d.To.Y),
			FromX: int32(d.From.X), FromY: int32(d.From.Y),
			StartTick: int32(d.StartTick), Owner: int32(d.Owner),
			Type: int32(d.Type), SwitchNumber: int32(x.Number), Subtype: int32(d.Subtype),
		}
	case *Pickup:
		return &protocol.DDNetPickup{
			X: int32(x.Pos.X), Y: int32(x.Pos.Y),
			Type: int32(x.Type), Subtype: int32(x.Subtype), SwitchNumber: int32(x.Number),
		}
	}
	// map entities are sent by the map itself
	return nil
}

// Snap writes the character and its extended state.
func (c *Character) Snap() (*protocol.Character, *protocol.DDNetCharacter) {
	core := &c.Core
	obj := &protocol.Character{
		Health:     10,
		Weapon:     int32(core.ActiveWeapon),
		AttackTick: int32(c.attackTick),
		AmmoCount:  int32(core.Weapons[core.ActiveWeapon].Ammo),
	}
	core.Write(&obj.CharacterCore)
	obj.Tick = int32(c.world.GameTick)

	ext := &protocol.DDNetCharacter{
		Jumps:               int32(core.Jumps),
		TeleCheckpoint:      int32(c.TeleCheckpoint),
		StrongWeakID:        int32(c.StrongWeakID),
		JumpedTotal:         int32(core.JumpedTotal),
		NinjaActivationTick: int32(core.Ninja.ActivationTick),
		FreezeStart:         int32(core.FreezeStart),
		TargetX:             int32(c.input.TargetX),
		TargetY:             int32(c.input.TargetY),
		TuneZoneOverride:    int32(c.TuneZoneOverride),
	}
	switch {
	case core.DeepFrozen:
		ext.FreezeEnd = -1
	case c.FreezeTime > 0:
		ext.FreezeEnd = int32(c.world.GameTick + c.FreezeTime)
	}

	flags := []struct {
		on   bool
		flag int32
	}{
		{core.Solo, protocol.CharacterFlagSolo},
		{core.Jetpack, protocol.CharacterFlagJetpack},
		{core.CollisionDisabled, protocol.CharacterFlagCollisionDisabled},
		{core.EndlessHook, protocol.CharacterFlagEndlessHook},
		{core.EndlessJump, protocol.CharacterFlagEndlessJump},
		{core.Super, protocol.CharacterFlagSuper},
		{core.HammerHitDisabled, protocol.CharacterFlagHammerHitDisabled},
		{core.ShotgunHitDisabled, protocol.CharacterFlagShotgunHitDisabled},
		{core.GrenadeHitDisabled, protocol.CharacterFlagGrenadeHitDisabled},
		{core.LaserHitDisabled, protocol.CharacterFlagLaserHitDisabled},
		{core.HookHitDisabled, protocol.CharacterFlagHookHitDisabled},
		{core.HasTelegunGun, protocol.CharacterFlagTelegunGun},
		{core.HasTelegunGrenade, protocol.CharacterFlagTelegunGrenade},
		{core.HasTelegunLaser, protocol.CharacterFlagTelegunLaser},
		{core.Weapons[protocol.WeaponHammer].Got, protocol.CharacterFlagWeaponHammer},
		{core.Weapons[protocol.WeaponGun].Got, protocol.CharacterFlagWeaponGun},
		{core.Weapons[protocol.WeaponShotgun].Got, protocol.CharacterFlagWeaponShotgun},
		{core.Weapons[protocol.WeaponGrenade].Got, protocol.CharacterFlagWeaponGrenade},
		{core.Weapons[protocol.WeaponLaser].Got, protocol.CharacterFlagWeaponLaser},
		{core.Weapons[protocol.WeaponNinja].Got, protocol.CharacterFlagWeaponNinja},
		{core.LiveFrozen, protocol.CharacterFlagMovementsDisabled},
		{core.IsInFreeze, protocol.CharacterFlagInFreeze},
		{core.Invincible, protocol.CharacterFlagInvincible},
	}
	for _, f := range flags {
		if f.on {
			ext.Flags |= f.flag
		}
	}
	return obj, ext
}
