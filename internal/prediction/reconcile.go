package prediction

import (
	"github.com/ddnetgo/predict/internal/core/ecs"
	"github.com/ddnetgo/predict/internal/gamecore"
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/vmath"
)

// ownerInferenceTicks is how old an unowned projectile may be for its
// owner to be guessed from the character positions.
const ownerInferenceTicks = 4

// NetObjBegin starts merging a snapshot. Every entity is marked for
// destroy until the snapshot shows it again.
func (w *GameWorld) NetObjBegin(teams gamecore.Teams, localID int) {
	w.teams = teams
	w.localClientID = localID

	for t := range w.lists {
		w.lists[t].Each(func(_ ecs.EntityID, e Entity) {
			e.Base().MarkForDestroy()
			if c, ok := e.(*Character); ok {
				c.KeepHooked = false
			}
		})
	}
	w.OnModified()
}

// NetCharAdd merges the character of client id. Characters the local
// player cannot interact with are not predicted.
func (w *GameWorld) NetCharAdd(id int, obj *protocol.Character, ext *protocol.DDNetCharacter, gameTeam int, isLocal bool) {
	if id < 0 || id >= protocol.MaxClients || !w.IsLocalTeam(id) {
		return
	}
	c, _ := w.GetEntity(id, EntityCharacter).(*Character)
	if c != nil {
		c.Read(obj, ext, isLocal)
		c.Keep()
	} else {
		c = NewCharacter(w, id, obj, ext)
		c.IsLocal = isLocal
		w.InsertEntity(c, false)
	}
	c.GameTeam = gameTeam
}

// NetObjAdd merges one snapshot object. ex is the entity extension item
// with the same id, or nil.
func (w *GameWorld) NetObjAdd(id int, obj protocol.Object, ex *protocol.EntityEx) {
	switch o := obj.(type) {
	case *protocol.Projectile, *protocol.DDRaceProjectile, *protocol.DDNetProjectile:
		if d, ok := protocol.ExtractProjectile(obj, ex); ok && w.Config.PredictWeapons {
			w.addProjectile(id, &d)
		}
	case *protocol.Laser, *protocol.DDNetLaser:
		if d, ok := protocol.ExtractLaser(obj, ex); ok && w.Config.PredictWeapons {
			w.addLaser(id, &d)
		}
	case *protocol.Pickup, *protocol.DDNetPickup:
		if d, ok := protocol.ExtractPickup(obj, ex); ok && w.Config.PredictWeapons {
			w.addPickup(id, &d)
		}
	case *protocol.SwitchState:
		w.readSwitchState(o)
	case *protocol.TargetSwitch:
		w.addTargetSwitch(id, o)
	}
}

// NetObjEnd finishes the merge. A character that vanished while another
// one hooks it is kept at the hook position for another snapshot.
func (w *GameWorld) NetObjEnd() {
	for _, c := range w.characters {
		if c == nil || c.MarkedForDestroy {
			continue
		}
		hooked := w.GetCharacterByID(c.Core.HookedPlayer)
		if hooked == nil || !hooked.MarkedForDestroy {
			continue
		}
		hooked.Pos = c.Core.HookPos
		hooked.Core.Pos = c.Core.HookPos
		hooked.ResetVelocity()
		hooked.savedInput = gamecore.Input{TargetY: -1}
		hooked.KeepHooked = true
		hooked.MarkedForDestroy = false
	}
	w.RemoveEntities()

	// hooks into characters that are gone now
	for _, c := range w.characters {
		if c == nil {
			continue
		}
		if id := c.Core.HookedPlayer; id >= 0 && w.GetCharacterByID(id) == nil {
			c.Core.SetHookedPlayer(-1)
			c.Core.HookState = gamecore.HookRetracted
		}
	}
}

// entitiesMatch applies the Match rule of the entity type.
func entitiesMatch(a, b Entity) bool {
	switch x := a.(type) {
	case *Character:
		y, ok := b.(*Character)
		return ok && x.Match(y)
	case *Projectile:
		y, ok := b.(*Projectile)
		return ok && x.Match(y)
	case *Laser:
		y, ok := b.(*Laser)
		return ok && x.Match(y)
	case *Pickup:
		y, ok := b.(*Pickup)
		return ok && x.Match(y)
	case *Dragger:
		y, ok := b.(*Dragger)
		return ok && x.Match(y)
	case *Door:
		y, ok := b.(*Door)
		return ok && x.Match(y)
	case *Plasma:
		y, ok := b.(*Plasma)
		return ok && x.Match(y)
	case *TargetSwitch:
		y, ok := b.(*TargetSwitch)
		return ok && x.Match(y)
	}
	return false
}

// FindMatch returns the entity of type t with snapshot id that matches
// candidate, or nil.
func (w *GameWorld) FindMatch(id int, t EntityType, candidate Entity) Entity {
	e := w.GetEntity(id, t)
	if e == nil || !entitiesMatch(candidate, e) {
		return nil
	}
	return e
}

// findUnassigned returns the first entity of type t without a snapshot id
// that matches candidate.
func (w *GameWorld) findUnassigned(t EntityType, candidate Entity) Entity {
	var found Entity
	w.lists[t].Each(func(_ ecs.EntityID, e Entity) {
		if found == nil && e.Base().ID == -1 && entitiesMatch(candidate, e) {
			found = e
		}
	})
	return found
}

func (w *GameWorld) addProjectile(id int, d *protocol.ProjectileData) {
	if !w.IsLocalTeam(d.Owner) {
		return
	}
	net := newProjectileFromData(w, id, d)
	// balls of other mods fly with non unit speed
	if net.Type != protocol.WeaponShotgun && vmath.Abs(net.Direction.Length()-1) > 0.02 {
		return
	}

	if e := w.FindMatch(id, EntityProjectile, net); e != nil {
		p := e.(*Projectile)
		p.Keep()
		if p.Type == protocol.WeaponShotgun && w.Config.IsDDRace {
			p.LifeSpan = 20*w.GameTickSpeed() - (w.GameTick - p.StartTick)
		}
		return
	}

	if !d.ExtraInfo {
		if e := w.findUnassigned(EntityProjectile, net); e != nil {
			e.Base().ID = id
			e.Base().Keep()
			return
		}
		if net.StartTick >= w.GameTick-ownerInferenceTicks {
			net.Owner = w.inferOwner(net)
		}
	}
	w.InsertEntity(net, false)
}

// inferOwner guesses the shooter of p from where the characters stood
// when it was fired. It only answers when one character was clearly
// closer than every other.
func (w *GameWorld) inferOwner(p *Projectile) int {
	launch := p.Pos.Sub(p.Direction.Normalize().Scale(gamecore.PhysicalSize * 0.75))
	usePrevPrev := w.GameTick-p.StartTick > 1

	first, second := float32(200), float32(200)
	var closest *Character
	w.lists[EntityCharacter].Each(func(_ ecs.EntityID, e Entity) {
		c := e.(*Character)
		pos := c.PrevPos
		if usePrevPrev {
			pos = c.PrevPrevPos
		}
		dist := vmath.Distance(pos, launch)
		if dist < first {
			second = first
			first = dist
			closest = c
		} else if dist < second {
			second = dist
		}
	})
	if closest != nil && max(first, 2)*1.2 < second {
		return closest.ID
	}
	return p.Owner
}

func (w *GameWorld) addPickup(id int, d *protocol.PickupData) {
	net := newPickupFromData(w, id, d)
	if e := w.FindMatch(id, EntityPickup, net); e != nil {
		e.Base().Pos = net.Pos
		e.Base().Keep()
		return
	}
	w.InsertEntity(net, true)
}

func (w *GameWorld) addLaser(id int, d *protocol.LaserData) {
	if !w.IsLocalTeam(d.Owner) || !d.Predict {
		return
	}

	switch {
	case d.Type == protocol.LaserTypeRifle || d.Type == protocol.LaserTypeShotgun || d.Type < 0:
		net := newLaserFromData(w, id, d)
		e := w.FindMatch(id, EntityLaser, net)
		if e == nil {
			if e = w.findUnassigned(EntityLaser, net); e != nil {
				e.Base().ID = id
			}
		}
		if e == nil {
			w.InsertEntity(net, false)
			return
		}
		l := e.(*Laser)
		l.Keep()
		// the laser stopped earlier than predicted
		if vmath.Distance(net.From, net.Pos) < vmath.Distance(l.From, l.Pos)-2 {
			l.Energy = 0
			l.Pos = net.Pos
		}

	case d.Type == protocol.LaserTypeDragger:
		net := newDraggerFromData(w, id, d)
		if net.Strength <= 0 {
			return
		}
		if e := w.findDragger(id, net); e != nil {
			e.Keep()
			e.Read(d)
			return
		}
		w.InsertEntity(net, false)

	case d.Type == protocol.LaserTypeDoor:
		net := newDoorFromData(w, id, d)
		if e := w.FindMatch(id, EntityDoor, net); e != nil {
			e.Base().Keep()
			return
		}
		w.InsertEntity(net, false)
		net.Carve()

	case d.Type == protocol.LaserTypePlasma:
		net := newPlasmaFromData(w, id, d)
		if e := w.FindMatch(id, EntityPlasma, net); e != nil {
			e.Base().Keep()
			return
		}
		w.InsertEntity(net, false)
	}
}

// findDragger matches a dragger by id first, then by shape. The dragger
// and its beams arrive as separate objects at the same position.
func (w *GameWorld) findDragger(id int, net *Dragger) *Dragger {
	if e := w.FindMatch(id, EntityDragger, net); e != nil {
		return e.(*Dragger)
	}
	var found *Dragger
	w.lists[EntityDragger].Each(func(_ ecs.EntityID, e Entity) {
		if g := e.(*Dragger); found == nil && g.Match(net) {
			found = g
		}
	})
	return found
}

// readSwitchState applies the switch status of the local team.
func (w *GameWorld) readSwitchState(s *protocol.SwitchState) {
	local := w.GetCharacterByID(w.localClientID)
	if local == nil {
		return
	}
	team := local.Team()
	if team < 0 || team >= protocol.MaxClients {
		return
	}
	switchers := w.core.Switchers
	highest := min(int(s.HighestSwitchNumber), len(switchers)-1)
	for n := 0; n <= highest; n++ {
		switchers[n].Status[team] = s.StatusOf(n)
	}
	for i, n := range s.SwitchNumbers {
		if end := int(s.EndTicks[i]); end > 0 && int(n) >= 0 && int(n) < len(switchers) {
			switchers[n].EndTick[team] = end
		}
	}
}

func (w *GameWorld) addTargetSwitch(id int, o *protocol.TargetSwitch) {
	net := newTargetSwitchFromObj(w, id, o)
	if e := w.FindMatch(id, EntityTargetSwitch, net); e != nil {
		e.Base().Pos = net.Pos
		e.Base().Keep()
		return
	}
	w.InsertEntity(net, true)
}
