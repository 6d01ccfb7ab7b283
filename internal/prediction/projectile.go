package prediction

import (
	"github.com/ddnetgo/predict/internal/gamecore"
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/vmath"
)

// Layers an entity can belong to.
const (
	LayerGame = iota
	LayerSwitch
)

type Projectile struct {
	EntityBase

	Direction vmath.Vec2
	LifeSpan  int
	Owner     int
	Type      int
	StartTick int
	Explosive bool
	Freeze    bool
	TuneZone  int

	// Bouncing is a bit set: 1 bounces horizontally, 2 vertically.
	Bouncing int
}

// NewProjectile fires a projectile from pos and inserts it.
func NewProjectile(w *GameWorld, typ, owner int, pos, dir vmath.Vec2, span int, freeze, explosive bool, number int) *Projectile {
	p := &Projectile{
		EntityBase: newEntityBase(w, EntityProjectile, pos, 0),
		Direction:  dir,
		LifeSpan:   span,
		Owner:      owner,
		Type:       typ,
		StartTick:  w.GameTick,
		Explosive:  explosive,
		Freeze:     freeze,
	}
	p.Number = number
	if number > 0 {
		p.Layer = LayerSwitch
	}
	if w.Config.PredictTiles {
		p.TuneZone = w.collision.IsTune(w.collision.GetMapIndex(pos))
	}
	w.InsertEntity(p, false)
	return p
}

// newProjectileFromData builds a projectile from snapshot data without
// inserting it.
func newProjectileFromData(w *GameWorld, id int, d *protocol.ProjectileData) *Projectile {
	p := &Projectile{
		EntityBase: newEntityBase(w, EntityProjectile, d.StartPos, 0),
		Direction:  d.StartVel,
		Owner:      d.Owner,
		Type:       d.Type,
		StartTick:  d.StartTick,
		Explosive:  d.Explosive,
		Freeze:     d.Freeze,
		Bouncing:   d.Bouncing,
		TuneZone:   d.TuneZone,
	}
	p.ID = id
	if !d.ExtraInfo {
		// legacy grenades are explosive when their speed is normalized
		p.Explosive = d.Type == protocol.WeaponGrenade && vmath.Abs(1-d.StartVel.Length()) < 0.015
	}
	if p.TuneZone == protocol.TuneZoneUnknown {
		p.TuneZone = 0
		if w.Config.PredictTiles {
			p.TuneZone = w.collision.IsTune(w.collision.GetMapIndex(d.StartPos))
		}
	}
	p.Number = d.SwitchNumber
	if p.Number > 0 {
		p.Layer = LayerSwitch
	}

	t := w.TuningZone(p.TuneZone)
	speed := float32(w.GameTickSpeed())
	lifetime := 20 * w.GameTickSpeed()
	switch {
	case p.Type == protocol.WeaponGrenade:
		lifetime = int(t.GrenadeLifetime.Float() * speed)
	case p.Type == protocol.WeaponGun:
		lifetime = int(t.GunLifetime.Float() * speed)
	case p.Type == protocol.WeaponShotgun && !w.Config.IsDDRace:
		lifetime = int(t.ShotgunLifetime.Float() * speed)
	}
	p.LifeSpan = lifetime - (w.GameTick - p.StartTick)
	return p
}

func (p *Projectile) clone(w *GameWorld) Entity {
	cp := *p
	cp.EntityBase = p.EntityBase.detach(w, p)
	return &cp
}

// PosAt returns the position t seconds after the start tick.
func (p *Projectile) PosAt(t float32) vmath.Vec2 {
	tune := p.world.TuningZone(p.TuneZone)
	var curvature, speed float32
	switch p.Type {
	case protocol.WeaponGrenade:
		curvature, speed = tune.GrenadeCurvature.Float(), tune.GrenadeSpeed.Float()
	case protocol.WeaponShotgun:
		curvature, speed = tune.ShotgunCurvature.Float(), tune.ShotgunSpeed.Float()
	case protocol.WeaponGun:
		curvature, speed = tune.GunCurvature.Float(), tune.GunSpeed.Float()
	}
	return gamecore.CalcPos(p.Pos, p.Direction, curvature, speed, t)
}

func (p *Projectile) Tick() {
	w := p.world
	speed := float32(w.GameTickSpeed())
	pt := float32(w.GameTick-p.StartTick-1) / speed
	ct := float32(w.GameTick-p.StartTick) / speed
	prevPos := p.PosAt(pt)
	curPos := p.PosAt(ct)

	hit := p.Collision().IntersectLine(prevPos, curPos)
	colPos, newPos := hit.At, hit.Before
	collide := hit.Tile != 0

	ownerChar := w.GetCharacterByID(p.Owner)
	canHit := w.Config.Hit
	if ownerChar != nil {
		canHit = !ownerChar.Core.GrenadeHitDisabled
	}

	var target *Character
	if canHit {
		radius := float32(6)
		if p.Freeze {
			radius = 1
		}
		target, _ = w.IntersectCharacter(prevPos, colPos, radius, ownerChar, p.Owner, nil)
	}
	if w.Config.IsSolo && !(p.Type == protocol.WeaponShotgun && w.Config.IsDDRace) {
		target = nil
	}

	if p.LifeSpan > -1 {
		p.LifeSpan--
	}

	weaponCollide := ownerChar != nil && target != nil && !target.CanCollide(p.Owner)
	hitTarget := target != nil && (canHit || p.Owner == -1 || target == ownerChar)

	if (hitTarget || collide || p.GameLayerClipped(curPos)) && !weaponCollide {
		switch {
		case p.Explosive && (target == nil || !p.Freeze || (p.Type == protocol.WeaponShotgun && collide)):
			team := -1
			if target != nil {
				team = target.Team()
			}
			w.CreateExplosion(colPos, p.Owner, p.Type, p.Owner == -1, team, MaskAll)
		case target != nil && p.Freeze && p.freezeActive(target.Team()):
			target.FreezeDefault()
		}

		switch {
		case collide && p.Bouncing != 0:
			p.bounce(newPos)
		case p.Type == protocol.WeaponGun:
			w.DestroyEntity(p)
			return
		case !p.Freeze:
			w.DestroyEntity(p)
			return
		}
	}

	if p.LifeSpan == -1 {
		if p.Explosive {
			team := -1
			if ownerChar != nil {
				team = ownerChar.Team()
			}
			w.CreateExplosion(colPos, p.Owner, p.Type, p.Owner == -1, team, MaskAll)
		}
		w.DestroyEntity(p)
	}
}

// freezeActive reports whether a freeze projectile freezes team.
func (p *Projectile) freezeActive(team int) bool {
	if p.Layer != LayerSwitch {
		return true
	}
	status, ok := p.world.switchStatus(p.Number, team)
	return ok && status
}

// bounce restarts the flight from the wall with the velocity mirrored on
// the bounce axes.
func (p *Projectile) bounce(newPos vmath.Vec2) {
	p.StartTick = p.world.GameTick
	p.Pos = newPos.Sub(p.Direction.Scale(4))
	if p.Bouncing == 1 {
		p.Direction.X = -p.Direction.X
	} else if p.Bouncing == 2 {
		p.Direction.Y = -p.Direction.Y
	}
	if vmath.Abs(p.Direction.X) < 1e-6 {
		p.Direction.X = 0
	}
	if vmath.Abs(p.Direction.Y) < 1e-6 {
		p.Direction.Y = 0
	}
	p.Pos = p.Pos.Add(p.Direction)
}

// Match reports whether other is the same projectile in a newer snapshot.
func (p *Projectile) Match(other *Projectile) bool {
	if p.Type != other.Type || p.StartTick != other.StartTick {
		return false
	}
	return vmath.Distance(p.Pos, other.Pos) <= 2 && vmath.Distance(p.Direction, other.Direction) <= 2
}

// Data returns the snapshot form of the projectile.
func (p *Projectile) Data() protocol.ProjectileData {
	return protocol.ProjectileData{
		StartPos:     p.Pos,
		StartVel:     p.Direction,
		Type:         p.Type,
		StartTick:    p.StartTick,
		ExtraInfo:    true,
		Owner:        p.Owner,
		Explosive:    p.Explosive,
		Bouncing:     p.Bouncing,
		Freeze:       p.Freeze,
		TuneZone:     p.TuneZone,
		SwitchNumber: p.Number,
	}
}
