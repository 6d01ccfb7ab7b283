package prediction

import (
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/vmath"
)

const plasmaAccel = 1.1

// Plasma is a turret bullet homing in on one character. It accelerates in
// the direction it was fired.
type Plasma struct {
	EntityBase

	Core        vmath.Vec2
	EvalTick    int
	LifeTime    int
	ForClientID int
	Explosive   bool
	Freeze      bool
}

func newPlasmaFromData(w *GameWorld, id int, d *protocol.LaserData) *Plasma {
	p := &Plasma{
		EntityBase:  newEntityBase(w, EntityPlasma, d.From, 0),
		EvalTick:    d.StartTick,
		ForClientID: d.Owner,
		Explosive:   d.Subtype == protocol.GunTypeExplosive || d.Subtype == protocol.GunTypeExpFreeze,
		Freeze:      d.Subtype == protocol.GunTypeFreeze || d.Subtype == protocol.GunTypeExpFreeze,
	}
	p.ID = id
	p.LifeTime = int(float32(w.GameTickSpeed())*1.5) - (w.GameTick - d.StartTick)
	p.Number = d.SwitchNumber
	if p.Number > 0 {
		p.Layer = LayerSwitch
	}
	if target := w.GetCharacterByID(p.ForClientID); target != nil {
		if diff := target.Pos.Sub(p.Pos); !diff.IsZero() {
			p.Core = diff.Normalize()
		}
	}
	return p
}

func (p *Plasma) clone(w *GameWorld) Entity {
	cp := *p
	cp.EntityBase = p.EntityBase.detach(w, p)
	return &cp
}

func (p *Plasma) Tick() {
	w := p.world
	if p.LifeTime <= 0 {
		w.DestroyEntity(p)
		return
	}
	target := w.GetCharacterByID(p.ForClientID)
	if target == nil {
		w.DestroyEntity(p)
		return
	}
	p.LifeTime--
	p.Pos = p.Pos.Add(p.Core)
	p.Core = p.Core.Scale(plasmaAccel)

	// both may fire in the same step, exploding twice
	p.hitCharacter(target)
	p.hitObstacle(target)
}

func (p *Plasma) explode(target *Character) {
	if p.Explosive {
		p.world.CreateExplosion(p.Pos, p.ForClientID, protocol.WeaponGrenade, true, target.Team(), uint64(1)<<uint(target.ID))
	}
}

func (p *Plasma) hitCharacter(target *Character) bool {
	w := p.world
	hit, _ := w.IntersectCharacter(p.Pos, p.Pos.Add(p.Core), 0, nil, p.ForClientID, nil)
	if hit == nil || hit.Team() == w.teams.Super() {
		return false
	}
	if p.Freeze {
		hit.FreezeDefault()
	} else {
		hit.UnFreeze()
	}
	p.explode(target)
	w.DestroyEntity(p)
	return true
}

func (p *Plasma) hitObstacle(target *Character) bool {
	if p.Collision().IntersectNoLaser(p.Pos, p.Pos.Add(p.Core)).Tile == 0 {
		return false
	}
	p.explode(target)
	p.world.DestroyEntity(p)
	return true
}

// Match reports whether other is the same plasma bullet.
func (p *Plasma) Match(other *Plasma) bool {
	return p.EvalTick == other.EvalTick && p.Number == other.Number &&
		p.Explosive == other.Explosive && p.Freeze == other.Freeze && p.ForClientID == other.ForClientID
}
