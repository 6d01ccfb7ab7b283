package prediction

import (
	"github.com/ddnetgo/predict/internal/gamecore"
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/vmath"
)

// draggerDeadZone is the distance below which a dragger stops pulling.
const draggerDeadZone = 28

// Dragger pulls the closest reachable character of the local team towards
// itself.
type Dragger struct {
	EntityBase

	Strength    float32
	IgnoreWalls bool
	TargetID    int

	drift vmath.Vec2
}

func newDraggerFromData(w *GameWorld, id int, d *protocol.LaserData) *Dragger {
	g := &Dragger{
		EntityBase: newEntityBase(w, EntityDragger, d.From, 0),
		TargetID:   -1,
	}
	g.ID = id
	if d.Subtype >= protocol.DraggerTypeWeak && d.Subtype <= protocol.DraggerTypeStrongNW {
		g.IgnoreWalls = d.Subtype&1 != 0
		g.Strength = float32(d.Subtype>>1 + 1)
	}
	g.Number = d.SwitchNumber
	if g.Number > 0 {
		g.Layer = LayerSwitch
	}
	g.Read(d)
	return g
}

func (g *Dragger) clone(w *GameWorld) Entity {
	cp := *g
	cp.EntityBase = g.EntityBase.detach(w, g)
	return &cp
}

// Read takes the beam target from a snapshot beam object. Beams carry the
// dragged character as their owner.
func (g *Dragger) Read(d *protocol.LaserData) {
	if d.Owner >= 0 && d.Owner < protocol.MaxClients && g.world.IsLocalTeam(d.Owner) {
		g.TargetID = d.Owner
	}
}

func (g *Dragger) reachable(to vmath.Vec2) bool {
	col := g.Collision()
	if g.IgnoreWalls {
		return col.IntersectNoLaserNoWalls(g.Pos, to).Tile == 0
	}
	return col.IntersectNoLaser(g.Pos, to).Tile == 0
}

func (g *Dragger) active(team int) bool {
	if g.Layer != LayerSwitch || g.Number <= 0 {
		return true
	}
	status, ok := g.world.switchStatus(g.Number, team)
	return !ok || status
}

// lookForTarget picks the closest reachable character when no beam exists.
func (g *Dragger) lookForTarget() {
	w := g.world
	radius := w.Config.DraggerRange - gamecore.PhysicalSize
	closest := -1
	minDist := 0
	for _, e := range w.FindEntities(g.Pos, radius, protocol.MaxClients, EntityCharacter) {
		c := e.(*Character)
		team := c.Team()
		if team == w.teams.Super() || !g.active(team) || !g.reachable(c.Pos) {
			continue
		}
		dist := int(vmath.Distance(c.Pos, g.Pos))
		if minDist == 0 || dist < minDist {
			minDist = dist
			closest = c.ID
		}
	}
	if closest != -1 && g.TargetID == -1 {
		g.TargetID = closest
	}
}

func (g *Dragger) Tick() {
	w := g.world
	if w.GameTick%int(float32(w.GameTickSpeed())*0.15) == 0 {
		moverStep(w, &g.Pos, &g.drift)
		g.lookForTarget()
	}
	g.beamTick()
}

func (g *Dragger) beamTick() {
	target := g.world.GetCharacterByID(g.TargetID)
	if target == nil {
		g.TargetID = -1
		return
	}
	dist := vmath.Distance(target.Pos, g.Pos)
	if !g.active(target.Team()) || !g.reachable(target.Pos) || dist >= g.world.Config.DraggerRange {
		g.TargetID = -1
		return
	}
	if dist > draggerDeadZone {
		target.AddVelocity(g.Pos.Sub(target.Pos).Normalize().Scale(g.Strength))
	}
}

// Match reports whether other is the same dragger.
func (g *Dragger) Match(other *Dragger) bool {
	return g.Strength == other.Strength && g.Number == other.Number &&
		g.IgnoreWalls == other.IgnoreWalls && vmath.Distance(g.Pos, other.Pos) <= 2
}
