package prediction

import (
	"github.com/ddnetgo/predict/internal/collision"
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/vmath"
)

const targetSwitchPhysSize = 14

// TargetSwitch is a hammer target that drives a switch number.
type TargetSwitch struct {
	EntityBase

	// Type is one of protocol.TargetSwitchOpen, Close or Alternate.
	Type  int
	Delay int
	Flags int

	drift vmath.Vec2
}

func newTargetSwitchFromObj(w *GameWorld, id int, o *protocol.TargetSwitch) *TargetSwitch {
	s := &TargetSwitch{
		EntityBase: newEntityBase(w, EntityTargetSwitch, vmath.V(float32(o.X), float32(o.Y)), targetSwitchPhysSize),
		Type:       int(o.Type),
		Delay:      int(o.SwitchDelay),
		Flags:      int(o.Flags),
	}
	s.ID = id
	s.Number = int(o.SwitchNumber)
	s.Layer = LayerSwitch
	return s
}

func (s *TargetSwitch) clone(w *GameWorld) Entity {
	cp := *s
	cp.EntityBase = s.EntityBase.detach(w, s)
	return &cp
}

func (s *TargetSwitch) Tick() {
	moverStep(s.world, &s.Pos, &s.drift)
}

// GetHit applies a hammer hit by team at tick. It reports whether the hit
// was predicted.
func (s *TargetSwitch) GetHit(team, tick int) bool {
	w := s.world
	if s.Flags&protocol.TargetSwitchFlagNoPredict != 0 || team == w.teams.Super() {
		return false
	}
	if s.Number <= 0 || s.Number >= len(w.core.Switchers) || team < 0 || team >= protocol.MaxClients {
		return false
	}
	sw := &w.core.Switchers[s.Number]

	var status bool
	switch s.Type {
	case protocol.TargetSwitchOpen:
		status = true
	case protocol.TargetSwitchClose:
		status = false
	case protocol.TargetSwitchAlternate:
		status = !sw.Status[team]
	default:
		return false
	}
	sw.Status[team] = status

	switch {
	case s.Delay > 0 && status:
		sw.Type[team] = collision.TileSwitchTimedOpen
		sw.EndTick[team] = tick + 1 + s.Delay*w.GameTickSpeed()
	case s.Delay > 0:
		sw.Type[team] = collision.TileSwitchTimedClose
		sw.EndTick[team] = tick + 1 + s.Delay*w.GameTickSpeed()
	case status:
		sw.Type[team] = collision.TileSwitchOpen
		sw.EndTick[team] = 0
	default:
		sw.Type[team] = collision.TileSwitchClose
		sw.EndTick[team] = 0
	}
	sw.LastUpdateTick[team] = tick
	return true
}

// Match reports whether other is the same target.
func (s *TargetSwitch) Match(other *TargetSwitch) bool {
	return s.Type == other.Type && s.Number == other.Number && s.Delay == other.Delay && s.Flags == other.Flags
}
