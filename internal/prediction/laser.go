package prediction

import (
	"github.com/ddnetgo/predict/internal/collision"
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/vmath"
)

// stackedShotgunSpeed is the velocity the server produces when a shotgun
// laser hits a character standing exactly on its origin.
var stackedShotgunSpeed = vmath.V(-2147483648, -2147483648)

// Laser is a bouncing laser or shotgun beam. Pos is the head of the current
// segment and From its tail.
type Laser struct {
	EntityBase

	From     vmath.Vec2
	PrevPos  vmath.Vec2
	Dir      vmath.Vec2
	Energy   float32
	Bounces  int
	EvalTick int
	Owner    int
	// Type is the weapon that fired the laser.
	Type     int
	TuneZone int

	zeroEnergyBounce bool
}

// NewLaser fires a laser from pos and evaluates its first segment.
func NewLaser(w *GameWorld, pos, dir vmath.Vec2, energy float32, owner, typ int) *Laser {
	l := &Laser{
		EntityBase: newEntityBase(w, EntityLaser, pos, 0),
		Dir:        dir,
		Energy:     energy,
		Owner:      owner,
		Type:       typ,
	}
	if w.Config.IsFNG && l.Energy < 10 {
		l.Energy = 800
	}
	if w.Config.PredictTiles {
		l.TuneZone = w.collision.IsTune(w.collision.GetMapIndex(pos))
	}
	w.InsertEntity(l, false)
	l.DoBounce()
	return l
}

// newLaserFromData builds a laser from snapshot data. The snapshot only
// carries the current segment, so the remaining energy restarts at the
// full reach.
func newLaserFromData(w *GameWorld, id int, d *protocol.LaserData) *Laser {
	l := &Laser{
		EntityBase: newEntityBase(w, EntityLaser, d.To, 0),
		From:       d.From,
		PrevPos:    d.From,
		EvalTick:   d.StartTick,
		Owner:      d.Owner,
		Type:       protocol.WeaponLaser,
	}
	l.ID = id
	if d.Type == protocol.LaserTypeShotgun {
		l.Type = protocol.WeaponShotgun
	}
	if d.TuneZone != protocol.TuneZoneUnknown {
		l.TuneZone = d.TuneZone
	} else if w.Config.PredictTiles {
		l.TuneZone = w.collision.IsTune(w.collision.GetMapIndex(d.From))
	}
	l.Energy = w.TuningZone(l.TuneZone).LaserReach.Float()

	if diff := l.Pos.Sub(l.From); diff.Length() > 0.001 {
		l.Dir = diff.Normalize()
	} else {
		l.Energy = 0
	}
	return l
}

func (l *Laser) clone(w *GameWorld) Entity {
	cp := *l
	cp.EntityBase = l.EntityBase.detach(w, l)
	return &cp
}

// hitEnabled reports whether the laser may hit characters other than its
// owner.
func (l *Laser) hitEnabled(owner *Character) bool {
	if owner == nil {
		return l.world.Config.Hit
	}
	if l.Type == protocol.WeaponShotgun {
		return !owner.Core.ShotgunHitDisabled
	}
	return !owner.Core.LaserHitDisabled
}

// HitCharacter tests the segment from Pos to to against the characters and
// applies the laser effect to the first one hit.
func (l *Laser) HitCharacter(from, to vmath.Vec2) bool {
	w := l.world
	cfg := &w.Config
	owner := w.GetCharacterByID(l.Owner)
	dontHitSelf := cfg.OldLaser || !cfg.IsDDRace || l.Bounces == 0

	var notThis, thisOnly *Character
	if dontHitSelf {
		notThis = owner
	}
	enabled := l.hitEnabled(owner)
	if !enabled {
		thisOnly = owner
	}
	hit, at := w.IntersectCharacter(l.Pos, to, 0, notThis, l.Owner, thisOnly)
	if hit == nil || (hit == owner && (cfg.OldLaser || !cfg.Hit)) || (hit != owner && !enabled) {
		return false
	}

	l.From = from
	l.Pos = at
	l.Energy = -1

	switch l.Type {
	case protocol.WeaponShotgun:
		strength := l.Tuning(l.TuneZone).ShotgunStrength.Float()
		hitPos := hit.Core.Pos
		origin := l.PrevPos
		if cfg.OldLaser {
			if owner == nil {
				hit.SetVelocity(hit.Core.Vel)
				return true
			}
			origin = owner.Core.Pos
		}
		if origin != hitPos {
			hit.AddVelocity(origin.Sub(hitPos).Normalize().Scale(strength))
		} else {
			hit.SetRawVelocity(stackedShotgunSpeed)
		}
	case protocol.WeaponLaser:
		hit.UnFreeze()
	}
	return true
}

// DoBounce evaluates the next segment of the laser.
func (l *Laser) DoBounce() {
	w := l.world
	l.EvalTick = w.GameTick
	if l.Energy < 0 {
		w.DestroyEntity(l)
		return
	}
	l.PrevPos = l.Pos

	to := l.Pos.Add(l.Dir.Scale(l.Energy))
	hit, _ := l.Collision().IntersectLineTeleWeapon(l.Pos, to)
	to = hit.Before

	if hit.Tile == 0 {
		if !l.HitCharacter(l.Pos, to) {
			l.From = l.Pos
			l.Pos = to
			l.Energy = -1
		}
		return
	}
	if l.HitCharacter(l.Pos, to) {
		return
	}

	l.From = l.Pos
	l.Pos = to
	if hit.Tile == collision.TileTeleInWeapon {
		// the server moves the laser to the teleporter exit, which the
		// client cannot pick
		l.Energy = -1
		return
	}

	tempPos := l.Pos
	tempDir := l.Dir.Scale(4)
	l.Collision().MovePoint(&tempPos, &tempDir, 1)
	l.Pos = tempPos
	l.Dir = tempDir.Normalize()

	t := l.Tuning(l.TuneZone)
	dist := vmath.Distance(l.From, l.Pos)
	if dist == 0 && l.zeroEnergyBounce {
		l.Energy = -1
	} else {
		l.Energy -= dist + t.LaserBounceCost.Float()
	}
	l.zeroEnergyBounce = dist == 0

	l.Bounces++
	if l.Bounces > int(t.LaserBounceNum.Float()) {
		l.Energy = -1
	}
}

func (l *Laser) Tick() {
	w := l.world
	delay := l.Tuning(l.TuneZone).LaserBounceDelay.Float()
	speed := float32(w.GameTickSpeed())
	if w.Config.IsVanilla {
		if float32(w.GameTick) > float32(l.EvalTick)+speed*delay/1000 {
			l.DoBounce()
		}
		return
	}
	if float32(w.GameTick-l.EvalTick) > speed*delay/1000 {
		l.DoBounce()
	}
}

// Match reports whether other is the same laser segment.
func (l *Laser) Match(other *Laser) bool {
	if l.EvalTick != other.EvalTick || vmath.Distance(l.From, other.From) > 2 {
		return false
	}
	thisDiff := l.Pos.Sub(l.From)
	otherDiff := other.Pos.Sub(other.From)
	dirError := vmath.Distance(otherDiff.Normalize().Scale(thisDiff.Length()), thisDiff)
	return dirError <= 2
}

// Data returns the snapshot form of the laser.
func (l *Laser) Data() protocol.LaserData {
	typ := protocol.LaserTypeRifle
	if l.Type == protocol.WeaponShotgun {
		typ = protocol.LaserTypeShotgun
	}
	return protocol.LaserData{
		From:      l.From,
		To:        l.Pos,
		StartTick: l.EvalTick,
		ExtraInfo: true,
		Owner:     l.Owner,
		Type:      typ,
		Subtype:   -1,
		TuneZone:  l.TuneZone,
		Predict:   true,
	}
}
