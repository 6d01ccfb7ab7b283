package prediction

import (
	"golang.org/x/crypto/blake2b"

	"github.com/ddnetgo/predict/internal/core/ecs"
	"github.com/ddnetgo/predict/internal/net/packet"
	"github.com/ddnetgo/predict/internal/vmath"
)

// Checksum hashes the quantized state of every entity in tick order. Two
// worlds that simulate the same inputs from the same state hash equal.
func (w *GameWorld) Checksum() [32]byte {
	pw := packet.NewWriter()
	pw.WriteD(int32(w.GameTick))
	for t := range w.lists {
		pw.WriteC(byte(t))
		pw.WriteD(int32(w.lists[t].Len()))
		w.lists[t].Each(func(_ ecs.EntityID, e Entity) {
			writeEntityState(pw, e)
		})
	}
	return blake2b.Sum256(pw.Bytes())
}

func writeVec(pw *packet.Writer, v vmath.Vec2) {
	pw.WriteD(int32(vmath.RoundToInt(v.X * 256)))
	pw.WriteD(int32(vmath.RoundToInt(v.Y * 256)))
}

func writeEntityState(pw *packet.Writer, e Entity) {
	b := e.Base()
	pw.WriteD(int32(b.ID))
	writeVec(pw, b.Pos)
	pw.WriteBool(b.MarkedForDestroy)

	switch x := e.(type) {
	case *Character:
		writeVec(pw, x.Core.Vel)
		writeVec(pw, x.Core.HookPos)
		pw.WriteD(int32(x.Core.HookState))
		pw.WriteD(int32(x.Core.HookedPlayer))
		pw.WriteD(int32(x.Core.ActiveWeapon))
		pw.WriteD(int32(x.Core.Jumped))
		pw.WriteD(int32(x.FreezeTime))
		pw.WriteD(int32(x.reloadTimer))
	case *Projectile:
		writeVec(pw, x.Direction)
		pw.WriteD(int32(x.StartTick))
		pw.WriteD(int32(x.LifeSpan))
		pw.WriteD(int32(x.Owner))
	case *Laser:
		writeVec(pw, x.From)
		writeVec(pw, x.Dir)
		pw.WriteD(int32(x.Energy))
		pw.WriteD(int32(x.Bounces))
		pw.WriteD(int32(x.EvalTick))
	case *Pickup:
		pw.WriteD(int32(x.Type))
		pw.WriteD(int32(x.Subtype))
	case *Dragger:
		pw.WriteD(int32(x.TargetID))
	case *Door:
		writeVec(pw, x.To)
		pw.WriteD(int32(x.Number))
	case *Plasma:
		writeVec(pw, x.Core)
		pw.WriteD(int32(x.LifeTime))
	case *TargetSwitch:
		pw.WriteD(int32(x.Type))
		pw.WriteD(int32(x.Number))
	}
}
