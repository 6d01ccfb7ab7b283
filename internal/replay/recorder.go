package replay

import (
	"io"

	"github.com/ddnetgo/predict/internal/gamecore"
	"github.com/ddnetgo/predict/internal/net"
	"github.com/ddnetgo/predict/internal/prediction"
	"github.com/ddnetgo/predict/internal/protocol"
)

// Recorder writes the frames of an authoritative world. The world it
// drives is ticked with the same input rules a Session uses, so a replay
// of a deterministic simulation predicts without mismatches.
type Recorder struct {
	w      io.Writer
	inputs Inputs
	frames int
}

func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: w}
}

// Frames returns the number of frames written.
func (r *Recorder) Frames() int { return r.frames }

func (r *Recorder) write(data []byte) error {
	if err := net.WriteFrame(r.w, data); err != nil {
		return err
	}
	r.frames++
	return nil
}

func (r *Recorder) Map(name string) error {
	return r.write(EncodeMap(name))
}

// Snapshot writes the current state of w as one snapshot.
func (r *Recorder) Snapshot(w *prediction.GameWorld) error {
	chars, objs := w.Snap()
	if err := r.write(EncodeSnapshotBegin(w.GameTick, w.LocalClientID(), w.Teams())); err != nil {
		return err
	}
	for _, c := range chars {
		if err := r.write(EncodeCharacter(c.ID, c.GameTeam, c.Obj, c.Ext)); err != nil {
			return err
		}
	}
	for _, o := range objs {
		if err := r.write(EncodeObject(o.ID, o.Obj, nil)); err != nil {
			return err
		}
	}
	return r.write(EncodeSnapshotEnd())
}

// Input records the input of client id and queues it for the next Step.
func (r *Recorder) Input(id int, in *protocol.PlayerInput, direct bool) error {
	if err := r.write(EncodeInput(id, in, direct)); err != nil {
		return err
	}
	r.inputs.Set(id, gamecore.InputFromNet(in), direct)
	return nil
}

// Step advances w by one tick and records the tick.
func (r *Recorder) Step(w *prediction.GameWorld) error {
	w.GameTick++
	r.inputs.Apply(w)
	w.Tick()
	return r.write(EncodeTick(w.GameTick))
}
