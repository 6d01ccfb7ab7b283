package system

import (
	"time"

	coresys "github.com/ddnetgo/predict/internal/core/system"
	"github.com/ddnetgo/predict/internal/replay"
)

// PredictSystem ticks the predicted world up to the last recorded tick.
// Phase 2 (Update).
type PredictSystem struct {
	sess  *replay.Session
	ticks int
}

func NewPredictSystem(sess *replay.Session) *PredictSystem {
	return &PredictSystem{sess: sess}
}

func (s *PredictSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *PredictSystem) Update(_ time.Duration) {
	s.ticks += s.sess.Advance()
}

// Ticks returns the number of ticks predicted so far.
func (s *PredictSystem) Ticks() int { return s.ticks }
