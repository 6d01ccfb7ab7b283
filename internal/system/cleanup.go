package system

import (
	"time"

	coresys "github.com/ddnetgo/predict/internal/core/system"
	"github.com/ddnetgo/predict/internal/net"
	"github.com/ddnetgo/predict/internal/replay"
)

// CleanupSystem releases the stream of a finished replay. Phase 6 (Cleanup).
type CleanupSystem struct {
	stream *net.Stream
	sess   *replay.Session
	done   bool
}

func NewCleanupSystem(stream *net.Stream, sess *replay.Session) *CleanupSystem {
	return &CleanupSystem{stream: stream, sess: sess}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if s.done || !s.sess.Closed() {
		return
	}
	s.stream.Close()
	s.done = true
}

// Done reports whether the replay has been fully processed.
func (s *CleanupSystem) Done() bool { return s.done }
