package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/ddnetgo/predict/internal/core/system"
	"github.com/ddnetgo/predict/internal/net"
	"github.com/ddnetgo/predict/internal/net/packet"
	"github.com/ddnetgo/predict/internal/replay"
)

// ReconcileSystem drains the replay stream and dispatches its frames
// through the frame registry, stopping after each tick frame so the
// prediction runs once per recorded tick. Phase 0 (Input).
type ReconcileSystem struct {
	ctx      context.Context
	stream   *net.Stream
	registry *packet.Registry
	sess     *replay.Session
	log      *zap.Logger
}

func NewReconcileSystem(ctx context.Context, stream *net.Stream, registry *packet.Registry, sess *replay.Session, log *zap.Logger) *ReconcileSystem {
	return &ReconcileSystem{
		ctx:      ctx,
		stream:   stream,
		registry: registry,
		sess:     sess,
		log:      log,
	}
}

func (s *ReconcileSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *ReconcileSystem) Update(_ time.Duration) {
	if s.sess.Closed() {
		return
	}
	for {
		select {
		case <-s.ctx.Done():
			s.sess.Fail(s.ctx.Err())
			s.stream.Close()
			s.sess.Close()
			return
		case data, ok := <-s.stream.InQueue:
			if !ok {
				if err := s.stream.Err(); err != nil {
					s.sess.Fail(err)
				}
				s.sess.Close()
				s.log.Debug("replay stream ended", zap.Int64("frames", s.stream.Frames()))
				return
			}
			if err := s.registry.Dispatch(s.sess, s.sess.Stage(), data); err != nil {
				s.sess.Fail(err)
			}
			if data[0] == replay.OpTick {
				return
			}
		}
	}
}
