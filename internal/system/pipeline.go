package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ddnetgo/predict/internal/core/event"
	coresys "github.com/ddnetgo/predict/internal/core/system"
	"github.com/ddnetgo/predict/internal/net"
	"github.com/ddnetgo/predict/internal/net/packet"
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/replay"
)

// tickInterval is the simulated time of one tick.
const tickInterval = time.Second / protocol.TickSpeed

// Deps are the collaborators a Pipeline needs. Journal and Report may be
// nil.
type Deps struct {
	Registry *packet.Registry
	Bus      *event.Bus
	Journal  Journal
	Report   func(replay.Result)
	Log      *zap.Logger
}

// Pipeline runs one replay through the phase runner.
type Pipeline struct {
	runner  *coresys.Runner
	sess    *replay.Session
	stream  *net.Stream
	predict *PredictSystem
	cleanup *CleanupSystem
}

// NewPipeline wires the systems for one replay. sess must use deps.Bus.
func NewPipeline(ctx context.Context, sess *replay.Session, stream *net.Stream, deps Deps) *Pipeline {
	p := &Pipeline{
		runner:  coresys.NewRunner(),
		sess:    sess,
		stream:  stream,
		predict: NewPredictSystem(sess),
		cleanup: NewCleanupSystem(stream, sess),
	}

	p.runner.Register(NewReconcileSystem(ctx, stream, deps.Registry, sess, deps.Log))
	p.runner.Register(NewEventDispatchSystem(deps.Bus))
	p.runner.Register(p.predict)
	p.runner.Register(NewReportSystem(sess, deps.Report))
	if deps.Journal != nil {
		p.runner.Register(NewJournalSystem(ctx, deps.Journal, sess, deps.Log))
	}
	p.runner.Register(p.cleanup)
	return p
}

// Run reads the stream to its end and returns the result.
func (p *Pipeline) Run() replay.Result {
	p.stream.Start()
	p.runner.RunUntil(p.cleanup.Done, tickInterval)
	return p.sess.Result()
}
