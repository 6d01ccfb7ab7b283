package system

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	coresys "github.com/ddnetgo/predict/internal/core/system"
	"github.com/ddnetgo/predict/internal/persist"
	"github.com/ddnetgo/predict/internal/replay"
)

// Journal stores finished runs. *persist.JournalRepo satisfies it.
type Journal interface {
	WriteRun(ctx context.Context, run persist.RunRecord, mismatches []persist.MismatchRecord) (uuid.UUID, error)
}

// ReportSystem hands the result of a finished replay to a callback once.
// Phase 4 (Output).
type ReportSystem struct {
	sess   *replay.Session
	report func(replay.Result)
	done   bool
}

func NewReportSystem(sess *replay.Session, report func(replay.Result)) *ReportSystem {
	return &ReportSystem{sess: sess, report: report}
}

func (s *ReportSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *ReportSystem) Update(_ time.Duration) {
	if s.done || !s.sess.Closed() {
		return
	}
	s.done = true
	if s.report != nil {
		s.report(s.sess.Result())
	}
}

// JournalSystem writes a finished replay to the journal. Phase 5 (Persist).
type JournalSystem struct {
	ctx     context.Context
	journal Journal
	sess    *replay.Session
	log     *zap.Logger
	written bool
}

func NewJournalSystem(ctx context.Context, journal Journal, sess *replay.Session, log *zap.Logger) *JournalSystem {
	return &JournalSystem{ctx: ctx, journal: journal, sess: sess, log: log}
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *JournalSystem) Update(_ time.Duration) {
	if s.written || !s.sess.Closed() {
		return
	}
	s.written = true

	// a cancelled run still gets journaled
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), 5*time.Second)
	defer cancel()

	run, mismatches := Records(s.sess.Result())
	id, err := s.journal.WriteRun(ctx, run, mismatches)
	if err != nil {
		s.log.Error("journal write failed", zap.String("replay", run.Replay), zap.Error(err))
		return
	}
	s.log.Debug("run journaled", zap.String("replay", run.Replay), zap.Stringer("id", id))
}

// Records converts a replay result into journal rows.
func Records(res replay.Result) (persist.RunRecord, []persist.MismatchRecord) {
	run := persist.RunRecord{
		ID:         res.ID,
		Replay:     res.Replay,
		Map:        res.Map,
		Ticks:      res.Ticks,
		Snapshots:  res.Snapshots,
		Mismatches: res.Mismatches,
		Checksum:   res.Checksum,
		StartedAt:  res.StartedAt,
		Duration:   res.Duration,
	}
	mismatches := make([]persist.MismatchRecord, 0, len(res.Diffs))
	for _, d := range res.Diffs {
		mismatches = append(mismatches, persist.MismatchRecord{
			Tick:       d.Tick,
			ClientID:   d.ClientID,
			PredictedX: d.Predicted.X,
			PredictedY: d.Predicted.Y,
			ActualX:    d.Actual.X,
			ActualY:    d.Actual.Y,
			Distance:   d.Distance,
		})
	}
	return run, mismatches
}
