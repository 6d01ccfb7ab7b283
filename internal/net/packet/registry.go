package packet

import (
	"fmt"

	"go.uber.org/zap"
)

// Stage is the replay reader's position in the frame stream.
type Stage int

const (
	StageIdle       Stage = iota // no map loaded yet
	StageMapLoaded               // map loaded, between snapshots
	StageInSnapshot              // between SnapshotBegin and SnapshotEnd
	StageClosed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "Idle"
	case StageMapLoaded:
		return "MapLoaded"
	case StageInSnapshot:
		return "InSnapshot"
	case StageClosed:
		return "Closed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// HandlerFunc is the callback signature for frame handlers.
// The target is passed as an opaque interface to avoid import cycles.
type HandlerFunc func(target any, r *Reader) error

type handlerEntry struct {
	fn            HandlerFunc
	allowedStages map[Stage]bool
}

// Registry maps opcodes to handlers with stage-based access control.
type Registry struct {
	handlers map[byte]*handlerEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[byte]*handlerEntry),
		log:      log,
	}
}

// Register maps an opcode to a handler, restricted to the given stages.
func (reg *Registry) Register(opcode byte, stages []Stage, fn HandlerFunc) {
	allowed := make(map[Stage]bool, len(stages))
	for _, s := range stages {
		allowed[s] = true
	}
	reg.handlers[opcode] = &handlerEntry{
		fn:            fn,
		allowedStages: allowed,
	}
}

// Dispatch finds the handler for the opcode in data[0], validates the stage,
// and calls the handler. Unknown opcodes are skipped.
func (reg *Registry) Dispatch(target any, stage Stage, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty frame")
	}
	opcode := data[0]
	reg.log.Debug("frame",
		zap.Uint8("opcode", opcode),
		zap.Int("size", len(data)),
		zap.String("stage", stage.String()),
	)

	entry, ok := reg.handlers[opcode]
	if !ok {
		reg.log.Debug("unknown opcode skipped", zap.Uint8("opcode", opcode), zap.String("stage", stage.String()))
		return nil
	}

	if !entry.allowedStages[stage] {
		reg.log.Warn("opcode not allowed in stage",
			zap.Uint8("opcode", opcode),
			zap.String("stage", stage.String()),
		)
		return fmt.Errorf("opcode %d not allowed in stage %s", opcode, stage)
	}

	return reg.safeCall(entry.fn, target, NewReader(data), opcode)
}

// safeCall runs a handler with panic recovery so one malformed frame does not
// take down the whole replay.
func (reg *Registry) safeCall(fn HandlerFunc, target any, r *Reader, opcode byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.Uint8("opcode", opcode),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for opcode %d: %v", opcode, rec)
		}
	}()
	if err := fn(target, r); err != nil {
		return fmt.Errorf("opcode %d: %w", opcode, err)
	}
	return nil
}
