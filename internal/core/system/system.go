package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain replay frames up to the next tick
	PhasePreUpdate               // 1: dispatch last tick's events
	PhaseUpdate                  // 2: predict
	PhasePostUpdate              // 3: unused
	PhaseOutput                  // 4: report finished replays
	PhasePersist                 // 5: journal finished replays
	PhaseCleanup                 // 6: release the replay stream
)

// System is one step of the simulation loop.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
