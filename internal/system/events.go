package system

import (
	"time"

	"github.com/ddnetgo/predict/internal/core/event"
	coresys "github.com/ddnetgo/predict/internal/core/system"
)

// EventDispatchSystem delivers the explosions, sounds and mismatches
// emitted since the last tick. Phase 1 (PreUpdate).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
