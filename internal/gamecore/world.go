package gamecore

import (
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/tuning"
)

// Switcher is the per team state of one switch number.
type Switcher struct {
	Status         [protocol.MaxClients]bool
	Initial        bool
	EndTick        [protocol.MaxClients]int
	Type           [protocol.MaxClients]int
	LastUpdateTick [protocol.MaxClients]int
}

// WorldCore is the shared physics state the character cores see.
type WorldCore struct {
	Characters [protocol.MaxClients]*CharacterCore
	Tunings    tuning.List
	Switchers  []Switcher
}

func NewWorldCore() *WorldCore {
	return &WorldCore{Tunings: tuning.NewList()}
}

// RandomOr0 picks an index below n. Prediction has no shared random state
// with the server, so it always picks the first.
func (w *WorldCore) RandomOr0(n int) int {
	return 0
}

// InitSwitchers sizes the switch table for switch numbers up to highest
// and sets every switch active.
func (w *WorldCore) InitSwitchers(highest int) {
	if highest > 0 {
		w.Switchers = make([]Switcher, highest+1)
	} else {
		w.Switchers = nil
	}
	for i := range w.Switchers {
		s := &w.Switchers[i]
		s.Initial = true
		for j := range s.Status {
			s.Status[j] = true
		}
	}
}

// SwitchActive reports whether switch number is active for team. Number 0
// is the always-on group.
func (w *WorldCore) SwitchActive(number, team int) bool {
	if number == 0 {
		return true
	}
	if number < 0 || number >= len(w.Switchers) || team < 0 || team >= protocol.MaxClients {
		return false
	}
	return w.Switchers[number].Status[team]
}
