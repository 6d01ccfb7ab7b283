package system

import (
	"slices"
	"time"
)

// Runner executes systems in phase order each tick.
type Runner struct {
	systems []System
	sorted  bool
	ticks   int
}

func NewRunner() *Runner {
	return &Runner{}
}

// Register adds a system. Systems of the same phase run in registration
// order.
func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(dt)
	}
	r.ticks++
}

// TickPhase runs only the systems of one phase. It does not count as a tick.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

// RunUntil ticks until done reports true after a tick and returns the
// number of ticks run. Simulated time advances by dt per tick; nothing
// sleeps.
func (r *Runner) RunUntil(done func() bool, dt time.Duration) int {
	start := r.ticks
	for !done() {
		r.Tick(dt)
	}
	return r.ticks - start
}

// Ticks returns the number of full ticks run so far.
func (r *Runner) Ticks() int { return r.ticks }

// Len returns the number of registered systems.
func (r *Runner) Len() int { return len(r.systems) }

func (r *Runner) ensureSorted() {
	if r.sorted {
		return
	}
	slices.SortStableFunc(r.systems, func(a, b System) int {
		return int(a.Phase()) - int(b.Phase())
	})
	r.sorted = true
}
