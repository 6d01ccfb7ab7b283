package prediction

import "github.com/ddnetgo/predict/internal/core/ecs"

// CopyWorld replaces the contents of w with a copy of from. Entities keep
// their tick order and remember the entity they were copied from. Copies
// made from from before this call stop being valid.
func (w *GameWorld) CopyWorld(from *GameWorld) {
	if from == nil || from == w {
		return
	}
	// the old entities must not report to the old parent
	w.parent = nil
	w.Clear()

	w.GameTick = from.GameTick
	w.collision = from.collision
	w.Config = from.Config
	w.Tuning = from.Tuning
	w.teams = from.teams
	w.localClientID = from.localClientID
	w.core.Tunings = append(w.core.Tunings[:0], from.core.Tunings...)
	w.core.Switchers = append(w.core.Switchers[:0], from.core.Switchers...)

	for t := range from.lists {
		l := from.lists[t]
		for id := l.Back(); id != ecs.None; id = l.Prev(id) {
			if e, ok := l.Get(id); ok {
				w.InsertEntity(e.clone(w), false)
			}
		}
	}

	from.version++
	w.parent = from
	w.parentVersion = from.version
	w.OnModified()
}

// IsValidCopy reports whether w is a copy whose source has not changed
// since it was made.
func (w *GameWorld) IsValidCopy() bool {
	return w.parent != nil && w.parentVersion == w.parent.version
}

// Parent returns the world w was copied from, or nil.
func (w *GameWorld) Parent() *GameWorld { return w.parent }
