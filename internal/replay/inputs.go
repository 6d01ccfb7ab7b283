package replay

import (
	"github.com/ddnetgo/predict/internal/gamecore"
	"github.com/ddnetgo/predict/internal/prediction"
	"github.com/ddnetgo/predict/internal/protocol"
)

type inputSlot struct {
	in     gamecore.Input
	direct bool
}

// Inputs holds the latest input of every client. Every tick applies it
// again; a direct input fires only on the first tick after it was set.
type Inputs struct {
	slots [protocol.MaxClients]*inputSlot
}

func (t *Inputs) Set(id int, in gamecore.Input, direct bool) {
	if id < 0 || id >= protocol.MaxClients {
		return
	}
	t.slots[id] = &inputSlot{in: in, direct: direct}
}

// Apply hands the inputs to the characters of w in client id order.
func (t *Inputs) Apply(w *prediction.GameWorld) {
	for id, slot := range t.slots {
		if slot == nil {
			continue
		}
		c := w.GetCharacterByID(id)
		if c == nil {
			continue
		}
		if slot.direct {
			c.OnDirectInput(slot.in)
			slot.direct = false
		}
		c.OnPredictedInput(slot.in)
	}
}
