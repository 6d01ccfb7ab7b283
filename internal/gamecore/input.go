package gamecore

import (
	"github.com/ddnetgo/predict/internal/protocol"
)

// Input is one tick of player input.
type Input struct {
	Direction    int
	TargetX      int
	TargetY      int
	Jump         int
	Fire         int
	Hook         int
	PlayerFlags  int
	WantedWeapon int
	NextWeapon   int
	PrevWeapon   int
}

func InputFromNet(in *protocol.PlayerInput) Input {
	return Input{
		Direction:    int(in.Direction),
		TargetX:      int(in.TargetX),
		TargetY:      int(in.TargetY),
		Jump:         int(in.Jump),
		Fire:         int(in.Fire),
		Hook:         int(in.Hook),
		PlayerFlags:  int(in.PlayerFlags),
		WantedWeapon: int(in.WantedWeapon),
		NextWeapon:   int(in.NextWeapon),
		PrevWeapon:   int(in.PrevWeapon),
	}
}

// CountInput counts the presses and releases between two button counters.
// Odd counter values mean pressed.
func CountInput(prev, cur int) (presses, releases int) {
	prev &= protocol.InputStateMask
	cur &= protocol.InputStateMask
	for i := prev; i != cur; {
		i = (i + 1) & protocol.InputStateMask
		if i&1 != 0 {
			presses++
		} else {
			releases++
		}
	}
	return presses, releases
}
