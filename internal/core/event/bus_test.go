package event

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestBus_DoubleBuffered(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(e Explosion) { got = append(got, e.Owner) })

	Emit(b, Explosion{Owner: 3})
	testutil.AssertEqual(t, "pending", b.Pending(), 1)

	b.DispatchAll()
	testutil.AssertEqual(t, "not readable before swap", len(got), 0)

	b.SwapBuffers()
	b.DispatchAll()
	testutil.AssertEqual(t, "delivered", got, []int{3})
	testutil.AssertEqual(t, "back cleared", b.Pending(), 0)

	b.SwapBuffers()
	b.DispatchAll()
	testutil.AssertEqual(t, "delivered once", got, []int{3})
}

func TestBus_TypeRouting(t *testing.T) {
	b := NewBus()
	var sounds, explosions int
	Subscribe(b, func(Sound) { sounds++ })
	Subscribe(b, func(Explosion) { explosions++ })

	Emit(b, Sound{Sound: SoundHammerHit})
	Emit(b, Sound{Sound: SoundPlayerJump})
	Emit(b, Explosion{})
	b.SwapBuffers()
	b.DispatchAll()

	testutil.AssertEqual(t, "sounds", sounds, 2)
	testutil.AssertEqual(t, "explosions", explosions, 1)
}

func TestBus_EmissionOrder(t *testing.T) {
	b := NewBus()
	var order []string
	Subscribe(b, func(Sound) { order = append(order, "sound") })
	Subscribe(b, func(Explosion) { order = append(order, "explosion") })
	Subscribe(b, func(Mismatch) { order = append(order, "mismatch") })

	Emit(b, Explosion{})
	Emit(b, Sound{})
	Emit(b, Mismatch{})
	Emit(b, Explosion{})
	b.SwapBuffers()
	b.DispatchAll()

	testutil.AssertEqual(t, "order", order, []string{"explosion", "sound", "mismatch", "explosion"})
}
