package ecs

import "fmt"

// EntityID is a handle into an EntityPool: the slot index in the low 32
// bits, the slot generation in the high 32 bits. Releasing a slot bumps its
// generation so handles to the old occupant stop resolving.
type EntityID uint64

// None never refers to an entity. Slot 0 is never handed out.
const None EntityID = 0

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == None }

func (id EntityID) String() string {
	if id == None {
		return "none"
	}
	return fmt.Sprintf("%d.%d", id.Index(), id.Generation())
}

// EntityPool hands out slots and reuses released ones most recent first,
// so a world that releases and allocates in the same order gets the same
// handles back.
type EntityPool struct {
	generations []uint32 // by slot, slot 0 unused
	free        []uint32
}

func NewEntityPool() *EntityPool {
	return &EntityPool{generations: make([]uint32, 1, 64)}
}

func (p *EntityPool) Create() EntityID {
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		return NewEntityID(idx, p.generations[idx])
	}
	idx := uint32(len(p.generations))
	p.generations = append(p.generations, 0)
	return NewEntityID(idx, 0)
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	return idx != 0 && int(idx) < len(p.generations) && p.generations[idx] == id.Generation()
}

// Destroy releases id. It reports false for stale or unknown handles.
func (p *EntityPool) Destroy(id EntityID) bool {
	if !p.Alive(id) {
		return false
	}
	idx := id.Index()
	p.generations[idx]++
	p.free = append(p.free, idx)
	return true
}

// Len returns the number of live handles.
func (p *EntityPool) Len() int {
	return len(p.generations) - 1 - len(p.free)
}
