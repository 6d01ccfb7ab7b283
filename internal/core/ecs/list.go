package ecs

type node[T any] struct {
	val  T
	prev EntityID
	next EntityID
}

// List is an ordered set of values addressed by generation checked ids.
// Values may be removed or inserted while Each runs: the traversal cursor
// is captured before the callback and moved past removed nodes, so no
// other value is skipped or visited twice.
type List[T any] struct {
	pool    *EntityPool
	nodes   map[EntityID]*node[T]
	head    EntityID
	tail    EntityID
	cursors []EntityID
}

// NewList returns an empty list allocating ids from pool. Several lists
// may share one pool.
func NewList[T any](pool *EntityPool) *List[T] {
	return &List[T]{
		pool:  pool,
		nodes: make(map[EntityID]*node[T], 64),
	}
}

func (l *List[T]) Len() int { return len(l.nodes) }

// PushFront inserts v before every other value.
func (l *List[T]) PushFront(v T) EntityID {
	id := l.pool.Create()
	n := &node[T]{val: v, next: l.head}
	if h, ok := l.nodes[l.head]; ok {
		h.prev = id
	} else {
		l.tail = id
	}
	l.head = id
	l.nodes[id] = n
	return id
}

// PushBack inserts v after every other value.
func (l *List[T]) PushBack(v T) EntityID {
	id := l.pool.Create()
	n := &node[T]{val: v, prev: l.tail}
	if t, ok := l.nodes[l.tail]; ok {
		t.next = id
	} else {
		l.head = id
	}
	l.tail = id
	l.nodes[id] = n
	return id
}

// Remove unlinks id and releases it. Stale or unknown ids are ignored.
func (l *List[T]) Remove(id EntityID) (T, bool) {
	n, ok := l.nodes[id]
	if !ok || !l.pool.Alive(id) {
		var zero T
		return zero, false
	}
	if p, ok := l.nodes[n.prev]; ok {
		p.next = n.next
	} else {
		l.head = n.next
	}
	if nx, ok := l.nodes[n.next]; ok {
		nx.prev = n.prev
	} else {
		l.tail = n.prev
	}
	for i, c := range l.cursors {
		if c == id {
			l.cursors[i] = n.next
		}
	}
	delete(l.nodes, id)
	l.pool.Destroy(id)
	return n.val, true
}

func (l *List[T]) Get(id EntityID) (T, bool) {
	n, ok := l.nodes[id]
	if !ok || !l.pool.Alive(id) {
		var zero T
		return zero, false
	}
	return n.val, true
}

func (l *List[T]) Contains(id EntityID) bool {
	_, ok := l.Get(id)
	return ok
}

func (l *List[T]) Front() EntityID { return l.head }
func (l *List[T]) Back() EntityID  { return l.tail }

// Next returns the id after id, or None.
func (l *List[T]) Next(id EntityID) EntityID {
	if n, ok := l.nodes[id]; ok {
		return n.next
	}
	return None
}

// Prev returns the id before id, or None.
func (l *List[T]) Prev(id EntityID) EntityID {
	if n, ok := l.nodes[id]; ok {
		return n.prev
	}
	return None
}

// Each calls fn for every value in order. fn may remove any value,
// including the current one, and may insert new ones.
func (l *List[T]) Each(fn func(EntityID, T)) {
	l.cursors = append(l.cursors, None)
	slot := len(l.cursors) - 1
	defer func() { l.cursors = l.cursors[:slot] }()

	for id := l.head; id != None; id = l.cursors[slot] {
		n, ok := l.nodes[id]
		if !ok {
			return
		}
		l.cursors[slot] = n.next
		fn(id, n.val)
	}
}

// Values returns the values in order. The slice is a copy.
func (l *List[T]) Values() []T {
	out := make([]T, 0, len(l.nodes))
	for id := l.head; id != None; id = l.nodes[id].next {
		out = append(out, l.nodes[id].val)
	}
	return out
}

// Clear removes every value. Ids are released front to back so the pool
// hands them out again in a fixed order.
func (l *List[T]) Clear() {
	for id := l.head; id != None; id = l.nodes[id].next {
		l.pool.Destroy(id)
	}
	clear(l.nodes)
	l.head, l.tail = None, None
	for i := range l.cursors {
		l.cursors[i] = None
	}
}
