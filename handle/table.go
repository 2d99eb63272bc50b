package handle

import "sync"

// Table maps opaque uint64 handles to live resources of one type.
//
// The host call surface hands handles, not pointers, across the process
// boundary; Table is the translation layer back. Handle 0 is reserved and
// always invalid. Table is safe for concurrent use.
type Table[T any] struct {
	mu     sync.RWMutex
	items  map[uint64]T
	next   uint64
	closed bool
}

// NewTable creates an empty handle table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{items: make(map[uint64]T)}
}

// Put stores a value and returns its handle. Returns 0 after Close.
func (t *Table[T]) Put(value T) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0
	}

	t.next++
	t.items[t.next] = value

	return t.next
}

// Get retrieves a value by handle.
func (t *Table[T]) Get(h uint64) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.items[h]

	return v, ok
}

// Remove drops a handle and returns its value. The caller is responsible
// for releasing the value itself; the table only forgets the mapping.
func (t *Table[T]) Remove(h uint64) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.items[h]
	if ok {
		delete(t.items, h)
	}

	return v, ok
}

// Len returns the number of live handles.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.items)
}

// Drain removes every entry and passes each value to drop, then marks the
// table closed. Put returns 0 afterwards.
func (t *Table[T]) Drain(drop func(T)) {
	t.mu.Lock()
	items := t.items
	t.items = make(map[uint64]T)
	t.closed = true
	t.mu.Unlock()

	if drop == nil {
		return
	}
	for _, v := range items {
		drop(v)
	}
}
