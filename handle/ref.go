// Package handle provides ownership primitives for opaque engine resources.
//
// Engine handles (compression contexts, decompression contexts, compressor
// graphs) must be released exactly once, yet may be referenced from more
// than one place: a compression context keeps its attached compressor graph
// alive because the engine reads through the reference on every call. Ref
// models that as explicit shared ownership with reference counting; Table
// maps opaque integer handles to live resources for the host call surface.
package handle

import "sync/atomic"

// Ref is a reference-counted owner of one resource.
//
// A Ref starts with a single reference held by its creator. Additional
// holders call Retain before using the value and Release when done; the
// destroy callback runs exactly once, when the last reference drops.
//
// Ref is safe for concurrent Retain/Release. It does not make the
// underlying resource safe for concurrent calls; that discipline stays
// with the caller.
type Ref[T any] struct {
	value   T
	destroy func(T)
	refs    atomic.Int32
}

// NewRef creates a reference-counted owner with an initial count of one.
// destroy runs exactly once, when the count reaches zero.
func NewRef[T any](value T, destroy func(T)) *Ref[T] {
	r := &Ref[T]{value: value, destroy: destroy}
	r.refs.Store(1)

	return r
}

// Value returns the owned resource. Only valid between a successful
// Retain (or creation) and the matching Release.
func (r *Ref[T]) Value() T {
	return r.value
}

// Retain adds a reference. It fails (returns false) once the last
// reference has dropped: a dead resource cannot be revived.
func (r *Ref[T]) Retain() bool {
	for {
		n := r.refs.Load()
		if n <= 0 {
			return false
		}
		if r.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops one reference, destroying the resource when the count
// reaches zero. Releasing more times than retained panics: it means two
// owners both believed they held the last reference.
func (r *Ref[T]) Release() {
	n := r.refs.Add(-1)
	if n < 0 {
		panic("handle: Release without matching Retain")
	}
	if n == 0 && r.destroy != nil {
		r.destroy(r.value)
	}
}

// Alive reports whether the resource has not been destroyed yet.
func (r *Ref[T]) Alive() bool {
	return r.refs.Load() > 0
}
