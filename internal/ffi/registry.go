package ffi

import (
	"fmt"
	"sync"
)

// Handle identifies a registered instance across the foreign boundary.
// The zero Handle is the null handle and never refers to an instance.
type Handle uintptr

// Registry is an arena of instances addressed by Handle. Handles are never
// reused, so a stale handle cannot silently reach a newer instance.
//
// The registry guards its own map only; the instances it holds are not
// synchronised.
type Registry[T any] struct {
	mu    sync.Mutex
	next  Handle
	items map[Handle]T
}

// NewRegistry returns an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{items: make(map[Handle]T)}
}

// Insert stores v and returns its new, non-zero handle.
func (r *Registry[T]) Insert(v T) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.items[r.next] = v
	return r.next
}

// MustGet returns the instance for h. A null, unknown or released handle is
// a programming error on the caller's side and panics.
func (r *Registry[T]) MustGet(h Handle) T {
	if h == 0 {
		panic("ffi: null handle")
	}
	r.mu.Lock()
	v, ok := r.items[h]
	r.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("ffi: unknown or released handle %d", h))
	}
	return v
}

// Release drops the instance for h. Releasing a null, unknown or already
// released handle panics.
func (r *Registry[T]) Release(h Handle) {
	if h == 0 {
		panic("ffi: null handle")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[h]; !ok {
		panic(fmt.Sprintf("ffi: unknown or released handle %d", h))
	}
	delete(r.items, h)
}

// Len reports how many instances are live.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
