// Package memory provides pooled buffers that the column reader uses to hold
// the intermediate products of a page: decompressed bytes, levels and
// validity bitmaps.
package memory

import "sync"

// Pool is a type-safe wrapper around sync.Pool.
type Pool[T any] struct {
	pool sync.Pool
}

// Get returns a value from the pool, or one created by newValue if the pool
// is empty. Values taken from the pool are passed to reset before being
// returned.
func (p *Pool[T]) Get(newValue func() *T, reset func(*T)) *T {
	v, _ := p.pool.Get().(*T)
	if v == nil {
		return newValue()
	}
	reset(v)
	return v
}

// Put returns v to the pool. Nil values are ignored.
func (p *Pool[T]) Put(v *T) {
	if v != nil {
		p.pool.Put(v)
	}
}
