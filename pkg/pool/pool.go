package pool

import (
	"github.com/eapache/queue"
)

// Pool is a FIFO pool of reusable values of type T.
//
// Claim hands out the oldest released value, or manufactures a new one with
// the factory when the idle queue is empty. Release enqueues unconditionally;
// the pool never evicts and has no upper bound, trading memory for freedom
// from allocation stalls.
//
// A Pool has a single logical owner and is not safe for concurrent use
// without external synchronization.
type Pool[T any] struct {
	idle  *queue.Queue
	new   func() T
	reset func(T)
	stats Stats
}

// Stats is a snapshot of a pool's counters.
type Stats struct {
	// Created is the number of values manufactured by the factory
	Created int64 `json:"created"`
	// Claims is the number of Claim calls
	Claims int64 `json:"claims"`
	// Hits is the number of claims served from the idle queue
	Hits int64 `json:"hits"`
	// Releases is the number of Release calls
	Releases int64 `json:"releases"`
}

// New creates a pool with a factory and an optional reset function.
// The factory is called whenever Claim finds the idle queue empty. The reset
// function, if not nil, runs on every value passed to Release before it is
// queued. A nil factory manufactures the zero value of T.
//
// Example:
//
//	buffers := New(
//	    func() *Buffer { return &Buffer{data: make([]byte, 0, 1024)} },
//	    func(b *Buffer) { b.data = b.data[:0] },
//	)
func New[T any](new func() T, reset func(T)) *Pool[T] {
	if new == nil {
		new = func() T {
			var zero T
			return zero
		}
	}
	return &Pool[T]{
		idle:  queue.New(),
		new:   new,
		reset: reset,
	}
}

// Of creates a pool of freshly allocated *T values.
func Of[T any]() *Pool[*T] {
	return New(func() *T { return new(T) }, nil)
}

// Claim returns the oldest idle value, or a new one from the factory.
func (p *Pool[T]) Claim() T {
	p.stats.Claims++
	if p.idle.Length() > 0 {
		p.stats.Hits++
		v, _ := p.idle.Remove().(T)
		return v
	}
	p.stats.Created++
	return p.new()
}

// Release queues v for reuse. The caller must not use v afterwards and is
// responsible for v's state unless the pool was built with a reset function.
// Releasing the same value twice queues it twice.
func (p *Pool[T]) Release(v T) {
	if p.reset != nil {
		p.reset(v)
	}
	p.stats.Releases++
	p.idle.Add(v)
}

// Allocate manufactures values until at least minCount are idle and returns
// how many it created.
func (p *Pool[T]) Allocate(minCount int) int {
	created := 0
	for p.idle.Length() < minCount {
		p.stats.Created++
		p.idle.Add(p.new())
		created++
	}
	return created
}

// Len returns the number of idle values.
func (p *Pool[T]) Len() int {
	return p.idle.Length()
}

// Stats returns the pool's counters.
func (p *Pool[T]) Stats() Stats {
	return p.stats
}
