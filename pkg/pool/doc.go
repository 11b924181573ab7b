// Package pool implements FIFO value pooling for the frame loop. It keeps
// short-lived scratch values (lists, vectors, command buffers) out of the
// garbage collector's way by recycling them instead of allocating fresh ones
// every frame.
//
// Architecture
//
// The pool package uses Go generics to provide type-safe pooling for any
// value type. Unlike sync.Pool it never drops idle values, hands them out in
// release order, and performs no synchronization.
//
// Core Types:
//
//   - Pool[T]: FIFO pool with a factory and optional reset function
//   - Shared[T]: process-wide *Pool[*T] per type
//   - List[T]: pooled slice wrapper with collection proxies
//   - Object[T]: pooled *T wrapper
//
// Usage Patterns
//
// Scratch list for the duration of a function:
//
//	hits := pool.ClaimList[host.Handle]()
//	defer hits.Dispose()
//
//	for _, h := range candidates {
//		if inRange(h) {
//			hits.Add(h)
//		}
//	}
//
// Copying an existing slice:
//
//	snapshot := pool.CopyList(targets)
//	defer snapshot.Dispose()
//
// Custom pool with pre-warming:
//
//	paths := pool.New(
//		func() *Path { return &Path{nodes: make([]Node, 0, 64)} },
//		func(p *Path) { p.nodes = p.nodes[:0] },
//	)
//	paths.Allocate(32)
//
// Stale References
//
// Wrappers are recycled too. Every Dispose bumps the wrapper's Version, so a
// holder that stored a wrapper can tell it was disposed and reused:
//
//	l := pool.ClaimList[int]()
//	v := l.Version()
//	...
//	if l.Version() != v {
//		// l was disposed; it may now belong to someone else
//	}
//
// DO:
//   - Dispose every wrapper exactly once, ideally with defer
//   - Reset values before Release when the pool has no reset function
//   - Keep pools on the goroutine that runs the frame loop
//
// DON'T:
//   - Touch a wrapper's contents after Dispose
//   - Release the same value twice; the pool does not detect it
//   - Share a Pool between goroutines without a lock
package pool
