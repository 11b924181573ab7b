package pool

import (
	"sync"
	"testing"
)

type particle struct {
	x, y, z float64
	ttl     int
}

// BenchmarkClaimRelease compares the FIFO pool with sync.Pool and with
// plain allocation.
func BenchmarkClaimRelease(b *testing.B) {
	fifo := New(func() *particle { return &particle{} }, func(p *particle) { *p = particle{} })
	stdPool := sync.Pool{New: func() any { return &particle{} }}

	testCases := []struct {
		name string
		fn   func()
	}{
		{
			name: "alloc",
			fn: func() {
				p := &particle{ttl: 1}
				_ = p
			},
		},
		{
			name: "sync.Pool",
			fn: func() {
				p := stdPool.Get().(*particle)
				p.ttl = 1
				stdPool.Put(p)
			},
		},
		{
			name: "pool.Pool",
			fn: func() {
				p := fifo.Claim()
				p.ttl = 1
				fifo.Release(p)
			},
		},
	}

	for _, tc := range testCases {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				tc.fn()
			}
		})
	}
}

// BenchmarkListDispose measures a frame-local scratch list.
func BenchmarkListDispose(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		l := ClaimList[int]()
		for j := 0; j < 32; j++ {
			l.Add(j)
		}
		l.Dispose()
	}
}
