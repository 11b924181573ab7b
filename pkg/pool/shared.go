package pool

import (
	"reflect"
	"sync"
)

// shared maps a reflect.Type to its process-wide *Pool[*T].
var shared sync.Map

// Shared returns the process-wide pool of *T values, creating it on first
// use. The lookup is safe from any goroutine; the returned pool itself is
// not, so shared pools belong to the goroutine that drives the frame loop.
func Shared[T any]() *Pool[*T] {
	key := reflect.TypeFor[T]()
	if p, ok := shared.Load(key); ok {
		return p.(*Pool[*T])
	}
	p, _ := shared.LoadOrStore(key, Of[T]())
	return p.(*Pool[*T])
}
