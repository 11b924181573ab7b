package pool

// Resetter is implemented by values that know how to clear themselves
// before going back to a pool.
type Resetter interface {
	Reset()
}

// Object is a scoped *T claimed from a value pool. Dispose resets the value,
// returns it to its source pool and returns the wrapper to the shared
// wrapper pool. See List for the meaning of Version.
type Object[T any] struct {
	value   *T
	source  *Pool[*T]
	version uint32
}

// ClaimObject claims a value from the shared *T pool.
func ClaimObject[T any]() *Object[T] {
	return ClaimObjectFrom(Shared[T]())
}

// ClaimObjectFrom claims a value from source.
func ClaimObjectFrom[T any](source *Pool[*T]) *Object[T] {
	o := Shared[Object[T]]().Claim()
	o.value = source.Claim()
	o.source = source
	return o
}

// Value returns the wrapped value. It is nil after Dispose.
func (o *Object[T]) Value() *T {
	return o.value
}

// Version returns the number of times this wrapper has been disposed.
func (o *Object[T]) Version() uint32 {
	return o.version
}

// Disposed reports whether the wrapper currently holds no value.
func (o *Object[T]) Disposed() bool {
	return o.value == nil
}

// Dispose resets the value with its Reset method, or to the zero value when
// *T does not implement Resetter, and releases it. Calling Dispose again
// before the wrapper is reclaimed does nothing.
func (o *Object[T]) Dispose() {
	if o.value == nil {
		return
	}
	o.version++
	if r, ok := any(o.value).(Resetter); ok {
		r.Reset()
	} else {
		var zero T
		*o.value = zero
	}
	o.source.Release(o.value)
	o.value = nil
	o.source = nil
	Shared[Object[T]]().Release(o)
}
