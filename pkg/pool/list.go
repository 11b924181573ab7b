package pool

import (
	"iter"
	"slices"
)

// List is a scoped slice claimed from a value pool. Dispose clears the
// slice, hands it back to its source pool and returns the List wrapper
// itself to the shared wrapper pool.
//
// Version increases every time the wrapper is disposed. Holders that keep a
// *List beyond their own scope can record Version right after claiming and
// compare it later to detect that the wrapper has since been recycled. It is
// a use-after-release detector, not a guard: methods other than Dispose,
// Disposed and Version must not be called after Dispose.
type List[T comparable] struct {
	items   *[]T
	source  *Pool[*[]T]
	version uint32
}

// ClaimList claims a list backed by the shared []T pool.
func ClaimList[T comparable]() *List[T] {
	return ClaimListFrom(Shared[[]T]())
}

// ClaimListFrom claims a list whose backing slice comes from source.
func ClaimListFrom[T comparable](source *Pool[*[]T]) *List[T] {
	l := Shared[List[T]]().Claim()
	l.items = source.Claim()
	l.source = source
	return l
}

// CopyList claims a list and appends every element of src in order.
func CopyList[T comparable](src []T) *List[T] {
	l := ClaimList[T]()
	*l.items = append(*l.items, src...)
	return l
}

// Add appends v.
func (l *List[T]) Add(v T) {
	*l.items = append(*l.items, v)
}

// Clear removes every element and keeps the capacity.
func (l *List[T]) Clear() {
	clear(*l.items)
	*l.items = (*l.items)[:0]
}

// Contains reports whether v is in the list.
func (l *List[T]) Contains(v T) bool {
	return slices.Contains(*l.items, v)
}

// CopyTo copies the elements into dst starting at index and returns the
// number of elements copied.
func (l *List[T]) CopyTo(dst []T, index int) int {
	return copy(dst[index:], *l.items)
}

// Remove deletes the first occurrence of v and reports whether it did.
func (l *List[T]) Remove(v T) bool {
	i := slices.Index(*l.items, v)
	if i < 0 {
		return false
	}
	*l.items = slices.Delete(*l.items, i, i+1)
	return true
}

// At returns the element at index i.
func (l *List[T]) At(i int) T {
	return (*l.items)[i]
}

// Set replaces the element at index i.
func (l *List[T]) Set(i int, v T) {
	(*l.items)[i] = v
}

// Len returns the number of elements.
func (l *List[T]) Len() int {
	return len(*l.items)
}

// Values exposes the backing slice. It is only valid until Dispose.
func (l *List[T]) Values() []T {
	return *l.items
}

// All iterates over index/value pairs.
func (l *List[T]) All() iter.Seq2[int, T] {
	return slices.All(*l.items)
}

// Version returns the number of times this wrapper has been disposed,
// wrapping around at the maximum uint32.
func (l *List[T]) Version() uint32 {
	return l.version
}

// Disposed reports whether the wrapper currently holds no slice.
func (l *List[T]) Disposed() bool {
	return l.items == nil
}

// Dispose returns the backing slice to its source pool and the wrapper to
// the shared wrapper pool. Calling Dispose again before the wrapper is
// reclaimed does nothing.
func (l *List[T]) Dispose() {
	if l.items == nil {
		return
	}
	l.version++
	l.Clear()
	l.source.Release(l.items)
	l.items = nil
	l.source = nil
	Shared[List[T]]().Release(l)
}
