// Package host defines the object-model primitives the pools drive.
//
// The pools never own the scene graph. They address host objects through
// opaque handles and call back into the host to activate, deactivate,
// duplicate and destroy them. Capabilities that only some hosts offer are
// modelled as small optional interfaces discovered with a type assertion.
package host

import "context"

// Handle is an opaque reference to a host-managed object.
// Handle 0 is reserved and always invalid.
type Handle uint64

// Valid reports whether the handle is non-zero. It says nothing about
// whether the object still exists; use Host.Alive for that.
func (h Handle) Valid() bool {
	return h != 0
}

// Host supplies the primitives every managed pool relies on.
type Host interface {
	// SetActive toggles whether the object participates in the scene.
	SetActive(h Handle, active bool)

	// Destroy destroys the object. Hosts may defer the work to the end of
	// the current frame.
	Destroy(h Handle)

	// Alive reports whether the object still exists. Objects destroyed
	// behind the pool's back report false.
	Alive(h Handle) bool
}

// Runner is implemented by hosts that distinguish a running context from an
// inspection or editing context in which deferred destruction never runs.
type Runner interface {
	Running() bool
	DestroyImmediate(h Handle)
}

// Cloner duplicates a template object.
type Cloner interface {
	Clone(template Handle) Handle
}

// Vec3 is a position or direction in scene space.
type Vec3 struct {
	X, Y, Z float64
}

// Placer positions and orients objects.
type Placer interface {
	Place(h Handle, position, direction Vec3)
}

// Effects exposes the playback state of visual effects.
type Effects interface {
	Play(h Handle)
	Playing(h Handle) bool
}

// Frames lets asynchronous work yield until the next scheduling tick.
type Frames interface {
	NextFrame(ctx context.Context) error
}

// Running reports whether h is executing in a normal running context.
// Hosts that do not implement Runner are always running.
func Running(h Host) bool {
	if r, ok := h.(Runner); ok {
		return r.Running()
	}
	return true
}

// DestroyNow destroys obj immediately when the host is outside a running
// context and falls back to the regular, possibly deferred, Destroy otherwise.
func DestroyNow(h Host, obj Handle) {
	if r, ok := h.(Runner); ok && !r.Running() {
		r.DestroyImmediate(obj)
		return
	}
	h.Destroy(obj)
}
