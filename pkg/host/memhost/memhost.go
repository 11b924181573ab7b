// Package memhost is a deterministic in-memory implementation of the host
// object model. It backs the package tests and the pool simulator.
package memhost

import (
	"context"
	"fmt"

	"github.com/ajitpratap0/respawn/pkg/host"
)

type object struct {
	name      string
	active    bool
	address   string
	position  host.Vec3
	direction host.Vec3
	remaining int
}

// Host keeps every object in a map keyed by handle. Handles are never
// reused, so a destroyed handle stays dead forever.
type Host struct {
	objects      map[host.Handle]*object
	addresses    map[string]host.Handle
	next         host.Handle
	frame        uint64
	running      bool
	effectFrames int

	destroyed          int
	destroyedImmediate int
	released           int
}

var (
	_ host.Host    = (*Host)(nil)
	_ host.Runner  = (*Host)(nil)
	_ host.Cloner  = (*Host)(nil)
	_ host.Placer  = (*Host)(nil)
	_ host.Effects = (*Host)(nil)
	_ host.Frames  = (*Host)(nil)
)

// New creates a running host whose effects play for a single frame.
func New() *Host {
	return &Host{
		objects:      make(map[host.Handle]*object),
		addresses:    make(map[string]host.Handle),
		running:      true,
		effectFrames: 1,
	}
}

// SetEffectFrames sets how many frames an effect keeps playing after Play.
func (h *Host) SetEffectFrames(n int) {
	h.effectFrames = n
}

// SetRunning switches between the running and the editing context.
func (h *Host) SetRunning(running bool) {
	h.running = running
}

// Spawn creates a new active object.
func (h *Host) Spawn(name string) host.Handle {
	h.next++
	h.objects[h.next] = &object{name: name, active: true}
	return h.next
}

// Clone duplicates the template. Cloning a dead template yields Handle 0.
func (h *Host) Clone(template host.Handle) host.Handle {
	src, ok := h.objects[template]
	if !ok {
		return 0
	}
	h.next++
	cp := *src
	cp.remaining = 0
	h.objects[h.next] = &cp
	return h.next
}

// SetActive implements host.Host.
func (h *Host) SetActive(obj host.Handle, active bool) {
	if o, ok := h.objects[obj]; ok {
		o.active = active
	}
}

// Active reports whether the object exists and is active.
func (h *Host) Active(obj host.Handle) bool {
	o, ok := h.objects[obj]
	return ok && o.active
}

// Alive implements host.Host.
func (h *Host) Alive(obj host.Handle) bool {
	_, ok := h.objects[obj]
	return ok
}

// Destroy implements host.Host.
func (h *Host) Destroy(obj host.Handle) {
	if _, ok := h.objects[obj]; ok {
		delete(h.objects, obj)
		h.destroyed++
	}
}

// Running implements host.Runner.
func (h *Host) Running() bool {
	return h.running
}

// DestroyImmediate implements host.Runner.
func (h *Host) DestroyImmediate(obj host.Handle) {
	if _, ok := h.objects[obj]; ok {
		delete(h.objects, obj)
		h.destroyedImmediate++
	}
}

// Place implements host.Placer.
func (h *Host) Place(obj host.Handle, position, direction host.Vec3) {
	if o, ok := h.objects[obj]; ok {
		o.position = position
		o.direction = direction
	}
}

// Position returns the object's position.
func (h *Host) Position(obj host.Handle) host.Vec3 {
	if o, ok := h.objects[obj]; ok {
		return o.position
	}
	return host.Vec3{}
}

// Play implements host.Effects.
func (h *Host) Play(obj host.Handle) {
	if o, ok := h.objects[obj]; ok {
		o.remaining = h.effectFrames
	}
}

// Playing implements host.Effects.
func (h *Host) Playing(obj host.Handle) bool {
	o, ok := h.objects[obj]
	return ok && o.remaining > 0
}

// Tick advances the frame counter and the playback of every effect.
func (h *Host) Tick() {
	h.frame++
	for _, o := range h.objects {
		if o.remaining > 0 {
			o.remaining--
		}
	}
}

// NextFrame implements host.Frames by ticking synchronously.
func (h *Host) NextFrame(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.Tick()
	return nil
}

// Frame returns the number of ticks so far.
func (h *Host) Frame() uint64 {
	return h.frame
}

// Register publishes a template under an address for Instantiate.
func (h *Host) Register(address string, template host.Handle) {
	h.addresses[address] = template
}

// Instantiate clones the template registered under address and marks the
// clone as owned by the asset system.
func (h *Host) Instantiate(ctx context.Context, address string) (host.Handle, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	template, ok := h.addresses[address]
	if !ok {
		return 0, fmt.Errorf("no asset registered at %q", address)
	}
	obj := h.Clone(template)
	if !obj.Valid() {
		return 0, fmt.Errorf("asset template at %q was destroyed", address)
	}
	h.objects[obj].address = address
	return obj, nil
}

// ReleaseInstance destroys obj if it was created by Instantiate and reports
// whether it did.
func (h *Host) ReleaseInstance(obj host.Handle) bool {
	o, ok := h.objects[obj]
	if !ok || o.address == "" {
		return false
	}
	delete(h.objects, obj)
	h.released++
	return true
}

// Len returns the number of live objects.
func (h *Host) Len() int {
	return len(h.objects)
}

// Counters reports how many objects were destroyed through each path.
func (h *Host) Counters() (destroyed, destroyedImmediate, released int) {
	return h.destroyed, h.destroyedImmediate, h.released
}
