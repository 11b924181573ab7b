package instance

import (
	"github.com/emirpasic/gods/sets/linkedhashset"
	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/pkg/host"
)

// Listener observes the pool lifecycle of one object. Implementations must
// be comparable; pointer receivers are the usual choice.
type Listener interface {
	OnClaimedFromPool(m *Marker)
	OnReleasedToPool(m *Marker)
}

// Marker is the per-object lifecycle record kept by a Directory. It lives as
// long as the object it describes.
type Marker struct {
	handle    host.Handle
	owner     PoolID
	dir       *Directory
	listeners *linkedhashset.Set
	claimed   []func()
	released  []func()
}

// Handle returns the object the marker belongs to.
func (m *Marker) Handle() host.Handle {
	return m.handle
}

// Owner returns the id of the owning pool, or zero.
func (m *Marker) Owner() PoolID {
	return m.owner
}

// Release hands the object back to its pool. Outside a running context the
// object is destroyed on the spot because deferred destruction would never
// run there. An object whose pool is gone is deactivated and destroyed.
func (m *Marker) Release() {
	d := m.dir
	if !host.Running(d.host) {
		d.Forget(m.handle)
		host.DestroyNow(d.host, m.handle)
		return
	}

	if o, ok := d.Pool(m.owner); ok {
		o.Release(m.handle)
		return
	}

	d.logger.Debug("destroying orphaned instance", zap.Uint64("handle", uint64(m.handle)))
	d.host.SetActive(m.handle, false)
	d.Forget(m.handle)
	d.host.Destroy(m.handle)
}

// AddListener registers l. Registering the same listener twice is a no-op.
func (m *Marker) AddListener(l Listener) {
	if m.listeners == nil {
		m.listeners = linkedhashset.New()
	}
	m.listeners.Add(l)
}

// RemoveListener unregisters l.
func (m *Marker) RemoveListener(l Listener) {
	if m.listeners == nil {
		return
	}
	m.listeners.Remove(l)
}

// Listeners returns the number of registered listeners.
func (m *Marker) Listeners() int {
	if m.listeners == nil {
		return 0
	}
	return m.listeners.Size()
}

// OnClaimed subscribes fn to claim notifications.
func (m *Marker) OnClaimed(fn func()) {
	m.claimed = append(m.claimed, fn)
}

// OnReleased subscribes fn to release notifications.
func (m *Marker) OnReleased(fn func()) {
	m.released = append(m.released, fn)
}

// NotifyClaimed is called by the owning pool after the object was handed
// out. Subscribed funcs run first, then listeners in registration order.
func (m *Marker) NotifyClaimed() {
	for _, fn := range m.claimed {
		fn()
	}
	for _, l := range m.snapshot() {
		l.OnClaimedFromPool(m)
	}
}

// NotifyReleased is called by the owning pool after the object was
// deactivated and before it is queued.
func (m *Marker) NotifyReleased() {
	for _, fn := range m.released {
		fn()
	}
	for _, l := range m.snapshot() {
		l.OnReleasedToPool(m)
	}
}

// snapshot copies the listeners so they may unregister while being notified.
func (m *Marker) snapshot() []Listener {
	if m.listeners == nil {
		return nil
	}
	values := m.listeners.Values()
	out := make([]Listener, 0, len(values))
	for _, v := range values {
		out = append(out, v.(Listener))
	}
	return out
}
