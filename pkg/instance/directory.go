package instance

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/pkg/host"
	"github.com/ajitpratap0/respawn/pkg/logger"
)

// PoolID identifies a pool inside its Directory. Zero means no pool.
type PoolID uint32

// Owner is the part of a pool a Marker needs to hand its object back.
type Owner interface {
	Release(h host.Handle)
}

// Directory is the marker table and pool registry for one host. Markers
// refer to their pool by PoolID and resolve it here, so a closed pool simply
// disappears from the directory and its former objects become orphans.
type Directory struct {
	host    host.Host
	logger  *zap.Logger
	pools   map[PoolID]Owner
	markers map[host.Handle]*Marker
	nextID  PoolID
}

// NewDirectory creates an empty directory for h.
func NewDirectory(h host.Host, log *zap.Logger) *Directory {
	if log == nil {
		log = logger.Get().Named("directory")
	}
	return &Directory{
		host:    h,
		logger:  log,
		pools:   make(map[PoolID]Owner),
		markers: make(map[host.Handle]*Marker),
	}
}

// Host returns the host the directory serves.
func (d *Directory) Host() host.Host {
	return d.host
}

// Register adds a pool and returns its id. Pool implementations call it
// once at construction.
func (d *Directory) Register(o Owner) PoolID {
	d.nextID++
	d.pools[d.nextID] = o
	return d.nextID
}

// Unregister removes a pool. Markers that still point at id take the orphan
// path on Release.
func (d *Directory) Unregister(id PoolID) {
	delete(d.pools, id)
}

// Pool resolves a pool id.
func (d *Directory) Pool(id PoolID) (Owner, bool) {
	if id == 0 {
		return nil, false
	}
	o, ok := d.pools[id]
	return o, ok
}

// Adopt returns h's marker, creating it if needed, and points it at owner.
func (d *Directory) Adopt(h host.Handle, owner PoolID) *Marker {
	m, ok := d.markers[h]
	if !ok {
		m = &Marker{handle: h, dir: d}
		d.markers[h] = m
	}
	m.owner = owner
	return m
}

// Forget drops h's marker. Call it when h is destroyed.
func (d *Directory) Forget(h host.Handle) {
	delete(d.markers, h)
}

// MarkerOf returns h's marker.
func (d *Directory) MarkerOf(h host.Handle) (*Marker, bool) {
	m, ok := d.markers[h]
	return m, ok
}

// Len returns the number of objects with a marker.
func (d *Directory) Len() int {
	return len(d.markers)
}

// Release gives h back through its marker. Objects without a marker are
// destroyed, immediately when the host is not running. Invalid handles are
// ignored.
func (d *Directory) Release(h host.Handle) {
	if !h.Valid() {
		return
	}
	if m, ok := d.markers[h]; ok {
		m.Release()
		return
	}
	host.DestroyNow(d.host, h)
}
