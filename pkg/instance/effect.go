package instance

import (
	"context"
	"slices"

	"github.com/ajitpratap0/respawn/pkg/errors"
	"github.com/ajitpratap0/respawn/pkg/host"
)

// EffectPool recycles clones of a visual effect template. A claimed effect
// starts playing and is released back to the pool by Update once the host
// reports it finished.
type EffectPool struct {
	*Pool
	effects host.Effects
	placer  host.Placer
	tracked []*effect
}

type effect struct {
	pool   *EffectPool
	marker *Marker
	armed  bool
}

func (e *effect) OnClaimedFromPool(m *Marker) {
	e.pool.effects.Play(m.Handle())
	e.armed = true
}

func (e *effect) OnReleasedToPool(*Marker) {
	e.armed = false
}

// finish releases the effect once per activation after playback ends.
func (e *effect) finish() bool {
	if !e.armed || e.pool.effects.Playing(e.marker.Handle()) {
		return false
	}
	e.armed = false
	e.marker.Release()
	return true
}

// NewEffectPool creates a pool of template clones. The host must implement
// host.Effects and host.Cloner; host.Placer is used by Spawn when present.
func NewEffectPool(dir *Directory, template host.Handle, opts ...Option) (*EffectPool, error) {
	if dir == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "pool requires a directory")
	}
	fx, ok := dir.host.(host.Effects)
	if !ok {
		return nil, errors.New(errors.ErrorTypeConfig, "host cannot play effects")
	}

	ep := &EffectPool{effects: fx}
	ep.placer, _ = dir.host.(host.Placer)

	opts = append([]Option{withKind("effect")}, opts...)
	opts = append(opts, withCreateHook(ep.track))
	p, err := NewPool(dir, FromTemplate(template), opts...)
	if err != nil {
		return nil, err
	}
	ep.Pool = p
	return ep, nil
}

// Spawn claims an effect, places it and lets it play.
func (ep *EffectPool) Spawn(ctx context.Context, position, direction host.Vec3) (host.Handle, error) {
	obj, err := ep.Claim(ctx)
	if err != nil {
		return 0, err
	}
	if ep.placer != nil {
		ep.placer.Place(obj, position, direction)
	}
	return obj, nil
}

// Update runs once per frame. It releases every effect that stopped playing
// and returns how many it released.
func (ep *EffectPool) Update() int {
	ep.tracked = slices.DeleteFunc(ep.tracked, func(e *effect) bool {
		return !ep.host.Alive(e.marker.Handle())
	})

	released := 0
	for _, e := range ep.tracked {
		if e.finish() {
			released++
		}
	}
	return released
}

// ReleaseAll releases every effect that is still playing and returns how
// many it released.
func (ep *EffectPool) ReleaseAll() int {
	released := 0
	for _, e := range ep.tracked {
		if e.armed && ep.host.Alive(e.marker.Handle()) {
			e.armed = false
			e.marker.Release()
			released++
		}
	}
	return released
}

// Active returns the number of effects currently playing out.
func (ep *EffectPool) Active() int {
	n := 0
	for _, e := range ep.tracked {
		if e.armed {
			n++
		}
	}
	return n
}

func (ep *EffectPool) track(m *Marker) {
	e := &effect{pool: ep, marker: m}
	m.AddListener(e)
	ep.tracked = append(ep.tracked, e)
}
