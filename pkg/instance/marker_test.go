package instance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/respawn/pkg/host/memhost"
)

type recordingListener struct {
	name string
	log  *[]string
}

func (l *recordingListener) OnClaimedFromPool(*Marker) {
	*l.log = append(*l.log, l.name+":claimed")
}

func (l *recordingListener) OnReleasedToPool(*Marker) {
	*l.log = append(*l.log, l.name+":released")
}

func TestMarkerNotifiesInRegistrationOrder(t *testing.T) {
	ctx := context.Background()
	_, dir, p := newTestPool(t)
	obj, err := p.Claim(ctx)
	require.NoError(t, err)
	m, _ := dir.MarkerOf(obj)

	var log []string
	a := &recordingListener{name: "a", log: &log}
	b := &recordingListener{name: "b", log: &log}
	m.AddListener(a)
	m.AddListener(b)
	m.AddListener(a)
	m.OnReleased(func() { log = append(log, "event:released") })
	m.OnClaimed(func() { log = append(log, "event:claimed") })
	assert.Equal(t, 2, m.Listeners())

	m.Release()
	_, err = p.Claim(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"event:released", "a:released", "b:released",
		"event:claimed", "a:claimed", "b:claimed",
	}, log)
}

func TestMarkerRemoveListener(t *testing.T) {
	ctx := context.Background()
	_, dir, p := newTestPool(t)
	obj, _ := p.Claim(ctx)
	m, _ := dir.MarkerOf(obj)

	var log []string
	a := &recordingListener{name: "a", log: &log}
	m.AddListener(a)
	m.RemoveListener(a)
	m.RemoveListener(a)

	m.Release()
	assert.Empty(t, log)
	assert.Zero(t, m.Listeners())
}

type selfRemovingListener struct {
	calls int
}

func (l *selfRemovingListener) OnClaimedFromPool(*Marker) {}

func (l *selfRemovingListener) OnReleasedToPool(m *Marker) {
	l.calls++
	m.RemoveListener(l)
}

func TestListenerMayUnregisterDuringNotification(t *testing.T) {
	ctx := context.Background()
	_, dir, p := newTestPool(t)
	obj, _ := p.Claim(ctx)
	m, _ := dir.MarkerOf(obj)

	l := &selfRemovingListener{}
	m.AddListener(l)
	m.Release()
	_, _ = p.Claim(ctx)
	m.Release()

	assert.Equal(t, 1, l.calls)
}

func TestMarkerReleaseReturnsToPool(t *testing.T) {
	ctx := context.Background()
	h, dir, p := newTestPool(t)
	obj, _ := p.Claim(ctx)

	dir.Release(obj)
	assert.Equal(t, 1, p.Len())
	assert.True(t, h.Alive(obj))
	assert.False(t, h.Active(obj))
}

func TestMarkerReleaseOutsideRunningContext(t *testing.T) {
	ctx := context.Background()
	h, dir, p := newTestPool(t)
	obj, _ := p.Claim(ctx)

	h.SetRunning(false)
	dir.Release(obj)

	assert.False(t, h.Alive(obj))
	assert.Zero(t, p.Len(), "pool must not receive the object")
	_, immediate, _ := h.Counters()
	assert.Equal(t, 1, immediate)
	assert.Zero(t, dir.Len())
}

func TestMarkerWithoutOwnerDestroysObject(t *testing.T) {
	h := memhost.New()
	dir := NewDirectory(h, zaptest.NewLogger(t))
	obj := h.Spawn("stray")
	m := dir.Adopt(obj, 0)

	m.Release()
	assert.False(t, h.Alive(obj))
	destroyed, _, _ := h.Counters()
	assert.Equal(t, 1, destroyed)
}

func TestDirectoryReleaseWithoutMarker(t *testing.T) {
	h := memhost.New()
	dir := NewDirectory(h, zaptest.NewLogger(t))
	obj := h.Spawn("loose")

	dir.Release(0)
	dir.Release(obj)
	assert.False(t, h.Alive(obj))

	loose := h.Spawn("loose")
	h.SetRunning(false)
	dir.Release(loose)
	_, immediate, _ := h.Counters()
	assert.Equal(t, 1, immediate)
}
