package asset

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/respawn/pkg/errors"
	"github.com/ajitpratap0/respawn/pkg/host"
	"github.com/ajitpratap0/respawn/pkg/host/memhost"
	"github.com/ajitpratap0/respawn/pkg/instance"
)

func newScene(t *testing.T) (*memhost.Host, *instance.Directory) {
	t.Helper()
	h := memhost.New()
	template := h.Spawn("goblin")
	h.Register("enemies/goblin", template)
	return h, instance.NewDirectory(h, zaptest.NewLogger(t))
}

func newGoblinPool(t *testing.T, h *memhost.Host, dir *instance.Directory) *Pool {
	t.Helper()
	p, err := NewPool(dir, AddressLoader{Catalog: h, Address: "enemies/goblin"},
		WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return p
}

// failingAfter loads through next until n loads succeeded, then fails.
func failingAfter(n int, next Loader) Loader {
	calls := 0
	return LoaderFunc(func(ctx context.Context) (host.Handle, error) {
		calls++
		if calls > n {
			return 0, fmt.Errorf("load %d failed", calls)
		}
		return next.Load(ctx)
	})
}

func TestNewPoolValidation(t *testing.T) {
	_, dir := newScene(t)

	_, err := NewPool(dir, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = NewPool(nil, LoaderFunc(nil))
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestClaimLoadsAndReuses(t *testing.T) {
	ctx := context.Background()
	h, dir := newScene(t)
	p := newGoblinPool(t, h, dir)

	obj, err := p.Claim(ctx)
	require.NoError(t, err)
	assert.True(t, h.Active(obj))
	assert.Equal(t, uint64(1), h.Frame(), "creation waits one frame")

	m, ok := dir.MarkerOf(obj)
	require.True(t, ok)
	assert.Equal(t, p.ID(), m.Owner())

	dir.Release(obj)
	assert.Equal(t, 1, p.Len())
	assert.False(t, h.Active(obj))

	again, err := p.Claim(ctx)
	require.NoError(t, err)
	assert.Equal(t, obj, again)
	assert.Equal(t, uint64(1), h.Frame(), "reuse does not wait")
	assert.EqualValues(t, 1, p.Stats().Hits)
}

func TestAllocateKeepsGoingPastFailures(t *testing.T) {
	h, dir := newScene(t)
	loader := failingAfter(1, AddressLoader{Catalog: h, Address: "enemies/goblin"})
	p, err := NewPool(dir, loader, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	created, err := p.Allocate(context.Background(), 3)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeCreation))
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, p.Len())
	assert.EqualValues(t, 2, p.Stats().Failures)
}

func TestAllocateQueuesLoadsAfterAFailure(t *testing.T) {
	h, dir := newScene(t)
	next := AddressLoader{Catalog: h, Address: "enemies/goblin"}
	calls := 0
	p, err := NewPool(dir, LoaderFunc(func(ctx context.Context) (host.Handle, error) {
		calls++
		if calls == 2 {
			return 0, fmt.Errorf("load %d failed", calls)
		}
		return next.Load(ctx)
	}), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	created, err := p.Allocate(context.Background(), 3)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeCreation))
	assert.Contains(t, err.Error(), "load 2 failed")
	assert.Equal(t, 2, created)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, 3, calls)
	assert.EqualValues(t, 1, p.Stats().Failures)
}

func TestCancelledAllocateStopsEarly(t *testing.T) {
	h, dir := newScene(t)
	calls := 0
	p, err := NewPool(dir, LoaderFunc(func(context.Context) (host.Handle, error) {
		calls++
		return h.Spawn("rock"), nil
	}), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	created, err := p.Allocate(ctx, 3)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeCancelled))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, created)
	assert.Zero(t, calls)
	assert.EqualValues(t, 1, p.Stats().Failures)
}

func TestLoadErrorDestroysReturnedObject(t *testing.T) {
	h, dir := newScene(t)
	p, err := NewPool(dir, LoaderFunc(func(ctx context.Context) (host.Handle, error) {
		obj, err := h.Instantiate(ctx, "enemies/goblin")
		require.NoError(t, err)
		return obj, fmt.Errorf("post-load hook failed")
	}), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	live := h.Len()

	obj, err := p.Claim(context.Background())
	require.Error(t, err)
	assert.False(t, obj.Valid())
	assert.True(t, errors.IsType(err, errors.ErrorTypeCreation))

	assert.Equal(t, live, h.Len(), "object returned with the error must not leak")
	_, _, released := h.Counters()
	assert.Equal(t, 1, released)
	assert.Zero(t, dir.Len())
}

func TestClaimFailureReturnsNoObject(t *testing.T) {
	h, dir := newScene(t)
	p, err := NewPool(dir, AddressLoader{Catalog: h, Address: "enemies/missing"},
		WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	obj, err := p.Claim(context.Background())
	require.Error(t, err)
	assert.False(t, obj.Valid())
	assert.True(t, errors.IsType(err, errors.ErrorTypeCreation))
	assert.Zero(t, dir.Len())
}

func TestLoaderReturningDeadHandleFails(t *testing.T) {
	_, dir := newScene(t)
	p, err := NewPool(dir, LoaderFunc(func(context.Context) (host.Handle, error) {
		return 0, nil
	}), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	_, err = p.Claim(context.Background())
	assert.True(t, errors.IsType(err, errors.ErrorTypeCreation))
}

func TestCancelledClaim(t *testing.T) {
	h, dir := newScene(t)
	p := newGoblinPool(t, h, dir)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	obj, err := p.Claim(ctx)
	require.Error(t, err)
	assert.False(t, obj.Valid())
	assert.True(t, errors.IsType(err, errors.ErrorTypeCancelled))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPruneReleasesThroughAssetSystem(t *testing.T) {
	h, dir := newScene(t)
	p := newGoblinPool(t, h, dir)

	_, err := p.Allocate(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, 2, p.Prune(1))
	destroyed, _, released := h.Counters()
	assert.Equal(t, 2, released)
	assert.Zero(t, destroyed)
}

func TestPruneFallsBackToDestroy(t *testing.T) {
	h, dir := newScene(t)
	p, err := NewPool(dir, LoaderFunc(func(context.Context) (host.Handle, error) {
		return h.Spawn("rock"), nil
	}), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	_, err = p.Allocate(context.Background(), 2)
	require.NoError(t, err)
	p.Clear()

	destroyed, _, released := h.Counters()
	assert.Equal(t, 2, destroyed)
	assert.Zero(t, released)
}

type goblinRef struct {
	h *memhost.Host
}

func (r goblinRef) Instantiate(ctx context.Context) (host.Handle, error) {
	return r.h.Instantiate(ctx, "enemies/goblin")
}

func TestReferenceLoader(t *testing.T) {
	h, dir := newScene(t)
	p, err := NewPool(dir, ReferenceLoader{Ref: goblinRef{h: h}}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	obj, err := p.Claim(context.Background())
	require.NoError(t, err)
	assert.True(t, h.Alive(obj))

	_, err = ReferenceLoader{}.Load(context.Background())
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestCloseOrphansClaimedObjects(t *testing.T) {
	ctx := context.Background()
	h, dir := newScene(t)
	p := newGoblinPool(t, h, dir)

	held, err := p.Claim(ctx)
	require.NoError(t, err)
	p.Close()

	dir.Release(held)
	assert.False(t, h.Alive(held))
	_, err = p.Claim(ctx)
	assert.True(t, errors.IsType(err, errors.ErrorTypeClosed))
}

func TestFailedLoadIsTraced(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	h, dir := newScene(t)
	p, err := NewPool(dir, AddressLoader{Catalog: h, Address: "enemies/missing"},
		WithName("missing"), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	_, _ = p.Claim(context.Background())

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "asset.load", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
