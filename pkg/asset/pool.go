// Package asset pools objects whose creation completes asynchronously,
// such as instances loaded through an asset catalog.
//
// The pool mirrors instance.Pool but Claim and Allocate may suspend: every
// creation first waits for the next frame and then awaits the Loader. A
// failed or cancelled creation yields an error instead of a half-built
// object. Objects are registered in the same instance.Directory as the
// synchronous pools, so markers, listeners and orphan handling behave the
// same way.
package asset

import (
	"context"
	stderrors "errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/pkg/errors"
	"github.com/ajitpratap0/respawn/pkg/host"
	"github.com/ajitpratap0/respawn/pkg/instance"
	"github.com/ajitpratap0/respawn/pkg/logger"
	"github.com/ajitpratap0/respawn/pkg/observability"
)

const kind = "asset"

// Option configures a Pool.
type Option func(*Pool)

// WithName sets the pool name used in logs, spans and metric labels.
func WithName(name string) Option {
	return func(p *Pool) {
		p.name = name
	}
}

// WithLogger replaces the pool logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pool) {
		p.logger = l
	}
}

// WithReleaser overrides the releaser discovered on the host.
func WithReleaser(r Releaser) Option {
	return func(p *Pool) {
		p.releaser = r
	}
}

// Pool recycles objects produced by a Loader.
type Pool struct {
	q        *instance.IdleQueue
	name     string
	host     host.Host
	loader   Loader
	frames   host.Frames
	releaser Releaser
	logger   *zap.Logger
}

var _ instance.Recycler = (*Pool)(nil)

// NewPool registers an asynchronous pool in dir. When the host implements
// host.Frames every creation waits for the next frame first; when it
// implements Releaser, destroyed objects are handed back to it.
func NewPool(dir *instance.Directory, loader Loader, opts ...Option) (*Pool, error) {
	if dir == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "pool requires a directory")
	}
	if loader == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "pool requires a loader")
	}

	h := dir.Host()
	p := &Pool{
		host:   h,
		loader: loader,
	}
	p.frames, _ = h.(host.Frames)
	p.releaser, _ = h.(Releaser)
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named(kind)
	}

	p.q = instance.NewIdleQueue(dir, p, p.name, kind, p.logger, p.destroy)
	p.name = p.q.Name()
	p.logger = p.q.Logger()
	return p, nil
}

// ID returns the pool's id in its directory.
func (p *Pool) ID() instance.PoolID {
	return p.q.ID()
}

// Name returns the pool name.
func (p *Pool) Name() string {
	return p.name
}

// Claim returns an active object, loading a new one when no live idle
// object is queued. A failed load returns the zero handle and an error.
func (p *Pool) Claim(ctx context.Context) (host.Handle, error) {
	if err := p.q.Open(); err != nil {
		return 0, err
	}

	obj, hit := p.q.Take()
	if !hit {
		var err error
		if obj, err = p.create(ctx); err != nil {
			return 0, err
		}
	}
	p.q.Hand(obj, hit)
	return obj, nil
}

// Release deactivates obj and queues it for reuse.
func (p *Pool) Release(obj host.Handle) {
	p.q.Put(obj)
}

// Allocate makes one load attempt per missing object until minCount could
// be queued. Failed loads are skipped; every success is queued. It returns
// how many objects it created together with the joined load failures. A
// cancelled ctx ends the attempts early.
func (p *Pool) Allocate(ctx context.Context, minCount int) (created int, err error) {
	ctx, span := observability.StartPoolSpan(ctx, "asset.allocate", p.name)
	defer func() {
		span.SetAttributes(attribute.Int("pool.created", created))
		observability.EndSpan(span, err)
	}()

	var failures []error
	for attempts := minCount - p.q.Len(); attempts > 0; attempts-- {
		obj, loadErr := p.create(ctx)
		if loadErr != nil {
			failures = append(failures, loadErr)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		p.q.Stock(obj)
		created++
	}

	if created > 0 {
		p.logger.Debug("allocated instances", zap.Int("created", created), zap.Int("idle", p.q.Len()))
	}
	return created, stderrors.Join(failures...)
}

// Prune destroys idle objects, oldest first, until at most maxCount remain,
// and returns how many live objects it destroyed.
func (p *Pool) Prune(maxCount int) int {
	return p.q.Prune(maxCount)
}

// Clear destroys every idle object.
func (p *Pool) Clear() {
	p.q.Prune(0)
}

// Close clears the pool and removes it from its directory.
func (p *Pool) Close() {
	p.q.Close()
}

// Len returns the number of queued objects.
func (p *Pool) Len() int {
	return p.q.Len()
}

// Stats returns a copy of the pool counters.
func (p *Pool) Stats() instance.Stats {
	return p.q.Stats()
}

func (p *Pool) create(ctx context.Context) (obj host.Handle, err error) {
	ctx, span := observability.StartPoolSpan(ctx, "asset.load", p.name)
	defer func() {
		observability.EndSpan(span, err)
	}()

	if p.frames != nil {
		if err = p.frames.NextFrame(ctx); err != nil {
			return 0, p.fail(ctx, err)
		}
	}

	start := time.Now()
	obj, err = p.loader.Load(ctx)
	if err != nil {
		if obj.Valid() && p.host.Alive(obj) {
			p.q.Discard(obj)
		}
		return 0, p.fail(ctx, err)
	}
	if !obj.Valid() || !p.host.Alive(obj) {
		return 0, p.fail(ctx, errors.New(errors.ErrorTypeCreation, "loader produced no object"))
	}

	p.q.Created(obj, time.Since(start))
	return obj, nil
}

func (p *Pool) fail(ctx context.Context, cause error) error {
	p.q.Failed()

	var err *errors.Error
	if ctx.Err() != nil {
		err = errors.Wrap(cause, errors.ErrorTypeCancelled, "asset load cancelled")
	} else {
		err = errors.Wrap(cause, errors.ErrorTypeCreation, "asset load failed")
	}
	err = err.WithDetail("pool", p.name)

	logger.WithContext(ctx, p.logger).Warn("asset load failed", zap.Error(err))
	return err
}

func (p *Pool) destroy(obj host.Handle) {
	if p.releaser != nil && p.releaser.ReleaseInstance(obj) {
		return
	}
	host.DestroyNow(p.host, obj)
}
