package instance

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/pkg/errors"
	"github.com/ajitpratap0/respawn/pkg/host"
	"github.com/ajitpratap0/respawn/pkg/logger"
)

// Option configures a Pool.
type Option func(*options)

type options struct {
	name     string
	kind     string
	logger   *zap.Logger
	onCreate func(m *Marker)
}

// WithName sets the pool name used in logs and metric labels.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger replaces the pool logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func withKind(kind string) Option {
	return func(o *options) {
		o.kind = kind
	}
}

func withCreateHook(fn func(m *Marker)) Option {
	return func(o *options) {
		o.onCreate = fn
	}
}

// Pool recycles host objects produced by a Source. Released objects are
// reused in FIFO order.
type Pool struct {
	q        *IdleQueue
	host     host.Host
	source   Source
	onCreate func(m *Marker)
}

// NewPool registers a pool in dir that creates objects through source.
func NewPool(dir *Directory, source Source, opts ...Option) (*Pool, error) {
	if dir == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "pool requires a directory")
	}
	if err := source.validate(dir.host); err != nil {
		return nil, err
	}

	o := options{kind: "instance"}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = logger.Get().Named(o.kind)
	}

	p := &Pool{
		host:     dir.host,
		source:   source,
		onCreate: o.onCreate,
	}
	p.q = NewIdleQueue(dir, p, o.name, o.kind, log.With(zap.String("source", source.kind())), nil)
	return p, nil
}

// Claim returns an active object. Idle objects that were destroyed behind
// the pool's back are skipped; when none is left a new object is created.
// Every claimed object is deactivated and reactivated so it restarts its
// host-side activation behaviour. Claim never blocks.
func (p *Pool) Claim(ctx context.Context) (host.Handle, error) {
	if err := p.q.Open(); err != nil {
		return 0, err
	}

	obj, hit := p.q.Take()
	if !hit {
		var err error
		if obj, err = p.create(); err != nil {
			return 0, err
		}
	}
	p.q.Hand(obj, hit)
	return obj, nil
}

// Release deactivates obj and queues it for reuse. The pool does not check
// where obj came from or whether it is already queued. A closed pool
// destroys obj instead.
func (p *Pool) Release(obj host.Handle) {
	p.q.Put(obj)
}

// Allocate creates inactive objects until at least minCount are queued.
// It stops at the first creation failure or when ctx is done.
func (p *Pool) Allocate(ctx context.Context, minCount int) (int, error) {
	created := 0
	for p.q.Len() < minCount {
		if err := ctx.Err(); err != nil {
			return created, errors.Wrap(err, errors.ErrorTypeCancelled, "allocation cancelled")
		}
		obj, err := p.create()
		if err != nil {
			return created, err
		}
		p.q.Stock(obj)
		created++
	}
	if created > 0 {
		p.q.Logger().Debug("allocated instances", zap.Int("created", created), zap.Int("idle", p.q.Len()))
	}
	return created, nil
}

// Prune destroys idle objects, oldest first, until at most maxCount remain.
// Negative values count as zero. Queued objects that were already destroyed
// are dropped without being counted.
func (p *Pool) Prune(maxCount int) int {
	return p.q.Prune(maxCount)
}

// Clear destroys every idle object.
func (p *Pool) Clear() {
	p.q.Prune(0)
}

// Close clears the pool and removes it from its directory. Objects still
// claimed become orphans and are destroyed when released.
func (p *Pool) Close() {
	p.q.Close()
}

// ID returns the pool's id in its directory.
func (p *Pool) ID() PoolID {
	return p.q.ID()
}

// Name returns the pool name.
func (p *Pool) Name() string {
	return p.q.Name()
}

// Len returns the number of queued objects.
func (p *Pool) Len() int {
	return p.q.Len()
}

// Stats returns a copy of the pool counters.
func (p *Pool) Stats() Stats {
	return p.q.Stats()
}

func (p *Pool) create() (host.Handle, error) {
	start := time.Now()
	obj := p.source.create(p.host)
	if !obj.Valid() || !p.host.Alive(obj) {
		p.q.Failed()
		p.q.Logger().Warn("instance source produced no object")
		return 0, errors.New(errors.ErrorTypeCreation, "instance source produced no object").
			WithDetail("pool", p.q.Name())
	}

	m := p.q.Created(obj, time.Since(start))
	if p.onCreate != nil {
		p.onCreate(m)
	}
	return obj, nil
}
