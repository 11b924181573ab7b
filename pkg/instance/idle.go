package instance

import (
	"fmt"
	"time"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/pkg/errors"
	"github.com/ajitpratap0/respawn/pkg/host"
	"github.com/ajitpratap0/respawn/pkg/metrics"
)

// IdleQueue is the bookkeeping shared by every pool of host objects: the
// FIFO of idle objects, the pool's registration in its Directory, its
// counters and its metrics. Pools own one and add a creation strategy on top.
type IdleQueue struct {
	id      PoolID
	name    string
	dir     *Directory
	host    host.Host
	idle    *queue.Queue
	logger  *zap.Logger
	metrics *metrics.Collector
	destroy func(host.Handle)
	stats   Stats
	closed  bool
}

// NewIdleQueue registers owner in dir. An empty name defaults to kind plus
// the pool id. destroy disposes of objects the queue drops; nil means
// host.DestroyNow.
func NewIdleQueue(dir *Directory, owner Owner, name, kind string, log *zap.Logger, destroy func(host.Handle)) *IdleQueue {
	q := &IdleQueue{
		dir:     dir,
		host:    dir.host,
		idle:    queue.New(),
		destroy: destroy,
	}
	if q.destroy == nil {
		q.destroy = func(obj host.Handle) { host.DestroyNow(q.host, obj) }
	}

	q.id = dir.Register(owner)
	q.name = name
	if q.name == "" {
		q.name = fmt.Sprintf("%s-%d", kind, q.id)
	}
	q.logger = log.With(zap.String("pool", q.name))
	q.metrics = metrics.NewCollector(q.name, kind)
	return q
}

// ID returns the pool's id in its directory.
func (q *IdleQueue) ID() PoolID {
	return q.id
}

// Name returns the pool name.
func (q *IdleQueue) Name() string {
	return q.name
}

// Logger returns the pool logger.
func (q *IdleQueue) Logger() *zap.Logger {
	return q.logger
}

// Open returns a closed error once Close has run.
func (q *IdleQueue) Open() error {
	if q.closed {
		return errors.New(errors.ErrorTypeClosed, "pool is closed").WithDetail("pool", q.name)
	}
	return nil
}

// Take dequeues the oldest idle object that is still alive. Objects
// destroyed behind the pool's back are dropped along the way.
func (q *IdleQueue) Take() (host.Handle, bool) {
	for q.idle.Length() > 0 {
		obj := q.idle.Remove().(host.Handle)
		if q.host.Alive(obj) {
			return obj, true
		}
		q.stats.Holes++
		q.dir.Forget(obj)
		q.logger.Debug("skipping destroyed instance", zap.Uint64("handle", uint64(obj)))
	}
	return 0, false
}

// Hand gives obj to the caller: it points obj's marker at this pool,
// restarts its activation and fires the claimed notification.
func (q *IdleQueue) Hand(obj host.Handle, hit bool) {
	m := q.dir.Adopt(obj, q.id)
	q.host.SetActive(obj, false)
	q.host.SetActive(obj, true)

	q.stats.Claims++
	if hit {
		q.stats.Hits++
	}
	q.metrics.Claim(hit)
	q.metrics.Idle(q.idle.Length())

	m.NotifyClaimed()
}

// Put deactivates obj and queues it. Once the queue is closed obj is
// destroyed instead.
func (q *IdleQueue) Put(obj host.Handle) {
	if q.closed {
		q.logger.Debug("release to closed pool, destroying", zap.Uint64("handle", uint64(obj)))
		q.host.SetActive(obj, false)
		q.dir.Forget(obj)
		q.destroy(obj)
		return
	}

	q.host.SetActive(obj, false)
	q.stats.Releases++
	q.metrics.Release()
	if m, ok := q.dir.MarkerOf(obj); ok {
		m.NotifyReleased()
	}
	q.idle.Add(obj)
	q.metrics.Idle(q.idle.Length())
}

// Stock queues a freshly created obj without counting a release.
func (q *IdleQueue) Stock(obj host.Handle) {
	q.host.SetActive(obj, false)
	q.idle.Add(obj)
	q.metrics.Idle(q.idle.Length())
}

// Created records a successful creation that took d and returns obj's
// marker.
func (q *IdleQueue) Created(obj host.Handle, d time.Duration) *Marker {
	q.stats.Created++
	q.metrics.Created()
	q.metrics.ObserveCreation(d)
	q.logger.Debug("instance created", zap.Uint64("handle", uint64(obj)))
	return q.dir.Adopt(obj, q.id)
}

// Failed records a failed creation.
func (q *IdleQueue) Failed() {
	q.stats.Failures++
	q.metrics.Failed()
}

// Discard destroys an object that never made it into the queue.
func (q *IdleQueue) Discard(obj host.Handle) {
	q.dir.Forget(obj)
	q.destroy(obj)
}

// Prune destroys idle objects, oldest first, until at most maxCount remain.
// Negative values count as zero. Queued objects that were already destroyed
// are dropped without being counted.
func (q *IdleQueue) Prune(maxCount int) int {
	if maxCount < 0 {
		maxCount = 0
	}

	pruned := 0
	for q.idle.Length() > maxCount {
		obj := q.idle.Remove().(host.Handle)
		q.dir.Forget(obj)
		if !q.host.Alive(obj) {
			q.stats.Holes++
			continue
		}
		q.destroy(obj)
		pruned++
	}

	q.stats.Destroyed += int64(pruned)
	q.metrics.Destroyed(pruned)
	q.metrics.Idle(q.idle.Length())
	if pruned > 0 {
		q.logger.Debug("pruned idle instances", zap.Int("destroyed", pruned), zap.Int("idle", q.idle.Length()))
	}
	return pruned
}

// Close clears the queue and removes the pool from its directory. Objects
// still claimed become orphans and are destroyed when released.
func (q *IdleQueue) Close() {
	if q.closed {
		return
	}
	q.Prune(0)
	q.dir.Unregister(q.id)
	q.closed = true
	q.logger.Info("pool closed", zap.Any("stats", q.stats))
}

// Len returns the number of queued objects.
func (q *IdleQueue) Len() int {
	return q.idle.Length()
}

// Stats returns a copy of the counters.
func (q *IdleQueue) Stats() Stats {
	return q.stats
}
