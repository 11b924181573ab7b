// Package metrics provides Prometheus instrumentation for the managed pools.
//
// # Overview
//
// Every managed or asset-backed pool owns a Collector bound to its name and
// kind. The collector updates package-level vectors so a single scrape shows
// claim hit rates, release traffic, idle depth and creation cost across all
// pools in the process.
//
// # Basic Usage
//
//	c := metrics.NewCollector("sparks", "instance")
//	c.Claim(true)        // served from the idle queue
//	c.Created()          // manufactured a new instance
//	c.Idle(queue.Length())
//
// # Metric Types
//
// Counter: claims, releases, creations, destructions, creation failures
// Gauge: idle queue depth
// Histogram: creation latency in seconds
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// ResultHit labels a claim served from the idle queue
	ResultHit = "hit"
	// ResultMiss labels a claim that had to create an instance
	ResultMiss = "miss"
)

var (
	// Claims tracks claims per pool.
	// Labels: pool, kind (instance/asset/effect), result (hit/miss)
	Claims = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respawn_pool_claims_total",
			Help: "Total number of instances claimed from a pool",
		},
		[]string{"pool", "kind", "result"},
	)

	// Releases tracks instances returned to a pool.
	Releases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respawn_pool_releases_total",
			Help: "Total number of instances released back to a pool",
		},
		[]string{"pool", "kind"},
	)

	// Created tracks instances manufactured by a pool.
	Created = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respawn_pool_created_total",
			Help: "Total number of instances created by a pool",
		},
		[]string{"pool", "kind"},
	)

	// Destroyed tracks idle instances destroyed by Prune or Clear.
	Destroyed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respawn_pool_destroyed_total",
			Help: "Total number of idle instances destroyed by a pool",
		},
		[]string{"pool", "kind"},
	)

	// CreationFailures tracks instance creations that produced nothing.
	CreationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respawn_pool_creation_failures_total",
			Help: "Total number of failed instance creations",
		},
		[]string{"pool", "kind"},
	)

	// Idle tracks the current idle queue depth.
	Idle = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "respawn_pool_idle",
			Help: "Current number of idle instances in a pool",
		},
		[]string{"pool", "kind"},
	)

	// CreationLatency tracks how long instance creation takes, including
	// any frames spent waiting for an asset.
	CreationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "respawn_pool_creation_seconds",
			Help:    "Instance creation latency in seconds",
			Buckets: []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 1e-1, 1},
		},
		[]string{"pool", "kind"},
	)
)

// Collector records the metrics of one pool.
type Collector struct {
	pool      string
	kind      string
	hits      prometheus.Counter
	misses    prometheus.Counter
	releases  prometheus.Counter
	created   prometheus.Counter
	destroyed prometheus.Counter
	failures  prometheus.Counter
	idle      prometheus.Gauge
	latency   prometheus.Observer
}

// NewCollector binds the package vectors to a pool name and kind.
func NewCollector(pool, kind string) *Collector {
	return &Collector{
		pool:      pool,
		kind:      kind,
		hits:      Claims.WithLabelValues(pool, kind, ResultHit),
		misses:    Claims.WithLabelValues(pool, kind, ResultMiss),
		releases:  Releases.WithLabelValues(pool, kind),
		created:   Created.WithLabelValues(pool, kind),
		destroyed: Destroyed.WithLabelValues(pool, kind),
		failures:  CreationFailures.WithLabelValues(pool, kind),
		idle:      Idle.WithLabelValues(pool, kind),
		latency:   CreationLatency.WithLabelValues(pool, kind),
	}
}

// Pool returns the pool label.
func (c *Collector) Pool() string {
	return c.pool
}

// Kind returns the kind label.
func (c *Collector) Kind() string {
	return c.kind
}

// Claim records a claim. hit is true when the idle queue served it.
func (c *Collector) Claim(hit bool) {
	if hit {
		c.hits.Inc()
		return
	}
	c.misses.Inc()
}

// Release records a release.
func (c *Collector) Release() {
	c.releases.Inc()
}

// Created records a successful creation.
func (c *Collector) Created() {
	c.created.Inc()
}

// Destroyed records n destroyed idle instances.
func (c *Collector) Destroyed(n int) {
	if n > 0 {
		c.destroyed.Add(float64(n))
	}
}

// Failed records a failed creation.
func (c *Collector) Failed() {
	c.failures.Inc()
}

// Idle sets the idle queue depth.
func (c *Collector) Idle(n int) {
	c.idle.Set(float64(n))
}

// ObserveCreation records how long a creation took.
func (c *Collector) ObserveCreation(d time.Duration) {
	c.latency.Observe(d.Seconds())
}
