package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorUpdatesVectors(t *testing.T) {
	c := NewCollector("collector_test", "instance")

	c.Claim(true)
	c.Claim(true)
	c.Claim(false)
	c.Release()
	c.Created()
	c.Destroyed(3)
	c.Destroyed(0)
	c.Failed()
	c.Idle(5)
	c.ObserveCreation(2 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(Claims.WithLabelValues("collector_test", "instance", ResultHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(Claims.WithLabelValues("collector_test", "instance", ResultMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(Releases.WithLabelValues("collector_test", "instance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(Created.WithLabelValues("collector_test", "instance")))
	assert.Equal(t, 3.0, testutil.ToFloat64(Destroyed.WithLabelValues("collector_test", "instance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(CreationFailures.WithLabelValues("collector_test", "instance")))
	assert.Equal(t, 5.0, testutil.ToFloat64(Idle.WithLabelValues("collector_test", "instance")))
	assert.Equal(t, "collector_test", c.Pool())
	assert.Equal(t, "instance", c.Kind())
}
