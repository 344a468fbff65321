package providers

import "angelupdate/internal/structures"

const fastTier = "fast"

// MetricsCacheProvider wraps the fast tier and increments hit/miss
// counters on every Get call. The shared tier is instrumented inside the
// response cache, where degraded reads are decided.
type MetricsCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *MetricsCacheProvider) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		c.metrics.IncCacheHits(fastTier)
	} else {
		c.metrics.IncCacheMisses(fastTier)
	}
	return val, ok
}

func (c *MetricsCacheProvider) Set(key string, value []byte, ttlSeconds int) {
	c.inner.Set(key, value, ttlSeconds)
}

func (c *MetricsCacheProvider) Del(key string) {
	c.inner.Del(key)
}

func (c *MetricsCacheProvider) Keys() []string {
	return c.inner.Keys()
}

func (c *MetricsCacheProvider) Clear() {
	c.inner.Clear()
}

// NewInstrumentedCacheProvider creates a fast-tier provider wrapped with
// metrics instrumentation. When the cache is disabled, returns the plain
// noopCache without wrapping to avoid counting phantom misses.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if !conf.Cache.Enabled {
		return inner
	}
	return &MetricsCacheProvider{
		inner:   inner,
		metrics: metrics,
	}
}
