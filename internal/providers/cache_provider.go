package providers

import (
	"unsafe"

	"github.com/coocood/freecache"

	"angelupdate/internal/structures"
)

// CacheProviderInterface is the fast in-process cache tier. Entries carry
// their own TTL because update responses and diff resolutions expire on
// different schedules.
type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttlSeconds int)
	Del(key string)
	Keys() []string
	Clear()
}

type CacheProvider struct {
	cache *freecache.Cache
}

func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Fast cache tier disabled")
		return &noopCache{}
	}

	sizeBytes := conf.Cache.Size * 1024 * 1024
	logger.Infof(TypeApp, "Fast cache tier initialized: %dMB", conf.Cache.Size)

	return &CacheProvider{
		cache: freecache.NewCache(sizeBytes),
	}
}

// unsafeStringToBytes converts string to []byte without allocation.
// Safe when the result is only read (not modified), which is the case
// for freecache: it copies keys internally.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *CacheProvider) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *CacheProvider) Set(key string, value []byte, ttlSeconds int) {
	_ = c.cache.Set(unsafeStringToBytes(key), value, ttlSeconds)
}

func (c *CacheProvider) Del(key string) {
	c.cache.Del(unsafeStringToBytes(key))
}

// Keys snapshots all live keys. Used only by pattern eviction, which is an
// admin operation, so the full iteration cost is acceptable.
func (c *CacheProvider) Keys() []string {
	var keys []string
	it := c.cache.NewIterator()
	for entry := it.Next(); entry != nil; entry = it.Next() {
		keys = append(keys, string(entry.Key))
	}
	return keys
}

func (c *CacheProvider) Clear() {
	c.cache.Clear()
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool)    { return nil, false }
func (n *noopCache) Set(_ string, _ []byte, _ int)  {}
func (n *noopCache) Del(_ string)                   {}
func (n *noopCache) Keys() []string                 { return nil }
func (n *noopCache) Clear()                         {}
