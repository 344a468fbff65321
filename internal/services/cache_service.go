package services

import (
	"path"
	"time"

	json "github.com/goccy/go-json"

	"angelupdate/internal/events"
	"angelupdate/internal/models"
	"angelupdate/internal/providers"
	"angelupdate/internal/structures"
)

const sharedTier = "shared"

// CacheServiceInterface is the two-tier response cache: a fast in-process
// tier backed by freecache and a shared tier visible across instances.
// Reads consult fast then shared, reloading the fast tier on a shared hit.
// Writes go to both. Tier failures are never surfaced to callers; caching
// is an optimization, not a correctness dependency.
type CacheServiceInterface interface {
	GetUpdateResponse(key string) (*models.UpdateResponse, bool)
	PutUpdateResponse(key string, resp *models.UpdateResponse)
	GetChangedFiles(key string) ([]string, bool)
	PutChangedFiles(key string, files []string)
	EvictPattern(pattern string)
	EvictAll()
	SharedTierHealthy() bool
}

type CacheService struct {
	fast      providers.CacheProviderInterface
	shared    providers.RedisProviderInterface
	metrics   providers.MetricsProviderInterface
	logger    providers.Logger
	publisher events.PublisherInterface

	responseTTL time.Duration
	diffTTL     time.Duration
}

func NewCacheService(conf *structures.Config, fast providers.CacheProviderInterface, shared providers.RedisProviderInterface, metrics providers.MetricsProviderInterface, logger providers.Logger, publisher events.PublisherInterface) CacheServiceInterface {
	return &CacheService{
		fast:        fast,
		shared:      shared,
		metrics:     metrics,
		logger:      logger,
		publisher:   publisher,
		responseTTL: conf.Update.ResponseTTL,
		diffTTL:     conf.Update.DiffTTL,
	}
}

// UpdateResponseKey builds the composite cache key for a check-update
// response. Region absence is normalized so national and regional entries
// never collide.
func UpdateResponseKey(scope models.RegionScope, version string) string {
	return "update:" + scope.Key() + ":" + version
}

// ChangedFilesKey builds the cache key for a resolved diff.
func ChangedFilesKey(scope models.RegionScope, fromVersion, toVersion string) string {
	return "diff:" + scope.Key() + ":" + fromVersion + ":" + toVersion
}

func (cs *CacheService) GetUpdateResponse(key string) (*models.UpdateResponse, bool) {
	data, ok := cs.lookup(key, cs.responseTTL)
	if !ok {
		return nil, false
	}
	var resp models.UpdateResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		cs.logger.Warnf(providers.TypeApp, "Dropping corrupt cache entry %s: %s", key, err)
		cs.fast.Del(key)
		return nil, false
	}
	return &resp, true
}

func (cs *CacheService) PutUpdateResponse(key string, resp *models.UpdateResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		cs.logger.Errorf(providers.TypeApp, "Failed to encode response for cache key %s: %s", key, err)
		return
	}
	cs.store(key, data, cs.responseTTL)
}

func (cs *CacheService) GetChangedFiles(key string) ([]string, bool) {
	data, ok := cs.lookup(key, cs.diffTTL)
	if !ok {
		return nil, false
	}
	var files []string
	if err := json.Unmarshal(data, &files); err != nil {
		cs.logger.Warnf(providers.TypeApp, "Dropping corrupt cache entry %s: %s", key, err)
		cs.fast.Del(key)
		return nil, false
	}
	return files, true
}

func (cs *CacheService) PutChangedFiles(key string, files []string) {
	data, err := json.Marshal(files)
	if err != nil {
		cs.logger.Errorf(providers.TypeApp, "Failed to encode diff for cache key %s: %s", key, err)
		return
	}
	cs.store(key, data, cs.diffTTL)
}

// lookup implements the read path: fast tier first, then shared tier with a
// write-through reload into the fast tier on hit.
func (cs *CacheService) lookup(key string, ttl time.Duration) ([]byte, bool) {
	if data, ok := cs.fast.Get(key); ok {
		return data, true
	}

	data, ok, err := cs.shared.Get(key)
	if err != nil {
		cs.logger.Warnf(providers.TypeApp, "Shared cache tier read failed for %s: %s", key, err)
		cs.metrics.IncCacheMisses(sharedTier)
		return nil, false
	}
	if !ok {
		cs.metrics.IncCacheMisses(sharedTier)
		return nil, false
	}

	cs.metrics.IncCacheHits(sharedTier)
	cs.fast.Set(key, data, int(ttl.Seconds()))
	return data, true
}

func (cs *CacheService) store(key string, data []byte, ttl time.Duration) {
	cs.fast.Set(key, data, int(ttl.Seconds()))
	if err := cs.shared.Set(key, data, ttl); err != nil {
		cs.logger.Warnf(providers.TypeApp, "Shared cache tier write failed for %s: %s", key, err)
	}
}

// EvictPattern removes entries matching a glob-style pattern from both
// tiers. Shared-tier failures degrade to fast-tier-only eviction.
func (cs *CacheService) EvictPattern(pattern string) {
	for _, key := range cs.fast.Keys() {
		if matched, err := path.Match(pattern, key); err == nil && matched {
			cs.fast.Del(key)
		}
	}
	if err := cs.shared.DeleteByPattern(pattern); err != nil {
		cs.logger.Warnf(providers.TypeApp, "Shared cache tier eviction failed for pattern %s: %s", pattern, err)
	}
	cs.logger.Infof(providers.TypeApp, "Cache evicted for pattern: %s", pattern)
	cs.publisher.CacheCleared(pattern)
}

// EvictAll clears both tiers completely.
func (cs *CacheService) EvictAll() {
	cs.fast.Clear()
	if err := cs.shared.FlushAll(); err != nil {
		cs.logger.Warnf(providers.TypeApp, "Shared cache tier flush failed: %s", err)
	}
	cs.logger.Infof(providers.TypeApp, "All caches evicted")
	cs.publisher.CacheCleared("*")
}

func (cs *CacheService) SharedTierHealthy() bool {
	return cs.shared.Ping()
}
