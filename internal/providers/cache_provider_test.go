package providers

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"angelupdate/internal/structures"
)

// local mock logger to avoid import cycle with testutil
type providerTestLogger struct{}

func (m *providerTestLogger) Errorf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *providerTestLogger) Warnf(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *providerTestLogger) Debugf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *providerTestLogger) Infof(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *providerTestLogger) Fatalf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *providerTestLogger) Close()                                        {}

func cacheConfig(enabled bool, size int) *structures.Config {
	return &structures.Config{
		Cache: structures.CacheConfig{
			Enabled: enabled,
			Size:    size,
		},
	}
}

func TestCacheProvider_DisabledReturnsNoop(t *testing.T) {
	c := NewCacheProvider(cacheConfig(false, 10), &providerTestLogger{})
	_, ok := c.Get("any")
	assert.False(t, ok)
	assert.IsType(t, &noopCache{}, c)
}

func TestCacheProvider_ZeroSizeReturnsNoop(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 0), &providerTestLogger{})
	assert.IsType(t, &noopCache{}, c)
}

func TestCacheProvider_SetAndGet(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1), &providerTestLogger{})

	c.Set("key1", []byte("value1"), 60)
	val, ok := c.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, []byte("value1"), val)
}

func TestCacheProvider_Miss(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1), &providerTestLogger{})

	val, ok := c.Get("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestCacheProvider_Del(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1), &providerTestLogger{})

	c.Set("key1", []byte("v1"), 60)
	c.Del("key1")
	_, ok := c.Get("key1")
	assert.False(t, ok)
}

func TestCacheProvider_Keys(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1), &providerTestLogger{})

	c.Set("update:FR:national:1.0.0", []byte("a"), 60)
	c.Set("diff:FR:national:a:b", []byte("b"), 60)

	keys := c.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"diff:FR:national:a:b", "update:FR:national:1.0.0"}, keys)
}

func TestCacheProvider_Clear(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1), &providerTestLogger{})

	c.Set("key1", []byte("v1"), 60)
	c.Clear()
	_, ok := c.Get("key1")
	assert.False(t, ok)
	assert.Empty(t, c.Keys())
}

func TestCacheProvider_TTLExpiry(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1), &providerTestLogger{})

	c.Set("key1", []byte("value1"), 1)
	val, ok := c.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, []byte("value1"), val)

	time.Sleep(1100 * time.Millisecond)

	_, ok = c.Get("key1")
	assert.False(t, ok)
}

func TestNoopCache_AlwaysMiss(t *testing.T) {
	c := &noopCache{}
	c.Set("key1", []byte("value1"), 60)

	val, ok := c.Get("key1")
	assert.False(t, ok)
	assert.Nil(t, val)
	assert.Nil(t, c.Keys())
}
