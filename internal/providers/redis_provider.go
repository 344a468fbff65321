package providers

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"angelupdate/internal/structures"
)

const redisOpTimeout = 2 * time.Second

// RedisProviderInterface is the shared cache tier, visible across process
// instances. Every error is returned to the caller so the response cache
// can degrade to fast-tier-only operation instead of failing requests.
type RedisProviderInterface interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte, ttl time.Duration) error
	DeleteByPattern(pattern string) error
	FlushAll() error
	Ping() bool
	Close() error
}

type RedisProvider struct {
	client *redis.Client
}

func NewRedisProvider(conf *structures.Config, logger Logger) RedisProviderInterface {
	if !conf.Redis.Enabled {
		logger.Infof(TypeApp, "Shared cache tier disabled")
		return &noopRedis{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warnf(TypeApp, "Shared cache tier unreachable at startup: %s", err)
	} else {
		logger.Infof(TypeApp, "Shared cache tier connected: %s", conf.Redis.Addr)
	}

	return &RedisProvider{client: client}
}

func (r *RedisProvider) Get(key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *RedisProvider) Set(key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisProvider) DeleteByPattern(pattern string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisProvider) FlushAll() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return r.client.FlushDB(ctx).Err()
}

func (r *RedisProvider) Ping() bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return r.client.Ping(ctx).Err() == nil
}

func (r *RedisProvider) Close() error {
	return r.client.Close()
}

type noopRedis struct{}

func (n *noopRedis) Get(_ string) ([]byte, bool, error)            { return nil, false, nil }
func (n *noopRedis) Set(_ string, _ []byte, _ time.Duration) error { return nil }
func (n *noopRedis) DeleteByPattern(_ string) error                { return nil }
func (n *noopRedis) FlushAll() error                               { return nil }
func (n *noopRedis) Ping() bool                                    { return false }
func (n *noopRedis) Close() error                                  { return nil }
