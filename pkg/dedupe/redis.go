package dedupe

import (
	"context"
	"crypto/sha1"
	"encoding/hex"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces dedupe entries so they can coexist with other keys on
// a shared Redis instance.
const keyPrefix = "notify:dedupe:"

// Redis is a dedupe store on a shared Redis instance. Keys are hashed before
// storage, so arbitrarily long dedupe keys stay within Redis key limits and
// never leak caller data into key listings.
type Redis struct {
	client redis.UniversalClient
}

// NewRedis creates a dedupe store backed by client.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

// Remember implements notify.DedupeRepository.
func (r *Redis) Remember(ctx context.Context, key string, ttlSeconds int) error {
	return r.client.Set(ctx, redisKey(key), "1", ttl(ttlSeconds)).Err()
}

// Exists implements notify.DedupeRepository.
func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, redisKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RememberIfAbsent implements notify.AtomicDedupeRepository via SET NX, one
// round trip and race-free across processes.
func (r *Redis) RememberIfAbsent(ctx context.Context, key string, ttlSeconds int) (bool, error) {
	return r.client.SetNX(ctx, redisKey(key), "1", ttl(ttlSeconds)).Result()
}

func redisKey(key string) string {
	sum := sha1.Sum([]byte(key))
	return keyPrefix + hex.EncodeToString(sum[:])
}
