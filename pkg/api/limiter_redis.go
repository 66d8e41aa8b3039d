package api

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisTokenBucketScript handles the token bucket algorithm atomically in Redis.
// KEYS[1] = bucket key (e.g. "rate_limit:10.0.0.7")
// ARGV[1] = refill rate (tokens per second)
// ARGV[2] = capacity (max tokens)
// ARGV[3] = cost (tokens to consume)
// ARGV[4] = current unix timestamp (seconds, floating point)
var redisTokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local cost = tonumber(ARGV[3])
local now = tonumber(ARGV[4])

-- Retrieve current state
local state = redis.call("HMGET", key, "tokens", "last_refill")
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

-- Initialize if missing
if not tokens or not last_refill then
    tokens = capacity
    last_refill = now
end

-- Refill
local elapsed = now - last_refill
if elapsed > 0 then
    local added = elapsed * rate
    tokens = tokens + added
    if tokens > capacity then
        tokens = capacity
    end
    last_refill = now
end

-- Consume
local allowed = 0
if tokens >= cost then
    tokens = tokens - cost
    allowed = 1
end

-- Update state (expire in 60s to self-clean)
redis.call("HMSET", key, "tokens", tokens, "last_refill", last_refill)
redis.call("EXPIRE", key, 60)

return {allowed, tokens}
`)

// RedisLimiterStore shares one request budget across engine replicas.
type RedisLimiterStore struct {
	client *redis.Client
	rps    float64
	burst  int
}

// NewRedisLimiterStore creates a distributed limiter store.
func NewRedisLimiterStore(addr string, rps int, burst int) *RedisLimiterStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisLimiterStore{client: rdb, rps: float64(rps), burst: burst}
}

// Allow executes the Lua script to check and update the token bucket.
func (s *RedisLimiterStore) Allow(ctx context.Context, key string) (bool, error) {
	bucket := fmt.Sprintf("rate_limit:%s", key)
	now := float64(time.Now().UnixMicro()) / 1e6

	res, err := redisTokenBucketScript.Run(ctx, s.client, []string{bucket}, s.rps, s.burst, 1, now).Result()
	if err != nil {
		return false, fmt.Errorf("redis limiter error: %w", err)
	}

	values, ok := res.([]any)
	if !ok || len(values) < 1 {
		return false, fmt.Errorf("redis limiter returned unexpected shape %T", res)
	}
	allowed, ok := values[0].(int64)
	if !ok {
		return false, fmt.Errorf("redis limiter returned unexpected value %T", values[0])
	}
	return allowed == 1, nil
}

// Close releases the Redis client.
func (s *RedisLimiterStore) Close() error { return s.client.Close() }
