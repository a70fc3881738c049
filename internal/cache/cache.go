// Package cache implements the JSON result cache for name checks.
//
// Results are keyed by the SHA-256 digest of the canonical JSON encoding
// of the request payload. Redis is the primary backend; when Redis is
// unreachable at startup, or fails on any later operation, the cache
// permanently degrades to an in-process map for the rest of the session.
// Cache failures are therefore never visible to callers — at worst a
// check is recomputed.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shivansh-labs/namegate/internal/model"
)

// connectTimeout bounds the startup ping so an absent Redis doesn't
// block service start.
const connectTimeout = 1 * time.Second

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Cache stores serialized CheckResults keyed by payload digest.
type Cache struct {
	ttl    time.Duration
	logger *slog.Logger

	mu     sync.Mutex
	rdb    *redis.Client // nil once degraded to memory
	memory map[string]memoryEntry
}

// New connects to Redis at the given URL and verifies the connection
// with a ping. Construction never fails: a bad URL or an unreachable
// server yields a cache already degraded to its in-memory fallback.
func New(ctx context.Context, redisURL string, ttl time.Duration, logger *slog.Logger) *Cache {
	c := &Cache{
		ttl:    ttl,
		logger: logger,
		memory: make(map[string]memoryEntry),
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn("invalid redis URL, using in-memory cache", "url", redisURL, "error", err)
		return c
	}
	opts.DialTimeout = connectTimeout

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis connection failed, falling back to in-memory cache", "error", err)
		_ = rdb.Close()
		return c
	}

	logger.Info("redis cache is connected")
	c.rdb = rdb
	return c
}

// Key computes the cache key for a payload: the hex SHA-256 of its
// canonical JSON encoding. encoding/json emits map keys in sorted order
// and struct fields in declaration order, so equal payloads always hash
// identically.
func Key(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// Get returns the cached result for the payload, or (nil, false) on a
// miss. A Redis error degrades the cache and retries the lookup against
// the in-memory store.
func (c *Cache) Get(ctx context.Context, payload any) (*model.CheckResult, bool) {
	key, err := Key(payload)
	if err != nil {
		return nil, false
	}

	raw, ok := c.fetch(ctx, key)
	if !ok {
		return nil, false
	}

	var result model.CheckResult
	if err := json.Unmarshal(raw, &result); err != nil {
		c.logger.Warn("cache entry is not a valid result, ignoring", "key", key, "error", err)
		return nil, false
	}
	return &result, true
}

// Set stores the result for the payload with the configured TTL.
// Failures are logged, never returned.
func (c *Cache) Set(ctx context.Context, payload any, result *model.CheckResult) {
	key, err := Key(payload)
	if err != nil {
		return
	}
	value, err := json.Marshal(result)
	if err != nil {
		return
	}

	c.mu.Lock()
	rdb := c.rdb
	c.mu.Unlock()

	if rdb != nil {
		if err := rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
			c.logger.Error("redis SET failed, disabling redis for this session", "error", err)
			c.degrade()
		} else {
			return
		}
	}

	c.mu.Lock()
	c.memory[key] = memoryEntry{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// InMemory reports whether the cache is currently running on the
// in-process fallback. Exposed for the health endpoint.
func (c *Cache) InMemory() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rdb == nil
}

// Close releases the Redis connection, if any.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

func (c *Cache) fetch(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	rdb := c.rdb
	c.mu.Unlock()

	if rdb != nil {
		raw, err := rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			return raw, true
		case err == redis.Nil:
			return nil, false
		default:
			c.logger.Error("redis GET failed, disabling redis for this session", "error", err)
			c.degrade()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.memory[key]
	if !ok {
		return nil, false
	}
	// TTL is enforced lazily; expired entries are dropped on access.
	if time.Now().After(entry.expiresAt) {
		delete(c.memory, key)
		return nil, false
	}
	return entry.value, true
}

func (c *Cache) degrade() {
	c.mu.Lock()
	if c.rdb != nil {
		_ = c.rdb.Close()
		c.rdb = nil
	}
	c.mu.Unlock()
}
