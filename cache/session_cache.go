// Package cache keeps remember-token lookups out of the database.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "essay-feed:session:"

// SessionCache maps a remember token to the id of its user.
type SessionCache interface {
	Get(ctx context.Context, token string) (uint, bool, error)
	Set(ctx context.Context, token string, userID uint) error
	Delete(ctx context.Context, token string) error
}

type RedisSessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionCache connects to addr and verifies the connection.
func NewRedisSessionCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisSessionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis failed: %w", err)
	}

	return NewRedisSessionCacheWithClient(client, ttl), nil
}

func NewRedisSessionCacheWithClient(client *redis.Client, ttl time.Duration) *RedisSessionCache {
	return &RedisSessionCache{client: client, ttl: ttl}
}

func (c *RedisSessionCache) Get(ctx context.Context, token string) (uint, bool, error) {
	raw, err := c.client.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get session failed: %w", err)
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt session value %q: %w", raw, err)
	}
	return uint(id), true, nil
}

func (c *RedisSessionCache) Set(ctx context.Context, token string, userID uint) error {
	if err := c.client.Set(ctx, sessionKeyPrefix+token, strconv.FormatUint(uint64(userID), 10), c.ttl).Err(); err != nil {
		return fmt.Errorf("set session failed: %w", err)
	}
	return nil
}

func (c *RedisSessionCache) Delete(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session failed: %w", err)
	}
	return nil
}

func (c *RedisSessionCache) Close() error {
	return c.client.Close()
}

// NoopSessionCache never hits; every lookup falls through to the database.
type NoopSessionCache struct{}

func (NoopSessionCache) Get(context.Context, string) (uint, bool, error) { return 0, false, nil }
func (NoopSessionCache) Set(context.Context, string, uint) error         { return nil }
func (NoopSessionCache) Delete(context.Context, string) error            { return nil }

// MemorySessionCache is a process local cache, used in tests and single node setups.
type MemorySessionCache struct {
	mu      sync.RWMutex
	entries map[string]uint
}

func NewMemorySessionCache() *MemorySessionCache {
	return &MemorySessionCache{entries: make(map[string]uint)}
}

func (c *MemorySessionCache) Get(_ context.Context, token string) (uint, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.entries[token]
	return id, ok, nil
}

func (c *MemorySessionCache) Set(_ context.Context, token string, userID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[token] = userID
	return nil
}

func (c *MemorySessionCache) Delete(_ context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, token)
	return nil
}
