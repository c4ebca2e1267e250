package redisclient

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/next_product_id.lua
var nextProductIDScript string

//go:embed scripts/set_catalog.lua
var setCatalogScript string

const (
	productSequenceKey   = "catalog:product_id"
	catalogKey           = "catalog:all"
	catalogGenerationKey = "catalog:generation"
	idempotencyPending   = "pending"
)

// ErrCacheMiss is returned when a cached value is absent
var ErrCacheMiss = errors.New("cache miss")

// ErrIdempotencyPending is returned while another request holds the key
var ErrIdempotencyPending = errors.New("idempotency key pending")

type Client struct {
	rdb          *redis.Client
	nextIDScript *redis.Script
	setCatalog   *redis.Script
	catalogTTL   time.Duration
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewFromRedis(rdb), nil
}

// NewFromRedis wraps an existing connection
func NewFromRedis(rdb *redis.Client) *Client {
	return &Client{
		rdb:          rdb,
		nextIDScript: redis.NewScript(nextProductIDScript),
		setCatalog:   redis.NewScript(setCatalogScript),
		catalogTTL:   10 * time.Minute,
	}
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Ping checks the Redis connection
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// NextProductID atomically advances the product id high-water mark to
// max(current, floor) + 1 and returns it. Deleted ids are never handed out again.
func (c *Client) NextProductID(ctx context.Context, floor int64) (int64, error) {
	result, err := c.nextIDScript.Run(ctx, c.rdb, []string{productSequenceKey}, floor).Result()
	if err != nil {
		return 0, fmt.Errorf("next product id script failed: %w", err)
	}

	id, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected script result type %T", result)
	}

	return id, nil
}

// GetCatalog returns the cached catalog payload
func (c *Client) GetCatalog(ctx context.Context) ([]byte, error) {
	data, err := c.rdb.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

// CatalogGeneration returns the number of invalidations seen so far
func (c *Client) CatalogGeneration(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, catalogGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	return gen, nil
}

// SetCatalog caches the catalog payload with a jittered TTL, but only while
// the generation still equals generation. It reports whether the write happened.
func (c *Client) SetCatalog(ctx context.Context, generation int64, data []byte) (bool, error) {
	ttl := c.catalogTTL + time.Duration(rand.Intn(60))*time.Second
	stored, err := c.setCatalog.Run(ctx, c.rdb,
		[]string{catalogKey, catalogGenerationKey},
		generation, data, ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("set catalog script failed: %w", err)
	}
	return stored == 1, nil
}

// InvalidateCatalog drops the cached catalog and bumps the generation so
// loads that started earlier cannot put their result back.
func (c *Client) InvalidateCatalog(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, catalogGenerationKey)
		pipe.Del(ctx, catalogKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate failed: %w", err)
	}
	return nil
}

// ReserveIdempotencyKey claims key with a pending marker. It returns false
// when the key is already held, either pending or resolved.
func (c *Client) ReserveIdempotencyKey(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("idempotency:%s", key), idempotencyPending, ttl).Result()
}

// ReleaseIdempotencyKey drops a reservation whose request failed
func (c *Client) ReleaseIdempotencyKey(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("idempotency:%s", key)).Err()
}

// SetIdempotencyKey stores an idempotency key with TTL
func (c *Client) SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("idempotency:%s", key), value, ttl).Err()
}

// GetIdempotencyKey returns the value stored for key, or ErrCacheMiss.
// A key reserved but not yet resolved yields ErrIdempotencyPending.
func (c *Client) GetIdempotencyKey(ctx context.Context, key string) (string, error) {
	value, err := c.rdb.Get(ctx, fmt.Sprintf("idempotency:%s", key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	if value == idempotencyPending {
		return "", ErrIdempotencyPending
	}
	return value, nil
}
