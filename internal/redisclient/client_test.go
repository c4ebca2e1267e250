package redisclient

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { rdb.Close() })

	return NewFromRedis(rdb), mr
}

func TestNextProductID_EmptyStartsAtOne(t *testing.T) {
	client, _ := setupTestRedis(t)

	id, err := client.NextProductID(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestNextProductID_Monotonic(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	first, err := client.NextProductID(ctx, 0)
	require.NoError(t, err)
	second, err := client.NextProductID(ctx, first)
	require.NoError(t, err)

	// a lower floor (tail product deleted) never rewinds the sequence
	third, err := client.NextProductID(ctx, first)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, []int64{first, second, third})
}

func TestNextProductID_FloorAboveSequence(t *testing.T) {
	client, _ := setupTestRedis(t)

	id, err := client.NextProductID(context.Background(), 41)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestNextProductID_ConcurrentCallersGetDistinctIDs(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	const callers = 20
	ids := make(chan int64, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := client.NextProductID(ctx, 0)
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, callers)
}

func TestCatalogCache(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	_, err := client.GetCatalog(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)

	gen, err := client.CatalogGeneration(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	stored, err := client.SetCatalog(ctx, gen, []byte(`[{"id":1}]`))
	require.NoError(t, err)
	assert.True(t, stored)

	data, err := client.GetCatalog(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(data))

	ttl := mr.TTL(catalogKey)
	assert.True(t, ttl >= 10*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl <= 11*time.Minute, "TTL should be base + max jitter")

	require.NoError(t, client.InvalidateCatalog(ctx))
	assert.False(t, mr.Exists(catalogKey))

	gen, err = client.CatalogGeneration(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
}

func TestSetCatalog_StaleGenerationIsDropped(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	seen, err := client.CatalogGeneration(ctx)
	require.NoError(t, err)

	// a write lands between the reader's generation check and its cache fill
	require.NoError(t, client.InvalidateCatalog(ctx))

	stored, err := client.SetCatalog(ctx, seen, []byte(`[{"id":1}]`))
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, mr.Exists(catalogKey))

	current, err := client.CatalogGeneration(ctx)
	require.NoError(t, err)
	stored, err = client.SetCatalog(ctx, current, []byte(`[{"id":1},{"id":2}]`))
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestIdempotencyKey(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	_, err := client.GetIdempotencyKey(ctx, "k1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, client.SetIdempotencyKey(ctx, "k1", "order-1", time.Hour))

	value, err := client.GetIdempotencyKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "order-1", value)
}

func TestReserveIdempotencyKey(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	ok, err := client.ReserveIdempotencyKey(ctx, "k1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.ReserveIdempotencyKey(ctx, "k1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = client.GetIdempotencyKey(ctx, "k1")
	assert.ErrorIs(t, err, ErrIdempotencyPending)

	require.NoError(t, client.SetIdempotencyKey(ctx, "k1", "order-1", time.Hour))
	value, err := client.GetIdempotencyKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "order-1", value)

	ok, err = client.ReserveIdempotencyKey(ctx, "k2", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, client.ReleaseIdempotencyKey(ctx, "k2"))

	ok, err = client.ReserveIdempotencyKey(ctx, "k2", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}
