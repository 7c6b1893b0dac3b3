package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheService_SetGet(t *testing.T) {
	cache := NewCacheService()

	cache.Set("k", 42, time.Minute)

	value, found := cache.Get("k")
	require.True(t, found)
	assert.Equal(t, 42, value)

	_, found = cache.Get("missing")
	assert.False(t, found)
}

func TestCacheService_Expiry(t *testing.T) {
	cache := NewCacheService()

	cache.Set("k", "v", -time.Second)

	_, found := cache.Get("k")
	assert.False(t, found)
}

func TestCacheService_InvalidateByPrefix(t *testing.T) {
	cache := NewCacheService()

	cache.Set(BalanceCacheKey("0.0.1001"), 10.0, time.Minute)
	cache.Set(BalanceCacheKey("0.0.1002"), 20.0, time.Minute)
	cache.Set(TokenInfoCacheKey(), "info", time.Minute)

	cache.InvalidateByPrefix("balance:")

	_, found := cache.Get(BalanceCacheKey("0.0.1001"))
	assert.False(t, found)
	_, found = cache.Get(TokenInfoCacheKey())
	assert.True(t, found)
}

func TestCacheService_GetOrSet(t *testing.T) {
	cache := NewCacheService()
	ctx := context.Background()
	calls := 0

	compute := func() (interface{}, error) {
		calls++
		return "computed", nil
	}

	value, err := cache.GetOrSet(ctx, "k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, "computed", value)

	value, err = cache.GetOrSet(ctx, "k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, "computed", value)
	assert.Equal(t, 1, calls)
}

func TestCacheService_GetOrSet_ErrorNotCached(t *testing.T) {
	cache := NewCacheService()
	ctx := context.Background()

	_, err := cache.GetOrSet(ctx, "k", time.Minute, func() (interface{}, error) {
		return nil, errors.New("fetch failed")
	})
	assert.Error(t, err)

	_, found := cache.Get("k")
	assert.False(t, found)
}
