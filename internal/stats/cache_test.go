package stats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheIsSafeWhenDisabled(t *testing.T) {
	cache := NewCache(nil)
	assert.Nil(t, cache)

	// All methods must still be callable; the server runs exactly like
	// this when Redis is turned off.
	ctx := context.Background()
	rows, ok := cache.Get(ctx, 1)
	assert.Nil(t, rows)
	assert.False(t, ok)

	cache.Set(ctx, 1, []Row{{ID: 1}})
	cache.Invalidate(ctx, 1)
}
