package cache

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/invoicegen/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(&config.Configuration{Cache: config.CacheConfig{Enabled: true}})

	key := GenerateKey(PrefixPresignedURL, "invoices/inv_1.pdf")
	assert.Equal(t, "presigned_url:v1::invoices/inv_1.pdf", key)

	c.Set(ctx, key, "https://signed", time.Minute)
	got, ok := c.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, "https://signed", got)

	c.DeleteByPrefix(ctx, PrefixPresignedURL)
	_, ok = c.Get(ctx, key)
	assert.False(t, ok)
}

func TestInMemoryCache_Disabled(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(&config.Configuration{})

	c.Set(ctx, "k", "v", time.Minute)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}
