package di

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/do/v2"

	"github.com/omarluq/apimgr-sidecar/internal/blobcache"
)

// CacheService wraps the config blob cache backend.
type CacheService struct {
	Cache blobcache.Cache
}

// NewCache creates the blob cache based on server config.
func NewCache(i do.Injector) (*CacheService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cache, err := blobcache.New(ctx, &cfgSvc.Get().Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to create config blob cache: %w", err)
	}

	return &CacheService{Cache: cache}, nil
}

// Shutdown implements do.Shutdowner for graceful cache cleanup.
func (c *CacheService) Shutdown() error {
	if c.Cache != nil {
		return c.Cache.Close()
	}
	return nil
}
