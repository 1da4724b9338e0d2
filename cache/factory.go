package cache

import (
	"fmt"
	"log"

	"github.com/anoixa/comic-tracker/config"
)

// NewProvider 根据 cache_type 创建缓存提供者
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.CacheType {
	case "", "memory":
		maxCost := cfg.CacheMaxCostMB << 20
		provider, err := NewMemoryCache(MemoryConfig{
			NumCounters: 100000,
			MaxCost:     maxCost,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create memory cache: %w", err)
		}
		log.Printf("[Cache] Using memory cache (max %d MB)", cfg.CacheMaxCostMB)
		return provider, nil

	case "redis":
		provider, err := NewRedisCache(RedisConfig{
			Address:      cfg.CacheRedisAddr,
			Password:     cfg.CacheRedisPassword,
			DB:           cfg.CacheRedisDB,
			PoolSize:     10,
			MinIdleConns: 2,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.CacheRedisAddr, err)
		}
		log.Printf("[Cache] Using redis cache at %s", cfg.CacheRedisAddr)
		return provider, nil

	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}
