package core

import (
	"context"
	"time"

	"github.com/anoixa/comic-tracker/cache"
	"github.com/anoixa/comic-tracker/database"
	"github.com/anoixa/comic-tracker/storage"
)

const healthCheckTimeout = 3 * time.Second

func checkDatabaseHealth(ctx context.Context, provider database.Provider) string {
	if provider == nil {
		return "not initialized"
	}

	db := provider.DB()
	if db == nil {
		return "not initialized"
	}
	sqlDB, err := db.DB()
	if err != nil {
		return "error: " + err.Error()
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

// checkCacheHealth 缓存是可选的，未配置不视为故障
func checkCacheHealth(ctx context.Context, provider cache.Provider) string {
	if provider == nil {
		return "disabled"
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if _, err := provider.Exists(ctx, "health:check"); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func checkStorageHealth(ctx context.Context, storageFactory *storage.Factory) string {
	if storageFactory == nil {
		return "not initialized"
	}

	provider := storageFactory.GetDefault()
	if provider == nil {
		return "error: no default storage provider"
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := provider.Health(ctx); err != nil {
		return "error: " + err.Error()
	}

	return "ok"
}

func healthy(result string) bool {
	return result == "ok" || result == "disabled"
}
