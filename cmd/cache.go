package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

// cacheCmd 缓存管理命令
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache management commands",
	Long:  "Manage the shared cache, including status reports and strip metadata.",
}

// cacheClearCmd 清除缓存命令
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cache",
	Long: `Clear the shared cache. By default only cached status reports are invalidated.

The memory cache lives inside the server process; this command only affects a redis cache.`,
	Run: func(cmd *cobra.Command, args []string) {
		all, _ := cmd.Flags().GetBool("all")
		pattern, _ := cmd.Flags().GetString("pattern")

		if err := runCacheClear(all, pattern); err != nil {
			log.Fatalf("Cache clear failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheClearCmd.Flags().Bool("all", false, "Clear all cache")
	cacheClearCmd.Flags().String("pattern", "", "Clear cache keys matching pattern (e.g., 'strip_meta:*')")
}

// runCacheClear 执行缓存清理
func runCacheClear(all bool, pattern string) error {
	container, err := openContainer(true)
	if err != nil {
		return err
	}
	defer func() { _ = container.Close() }()

	provider := container.GetCacheProvider()
	if provider == nil {
		log.Println("Cache is disabled, nothing to clear")
		return nil
	}
	log.Printf("Cache provider: %s", provider.Name())

	ctx := context.Background()
	switch {
	case all:
		log.Println("Clearing all cache...")
		if err := clearAllCache(ctx, provider); err != nil {
			return fmt.Errorf("failed to clear all cache: %w", err)
		}
		log.Println("All cache cleared successfully")
	case pattern != "":
		log.Printf("Clearing cache matching pattern: %s", pattern)
		n, err := clearCacheByPattern(ctx, provider, pattern)
		if err != nil {
			return fmt.Errorf("failed to clear cache by pattern: %w", err)
		}
		log.Printf("Deleted %d keys matching '%s'", n, pattern)
	default:
		log.Println("Invalidating status reports...")
		if err := container.Status.Invalidate(ctx); err != nil {
			return fmt.Errorf("failed to invalidate status reports: %w", err)
		}
		log.Println("Status reports invalidated successfully")
	}

	return nil
}

// clearAllCache 清理所有缓存
func clearAllCache(ctx context.Context, provider interface{}) error {
	type ClearAll interface {
		ClearAll(ctx context.Context) error
	}

	if p, ok := provider.(ClearAll); ok {
		return p.ClearAll(ctx)
	}
	return fmt.Errorf("cache provider does not support bulk clear")
}

// clearCacheByPattern 按模式清理缓存
func clearCacheByPattern(ctx context.Context, provider interface{}, pattern string) (int64, error) {
	type ClearByPattern interface {
		ClearByPattern(ctx context.Context, pattern string) (int64, error)
	}

	if p, ok := provider.(ClearByPattern); ok {
		return p.ClearByPattern(ctx, pattern)
	}
	return 0, fmt.Errorf("cache provider does not support pattern matching")
}
