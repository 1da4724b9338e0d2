package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/anoixa/comic-tracker/internal/app"
	"github.com/anoixa/comic-tracker/internal/errdefs"
	"github.com/anoixa/comic-tracker/internal/strips"
	"github.com/anoixa/comic-tracker/storage"
	"github.com/anoixa/comic-tracker/utils/generator"
)

// cleanCmd 回收无引用的 strip 和存储中的孤儿文件
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Collect unreferenced strips and orphan storage files",
	Long: `Collect unreferenced strips and orphan storage files.
This includes:
  - Delete strips that no release references, together with their files
  - Delete storage files without a corresponding strip record
  - Delete stale temp files left by interrupted writes (local storage)`,
	Run: func(cmd *cobra.Command, args []string) {
		var opts cleanOptions
		opts.dryRun, _ = cmd.Flags().GetBool("dry-run")
		opts.dbOnly, _ = cmd.Flags().GetBool("db-only")
		opts.storageOnly, _ = cmd.Flags().GetBool("storage-only")
		opts.tempAge, _ = cmd.Flags().GetDuration("temp-age")

		if err := runClean(opts); err != nil {
			log.Fatalf("Clean failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().Bool("dry-run", false, "Only show what would be cleaned, don't actually delete")
	cleanCmd.Flags().Bool("db-only", false, "Only collect unreferenced strips")
	cleanCmd.Flags().Bool("storage-only", false, "Only clean orphan and temp storage files")
	cleanCmd.Flags().Duration("temp-age", 24*time.Hour, "Minimum age of temp files to delete")
}

type cleanOptions struct {
	dryRun      bool
	dbOnly      bool
	storageOnly bool
	tempAge     time.Duration
}

// cleanStats 清理统计信息
type cleanStats struct {
	unreferencedStrips int   // 无引用的 strip 数
	deletedStrips      int   // 删除的 strip 数
	orphanFiles        int   // 孤儿文件数
	deletedFiles       int   // 删除的孤儿文件数
	tempFiles          int   // 过期临时文件数
	freedBytes         int64 // 释放的字节数（strip 记录 + 临时文件）
	errors             []string
}

func runClean(opts cleanOptions) error {
	container, err := openContainer(true)
	if err != nil {
		return err
	}
	defer func() { _ = container.Close() }()

	stats := cleanWith(context.Background(), container, opts)
	printCleanStats(stats, opts.dryRun)

	if len(stats.errors) > 0 {
		return fmt.Errorf("encountered %d errors during cleanup", len(stats.errors))
	}
	return nil
}

func cleanWith(ctx context.Context, container *app.Container, opts cleanOptions) *cleanStats {
	stats := &cleanStats{}

	if !opts.storageOnly {
		if err := cleanUnreferencedStrips(ctx, container, stats, opts.dryRun); err != nil {
			stats.errors = append(stats.errors, fmt.Sprintf("collect unreferenced strips failed: %v", err))
		}
	}

	if !opts.dbOnly {
		if err := cleanOrphanStorageFiles(ctx, container, stats, opts.dryRun); err != nil {
			stats.errors = append(stats.errors, fmt.Sprintf("clean orphan storage files failed: %v", err))
		}
		if err := cleanTempFiles(ctx, container, stats, opts); err != nil {
			stats.errors = append(stats.errors, fmt.Sprintf("clean temp files failed: %v", err))
		}
	}

	return stats
}

// cleanUnreferencedStrips 删除没有 release 引用的 strip
// Store.Delete 在同一语句内重新确认无引用，期间被新 release 引用的 strip 会被跳过
func cleanUnreferencedStrips(ctx context.Context, container *app.Container, stats *cleanStats, dryRun bool) error {
	log.Println("Checking for unreferenced strips...")

	unreferenced, err := container.Repos.Strips.ListUnreferenced(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to list unreferenced strips: %w", err)
	}
	stats.unreferencedStrips = len(unreferenced)

	for _, strip := range unreferenced {
		if dryRun {
			log.Printf("[DRY-RUN] Would delete strip: ID=%d, Path=%s", strip.ID, strip.StoragePath)
			stats.freedBytes += strip.FileSize
			continue
		}

		err := container.Strips.Delete(ctx, strip.ID)
		switch {
		case err == nil:
			stats.deletedStrips++
			stats.freedBytes += strip.FileSize
		case errors.Is(err, errdefs.ErrReferentialIntegrity), errors.Is(err, errdefs.ErrNotFound):
			log.Printf("Skipping strip %d: %v", strip.ID, err)
		case errors.Is(err, errdefs.ErrStorageFailure):
			// 记录已删除，文件留给下一轮孤儿文件清理
			stats.deletedStrips++
			stats.errors = append(stats.errors, fmt.Sprintf("strip %d: %v", strip.ID, err))
		default:
			stats.errors = append(stats.errors, fmt.Sprintf("strip %d: %v", strip.ID, err))
		}
	}

	return nil
}

// cleanOrphanStorageFiles 删除默认存储中没有 strip 记录的文件
func cleanOrphanStorageFiles(ctx context.Context, container *app.Container, stats *cleanStats, dryRun bool) error {
	log.Println("Checking for orphan storage files...")

	provider := container.GetStorageFactory().GetDefault()
	walker, ok := provider.(storage.Walker)
	if !ok {
		log.Printf("Storage '%s' does not support orphan file detection", provider.Name())
		return nil
	}

	// strip 记录在文件写入之后创建，所以先枚举文件再读取记录
	var files []string
	if err := walker.Walk(ctx, func(identifier string) error {
		files = append(files, identifier)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to walk storage: %w", err)
	}

	known, err := container.Repos.Strips.StoragePaths(ctx, provider.Name())
	if err != nil {
		return fmt.Errorf("failed to fetch strip paths: %w", err)
	}

	for _, file := range files {
		if _, ok := known[file]; ok {
			continue
		}
		// 不符合 strip 路径布局的文件不是本程序写入的
		if _, checksum, ok := generator.ParseStripPath(file); !ok || !strips.ValidChecksum(checksum) {
			log.Printf("Ignoring foreign file: %s", file)
			continue
		}
		stats.orphanFiles++
		if dryRun {
			log.Printf("[DRY-RUN] Would delete orphan file: %s", file)
			continue
		}
		if err := provider.DeleteWithContext(ctx, file); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			log.Printf("Warning: failed to delete orphan file %s: %v", file, err)
			continue
		}
		stats.deletedFiles++
		log.Printf("Deleted orphan file: %s", file)
	}

	return nil
}

// cleanTempFiles 清理中断写入留下的临时文件，目前只有本地存储支持
func cleanTempFiles(ctx context.Context, container *app.Container, stats *cleanStats, opts cleanOptions) error {
	local, ok := container.GetStorageFactory().GetDefault().(*storage.LocalStorage)
	if !ok {
		return nil
	}

	log.Println("Checking for stale temp files...")
	n, freed, err := local.RemoveStaleTemp(ctx, opts.tempAge, opts.dryRun)
	stats.tempFiles += n
	stats.freedBytes += freed
	return err
}

// printCleanStats 打印清理统计
func printCleanStats(stats *cleanStats, dryRun bool) {
	fmt.Println()
	fmt.Println("========================================")
	if dryRun {
		fmt.Println("           [DRY RUN MODE]")
	}
	fmt.Println("         Clean Statistics")
	fmt.Println("========================================")
	fmt.Printf("Unreferenced strips found:  %d\n", stats.unreferencedStrips)
	fmt.Printf("Strips deleted:             %d\n", stats.deletedStrips)
	fmt.Printf("Orphan storage files found: %d\n", stats.orphanFiles)
	fmt.Printf("Orphan files deleted:       %d\n", stats.deletedFiles)
	fmt.Printf("Stale temp files:           %d\n", stats.tempFiles)
	fmt.Printf("Space reclaimed:            %s\n", humanize.Bytes(uint64(stats.freedBytes)))
	fmt.Println("========================================")

	if len(stats.errors) > 0 {
		fmt.Println("\nErrors encountered:")
		for _, err := range stats.errors {
			fmt.Printf("  - %s\n", err)
		}
	}
}
