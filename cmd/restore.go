package cmd

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/anoixa/comic-tracker/config"
)

// restoreCmd 数据库还原命令
var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore database from backup archive",
	Long: `Restore database from tar.gz backup archive created by backup command.

Example:
  # Restore from backup file
  comic-tracker restore --input ./backups/backup_20261014_222320.tar.gz

  # Restore with dry-run (preview only)
  comic-tracker restore --input ./backup.tar.gz --dry-run

  # Restore specific tables only
  comic-tracker restore --input ./backup.tar.gz --tables comics,strips,releases

  # Clear existing data before restore
  comic-tracker restore --input ./backup.tar.gz --truncate`,
	Run: func(cmd *cobra.Command, args []string) {
		var opts restoreOptions
		opts.inputFile, _ = cmd.Flags().GetString("input")
		opts.tables, _ = cmd.Flags().GetStringSlice("tables")
		opts.dryRun, _ = cmd.Flags().GetBool("dry-run")
		opts.truncate, _ = cmd.Flags().GetBool("truncate")
		opts.yes, _ = cmd.Flags().GetBool("yes")
		opts.onConflict, _ = cmd.Flags().GetString("on-conflict")
		opts.batchSize, _ = cmd.Flags().GetInt("batch-size")

		if err := runRestore(opts); err != nil {
			log.Fatalf("Restore failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().StringP("input", "i", "", "Input tar.gz backup file path (required)")
	restoreCmd.Flags().StringSliceP("tables", "t", []string{}, "Specific tables to restore (default: all in the archive)")
	restoreCmd.Flags().Bool("dry-run", false, "Preview restore without actually writing to database")
	restoreCmd.Flags().Bool("truncate", false, "Clear existing data before restore")
	restoreCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
	restoreCmd.Flags().String("on-conflict", conflictSkip, "Conflict resolution strategy: skip (default), overwrite, error")
	restoreCmd.Flags().Int("batch-size", 100, "Batch size for inserts")

	_ = restoreCmd.MarkFlagRequired("input")
}

type restoreOptions struct {
	inputFile  string
	tables     []string
	dryRun     bool
	truncate   bool
	yes        bool
	onConflict string
	batchSize  int
}

// restoreStats 还原统计
type restoreStats struct {
	Restored             map[string]int64
	Errors               map[string]int64
	AutoIncrementUpdates int
}

func newRestoreStats() *restoreStats {
	return &restoreStats{
		Restored: make(map[string]int64),
		Errors:   make(map[string]int64),
	}
}

// runRestore 执行还原
func runRestore(opts restoreOptions) error {
	if err := validateConflict(opts.onConflict); err != nil {
		return err
	}
	if opts.batchSize <= 0 {
		opts.batchSize = 100
	}
	if _, err := os.Stat(opts.inputFile); err != nil {
		return fmt.Errorf("backup file not found: %w", err)
	}

	container, err := openContainer(false)
	if err != nil {
		return err
	}
	defer func() { _ = container.Close() }()

	tempDir, err := os.MkdirTemp("", "comic-tracker-restore-")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	log.Printf("Extracting backup: %s", opts.inputFile)
	if err := extractTarGz(opts.inputFile, tempDir); err != nil {
		return fmt.Errorf("failed to extract backup: %w", err)
	}

	metadata, err := readMetadata(filepath.Join(tempDir, "metadata.json"))
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}
	if metadata.Version != backupFormatVersion {
		return fmt.Errorf("unsupported backup format version %q", metadata.Version)
	}

	log.Printf("Backup version: %s, Database: %s, Timestamp: %s",
		metadata.Version, metadata.Database, metadata.Timestamp.Format("2006-01-02 15:04:05"))

	// 确定要还原的表
	names := opts.tables
	if len(names) == 0 {
		names = metadata.Tables
	}
	tables, err := selectTables(names)
	if err != nil {
		return err
	}

	// 确认还原
	if !opts.dryRun && !opts.yes {
		fmt.Println("\nWarning: This will restore data from backup to the current database.")
		if opts.truncate {
			fmt.Println("Existing data will be TRUNCATED.")
		}
		if !confirm() {
			fmt.Println("Restore cancelled.")
			return nil
		}
	}

	db := container.GetDatabaseProvider().DB()
	stats, err := restoreTables(context.Background(), db, tables, tempDir, opts)
	if err != nil {
		return err
	}

	// 更新自增序列
	if !opts.dryRun {
		log.Println("Updating auto-increment sequences...")
		stats.AutoIncrementUpdates = updateAutoIncrementSequences(db, config.Get().DBType, tables)
	}

	printRestoreSummary(stats, opts.dryRun)
	return nil
}

// restoreTables 按依赖顺序还原，truncate 时按逆序先清空
func restoreTables(ctx context.Context, db *gorm.DB, tables []dataTable, dir string, opts restoreOptions) (*restoreStats, error) {
	stats := newRestoreStats()

	if opts.truncate && !opts.dryRun {
		log.Println("Truncating existing data...")
		if err := truncateTables(db, tables); err != nil {
			return nil, fmt.Errorf("failed to truncate tables: %w", err)
		}
	}

	for _, table := range tables {
		path := filepath.Join(dir, table.name+".jsonl")
		file, err := os.Open(path)
		if os.IsNotExist(err) {
			log.Printf("Skipping %s: file not found in backup", table.name)
			continue
		}
		if err != nil {
			return nil, err
		}

		log.Printf("Restoring table: %s", table.name)
		written, failed, err := table.load(ctx, db, file, opts.batchSize, opts.onConflict, opts.dryRun)
		_ = file.Close()
		stats.Restored[table.name] = written
		if failed > 0 {
			stats.Errors[table.name] = failed
		}
		if err != nil {
			log.Printf("Error restoring table %s: %v", table.name, err)
			if opts.onConflict == conflictError {
				return stats, err
			}
		}
		log.Printf("Restored %d records to %s", written, table.name)
	}

	return stats, nil
}

// readMetadata 读取元数据
func readMetadata(path string) (*backupMetadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var metadata backupMetadata
	if err := json.NewDecoder(file).Decode(&metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}

// extractTarGz 解压 tar.gz 文件，拒绝指向目标目录之外的条目
func extractTarGz(archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer func() { _ = gzReader.Close() }()

	tarReader := tar.NewReader(gzReader)
	root := filepath.Clean(destDir) + string(os.PathSeparator)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		targetPath := filepath.Join(destDir, header.Name)
		if !strings.HasPrefix(targetPath, root) {
			return fmt.Errorf("archive entry %q escapes the target directory", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(targetPath, 0750); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(targetPath), 0750); err != nil {
				return err
			}

			outFile, err := os.Create(targetPath)
			if err != nil {
				return err
			}
			if _, err := io.Copy(outFile, tarReader); err != nil {
				_ = outFile.Close()
				return err
			}
			_ = outFile.Close()
		}
	}

	return nil
}

// truncateTables 按依赖逆序清空表数据
func truncateTables(db *gorm.DB, tables []dataTable) error {
	for i := len(tables) - 1; i >= 0; i-- {
		name := tables[i].name
		log.Printf("Truncating table: %s", name)
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", name)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", name, err)
		}
	}
	return nil
}

func validateConflict(strategy string) error {
	switch strategy {
	case conflictSkip, conflictOverwrite, conflictError:
		return nil
	default:
		return fmt.Errorf("invalid on-conflict strategy: %s (must be skip, overwrite, or error)", strategy)
	}
}

func confirm() bool {
	fmt.Print("Do you want to continue? [y/N]: ")
	var response string
	_, _ = fmt.Scanln(&response)
	return response == "y" || response == "Y"
}

// printRestoreSummary 打印还原摘要
func printRestoreSummary(stats *restoreStats, dryRun bool) {
	fmt.Println()
	fmt.Println("========================================")
	if dryRun {
		fmt.Println("       [DRY RUN MODE]")
	}
	fmt.Println("         Restore Summary")
	fmt.Println("========================================")

	if len(stats.Restored) > 0 {
		fmt.Println("Restored records:")
		for _, name := range tableNames() {
			if count, ok := stats.Restored[name]; ok {
				fmt.Printf("  %-18s %d\n", name+":", count)
			}
		}
	}

	if len(stats.Errors) > 0 {
		fmt.Println("\nErrors:")
		for _, name := range tableNames() {
			if count, ok := stats.Errors[name]; ok {
				fmt.Printf("  %-18s %d\n", name+":", count)
			}
		}
	}

	if !dryRun {
		fmt.Printf("\nAuto-increment sequences updated: %d\n", stats.AutoIncrementUpdates)
	}

	fmt.Println("========================================")
}
