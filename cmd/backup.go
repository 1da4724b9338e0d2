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
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/anoixa/comic-tracker/config"
)

// backupCmd 数据库备份命令
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Backup database to JSONL archive",
	Long: `Backup database to JSONL format and pack into tar.gz archive.
Strip files are not included; back up the storage backend separately.

Example:
  # Backup to default file (./backups/backup_YYYYMMDD_HHMMSS.tar.gz)
  comic-tracker backup

  # Backup to specific file
  comic-tracker backup --output ./my-backup.tar.gz

  # Backup specific tables only
  comic-tracker backup --tables comics,collections,collection_comics`,
	Run: func(cmd *cobra.Command, args []string) {
		outputFile, _ := cmd.Flags().GetString("output")
		tables, _ := cmd.Flags().GetStringSlice("tables")
		keepDir, _ := cmd.Flags().GetBool("keep-dir")

		if err := runBackup(outputFile, tables, keepDir); err != nil {
			log.Fatalf("Backup failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.Flags().StringP("output", "o", "", "Output tar.gz file path (default: ./backups/backup_YYYYMMDD_HHMMSS.tar.gz)")
	backupCmd.Flags().StringSliceP("tables", "t", []string{}, "Specific tables to backup (default: all)")
	backupCmd.Flags().Bool("keep-dir", false, "Keep temporary directory after creating archive")
}

// backupFormatVersion 归档格式版本
const backupFormatVersion = "1"

// backupMetadata 备份元数据
type backupMetadata struct {
	Version     string           `json:"version"`
	AppVersion  string           `json:"app_version"`
	Timestamp   time.Time        `json:"timestamp"`
	Database    string           `json:"database"`
	Tables      []string         `json:"tables"`
	RecordCount map[string]int64 `json:"record_count"`
}

// runBackup 执行备份
func runBackup(outputFile string, tables []string, keepDir bool) error {
	selected, err := selectTables(tables)
	if err != nil {
		return err
	}

	container, err := openContainer(false)
	if err != nil {
		return err
	}
	defer func() { _ = container.Close() }()

	if outputFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputFile = filepath.Join("./backups", fmt.Sprintf("backup_%s.tar.gz", timestamp))
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "comic-tracker-backup-")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	if keepDir {
		log.Printf("Keeping temp directory: %s", tempDir)
	} else {
		defer func() { _ = os.RemoveAll(tempDir) }()
	}

	log.Printf("Starting backup to: %s", outputFile)

	metadata, err := dumpTables(context.Background(), container.GetDatabaseProvider().DB(), selected, tempDir)
	if err != nil {
		return err
	}
	metadata.Database = config.Get().DBType

	if err := writeJSONFile(filepath.Join(tempDir, "metadata.json"), metadata); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	// 打包成 tar.gz
	if err := createTarGz(tempDir, outputFile); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	log.Printf("Backup completed successfully: %s", outputFile)
	printBackupSummary(metadata, outputFile)

	return nil
}

// dumpTables 把选中的表写成 <table>.jsonl
// 任何一张表失败都中止整个备份
func dumpTables(ctx context.Context, db *gorm.DB, tables []dataTable, dir string) (*backupMetadata, error) {
	metadata := &backupMetadata{
		Version:     backupFormatVersion,
		AppVersion:  config.Version,
		Timestamp:   time.Now(),
		RecordCount: make(map[string]int64),
	}

	for _, table := range tables {
		count, err := backupTable(ctx, db, table, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to backup table %s: %w", table.name, err)
		}
		metadata.Tables = append(metadata.Tables, table.name)
		metadata.RecordCount[table.name] = count
		log.Printf("Backed up %d records from table: %s", count, table.name)
	}
	return metadata, nil
}

// backupTable 备份单张表到 JSONL 文件
func backupTable(ctx context.Context, db *gorm.DB, table dataTable, dir string) (int64, error) {
	file, err := os.Create(filepath.Join(dir, table.name+".jsonl"))
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	encoder := json.NewEncoder(file)
	count, err := table.dump(ctx, db, func(record interface{}) error {
		return encoder.Encode(record)
	})
	if err != nil {
		return count, err
	}
	return count, file.Sync()
}

// writeJSONFile 写入 JSON 文件
func writeJSONFile(path string, data interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// createTarGz 创建 tar.gz 归档
func createTarGz(sourceDir, targetFile string) error {
	file, err := os.Create(targetFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	gzWriter := gzip.NewWriter(file)
	defer func() { _ = gzWriter.Close() }()

	tarWriter := tar.NewWriter(gzWriter)
	defer func() { _ = tarWriter.Close() }()

	return filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == sourceDir {
			return nil
		}

		header, err := tar.FileInfoHeader(info, info.Name())
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(relPath)

		if err := tarWriter.WriteHeader(header); err != nil {
			return err
		}

		if !info.IsDir() {
			data, err := os.Open(path)
			if err != nil {
				return err
			}
			defer func() { _ = data.Close() }()

			if _, err := io.Copy(tarWriter, data); err != nil {
				return err
			}
		}

		return nil
	})
}

// printBackupSummary 打印备份摘要
func printBackupSummary(metadata *backupMetadata, outputFile string) {
	fmt.Println("\nBackup Summary:")
	fmt.Println("===============")
	fmt.Printf("Version:    %s\n", metadata.Version)
	fmt.Printf("Timestamp:  %s\n", metadata.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("Database:   %s\n", metadata.Database)
	fmt.Printf("Output:     %s\n", outputFile)
	fmt.Println("\nTables backed up:")
	var total int64
	for _, table := range metadata.Tables {
		count := metadata.RecordCount[table]
		total += count
		fmt.Printf("  - %s: %d records\n", table, count)
	}
	fmt.Printf("\nTotal records: %d\n", total)
}
