package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/anoixa/comic-tracker/database"
)

// migrateCmd 数据库迁移命令
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tools",
	Long:  `Migrate data from one database to another (e.g., SQLite to PostgreSQL).`,
}

// migrateRunCmd 执行迁移命令
var migrateRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run database migration",
	Long: `Run database migration from source to target database.

Examples:
  # Migrate from SQLite to PostgreSQL
  comic-tracker migrate run --from-sqlite ./data/comics.db --to-postgres "host=localhost user=postgres password=secret dbname=comics port=5432"

  # Migrate with overwrite strategy (replace existing rows with the same primary key)
  comic-tracker migrate run --from-sqlite ./data/comics.db --to-postgres "..." --on-conflict=overwrite

  # Stop on conflict
  comic-tracker migrate run --from-sqlite ./data/comics.db --to-postgres "..." --on-conflict=error`,
	Run: func(cmd *cobra.Command, args []string) {
		var opts migrateOptions
		opts.fromType, _ = cmd.Flags().GetString("from-type")
		opts.toType, _ = cmd.Flags().GetString("to-type")
		opts.fromDSN, _ = cmd.Flags().GetString("from-dsn")
		opts.toDSN, _ = cmd.Flags().GetString("to-dsn")
		fromSQLite, _ := cmd.Flags().GetString("from-sqlite")
		toPostgres, _ := cmd.Flags().GetString("to-postgres")
		opts.skipConfirm, _ = cmd.Flags().GetBool("yes")
		opts.batchSize, _ = cmd.Flags().GetInt("batch-size")
		opts.onConflict, _ = cmd.Flags().GetString("on-conflict")

		// 处理快捷方式参数
		if fromSQLite != "" {
			opts.fromType = "sqlite"
			opts.fromDSN = fromSQLite
		}
		if toPostgres != "" {
			opts.toType = "postgres"
			opts.toDSN = toPostgres
		}

		if err := runMigration(opts); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateRunCmd)

	migrateRunCmd.Flags().String("from-type", "", "Source database type (sqlite, postgres)")
	migrateRunCmd.Flags().String("to-type", "", "Target database type (sqlite, postgres)")
	migrateRunCmd.Flags().String("from-dsn", "", "Source database DSN (file path for sqlite)")
	migrateRunCmd.Flags().String("to-dsn", "", "Target database DSN (file path for sqlite)")
	migrateRunCmd.Flags().String("from-sqlite", "", "Source SQLite file path (shortcut)")
	migrateRunCmd.Flags().String("to-postgres", "", "Target PostgreSQL connection string (shortcut)")
	migrateRunCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
	migrateRunCmd.Flags().Int("batch-size", 100, "Batch size for data migration")
	migrateRunCmd.Flags().String("on-conflict", conflictSkip, "Conflict resolution strategy: skip (default), overwrite, error")
}

type migrateOptions struct {
	fromType, toType string
	fromDSN, toDSN   string
	skipConfirm      bool
	batchSize        int
	onConflict       string
}

// migrateStats 迁移统计
type migrateStats struct {
	migrated map[string]int64
	skipped  int64
	errors   []string
}

// runMigration 执行数据库迁移
func runMigration(opts migrateOptions) error {
	if err := validateConflict(opts.onConflict); err != nil {
		return err
	}
	if opts.batchSize <= 0 {
		opts.batchSize = 100
	}

	// 验证参数
	if opts.fromType == "" || opts.toType == "" {
		return fmt.Errorf("both --from-type and --to-type are required")
	}
	if opts.fromDSN == "" || opts.toDSN == "" {
		return fmt.Errorf("both --from-dsn and --to-dsn (or shortcuts) are required")
	}
	if opts.fromType == opts.toType && opts.fromDSN == opts.toDSN {
		return fmt.Errorf("source and target databases are the same")
	}

	log.Printf("Migrating from %s to %s", opts.fromType, opts.toType)
	log.Printf("Source: %s", maskDSN(opts.fromDSN))
	log.Printf("Target: %s", maskDSN(opts.toDSN))
	log.Printf("Conflict strategy: %s", opts.onConflict)

	sourceDB, err := openDatabase(opts.fromType, opts.fromDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to source database: %w", err)
	}
	defer func() { _ = closeDB(sourceDB) }()

	targetDB, err := openDatabase(opts.toType, opts.toDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to target database: %w", err)
	}
	defer func() { _ = closeDB(targetDB) }()

	// 确认迁移
	if !opts.skipConfirm {
		fmt.Println("\nWarning: This will migrate all data from source to target database.")
		fmt.Printf("Conflict resolution strategy: %s\n", opts.onConflict)
		fmt.Println("Existing data in target database may be affected.")
		if !confirm() {
			fmt.Println("Migration cancelled.")
			return nil
		}
	}

	stats, err := migrateData(context.Background(), sourceDB, targetDB, opts)
	if stats != nil {
		n := updateAutoIncrementSequences(targetDB, opts.toType, dataTables)
		log.Printf("Updated %d auto-increment sequences", n)
		printMigrateStats(stats)
	}
	if err != nil {
		return err
	}

	if len(stats.errors) > 0 {
		return fmt.Errorf("migration completed with %d errors", len(stats.errors))
	}

	log.Println("Migration completed successfully!")
	return nil
}

// migrateData 建表后按依赖顺序逐表复制
func migrateData(ctx context.Context, sourceDB, targetDB *gorm.DB, opts migrateOptions) (*migrateStats, error) {
	log.Println("Migrating database schema...")
	if err := targetDB.AutoMigrate(database.Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	stats := &migrateStats{migrated: make(map[string]int64)}
	for _, table := range dataTables {
		log.Printf("Migrating %s...", table.name)
		written, skipped, err := table.copy(ctx, sourceDB, targetDB, opts.batchSize, opts.onConflict)
		stats.migrated[table.name] = written
		stats.skipped += skipped
		if err != nil {
			stats.errors = append(stats.errors, fmt.Sprintf("%s migration failed: %v", table.name, err))
			if opts.onConflict == conflictError {
				return stats, err
			}
			continue
		}
		log.Printf("Migrated %d %s (skipped: %d)", written, table.name, skipped)
	}
	return stats, nil
}

// openDatabase 打开数据库连接
func openDatabase(dbType, dsn string) (*gorm.DB, error) {
	silent := logger.Default.LogMode(logger.Silent)

	var db *gorm.DB
	var err error
	switch dbType {
	case "sqlite", "sqlite3":
		db, err = database.OpenSQLite(dsn, silent)
	case "postgres", "postgresql":
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:         silent,
			TranslateError: true,
		})
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// maskDSN 隐藏敏感信息
func maskDSN(dsn string) string {
	if len(dsn) > 50 {
		return dsn[:50] + "..."
	}
	return dsn
}

// printMigrateStats 打印迁移统计
func printMigrateStats(stats *migrateStats) {
	fmt.Println()
	fmt.Println("========================================")
	fmt.Println("       Migration Statistics")
	fmt.Println("========================================")
	for _, name := range tableNames() {
		fmt.Printf("%-18s %d\n", name+":", stats.migrated[name])
	}
	fmt.Printf("%-18s %d\n", "skipped:", stats.skipped)
	fmt.Println("========================================")

	if len(stats.errors) > 0 {
		fmt.Println("\nErrors encountered:")
		for _, err := range stats.errors {
			fmt.Printf("  - %s\n", err)
		}
	}
}
