package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anoixa/comic-tracker/database/models"
)

// 冲突处理策略
const (
	conflictSkip      = "skip"
	conflictOverwrite = "overwrite"
	conflictError     = "error"
)

// collectionComic collection_comics 关联记录
type collectionComic struct {
	CollectionID uint `gorm:"primaryKey" json:"collection_id"`
	ComicID      uint `gorm:"primaryKey" json:"comic_id"`
}

func (collectionComic) TableName() string { return "collection_comics" }

// dataTable backup、restore 和 migrate 共用的表操作
type dataTable struct {
	name  string
	hasID bool

	// dump 逐行读取全部记录
	dump func(ctx context.Context, db *gorm.DB, fn func(record interface{}) error) (int64, error)
	// load 从 JSONL 读取记录并批量写入，dryRun 时只解码
	load func(ctx context.Context, db *gorm.DB, r io.Reader, batchSize int, onConflict string, dryRun bool) (written, failed int64, err error)
	// copy 从 src 批量复制到 dst
	copy func(ctx context.Context, src, dst *gorm.DB, batchSize int, onConflict string) (written, skipped int64, err error)
}

// dataTables 按外键依赖顺序排列
var dataTables = []dataTable{
	newDataTable[models.Comic]("comics", true),
	newDataTable[models.Strip]("strips", true),
	newDataTable[models.Release]("releases", true),
	newDataTable[models.Collection]("collections", true),
	newDataTable[collectionComic]("collection_comics", false),
}

func tableNames() []string {
	names := make([]string, 0, len(dataTables))
	for _, t := range dataTables {
		names = append(names, t.name)
	}
	return names
}

// selectTables 按依赖顺序返回选中的表，names 为空时返回全部
func selectTables(names []string) ([]dataTable, error) {
	if len(names) == 0 {
		return dataTables, nil
	}
	for _, n := range names {
		if !contains(tableNames(), n) {
			return nil, fmt.Errorf("unknown table: %s (known: %v)", n, tableNames())
		}
	}

	selected := make([]dataTable, 0, len(names))
	for _, t := range dataTables {
		if contains(names, t.name) {
			selected = append(selected, t)
		}
	}
	return selected, nil
}

func newDataTable[T any](name string, hasID bool) dataTable {
	// 纯关联表没有可覆盖的列
	strategy := func(onConflict string) string {
		if !hasID && onConflict == conflictOverwrite {
			return conflictSkip
		}
		return onConflict
	}

	return dataTable{
		name:  name,
		hasID: hasID,
		dump: func(ctx context.Context, db *gorm.DB, fn func(interface{}) error) (int64, error) {
			var count int64
			err := scanRows[T](ctx, db, func(record *T) error {
				count++
				return fn(record)
			})
			return count, err
		},
		load: func(ctx context.Context, db *gorm.DB, r io.Reader, batchSize int, onConflict string, dryRun bool) (int64, int64, error) {
			return loadRows[T](ctx, db, r, batchSize, strategy(onConflict), dryRun)
		},
		copy: func(ctx context.Context, src, dst *gorm.DB, batchSize int, onConflict string) (int64, int64, error) {
			onConflict = strategy(onConflict)
			var written, skipped int64
			batch := make([]T, 0, batchSize)
			flush := func() error {
				if len(batch) == 0 {
					return nil
				}
				n, err := insertRows(dst.WithContext(ctx), batch, onConflict)
				if err != nil {
					return err
				}
				written += n
				skipped += int64(len(batch)) - n
				batch = batch[:0]
				return nil
			}

			err := scanRows[T](ctx, src, func(record *T) error {
				batch = append(batch, *record)
				if len(batch) >= batchSize {
					return flush()
				}
				return nil
			})
			if err == nil {
				err = flush()
			}
			return written, skipped, err
		},
	}
}

// scanRows 使用游标逐行读取，不把整张表载入内存
func scanRows[T any](ctx context.Context, db *gorm.DB, fn func(record *T) error) error {
	rows, err := db.WithContext(ctx).Model(new(T)).Rows()
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var record T
		if err := db.ScanRows(rows, &record); err != nil {
			return err
		}
		if err := fn(&record); err != nil {
			return err
		}
	}
	return rows.Err()
}

// insertRows 写入一批记录，不级联写关联；返回实际写入的行数
func insertRows[T any](db *gorm.DB, rows []T, onConflict string) (int64, error) {
	tx := db.Omit(clause.Associations)
	switch onConflict {
	case conflictSkip:
		tx = tx.Clauses(clause.OnConflict{DoNothing: true})
	case conflictOverwrite:
		tx = tx.Clauses(clause.OnConflict{UpdateAll: true})
	}

	result := tx.CreateInBatches(rows, len(rows))
	if result.Error != nil {
		return 0, result.Error
	}
	if onConflict == conflictOverwrite {
		return int64(len(rows)), nil
	}
	return result.RowsAffected, nil
}

// loadRows 逐行解码 JSONL，坏行计入 failed 后继续
func loadRows[T any](ctx context.Context, db *gorm.DB, r io.Reader, batchSize int, onConflict string, dryRun bool) (int64, int64, error) {
	var written, failed int64
	batch := make([]T, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if dryRun {
			written += int64(len(batch))
		} else if n, err := insertRows(db.WithContext(ctx), batch, onConflict); err != nil {
			log.Printf("Warning: failed to insert batch: %v", err)
			failed += int64(len(batch))
		} else {
			written += n
		}
		batch = batch[:0]
	}

	decoder := json.NewDecoder(r)
	for line := 1; ; line++ {
		var record T
		err := decoder.Decode(&record)
		if err == io.EOF {
			break
		}
		if err != nil {
			// 解码器无法从语法错误中恢复
			if _, ok := err.(*json.SyntaxError); ok {
				flush()
				return written, failed + 1, fmt.Errorf("record %d: %w", line, err)
			}
			log.Printf("Warning: failed to decode record %d: %v", line, err)
			failed++
			continue
		}

		batch = append(batch, record)
		if len(batch) >= batchSize {
			flush()
		}
	}
	flush()

	return written, failed, nil
}

// updateAutoIncrementSequences 还原或迁移写入显式 ID 后，把自增序列推进到最大 ID 之后
func updateAutoIncrementSequences(db *gorm.DB, dbType string, tables []dataTable) int {
	var updated int
	for _, t := range tables {
		if !t.hasID {
			continue
		}

		var maxID uint
		if err := db.Table(t.name).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
			log.Printf("Warning: failed to get max ID for %s: %v", t.name, err)
			continue
		}
		if maxID == 0 {
			continue
		}

		switch dbType {
		case "sqlite", "sqlite3":
			result := db.Exec("UPDATE sqlite_sequence SET seq = ? WHERE name = ?", maxID, t.name)
			if result.Error == nil && result.RowsAffected == 0 {
				result = db.Exec("INSERT INTO sqlite_sequence (name, seq) VALUES (?, ?)", t.name, maxID)
			}
			if result.Error != nil {
				log.Printf("Warning: failed to update sequence for %s: %v", t.name, result.Error)
				continue
			}
		case "postgres", "postgresql":
			sequence := t.name + "_id_seq"
			if err := db.Exec(fmt.Sprintf("ALTER SEQUENCE IF EXISTS %s RESTART WITH %d", sequence, maxID+1)).Error; err != nil {
				log.Printf("Warning: failed to update sequence for %s: %v", t.name, err)
				continue
			}
		}
		updated++
	}
	return updated
}

// contains 检查字符串是否在切片中
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
