package collections

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anoixa/comic-tracker/database"
	"github.com/anoixa/comic-tracker/database/models"
)

// Repository 合集仓库
// collection_comics 的每次变更都在同一事务内重算相关漫画的 number_of_sets
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的合集仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// recomputeSets 重算漫画的合集计数
func recomputeSets(tx *gorm.DB, comicIDs []uint) error {
	if len(comicIDs) == 0 {
		return nil
	}
	return tx.Exec(`UPDATE comics SET number_of_sets = (
		SELECT COUNT(*) FROM collection_comics WHERE collection_comics.comic_id = comics.id
	) WHERE id IN ?`, comicIDs).Error
}

// lockCollection 加锁读取合集，SQLite 下忽略 FOR UPDATE
func lockCollection(tx *gorm.DB, id uint) (*models.Collection, error) {
	var collection models.Collection
	db := tx
	if tx.Dialector.Name() != "sqlite" {
		db = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := db.First(&collection, id).Error; err != nil {
		return nil, err
	}
	return &collection, nil
}

// Create 创建合集
func (r *Repository) Create(ctx context.Context, collection *models.Collection) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(collection).Error
}

// GetByID 获取合集及其漫画
func (r *Repository) GetByID(ctx context.Context, id uint) (*models.Collection, error) {
	var collection models.Collection
	err := r.db.WithContext(ctx).
		Preload("Comics", func(db *gorm.DB) *gorm.DB { return db.Order("comics.slug ASC") }).
		First(&collection, id).Error
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

// List 按名称返回全部合集及其漫画
func (r *Repository) List(ctx context.Context) ([]*models.Collection, error) {
	var collections []*models.Collection
	err := r.db.WithContext(ctx).
		Preload("Comics", func(db *gorm.DB) *gorm.DB { return db.Order("comics.slug ASC") }).
		Order("name ASC").
		Find(&collections).Error
	return collections, err
}

// AddComics 批量把漫画加入合集，已存在的关联忽略
func (r *Repository) AddComics(ctx context.Context, collectionID uint, comicIDs []uint) error {
	if len(comicIDs) == 0 {
		return nil
	}

	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		if _, err := lockCollection(tx, collectionID); err != nil {
			return err
		}

		associations := make([]map[string]interface{}, len(comicIDs))
		for i, id := range comicIDs {
			associations[i] = map[string]interface{}{
				"collection_id": collectionID,
				"comic_id":      id,
			}
		}
		if err := tx.Table("collection_comics").
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(associations).Error; err != nil {
			return fmt.Errorf("failed to add comics to collection %d: %w", collectionID, err)
		}

		return recomputeSets(tx, comicIDs)
	})
}

// RemoveComic 从合集移除漫画
func (r *Repository) RemoveComic(ctx context.Context, collectionID, comicID uint) error {
	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		if _, err := lockCollection(tx, collectionID); err != nil {
			return err
		}

		if err := tx.Exec("DELETE FROM collection_comics WHERE collection_id = ? AND comic_id = ?", collectionID, comicID).Error; err != nil {
			return err
		}
		return recomputeSets(tx, []uint{comicID})
	})
}

// Delete 删除合集并更新成员漫画的计数
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		collection, err := lockCollection(tx, id)
		if err != nil {
			return err
		}

		var comicIDs []uint
		if err := tx.Table("collection_comics").Where("collection_id = ?", id).Pluck("comic_id", &comicIDs).Error; err != nil {
			return err
		}

		if err := tx.Exec("DELETE FROM collection_comics WHERE collection_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(collection).Error; err != nil {
			return fmt.Errorf("failed to delete collection %d: %w", id, err)
		}

		return recomputeSets(tx, comicIDs)
	})
}
