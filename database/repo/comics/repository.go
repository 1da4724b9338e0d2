package comics

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/anoixa/comic-tracker/database"
	"github.com/anoixa/comic-tracker/database/models"
	"github.com/anoixa/comic-tracker/internal/errdefs"
)

// Repository 漫画仓库 - 封装所有漫画相关的数据库操作
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的漫画仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// Order 列表排序方式
type Order string

const (
	OrderBySlug Order = "slug"
	OrderByName Order = "name"
)

// ListOptions 列表查询条件
type ListOptions struct {
	ActiveOnly bool
	OrderBy    Order
}

// Create 创建漫画
func (r *Repository) Create(ctx context.Context, comic *models.Comic) error {
	return r.db.WithContext(ctx).Create(comic).Error
}

// GetByID 通过 ID 获取漫画
func (r *Repository) GetByID(ctx context.Context, id uint) (*models.Comic, error) {
	var comic models.Comic
	if err := r.db.WithContext(ctx).First(&comic, id).Error; err != nil {
		return nil, err
	}
	return &comic, nil
}

// GetBySlug 通过 slug 获取漫画
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Comic, error) {
	var comic models.Comic
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&comic).Error; err != nil {
		return nil, err
	}
	return &comic, nil
}

// List 获取漫画列表
func (r *Repository) List(ctx context.Context, opts ListOptions) ([]*models.Comic, error) {
	var comics []*models.Comic

	db := r.db.WithContext(ctx).Model(&models.Comic{})
	if opts.ActiveOnly {
		db = db.Where("active = ?", true)
	}

	switch opts.OrderBy {
	case OrderByName:
		db = db.Order("name ASC").Order("slug ASC")
	default:
		db = db.Order("slug ASC")
	}

	err := db.Find(&comics).Error
	return comics, err
}

// ListActive 按 slug 顺序返回启用的漫画
func (r *Repository) ListActive(ctx context.Context) ([]*models.Comic, error) {
	return r.List(ctx, ListOptions{ActiveOnly: true, OrderBy: OrderBySlug})
}

// Update 保存漫画的全部字段
func (r *Repository) Update(ctx context.Context, comic *models.Comic) error {
	return r.db.WithContext(ctx).Save(comic).Error
}

// SetActive 启用或停用漫画
func (r *Repository) SetActive(ctx context.Context, id uint, active bool) error {
	result := r.db.WithContext(ctx).Model(&models.Comic{}).Where("id = ?", id).Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountReleases 统计漫画的 release 数量
func (r *Repository) CountReleases(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Release{}).Where("comic_id = ?", id).Count(&count).Error
	return count, err
}

// Delete 删除漫画，存在 release 或 strip 时拒绝
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		var comic models.Comic
		if err := tx.First(&comic, id).Error; err != nil {
			return err
		}

		var releases int64
		if err := tx.Model(&models.Release{}).Where("comic_id = ?", id).Count(&releases).Error; err != nil {
			return err
		}
		if releases > 0 {
			return &errdefs.IntegrityError{Entity: "comic", ID: id, References: releases}
		}

		var strips int64
		if err := tx.Model(&models.Strip{}).Where("comic_id = ?", id).Count(&strips).Error; err != nil {
			return err
		}
		if strips > 0 {
			return fmt.Errorf("comic %d still owns %d strip(s): %w", id, strips, errdefs.ErrReferentialIntegrity)
		}

		if err := tx.Exec("DELETE FROM collection_comics WHERE comic_id = ?", id).Error; err != nil {
			return err
		}

		return tx.Delete(&comic).Error
	})
}
