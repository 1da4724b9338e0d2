package releases

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anoixa/comic-tracker/database"
	"github.com/anoixa/comic-tracker/database/models"
)

// Repository release 仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的 release 仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// RangeQuery 区间查询条件，零值表示不限制
type RangeQuery struct {
	ComicID    uint
	From       time.Time
	To         time.Time
	ActiveOnly bool
}

// ComicDate 某漫画的一个发布日期
type ComicDate struct {
	ComicID uint
	PubDate datatypes.Date
}

// Date 返回发布日期（UTC 零点）
func (d ComicDate) Date() time.Time {
	return time.Time(d.PubDate)
}

// Create 插入 release，三元组重复时返回唯一约束错误
func (r *Repository) Create(ctx context.Context, release *models.Release) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(release).Error
}

// GetByID 通过 ID 获取 release（含 comic 和 strip）
func (r *Repository) GetByID(ctx context.Context, id uint) (*models.Release, error) {
	var release models.Release
	err := r.db.WithContext(ctx).Preload("Comic").Preload("Strip").First(&release, id).Error
	if err != nil {
		return nil, err
	}
	return &release, nil
}

// LatestFor 返回 pub_date 最大的 release，无记录时返回 (nil, nil)
func (r *Repository) LatestFor(ctx context.Context, comicID uint) (*models.Release, error) {
	return r.edge(ctx, "comic_id = ?", comicID, "releases.pub_date DESC, releases.id DESC")
}

// FirstFor 返回引用该 strip 的最早 release，无记录时返回 (nil, nil)
func (r *Repository) FirstFor(ctx context.Context, stripID uint) (*models.Release, error) {
	return r.edge(ctx, "strip_id = ?", stripID, "releases.pub_date ASC, releases.id ASC")
}

func (r *Repository) edge(ctx context.Context, cond string, arg interface{}, order string) (*models.Release, error) {
	var release models.Release
	err := r.db.WithContext(ctx).
		Preload("Comic").Preload("Strip").
		Where(cond, arg).
		Order(order).
		First(&release).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &release, nil
}

// InRange 按 (slug, pub_date, strip_id) 升序返回区间内的 release
func (r *Repository) InRange(ctx context.Context, q RangeQuery) ([]*models.Release, error) {
	var releases []*models.Release

	db := r.db.WithContext(ctx).
		Joins("JOIN comics ON comics.id = releases.comic_id").
		Preload("Comic").Preload("Strip")

	if q.ComicID != 0 {
		db = db.Where("releases.comic_id = ?", q.ComicID)
	}
	if !q.From.IsZero() {
		db = db.Where("releases.pub_date >= ?", datatypes.Date(q.From))
	}
	if !q.To.IsZero() {
		db = db.Where("releases.pub_date <= ?", datatypes.Date(q.To))
	}
	if q.ActiveOnly {
		db = db.Where("comics.active = ?", true)
	}

	err := db.Order("comics.slug ASC").
		Order("releases.pub_date ASC").
		Order("releases.strip_id ASC").
		Find(&releases).Error
	return releases, err
}

// DatesSince 返回指定漫画自 since 起的去重发布日期
func (r *Repository) DatesSince(ctx context.Context, comicIDs []uint, since time.Time) ([]ComicDate, error) {
	if len(comicIDs) == 0 {
		return nil, nil
	}

	var rows []ComicDate
	err := r.db.WithContext(ctx).Model(&models.Release{}).
		Distinct("comic_id", "pub_date").
		Where("comic_id IN ? AND pub_date >= ?", comicIDs, datatypes.Date(since)).
		Order("comic_id ASC").Order("pub_date ASC").
		Scan(&rows).Error
	return rows, err
}

// CountByComic 统计漫画的 release 数量
func (r *Repository) CountByComic(ctx context.Context, comicID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Release{}).Where("comic_id = ?", comicID).Count(&count).Error
	return count, err
}

// DeleteResult 删除 release 的结果，OrphanStrip 非空表示 strip 记录已随之删除
type DeleteResult struct {
	Release     *models.Release
	OrphanStrip *models.Strip
}

// Delete 删除 release；若 strip 不再被引用，在同一事务内删除 strip 记录
func (r *Repository) Delete(ctx context.Context, id uint) (*DeleteResult, error) {
	result := &DeleteResult{}

	err := r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		var release models.Release
		if err := tx.First(&release, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Release{}, id).Error; err != nil {
			return err
		}
		result.Release = &release

		var remaining int64
		if err := tx.Model(&models.Release{}).Where("strip_id = ?", release.StripID).Count(&remaining).Error; err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}

		var strip models.Strip
		if err := tx.First(&strip, release.StripID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Strip{}, strip.ID).Error; err != nil {
			return err
		}
		result.OrphanStrip = &strip
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
