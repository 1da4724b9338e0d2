package strips

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anoixa/comic-tracker/database"
	"github.com/anoixa/comic-tracker/database/models"
	"github.com/anoixa/comic-tracker/internal/errdefs"
)

// Repository strip 仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的 strip 仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// Create 插入 strip，(comic_id, checksum) 冲突时返回唯一约束错误
func (r *Repository) Create(ctx context.Context, strip *models.Strip) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(strip).Error
}

// GetByID 通过 ID 获取 strip
func (r *Repository) GetByID(ctx context.Context, id uint) (*models.Strip, error) {
	var strip models.Strip
	if err := r.db.WithContext(ctx).First(&strip, id).Error; err != nil {
		return nil, err
	}
	return &strip, nil
}

// GetByChecksum 查找同一漫画下校验和相同的 strip
func (r *Repository) GetByChecksum(ctx context.Context, comicID uint, checksum string) (*models.Strip, error) {
	var strip models.Strip
	err := r.db.WithContext(ctx).
		Where("comic_id = ? AND checksum = ?", comicID, checksum).
		First(&strip).Error
	if err != nil {
		return nil, err
	}
	return &strip, nil
}

// CountReleases 统计引用该 strip 的 release 数量
func (r *Repository) CountReleases(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Release{}).Where("strip_id = ?", id).Count(&count).Error
	return count, err
}

// DeleteUnreferenced 以单条条件 DELETE 删除无引用的 strip，返回被删除的记录
// 并发登记的 release 会使删除影响 0 行或触发外键约束，两者都报告为引用完整性错误
func (r *Repository) DeleteUnreferenced(ctx context.Context, id uint) (*models.Strip, error) {
	var strip models.Strip
	err := r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&strip, id).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).
			Where("NOT EXISTS (SELECT 1 FROM releases WHERE releases.strip_id = ?)", id).
			Delete(&models.Strip{})
		if res.Error != nil {
			return referencedError(id, res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}

		var refs int64
		if err := tx.Model(&models.Release{}).Where("strip_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		return &errdefs.IntegrityError{Entity: "strip", ID: id, References: refs}
	})
	if err != nil {
		return nil, err
	}
	return &strip, nil
}

// referencedError 把外键冲突转换为引用完整性错误
func referencedError(id uint, err error) error {
	if database.IsForeignKeyViolation(err) {
		return &errdefs.IntegrityError{Entity: "strip", ID: id}
	}
	return err
}

// ListUnreferenced 返回没有任何 release 引用的 strip
func (r *Repository) ListUnreferenced(ctx context.Context, limit int) ([]*models.Strip, error) {
	var strips []*models.Strip

	db := r.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM releases WHERE releases.strip_id = strips.id)").
		Order("id ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}

	err := db.Find(&strips).Error
	return strips, err
}

// StoragePaths 返回指定存储中已登记的全部路径
func (r *Repository) StoragePaths(ctx context.Context, storageName string) (map[string]struct{}, error) {
	var paths []string
	err := r.db.WithContext(ctx).Model(&models.Strip{}).
		Where("storage = ?", storageName).
		Pluck("storage_path", &paths).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		result[p] = struct{}{}
	}
	return result, nil
}
