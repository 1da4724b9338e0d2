package stats

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"github.com/anoixa/comic-tracker/database"
	"github.com/anoixa/comic-tracker/database/models"
)

// Repository 概览统计仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的统计仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// Overview 概览统计
type Overview struct {
	ComicTotal      int64 `json:"comic_total"`
	ActiveComics    int64 `json:"active_comics"`
	StripTotal      int64 `json:"strip_total"`
	StorageTotal    int64 `json:"storage_total"`
	ReleaseTotal    int64 `json:"release_total"`
	ReleasesSince   int64 `json:"releases_since"`
	CollectionTotal int64 `json:"collection_total"`
}

// GetOverview 获取概览统计，ReleasesSince 统计 pub_date >= since 的 release
func (r *Repository) GetOverview(ctx context.Context, since time.Time) (*Overview, error) {
	var result Overview
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Comic{}).Count(&result.ComicTotal).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Comic{}).Where("active = ?", true).Count(&result.ActiveComics).Error; err != nil {
		return nil, err
	}

	// strip 数量和存储大小
	var strips struct {
		StripTotal   int64
		StorageTotal int64
	}
	err := db.Model(&models.Strip{}).
		Select("COUNT(*) AS strip_total, COALESCE(SUM(file_size), 0) AS storage_total").
		Scan(&strips).Error
	if err != nil {
		return nil, err
	}
	result.StripTotal = strips.StripTotal
	result.StorageTotal = strips.StorageTotal

	if err := db.Model(&models.Release{}).Count(&result.ReleaseTotal).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Release{}).Where("pub_date >= ?", datatypes.Date(since)).Count(&result.ReleasesSince).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Collection{}).Count(&result.CollectionTotal).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// StorageStat 单个存储后端的 strip 统计
type StorageStat struct {
	Storage string `json:"storage"`
	Count   int64  `json:"count"`
	Size    int64  `json:"size"`
}

// GetStorageStats 按存储后端分组统计 strip
func (r *Repository) GetStorageStats(ctx context.Context) ([]StorageStat, error) {
	var result []StorageStat
	err := r.db.WithContext(ctx).Model(&models.Strip{}).
		Select("storage, COUNT(*) AS count, COALESCE(SUM(file_size), 0) AS size").
		Group("storage").
		Order("storage ASC").
		Scan(&result).Error
	return result, err
}

// DailyStat 某日的 release 数量
type DailyStat struct {
	PubDate datatypes.Date
	Count   int64
}

// GetDailyReleases 统计 pub_date >= since 的每日 release 数量
func (r *Repository) GetDailyReleases(ctx context.Context, since time.Time) ([]DailyStat, error) {
	var result []DailyStat
	err := r.db.WithContext(ctx).Model(&models.Release{}).
		Select("pub_date, COUNT(*) AS count").
		Where("pub_date >= ?", datatypes.Date(since)).
		Group("pub_date").
		Order("pub_date ASC").
		Scan(&result).Error
	return result, err
}
