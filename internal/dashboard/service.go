package dashboard

import (
	"context"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/anoixa/comic-tracker/cache"
	"github.com/anoixa/comic-tracker/database/repo/stats"
	"github.com/anoixa/comic-tracker/utils"
)

const (
	cacheKey   = "dashboard:stats"
	trendDays  = 30
	recentDays = 7
	defaultTTL = 5 * time.Minute
)

// StatsRepository 统计仓库接口
type StatsRepository interface {
	GetOverview(ctx context.Context, since time.Time) (*stats.Overview, error)
	GetStorageStats(ctx context.Context) ([]stats.StorageStat, error)
	GetDailyReleases(ctx context.Context, since time.Time) ([]stats.DailyStat, error)
}

// Service Dashboard 统计服务
type Service struct {
	repo     StatsRepository
	cache    cache.Provider
	cacheTTL time.Duration
	now      func() time.Time
}

// NewService 创建新的 Dashboard 统计服务，cacheProvider 可为 nil
func NewService(repo StatsRepository, cacheProvider cache.Provider) *Service {
	return &Service{
		repo:     repo,
		cache:    cacheProvider,
		cacheTTL: defaultTTL,
		now:      time.Now,
	}
}

// StatsResponse Dashboard 统计响应
type StatsResponse struct {
	Overview     OverviewStats     `json:"overview"`
	StorageStats []StorageStatItem `json:"storage_stats"`
	Trend        TrendStats        `json:"trend"`
}

// OverviewStats 概览统计
type OverviewStats struct {
	Comics      ComicStats   `json:"comics"`
	Strips      CountStats   `json:"strips"`
	Releases    ReleaseStats `json:"releases"`
	Collections CountStats   `json:"collections"`
	Storage     StorageStats `json:"storage"`
}

// ComicStats 漫画统计
type ComicStats struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

// ReleaseStats release 统计
type ReleaseStats struct {
	Total    int64 `json:"total"`
	LastWeek int64 `json:"last_week"`
}

// CountStats 数量统计
type CountStats struct {
	Total int64 `json:"total"`
}

// StorageStats 存储统计
type StorageStats struct {
	TotalSize      int64  `json:"total_size"`
	TotalSizeHuman string `json:"total_size_human"`
}

// StorageStatItem 单个存储统计
type StorageStatItem struct {
	StorageName string  `json:"storage_name"`
	Count       int64   `json:"count"`
	Size        int64   `json:"size"`
	SizeHuman   string  `json:"size_human"`
	Percentage  float64 `json:"percentage"`
}

// TrendStats 趋势统计
type TrendStats struct {
	Period string   `json:"period"`
	Dates  []string `json:"dates"`
	Data   []int64  `json:"data"`
}

// GetStats 获取 Dashboard 统计数据
func (s *Service) GetStats(ctx context.Context) (*StatsResponse, error) {
	if s.cache != nil {
		var cached StatsResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	today := utils.CivilDate(s.now())

	overview, err := s.repo.GetOverview(ctx, today.AddDate(0, 0, -(recentDays-1)))
	if err != nil {
		return nil, err
	}

	storageStats, err := s.repo.GetStorageStats(ctx)
	if err != nil {
		return nil, err
	}

	dailyStats, err := s.repo.GetDailyReleases(ctx, today.AddDate(0, 0, -(trendDays-1)))
	if err != nil {
		return nil, err
	}

	response := s.buildResponse(today, overview, storageStats, dailyStats)

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, response, s.cacheTTL)
	}
	return response, nil
}

// RefreshCache 刷新统计数据缓存
func (s *Service) RefreshCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, cacheKey)
}

// buildResponse 组装响应数据
func (s *Service) buildResponse(today time.Time, overview *stats.Overview, storageStats []stats.StorageStat, dailyStats []stats.DailyStat) *StatsResponse {
	var totalSize int64
	for _, stat := range storageStats {
		totalSize += stat.Size
	}

	storageItems := make([]StorageStatItem, len(storageStats))
	for i, stat := range storageStats {
		percentage := 0.0
		if totalSize > 0 {
			percentage = float64(stat.Size) / float64(totalSize) * 100
			percentage = math.Round(percentage*100) / 100
		}
		storageItems[i] = StorageStatItem{
			StorageName: stat.Storage,
			Count:       stat.Count,
			Size:        stat.Size,
			SizeHuman:   humanize.IBytes(uint64(stat.Size)),
			Percentage:  percentage,
		}
	}

	return &StatsResponse{
		Overview: OverviewStats{
			Comics: ComicStats{
				Total:  overview.ComicTotal,
				Active: overview.ActiveComics,
			},
			Strips: CountStats{Total: overview.StripTotal},
			Releases: ReleaseStats{
				Total:    overview.ReleaseTotal,
				LastWeek: overview.ReleasesSince,
			},
			Collections: CountStats{Total: overview.CollectionTotal},
			Storage: StorageStats{
				TotalSize:      overview.StorageTotal,
				TotalSizeHuman: humanize.IBytes(uint64(overview.StorageTotal)),
			},
		},
		StorageStats: storageItems,
		Trend:        buildTrendData(today, dailyStats, trendDays),
	}
}

// buildTrendData 构建截至 today 的每日 release 趋势，没有数据的天数补 0
func buildTrendData(today time.Time, daily []stats.DailyStat, days int) TrendStats {
	dates := make([]string, days)
	data := make([]int64, days)

	counts := make(map[string]int64, len(daily))
	for _, stat := range daily {
		counts[time.Time(stat.PubDate).UTC().Format(utils.DateLayout)] = stat.Count
	}

	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, -(days - 1 - i)).Format(utils.DateLayout)
		dates[i] = date
		data[i] = counts[date]
	}

	return TrendStats{
		Period: "30d",
		Dates:  dates,
		Data:   data,
	}
}
