package dashboard

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/anoixa/comic-tracker/cache"
	"github.com/anoixa/comic-tracker/database/repo/stats"
)

// mockCache 模拟缓存
type mockCache struct {
	data map[string]interface{}
}

func newMockCache() *mockCache {
	return &mockCache{
		data: make(map[string]interface{}),
	}
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	if val, ok := m.data[key]; ok {
		if resp, ok := val.(*StatsResponse); ok {
			*dest.(*StatsResponse) = *resp
			return nil
		}
	}
	return cache.ErrCacheMiss
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mockCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

func (m *mockCache) Close() error {
	return nil
}

func (m *mockCache) Name() string {
	return "mock"
}

// mockRepository 模拟仓库
type mockRepository struct {
	overview     *stats.Overview
	storageStats []stats.StorageStat
	dailyStats   []stats.DailyStat
	overviewHits int
	since        time.Time
}

func (m *mockRepository) GetOverview(ctx context.Context, since time.Time) (*stats.Overview, error) {
	m.overviewHits++
	m.since = since
	return m.overview, nil
}

func (m *mockRepository) GetStorageStats(ctx context.Context) ([]stats.StorageStat, error) {
	return m.storageStats, nil
}

func (m *mockRepository) GetDailyReleases(ctx context.Context, since time.Time) ([]stats.DailyStat, error) {
	return m.dailyStats, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestService_GetStats(t *testing.T) {
	mockRepo := &mockRepository{
		overview: &stats.Overview{
			ComicTotal:    12,
			ActiveComics:  10,
			StripTotal:    100,
			StorageTotal:  100 << 20,
			ReleaseTotal:  120,
			ReleasesSince: 9,
		},
		storageStats: []stats.StorageStat{
			{Storage: "local", Count: 60, Size: 60 << 20},
			{Storage: "minio", Count: 40, Size: 40 << 20},
		},
		dailyStats: []stats.DailyStat{
			{PubDate: datatypes.Date(date(2021, 1, 11)), Count: 5},
			{PubDate: datatypes.Date(date(2021, 1, 12)), Count: 3},
		},
	}

	svc := NewService(mockRepo, newMockCache())
	svc.now = func() time.Time { return time.Date(2021, 1, 12, 18, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	resp, err := svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}

	if resp.Overview.Comics.Active != 10 {
		t.Errorf("Expected 10 active comics, got %d", resp.Overview.Comics.Active)
	}
	if resp.Overview.Releases.LastWeek != 9 {
		t.Errorf("Expected 9 releases last week, got %d", resp.Overview.Releases.LastWeek)
	}
	if !mockRepo.since.Equal(date(2021, 1, 6)) {
		t.Errorf("Expected last week to start 2021-01-06, got %s", mockRepo.since)
	}
	if resp.Overview.Storage.TotalSizeHuman != "100 MiB" {
		t.Errorf("Expected 100 MiB, got %s", resp.Overview.Storage.TotalSizeHuman)
	}

	if len(resp.StorageStats) != 2 {
		t.Fatalf("Expected 2 storage stats, got %d", len(resp.StorageStats))
	}
	if resp.StorageStats[0].Percentage != 60 {
		t.Errorf("Expected local at 60%%, got %v", resp.StorageStats[0].Percentage)
	}

	last := len(resp.Trend.Data) - 1
	if resp.Trend.Dates[last] != "2021-01-12" || resp.Trend.Data[last] != 3 || resp.Trend.Data[last-1] != 5 {
		t.Errorf("Unexpected trend tail: %v %v", resp.Trend.Dates[last-1:], resp.Trend.Data[last-1:])
	}

	// 第二次读取走缓存
	if _, err := svc.GetStats(ctx); err != nil {
		t.Fatalf("GetStats from cache failed: %v", err)
	}
	if mockRepo.overviewHits != 1 {
		t.Errorf("Expected repository to be queried once, got %d", mockRepo.overviewHits)
	}
}

func TestService_RefreshCache(t *testing.T) {
	mockRepo := &mockRepository{overview: &stats.Overview{}}
	mockCache := newMockCache()
	svc := NewService(mockRepo, mockCache)
	ctx := context.Background()

	if _, err := svc.GetStats(ctx); err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if exists, _ := mockCache.Exists(ctx, cacheKey); !exists {
		t.Error("Cache should exist")
	}

	if err := svc.RefreshCache(ctx); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}
	if exists, _ := mockCache.Exists(ctx, cacheKey); exists {
		t.Error("Cache should be deleted after refresh")
	}

	noCache := NewService(mockRepo, nil)
	if _, err := noCache.GetStats(ctx); err != nil {
		t.Fatalf("GetStats without cache failed: %v", err)
	}
	if err := noCache.RefreshCache(ctx); err != nil {
		t.Fatalf("RefreshCache without cache failed: %v", err)
	}
}

func Test_buildTrendData(t *testing.T) {
	today := date(2021, 3, 1)
	trend := buildTrendData(today, []stats.DailyStat{
		{PubDate: datatypes.Date(date(2021, 2, 28)), Count: 5},
	}, 30)

	if trend.Period != "30d" {
		t.Errorf("Expected period 30d, got %s", trend.Period)
	}
	if len(trend.Dates) != 30 || len(trend.Data) != 30 {
		t.Fatalf("Expected 30 points, got %d/%d", len(trend.Dates), len(trend.Data))
	}
	if trend.Dates[0] != "2021-01-31" {
		t.Errorf("Expected first date 2021-01-31, got %s", trend.Dates[0])
	}
	if trend.Data[28] != 5 || trend.Data[29] != 0 {
		t.Errorf("Unexpected trend tail %v", trend.Data[27:])
	}
}
