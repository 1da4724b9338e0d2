package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryCache(t *testing.T) *MemoryCache {
	t.Helper()
	c, err := NewMemoryCache(MemoryConfig{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "test_key", "test_value", 10*time.Second))

	var retrieved string
	require.NoError(t, cache.Get(ctx, "test_key", &retrieved))
	assert.Equal(t, "test_value", retrieved)

	exists, err := cache.Exists(ctx, "test_key")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, cache.Delete(ctx, "test_key"))
	err = cache.Get(ctx, "test_key", &retrieved)
	assert.True(t, IsCacheMiss(err))
}

func TestMemoryCacheStruct(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	type row struct {
		Slug  string
		Cells []string
	}
	value := row{Slug: "xkcd", Cells: []string{"scheduled", "fetched"}}

	require.NoError(t, cache.Set(ctx, "struct_key", value, 10*time.Second))

	var retrieved row
	require.NoError(t, cache.Get(ctx, "struct_key", &retrieved))
	assert.Equal(t, value, retrieved)

	// 修改读取结果不影响缓存内容
	retrieved.Cells[0] = "unscheduled"
	var again row
	require.NoError(t, cache.Get(ctx, "struct_key", &again))
	assert.Equal(t, "scheduled", again.Cells[0])
}

func TestCacheMiss(t *testing.T) {
	cache := newTestMemoryCache(t)

	var value string
	err := cache.Get(context.Background(), "nonexistent_key", &value)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.False(t, IsCacheMiss(nil))
}

func TestKeyBuilder(t *testing.T) {
	assert.Equal(t, "status_report:v3:days:21:2021-01-12", StatusReport.Build("v3", "days", "21", "2021-01-12"))
	assert.Equal(t, "strip_meta:42", StripMeta.BuildID(uint(42)))
	assert.Equal(t, "status_version", StatusVersion.Build())
}

func TestHelper_StatusReportInvalidation(t *testing.T) {
	h := NewHelper(newTestMemoryCache(t))
	ctx := context.Background()

	require.NoError(t, h.CacheStatusReport(ctx, 21, "2021-01-12", map[string]int{"rows": 2}))

	var got map[string]int
	require.NoError(t, h.GetCachedStatusReport(ctx, 21, "2021-01-12", &got))
	assert.Equal(t, 2, got["rows"])

	// 不同的窗口或日期是不同的条目
	assert.True(t, IsCacheMiss(h.GetCachedStatusReport(ctx, 14, "2021-01-12", &got)))
	assert.True(t, IsCacheMiss(h.GetCachedStatusReport(ctx, 21, "2021-01-13", &got)))

	require.NoError(t, h.InvalidateStatusReports(ctx))
	assert.True(t, IsCacheMiss(h.GetCachedStatusReport(ctx, 21, "2021-01-12", &got)))
}

func TestHelper_PinnedKeySurvivesInvalidation(t *testing.T) {
	h := NewHelper(newTestMemoryCache(t))
	ctx := context.Background()

	stale := h.StatusReportKey(ctx, 21, "2021-01-12")
	require.NoError(t, h.InvalidateStatusReports(ctx))

	// 失效前开始构建的报表只能写回旧版本
	require.NoError(t, h.CacheStatusReportAt(ctx, stale, "old"))
	var got string
	assert.True(t, IsCacheMiss(h.GetCachedStatusReport(ctx, 21, "2021-01-12", &got)))
	require.NoError(t, h.GetCachedStatusReportAt(ctx, stale, &got))
	assert.Equal(t, "old", got)
}

func TestHelper_VersionIsMonotonic(t *testing.T) {
	h := NewHelper(newTestMemoryCache(t))
	fixed := time.Date(2021, 1, 12, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }
	ctx := context.Background()

	first := h.statusVersion(ctx)
	assert.Equal(t, fixed.UnixNano(), first)

	require.NoError(t, h.InvalidateStatusReports(ctx))
	require.NoError(t, h.InvalidateStatusReports(ctx))
	assert.Equal(t, first+2, h.statusVersion(ctx))
}

func TestHelper_NilProvider(t *testing.T) {
	h := NewHelper(nil)
	ctx := context.Background()

	assert.NoError(t, h.CacheStatusReport(ctx, 21, "2021-01-12", "x"))
	assert.NoError(t, h.InvalidateStatusReports(ctx))
	assert.NoError(t, h.CacheStripMeta(ctx, 1, "x"))
	assert.NoError(t, h.DeleteCachedStripMeta(ctx, 1))

	assert.Empty(t, h.StatusReportKey(ctx, 21, "2021-01-12"))

	var s string
	assert.True(t, IsCacheMiss(h.GetCachedStatusReport(ctx, 21, "2021-01-12", &s)))
	assert.True(t, IsCacheMiss(h.GetCachedStripMeta(ctx, 1, &s)))
}

func TestHelper_StripMeta(t *testing.T) {
	h := NewHelper(newTestMemoryCache(t))
	ctx := context.Background()

	require.NoError(t, h.CacheStripMeta(ctx, 7, map[string]string{"checksum": "abc"}))

	var got map[string]string
	require.NoError(t, h.GetCachedStripMeta(ctx, 7, &got))
	assert.Equal(t, "abc", got["checksum"])

	require.NoError(t, h.DeleteCachedStripMeta(ctx, 7))
	assert.True(t, IsCacheMiss(h.GetCachedStripMeta(ctx, 7, &got)))
}

func TestMemoryCache_ClearAll(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, cache.Set(ctx, "b", 2, time.Minute))
	require.NoError(t, cache.ClearAll(ctx))

	var v int
	assert.True(t, IsCacheMiss(cache.Get(ctx, "a", &v)))
	assert.True(t, IsCacheMiss(cache.Get(ctx, "b", &v)))
}
