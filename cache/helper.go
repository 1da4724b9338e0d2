package cache

import (
	"context"
	"math/rand"
	"strconv"
	"time"
)

const (
	// DefaultStatusReportExpiration 状态报表缓存过期时间
	DefaultStatusReportExpiration = time.Minute

	// DefaultStripMetaExpiration strip 元数据缓存过期时间
	DefaultStripMetaExpiration = time.Hour
)

// addJitter 添加随机抖动（最多 +10%），防止缓存雪崩
func addJitter(duration time.Duration) time.Duration {
	if duration < 10 {
		return duration
	}
	return duration + time.Duration(rand.Int63n(int64(duration)/10))
}

// HelperConfig 缓存辅助工具配置
type HelperConfig struct {
	StatusReportTTL time.Duration
	StripMetaTTL    time.Duration
}

// DefaultHelperConfig 返回默认配置
func DefaultHelperConfig() HelperConfig {
	return HelperConfig{
		StatusReportTTL: DefaultStatusReportExpiration,
		StripMetaTTL:    DefaultStripMetaExpiration,
	}
}

// Helper 缓存辅助工具，provider 为 nil 时所有操作退化为未命中
type Helper struct {
	provider Provider
	config   HelperConfig
	now      func() time.Time
}

// NewHelper 创建新的缓存辅助工具
func NewHelper(provider Provider, cfg ...HelperConfig) *Helper {
	c := DefaultHelperConfig()
	if len(cfg) > 0 {
		c = cfg[0]
	}
	return &Helper{provider: provider, config: c, now: time.Now}
}

// Enabled 是否配置了缓存
func (h *Helper) Enabled() bool {
	return h.provider != nil
}

// statusVersion 获取报表版本号
// 版本号缺失（首次启动或被逐出）时以当前纳秒时间戳初始化，避免回到旧版本读到过期报表
func (h *Helper) statusVersion(ctx context.Context) int64 {
	key := StatusVersion.Build()
	var version int64
	if err := h.provider.Get(ctx, key, &version); err == nil {
		return version
	}

	version = h.now().UnixNano()
	_ = h.provider.Set(ctx, key, version, 0)
	return version
}

// StatusReportKey 当前版本下的报表缓存键，读写同一份报表时应复用同一个键
func (h *Helper) StatusReportKey(ctx context.Context, days int, today string) string {
	if h.provider == nil {
		return ""
	}
	version := h.statusVersion(ctx)
	return StatusReport.Build("v"+strconv.FormatInt(version, 10), "days", strconv.Itoa(days), today)
}

// CacheStatusReport 缓存状态报表
func (h *Helper) CacheStatusReport(ctx context.Context, days int, today string, data interface{}) error {
	return h.CacheStatusReportAt(ctx, h.StatusReportKey(ctx, days, today), data)
}

// CacheStatusReportAt 按已解析的键缓存状态报表
func (h *Helper) CacheStatusReportAt(ctx context.Context, key string, data interface{}) error {
	if h.provider == nil || key == "" {
		return nil
	}
	return h.provider.Set(ctx, key, data, addJitter(h.config.StatusReportTTL))
}

// GetCachedStatusReport 获取缓存的状态报表
func (h *Helper) GetCachedStatusReport(ctx context.Context, days int, today string, dest interface{}) error {
	return h.GetCachedStatusReportAt(ctx, h.StatusReportKey(ctx, days, today), dest)
}

// GetCachedStatusReportAt 按已解析的键读取状态报表
func (h *Helper) GetCachedStatusReportAt(ctx context.Context, key string, dest interface{}) error {
	if h.provider == nil || key == "" {
		return ErrCacheMiss
	}
	return h.provider.Get(ctx, key, dest)
}

// InvalidateStatusReports 递增版本号使所有报表缓存失效，旧版本条目自然过期
func (h *Helper) InvalidateStatusReports(ctx context.Context) error {
	if h.provider == nil {
		return nil
	}

	next := h.statusVersion(ctx) + 1
	if now := h.now().UnixNano(); now > next {
		next = now
	}
	return h.provider.Set(ctx, StatusVersion.Build(), next, 0)
}

// CacheStripMeta 缓存 strip 元数据
func (h *Helper) CacheStripMeta(ctx context.Context, stripID uint, data interface{}) error {
	if h.provider == nil {
		return nil
	}
	return h.provider.Set(ctx, StripMeta.BuildID(stripID), data, addJitter(h.config.StripMetaTTL))
}

// GetCachedStripMeta 获取缓存的 strip 元数据
func (h *Helper) GetCachedStripMeta(ctx context.Context, stripID uint, dest interface{}) error {
	if h.provider == nil {
		return ErrCacheMiss
	}
	return h.provider.Get(ctx, StripMeta.BuildID(stripID), dest)
}

// DeleteCachedStripMeta 删除 strip 元数据缓存
func (h *Helper) DeleteCachedStripMeta(ctx context.Context, stripID uint) error {
	if h.provider == nil {
		return nil
	}
	return h.provider.Delete(ctx, StripMeta.BuildID(stripID))
}
