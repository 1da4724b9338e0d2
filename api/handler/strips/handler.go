package strips

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/anoixa/comic-tracker/cache"
	"github.com/anoixa/comic-tracker/database/models"
	"github.com/anoixa/comic-tracker/internal/strips"
	"github.com/anoixa/comic-tracker/utils"
)

// Handler strip 处理器
type Handler struct {
	store       *strips.Store
	cacheHelper *cache.Helper
	metaGroup   singleflight.Group
}

// NewHandler 创建 strip 处理器
func NewHandler(store *strips.Store, cacheHelper *cache.Helper) *Handler {
	if cacheHelper == nil {
		cacheHelper = cache.NewHelper(nil)
	}
	return &Handler{store: store, cacheHelper: cacheHelper}
}

// fetchMeta 读取 strip 元数据，优先使用缓存
func (h *Handler) fetchMeta(ctx context.Context, id uint) (*models.Strip, error) {
	var cached models.Strip
	if err := h.cacheHelper.GetCachedStripMeta(ctx, id, &cached); err == nil && cached.ID == id {
		return &cached, nil
	}

	v, err, _ := h.metaGroup.Do(cacheKey(id), func() (interface{}, error) {
		ctx := context.WithoutCancel(ctx)
		strip, err := h.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if cacheErr := h.cacheHelper.CacheStripMeta(ctx, id, strip); cacheErr != nil {
			utils.LogIfDevf("[strips] failed to cache meta of %d: %v", id, cacheErr)
		}
		return strip, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Strip), nil
}
