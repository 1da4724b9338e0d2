package releases

import (
	"context"

	"github.com/anoixa/comic-tracker/cache"
	"github.com/anoixa/comic-tracker/internal/ingest"
	"github.com/anoixa/comic-tracker/internal/releases"
)

// ReportInvalidator 删除 release 后使状态报表失效
type ReportInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Handler release 处理器
type Handler struct {
	ingest      *ingest.Service
	ledger      *releases.Ledger
	reports     ReportInvalidator
	cacheHelper *cache.Helper
	baseURL     string
	maxSize     int64
}

// NewHandler 创建 release 处理器
func NewHandler(ingestSvc *ingest.Service, ledger *releases.Ledger, reports ReportInvalidator, cacheHelper *cache.Helper, baseURL string, maxSize int64) *Handler {
	if maxSize <= 0 {
		maxSize = ingest.DefaultMaxSize
	}
	if cacheHelper == nil {
		cacheHelper = cache.NewHelper(nil)
	}
	return &Handler{
		ingest:      ingestSvc,
		ledger:      ledger,
		reports:     reports,
		cacheHelper: cacheHelper,
		baseURL:     baseURL,
		maxSize:     maxSize,
	}
}
