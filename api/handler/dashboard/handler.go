package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/comic-tracker/api/common"
	"github.com/anoixa/comic-tracker/internal/dashboard"
)

// Handler 统计处理器
type Handler struct {
	svc *dashboard.Service
}

// NewHandler 创建新的统计处理器
func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{
		svc: svc,
	}
}

// GetStats 获取统计数据
// @Summary      Tracker statistics
// @Description  Comic, strip and release counts, storage usage and a 30 day release trend
// @Tags         stats
// @Produce      json
// @Success      200  {object}  common.Response{data=dashboard.StatsResponse}
// @Security     ApiKeyAuth
// @Router       /stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context())
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to get stats")
		return
	}

	common.RespondSuccess(c, stats)
}

// RefreshStats 刷新统计缓存
// @Summary      Refresh cached statistics
// @Tags         stats
// @Produce      json
// @Success      200  {object}  common.Response
// @Security     ApiKeyAuth
// @Router       /stats/refresh [post]
func (h *Handler) RefreshStats(c *gin.Context) {
	if err := h.svc.RefreshCache(c.Request.Context()); err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to refresh stats")
		return
	}

	common.RespondSuccessMessage(c, "Stats refreshed successfully", nil)
}

// SetupRoutes 设置统计路由
func (h *Handler) SetupRoutes(router *gin.RouterGroup) {
	stats := router.Group("/stats")
	{
		stats.GET("", h.GetStats)
		stats.POST("/refresh", h.RefreshStats)
	}
}
