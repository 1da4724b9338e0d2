package status

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/comic-tracker/api/common"
	"github.com/anoixa/comic-tracker/internal/status"
)

// MaxDays 单次报表最多回看的天数
const MaxDays = 366

// Handler 状态报表处理器
type Handler struct {
	svc *status.Service
}

// NewHandler 创建状态报表处理器
func NewHandler(svc *status.Service) *Handler {
	return &Handler{svc: svc}
}

// GetStatus 返回所有启用漫画的发布状态时间线
// @Summary      Release status timeline
// @Description  One row per active comic ordered by slug; cells run from tomorrow back to today-days
// @Tags         status
// @Produce      json
// @Param        days  query     int  false  "Days to look back (default 21)"
// @Success      200   {object}  common.Response{data=status.Report}
// @Failure      400   {object}  common.Response  "Invalid days"
// @Security     ApiKeyAuth
// @Router       /status [get]
func (h *Handler) GetStatus(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxDays {
			common.RespondError(c, http.StatusBadRequest, "days must be an integer between 1 and "+strconv.Itoa(MaxDays))
			return
		}
		days = n
	}

	report, err := h.svc.Report(c.Request.Context(), days)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, report)
}

// RefreshStatus 使缓存的报表失效
// @Summary      Invalidate cached status reports
// @Tags         status
// @Produce      json
// @Success      200  {object}  common.Response
// @Security     ApiKeyAuth
// @Router       /status/refresh [post]
func (h *Handler) RefreshStatus(c *gin.Context) {
	if err := h.svc.Invalidate(c.Request.Context()); err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to invalidate status reports")
		return
	}
	common.RespondSuccessMessage(c, "Status reports invalidated", nil)
}
