package comics

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/comic-tracker/api/common"
	releaseHandler "github.com/anoixa/comic-tracker/api/handler/releases"
	"github.com/anoixa/comic-tracker/internal/releases"
	"github.com/anoixa/comic-tracker/internal/schedule"
	"github.com/anoixa/comic-tracker/utils"
)

type scheduleResponse struct {
	Comic    string            `json:"comic"`
	AsOf     string            `json:"as_of"`
	Since    string            `json:"since"`
	Schedule schedule.Schedule `json:"schedule"`
	Label    string            `json:"label"`
}

// GetComic 获取漫画
// @Summary      Get a comic
// @Tags         comics
// @Produce      json
// @Param        slug  path      string  true  "Comic slug"
// @Success      200   {object}  common.Response{data=models.Comic}
// @Failure      404   {object}  common.Response  "Unknown comic"
// @Security     ApiKeyAuth
// @Router       /comics/{slug} [get]
func (h *Handler) GetComic(c *gin.Context) {
	comic, err := h.registry.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, comic)
}

// GetLatest 获取漫画最近一次发布
// @Summary      Latest release of a comic
// @Tags         comics
// @Produce      json
// @Param        slug  path      string  true  "Comic slug"
// @Success      200   {object}  common.Response{data=releases.View}
// @Failure      404   {object}  common.Response  "Unknown comic or no releases"
// @Security     ApiKeyAuth
// @Router       /comics/{slug}/latest [get]
func (h *Handler) GetLatest(c *gin.Context) {
	ctx := c.Request.Context()
	comic, err := h.registry.Get(ctx, c.Param("slug"))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	latest, err := h.ledger.LatestFor(ctx, comic.ID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	if latest == nil {
		common.RespondError(c, http.StatusNotFound, "Comic has no releases")
		return
	}
	common.RespondSuccess(c, releaseHandler.NewView(latest, h.baseURL))
}

// GetSchedule 推断漫画的发布日
// @Summary      Inferred release weekdays
// @Description  Weekdays (0=Sunday) on which the comic released within the lookback window
// @Tags         comics
// @Produce      json
// @Param        slug  path      string  true  "Comic slug"
// @Success      200   {object}  common.Response{data=scheduleResponse}
// @Failure      404   {object}  common.Response  "Unknown comic"
// @Security     ApiKeyAuth
// @Router       /comics/{slug}/schedule [get]
func (h *Handler) GetSchedule(c *gin.Context) {
	ctx := c.Request.Context()
	comic, err := h.registry.Get(ctx, c.Param("slug"))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	today := h.status.Today()
	window := h.status.DefaultDays()
	sched, err := h.schedules.Infer(ctx, comic.ID, today, window)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, scheduleResponse{
		Comic:    comic.Slug,
		AsOf:     today.Format(utils.DateLayout),
		Since:    h.schedules.Since(today, window).Format(utils.DateLayout),
		Schedule: sched,
		Label:    sched.String(),
	})
}

// ListReleases 按日期区间列出漫画的 release
// @Summary      Releases of a comic
// @Tags         comics
// @Produce      json
// @Param        slug  path      string  true   "Comic slug"
// @Param        from  query     string  false  "First date (yyyy-mm-dd)"
// @Param        to    query     string  false  "Last date (yyyy-mm-dd)"
// @Success      200   {object}  common.Response{data=[]releases.View}
// @Failure      400   {object}  common.Response  "Invalid date"
// @Failure      404   {object}  common.Response  "Unknown comic"
// @Security     ApiKeyAuth
// @Router       /comics/{slug}/releases [get]
func (h *Handler) ListReleases(c *gin.Context) {
	ctx := c.Request.Context()
	comic, err := h.registry.Get(ctx, c.Param("slug"))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	q := releases.Query{ComicID: comic.ID}
	if from := strings.TrimSpace(c.Query("from")); from != "" {
		if q.From, err = utils.ParseDate(from); err != nil {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	if to := strings.TrimSpace(c.Query("to")); to != "" {
		if q.To, err = utils.ParseDate(to); err != nil {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	list, err := h.ledger.InRange(ctx, q)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, releaseHandler.NewViews(list, h.baseURL))
}
