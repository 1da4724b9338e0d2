package releases

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/comic-tracker/api/common"
	"github.com/anoixa/comic-tracker/internal/errdefs"
)

// Delete 删除 release，strip 不再被引用时一并清理
// @Summary      Delete a release
// @Tags         releases
// @Produce      json
// @Param        id   path      int  true  "Release ID"
// @Success      200  {object}  common.Response
// @Failure      404  {object}  common.Response  "Release not found"
// @Security     ApiKeyAuth
// @Router       /releases/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	release, err := h.ledger.Delete(ctx, id)
	if release == nil {
		common.RespondServiceError(c, err)
		return
	}

	if cacheErr := h.reports.Invalidate(ctx); cacheErr != nil {
		log.Printf("[releases] failed to invalidate status reports: %v", cacheErr)
	}
	_ = h.cacheHelper.DeleteCachedStripMeta(ctx, release.StripID)

	// release 已删除，仅文件清理失败
	if err != nil && errors.Is(err, errdefs.ErrStorageFailure) {
		log.Printf("[releases] release %d deleted, strip %d cleanup failed: %v", id, release.StripID, err)
		common.RespondSuccessMessage(c, "Release deleted, strip file cleanup failed", gin.H{"id": id})
		return
	}
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Release deleted", gin.H{"id": id})
}
