package strips

import (
	"github.com/gin-gonic/gin"

	"github.com/anoixa/comic-tracker/api/common"
)

// DeleteStrip 删除未被引用的 strip
// @Summary      Delete a strip
// @Description  Remove a strip and its file; rejected while any release references it
// @Tags         strips
// @Produce      json
// @Param        id   path      int  true  "Strip ID"
// @Success      200  {object}  common.Response
// @Failure      404  {object}  common.Response  "Strip not found"
// @Failure      409  {object}  common.Response  "Strip is still referenced"
// @Security     ApiKeyAuth
// @Router       /strips/{id} [delete]
func (h *Handler) DeleteStrip(c *gin.Context) {
	id, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	_ = h.cacheHelper.DeleteCachedStripMeta(c.Request.Context(), id)

	common.RespondSuccessMessage(c, "Strip deleted", gin.H{"id": id})
}
