package comics

import (
	"github.com/gin-gonic/gin"

	"github.com/anoixa/comic-tracker/api/common"
)

// DeactivateComic 停用漫画
// @Summary      Deactivate a comic
// @Description  The comic leaves the status timeline; its history is kept
// @Tags         comics
// @Produce      json
// @Param        slug  path      string  true  "Comic slug"
// @Success      200   {object}  common.Response{data=models.Comic}
// @Failure      404   {object}  common.Response  "Unknown comic"
// @Security     ApiKeyAuth
// @Router       /comics/{slug}/deactivate [post]
func (h *Handler) DeactivateComic(c *gin.Context) {
	comic, err := h.registry.Deactivate(c.Request.Context(), c.Param("slug"))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	h.invalidate(c.Request.Context())
	common.RespondSuccess(c, comic)
}

// ActivateComic 重新启用漫画
// @Summary      Activate a comic
// @Tags         comics
// @Produce      json
// @Param        slug  path      string  true  "Comic slug"
// @Success      200   {object}  common.Response{data=models.Comic}
// @Failure      404   {object}  common.Response  "Unknown comic"
// @Security     ApiKeyAuth
// @Router       /comics/{slug}/activate [post]
func (h *Handler) ActivateComic(c *gin.Context) {
	comic, err := h.registry.Activate(c.Request.Context(), c.Param("slug"))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	h.invalidate(c.Request.Context())
	common.RespondSuccess(c, comic)
}

// DeleteComic 删除没有任何 strip 和 release 的漫画
// @Summary      Delete a comic
// @Tags         comics
// @Produce      json
// @Param        slug  path      string  true  "Comic slug"
// @Success      200   {object}  common.Response
// @Failure      404   {object}  common.Response  "Unknown comic"
// @Failure      409   {object}  common.Response  "Comic still has strips or releases"
// @Security     ApiKeyAuth
// @Router       /comics/{slug} [delete]
func (h *Handler) DeleteComic(c *gin.Context) {
	slug := c.Param("slug")
	if err := h.registry.Delete(c.Request.Context(), slug); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	h.invalidate(c.Request.Context())
	common.RespondSuccessMessage(c, "Comic deleted", gin.H{"slug": slug})
}
