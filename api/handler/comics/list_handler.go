package comics

import (
	"github.com/gin-gonic/gin"

	"github.com/anoixa/comic-tracker/api/common"
	"github.com/anoixa/comic-tracker/internal/comics"
)

// ListComics 列出漫画
// @Summary      List comics
// @Tags         comics
// @Produce      json
// @Param        active  query     bool  false  "Only active comics"
// @Success      200     {object}  common.Response{data=[]models.Comic}
// @Security     ApiKeyAuth
// @Router       /comics [get]
func (h *Handler) ListComics(c *gin.Context) {
	opts := comics.ListOptions{ActiveOnly: c.Query("active") == "true"}

	list, err := h.registry.List(c.Request.Context(), opts)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, list)
}
