package comics

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/comic-tracker/api/common"
)

// CreateComic 登记漫画
// @Summary      Register a comic
// @Description  The slug is derived from the name when omitted
// @Tags         comics
// @Accept       json
// @Produce      json
// @Param        request  body      comicRequest  true  "Comic"
// @Success      201      {object}  common.Response{data=models.Comic}
// @Failure      400      {object}  common.Response  "Invalid comic"
// @Failure      409      {object}  common.Response  "Slug already registered"
// @Security     ApiKeyAuth
// @Router       /comics [post]
func (h *Handler) CreateComic(c *gin.Context) {
	var req comicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	comic, err := h.registry.Create(c.Request.Context(), in)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	h.invalidate(c.Request.Context())
	common.RespondCreated(c, comic)
}

// UpdateComic 更新漫画，已有 release 时 slug 不可修改
// @Summary      Update a comic
// @Tags         comics
// @Accept       json
// @Produce      json
// @Param        slug     path      string        true  "Comic slug"
// @Param        request  body      comicRequest  true  "Comic"
// @Success      200      {object}  common.Response{data=models.Comic}
// @Failure      400      {object}  common.Response  "Invalid comic"
// @Failure      404      {object}  common.Response  "Unknown comic"
// @Failure      409      {object}  common.Response  "Slug locked or taken"
// @Security     ApiKeyAuth
// @Router       /comics/{slug} [put]
func (h *Handler) UpdateComic(c *gin.Context) {
	var req comicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	comic, err := h.registry.Update(c.Request.Context(), c.Param("slug"), in)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	h.invalidate(c.Request.Context())
	common.RespondSuccess(c, comic)
}
