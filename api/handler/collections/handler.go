package collections

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/comic-tracker/api/common"
	"github.com/anoixa/comic-tracker/internal/collections"
)

// Handler 合集处理器
type Handler struct {
	svc *collections.Service
}

// NewHandler 创建合集处理器
func NewHandler(svc *collections.Service) *Handler {
	return &Handler{svc: svc}
}

type createCollectionRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=255"`
}

type addComicsRequest struct {
	Comics []string `json:"comics" binding:"required,min=1,dive,required"`
}

// ListCollections 列出合集
// @Summary      List collections
// @Tags         collections
// @Produce      json
// @Success      200  {object}  common.Response{data=[]models.Collection}
// @Security     ApiKeyAuth
// @Router       /collections [get]
func (h *Handler) ListCollections(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, list)
}

// CreateCollection 创建合集
// @Summary      Create a collection
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        request  body      createCollectionRequest  true  "Collection"
// @Success      201      {object}  common.Response{data=models.Collection}
// @Failure      400      {object}  common.Response  "Invalid request body"
// @Failure      409      {object}  common.Response  "Name already used"
// @Security     ApiKeyAuth
// @Router       /collections [post]
func (h *Handler) CreateCollection(c *gin.Context) {
	var req createCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	collection, err := h.svc.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondCreated(c, collection)
}

// GetCollection 获取合集及其漫画
// @Summary      Get a collection
// @Tags         collections
// @Produce      json
// @Param        id   path      int  true  "Collection ID"
// @Success      200  {object}  common.Response{data=models.Collection}
// @Failure      404  {object}  common.Response  "Collection not found"
// @Security     ApiKeyAuth
// @Router       /collections/{id} [get]
func (h *Handler) GetCollection(c *gin.Context) {
	id, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}

	collection, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, collection)
}

// DeleteCollection 删除合集
// @Summary      Delete a collection
// @Tags         collections
// @Produce      json
// @Param        id   path      int  true  "Collection ID"
// @Success      200  {object}  common.Response
// @Failure      404  {object}  common.Response  "Collection not found"
// @Security     ApiKeyAuth
// @Router       /collections/{id} [delete]
func (h *Handler) DeleteCollection(c *gin.Context) {
	id, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Collection deleted", gin.H{"id": id})
}

// AddComics 把漫画加入合集
// @Summary      Add comics to a collection
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        id       path      int               true  "Collection ID"
// @Param        request  body      addComicsRequest  true  "Comic slugs"
// @Success      200      {object}  common.Response{data=models.Collection}
// @Failure      404      {object}  common.Response  "Collection or comic not found"
// @Security     ApiKeyAuth
// @Router       /collections/{id}/comics [post]
func (h *Handler) AddComics(c *gin.Context) {
	id, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var req addComicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	collection, err := h.svc.AddComics(c.Request.Context(), id, req.Comics)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, collection)
}

// RemoveComic 从合集移除漫画
// @Summary      Remove a comic from a collection
// @Tags         collections
// @Produce      json
// @Param        id    path      int     true  "Collection ID"
// @Param        slug  path      string  true  "Comic slug"
// @Success      200   {object}  common.Response
// @Failure      404   {object}  common.Response  "Collection or comic not found"
// @Security     ApiKeyAuth
// @Router       /collections/{id}/comics/{slug} [delete]
func (h *Handler) RemoveComic(c *gin.Context) {
	id, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.RemoveComic(c.Request.Context(), id, c.Param("slug")); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Comic removed from collection", nil)
}
