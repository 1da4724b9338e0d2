package strips

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/comic-tracker/api/common"
)

func cacheKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// GetStrip 返回 strip 图片内容
// @Summary      Get strip image
// @Description  Serve the stored bytes of a strip; content never changes for a given id
// @Tags         strips
// @Produce      image/png,image/jpeg,image/gif,image/webp
// @Param        id   path  int  true  "Strip ID"
// @Success      200
// @Success      304
// @Failure      404  {object}  common.Response  "Strip not found"
// @Router       /strips/{id} [get]
func (h *Handler) GetStrip(c *gin.Context) {
	id, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}

	strip, err := h.fetchMeta(c.Request.Context(), id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	etag := `"` + strip.Checksum + `"`
	c.Header("ETag", etag)
	c.Header("Cache-Control", "public, max-age=2592000, immutable")
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	r, err := h.store.Open(c.Request.Context(), strip)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	defer func() {
		if closer, ok := r.(io.Closer); ok {
			_ = closer.Close()
		}
	}()

	contentType := strip.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	http.ServeContent(c.Writer, c.Request, "", strip.Fetched, r)
}
