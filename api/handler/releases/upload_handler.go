package releases

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/comic-tracker/api/common"
	"github.com/anoixa/comic-tracker/internal/ingest"
	"github.com/anoixa/comic-tracker/utils"
)

type uploadResponse struct {
	Release      View `json:"release"`
	StripCreated bool `json:"strip_created"`
	// FirstPublished 内容已存在时该 strip 最早的发布日期
	FirstPublished string `json:"first_published,omitempty"`
}

// Upload 上传一次抓取结果：保存 strip 并登记 release
// @Summary      Record a release
// @Description  Store the strip bytes (deduplicated by checksum) and record that the comic published it on pub_date
// @Tags         releases
// @Accept       multipart/form-data
// @Produce      json
// @Param        comic     formData  string  true   "Comic slug"
// @Param        pub_date  formData  string  true   "Publication date (yyyy-mm-dd)"
// @Param        title     formData  string  false  "Strip title"
// @Param        text      formData  string  false  "Strip text"
// @Param        file      formData  file    true   "Strip image"
// @Success      201  {object}  common.Response
// @Failure      400  {object}  common.Response  "Invalid form or image"
// @Failure      404  {object}  common.Response  "Unknown comic"
// @Failure      409  {object}  common.Response  "Release already recorded"
// @Failure      413  {object}  common.Response  "File too large"
// @Security     ApiKeyAuth
// @Router       /releases [post]
func (h *Handler) Upload(c *gin.Context) {
	slug := strings.TrimSpace(c.PostForm("comic"))
	if slug == "" {
		common.RespondError(c, http.StatusBadRequest, "comic is required")
		return
	}

	pubDate, err := utils.ParseDate(strings.TrimSpace(c.PostForm("pub_date")))
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "file is required")
		return
	}
	if fileHeader.Size > h.maxSize {
		common.RespondError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", h.maxSize))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, h.maxSize+1))
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	if int64(len(data)) > h.maxSize {
		common.RespondError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", h.maxSize))
		return
	}

	result, err := h.ingest.Ingest(c.Request.Context(), ingest.Request{
		ComicSlug: slug,
		PubDate:   pubDate,
		Data:      data,
		Title:     strings.TrimSpace(c.PostForm("title")),
		Text:      strings.TrimSpace(c.PostForm("text")),
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	resp := uploadResponse{
		Release:      NewView(result.Release, h.baseURL),
		StripCreated: result.StripCreated,
	}
	if !result.StripCreated {
		first, err := h.ledger.FirstFor(c.Request.Context(), result.Strip.ID)
		if err != nil {
			log.Printf("[releases] failed to look up first release of strip %d: %v", result.Strip.ID, err)
		} else if first != nil && first.ID != result.Release.ID {
			resp.FirstPublished = first.Date().Format(utils.DateLayout)
		}
	}
	common.RespondCreated(c, resp)
}
