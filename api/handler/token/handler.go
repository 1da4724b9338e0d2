package token

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/comic-tracker/api/common"
	"github.com/anoixa/comic-tracker/internal/auth"
)

// MaxTTL 签发令牌的最长有效期
const MaxTTL = 30 * 24 * time.Hour

// Handler 访问令牌处理器
type Handler struct {
	jwt *auth.JWTService
}

// NewHandler 创建访问令牌处理器
func NewHandler(jwt *auth.JWTService) *Handler {
	return &Handler{jwt: jwt}
}

type req struct {
	Subject string `json:"subject" binding:"omitempty,max=64"`
	TTL     string `json:"ttl"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// CreateToken 用 API Key 换取短期访问令牌
// @Summary      Issue access token
// @Description  Exchange the API key for a JWT usable as "Bearer <token>"
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      req  false  "Subject and TTL (e.g. 1h), both optional"
// @Success      200      {object}  common.Response{data=tokenResponse}
// @Failure      400      {object}  common.Response  "Invalid request body"
// @Failure      401      {object}  common.Response  "Unauthorized"
// @Failure      501      {object}  common.Response  "JWT not configured"
// @Security     ApiKeyAuth
// @Router       /token [post]
func (h *Handler) CreateToken(c *gin.Context) {
	if h.jwt == nil {
		common.RespondError(c, http.StatusNotImplemented, "JWT authentication is not configured")
		return
	}

	var requestBody req
	if err := c.ShouldBindJSON(&requestBody); err != nil && err != io.EOF {
		common.RespondError(c, http.StatusBadRequest, "Invalid JSON format: "+err.Error())
		return
	}

	subject := strings.TrimSpace(requestBody.Subject)
	if subject == "" {
		subject = "operator"
	}

	var ttl time.Duration
	if requestBody.TTL != "" {
		d, err := time.ParseDuration(requestBody.TTL)
		if err != nil || d <= 0 || d > MaxTTL {
			common.RespondError(c, http.StatusBadRequest, "ttl must be a positive duration up to "+MaxTTL.String())
			return
		}
		ttl = d
	}

	token, expiresAt, err := h.jwt.GenerateAccessToken(subject, ttl)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	common.RespondSuccess(c, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}
