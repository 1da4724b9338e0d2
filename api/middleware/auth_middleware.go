package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/comic-tracker/api/common"
	"github.com/anoixa/comic-tracker/internal/auth"
)

const (
	ContextSubjectKey = "subject"
	AuthTypeKey       = "auth_type"

	AuthTypeJWT    = "jwt"
	AuthTypeAPIKey = "api_key"

	// apiKeySubject API Key 认证没有用户，统一记为该主体
	apiKeySubject = "api-key"
)

// TokenParser 解析 Bearer token
type TokenParser interface {
	ExtractClaims(tokenString string) (*auth.TokenClaims, error)
}

// KeyValidator 校验 API Key
type KeyValidator interface {
	Enabled() bool
	Validate(key string) error
}

// CombinedAuth 同时支持 "Bearer <jwt>" 和 "ApiKey <key>"，未配置的方式视为不支持
func CombinedAuth(tokens TokenParser, keys KeyValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取 Authorization 头
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "No Authorization request header")
			return
		}

		// 解析 Scheme 和 Token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[1] == "" {
			common.RespondErrorAbort(c, http.StatusBadRequest, "Authorization field format error")
			return
		}

		scheme := parts[0]
		token := strings.TrimSpace(parts[1])
		var err error

		switch scheme {
		case "Bearer":
			err = handleJwtAuth(c, tokens, token)
		case "ApiKey":
			err = handleAPIKeyAuth(c, keys, token)
		default:
			common.RespondErrorAbort(c, http.StatusUnauthorized, "Unsupported authentication scheme")
			return
		}

		if err != nil {
			common.RespondErrorAbort(c, http.StatusUnauthorized, err.Error())
			return
		}

		c.Next()
	}
}

func handleJwtAuth(c *gin.Context, tokens TokenParser, token string) error {
	if tokens == nil {
		return errors.New("JWT authentication is not configured")
	}
	claims, err := tokens.ExtractClaims(token)
	if err != nil {
		return errors.New("invalid or expired token")
	}

	c.Set(ContextSubjectKey, claims.Subject)
	c.Set(AuthTypeKey, AuthTypeJWT)
	return nil
}

func handleAPIKeyAuth(c *gin.Context, keys KeyValidator, key string) error {
	if keys == nil || !keys.Enabled() {
		return errors.New("API key authentication is not configured")
	}
	if err := keys.Validate(key); err != nil {
		return errors.New("invalid API key")
	}

	c.Set(ContextSubjectKey, apiKeySubject)
	c.Set(AuthTypeKey, AuthTypeAPIKey)
	return nil
}
