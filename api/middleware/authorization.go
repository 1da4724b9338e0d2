package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/comic-tracker/api/common"
)

// Authorize 检查context中的认证类型是否在允许的列表中
func Authorize(allowedTypes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authType := c.GetString(AuthTypeKey)
		if authType == "" {
			common.RespondErrorAbort(c, http.StatusForbidden, "Access denied. Not authenticated.")
			return
		}

		for _, allowed := range allowedTypes {
			if authType == allowed {
				c.Next()
				return
			}
		}

		common.RespondErrorAbort(c, http.StatusForbidden, "Access denied. You do not have permission to access this resource with this authentication method.")
	}
}
