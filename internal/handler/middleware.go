package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"crypto-insight/internal/domain"

	"github.com/gin-gonic/gin"
)

const apiKeyHeader = "X-API-Key"

// APIKeyAuth guards admin routes with the X-API-Key header. An empty key
// disables the check.
func APIKeyAuth(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		provided := strings.TrimSpace(c.GetHeader(apiKeyHeader))
		if provided == "" {
			abortWith(c, http.StatusUnauthorized, "missing "+apiKeyHeader+" header")
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			abortWith(c, http.StatusForbidden, "invalid API key")
			return
		}
		c.Next()
	}
}

func abortWith(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, APIResponse{
		Success:   false,
		Message:   message,
		Timestamp: now().UTC(),
		Error:     &domain.APIError{Message: message, Provider: "API", Status: status},
	})
}
