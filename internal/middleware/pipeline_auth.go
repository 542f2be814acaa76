package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
)

// PipelineAuthMiddleware guards machine-to-machine endpoints with the
// X-API-Key header. An empty configured key disables them entirely.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			_ = c.Error(apperrors.ErrPipelineDisabled)
			c.Abort()
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			_ = c.Error(apperrors.ErrInvalidAPIKey)
			c.Abort()
			return
		}
		c.Next()
	}
}
