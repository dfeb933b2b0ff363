package middleware

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a panic into a logged 500 page so one broken view never
// takes the process down.
func Recovery(log *zap.Logger, r Renderer) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", GetRequestID(c)),
			zap.Stack("stack"),
		)
		if isAPIRequest(c) || r == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Internal server error",
			})
			return
		}
		r.HTML(c, http.StatusInternalServerError, "pages/error.html", gin.H{
			"Title":   "Something went wrong",
			"Message": "An unexpected error occurred. Please try again.",
		})
		c.Abort()
	})
}
