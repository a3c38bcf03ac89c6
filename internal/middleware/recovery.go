package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/devrights/internal/logger"
	"github.com/stwalsh4118/devrights/internal/metrics"
)

// Recovery turns a handler panic into a 500 response. The panic is logged
// with its stack and, when collector is non-nil, counted per route.
func Recovery(log *logger.Logger, collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			route := c.FullPath()
			if route == "" {
				route = unmatchedRoute
			}
			if collector != nil {
				collector.RecordPanic(route)
			}

			requestID := GetRequestID(c)
			reqLog := GetLogger(c)
			if reqLog == nil {
				reqLog = log
			}
			reqLog.Error("Handler panicked", fmt.Errorf("panic: %v", recovered), map[string]interface{}{
				"request_id": requestID,
				"method":     c.Request.Method,
				"route":      route,
				"stack":      string(debug.Stack()),
			})

			// Headers may already be out if the handler was streaming an export.
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":       "INTERNAL_SERVER_ERROR",
					"message":    "An unexpected error occurred",
					"request_id": requestID,
				},
			})
		}()

		c.Next()
	}
}
