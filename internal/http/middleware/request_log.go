package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lo-analysis-backend/internal/platform/ctxutil"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

// RequestLogger writes one line per request. Errors recorded on the gin
// context (see response.RespondDomainError) are included. Probe routes log
// at debug level.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
		}
		if err := c.Errors.Last(); err != nil {
			fields = append(fields, "error", err.Err)
		}

		switch {
		case unobservedRoutes[route] && status < 500:
			log.Debug("HTTP request", fields...)
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
