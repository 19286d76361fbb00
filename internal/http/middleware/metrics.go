package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lo-analysis-backend/internal/observability"
)

// Routes probed by load balancers and scrapers stay out of the API series.
var unobservedRoutes = map[string]bool{
	"/healthcheck": true,
	"/metrics":     true,
}

// Metrics records count, latency and in-flight gauge per matched route.
// Requests that match no route share the "unmatched" label so arbitrary
// paths cannot grow the label set.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if unobservedRoutes[route] {
			c.Next()
			return
		}
		start := time.Now()
		m.APIInflightInc()
		defer m.APIInflightDec()

		c.Next()

		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
