package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/gdelt-dashboard/internal/observability"
)

// Metrics records request counts and latency per route template. Scrapes of
// the metrics endpoint itself and health probes are not counted.
func Metrics(m *observability.Metrics, skipRoutes ...string) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	skip := make(map[string]struct{}, len(skipRoutes))
	for _, r := range skipRoutes {
		skip[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := skip[c.FullPath()]; ok {
			c.Next()
			return
		}
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		m.ObserveAPI(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
