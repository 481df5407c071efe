package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ruchikageeminda97/tms-api/internal/service"
)

// InvalidateStatsCache drops cached stats after any successful mutating
// request so aggregate reads never serve stale counts.
func InvalidateStatsCache(stats *service.StatsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if stats == nil {
			return
		}
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			return
		}
		if c.Writer.Status() >= 400 {
			return
		}
		stats.Invalidate(c.Request.Context())
	}
}
