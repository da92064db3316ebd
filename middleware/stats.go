package middleware

import (
	"log"
	"time"

	"pgsleep/stats"

	"github.com/gin-gonic/gin"
)

// StatsMiddleware records one stats.Event per request. Unmatched routes are skipped.
func StatsMiddleware(store stats.Store, mode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if store == nil || route == "" {
			return
		}
		ev := stats.Event{
			Route:    route,
			Method:   c.Request.Method,
			Status:   c.Writer.Status(),
			Mode:     mode,
			Duration: time.Since(start),
			At:       start,
		}
		if err := store.Record(c.Request.Context(), ev); err != nil {
			log.Printf("[%s] stats record failed: %v", RequestID(c), err)
		}
	}
}
