package middleware

import (
	"log"
	"net/http"

	"pgsleep/worker"

	"github.com/gin-gonic/gin"
)

// WorkerMiddleware makes every request hold a worker from pool while it runs.
// The slot travels in the request context so blocking calls can yield it.
func WorkerMiddleware(pool *worker.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		slot, err := pool.Acquire(c.Request.Context())
		if err != nil {
			log.Printf("[%s] no worker: %v", RequestID(c), err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "No worker available"})
			return
		}
		defer slot.Release()

		c.Request = c.Request.WithContext(worker.WithSlot(c.Request.Context(), slot))
		c.Next()
	}
}
