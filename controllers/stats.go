package controllers

import (
	"log"
	"net/http"

	"pgsleep/stats"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	Store stats.Store
}

// ShowStats returns the per-route request counters.
func (sc *StatsController) ShowStats(c *gin.Context) {
	snap, err := sc.Store.Snapshot(c.Request.Context())
	if err != nil {
		log.Printf("stats snapshot failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read stats"})
		return
	}
	c.JSON(http.StatusOK, snap)
}
