package routes

import (
	"pgsleep/controllers"
	"pgsleep/middleware"
	"pgsleep/stats"
	"pgsleep/worker"

	"github.com/gin-gonic/gin"
)

// Deps is what the router needs to serve every endpoint.
type Deps struct {
	Todos *controllers.TodoController
	Stats stats.Store
	Pool  *worker.Pool
}

// NewRouter builds the gin engine with logging, recovery, request ids and stats.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.StatsMiddleware(d.Stats, d.Pool.Mode().String()))

	SleepRoutes(router, d.Todos, d.Pool)
	StatsRoutes(router, &controllers.StatsController{Store: d.Stats})
	return router
}

// SleepRoutes registers the two delay endpoints. Both hold a worker from pool.
func SleepRoutes(router *gin.Engine, tc *controllers.TodoController, pool *worker.Pool) {
	api := router.Group("/sleep", middleware.WorkerMiddleware(pool))
	{
		// database-side delay
		api.GET("/postgres/", tc.SleepPostgres)

		// process-side delay
		api.GET("/python/", tc.SleepProcess)
	}
}

func StatsRoutes(router *gin.Engine, sc *controllers.StatsController) {
	router.GET("/stats/", sc.ShowStats)
}
