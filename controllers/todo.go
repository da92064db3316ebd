package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"pgsleep/delay"
	"pgsleep/middleware"
	"pgsleep/store"
	"pgsleep/worker"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TodoController serves the sleep endpoints. Each one waits through its
// Delayer and then lists every todo.
type TodoController struct {
	Store         *store.TodoStore
	PostgresDelay delay.Delayer
	ProcessDelay  delay.Delayer
}

// SleepPostgres asks the database to sleep before listing. Other requests on
// the same worker stall for the duration unless the pool is cooperative.
func (tc *TodoController) SleepPostgres(c *gin.Context) {
	tc.sleepThenList(c, tc.PostgresDelay)
}

// SleepProcess sleeps in the server process before listing.
func (tc *TodoController) SleepProcess(c *gin.Context) {
	tc.sleepThenList(c, tc.ProcessDelay)
}

func (tc *TodoController) sleepThenList(c *gin.Context, d delay.Delayer) {
	if d == nil {
		d = delay.None
	}
	ctx := c.Request.Context()

	var todos []map[string]any
	err := tc.Store.Scope(ctx, func(tx *gorm.DB) error {
		if err := worker.Wait(ctx, func() error { return d.Delay(ctx, tx) }); err != nil {
			return fmt.Errorf("delay: %w", err)
		}
		var err error
		todos, err = tc.Store.ListAllAsMaps(tx)
		return err
	})
	if err != nil {
		log.Printf("[%s] %s failed: %v", middleware.RequestID(c), c.FullPath(), err)
		msg := "Failed to fetch todos"
		if errors.Is(err, store.ErrNotInitialized) {
			msg = "Store not initialized, run with -c to seed it"
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, todos)
}
