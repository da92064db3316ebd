// Package delay holds the two ways a sleep endpoint can stall a request:
// asking PostgreSQL to sleep, or sleeping in the process.
package delay

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DefaultDuration is how long both sleep endpoints wait unless configured otherwise.
const DefaultDuration = 5 * time.Second

// Delayer stalls the current request. tx is the request's database scope and
// may be ignored by implementations that do not touch the database.
type Delayer interface {
	Delay(ctx context.Context, tx *gorm.DB) error
}

// Func adapts a plain function to Delayer.
type Func func(ctx context.Context, tx *gorm.DB) error

func (f Func) Delay(ctx context.Context, tx *gorm.DB) error { return f(ctx, tx) }

// None returns immediately.
var None Delayer = Func(func(context.Context, *gorm.DB) error { return nil })

// Postgres makes the database server sleep with pg_sleep.
type Postgres struct {
	Duration time.Duration
}

// Query returns the statement and arguments sent to the server.
func (p Postgres) Query() (string, []any) {
	return "SELECT pg_sleep(?)", []any{p.Duration.Seconds()}
}

func (p Postgres) Delay(ctx context.Context, tx *gorm.DB) error {
	if tx == nil {
		return fmt.Errorf("pg_sleep: no database scope")
	}
	sql, args := p.Query()
	if err := tx.WithContext(context.WithoutCancel(ctx)).Exec(sql, args...).Error; err != nil {
		return fmt.Errorf("pg_sleep: %w", err)
	}
	return nil
}

// Process sleeps in the server process. It always runs to completion.
type Process struct {
	Duration time.Duration
}

func (p Process) Delay(context.Context, *gorm.DB) error {
	if p.Duration > 0 {
		time.Sleep(p.Duration)
	}
	return nil
}
