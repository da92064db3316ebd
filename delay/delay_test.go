package delay

import (
	"context"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPostgres_Query(t *testing.T) {
	sql, args := Postgres{Duration: 1500 * time.Millisecond}.Query()
	if sql != "SELECT pg_sleep(?)" {
		t.Fatalf("unexpected sql %q", sql)
	}
	if len(args) != 1 || args[0] != 1.5 {
		t.Fatalf("expected seconds arg 1.5, got %#v", args)
	}
}

func TestPostgres_NilScope(t *testing.T) {
	if err := (Postgres{}).Delay(context.Background(), nil); err == nil {
		t.Fatalf("expected error without a database scope")
	}
}

// Runs only against a live server, e.g. PGSLEEP_TEST_DSN=postgres://localhost/fsppgg_test?sslmode=disable
func TestPostgres_DelaysOnServer(t *testing.T) {
	dsn := os.Getenv("PGSLEEP_TEST_DSN")
	if dsn == "" {
		t.Skip("PGSLEEP_TEST_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	d := Postgres{Duration: 200 * time.Millisecond}
	start := time.Now()
	if err := d.Delay(context.Background(), db); err != nil {
		t.Fatalf("delay: %v", err)
	}
	if elapsed := time.Since(start); elapsed < d.Duration {
		t.Fatalf("expected at least %s, took %s", d.Duration, elapsed)
	}
}

func TestProcess_Waits(t *testing.T) {
	d := Process{Duration: 30 * time.Millisecond}
	start := time.Now()
	if err := d.Delay(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < d.Duration {
		t.Fatalf("expected at least %s, took %s", d.Duration, elapsed)
	}
}

func TestProcess_IgnoresCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := Process{Duration: 20 * time.Millisecond}
	start := time.Now()
	_ = d.Delay(ctx, nil)
	if elapsed := time.Since(start); elapsed < d.Duration {
		t.Fatalf("expected wait to run to completion, took %s", elapsed)
	}
}

func TestFunc_Adapter(t *testing.T) {
	called := false
	var d Delayer = Func(func(context.Context, *gorm.DB) error { called = true; return nil })
	if err := d.Delay(context.Background(), nil); err != nil || !called {
		t.Fatalf("expected adapter to call through, err=%v called=%v", err, called)
	}
	if err := None.Delay(context.Background(), nil); err != nil {
		t.Fatalf("None returned %v", err)
	}
}
