package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"pgsleep/config"
	"pgsleep/controllers"
	"pgsleep/delay"
	"pgsleep/routes"
	"pgsleep/store"
	"pgsleep/worker"
)

func main() {
	seed := flag.Bool("c", false, "create the todo table, insert dummy data and exit")
	flag.Parse()

	// Load environment variables
	config.LoadEnv()
	cfg, err := config.Read()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// Connect to the database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	todos := store.NewTodoStore(db, cfg.Mode)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *seed {
		n, err := todos.Seed(ctx)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		log.Printf("seeded %d todos", n)
		return
	}

	statsStore, closeStats, err := config.ConnectStats(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer closeStats()

	pool := worker.NewPool(cfg.Workers, cfg.Mode)
	router := routes.NewRouter(routes.Deps{
		Todos: &controllers.TodoController{
			Store:         todos,
			PostgresDelay: delay.Postgres{Duration: cfg.Sleep},
			ProcessDelay:  delay.Process{Duration: cfg.Sleep},
		},
		Stats: statsStore,
		Pool:  pool,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Sleep+5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", cfg.ListenAddr)
	log.Printf("workers: mode=%s size=%d sleep=%s", pool.Mode(), pool.Size(), cfg.Sleep)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
