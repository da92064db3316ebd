package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"pgsleep/delay"
	"pgsleep/stats"
	"pgsleep/utils"
	"pgsleep/worker"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultDSN = "postgres://localhost/fsppgg_test?sslmode=disable"

// Settings is everything the server reads from the environment.
type Settings struct {
	DSN          string
	ListenAddr   string
	Mode         worker.Mode
	Workers      int
	Sleep        time.Duration
	DBLogLevel   logger.LogLevel
	StatsRedis   string
	StatsRedisPW string
	StatsRedisDB int
	StatsPrefix  string
}

// LoadEnv loads variables from .env if the file exists. Variables already set
// in the environment win.
func LoadEnv() {
	err := godotenv.Load(".env")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}
}

// Read builds Settings from the environment.
func Read() (Settings, error) {
	s := Settings{
		DSN:          utils.GetenvDefault("DB", defaultDSN),
		ListenAddr:   utils.GetenvDefault("LISTEN_ADDR", ":8080"),
		Mode:         worker.Blocking,
		Workers:      utils.GetenvIntDefault("WORKERS", 1),
		Sleep:        utils.GetenvDurationDefault("SLEEP_DURATION", delay.DefaultDuration),
		StatsRedis:   utils.GetenvDefault("STATS_REDIS_ADDR", ""),
		StatsRedisPW: utils.GetenvDefault("STATS_REDIS_PASSWORD", ""),
		StatsRedisDB: utils.GetenvIntDefault("STATS_REDIS_DB", 0),
		StatsPrefix:  utils.GetenvDefault("STATS_PREFIX", "pgsleep:stats"),
	}
	if utils.GetenvFlag("COOPERATIVE") {
		s.Mode = worker.Cooperative
	}
	// WORKER_MODE, when set, wins over COOPERATIVE.
	if v := utils.GetenvDefault("WORKER_MODE", ""); v != "" {
		mode, err := worker.ParseMode(v)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid WORKER_MODE: %w", err)
		}
		s.Mode = mode
	}

	lvl, err := ParseLogLevel(utils.GetenvDefault("DB_LOG_LEVEL", "info"))
	if err != nil {
		return Settings{}, err
	}
	s.DBLogLevel = lvl

	if s.Workers <= 0 {
		return Settings{}, errors.New("WORKERS must be > 0")
	}
	if s.Sleep < 0 {
		return Settings{}, errors.New("SLEEP_DURATION must be >= 0")
	}
	return s, nil
}

func ParseLogLevel(v string) (logger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "silent":
		return logger.Silent, nil
	case "error":
		return logger.Error, nil
	case "warn":
		return logger.Warn, nil
	case "info":
		return logger.Info, nil
	}
	return 0, fmt.Errorf("invalid DB_LOG_LEVEL %q", v)
}

// ConnectDatabase opens the postgres pool without pinging it. An unreachable
// server surfaces as an error on the first query, per request.
func ConnectDatabase(s Settings) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  s.DSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:               logger.Default.LogMode(s.DBLogLevel),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	log.Println("Database pool ready")
	return db, nil
}

// ConnectStats returns the Redis-backed store when STATS_REDIS_ADDR is set,
// otherwise an in-memory one. The returned func closes the client.
func ConnectStats(ctx context.Context, s Settings) (stats.Store, func(), error) {
	if strings.TrimSpace(s.StatsRedis) == "" {
		return stats.NewMemoryStore(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     s.StatsRedis,
		Password: s.StatsRedisPW,
		DB:       s.StatsRedisDB,
	})
	closeFn := func() { _ = rdb.Close() }

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("redis stats ping: %w", err)
	}
	return stats.NewRedisStore(rdb, stats.WithPrefix(s.StatsPrefix)), closeFn, nil
}
