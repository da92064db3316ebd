package stats

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one hash per route under prefix, with the cumulative fields
// requests, errors and total_ms plus mode and last_at_ms of the latest request.
// Nothing expires.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

type RedisOption func(*RedisStore)

func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if p := strings.Trim(prefix, ":"); p != "" {
			s.prefix = p
		}
	}
}

func NewRedisStore(rdb *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{rdb: rdb, prefix: "pgsleep:stats"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) routesKey() string { return s.prefix + ":routes" }

func (s *RedisStore) hashKey(route string) string {
	return s.prefix + ":route:" + route
}

func (s *RedisStore) Record(ctx context.Context, ev Event) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	route := routeKey(ev)
	key := s.hashKey(route)

	pipe := s.rdb.Pipeline()
	pipe.SAdd(ctx, s.routesKey(), route)
	pipe.HIncrBy(ctx, key, "requests", 1)
	if ev.Failed() {
		pipe.HIncrBy(ctx, key, "errors", 1)
	}
	pipe.HIncrBy(ctx, key, "total_ms", ev.Duration.Milliseconds())
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	pipe.HSet(ctx, key, "mode", ev.Mode, "last_at_ms", at.UnixMilli())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis stats record: %w", err)
	}
	return nil
}

func (s *RedisStore) Snapshot(ctx context.Context) (map[string]Counters, error) {
	if s == nil || s.rdb == nil {
		return map[string]Counters{}, nil
	}
	routes, err := s.rdb.SMembers(ctx, s.routesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis stats routes: %w", err)
	}
	if len(routes) == 0 {
		return map[string]Counters{}, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make(map[string]*redis.MapStringStringCmd, len(routes))
	for _, r := range routes {
		cmds[r] = pipe.HGetAll(ctx, s.hashKey(r))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("redis stats snapshot: %w", err)
	}

	out := make(map[string]Counters, len(routes))
	for r, cmd := range cmds {
		fields := cmd.Val()
		c := Counters{
			Requests: parseInt(fields["requests"]),
			Errors:   parseInt(fields["errors"]),
			TotalMS:  parseInt(fields["total_ms"]),
			Mode:     fields["mode"],
		}
		if ms := parseInt(fields["last_at_ms"]); ms > 0 {
			c.LastAt = time.UnixMilli(ms).UTC()
		}
		out[r] = c
	}
	return out, nil
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
