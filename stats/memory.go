package stats

import (
	"context"
	"sync"
)

// MemoryStore keeps counters in process memory. Counters reset on restart.
type MemoryStore struct {
	mu      sync.Mutex
	byRoute map[string]Counters
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byRoute: make(map[string]Counters)}
}

func (s *MemoryStore) Record(_ context.Context, ev Event) error {
	key := routeKey(ev)

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.byRoute[key]
	c.Requests++
	if ev.Failed() {
		c.Errors++
	}
	c.TotalMS += ev.Duration.Milliseconds()
	if !ev.At.Before(c.LastAt) {
		c.LastAt = ev.At
		c.Mode = ev.Mode
	}
	s.byRoute[key] = c
	return nil
}

func (s *MemoryStore) Snapshot(context.Context) (map[string]Counters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byRoute))
	for k, v := range s.byRoute {
		out[k] = v
	}
	return out, nil
}
