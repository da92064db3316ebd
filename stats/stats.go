// Package stats keeps per-route request counters for the sleep endpoints.
//
// Recording is best-effort: callers log a failed Record and carry on.
package stats

import (
	"context"
	"time"
)

// Event is one handled request.
type Event struct {
	Route    string
	Method   string
	Status   int
	Mode     string
	Duration time.Duration
	At       time.Time
}

// Failed reports whether the request ended with a server-side error.
func (e Event) Failed() bool { return e.Status >= 500 }

// Counters are the totals kept for one route. Mode and LastAt describe the
// most recent request.
type Counters struct {
	Requests int64     `json:"requests"`
	Errors   int64     `json:"errors"`
	TotalMS  int64     `json:"total_ms"`
	Mode     string    `json:"mode,omitempty"`
	LastAt   time.Time `json:"last_at"`
}

// Store persists events and reports totals keyed by "METHOD route".
type Store interface {
	Record(ctx context.Context, ev Event) error
	Snapshot(ctx context.Context) (map[string]Counters, error)
}

func routeKey(ev Event) string {
	return ev.Method + " " + ev.Route
}
