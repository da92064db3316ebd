// Package worker models the request-handling workers of the server.
//
// A Pool has a fixed number of workers. Every request must hold one while it runs.
// The Mode chosen at construction decides what happens when a request waits on
// something slow (a database sleep, a timed wait):
//
//   - Blocking: the request keeps its worker for the whole wait, so nothing else
//     can run on it.
//   - Cooperative: the request hands its worker back for the duration of the wait
//     and takes one again afterwards, so other requests can run in between.
package worker

import (
	"context"
	"fmt"
	"strings"
)

type Mode int

const (
	Blocking Mode = iota
	Cooperative
)

func (m Mode) String() string {
	switch m {
	case Blocking:
		return "blocking"
	case Cooperative:
		return "cooperative"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts "blocking" or "cooperative" (case-insensitive). Empty means blocking.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "blocking", "":
		return Blocking, nil
	case "cooperative":
		return Cooperative, nil
	}
	return Blocking, fmt.Errorf("unknown worker mode %q", s)
}

// Pool is a semaphore of size workers built on a buffered channel.
type Pool struct {
	sem  chan struct{}
	mode Mode
}

// NewPool creates a pool with `size` workers. A size below 1 is treated as 1.
func NewPool(size int, mode Mode) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: make(chan struct{}, size), mode: mode}
}

func (p *Pool) Mode() Mode { return p.mode }
func (p *Pool) Size() int  { return cap(p.sem) }

// Acquire blocks until a worker is free or ctx ends.
func (p *Pool) Acquire(ctx context.Context) (*Slot, error) {
	if err := p.take(ctx); err != nil {
		return nil, err
	}
	return &Slot{pool: p, held: true}, nil
}

func (p *Pool) take(ctx context.Context) error {
	select {
	case p.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("acquire worker: %w", ctx.Err())
	}
}

func (p *Pool) give() { <-p.sem }

// Slot is one request's claim on a worker. It is owned by a single goroutine.
type Slot struct {
	pool *Pool
	held bool
}

// Held reports whether the slot currently occupies a worker.
func (s *Slot) Held() bool { return s.held }

// Release gives the worker back. Safe to call more than once.
func (s *Slot) Release() {
	if !s.held {
		return
	}
	s.held = false
	s.pool.give()
}

// Wait runs fn, a call expected to block. In cooperative mode the worker is
// handed back while fn runs and reacquired before Wait returns. The reacquire
// ignores cancellation of ctx, so the request finishes the same way it would
// in blocking mode.
func (s *Slot) Wait(ctx context.Context, fn func() error) error {
	if s.pool.mode != Cooperative || !s.held {
		return fn()
	}

	s.Release()
	fnErr := fn()
	if err := s.pool.take(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	s.held = true
	return fnErr
}

type slotKey struct{}

func WithSlot(ctx context.Context, s *Slot) context.Context {
	return context.WithValue(ctx, slotKey{}, s)
}

func SlotFrom(ctx context.Context) (*Slot, bool) {
	s, ok := ctx.Value(slotKey{}).(*Slot)
	return s, ok && s != nil
}

// Wait runs fn through the slot carried by ctx, or directly when there is none.
func Wait(ctx context.Context, fn func() error) error {
	if s, ok := SlotFrom(ctx); ok {
		return s.Wait(ctx, fn)
	}
	return fn()
}
